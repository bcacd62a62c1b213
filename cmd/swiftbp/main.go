// Copyright 2021 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// swiftbp generates a Ninja manifest for a tree of Swift Blueprints files.
//
// It runs the four blueprint phases over the tree rooted at the given
// Blueprints file: parse, resolve dependencies, prepare build actions, and
// write the manifest.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/blueprint"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"swiftbp/swift"
)

var (
	buildDir string
	manifest string
	verbose  bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "swiftbp [flags] <root Blueprints file>",
		Short: "generate a Ninja manifest for a Swift module tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&buildDir, "build-dir", "b", "out", "the build output directory")
	cmd.Flags().StringVarP(&manifest, "output", "o", "build.ninja", "the Ninja manifest to write, relative to the build directory")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log planning details")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(rootFile string) error {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx := blueprint.NewContext()
	ctx.RegisterModuleType("swift_library", swift.NewLibrary)
	ctx.RegisterModuleType("swift_binary", swift.NewBinary)

	config := swift.NewConfig(filepath.Dir(rootFile), buildDir)
	config.Logger = logger

	if _, errs := ctx.ParseBlueprintsFiles(rootFile); len(errs) > 0 {
		return reportErrors(logger, "parse", errs)
	}
	if _, errs := ctx.ResolveDependencies(config); len(errs) > 0 {
		return reportErrors(logger, "resolve dependencies", errs)
	}
	if _, errs := ctx.PrepareBuildActions(config); len(errs) > 0 {
		return reportErrors(logger, "prepare build actions", errs)
	}

	buf := bytes.NewBuffer(nil)
	if err := ctx.WriteBuildFile(buf); err != nil {
		return fmt.Errorf("error generating Ninja manifest: %s", err)
	}

	manifestPath := filepath.Join(buildDir, manifest)
	if err := config.Fs.MkdirAll(filepath.Dir(manifestPath), 0777); err != nil {
		return err
	}
	if err := afero.WriteFile(config.Fs, manifestPath, buf.Bytes(), 0666); err != nil {
		return err
	}

	logger.WithField("manifest", manifestPath).Info("wrote Ninja manifest")
	return nil
}

func reportErrors(logger *logrus.Logger, phase string, errs []error) error {
	for _, err := range errs {
		logger.Error(err)
	}
	return fmt.Errorf("%s failed with %d errors", phase, len(errs))
}
