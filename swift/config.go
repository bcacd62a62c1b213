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

package swift

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// A Config holds everything about a build invocation that the swift module
// types need but that is decided outside of them: directory layout, the
// toolchain binaries picked by whatever configured this build, and the
// global Clang compile options that apply to every Objective-C compilation
// in the tree.  It is passed to blueprint.Context methods as the config
// value and retrieved by modules with ctx.Config().
type Config struct {
	SrcDir   string
	BuildDir string

	// Toolchain binaries.  Only the command names are used here; locating
	// and validating them is the configuring caller's problem.
	SwiftcCmd          string
	ArCmd              string
	AutolinkExtractCmd string

	// ClangCopts are the global Objective-C compile options, forwarded
	// token by token to the Clang importer when compiling Swift sources
	// against Objective-C dependencies.
	ClangCopts []string

	// Fs receives the files generated during analysis (output file maps,
	// module maps).  Tests substitute an in-memory filesystem.
	Fs afero.Fs

	Logger logrus.FieldLogger
}

// NewConfig returns a Config with the host filesystem and a warning-level
// logger.  Callers overwrite the fields they care about.
func NewConfig(srcDir, buildDir string) *Config {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	return &Config{
		SrcDir:             srcDir,
		BuildDir:           buildDir,
		SwiftcCmd:          "swiftc",
		ArCmd:              "ar",
		AutolinkExtractCmd: "swift-autolink-extract",
		Fs:                 afero.NewOsFs(),
		Logger:             logger,
	}
}
