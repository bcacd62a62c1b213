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
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/google/blueprint/pathtools"
	"github.com/spf13/afero"
)

const (
	partialModuleSuffix = "~partial.swiftmodule"

	// IndexStoreOutputGroup names the side channel through which the
	// index-store directory is surfaced for IDE tooling.  Nothing in the
	// build itself consumes it.
	IndexStoreOutputGroup = "index_store"
)

// An outputFileMapEntry lists the artifacts the compiler writes for one
// source file of a multi-object compile.
type outputFileMapEntry struct {
	Object      string `json:"object"`
	SwiftModule string `json:"swiftmodule,omitempty"`
}

// compileOutputs is the full artifact plan for one swiftc invocation, as
// computed by planOutputs.
type compileOutputs struct {
	// objects are the object files the invocation writes, in source
	// order.  They are fed to the archive and autolink-extract steps.
	objects []string

	// partialModules are the per-source partial swiftmodules, parallel to
	// objects.  Empty for whole-module compiles.
	partialModules []string

	// outputFileMap associates each source path with its per-source
	// artifacts.  Nil on the single-object path, where -o is enough.
	outputFileMap     map[string]outputFileMapEntry
	outputFileMapPath string

	// indexStoreDir is the index data directory, or "" when indexing was
	// not requested.
	indexStoreDir string

	// args are the extra invocation arguments that wire the outputs into
	// the compile: either "-o <object>" or "-output-file-map <path>",
	// plus "-index-store-path <dir>" when indexing.
	args []string

	// outputGroups maps output group names to the artifacts they expose.
	outputGroups map[string][]string
}

// allOutputs returns every file and directory the compile action writes.
func (c *compileOutputs) allOutputs() []string {
	var outputs []string
	outputs = append(outputs, c.objects...)
	outputs = append(outputs, c.partialModules...)
	if c.indexStoreDir != "" {
		outputs = append(outputs, c.indexStoreDir)
	}
	return outputs
}

// planOutputs declares the artifact set for compiling srcs as the module
// moduleName, placing intermediates under objDir.
//
// On the single-object path the whole module becomes one deterministically
// named object.  On the multi-object path each source file gets an object
// (and, for incremental compiles, a partial swiftmodule) whose path keeps
// the source file's directory structure under objDir, so two sources with
// the same base name in different directories cannot collide.  The
// association between sources and their artifacts is recorded in an output
// file map keyed by the verbatim source path.
//
// planOutputs is a pure function of its arguments: planning the same
// compile twice yields an identical artifact set.
func planOutputs(nature outputNature, srcs []string, moduleName, objDir string,
	indexWhileBuilding bool) *compileOutputs {

	outputs := &compileOutputs{}

	if !nature.emitsMultipleObjects {
		object := filepath.Join(objDir, moduleName+objectExtension)
		outputs.objects = []string{object}
		outputs.args = []string{"-o", object}
	} else {
		outputs.outputFileMap = make(map[string]outputFileMapEntry, len(srcs))
		for _, src := range srcs {
			entry := outputFileMapEntry{
				Object: filepath.Join(objDir, pathtools.ReplaceExtension(src, "o")),
			}
			if nature.emitsPartialModules {
				entry.SwiftModule = filepath.Join(objDir, trimExtension(src)+partialModuleSuffix)
				outputs.partialModules = append(outputs.partialModules, entry.SwiftModule)
			}
			outputs.objects = append(outputs.objects, entry.Object)
			outputs.outputFileMap[src] = entry
		}
		outputs.outputFileMapPath = filepath.Join(objDir, moduleName+".output_file_map.json")
		outputs.args = []string{"-output-file-map", outputs.outputFileMapPath}
	}

	if indexWhileBuilding {
		outputs.indexStoreDir = filepath.Join(objDir, moduleName+".indexstore")
		outputs.args = append(outputs.args, "-index-store-path", outputs.indexStoreDir)
		outputs.outputGroups = map[string][]string{
			IndexStoreOutputGroup: {outputs.indexStoreDir},
		}
	}

	return outputs
}

// writeOutputFileMap serializes the output file map to path.  The file is
// written during analysis and consumed by swiftc at execution time, so it
// is passed to the compile action as an implicit input.
func writeOutputFileMap(fs afero.Fs, path string, fileMap map[string]outputFileMapEntry) error {
	contents, err := json.MarshalIndent(fileMap, "", "  ")
	if err != nil {
		return fmt.Errorf("error serializing output file map: %s", err)
	}
	contents = append(contents, '\n')

	if err := fs.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, contents, 0666)
}

func trimExtension(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)]
}
