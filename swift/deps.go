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
	"path/filepath"
	"strings"

	"swiftbp/depset"
)

// collectSwiftDepArgs appends to args everything a swiftc invocation needs
// in order to compile against the transitive closure of deps, and returns
// the extended argument list together with the files the compile action
// must be able to read.
//
// The emission order is fixed and significant, since swiftc resolves
// same-named flags positionally:
//
//  1. -I for each directory containing a transitively visible swiftmodule
//  2. -D for the union of this module's defines and all transitive ones
//  3. -Xcc -fmodule-map-file= for each transitive Clang module map
//  4. -Xcc-forwarded tokens for each transitive Clang flag string
//  5. -Xcc -D for each transitive Clang define
//
// Clang flag strings may contain spaces ("-isystem /foo").  swiftc only
// forwards the single token following each -Xcc to the Clang importer, so
// every whitespace-separated token gets its own -Xcc prefix.
func collectSwiftDepArgs(args []string, deps []*SwiftInfo,
	defines []string) ([]string, depset.DepSet[string]) {

	merged := mergeSwiftInfos(deps)

	var moduleDirs []string
	for _, module := range merged.SwiftModules.ToList() {
		moduleDirs = append(moduleDirs, filepath.Dir(module))
	}
	for _, dir := range firstUnique(moduleDirs) {
		args = append(args, "-I"+dir)
	}

	allDefines := append(append([]string(nil), defines...), merged.Defines.ToList()...)
	for _, define := range firstUnique(allDefines) {
		args = append(args, "-D"+define)
	}

	for _, moduleMap := range merged.ClangModuleMaps.ToList() {
		args = append(args, "-Xcc", "-fmodule-map-file="+moduleMap)
	}

	for _, flag := range merged.ClangFlags.ToList() {
		for _, token := range strings.Fields(flag) {
			args = append(args, "-Xcc", token)
		}
	}

	for _, define := range merged.ClangDefines.ToList() {
		args = append(args, "-Xcc", "-D"+define)
	}

	inputs := depset.Union(depset.PREORDER,
		merged.SwiftModules, merged.ClangModuleMaps, merged.ClangHeaders)

	return args, inputs
}

// firstUnique returns list with duplicates removed, keeping the first
// occurrence of each value.
func firstUnique(list []string) []string {
	seen := make(map[string]bool, len(list))
	result := make([]string, 0, len(list))
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
