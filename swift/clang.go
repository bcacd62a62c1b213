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

// The Clang interop bridge has two directions.  collectClangImportArgs
// prepares a Swift compile to import Objective-C dependencies through the
// Clang importer.  newObjcInfo packages a compiled Swift library so that
// Objective-C consumers (and further-downstream Swift consumers reached
// through them) can link it and import its generated header.

// collectClangImportArgs appends to args the Clang importer arguments for
// compiling Swift sources against the Objective-C dependencies in infos,
// and returns the extended argument list together with the dependency
// files the compile action reads.  copts are the global Objective-C
// compile options from the Config.
//
// Each category is emitted completely before the next: include dirs,
// framework search paths, autolink suppression for static frameworks, the
// quote-include of the workspace root, defines, module maps, then the
// filtered global copts.
func collectClangImportArgs(args []string, infos []*ObjcInfo,
	copts []string) ([]string, depset.DepSet[string]) {

	for _, info := range infos {
		for _, dir := range info.Includes.ToList() {
			args = append(args, "-I"+dir)
		}
	}

	var frameworkDirs []string
	for _, info := range infos {
		frameworkDirs = append(frameworkDirs, info.FrameworkDirs.ToList()...)
		frameworkDirs = append(frameworkDirs, info.AllFrameworkDirs.ToList()...)
	}
	for _, dir := range firstUnique(parentDirs(frameworkDirs)) {
		args = append(args, "-F"+dir)
	}

	// A static framework linked into both a library and the binary that
	// links the library would be loaded twice if the frontend recorded an
	// autolink load command for it here.
	for _, info := range infos {
		for _, framework := range info.StaticFrameworkFiles.ToList() {
			args = append(args,
				"-Xfrontend", "-disable-autolink-framework",
				"-Xfrontend", frameworkName(framework))
		}
	}

	// Headers reached through module maps use workspace-relative quoted
	// includes; make sure the importer can resolve them.
	args = append(args, "-Xcc", "-iquote", "-Xcc", ".")

	var defines []string
	for _, info := range infos {
		defines = append(defines, info.Defines.ToList()...)
	}
	for _, define := range firstUnique(defines) {
		args = append(args, "-Xcc", "-D"+define)
	}

	// Module maps come from the combined view of all deps.  Every map in
	// the closure is loaded explicitly: a header parsed once as modular
	// and once as textual produces duplicate definitions at link time.
	merged := mergeObjcInfos(infos)
	for _, moduleMap := range merged.ModuleMaps.ToList() {
		args = append(args, "-Xcc", "-fmodule-map-file="+moduleMap)
	}

	for _, copt := range copts {
		// Clang debug info options do not mix with explicit modules.
		if copt == "-g" {
			continue
		}
		args = append(args, "-Xcc", copt)
	}

	inputs := depset.Union(depset.PREORDER,
		merged.Headers, merged.UmbrellaHeaders, merged.ModuleMaps,
		merged.StaticFrameworkFiles, merged.DynamicFrameworkFiles)

	return args, inputs
}

// objcOutbound describes one compiled Swift library from the point of view
// of its Objective-C consumers.
type objcOutbound struct {
	includeDir      string
	archive         string
	swiftModule     string
	generatedHeader string // "" when the library emits no header
	moduleMap       string // "" when there is no module map to propagate
	extraLinkInputs []string
	linkopts        []string
}

// newObjcInfo builds the ObjcInfo a Swift library exposes downstream.
//
// Everything reachable through deps is re-propagated, not just what this
// library added: with strict module map propagation the maps of a direct
// Objective-C dependency were already consumed while compiling here, but a
// Swift consumer two levels down still needs them to import this module's
// generated header.  The module map set is therefore built as a second,
// transitive-only aggregate over deps, separate from the combined view
// collectClangImportArgs used for the compile itself.
func newObjcInfo(deps []*ObjcInfo, out objcOutbound) *ObjcInfo {
	transitive := mergeObjcInfos(deps)

	var headers []string
	if out.generatedHeader != "" {
		headers = append(headers, out.generatedHeader)
	}

	var moduleMaps []string
	if out.moduleMap != "" {
		moduleMaps = append(moduleMaps, out.moduleMap)
	}

	linkInputs := append([]string{out.swiftModule}, out.extraLinkInputs...)

	return &ObjcInfo{
		Headers:         newDepSet(headers, transitive.Headers),
		UmbrellaHeaders: transitive.UmbrellaHeaders,
		ModuleMaps:      newDepSet(moduleMaps, transitive.ModuleMaps),

		StaticFrameworkFiles:  transitive.StaticFrameworkFiles,
		DynamicFrameworkFiles: transitive.DynamicFrameworkFiles,

		Includes: newDepSet([]string{out.includeDir}, transitive.Includes),

		FrameworkDirs:    transitive.FrameworkDirs,
		AllFrameworkDirs: transitive.AllFrameworkDirs,

		Defines:    transitive.Defines,
		Libraries:  newDepSet([]string{out.archive}, transitive.Libraries),
		LinkInputs: newDepSet(linkInputs, transitive.LinkInputs),
		Linkopts:   newDepSet(out.linkopts, transitive.Linkopts),

		UsesSwift: true,
	}
}

func newDepSet(direct []string, transitive depset.DepSet[string]) depset.DepSet[string] {
	return depset.New(depset.PREORDER, direct, []depset.DepSet[string]{transitive})
}

// parentDirs maps each path to its containing directory.
func parentDirs(paths []string) []string {
	dirs := make([]string, len(paths))
	for i, path := range paths {
		dirs[i] = filepath.Dir(path)
	}
	return dirs
}

// frameworkName returns the framework name for a framework path: the part
// of the base name before the first dot.
func frameworkName(path string) string {
	base := filepath.Base(path)
	if dot := strings.Index(base, "."); dot != -1 {
		return base[:dot]
	}
	return base
}
