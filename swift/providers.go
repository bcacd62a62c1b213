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
	"swiftbp/depset"
)

// This file defines the metadata that swift modules exchange through the
// dependency graph.  A module constructs its SwiftInfo and ObjcInfo once,
// at the end of GenerateBuildActions, and never modifies them afterwards;
// dependents read them through the SwiftDependency and ObjcDependency
// interfaces while visiting their direct deps.  All collection-valued
// fields are depsets holding references to the upstream sets, so a module
// deep in the graph does not copy the metadata of everything below it.

// A SwiftDependency is a module that Swift code can import.
type SwiftDependency interface {
	SwiftInfo() *SwiftInfo
}

// An ObjcDependency is a module that exposes Objective-C compilation and
// linking metadata.  Swift libraries implement it too, so that Objective-C
// consumers can link against them and import their generated headers.
type ObjcDependency interface {
	ObjcInfo() *ObjcInfo
}

// SwiftInfo is the metadata a Swift module propagates to the Swift modules
// that depend on it.
type SwiftInfo struct {
	// SwiftModules holds the swiftmodule interface files importable from
	// this module and everything it depends on.
	SwiftModules depset.DepSet[string]

	// Defines holds the conditional-compilation defines that must be set
	// when compiling any dependent of this module.
	Defines depset.DepSet[string]

	// ClangModuleMaps, ClangHeaders, ClangFlags, and ClangDefines carry
	// the Clang importer state needed to rebuild this module's view of
	// its Objective-C dependencies at every downstream compile site.
	// ClangFlags entries are flag strings that may contain spaces.
	ClangModuleMaps depset.DepSet[string]
	ClangHeaders    depset.DepSet[string]
	ClangFlags      depset.DepSet[string]
	ClangDefines    depset.DepSet[string]

	// Linkopts holds linker options for binaries with this module in
	// their dependency graph.
	Linkopts depset.DepSet[string]
}

// mergeSwiftInfos returns the union view of a list of SwiftInfos.  Each
// resulting field is a depset over the corresponding upstream sets, built
// without flattening anything.
func mergeSwiftInfos(infos []*SwiftInfo) *SwiftInfo {
	merged := &SwiftInfo{}
	gather := func(field func(*SwiftInfo) *depset.DepSet[string]) {
		sets := make([]depset.DepSet[string], 0, len(infos))
		for _, info := range infos {
			sets = append(sets, *field(info))
		}
		*field(merged) = depset.Union(depset.PREORDER, sets...)
	}

	gather(func(i *SwiftInfo) *depset.DepSet[string] { return &i.SwiftModules })
	gather(func(i *SwiftInfo) *depset.DepSet[string] { return &i.Defines })
	gather(func(i *SwiftInfo) *depset.DepSet[string] { return &i.ClangModuleMaps })
	gather(func(i *SwiftInfo) *depset.DepSet[string] { return &i.ClangHeaders })
	gather(func(i *SwiftInfo) *depset.DepSet[string] { return &i.ClangFlags })
	gather(func(i *SwiftInfo) *depset.DepSet[string] { return &i.ClangDefines })
	gather(func(i *SwiftInfo) *depset.DepSet[string] { return &i.Linkopts })

	return merged
}

// ObjcInfo is the metadata a module exposes to Objective-C consumers and
// producers.  Framework file paths are paths to the framework bundle; the
// search path passed to the compiler is the bundle's parent directory.
type ObjcInfo struct {
	Headers         depset.DepSet[string]
	UmbrellaHeaders depset.DepSet[string]
	ModuleMaps      depset.DepSet[string]

	StaticFrameworkFiles  depset.DepSet[string]
	DynamicFrameworkFiles depset.DepSet[string]

	Includes depset.DepSet[string]

	// FrameworkDirs holds static framework search directories;
	// AllFrameworkDirs additionally includes the dynamic ones.
	FrameworkDirs    depset.DepSet[string]
	AllFrameworkDirs depset.DepSet[string]

	Defines    depset.DepSet[string]
	Libraries  depset.DepSet[string]
	LinkInputs depset.DepSet[string]
	Linkopts   depset.DepSet[string]

	// UsesSwift marks a dependency chain that contains Swift code, which
	// makes the link step run autolink extraction on ELF targets.
	UsesSwift bool
}

// mergeObjcInfos returns the union view of a list of ObjcInfos.  The
// inbound interop path reads module maps from this single combined view
// rather than concatenating the per-dependency lists: with strict module
// map propagation the same map is commonly reachable through many deps,
// and repeating -fmodule-map-file for each path overruns command line
// limits on large graphs.
func mergeObjcInfos(infos []*ObjcInfo) *ObjcInfo {
	merged := &ObjcInfo{}
	gather := func(field func(*ObjcInfo) *depset.DepSet[string]) {
		sets := make([]depset.DepSet[string], 0, len(infos))
		for _, info := range infos {
			sets = append(sets, *field(info))
		}
		*field(merged) = depset.Union(depset.PREORDER, sets...)
	}

	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.Headers })
	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.UmbrellaHeaders })
	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.ModuleMaps })
	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.StaticFrameworkFiles })
	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.DynamicFrameworkFiles })
	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.Includes })
	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.FrameworkDirs })
	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.AllFrameworkDirs })
	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.Defines })
	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.Libraries })
	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.LinkInputs })
	gather(func(i *ObjcInfo) *depset.DepSet[string] { return &i.Linkopts })

	for _, info := range infos {
		merged.UsesSwift = merged.UsesSwift || info.UsesSwift
	}

	return merged
}
