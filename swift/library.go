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

	"github.com/google/blueprint"
	"github.com/google/blueprint/pathtools"
)

// LibraryProperties are the Blueprints properties of a swift_library
// module.
type LibraryProperties struct {
	// Srcs are the Swift source files, relative to the Blueprints file.
	Srcs []string

	// Deps are the names of the modules this library compiles and links
	// against.
	Deps []string

	// Module_name overrides the Swift module name, which defaults to the
	// Blueprints module name.
	Module_name string

	// Swiftc_flags are passed to the compile invocation verbatim, before
	// the flags derived from dependencies and outputs.
	Swiftc_flags []string

	// Defines are conditional-compilation defines, applied here and in
	// every module that transitively depends on this one.
	Defines []string

	// Linkopts are linker options for binaries that transitively depend
	// on this library.
	Linkopts []string

	// Generated_header names the Objective-C interop header to generate
	// for this module.  Empty means no header is generated.
	Generated_header string

	// Module_map points at a hand-written module map for the generated
	// header, relative to the Blueprints file.  When unset and a header
	// is generated, a module map is written automatically.
	Module_map string

	// Index_while_building requests an index-store directory alongside
	// the compile, surfaced through the index_store output group.
	Index_while_building bool
}

type library struct {
	properties LibraryProperties

	swiftInfo *SwiftInfo
	objcInfo  *ObjcInfo

	archive string
}

// NewLibrary is the module factory for swift_library.
func NewLibrary() (blueprint.Module, []interface{}) {
	module := new(library)
	return module, []interface{}{&module.properties}
}

func (l *library) DynamicDependencies(ctx blueprint.DynamicDependerModuleContext) []string {
	return l.properties.Deps
}

func (l *library) SwiftInfo() *SwiftInfo { return l.swiftInfo }
func (l *library) ObjcInfo() *ObjcInfo   { return l.objcInfo }

// Archive returns the static archive built for this library.
func (l *library) Archive() string { return l.archive }

func (l *library) GenerateBuildActions(ctx blueprint.ModuleContext) {
	config := ctx.Config().(*Config)

	if len(l.properties.Srcs) == 0 {
		ctx.PropertyErrorf("srcs", "missing source files")
		return
	}

	moduleName := l.properties.Module_name
	if moduleName == "" {
		moduleName = ctx.ModuleName()
	}

	flags := l.properties.Swiftc_flags
	nature, err := outputNatureOf(flags)
	if err != nil {
		ctx.ModuleErrorf("%s", err)
		return
	}

	logger := config.Logger.WithField("module", moduleName)
	if version, ok := flagValue(flags, "-swift-version"); ok {
		logger = logger.WithField("swift_version", version)
	}
	logger.Debugf("planning compile of %d sources", len(l.properties.Srcs))

	srcs := pathtools.PrefixPaths(l.properties.Srcs, ctx.ModuleDir())

	swiftDeps, objcDeps := gatherDepInfos(ctx)

	args := append([]string(nil), flags...)
	args, swiftInputs := collectSwiftDepArgs(args, swiftDeps, l.properties.Defines)
	args, objcInputs := collectClangImportArgs(args, objcDeps, config.ClangCopts)

	outDir := filepath.Join(config.BuildDir, ctx.ModuleDir())
	objDir := filepath.Join(outDir, "_objs", moduleName)
	outputs := planOutputs(nature, srcs, moduleName, objDir, l.properties.Index_while_building)

	implicits := append(swiftInputs.ToList(), objcInputs.ToList()...)
	if outputs.outputFileMap != nil {
		if err := writeOutputFileMap(config.Fs, outputs.outputFileMapPath, outputs.outputFileMap); err != nil {
			ctx.ModuleErrorf("%s", err)
			return
		}
		implicits = append(implicits, outputs.outputFileMapPath)
	}

	generatedHeader := ""
	if l.properties.Generated_header != "" {
		generatedHeader = filepath.Join(outDir, l.properties.Generated_header)
		args = append(args, "-emit-objc-header-path", generatedHeader)
	}

	moduleMap := ""
	switch {
	case l.properties.Module_map != "":
		moduleMap = filepath.Join(ctx.ModuleDir(), l.properties.Module_map)
	case generatedHeader != "":
		moduleMap = filepath.Join(outDir, moduleName+".modulemaps", "module.modulemap")
		if err := writeModuleMap(config.Fs, moduleMap, moduleName, generatedHeader); err != nil {
			ctx.ModuleErrorf("%s", err)
			return
		}
	}

	args = append(args, outputs.args...)

	var implicitOutputs []string
	if generatedHeader != "" {
		implicitOutputs = append(implicitOutputs, generatedHeader)
	}

	modulePath := filepath.Join(outDir, moduleName+moduleExtension)
	TransformSrcsToModule(ctx, config, moduleName, srcs, args, implicits,
		implicitOutputs, outputs, modulePath)

	l.archive = filepath.Join(outDir, "lib"+moduleName+archiveExtension)
	TransformObjsToArchive(ctx, config, outputs.objects, l.archive)

	autolinkFile := filepath.Join(outDir, moduleName+".autolink")
	TransformAutolinkExtract(ctx, config, outputs.objects, autolinkFile)

	if dir, ok := outputs.outputGroups[IndexStoreOutputGroup]; ok {
		ctx.Build(pctx, blueprint.BuildParams{
			Rule:      blueprint.Phony,
			Outputs:   []string{moduleName + "_" + IndexStoreOutputGroup},
			Implicits: dir,
			Optional:  true,
		})
	}

	l.swiftInfo = l.exportedSwiftInfo(modulePath, moduleMap, generatedHeader, swiftDeps)
	l.objcInfo = newObjcInfo(objcDeps, objcOutbound{
		includeDir:      outDir,
		archive:         l.archive,
		swiftModule:     modulePath,
		generatedHeader: generatedHeader,
		moduleMap:       moduleMap,
		linkopts:        l.properties.Linkopts,
	})
}

func (l *library) exportedSwiftInfo(modulePath, moduleMap, generatedHeader string,
	deps []*SwiftInfo) *SwiftInfo {

	merged := mergeSwiftInfos(deps)

	var moduleMaps []string
	if moduleMap != "" {
		moduleMaps = append(moduleMaps, moduleMap)
	}
	var headers []string
	if generatedHeader != "" {
		headers = append(headers, generatedHeader)
	}

	return &SwiftInfo{
		SwiftModules:    newDepSet([]string{modulePath}, merged.SwiftModules),
		Defines:         newDepSet(l.properties.Defines, merged.Defines),
		ClangModuleMaps: newDepSet(moduleMaps, merged.ClangModuleMaps),
		ClangHeaders:    newDepSet(headers, merged.ClangHeaders),
		ClangFlags:      merged.ClangFlags,
		ClangDefines:    merged.ClangDefines,
		Linkopts:        newDepSet(l.properties.Linkopts, merged.Linkopts),
	}
}

// gatherDepInfos collects the metadata exported by the direct dependencies
// of the module being generated.  A Swift dependency is consumed through
// its SwiftInfo, which already carries the Clang importer state for the
// Objective-C modules below it; only non-Swift dependencies go through the
// inbound interop bridge.
func gatherDepInfos(ctx blueprint.ModuleContext) ([]*SwiftInfo, []*ObjcInfo) {
	var swiftDeps []*SwiftInfo
	var objcDeps []*ObjcInfo
	ctx.VisitDirectDeps(func(m blueprint.Module) {
		switch dep := m.(type) {
		case SwiftDependency:
			swiftDeps = append(swiftDeps, dep.SwiftInfo())
		case ObjcDependency:
			objcDeps = append(objcDeps, dep.ObjcInfo())
		default:
			ctx.OtherModuleErrorf(m, "module %q is not a swift or objc dependency",
				ctx.OtherModuleName(m))
		}
	})
	return swiftDeps, objcDeps
}
