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

// BinaryProperties are the Blueprints properties of a swift_binary module.
type BinaryProperties struct {
	// Srcs are the Swift source files, relative to the Blueprints file.
	Srcs []string

	// Deps are the names of the modules this binary compiles and links
	// against.
	Deps []string

	// Module_name overrides the Swift module name, which defaults to the
	// Blueprints module name.
	Module_name string

	// Swiftc_flags are passed to the compile invocation verbatim.
	Swiftc_flags []string

	// Defines are conditional-compilation defines for this compile.
	Defines []string

	// Linkopts are appended to the link invocation.
	Linkopts []string
}

type binary struct {
	properties BinaryProperties

	output string
}

// NewBinary is the module factory for swift_binary.
func NewBinary() (blueprint.Module, []interface{}) {
	module := new(binary)
	return module, []interface{}{&module.properties}
}

func (b *binary) DynamicDependencies(ctx blueprint.DynamicDependerModuleContext) []string {
	return b.properties.Deps
}

func (b *binary) GenerateBuildActions(ctx blueprint.ModuleContext) {
	config := ctx.Config().(*Config)

	if len(b.properties.Srcs) == 0 {
		ctx.PropertyErrorf("srcs", "missing source files")
		return
	}

	moduleName := b.properties.Module_name
	if moduleName == "" {
		moduleName = ctx.ModuleName()
	}

	flags := b.properties.Swiftc_flags
	nature, err := outputNatureOf(flags)
	if err != nil {
		ctx.ModuleErrorf("%s", err)
		return
	}

	srcs := pathtools.PrefixPaths(b.properties.Srcs, ctx.ModuleDir())

	swiftDeps, objcDeps := gatherDepInfos(ctx)

	args := append([]string(nil), flags...)
	args, swiftInputs := collectSwiftDepArgs(args, swiftDeps, b.properties.Defines)
	args, objcInputs := collectClangImportArgs(args, objcDeps, config.ClangCopts)

	outDir := filepath.Join(config.BuildDir, ctx.ModuleDir())
	objDir := filepath.Join(outDir, "_objs", moduleName)
	outputs := planOutputs(nature, srcs, moduleName, objDir, false)

	implicits := append(swiftInputs.ToList(), objcInputs.ToList()...)
	if outputs.outputFileMap != nil {
		if err := writeOutputFileMap(config.Fs, outputs.outputFileMapPath, outputs.outputFileMap); err != nil {
			ctx.ModuleErrorf("%s", err)
			return
		}
		implicits = append(implicits, outputs.outputFileMapPath)
	}

	args = append(args, outputs.args...)

	modulePath := filepath.Join(outDir, moduleName+moduleExtension)
	TransformSrcsToModule(ctx, config, moduleName, srcs, args, implicits, nil,
		outputs, modulePath)

	// The autolink information of the binary's own objects joins the link
	// as a response file, so libraries referenced from Swift sources are
	// linked without being spelled out in linkopts.
	autolinkFile := filepath.Join(outDir, moduleName+".autolink")
	TransformAutolinkExtract(ctx, config, outputs.objects, autolinkFile)

	// Link metadata comes from every dependency's ObjcInfo, including the
	// Swift libraries: their archives and swiftmodule link inputs are
	// propagated the same way as Objective-C ones.
	var allLinkInfos []*ObjcInfo
	ctx.VisitDirectDeps(func(m blueprint.Module) {
		if dep, ok := m.(ObjcDependency); ok {
			allLinkInfos = append(allLinkInfos, dep.ObjcInfo())
		}
	})
	linkDeps := mergeObjcInfos(allLinkInfos)

	ldFlags := append([]string(nil), b.properties.Linkopts...)
	ldFlags = append(ldFlags, linkDeps.Linkopts.ToList()...)
	ldFlags = append(ldFlags, "@"+autolinkFile)

	linkInputs := append(linkDeps.LinkInputs.ToList(), autolinkFile)

	b.output = filepath.Join(outDir, moduleName)
	TransformObjsToBinary(ctx, config, outputs.objects,
		linkDeps.Libraries.ToList(), linkInputs, ldFlags, b.output)

	ctx.Build(pctx, blueprint.BuildParams{
		Rule:      blueprint.Phony,
		Outputs:   []string{ctx.ModuleName()},
		Implicits: []string{b.output},
		Optional:  true,
	})
}
