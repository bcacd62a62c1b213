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

// This file declares the Ninja rules for Swift compilation and the
// Transform* functions that emit build statements for them.  All decisions
// about what to compile and with which arguments are made by the planning
// code; by the time a Transform function runs, everything has been reduced
// to file lists and argument strings.

import (
	"strings"

	"github.com/google/blueprint"
)

const (
	objectExtension  = ".o"
	archiveExtension = ".a"
	moduleExtension  = ".swiftmodule"
)

var (
	pctx = blueprint.NewPackageContext("swiftbp/swift")

	swiftc = pctx.StaticRule("swiftc",
		blueprint.RuleParams{
			Command:        "$swiftcCmd -module-name $moduleName -emit-object -emit-module-path $emitModulePath $swiftcFlags @$rspFile",
			Rspfile:        "$rspFile",
			RspfileContent: "$in",
			Description:    "swiftc $moduleName",
		},
		"swiftcCmd", "moduleName", "emitModulePath", "swiftcFlags", "rspFile")

	swiftLink = pctx.StaticRule("swiftLink",
		blueprint.RuleParams{
			Command:        "$swiftcCmd -o $out $ldFlags @${out}.rsp",
			Rspfile:        "${out}.rsp",
			RspfileContent: "$in",
			Description:    "link $out",
		},
		"swiftcCmd", "ldFlags")

	ar = pctx.StaticRule("ar",
		blueprint.RuleParams{
			Command:        "rm -f ${out} && $arCmd crsPD $out @${out}.rsp",
			Rspfile:        "${out}.rsp",
			RspfileContent: "$in",
			Description:    "ar $out",
		},
		"arCmd")

	autolinkExtract = pctx.StaticRule("autolinkExtract",
		blueprint.RuleParams{
			Command:     "$autolinkExtractCmd $in -o $out",
			Description: "autolink-extract $out",
		},
		"autolinkExtractCmd")
)

// TransformSrcsToModule declares the build statement that compiles srcs
// into the planned outputs.  implicits are the transitive dependency files
// the compiler reads (swiftmodules, module maps, headers, plus the output
// file map when one was written); implicitOutputs are extra files the
// compiler writes, like a generated interop header.
func TransformSrcsToModule(ctx blueprint.ModuleContext, config *Config,
	moduleName string, srcs, args, implicits, implicitOutputs []string,
	outputs *compileOutputs, modulePath string) {

	buildOutputs := append([]string{modulePath}, outputs.allOutputs()...)

	ctx.Build(pctx, blueprint.BuildParams{
		Rule:            swiftc,
		Outputs:         buildOutputs,
		ImplicitOutputs: implicitOutputs,
		Inputs:          srcs,
		Implicits:       implicits,
		Args: map[string]string{
			"swiftcCmd":      config.SwiftcCmd,
			"moduleName":     moduleName,
			"emitModulePath": modulePath,
			"swiftcFlags":    strings.Join(args, " "),
			"rspFile":        modulePath + ".rsp",
		},
	})
}

// TransformObjsToArchive declares the build statement that archives
// objFiles into the static library outputFile.
func TransformObjsToArchive(ctx blueprint.ModuleContext, config *Config,
	objFiles []string, outputFile string) {

	ctx.Build(pctx, blueprint.BuildParams{
		Rule:    ar,
		Outputs: []string{outputFile},
		Inputs:  objFiles,
		Args: map[string]string{
			"arCmd": config.ArCmd,
		},
	})
}

// TransformAutolinkExtract declares the build statement that recovers the
// autolink information embedded in objFiles into outputFile.  The tool is
// invoked as "<objects...> -o <output>".
func TransformAutolinkExtract(ctx blueprint.ModuleContext, config *Config,
	objFiles []string, outputFile string) {

	ctx.Build(pctx, blueprint.BuildParams{
		Rule:    autolinkExtract,
		Outputs: []string{outputFile},
		Inputs:  objFiles,
		Args: map[string]string{
			"autolinkExtractCmd": config.AutolinkExtractCmd,
		},
	})
}

// TransformObjsToBinary declares the build statement that links objFiles
// and the dependency archives into the executable outputFile.
func TransformObjsToBinary(ctx blueprint.ModuleContext, config *Config,
	objFiles, archives, linkInputs, ldFlags []string, outputFile string) {

	flags := append(append([]string(nil), archives...), ldFlags...)

	ctx.Build(pctx, blueprint.BuildParams{
		Rule:      swiftLink,
		Outputs:   []string{outputFile},
		Inputs:    objFiles,
		Implicits: append(append([]string(nil), archives...), linkInputs...),
		Args: map[string]string{
			"swiftcCmd": config.SwiftcCmd,
			"ldFlags":   strings.Join(flags, " "),
		},
	})
}
