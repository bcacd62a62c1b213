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
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/google/blueprint"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func testConfig() *Config {
	config := NewConfig(".", "out")
	config.Fs = afero.NewMemMapFs()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	config.Logger = logger

	return config
}

// generateManifest runs the full blueprint flow over bp and returns the
// generated Ninja manifest together with the config whose filesystem
// received the analysis-time files.
func generateManifest(t *testing.T, bp string) (string, *Config) {
	t.Helper()

	ctx := blueprint.NewContext()
	ctx.RegisterModuleType("swift_library", NewLibrary)
	ctx.RegisterModuleType("swift_binary", NewBinary)
	ctx.MockFileSystem(map[string][]byte{
		"Blueprints": []byte(bp),
	})

	config := testConfig()

	if _, errs := ctx.ParseFileList(".", []string{"Blueprints"}); len(errs) > 0 {
		for _, err := range errs {
			t.Errorf("  %s", err)
		}
		t.Fatal("unexpected parse errors")
	}
	if _, errs := ctx.ResolveDependencies(config); len(errs) > 0 {
		for _, err := range errs {
			t.Errorf("  %s", err)
		}
		t.Fatal("unexpected dep errors")
	}
	if _, errs := ctx.PrepareBuildActions(config); len(errs) > 0 {
		for _, err := range errs {
			t.Errorf("  %s", err)
		}
		t.Fatal("unexpected generate errors")
	}

	buf := bytes.NewBuffer(nil)
	if err := ctx.WriteBuildFile(buf); err != nil {
		t.Fatalf("unexpected error writing manifest: %s", err)
	}

	return buf.String(), config
}

func generateErrors(t *testing.T, bp string) []error {
	t.Helper()

	ctx := blueprint.NewContext()
	ctx.RegisterModuleType("swift_library", NewLibrary)
	ctx.RegisterModuleType("swift_binary", NewBinary)
	ctx.MockFileSystem(map[string][]byte{
		"Blueprints": []byte(bp),
	})

	config := testConfig()

	if _, errs := ctx.ParseFileList(".", []string{"Blueprints"}); len(errs) > 0 {
		return errs
	}
	if _, errs := ctx.ResolveDependencies(config); len(errs) > 0 {
		return errs
	}
	_, errs := ctx.PrepareBuildActions(config)
	return errs
}

func TestLibraryWholeModule(t *testing.T) {
	manifest, _ := generateManifest(t, `
		swift_library {
			name: "Lib",
			srcs: ["A.swift", "B.swift"],
			swiftc_flags: ["-wmo"],
		}
	`)

	// A single-threaded WMO compile emits one object through -o and no
	// output file map.
	if !strings.Contains(manifest, "-o out/_objs/Lib/Lib.o") {
		t.Errorf("missing -o for whole-module compile:\n%s", manifest)
	}
	if strings.Contains(manifest, "-output-file-map") {
		t.Errorf("unexpected output file map for whole-module compile:\n%s", manifest)
	}
	if !strings.Contains(manifest, "build out/libLib.a") {
		t.Errorf("missing archive build statement:\n%s", manifest)
	}
	if !strings.Contains(manifest, "out/Lib.autolink") {
		t.Errorf("missing autolink extraction:\n%s", manifest)
	}
}

func TestLibraryIncremental(t *testing.T) {
	manifest, config := generateManifest(t, `
		swift_library {
			name: "Lib",
			srcs: ["A.swift"],
		}
	`)

	if !strings.Contains(manifest, "-output-file-map out/_objs/Lib/Lib.output_file_map.json") {
		t.Errorf("missing output file map argument:\n%s", manifest)
	}

	// The map itself is written during analysis.
	contents, err := afero.ReadFile(config.Fs, "out/_objs/Lib/Lib.output_file_map.json")
	if err != nil {
		t.Fatalf("output file map not written: %s", err)
	}
	for _, want := range []string{`"A.swift"`, `"object"`, `"swiftmodule"`} {
		if !strings.Contains(string(contents), want) {
			t.Errorf("output file map missing %s:\n%s", want, contents)
		}
	}
}

func TestLibraryDependencyPropagation(t *testing.T) {
	manifest, config := generateManifest(t, `
		swift_library {
			name: "Base",
			srcs: ["Base.swift"],
			swiftc_flags: ["-wmo"],
			defines: ["BASE"],
			generated_header: "Base-Swift.h",
		}

		swift_library {
			name: "App",
			srcs: ["App.swift"],
			deps: ["Base"],
		}
	`)

	// App imports Base through the directory holding its swiftmodule and
	// inherits its defines and the module map of its generated header.
	if !strings.Contains(manifest, "-Iout") {
		t.Errorf("missing -I for dependency swiftmodule dir:\n%s", manifest)
	}
	if !strings.Contains(manifest, "-DBASE") {
		t.Errorf("missing propagated define:\n%s", manifest)
	}
	if !strings.Contains(manifest, "-Xcc -fmodule-map-file=out/Base.modulemaps/module.modulemap") {
		t.Errorf("missing propagated module map:\n%s", manifest)
	}

	contents, err := afero.ReadFile(config.Fs, "out/Base.modulemaps/module.modulemap")
	if err != nil {
		t.Fatalf("module map not written: %s", err)
	}
	want := "module \"Base\" {\n  header \"../Base-Swift.h\"\n}\n"
	if string(contents) != want {
		t.Errorf("incorrect module map:\n expected: %q\n      got: %q", want, contents)
	}
}

func TestBinaryLinksDependencyArchives(t *testing.T) {
	manifest, _ := generateManifest(t, `
		swift_library {
			name: "Lib",
			srcs: ["A.swift"],
			linkopts: ["-lz"],
		}

		swift_binary {
			name: "tool",
			srcs: ["main.swift"],
			deps: ["Lib"],
		}
	`)

	if !strings.Contains(manifest, "build out/tool") {
		t.Errorf("missing binary build statement:\n%s", manifest)
	}
	if !strings.Contains(manifest, "out/libLib.a") {
		t.Errorf("missing dependency archive in link:\n%s", manifest)
	}
	if !strings.Contains(manifest, "-lz") {
		t.Errorf("missing propagated linkopts:\n%s", manifest)
	}
	if !strings.Contains(manifest, "@out/tool.autolink") {
		t.Errorf("missing autolink response file in link:\n%s", manifest)
	}
}

func TestLibraryIndexStore(t *testing.T) {
	manifest, _ := generateManifest(t, `
		swift_library {
			name: "Lib",
			srcs: ["A.swift"],
			index_while_building: true,
		}
	`)

	if !strings.Contains(manifest, "-index-store-path out/_objs/Lib/Lib.indexstore") {
		t.Errorf("missing index store path:\n%s", manifest)
	}
	if !strings.Contains(manifest, "Lib_index_store") {
		t.Errorf("missing index store output group phony:\n%s", manifest)
	}
}

func TestLibraryInvalidThreadCount(t *testing.T) {
	errs := generateErrors(t, `
		swift_library {
			name: "Lib",
			srcs: ["A.swift"],
			swiftc_flags: ["-wmo", "-num-threads", "0"],
		}
	`)

	if len(errs) == 0 {
		t.Fatal("expected errors for zero thread count")
	}
	found := false
	for _, err := range errs {
		if strings.Contains(err.Error(), "invalid value \"0\" for flag -num-threads") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected invalid thread count error, got %v", errs)
	}
}

func TestLibraryNoSources(t *testing.T) {
	errs := generateErrors(t, `
		swift_library {
			name: "Lib",
		}
	`)

	if len(errs) == 0 {
		t.Fatal("expected errors for missing srcs")
	}
	found := false
	for _, err := range errs {
		if strings.Contains(err.Error(), "missing source files") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected missing source files error, got %v", errs)
	}
}
