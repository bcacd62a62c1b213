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
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// moduleMapContents formats a module map that exposes a generated interop
// header as an importable Clang module.  The map lives in a directory next
// to the header, hence the ../ in the header path.  The format is consumed
// verbatim by Clang; do not reflow it.
func moduleMapContents(moduleName, headerPath string) string {
	return fmt.Sprintf("module \"%s\" {\n  header \"../%s\"\n}\n",
		moduleName, filepath.Base(headerPath))
}

// writeModuleMap writes the module map for moduleName's generated header to
// path.
func writeModuleMap(fs afero.Fs, path, moduleName, headerPath string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return err
	}
	contents := moduleMapContents(moduleName, headerPath)
	return afero.WriteFile(fs, path, []byte(contents), 0666)
}
