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
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleMapContents(t *testing.T) {
	want := "module \"MyLib\" {\n  header \"../MyLib-Swift.h\"\n}\n"
	assert.Equal(t, want, moduleMapContents("MyLib", "out/lib/MyLib-Swift.h"))
}

func TestWriteModuleMap(t *testing.T) {
	fs := afero.NewMemMapFs()
	err := writeModuleMap(fs, "out/lib/MyLib.modulemaps/module.modulemap",
		"MyLib", "out/lib/MyLib-Swift.h")
	require.NoError(t, err)

	contents, err := afero.ReadFile(fs, "out/lib/MyLib.modulemaps/module.modulemap")
	require.NoError(t, err)
	assert.Equal(t,
		"module \"MyLib\" {\n  header \"../MyLib-Swift.h\"\n}\n",
		string(contents))
}
