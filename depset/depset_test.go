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

package depset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepSetZeroValue(t *testing.T) {
	var d DepSet[string]
	assert.Nil(t, d.ToList())
	assert.True(t, d.Empty())

	// A zero-value transitive member contributes nothing.
	union := New(PREORDER, []string{"a"}, []DepSet[string]{d})
	assert.Equal(t, []string{"a"}, union.ToList())
}

func TestDepSetOrder(t *testing.T) {
	base := NewDirect(PREORDER, "base")
	mid := New(PREORDER, []string{"mid"}, []DepSet[string]{base})
	top := New(PREORDER, []string{"top"}, []DepSet[string]{mid})

	assert.Equal(t, []string{"top", "mid", "base"}, top.ToList())

	basePost := NewDirect(POSTORDER, "base")
	midPost := New(POSTORDER, []string{"mid"}, []DepSet[string]{basePost})
	topPost := New(POSTORDER, []string{"top"}, []DepSet[string]{midPost})

	assert.Equal(t, []string{"base", "mid", "top"}, topPost.ToList())
}

func TestDepSetDuplicatesAcrossPaths(t *testing.T) {
	// Diamond: top depends on left and right, both depend on shared.  The
	// shared values must appear exactly once.
	shared := NewDirect(PREORDER, "shared")
	left := New(PREORDER, []string{"left"}, []DepSet[string]{shared})
	right := New(PREORDER, []string{"right"}, []DepSet[string]{shared})
	top := New(PREORDER, []string{"top"}, []DepSet[string]{left, right})

	assert.Equal(t, []string{"top", "left", "shared", "right"}, top.ToList())
}

func TestDepSetDuplicateDirectValues(t *testing.T) {
	d := New(PREORDER, []string{"a", "b", "a"}, nil)
	assert.Equal(t, []string{"a", "b"}, d.ToList())
}

func TestDepSetUnion(t *testing.T) {
	a := NewDirect(PREORDER, "a")
	b := NewDirect(PREORDER, "b")
	u := Union(PREORDER, a, b)

	assert.Equal(t, []string{"a", "b"}, u.ToList())
}

func TestDepSetMixedOrderPanics(t *testing.T) {
	pre := NewDirect(PREORDER, "a")
	assert.Panics(t, func() {
		New(POSTORDER, nil, []DepSet[string]{pre})
	})
}

func TestDepSetMemoization(t *testing.T) {
	d := New(PREORDER, []string{"a"}, nil)
	first := d.ToList()
	second := d.ToList()
	assert.Same(t, &first[0], &second[0], "flattened list should be memoized")
}

func TestBuilder(t *testing.T) {
	base := NewDirect(PREORDER, "base")
	b := NewBuilder[string](PREORDER)
	b.Direct("one").Direct("two", "one")
	b.Transitive(base)

	assert.Equal(t, []string{"one", "two", "base"}, b.Build().ToList())
}
