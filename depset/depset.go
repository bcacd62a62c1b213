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

// Package depset implements sets of values that are computed as the union of
// other sets of values, modelled after Bazel's depsets
// (https://docs.bazel.build/versions/master/skylark/depsets.html).
//
// A DepSet is a node in a DAG of sets.  Each node holds a list of values
// that were added directly and a list of references to upstream nodes.  The
// union is not computed when the DepSet is constructed; it is computed by a
// single deduplicating traversal when ToList is called, and memoized so that
// a set that is consumed by many downstream modules is only flattened once.
// This keeps metadata aggregation over large module graphs linear in the
// number of nodes instead of quadratic in the number of paths.
package depset

import (
	"fmt"
	"sync"
)

// An Order determines where the directly added values of a DepSet appear in
// the flattened list relative to the values of its transitive sets.
type Order int

const (
	// PREORDER lists the direct values of a set before the values of its
	// transitive sets.
	PREORDER Order = iota
	// POSTORDER lists the values of the transitive sets before the direct
	// values.
	POSTORDER
)

func (o Order) String() string {
	switch o {
	case PREORDER:
		return "PREORDER"
	case POSTORDER:
		return "POSTORDER"
	default:
		panic(fmt.Errorf("unknown order value: %d", int(o)))
	}
}

// A DepSet is an immutable node in a DAG of sets.  The zero value is an
// empty PREORDER set.  DepSets are values; they may be copied, compared
// against the zero value, and embedded in provider structs freely.
type DepSet[T comparable] struct {
	handle *depSetImpl[T]
}

type depSetImpl[T comparable] struct {
	order      Order
	direct     []T
	transitive []DepSet[T]

	once sync.Once
	list []T
}

// New returns a DepSet with the given order, direct values, and transitive
// DepSets.  The direct and transitive slices are retained by the returned
// DepSet and must not be modified by the caller afterwards.  New panics if
// any of the transitive sets was built with a different order, as mixing
// orders would make the flattened order meaningless.
func New[T comparable](order Order, direct []T, transitive []DepSet[T]) DepSet[T] {
	var nonEmpty []DepSet[T]
	for _, t := range transitive {
		if t.handle == nil {
			continue
		}
		if t.handle.order != order {
			panic(fmt.Errorf("transitive set has order %s, expected %s",
				t.handle.order, order))
		}
		nonEmpty = append(nonEmpty, t)
	}

	return DepSet[T]{&depSetImpl[T]{
		order:      order,
		direct:     direct,
		transitive: nonEmpty,
	}}
}

// NewDirect is shorthand for New with no transitive sets.
func NewDirect[T comparable](order Order, direct ...T) DepSet[T] {
	return New(order, direct, nil)
}

// Union returns a DepSet that is the union of the given sets, with no
// additional direct values.
func Union[T comparable](order Order, sets ...DepSet[T]) DepSet[T] {
	return New(order, nil, sets)
}

// ToList flattens the DepSet into an ordered, duplicate-free list.  A value
// reachable through multiple paths in the DAG is listed once, at the first
// position the traversal reaches it.  The result is memoized; callers must
// not modify the returned slice.
func (d DepSet[T]) ToList() []T {
	if d.handle == nil {
		return nil
	}
	d.handle.once.Do(func() {
		seenNodes := make(map[*depSetImpl[T]]bool)
		seenValues := make(map[T]bool)
		var list []T

		var walk func(impl *depSetImpl[T])
		walk = func(impl *depSetImpl[T]) {
			if seenNodes[impl] {
				return
			}
			seenNodes[impl] = true

			visitDirect := func() {
				for _, v := range impl.direct {
					if !seenValues[v] {
						seenValues[v] = true
						list = append(list, v)
					}
				}
			}

			if impl.order == PREORDER {
				visitDirect()
			}
			for _, t := range impl.transitive {
				walk(t.handle)
			}
			if impl.order == POSTORDER {
				visitDirect()
			}
		}

		walk(d.handle)
		d.handle.list = list
	})
	return d.handle.list
}

// Empty reports whether the flattened DepSet contains no values.
func (d DepSet[T]) Empty() bool {
	return len(d.ToList()) == 0
}

// A Builder accumulates direct values and transitive DepSets and assembles
// them into a single DepSet.  It is useful when the contents of a set are
// gathered across several visitation callbacks.
type Builder[T comparable] struct {
	order      Order
	direct     []T
	transitive []DepSet[T]
}

// NewBuilder returns a Builder for a DepSet with the given order.
func NewBuilder[T comparable](order Order) *Builder[T] {
	return &Builder[T]{order: order}
}

// Direct adds direct values to the set being built.
func (b *Builder[T]) Direct(values ...T) *Builder[T] {
	b.direct = append(b.direct, values...)
	return b
}

// Transitive adds transitive DepSets to the set being built.
func (b *Builder[T]) Transitive(sets ...DepSet[T]) *Builder[T] {
	b.transitive = append(b.transitive, sets...)
	return b
}

// Build returns the assembled DepSet.  The Builder must not be reused.
func (b *Builder[T]) Build() DepSet[T] {
	return New(b.order, b.direct, b.transitive)
}
