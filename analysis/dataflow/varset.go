// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataflow

import (
	"go/types"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// An Index numbers variables so that sets of them can be stored as bit sets.
// Sets can only be combined with other sets from the same Index.
type Index struct {
	vars []*types.Var
	ids  map[*types.Var]uint
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{ids: map[*types.Var]uint{}}
}

// ID returns the number of v, assigning the next unused number if v has
// none.
func (x *Index) ID(v *types.Var) uint {
	if id, ok := x.ids[v]; ok {
		return id
	}
	id := uint(len(x.vars))
	x.vars = append(x.vars, v)
	x.ids[v] = id
	return id
}

// Var returns the variable numbered id.
func (x *Index) Var(id uint) *types.Var {
	return x.vars[id]
}

// Len returns the number of variables numbered so far.
func (x *Index) Len() int {
	return len(x.vars)
}

// NewSet returns a set containing the given variables.
func (x *Index) NewSet(vars ...*types.Var) VarSet {
	s := VarSet{index: x, bits: bitset.New(uint(len(x.vars)))}
	for _, v := range vars {
		s.Add(v)
	}
	return s
}

// A VarSet is a set of variables.  Add modifies the set in place; the other
// operations return new sets.
type VarSet struct {
	index *Index
	bits  *bitset.BitSet
}

// Add inserts v into s.
func (s VarSet) Add(v *types.Var) {
	s.bits.Set(s.index.ID(v))
}

// Contains reports whether v is in s.
func (s VarSet) Contains(v *types.Var) bool {
	id, ok := s.index.ids[v]
	return ok && s.bits.Test(id)
}

// Len returns the number of variables in s.
func (s VarSet) Len() int {
	return int(s.bits.Count())
}

// IsEmpty reports whether s has no members.
func (s VarSet) IsEmpty() bool {
	return s.bits.None()
}

func (s VarSet) Union(t VarSet) VarSet {
	return VarSet{index: s.index, bits: s.bits.Union(t.bits)}
}

func (s VarSet) Intersection(t VarSet) VarSet {
	return VarSet{index: s.index, bits: s.bits.Intersection(t.bits)}
}

// Difference returns the members of s that are not in t.
func (s VarSet) Difference(t VarSet) VarSet {
	return VarSet{index: s.index, bits: s.bits.Difference(t.bits)}
}

// Equal reports whether s and t have the same members.
func (s VarSet) Equal(t VarSet) bool {
	return s.bits.SymmetricDifferenceCardinality(t.bits) == 0
}

// Vars returns the members of s in the order they were numbered.
func (s VarSet) Vars() []*types.Var {
	var result []*types.Var
	for id, ok := s.bits.NextSet(0); ok; id, ok = s.bits.NextSet(id + 1) {
		result = append(result, s.index.Var(id))
	}
	return result
}

func (s VarSet) String() string {
	var names []string
	for _, v := range s.Vars() {
		names = append(names, v.Name())
	}
	return "{" + strings.Join(names, ", ") + "}"
}
