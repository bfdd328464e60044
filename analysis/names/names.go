// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package names answers questions about identifiers: which identifiers
// refer to an object, whether a name can be introduced without conflict, and
// whether an identifier is written rather than read.
package names

import (
	"go/ast"
	"go/token"
	"go/types"
	"sort"
)

// IsLocal reports whether obj is a variable declared inside a function:
// a local variable, parameter, result, or type switch clause variable.
// Struct fields and package-level variables are not local.
func IsLocal(obj types.Object) bool {
	v, ok := obj.(*types.Var)
	if !ok || v.IsField() || v.Pkg() == nil {
		return false
	}
	scope := v.Parent()
	return scope != nil && scope != types.Universe && scope != v.Pkg().Scope()
}

// LookupAt returns the object that name denotes at pos in pkg, or nil.
func LookupAt(pkg *types.Package, name string, pos token.Pos) types.Object {
	scope := pkg.Scope().Innermost(pos)
	if scope == nil {
		scope = pkg.Scope()
	}
	_, obj := scope.LookupParent(name, pos)
	return obj
}

/* -=-=- Search by Object  -=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=- */

// FindOccurrences returns the identifiers in info that declare or refer to
// obj, sorted by position.
func FindOccurrences(obj types.Object, info *types.Info) []*ast.Ident {
	var result []*ast.Ident
	for id, o := range info.Defs {
		if o == obj {
			result = append(result, id)
		}
	}
	for id, o := range info.Uses {
		if o == obj {
			result = append(result, id)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Pos() < result[j].Pos()
	})
	return result
}
