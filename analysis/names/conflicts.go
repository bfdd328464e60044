// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package names

import (
	"go/ast"
	"go/types"
)

/* -=-=- Search for Conflicting Declarations -=-=-=-=-=-=-=-=-=-=-=-=-=-=-=- */

// FindConflict determines whether a new declaration of name in scope would
// clash with or capture an existing one.  It returns the first such object:
// one already declared with that name in scope or in a scope nested within
// it, or an object declared outside scope that is referred to by name inside
// it (whose references the new declaration would shadow).  It returns nil if
// there is none.
func FindConflict(scope *types.Scope, name string, info *types.Info) types.Object {
	if obj := findConflictInChildScope(scope, name); obj != nil {
		return obj
	}

	var result types.Object
	var resultID *ast.Ident
	for id, obj := range info.Uses {
		if id.Name != name || !scope.Contains(id.Pos()) {
			continue
		}
		if obj.Parent() != nil && withinScope(obj.Parent(), scope) {
			continue
		}
		if resultID == nil || id.Pos() < resultID.Pos() {
			result, resultID = obj, id
		}
	}
	return result
}

func findConflictInChildScope(scope *types.Scope, name string) types.Object {
	if obj := scope.Lookup(name); obj != nil {
		return obj
	}
	for i := 0; i < scope.NumChildren(); i++ {
		if obj := findConflictInChildScope(scope.Child(i), name); obj != nil {
			return obj
		}
	}
	return nil
}

// withinScope reports whether inner is outer or nested inside it.
func withinScope(inner, outer *types.Scope) bool {
	for s := inner; s != nil; s = s.Parent() {
		if s == outer {
			return true
		}
	}
	return false
}
