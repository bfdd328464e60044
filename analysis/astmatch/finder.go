// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package astmatch

import "go/ast"

// A Finder locates every node in a syntax tree that matches a reference node.
type Finder struct {
	Matcher Matcher
}

// FindMatchingNodes returns every node in scope (scope itself included) that
// is structurally equal to ref, comparing identifiers by name.  Nodes are
// returned in pre-order.  Once a node matches, its descendants are not
// searched.  If ref lies within scope it is among the results.
func FindMatchingNodes(scope, ref ast.Node) []ast.Node {
	var f Finder
	return f.FindMatchingNodes(scope, ref)
}

// FindMatchingNodes is like the package-level function but compares nodes
// with f.Matcher.
func (f *Finder) FindMatchingNodes(scope, ref ast.Node) []ast.Node {
	if isNil(scope) || isNil(ref) {
		return nil
	}
	var result []ast.Node
	ast.Inspect(scope, func(n ast.Node) bool {
		if n == nil {
			return false
		}
		if f.Matcher.Match(n, ref) {
			result = append(result, n)
			return false
		}
		return true
	})
	return result
}
