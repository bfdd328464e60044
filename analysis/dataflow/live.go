// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataflow

// This file defines live variables analysis over the control flow graph of a
// function body, using the iterative algorithm of the Dragon Book (2nd ed.,
// sec. 9.2.5):
//
//	IN[EXIT] = named results, and variables read in function literals
//	for (each basic block B) IN[B] = {}
//	while (changes to any IN occur)
//	    for (each basic block B) {
//	        OUT[B] = Union(S a successor of B) IN[S]
//	        IN[B] = use[B] Union (OUT[B] - def[B])
//	    }
//
// Def and use are kept per node, so liveness is also known between the nodes
// of a block.

import (
	"go/ast"
	"go/token"
	"go/types"
	"slices"

	"golang.org/x/tools/go/cfg"
)

// LiveAfter returns the local variables whose values may be read after
// control leaves the code between start and end, which lies in the body of
// fn (a *ast.FuncDecl or *ast.FuncLit).  A read on a later iteration of an
// enclosing loop counts.
//
// Where the flow of control is not known, the result errs toward live: a
// variable read in a function literal may be read whenever it is called,
// and a variable of an enclosing function may be read after fn returns.
func LiveAfter(fn ast.Node, start, end token.Pos, info *types.Info, index *Index) VarSet {
	var ftype *ast.FuncType
	var body *ast.BlockStmt
	switch fn := fn.(type) {
	case *ast.FuncDecl:
		ftype, body = fn.Type, fn.Body
	case *ast.FuncLit:
		ftype, body = fn.Type, fn.Body
	}
	if body == nil {
		return index.NewSet()
	}

	lv := &liveVarBuilder{
		cfg:       cfg.New(body, mayReturn(info)),
		info:      info,
		index:     index,
		rangeVars: map[*ast.Ident]bool{},
	}
	lv.buildExit(ftype, body)
	lv.buildDefUse()
	lv.build()

	live := lv.leaving(start, end).Union(lv.captured)
	refs(body, info, func(v *types.Var, at ast.Node, _ bool) {
		if start <= at.Pos() && at.Pos() < end && (v.Pos() < fn.Pos() || v.Pos() >= fn.End()) {
			live.Add(v)
		}
	})
	return live
}

// mayReturn reports false only for calls to the built-in panic.
func mayReturn(info *types.Info) func(*ast.CallExpr) bool {
	return func(call *ast.CallExpr) bool {
		id, ok := ast.Unparen(call.Fun).(*ast.Ident)
		if !ok {
			return true
		}
		b, ok := info.Uses[id].(*types.Builtin)
		return !ok || b.Name() != "panic"
	}
}

type liveVarBuilder struct {
	cfg       *cfg.CFG
	info      *types.Info
	index     *Index
	rangeVars map[*ast.Ident]bool // key and value of "for k, v = range x"
	captured  VarSet              // read in a function literal
	exit      VarSet              // live when the function returns
	def, use  [][]VarSet          // per node, indexed by block then node
	in, out   []VarSet            // per block
}

// buildExit determines the variables live when the function returns.
func (lv *liveVarBuilder) buildExit(ftype *ast.FuncType, body *ast.BlockStmt) {
	lv.captured = lv.index.NewSet()
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			refs(n.Body, lv.info, func(v *types.Var, _ ast.Node, isDef bool) {
				if !isDef {
					lv.captured.Add(v)
				}
			})
			return false
		case *ast.RangeStmt:
			if n.Tok == token.ASSIGN {
				for _, e := range []ast.Expr{n.Key, n.Value} {
					if id, ok := e.(*ast.Ident); ok {
						lv.rangeVars[id] = true
					}
				}
			}
		}
		return true
	})

	lv.exit = lv.captured.Union(lv.index.NewSet())
	if ftype.Results == nil {
		return
	}
	for _, field := range ftype.Results.List {
		for _, name := range field.Names {
			if v, ok := lv.info.Defs[name].(*types.Var); ok {
				lv.exit.Add(v)
			}
		}
	}
}

// buildDefUse computes the def and use sets of every node.
func (lv *liveVarBuilder) buildDefUse() {
	lv.def = make([][]VarSet, len(lv.cfg.Blocks))
	lv.use = make([][]VarSet, len(lv.cfg.Blocks))
	for i, b := range lv.cfg.Blocks {
		for _, n := range b.Nodes {
			def, use := lv.defUse(n)
			lv.def[i] = append(lv.def[i], def)
			lv.use[i] = append(lv.use[i], use)
		}
	}
}

func (lv *liveVarBuilder) defUse(n ast.Node) (def, use VarSet) {
	def, use = lv.index.NewSet(), lv.index.NewSet()
	if id, ok := n.(*ast.Ident); ok && lv.rangeVars[id] {
		if v := localVar(lv.info, id); v != nil {
			def.Add(v)
		}
		return def, use
	}

	var lits []*ast.FuncLit
	ast.Inspect(n, func(n ast.Node) bool {
		if lit, ok := n.(*ast.FuncLit); ok {
			lits = append(lits, lit)
			return false
		}
		return true
	})
	refs(n, lv.info, func(v *types.Var, at ast.Node, isDef bool) {
		switch {
		case !isDef:
			use.Add(v)
		case !slices.ContainsFunc(lits, func(lit *ast.FuncLit) bool {
			return lit.Pos() <= at.Pos() && at.Pos() < lit.End()
		}):
			// An assignment in a function literal need not happen.
			def.Add(v)
		}
	})
	return def, use
}

// build computes the in and out sets of every block.
// Precondition: buildDefUse() must have been called previously.
func (lv *liveVarBuilder) build() {
	blocks := lv.cfg.Blocks
	lv.in = make([]VarSet, len(blocks))
	lv.out = make([]VarSet, len(blocks))
	for i := range blocks {
		lv.in[i] = lv.index.NewSet()
		lv.out[i] = lv.index.NewSet()
	}

	for change := true; change; {
		change = false
		for i := len(blocks) - 1; i >= 0; i-- {
			b := blocks[i]
			if len(b.Succs) == 0 {
				lv.out[i] = lv.exit
			} else {
				out := lv.index.NewSet()
				for _, s := range b.Succs {
					out = out.Union(lv.in[s.Index])
				}
				lv.out[i] = out
			}

			in := lv.before(b, 0)
			if !in.Equal(lv.in[i]) {
				lv.in[i] = in
				change = true
			}
		}
	}
}

// before returns the variables live just before the j'th node of b, or after
// its last node if j == len(b.Nodes).
func (lv *liveVarBuilder) before(b *cfg.Block, j int) VarSet {
	live := lv.out[b.Index]
	for k := len(b.Nodes) - 1; k >= j; k-- {
		live = lv.use[b.Index][k].Union(live.Difference(lv.def[b.Index][k]))
	}
	return live
}

// leaving returns the union of the variables live at each point control can
// reach from a node between start and end without passing through another
// such node.
// Precondition: build() must have been called previously.
func (lv *liveVarBuilder) leaving(start, end token.Pos) VarSet {
	inSpan := func(n ast.Node) bool {
		return start <= n.Pos() && n.End() <= end
	}

	live := lv.index.NewSet()
	found := false
	for _, b := range lv.cfg.Blocks {
		for j, n := range b.Nodes {
			if !inSpan(n) {
				continue
			}
			found = true
			switch {
			case j+1 == len(b.Nodes):
				live = live.Union(lv.successors(b, inSpan, map[*cfg.Block]bool{}))
			case !inSpan(b.Nodes[j+1]):
				live = live.Union(lv.before(b, j+1))
			}
		}
	}
	if found {
		return live
	}

	// The code is part of a single node, e.g., an expression.
	for _, b := range lv.cfg.Blocks {
		for j, n := range b.Nodes {
			if n.Pos() <= start && end <= n.End() {
				live = live.Union(lv.before(b, j+1))
				refs(n, lv.info, func(v *types.Var, at ast.Node, isDef bool) {
					if !isDef && at.Pos() >= end {
						live.Add(v)
					}
				})
				return live
			}
		}
	}
	return live
}

// successors returns the variables live on entry to the successors of b,
// looking through empty blocks and skipping blocks that begin in the span.
func (lv *liveVarBuilder) successors(b *cfg.Block, inSpan func(ast.Node) bool, seen map[*cfg.Block]bool) VarSet {
	if len(b.Succs) == 0 {
		return lv.exit
	}
	live := lv.index.NewSet()
	for _, s := range b.Succs {
		switch {
		case seen[s]:
		case len(s.Nodes) == 0:
			seen[s] = true
			live = live.Union(lv.successors(s, inSpan, seen))
		case !inSpan(s.Nodes[0]):
			live = live.Union(lv.in[s.Index])
		}
	}
	return live
}
