// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loader wraps golang.org/x/tools/go/packages with the types and
// methods the refactorings use to navigate a type-checked program.
package loader

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/packages"
)

// Mode is the packages.LoadMode used by Load: every refactoring needs syntax
// trees and type information for the packages in scope.  Dependencies are
// type checked from export data and have no syntax.
const Mode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedTypesSizes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedModule

// Program provides access to a type-checked set of packages.
type Program struct {
	// Fset contains positions for every file in the program.
	Fset *token.FileSet

	// Initial contains the packages named by the load arguments.
	Initial []*packages.Package

	// AllPackages contains the initial packages and all of their
	// dependencies.
	AllPackages map[*types.Package]*packages.Package
}

// Load loads and type checks the packages denoted by args.  Errors found in
// any package (syntax errors, type errors, missing imports) are passed to
// errorH; the returned error is non-nil only if loading failed outright.
func Load(conf *packages.Config, errorH func(error), args ...string) (*Program, error) {
	conf.Mode = Mode
	if conf.Fset == nil {
		conf.Fset = token.NewFileSet()
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no packages or files to load")
	}

	initial, err := packages.Load(conf, args...)
	if err != nil {
		return nil, err
	}

	pkgs := make(map[*types.Package]*packages.Package, len(initial))
	packages.Visit(initial, nil, func(pkg *packages.Package) {
		if pkg.Types != nil {
			pkgs[pkg.Types] = pkg
		}
		if errorH != nil {
			for _, err := range pkg.Errors {
				errorH(err)
			}
		}
	})

	return &Program{
		Fset:        conf.Fset,
		Initial:     initial,
		AllPackages: pkgs,
	}, nil
}

// PathEnclosingInterval returns the package and ast.Node that contain source
// interval [start, end), and all the node's ancestors up to the AST root.  It
// searches all ast.Files of all packages in prog.  exact is defined as for
// astutil.PathEnclosingInterval.
//
// The zero value is returned if not found.
func (prog *Program) PathEnclosingInterval(start, end token.Pos) (pkg *packages.Package, path []ast.Node, exact bool) {
	for _, info := range prog.AllPackages {
		for _, f := range info.Syntax {
			if f.Pos() == token.NoPos {
				// The parser bailed out after too many errors.
				continue
			}
			if !tokenFileContainsPos(prog.Fset.File(f.Pos()), start) {
				continue
			}
			if path, exact := astutil.PathEnclosingInterval(f, start, end); path != nil {
				return info, path, exact
			}
		}
	}
	return nil, nil, false
}

func tokenFileContainsPos(f *token.File, pos token.Pos) bool {
	p := int(pos)
	base := f.Base()
	return base <= p && p <= base+f.Size()
}

// PackageOf returns the package whose syntax includes the given file, or nil.
func (prog *Program) PackageOf(file *ast.File) *packages.Package {
	for _, pkg := range prog.AllPackages {
		for _, f := range pkg.Syntax {
			if f == file {
				return pkg
			}
		}
	}
	return nil
}

// FileNamed returns the package and syntax tree of the file with the given
// name (absolute or relative to the working directory), or nils.
func (prog *Program) FileNamed(filename string) (*packages.Package, *ast.File) {
	absFilename, _ := filepath.Abs(filename)
	for _, pkg := range prog.AllPackages {
		for _, f := range pkg.Syntax {
			name := prog.Fset.Position(f.Pos()).Filename
			if name == filename || name == absFilename {
				return pkg, f
			}
		}
	}
	return nil, nil
}

// Filename returns the name of the file containing the given syntax tree.
func (prog *Program) Filename(file *ast.File) string {
	return prog.Fset.File(file.Pos()).Name()
}
