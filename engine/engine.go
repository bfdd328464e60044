// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine is the programmatic entrypoint to the snipdoctor refactoring
// engine.
package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hbollon/go-edlib"

	"github.com/godoctor/snipdoctor/refactoring"
)

// Name is the name of the tool, shown in help and manual pages.
const Name = "snipdoctor"

// A refactoring carries the state of one run, so the registry holds
// constructors and every lookup returns a fresh value.
var (
	mu           sync.RWMutex
	refactorings = map[string]func() refactoring.Refactoring{
		"dups":         func() refactoring.Refactoring { return new(refactoring.FindDuplicates) },
		"extractlocal": func() refactoring.Refactoring { return new(refactoring.ExtractLocal) },
		"inline":       func() refactoring.Refactoring { return new(refactoring.InlineLocal) },
		"null":         func() refactoring.Refactoring { return new(refactoring.Null) },
		"debug":        func() refactoring.Refactoring { return new(refactoring.Debug) },
	}
)

// AllRefactorings returns all of the transformations that can be performed.
// The keys of the returned map are short, single-word, all-lowercase names
// (dups, inline, etc.); the values implement the Refactoring interface.
func AllRefactorings() map[string]refactoring.Refactoring {
	mu.RLock()
	defer mu.RUnlock()
	result := make(map[string]refactoring.Refactoring, len(refactorings))
	for name, newRefac := range refactorings {
		result[name] = newRefac()
	}
	return result
}

// AllRefactoringNames returns the short names of all refactorings, sorted.
func AllRefactoringNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(refactorings))
	for name := range refactorings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetRefactoring returns a new Refactoring keyed by the given short name, or
// nil if there is no refactoring with that name.
func GetRefactoring(shortName string) refactoring.Refactoring {
	mu.RLock()
	defer mu.RUnlock()
	if newRefac, ok := refactorings[shortName]; ok {
		return newRefac()
	}
	return nil
}

// AddRefactoring allows custom refactorings to be added to the refactoring
// engine.  Invoke this method before starting the command line or protocol
// driver.
func AddRefactoring(shortName string, newRefac func() refactoring.Refactoring) error {
	mu.Lock()
	defer mu.Unlock()
	if existing, ok := refactorings[shortName]; ok {
		return fmt.Errorf("the short name %q is already associated with a refactoring (%s)",
			shortName, existing().Description().Name)
	}
	refactorings[shortName] = newRefac
	return nil
}

// ClosestRefactoringName returns the short name of the refactoring whose name
// is nearest to name by edit distance, or "" if none is within half the
// length of name.
func ClosestRefactoringName(name string) string {
	best, bestDistance := "", len(name)/2+1
	for _, candidate := range AllRefactoringNames() {
		if d := edlib.LevenshteinDistance(name, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}
