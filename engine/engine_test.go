// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godoctor/snipdoctor/refactoring"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"debug", "dups", "extractlocal", "inline", "null"}, AllRefactoringNames())
	assert.Len(t, AllRefactorings(), 5)
	assert.Nil(t, GetRefactoring("rename"))

	first, second := GetRefactoring("dups"), GetRefactoring("dups")
	require.NotNil(t, first)
	assert.NotSame(t, first, second)
	assert.Equal(t, "Find Duplicates", first.Description().Name)
}

func TestAddRefactoring(t *testing.T) {
	err := AddRefactoring("dups", func() refactoring.Refactoring { return new(refactoring.Null) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Find Duplicates")

	require.NoError(t, AddRefactoring("nothing", func() refactoring.Refactoring { return new(refactoring.Null) }))
	t.Cleanup(func() {
		mu.Lock()
		delete(refactorings, "nothing")
		mu.Unlock()
	})
	assert.Equal(t, "Null Refactoring", GetRefactoring("nothing").Description().Name)
}

func TestClosestRefactoringName(t *testing.T) {
	assert.Equal(t, "extractlocal", ClosestRefactoringName("extractlokal"))
	assert.Equal(t, "inline", ClosestRefactoringName("inlin"))
	assert.Equal(t, "", ClosestRefactoringName("xyz"))
}
