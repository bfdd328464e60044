// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactoring

import "errors"

// Errors logged when a refactoring cannot start.  Refactorings log these
// (wrapped with details) rather than returning them.
var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrInvalidArgs      = errors.New("invalid arguments")
)

type detailError struct {
	kind   error
	detail string
}

func (e *detailError) Error() string { return e.kind.Error() + ": " + e.detail }
func (e *detailError) Unwrap() error { return e.kind }

func errInvalidSelection(detail string) error {
	return &detailError{ErrInvalidSelection, detail}
}

func errInvalidArgs(detail string) error {
	return &detailError{ErrInvalidArgs, detail}
}
