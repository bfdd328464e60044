// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines the Null refactoring, which loads a program, reports the
// errors in it, and makes no changes.  It is used to test the drivers.

package refactoring

// A Null refactoring makes no changes to a program.
type Null struct {
	RefactoringBase
}

func (r *Null) Description() *Description {
	return &Description{
		Name:      "Null Refactoring",
		Synopsis:  "Loads the program and makes no changes",
		Usage:     "<allow_errors?>",
		Multifile: false,
		Params: []Parameter{{
			Label:        "Allow Errors",
			Prompt:       "Report errors in the program as warnings",
			DefaultValue: true,
		}},
		Quality: Development,
		Hidden:  true,
	}
}

func (r *Null) Run(config *Config) *Result {
	r.RefactoringBase.Run(config)
	if !ValidateArgs(config, r.Description(), r.Log) {
		return &r.Result
	}
	if config.Args[0].(bool) {
		r.Log.ChangeInitialErrorsToWarnings()
	}
	if r.Log.ContainsErrors() {
		return &r.Result
	}
	r.UpdateLog(config, false)
	return &r.Result
}
