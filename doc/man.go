// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package doc

import (
	"fmt"
	"io"
	"strings"
	"text/template"
)

// ManPage outputs the snipdoctor man page in roff format.
func ManPage(out io.Writer, options []Option) error {
	tmpl := template.Must(template.New("man").
		Funcs(template.FuncMap{"roff": roff}).
		Parse(manPage))
	if err := tmpl.Execute(out, prepare(options)); err != nil {
		return fmt.Errorf("generating man page: %w", err)
	}
	return nil
}

// roff escapes hyphens and backslashes, and keeps lines from starting with
// a control character.
func roff(s string) string {
	s = strings.NewReplacer(`\`, `\e`, "-", `\-`).Replace(s)
	if strings.HasPrefix(s, ".") || strings.HasPrefix(s, "'") {
		s = `\&` + s
	}
	return s
}

// For conventions for writing a man page, see
// http://www.schweikhardt.net/man_page_howto.html
const manPage = `.\" Save this as {{.Name}}.1 and process using
.\"     groff -man -Tascii {{.Name}}.1
.TH {{.Name}} 1 "" "{{.Name}}" ""
.SH NAME
{{.Name}} \- find and refactor duplicated Go code
.SH SYNOPSIS
.B {{.Name}}
[
.I flag
.I ...
]
.I refactoring
[
.I args
.I ...
]
.SH DESCRIPTION
{{.Name}} finds code that duplicates a selection, up to a consistent renaming of local variables, and refactors Go source code, outputting a patch file with the changes (unless the \-w or \-\-complete flag is specified).
.SH OPTIONS
{{range .Options}}.TP
.B {{roff .Flag}}
{{roff .Usage}}
{{end}}.PP
The
.I refactoring
determines the refactoring to perform:
{{range .Refactorings}}.TP
.B {{.Key}} {{roff .Description.Usage}}
{{roff .Description.Synopsis}}
{{end}}.SH FILES
.TP
.I .snipdoctor.toml
Settings, found in the directory of the selected file or one of its parents.
.SH EXAMPLES
.TP
Display a list of available refactorings:
.B {{.Name}}
\-\-list
.TP
Find duplicates of lines 5 to 8 of main.go in its whole package:
.B {{.Name}}
\-\-file main.go \-\-pos 5,1:9,1 dups true
.TP
Extract the expression at line 7, columns 14 to 19, into a variable named prod, replacing every occurrence:
.B {{.Name}}
\-\-file main.go \-\-pos 7,14:7,19 \-w extractlocal prod true
.SH EXIT STATUS
.TP
0
Success
.TP
1
One or more command line arguments were invalid
.TP
2
Help/usage information was displayed; no commands were executed
.TP
3
The refactoring could not be completed; output contains a detailed error log
`
