// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package doc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOptions = []Option{
	{Names: []string{"file"}, Usage: "Filename containing an element to refactor", TakesValue: true},
	{Names: []string{"w"}, Usage: "Modify source files on disk"},
	{Names: []string{"help", "h"}, Usage: "Show help and exit"},
}

func TestFlag(t *testing.T) {
	assert.Equal(t, "--file value", testOptions[0].Flag())
	assert.Equal(t, "-w", testOptions[1].Flag())
	assert.Equal(t, "--help, -h", testOptions[2].Flag())
}

func TestManual(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Manual(&buf, testOptions))
	md := buf.String()
	assert.Contains(t, md, "# snipdoctor User's Guide")
	assert.Contains(t, md, "| `--file value` | Filename containing an element to refactor |")
	assert.Contains(t, md, "### Find Duplicates")
	assert.Contains(t, md, "### Extract Local Variable")
	assert.Contains(t, md, "### Inline Local Variable")
	assert.Contains(t, md, "* **Search Package** (default `false`)")
	assert.NotContains(t, md, "Null", "hidden refactorings are not documented")
	assert.NotContains(t, md, "Debug Refactoring")
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, testOptions))
	page := buf.String()
	assert.Contains(t, page, "<title>snipdoctor User's Guide</title>")
	assert.Contains(t, page, "<h3>Find Duplicates</h3>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<code>--file value</code>")
}

func TestManPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ManPage(&buf, testOptions))
	man := buf.String()
	assert.Contains(t, man, ".TH snipdoctor 1")
	assert.Contains(t, man, ".B \\-\\-file value\n")
	assert.Contains(t, man, ".B dups <search_package?>\n")
}

func TestRoff(t *testing.T) {
	assert.Equal(t, `\-w`, roff("-w"))
	assert.Equal(t, `\&.hidden`, roff(".hidden"))
	assert.Equal(t, `a\eb`, roff(`a\b`))
}
