// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactoring

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godoctor/snipdoctor/filesystem"
	"github.com/godoctor/snipdoctor/text"
)

const debugFile = "testdata/dups/001-statements/main.go"

// runDebug runs a debug command and returns its log, which must not contain
// errors unless wantError is set.
func runDebug(t *testing.T, sel *text.LineColSelection, wantError bool, args ...interface{}) *Log {
	t.Helper()
	abs, err := filepath.Abs(debugFile)
	require.NoError(t, err)
	sel.Filename = abs
	result := new(Debug).Run(&Config{
		FileSystem: filesystem.NewLocalFileSystem(),
		Selection:  sel,
		Args:       args,
	})
	require.Equal(t, wantError, result.Log.ContainsErrors(), result.Log.String())
	return result.Log
}

// lastMessage returns the message of the report, the last entry in the log.
func lastMessage(log *Log) string {
	return log.Entries[len(log.Entries)-1].Message
}

var loop = &text.LineColSelection{StartLine: 6, StartCol: 2, EndLine: 9, EndCol: 3}

func TestDebugDefUse(t *testing.T) {
	msg := lastMessage(runDebug(t, loop, false, "showdefuse"))
	assert.Contains(t, msg, "Defines: {total, x}")
	uses := msg[strings.Index(msg, "Uses: "):]
	for _, v := range []string{"total", "x", "xs"} {
		assert.Contains(t, uses, v)
	}
}

func TestDebugLive(t *testing.T) {
	msg := lastMessage(runDebug(t, loop, false, "showlive"))
	assert.Contains(t, msg, "Live after the selection: {total}")
	assert.Contains(t, msg, "Defined in the selection and read after it: {total}")
}

func TestDebugMatches(t *testing.T) {
	msg := lastMessage(runDebug(t, loop, false, "ShowMatches"))
	assert.Contains(t, msg, "1 occurrences in ")
	assert.Contains(t, msg, "sum -> total, y -> x, ys -> xs")
}

func TestDebugReferences(t *testing.T) {
	total := &text.LineColSelection{StartLine: 6, StartCol: 2, EndLine: 6, EndCol: 7}
	msg := lastMessage(runDebug(t, total, false, "showreferences"))
	assert.True(t, strings.HasPrefix(msg, "References to total:\n"), msg)
	assert.Equal(t, 3, strings.Count(msg, "offset "))
	assert.Contains(t, msg, "total is a local variable")

	runDebug(t, loop, true, "showreferences")
}

func TestDebugFileReports(t *testing.T) {
	assert.Contains(t, lastMessage(runDebug(t, loop, false, "showast")), "*ast.File")
	assert.Contains(t, lastMessage(runDebug(t, loop, false, "showpackages")), "Packages/files loaded:")
	assert.Contains(t, lastMessage(runDebug(t, loop, false, "showidentifiers")),
		"total\t(Line 6) is a reference to ")
}

func TestDebugUsage(t *testing.T) {
	log := runDebug(t, loop, true)
	assert.Contains(t, log.String(), "Usage: debug <command>")

	log = runDebug(t, loop, true, "showeverything")
	assert.Contains(t, log.String(), "Unknown command showeverything")
}
