// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loader

import (
	"encoding/binary"
	"os"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/tools/go/packages"
)

// A Cache reuses loaded programs across requests in long-running drivers.
// Entries are keyed by a digest of the load arguments, working directory,
// build flags and overlay, and are discarded when any file they were loaded
// from has changed.  Programs returned from a Cache are shared and must be
// treated as read-only.
type Cache struct {
	// Max is the maximum number of programs retained.  Zero means 8.
	Max int

	mu      sync.Mutex
	entries map[uint64]*cacheEntry
	order   []uint64 // least recently used first
}

type cacheEntry struct {
	prog   *Program
	errs   []error
	digest map[string]uint64 // filename -> xxhash of contents
}

// NewCache returns an empty cache retaining at most max programs.
func NewCache(max int) *Cache {
	return &Cache{Max: max}
}

// Load behaves like the package-level Load, but returns a cached program when
// an equivalent request was served before and none of its files changed.
// Errors recorded by the original load are replayed to errorH.
func (c *Cache) Load(conf *packages.Config, errorH func(error), args ...string) (*Program, error) {
	key := requestKey(conf, args)

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	if ok && entry.valid(conf.Overlay) {
		c.touch(key)
		for _, err := range entry.errs {
			if errorH != nil {
				errorH(err)
			}
		}
		return entry.prog, nil
	}

	entry = &cacheEntry{}
	prog, err := Load(conf, func(err error) {
		entry.errs = append(entry.errs, err)
		if errorH != nil {
			errorH(err)
		}
	}, args...)
	if err != nil {
		return nil, err
	}
	entry.prog = prog
	entry.digest = digestFiles(prog, conf.Overlay)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[uint64]*cacheEntry{}
	}
	c.entries[key] = entry
	c.removeFromOrder(key)
	c.order = append(c.order, key)
	limit := c.Max
	if limit <= 0 {
		limit = 8
	}
	for len(c.order) > limit {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	return prog, nil
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) touch(key uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return
	}
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *Cache) removeFromOrder(key uint64) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (e *cacheEntry) valid(overlay map[string][]byte) bool {
	for filename, want := range e.digest {
		data, err := readContents(filename, overlay)
		if err != nil || xxhash.Sum64(data) != want {
			return false
		}
	}
	return true
}

func requestKey(conf *packages.Config, args []string) uint64 {
	d := xxhash.New()
	writeString := func(s string) {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		d.Write(n[:])
		d.WriteString(s)
	}
	writeString(conf.Dir)
	writeString("args")
	for _, arg := range args {
		writeString(arg)
	}
	writeString("flags")
	for _, flag := range conf.BuildFlags {
		writeString(flag)
	}
	writeString("overlay")
	names := make([]string, 0, len(conf.Overlay))
	for name := range conf.Overlay {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeString(name)
		writeString(string(conf.Overlay[name]))
	}
	return d.Sum64()
}

func digestFiles(prog *Program, overlay map[string][]byte) map[string]uint64 {
	result := map[string]uint64{}
	for _, pkg := range prog.Initial {
		for _, filename := range pkg.CompiledGoFiles {
			if data, err := readContents(filename, overlay); err == nil {
				result[filename] = xxhash.Sum64(data)
			}
		}
	}
	return result
}

func readContents(filename string, overlay map[string][]byte) ([]byte, error) {
	if data, ok := overlay[filename]; ok {
		return data, nil
	}
	return os.ReadFile(filename)
}
