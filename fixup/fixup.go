// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fixup implements deferred relocations of generated code.
package fixup

import (
	"slices"

	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/pan"
)

// Fixup is a relocation strategy, typically implemented by an
// architecture-specific encoder.
type Fixup interface {
	// Apply patches the final code at position.  The region contains the
	// complete instruction stream when Apply is called.
	Apply(region []byte, position int32)

	// IsPointerOffset is true if the patched position holds a reference which
	// the garbage collector must treat as a live pointer.
	IsPointerOffset() bool
}

// Func adapts a function to the Fixup interface.  It doesn't produce a
// pointer offset.
type Func func(region []byte, position int32)

func (f Func) Apply(region []byte, position int32) { f(region, position) }
func (Func) IsPointerOffset() bool                 { return false }

type site struct {
	pos int32
	f   Fixup
}

// Chain of fixups.  The default value is an empty chain.
type Chain struct {
	sites          []site
	pointerOffsets []int32
	processed      bool
}

// Add a fixup at position.  Fixups must be independent of each other: the
// order in which they are applied is unspecified.
func (c *Chain) Add(position int32, f Fixup) {
	if c.processed {
		pan.Panic(errors.New("fixup added to processed chain"))
	}
	c.sites = append(c.sites, site{position, f})
}

// Len is the number of fixups in the chain.
func (c *Chain) Len() int {
	return len(c.sites)
}

// Processed reports whether Process has been called.
func (c *Chain) Processed() bool {
	return c.processed
}

// CountPointerOffsets without processing the chain.
func (c *Chain) CountPointerOffsets() (n int) {
	for _, s := range c.sites {
		if s.f.IsPointerOffset() {
			n++
		}
	}
	return
}

// Process applies every fixup to region exactly once, most recently added
// first.  It may be called only once.
func (c *Chain) Process(region []byte) {
	if c.processed {
		pan.Panic(errors.New("fixup chain processed twice"))
	}
	c.processed = true

	c.pointerOffsets = make([]int32, 0, c.CountPointerOffsets())

	for i := len(c.sites) - 1; i >= 0; i-- {
		s := c.sites[i]
		s.f.Apply(region, s.pos)
		if s.f.IsPointerOffset() {
			c.pointerOffsets = append(c.pointerOffsets, s.pos)
		}
	}

	// The cursor may have been rewound between fixups.
	slices.Sort(c.pointerOffsets)
}

// PointerOffsets are the positions of pointer-bearing fixups in ascending
// order.  The result is nil before Process has been called.
func (c *Chain) PointerOffsets() []int32 {
	return c.pointerOffsets
}
