// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"gate.computer/emit/internal/pan"
)

// Static storage wraps a fixed region, such as a memory mapping.  Code is
// written in place, so the storage cannot be moved.  The default value is a
// zero-capacity storage.
type Static struct {
	mem []byte
}

// MakeStatic storage.
//
// This function can be used in field initializer expressions.  The
// initialized field must not be copied.
func MakeStatic(mem []byte) Static {
	return Static{mem[:0:cap(mem)]}
}

// NewStatic storage.
func NewStatic(mem []byte) *Static {
	s := MakeStatic(mem)
	return &s
}

// Cap is the capacity of the static storage.
func (s *Static) Cap() int {
	return cap(s.mem)
}

// Grow panics with ErrStaticSize if addCap bytes don't fit in the region.
func (s *Static) Grow(b []byte, addCap int) []byte {
	if b == nil {
		b = s.mem
	}
	if len(b)+addCap > cap(b) {
		pan.Panic(ErrStaticSize)
	}
	return b
}
