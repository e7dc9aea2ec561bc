// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"gate.computer/emit/internal/pan"
)

// Limited allocates variable-capacity storage up to a maximum size.  The
// default value cannot allocate anything.
type Limited struct {
	d Dynamic
}

// MakeLimited allocator.
//
// This function can be used in field initializer expressions.
func MakeLimited(maxSize int) Limited {
	return Limited{Dynamic{maxSize}}
}

// NewLimited allocator.
func NewLimited(maxSize int) *Limited {
	l := MakeLimited(maxSize)
	return &l
}

// MaxSize of buffers.
func (l *Limited) MaxSize() int {
	return l.d.maxSize
}

// Grow panics with ErrSizeLimit if the capacity would exceed the maximum size.
func (l *Limited) Grow(b []byte, addCap int) []byte {
	if len(b)+addCap > l.d.maxSize {
		pan.Panic(ErrSizeLimit)
	}
	return l.d.Grow(b, addCap)
}
