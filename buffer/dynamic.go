// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"github.com/pkg/errors"
)

const minCapacity = 1024

// Dynamic allocates variable-capacity storage.  The default value is a valid
// allocator.
type Dynamic struct {
	maxSize int // For limiting allocation; not enforced by this implementation.
}

// NewDynamic allocator.
func NewDynamic() *Dynamic {
	return NewDynamicHint(0)
}

// NewDynamicHint avoids making excessive allocations if the maximum buffer
// size can be estimated in advance.
func NewDynamicHint(maxSizeHint int) *Dynamic {
	return &Dynamic{maxSizeHint}
}

// Grow doesn't panic unless out of memory.
func (d *Dynamic) Grow(b []byte, addCap int) []byte {
	size := len(b) + addCap
	if size < len(b) { // Check for overflow
		panic(errors.New("buffer size out of range"))
	}

	if size <= cap(b) {
		return b
	}

	newCap := cap(b)*2 + addCap
	if newCap < cap(b) { // Handle overflow
		newCap = size
	}

	if newCap < minCapacity {
		newCap = minCapacity
	}

	if d.maxSize > 0 && newCap > d.maxSize {
		if d.maxSize >= size { // Ignore it if we went over it
			newCap = d.maxSize
		}
	}

	newBuf := make([]byte, len(b), newCap)
	copy(newBuf, b)
	return newBuf
}
