// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package region maps memory for finalized code.  A region is writable until
// it is protected, after which it is readable and executable.
package region

import (
	"golang.org/x/xerrors"
)

// ErrUnsupported is returned on platforms without memory mapping support.
var ErrUnsupported = xerrors.New("executable memory regions are not supported on this platform")

// ErrClosed is returned by operations on a closed region.
var ErrClosed = xerrors.New("region is closed")

// Region of anonymous memory.
type Region struct {
	mem       []byte
	size      int
	protected bool
}

// Bytes of the mapping, rounded up to page size.  The slice must not be
// written after Protect.
func (r *Region) Bytes() []byte { return r.mem }

// Size which was requested.
func (r *Region) Size() int { return r.size }

// Protected reports whether the region has been made executable.
func (r *Region) Protected() bool { return r.protected }

func roundSize(size, pageSize int) int {
	return (size + pageSize - 1) &^ (pageSize - 1)
}
