// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package region

import (
	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// Map a writable region of at least size bytes.
func Map(size int) (*Region, error) {
	if size <= 0 {
		return nil, xerrors.Errorf("invalid region size: %d", size)
	}

	mem, err := unix.Mmap(-1, 0, roundSize(size, unix.Getpagesize()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, xerrors.Errorf("mapping %d bytes: %w", size, err)
	}

	return &Region{mem: mem, size: size}, nil
}

// Protect makes the region read-only and executable.
func (r *Region) Protect() error {
	if r.mem == nil {
		return ErrClosed
	}

	if err := unix.Mprotect(r.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return xerrors.Errorf("protecting region: %w", err)
	}

	r.protected = true
	return nil
}

// Close unmaps the region.  It may be called multiple times.
func (r *Region) Close() (err error) {
	if r.mem == nil {
		return
	}

	err = unix.Munmap(r.mem)
	r.mem = nil
	if err != nil {
		err = xerrors.Errorf("unmapping region: %w", err)
	}
	return
}
