// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dump prints finalized code and object pools for debugging.
package dump

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/xerrors"

	"gate.computer/emit/pool"
)

// ErrNoDisassembler is returned by Text when built without cgo.
var ErrNoDisassembler = xerrors.New("object/debug/dump.Text requires cgo")

// Pool lists the entries of a realized pool along with their laid out words.
// The layout may be nil, in which case only the entries are listed.
func Pool(w io.Writer, p *pool.Pool, layout []byte, poolAddr uintptr) (err error) {
	fmt.Fprintf(w, "pool:\n")

	for i, e := range p.Entries() {
		addr := poolAddr + uintptr(i*8)
		if poolAddr == 0 { // relative
			fmt.Fprintf(w, "%8x", addr)
		} else {
			fmt.Fprintf(w, "%08x", addr)
		}

		if off := i * 8; off+8 <= len(layout) {
			fmt.Fprintf(w, " %016x", binary.LittleEndian.Uint64(layout[off:]))
		} else {
			fmt.Fprintf(w, " ................")
		}

		fmt.Fprintf(w, "  %s\n", e)
	}

	fmt.Fprintln(w)
	return
}

// ROData prints raw words.
func ROData(w io.Writer, roData []byte, roDataAddr uintptr) (err error) {
	fmt.Fprintf(w, "rodata:\n")

	for addr := roDataAddr; len(roData) > 0; {
		if roDataAddr == 0 { // relative
			fmt.Fprintf(w, "%8x", addr)
		} else {
			fmt.Fprintf(w, "%08x", addr)
		}

		for i := 0; i < 4 && len(roData) > 0; i++ {
			if len(roData) >= 8 {
				fmt.Fprintf(w, " %016x", binary.LittleEndian.Uint64(roData))
				roData = roData[8:]
				addr += 8
			} else if len(roData) >= 4 {
				fmt.Fprintf(w, " ........%08x", binary.LittleEndian.Uint32(roData))
				roData = roData[4:]
				addr += 4
			} else {
				roData = nil
			}
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	return
}
