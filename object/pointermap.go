// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package object

import (
	"sort"

	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/pan"
)

// FindPointer in an ascending offset list.
func FindPointer(a []TextAddr, addr TextAddr) (i int, found bool) {
	i = sort.Search(len(a), func(i int) bool {
		return a[i] >= addr
	})
	found = i < len(a) && a[i] == addr
	return
}

// PointerMap lists the positions in finalized code which hold object
// references that the garbage collector must visit.  The offsets are in
// ascending order.
type PointerMap struct {
	Offsets []TextAddr
}

// MakePointerMap from a fixup chain's pointer offsets.
func MakePointerMap(offsets []int32) PointerMap {
	m := PointerMap{make([]TextAddr, len(offsets))}
	for i, off := range offsets {
		if i > 0 && off < offsets[i-1] {
			pan.Panic(errors.Errorf("pointer offsets are not in ascending order: %d after %d", off, offsets[i-1]))
		}
		m.Offsets[i] = TextAddr(off)
	}
	return m
}

func (m *PointerMap) Len() int {
	return len(m.Offsets)
}

// Contains reports whether addr is the position of an object reference.
func (m *PointerMap) Contains(addr TextAddr) bool {
	_, found := FindPointer(m.Offsets, addr)
	return found
}

// Within returns the object references of size wordSize which overlap the
// range [begin, end).
func (m *PointerMap) Within(begin, end TextAddr, wordSize int32) []TextAddr {
	i, _ := FindPointer(m.Offsets, begin-TextAddr(wordSize)+1)
	j, _ := FindPointer(m.Offsets, end)
	return m.Offsets[i:j]
}
