// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elf writes finalized code into a minimal x86-64 ELF image which can
// be inspected with standard tools.
package elf

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"io"
)

const (
	headersAddr = 0x100000000
	TextAddr    = 0x200000000
	pageSize    = 4096
)

// File contains a finalized code region.  The region may include the object
// pool after the code.
type File struct {
	Text        []byte
	EntryOffset int32
}

// WriteTo writes the contents of an executable image.
func (f *File) WriteTo(w io.Writer) (n int64, err error) {
	var b bytes.Buffer
	f.writeTo(&b)
	m, err := w.Write(b.Bytes())
	n = int64(m)
	return
}

func (f *File) writeTo(b *bytes.Buffer) {
	var (
		phnum       = 3
		headersSize = roundSize(64+56*phnum, pageSize)
		textOffset  = headersSize
		textSize    = roundSize(len(f.Text), pageSize)
	)

	// File header
	binary.Write(b, binary.LittleEndian, elf.Header64{
		Ident: [elf.EI_NIDENT]byte{
			0:              0x7f,
			1:              'E',
			2:              'L',
			3:              'F',
			elf.EI_CLASS:   byte(elf.ELFCLASS64),
			elf.EI_DATA:    byte(elf.ELFDATA2LSB),
			elf.EI_VERSION: 1,
		},
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_X86_64),
		Version:   1,
		Entry:     TextAddr + uint64(f.EntryOffset),
		Phoff:     64,
		Shoff:     0,
		Ehsize:    64,
		Phentsize: 56,
		Phnum:     uint16(phnum),
		Shentsize: 64,
		Shnum:     0,
		Shstrndx:  0,
	})

	// Program header #0
	writeBinaryArray(b, []interface{}{
		uint32(elf.PT_PHDR),      // type
		uint32(elf.PF_R),         // flags
		uint64(64),               // offset
		uint64(headersAddr + 64), // vaddr
		uint64(headersAddr + 64), // paddr
		uint64(56 * phnum),       // filesz
		uint64(56 * phnum),       // memsz
		uint64(pageSize),         // align
	})

	// Program header #1: load headers
	writeBinaryArray(b, []interface{}{
		uint32(elf.PT_LOAD), // type
		uint32(elf.PF_R),    // flags
		uint64(0),           // offset
		uint64(headersAddr), // vaddr
		uint64(headersAddr), // paddr
		uint64(headersSize), // filesz
		uint64(headersSize), // memsz
		uint64(pageSize),    // align
	})

	// Program header #2: load text and pool
	writeBinaryArray(b, []interface{}{
		uint32(elf.PT_LOAD),         // type
		uint32(elf.PF_R | elf.PF_X), // flags
		uint64(textOffset),          // offset
		uint64(TextAddr),            // vaddr
		uint64(TextAddr),            // paddr
		uint64(textSize),            // filesz
		uint64(textSize),            // memsz
		uint64(pageSize),            // align
	})

	align(b, pageSize)

	// Text
	if b.Len() != textOffset {
		panic(b.Len())
	}
	b.Write(f.Text)

	align(b, pageSize)
}

func writeBinaryArray(b *bytes.Buffer, fields []interface{}) {
	for _, x := range fields {
		binary.Write(b, binary.LittleEndian, x)
	}
}

func align(b *bytes.Buffer, alignment int) {
	l := roundSize(b.Len(), alignment)
	for b.Len() < l {
		b.WriteByte(0)
	}
}

func roundSize(value, alignment int) int {
	return (value + alignment - 1) &^ (alignment - 1)
}
