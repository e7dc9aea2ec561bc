// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package code

import (
	"encoding/binary"
	"unsafe"

	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/pan"
)

// Value types which can be emitted, loaded and stored.  They are encoded in
// little-endian byte order.
type Value interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Emit x at the cursor and advance it by the size of T.
func Emit[T Value](b *Buffer, x T) {
	b.checkEnsured()
	offset := len(b.text)
	n := int(unsafe.Sizeof(x))
	b.text = b.text[:offset+n]
	encode(b.text[offset:], x)
}

// Remit rewinds the cursor by the size of T.
func Remit[T Value](b *Buffer) {
	var x T
	n := int(unsafe.Sizeof(x))
	if len(b.text) < n {
		pan.Panic(errors.Errorf("cannot remit %d bytes: buffer size is %d", n, len(b.text)))
	}
	b.text = b.text[:len(b.text)-n]
}

// Load a value which has been emitted at position.
func Load[T Value](b *Buffer, position int32) T {
	return Get[T](b.text, position)
}

// Store a value over code which has been emitted at position.
func Store[T Value](b *Buffer, position int32, x T) {
	Put(b.text, position, x)
}

// Get a value at position in code.
func Get[T Value](text []byte, position int32) (x T) {
	n := int32(unsafe.Sizeof(x))
	checkRange(text, position, n)
	p := unsafe.Pointer(&x)
	src := text[position:]

	switch n {
	case 1:
		*(*uint8)(p) = src[0]
	case 2:
		*(*uint16)(p) = binary.LittleEndian.Uint16(src)
	case 4:
		*(*uint32)(p) = binary.LittleEndian.Uint32(src)
	case 8:
		*(*uint64)(p) = binary.LittleEndian.Uint64(src)
	}
	return
}

// Put a value at position in code.
func Put[T Value](text []byte, position int32, x T) {
	checkRange(text, position, int32(unsafe.Sizeof(x)))
	encode(text[position:], x)
}

func checkRange(text []byte, position, n int32) {
	if position < 0 || int(position)+int(n) > len(text) {
		pan.Panic(errors.Errorf("code position out of range: %d+%d exceeds size %d", position, n, len(text)))
	}
}

func encode[T Value](dst []byte, x T) {
	p := unsafe.Pointer(&x)

	switch unsafe.Sizeof(x) {
	case 1:
		dst[0] = *(*uint8)(p)
	case 2:
		binary.LittleEndian.PutUint16(dst, *(*uint16)(p))
	case 4:
		binary.LittleEndian.PutUint32(dst, *(*uint32)(p))
	case 8:
		binary.LittleEndian.PutUint64(dst, *(*uint64)(p))
	}
}
