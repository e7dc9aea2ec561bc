// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package code implements the machine code buffer which instruction encoders
// emit into.
//
// To emit an instruction, capacity for it must be ensured first:
//
//	ensured := buf.EnsureCapacity()
//	... emit bytes for a single instruction ...
//	ensured.Release()
//
// The buffer keeps Gap bytes in reserve, so a single capacity check is enough
// for any instruction.  Positions (fixups, pointer offsets, label links) are
// buffer-relative, so they survive growth; absolute addresses don't.
package code

import (
	"unsafe"

	"gate.computer/emit/buffer"
	"gate.computer/emit/fixup"
	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/pan"
	"gate.computer/emit/internal/verify"
	"gate.computer/emit/object"
)

// Gap is the size of the largest single emission.  The capacity limit is kept
// this many bytes before the end of the storage.
const Gap = 32

// Allocator provides backing storage.  Grow returns a slice with the contents
// and length of b and room for at least addCap more bytes.  It may panic with
// an error implementing interface{ BufferSizeLimit() string }.
type Allocator interface {
	Grow(b []byte, addCap int) []byte
}

// Buffer is a growable code buffer.  The default value is a valid buffer
// which allocates dynamically.
type Buffer struct {
	text      []byte
	alloc     Allocator
	fixups    fixup.Chain
	ensured   bool
	gap       int // Free space when capacity was ensured.
	finalized bool
}

// New buffer using the given allocator, or a dynamic allocator if nil.
func New(alloc Allocator) *Buffer {
	b := Make(alloc)
	return &b
}

// Make buffer using the given allocator, or a dynamic allocator if nil.
//
// This function can be used in field initializer expressions.  The
// initialized field must not be copied.
func Make(alloc Allocator) Buffer {
	return Buffer{alloc: alloc}
}

// Size of the emitted code.
func (b *Buffer) Size() int32 { return int32(len(b.text)) }

// Capacity of the current storage, including the gap.
func (b *Buffer) Capacity() int { return cap(b.text) }

// Bytes of the emitted code.  The slice is invalidated by growth.
func (b *Buffer) Bytes() []byte { return b.text }

// Finalized reports whether FinalizeInstructions has been called.
func (b *Buffer) Finalized() bool { return b.finalized }

func (b *Buffer) limit() int {
	return cap(b.text) - Gap
}

// Address of code at position.  It becomes stale when the buffer grows, so it
// must not be retained across emissions.
func (b *Buffer) Address(position int32) uintptr {
	if position < 0 || int(position) >= cap(b.text) {
		pan.Panic(errors.Errorf("code address out of range: %d", position))
	}
	return uintptr(unsafe.Pointer(&b.text[:cap(b.text)][position]))
}

// Ensured capacity for one instruction.
type Ensured struct {
	b *Buffer
}

// EnsureCapacity for emitting one instruction (at most Gap bytes).  The
// returned value must be released after the instruction has been emitted.
// Guards cannot be nested.
func (b *Buffer) EnsureCapacity() Ensured {
	if len(b.text) >= b.limit() {
		b.extendCapacity()
	}

	if verify.Enabled {
		gap := cap(b.text) - len(b.text)
		verify.Assert(gap > Gap, "insufficient gap after capacity extension: %d", gap)
		verify.Assert(!b.ensured, "nested capacity guard")
		b.ensured = true
		b.gap = gap
	}

	return Ensured{b}
}

// Release the guard.  Emitting is not allowed after this until capacity is
// ensured again.
func (e Ensured) Release() {
	if verify.Enabled {
		b := e.b
		b.ensured = false
		delta := b.gap - (cap(b.text) - len(b.text))
		verify.Assert(delta <= Gap, "instruction exceeds gap: %d bytes", delta)
	}
}

func (b *Buffer) extendCapacity() {
	if b.alloc == nil {
		b.alloc = buffer.NewDynamic()
	}

	oldSize := len(b.text)
	b.text = b.alloc.Grow(b.text, Gap+1)

	if len(b.text) != oldSize || b.limit() <= oldSize {
		pan.Panic(errors.Errorf("allocator returned invalid storage (size %d, capacity %d)", len(b.text), cap(b.text)))
	}
}

func (b *Buffer) checkEnsured() {
	verify.Assert(b.ensured, "emitting without ensured capacity")
}

// Extend the code by n bytes and return them for writing.
func (b *Buffer) Extend(n int) []byte {
	b.checkEnsured()
	offset := len(b.text)
	b.text = b.text[:offset+n]
	return b.text[offset:]
}

func (b *Buffer) PutByte(x byte) {
	b.checkEnsured()
	b.text = append(b.text, x)
}

// PutUint32 in little-endian byte order.
func (b *Buffer) PutUint32(x uint32) {
	Emit(b, x)
}

func (b *Buffer) PutBytes(x []byte) {
	copy(b.Extend(len(x)), x)
}

// EmitFixup registers f at the current position.
func (b *Buffer) EmitFixup(f fixup.Fixup) {
	b.fixups.Add(b.Size(), f)
}

// EmitObject reserves a word for a direct reference to obj.  The reference is
// written during finalization and its position is recorded as a pointer
// offset.
func (b *Buffer) EmitObject(x interface{}, r object.Resolver) {
	b.EmitFixup(&objectFixup{x, r})
	Emit(b, uint64(0))
}

type objectFixup struct {
	x interface{}
	r object.Resolver
}

func (f *objectFixup) Apply(region []byte, position int32) {
	Put(region, position, f.r.ObjectWord(f.x))
}

func (*objectFixup) IsPointerOffset() bool { return true }

// CountPointerOffsets without processing the fixups.
func (b *Buffer) CountPointerOffsets() int {
	return b.fixups.CountPointerOffsets()
}

// NumFixups registered so far.
func (b *Buffer) NumFixups() int {
	return b.fixups.Len()
}

// PointerOffsets of finalized code in ascending order.
func (b *Buffer) PointerOffsets() []int32 {
	verify.Assert(b.fixups.Processed(), "pointer offsets requested before finalization")
	return b.fixups.PointerOffsets()
}

// FinalizeInstructions copies the code into region and applies all fixups to
// it.  It may be called only once.
func (b *Buffer) FinalizeInstructions(region []byte) {
	if b.finalized {
		pan.Panic(errors.New("code buffer finalized twice"))
	}
	if len(region) < len(b.text) {
		pan.Panic(errors.Errorf("finalization region is too small: %d < %d bytes", len(region), len(b.text)))
	}
	b.finalized = true

	copy(region, b.text)
	b.fixups.Process(region)
}
