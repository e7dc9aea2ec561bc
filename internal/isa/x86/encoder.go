// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package x86 is a minimal x86-64 instruction encoder on top of the
// architecture-independent assembler.  It covers branches, pool loads,
// embedded objects and the prologue: enough to generate runnable leaf
// functions.
package x86

import (
	"math"

	"gate.computer/emit/asm"
	"gate.computer/emit/code"
	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/pan"
	"gate.computer/emit/label"
	"gate.computer/emit/object"
	"gate.computer/emit/pool"
)

// PoolAlignment of the object pool which follows the code.
const PoolAlignment = 16

// Encoder emits x86-64 instructions.
type Encoder struct {
	a       *asm.Assembler
	objects object.Resolver
}

// New encoder which becomes the assembler's stopper.  The resolver maps
// embedded and pooled objects to words.
func New(a *asm.Assembler, objects object.Resolver) *Encoder {
	e := &Encoder{a, objects}
	a.Stopper = e
	return e
}

func (e *Encoder) Assembler() *asm.Assembler { return e.a }
func (e *Encoder) Resolver() object.Resolver { return e.objects }

func (e *Encoder) far() bool { return e.a.Config().FarBranches }

// PoolOffset is the position of the object pool in the finalized region.  It
// is valid only after all code has been emitted.
func (e *Encoder) PoolOffset() int32 {
	return (e.a.CodeSize() + PoolAlignment - 1) &^ (PoolAlignment - 1)
}

// RegionSize is the size of the finalized code and pool.
func (e *Encoder) RegionSize() int {
	size := int(e.PoolOffset())
	if p := e.a.Pool(); p != nil {
		size += int(p.Offset(p.Len()))
	}
	return size
}

// Finalize the code and the pool into region, which must be at least
// RegionSize bytes long.
func (e *Encoder) Finalize(region []byte) *pool.Pool {
	if len(region) < e.RegionSize() {
		pan.Panic(errors.Errorf("region size %d is less than %d", len(region), e.RegionSize()))
	}

	e.a.FinalizeInstructions(region)

	p := e.a.MakeObjectPool()
	if p != nil {
		copy(region[e.PoolOffset():], p.Layout(e.objects))
	}
	return p
}

func (e *Encoder) buf() *code.Buffer { return e.a.Buffer() }

func (e *Encoder) builder() *pool.Builder {
	p := e.a.Pool()
	if p == nil {
		pan.Panic(errors.New("encoder requires an object pool"))
	}
	return p
}

// Stop implements asm.Stopper.
func (e *Encoder) Stop(a *asm.Assembler, message string) {
	e.Int3()
}

func (e *Encoder) Ret()  { e.op1(0xc3) }
func (e *Encoder) Int3() { e.op1(0xcc) }
func (e *Encoder) Nop()  { e.op1(0x90) }

func (e *Encoder) op1(op byte) {
	b := e.buf()
	ensured := b.EnsureCapacity()
	b.PutByte(op)
	ensured.Release()
}

// Enter the standard frame: push rbp; mov rbp, rsp.  The first call records
// the prologue offset.
func (e *Encoder) Enter() {
	if e.a.PrologueOffset() < 0 {
		e.a.SetPrologueOffset(e.a.CodeSize())
	}

	b := e.buf()
	ensured := b.EnsureCapacity()
	b.PutByte(0x55)
	b.PutBytes([]byte{rex | rexW, 0x89, modRM(modReg, byte(RegSP), byte(RegBP))})
	ensured.Release()
}

// Leave the standard frame: pop rbp.
func (e *Encoder) Leave() { e.op1(0x5d) }

// MovImm64 loads a 64-bit immediate into r.
func (e *Encoder) MovImm64(r Reg, imm uint64) {
	b := e.buf()
	ensured := b.EnsureCapacity()
	b.PutByte(rex | rexW | regRexB(byte(r)))
	b.PutByte(0xb8 + byte(r)&7)
	code.Emit(b, imm)
	ensured.Release()
}

// MovObject embeds a reference to x in the instruction stream.
func (e *Encoder) MovObject(r Reg, x pool.Object) {
	b := e.buf()
	ensured := b.EnsureCapacity()
	b.PutByte(rex | rexW | regRexB(byte(r)))
	b.PutByte(0xb8 + byte(r)&7)
	b.EmitObject(x, e.objects)
	ensured.Release()
}

// MovRegReg copies src to dest.
func (e *Encoder) MovRegReg(dest, src Reg) {
	b := e.buf()
	ensured := b.EnsureCapacity()
	b.PutBytes([]byte{
		rex | rexW | regRexR(byte(src)) | regRexB(byte(dest)),
		0x89,
		modRM(modReg, byte(src), byte(dest)),
	})
	ensured.Release()
}

// AddRegReg adds src to dest.
func (e *Encoder) AddRegReg(dest, src Reg) {
	b := e.buf()
	ensured := b.EnsureCapacity()
	b.PutBytes([]byte{
		rex | rexW | regRexR(byte(src)) | regRexB(byte(dest)),
		0x01,
		modRM(modReg, byte(src), byte(dest)),
	})
	ensured.Release()
}

// CmpRegReg compares a with b.
func (e *Encoder) CmpRegReg(a, b Reg) {
	buf := e.buf()
	ensured := buf.EnsureCapacity()
	buf.PutBytes([]byte{
		rex | rexW | regRexR(byte(b)) | regRexB(byte(a)),
		0x39,
		modRM(modReg, byte(b), byte(a)),
	})
	ensured.Release()
}

// LoadImmediate loads a pooled 64-bit immediate into r.
func (e *Encoder) LoadImmediate(r Reg, imm uint64, patchable pool.Patchability) {
	index := e.builder().Find(pool.RawEntry(pool.Immediate, imm, patchable))
	e.loadPool(r, index)
}

// LoadObject loads a pooled object reference into r.
func (e *Encoder) LoadObject(r Reg, x pool.Object, patchable pool.Patchability) {
	index := e.builder().FindObject(x, patchable)
	e.loadPool(r, index)
}

// mov r, [rip + disp32]
func (e *Encoder) loadPool(r Reg, index int) {
	b := e.buf()
	ensured := b.EnsureCapacity()
	b.PutBytes([]byte{
		rex | rexW | regRexR(byte(r)),
		0x8b,
		modRM(0, byte(r), modRMDisp32),
	})
	e.emitPoolRef(index)
	ensured.Release()
}

// LoadFloat64 loads a pooled constant into x.
func (e *Encoder) LoadFloat64(x XReg, f float64) {
	index := e.builder().FindImmediate(math.Float64bits(f))

	b := e.buf()
	ensured := b.EnsureCapacity()
	b.PutByte(0xf2)
	if x >= 8 {
		b.PutByte(rex | regRexR(byte(x)))
	}
	b.PutBytes([]byte{0x0f, 0x10, modRM(0, byte(x), modRMDisp32)})
	e.emitPoolRef(index)
	ensured.Release()
}

// CallNative calls a native function through a pool slot.
func (e *Encoder) CallNative(l pool.ExternalLabel, patchable pool.Patchability) {
	e.callPool(e.builder().FindNativeFunction(l, patchable))
}

// CallNativeWrapper calls a native function via its wrapper.
func (e *Encoder) CallNativeWrapper(l pool.ExternalLabel, patchable pool.Patchability) {
	e.callPool(e.builder().FindNativeFunctionWrapper(l, patchable))
}

// call [rip + disp32]
func (e *Encoder) callPool(index int) {
	b := e.buf()
	ensured := b.EnsureCapacity()
	b.PutBytes([]byte{0xff, modRM(0, 2, modRMDisp32)})
	e.emitPoolRef(index)
	ensured.Release()
}

func (e *Encoder) emitPoolRef(index int) {
	b := e.buf()
	b.EmitFixup(poolRef{e, index})
	code.Emit(b, int32(0))
}

// Jmp to label.  Near jumps to unbound labels use an 8-bit displacement; the
// label must be bound within range.
func (e *Encoder) Jmp(l *label.L, near bool) {
	e.branch(l, near, []byte{0xeb}, []byte{0xe9})
}

// J is a conditional jump to label.
func (e *Encoder) J(cond Cond, l *label.L, near bool) {
	e.branch(l, near, []byte{0x70 + byte(cond)}, []byte{0x0f, 0x80 + byte(cond)})
}

func (e *Encoder) branch(l *label.L, near bool, shortOp, longOp []byte) {
	b := e.buf()
	ensured := b.EnsureCapacity()
	defer ensured.Release()

	if l.IsBound() {
		target := l.Position()

		if !e.far() {
			disp := target - (b.Size() + int32(len(shortOp)) + 1)
			if disp >= math.MinInt8 && disp <= math.MaxInt8 {
				b.PutBytes(shortOp)
				code.Emit(b, int8(disp))
				return
			}
		}

		b.PutBytes(longOp)
		code.Emit(b, target-(b.Size()+4))
		return
	}

	if near && !e.far() {
		b.PutBytes(shortOp)
		l.NearLinkTo(b.Size())
		code.Emit(b, int8(0))
		return
	}

	b.PutBytes(longOp)
	site := b.Size()
	link := site // End of chain.
	if l.IsLinked() {
		link = l.LinkPosition()
	}
	code.Emit(b, link)
	l.LinkTo(site)
}
