// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"gate.computer/emit/internal/isa/x86"
	"gate.computer/emit/pool"
)

// Addresses of fictional native functions.  The sample is never executed.
var (
	nativePrint = pool.ExternalLabel{Addr: 0x7f0000001000}
	nativeAbort = pool.ExternalLabel{Addr: 0x7f0000002000}
)

type sampleObject struct {
	name string
}

func (o *sampleObject) String() string { return o.name }

// objectTable interns sample objects and assigns them handles.
type objectTable struct {
	byName map[string]*sampleObject
	handle map[*sampleObject]uint64
}

func newObjectTable() *objectTable {
	return &objectTable{
		byName: make(map[string]*sampleObject),
		handle: make(map[*sampleObject]uint64),
	}
}

func (t *objectTable) Len() int { return len(t.byName) }

func (t *objectTable) intern(name string) *sampleObject {
	o, found := t.byName[name]
	if !found {
		o = &sampleObject{name}
		t.byName[name] = o
		t.handle[o] = 0x10000 + uint64(len(t.handle))*16 + 1 // Tagged.
	}
	return o
}

func (t *objectTable) ObjectWord(x interface{}) uint64 {
	o, ok := x.(*sampleObject)
	if !ok {
		panic(fmt.Errorf("unknown object type: %T", x))
	}
	return t.handle[o]
}

// assembleSample generates a function which sums its argument in a loop,
// loads constants and objects, and calls native functions.
func assembleSample(e *x86.Encoder, objects *objectTable) {
	a := e.Assembler()

	loop := a.NewLabel()
	done := a.NewLabel()
	exit := a.NewLabel()

	a.Comment("prologue")
	e.Enter()
	e.MovImm64(x86.RegAX, 0)
	e.LoadImmediate(x86.RegCX, 0x123456789abcdef0, pool.NotPatchable)

	a.Comment("loop")
	e.Bind(loop)
	e.CmpRegReg(x86.RegDI, x86.RegAX)
	e.J(x86.CondEqual, done, true)
	e.AddRegReg(x86.RegAX, x86.RegCX)
	e.Jmp(loop, true)
	e.Bind(done)

	a.Comment("constants")
	e.LoadImmediate(x86.RegDX, 0x123456789abcdef0, pool.NotPatchable)
	e.LoadFloat64(x86.RegX0, 3.14)
	e.LoadFloat64(x86.RegX1, 3.14)

	a.Comment("objects")
	e.MovObject(x86.RegSI, objects.intern("greeting"))
	e.LoadObject(x86.RegR8, objects.intern("name"), pool.NotPatchable)
	e.LoadObject(x86.RegR9, objects.intern("name"), pool.NotPatchable)
	e.LoadObject(x86.RegR10, objects.intern("name"), pool.Patchable)

	a.Comment("native calls")
	e.J(x86.CondNotEqual, exit, false)
	e.CallNative(nativePrint, pool.NotPatchable)
	e.CallNativeWrapper(nativePrint, pool.NotPatchable)
	e.J(x86.CondLess, exit, false)
	e.CallNative(nativeAbort, pool.Patchable)
	a.Unreachable("abort returned")

	a.Comment("epilogue")
	e.Bind(exit)
	e.Leave()
	e.Ret()
}
