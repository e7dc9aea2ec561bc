// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pool

import (
	"encoding/binary"
	"math"
	"testing"

	"gate.computer/emit/errors"
	"gate.computer/emit/internal/pan"
	"gate.computer/emit/object"
)

type testObject struct {
	name string
}

func recoverError(f func()) (err error) {
	defer func() {
		err = pan.Error(recover())
	}()

	f()
	return
}

func TestFindObject(t *testing.T) {
	var b Builder
	x := &testObject{"x"}
	y := &testObject{"y"}

	i := b.FindObject(x, NotPatchable)
	if j := b.FindObject(x, NotPatchable); j != i {
		t.Errorf("non-patchable object in slots %d and %d", i, j)
	}
	if j := b.FindObject(y, NotPatchable); j == i {
		t.Error("distinct objects share a slot")
	}

	p1 := b.FindObject(x, Patchable)
	p2 := b.FindObject(x, Patchable)
	if p1 == p2 || p1 == i || p2 == i {
		t.Errorf("patchable slots %d, %d (non-patchable %d)", p1, p2, i)
	}

	if b.Len() != 4 {
		t.Error(b.Len())
	}
	if e := b.Entry(p1); e.Type != TaggedObject || e.Patchable != Patchable || e.Object != x {
		t.Error(e)
	}
}

func TestAddObject(t *testing.T) {
	var b Builder
	x := &testObject{"x"}

	i := b.AddObject(x, NotPatchable)
	j := b.AddObject(x, NotPatchable)
	if i == j {
		t.Error("add reused a slot")
	}

	if k := b.FindObject(x, NotPatchable); k != i {
		t.Errorf("find returned slot %d instead of %d", k, i)
	}

	b.AddObject(x, Patchable)
	if b.Len() != 3 {
		t.Error(b.Len())
	}

	if err := recoverError(func() { b.AddObject(nil, NotPatchable) }); err == nil {
		t.Error("nil object accepted")
	}
}

func TestUncomparableObject(t *testing.T) {
	var b Builder

	for _, f := range []func(){
		func() { b.FindObject([]int{1}, NotPatchable) },
		func() { b.AddObject(map[string]int{}, Patchable) },
		func() { b.FindObjectEquivalent(&testObject{"x"}, []byte("x")) },
		func() { b.Find(ObjectEntry(func() {}, NotPatchable)) },
	} {
		err := recoverError(f)
		if _, ok := err.(errors.ContractError); !ok {
			t.Errorf("expected contract error, got %v", err)
		}
	}

	if b.Len() != 0 {
		t.Error(b.Len())
	}
}

func TestFindObjectEquivalent(t *testing.T) {
	var b Builder
	x := &testObject{"x"}
	eq1 := &testObject{"type 1"}
	eq2 := &testObject{"type 2"}

	i := b.FindObjectEquivalent(x, eq1)
	if j := b.FindObjectEquivalent(x, eq1); j != i {
		t.Error(i, j)
	}
	if j := b.FindObjectEquivalent(x, eq2); j == i {
		t.Error("different equivalences share a slot")
	}
	if j := b.FindObject(x, NotPatchable); j == i {
		t.Error("plain object shares a slot with equivalent object")
	}
}

func TestFindImmediate(t *testing.T) {
	var b Builder

	pi := math.Float64bits(3.14)
	i := b.FindImmediate(pi)
	if j := b.FindImmediate(pi); j != i {
		t.Error(i, j)
	}
	if j := b.FindImmediate(math.Float64bits(2.71)); j == i {
		t.Error("distinct immediates share a slot")
	}

	k := b.AddImmediate(pi)
	if k == i {
		t.Error("add reused a slot")
	}

	if b.Len() != 3 {
		t.Error(b.Len())
	}
	if e := b.Entry(i); e.Type != Immediate || e.Raw != pi || e.Patchable != NotPatchable {
		t.Error(e)
	}
}

func TestImmediateIsNotObject(t *testing.T) {
	var b Builder

	i := b.FindImmediate(0)
	j := b.FindObject(&testObject{}, NotPatchable)
	k := b.FindNativeFunction(ExternalLabel{Addr: 1}, NotPatchable)
	l := b.FindImmediate(1)

	if i == j || i == k || j == k || k == l {
		t.Error(i, j, k, l)
	}
}

func TestFindNativeFunction(t *testing.T) {
	var b Builder
	f := ExternalLabel{Addr: 0x4000}

	i := b.FindNativeFunction(f, NotPatchable)
	if j := b.FindNativeFunction(f, NotPatchable); j != i {
		t.Error(i, j)
	}

	w := b.FindNativeFunctionWrapper(f, NotPatchable)
	if w == i {
		t.Error("wrapper shares a slot with the function")
	}
	if j := b.FindNativeFunctionWrapper(f, NotPatchable); j != w {
		t.Error(w, j)
	}

	if p := b.FindNativeFunction(f, Patchable); p == i {
		t.Error("patchable native function shares a slot")
	}

	if e := b.Entry(w); e.Type != NativeFunctionWrapper || e.Raw != 0x4000 {
		t.Error(e)
	}

	if err := recoverError(func() { b.FindNativeFunction(ExternalLabel{}, NotPatchable) }); err == nil {
		t.Error("unresolved external label accepted")
	}
}

func TestRawEntryObject(t *testing.T) {
	if err := recoverError(func() { RawEntry(TaggedObject, 0, NotPatchable) }); err == nil {
		t.Error("raw object entry accepted")
	}
}

func TestMakeObjectPool(t *testing.T) {
	var b Builder
	x := &testObject{"x"}

	b.FindImmediate(0x1122334455667788)
	b.FindObject(x, NotPatchable)
	b.FindNativeFunction(ExternalLabel{Addr: 0x5000}, Patchable)

	p := b.MakeObjectPool()
	b.FindImmediate(99)

	if p.Len() != 3 || b.Len() != 4 {
		t.Fatal(p.Len(), b.Len())
	}

	data := p.Layout(object.ResolverFunc(func(obj interface{}) uint64 {
		if obj != x {
			t.Errorf("unexpected object: %v", obj)
		}
		return 0xabc
	}))

	if len(data) != 24 {
		t.Fatal(len(data))
	}
	for i, expect := range []uint64{0x1122334455667788, 0xabc, 0x5000} {
		if w := binary.LittleEndian.Uint64(data[i*8:]); w != expect {
			t.Errorf("word %d: %#x", i, w)
		}
	}

	if b.Offset(2) != 16 {
		t.Error(b.Offset(2))
	}
}

func TestNilPool(t *testing.T) {
	var p *Pool

	if p.Len() != 0 || p.Entries() != nil {
		t.Error(p)
	}
	if data := p.Layout(nil); len(data) != 0 {
		t.Error(data)
	}
}

func TestEntryString(t *testing.T) {
	x := &testObject{"x"}

	for _, c := range []struct {
		e      Entry
		prefix string
	}{
		{RawEntry(Immediate, 0x10, NotPatchable), "immediate 0x10 (not-patchable)"},
		{RawEntry(NativeFunction, 0x20, Patchable), "native 0x20 (patchable)"},
		{ObjectEntry(x, NotPatchable), "object "},
		{ObjectEntry([]int{1}, NotPatchable), "object [1]"},
		{Entry{Type: Type(7)}, "type(7)"},
	} {
		if s := c.e.String(); len(s) < len(c.prefix) || s[:len(c.prefix)] != c.prefix {
			t.Errorf("%q does not start with %q", s, c.prefix)
		}
	}
}
