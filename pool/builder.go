// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pool

import (
	"encoding/binary"
	"reflect"

	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/obj"
	"gate.computer/emit/internal/pan"
	"gate.computer/emit/object"
)

// Builder collects pool entries.  Lookups of non-patchable entries are
// deduplicated.  The default value is an empty builder.
type Builder struct {
	entries []Entry
	index   map[Entry]int
}

// NewBuilder with initial room for n entries.
func NewBuilder(n int) *Builder {
	return &Builder{
		entries: make([]Entry, 0, n),
		index:   make(map[Entry]int, n),
	}
}

func (b *Builder) Len() int           { return len(b.entries) }
func (b *Builder) Entry(i int) Entry  { return b.entries[i] }
func (b *Builder) Entries() []Entry   { return b.entries }
func (b *Builder) Offset(i int) int32 { return int32(i * obj.Word) }

// Add an entry.  A new slot is always allocated.  Non-patchable entries are
// indexed so that later lookups can find them.
func (b *Builder) Add(e Entry) int {
	checkEntry(e)
	return b.add(e)
}

func (b *Builder) add(e Entry) int {
	i := len(b.entries)
	b.entries = append(b.entries, e)

	if e.Patchable == NotPatchable {
		if b.index == nil {
			b.index = make(map[Entry]int)
		}
		if _, found := b.index[e]; !found {
			b.index[e] = i
		}
	}

	return i
}

// Find the slot of an equal non-patchable entry, or add a new entry.
// Patchable entries are never shared.
func (b *Builder) Find(e Entry) int {
	checkEntry(e)
	if e.Patchable == NotPatchable {
		if i, found := b.lookup(e); found {
			return i
		}
	}
	return b.add(e)
}

func (b *Builder) lookup(e Entry) (i int, found bool) {
	i, found = b.index[e]
	return
}

// AddObject allocates a new slot for obj.
func (b *Builder) AddObject(x Object, patchable Patchability) int {
	return b.Add(ObjectEntry(x, patchable))
}

// AddImmediate allocates a new non-patchable slot for imm.
func (b *Builder) AddImmediate(imm uint64) int {
	return b.Add(RawEntry(Immediate, imm, NotPatchable))
}

// FindObject slot, or add one.
func (b *Builder) FindObject(x Object, patchable Patchability) int {
	return b.Find(ObjectEntry(x, patchable))
}

// FindObjectEquivalent returns a non-patchable slot holding x which is shared
// with other lookups of x under the same equivalence.
func (b *Builder) FindObjectEquivalent(x, equivalence Object) int {
	return b.Find(EquivalentObjectEntry(x, equivalence, NotPatchable))
}

// FindImmediate slot, or add one.
func (b *Builder) FindImmediate(imm uint64) int {
	return b.Find(RawEntry(Immediate, imm, NotPatchable))
}

// FindNativeFunction returns a slot holding the address of a native function.
func (b *Builder) FindNativeFunction(l ExternalLabel, patchable Patchability) int {
	return b.Find(RawEntry(NativeFunction, uint64(l.Address()), patchable))
}

// FindNativeFunctionWrapper returns a slot for calling a native function via
// its wrapper.  The slot is distinct from the one returned by
// FindNativeFunction for the same function.
func (b *Builder) FindNativeFunctionWrapper(l ExternalLabel, patchable Patchability) int {
	return b.Find(RawEntry(NativeFunctionWrapper, uint64(l.Address()), patchable))
}

func checkEntry(e Entry) {
	if e.Type == TaggedObject {
		checkObject(e.Object)
		checkObject(e.Equivalence)
	}
}

// checkObject also rejects dynamic types which would fail as map keys.
func checkObject(x Object) {
	if x == nil {
		pan.Panic(errors.New("nil object in pool"))
	}
	if !reflect.TypeOf(x).Comparable() {
		pan.Panic(errors.Errorf("pool object of uncomparable type %T", x))
	}
}

// MakeObjectPool realizes the entries.  The builder may be used afterwards;
// the pool is not affected.
func (b *Builder) MakeObjectPool() *Pool {
	return &Pool{append([]Entry(nil), b.entries...)}
}

// Pool is a realized object pool.
type Pool struct {
	entries []Entry
}

// Len is zero for nil pool.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Entries of the pool in slot order.
func (p *Pool) Entries() []Entry {
	if p == nil {
		return nil
	}
	return p.entries
}

// Layout the pool as little-endian words.  Objects are mapped via r; other
// entries are stored as they are.
func (p *Pool) Layout(r object.Resolver) []byte {
	data := make([]byte, p.Len()*obj.Word)

	for i, e := range p.Entries() {
		var word uint64
		if e.Type == TaggedObject {
			word = r.ObjectWord(e.Object)
		} else {
			word = e.Raw
		}
		binary.LittleEndian.PutUint64(data[i*obj.Word:], word)
	}

	return data
}
