// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pool builds object pools: indirection tables which generated code
// references instead of embedding large or relocatable constants.
package pool

import (
	"fmt"
	"reflect"

	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/pan"
)

// Type of a pool entry.
type Type uint8

const (
	TaggedObject Type = iota
	Immediate
	NativeFunction
	NativeFunctionWrapper
)

var typeNames = [...]string{
	TaggedObject:          "object",
	Immediate:             "immediate",
	NativeFunction:        "native",
	NativeFunctionWrapper: "native-wrapper",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Patchability of an entry.  A patchable entry is a mutation point: it may be
// rewritten after the code has been installed, so it is never shared.
type Patchability bool

const (
	NotPatchable Patchability = false
	Patchable    Patchability = true
)

func (p Patchability) String() string {
	if p {
		return "patchable"
	}
	return "not-patchable"
}

// Object is an opaque reference to a managed object.  Objects are compared by
// identity, so the dynamic type must be comparable (typically a pointer).
type Object = interface{}

// ExternalLabel is the entry point of a native function.
type ExternalLabel struct {
	Addr uintptr
}

func (l ExternalLabel) Resolved() bool { return l.Addr != 0 }

func (l ExternalLabel) Address() uintptr {
	if l.Addr == 0 {
		pan.Panic(errors.New("external label is not resolved"))
	}
	return l.Addr
}

// Entry is a tagged pool slot.  Objects are stored in Object and compared via
// Equivalence; the other types are stored in Raw.  Entry values are
// comparable: two entries are equal when their type, patchability and payload
// are equal.
type Entry struct {
	Type        Type
	Patchable   Patchability
	Object      Object
	Equivalence Object
	Raw         uint64
}

// ObjectEntry with the object itself as its equivalence.
func ObjectEntry(obj Object, patchable Patchability) Entry {
	return EquivalentObjectEntry(obj, obj, patchable)
}

// EquivalentObjectEntry may share a slot with entries which have the same
// object and equivalence.
func EquivalentObjectEntry(obj, equivalence Object, patchable Patchability) Entry {
	return Entry{
		Type:        TaggedObject,
		Patchable:   patchable,
		Object:      obj,
		Equivalence: equivalence,
	}
}

// RawEntry holds an immediate value or a native function address.
func RawEntry(t Type, value uint64, patchable Patchability) Entry {
	if t == TaggedObject {
		pan.Panic(errors.New("raw pool entry cannot hold an object"))
	}
	return Entry{
		Type:      t,
		Patchable: patchable,
		Raw:       value,
	}
}

func (e Entry) String() string {
	switch e.Type {
	case TaggedObject:
		if !sameObject(e.Equivalence, e.Object) {
			return fmt.Sprintf("%s %v ~ %v (%s)", e.Type, e.Object, e.Equivalence, e.Patchable)
		}
		return fmt.Sprintf("%s %v (%s)", e.Type, e.Object, e.Patchable)

	default:
		return fmt.Sprintf("%s %#x (%s)", e.Type, e.Raw, e.Patchable)
	}
}

func sameObject(x, y Object) bool {
	if t := reflect.TypeOf(x); t != nil && t == reflect.TypeOf(y) && !t.Comparable() {
		return false
	}
	return x == y
}
