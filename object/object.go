// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package object describes finalized code for the runtime: where object
// references are embedded and which diagnostics were attached to which
// instructions.
package object

// TextAddr represents a non-negative offset from the start of the text section
// (machine code).
type TextAddr int32

// Resolver maps an opaque object to the word which is stored in finalized code
// or in a realized pool.  The mapping is provided by the runtime's object
// model.
type Resolver interface {
	ObjectWord(obj interface{}) uint64
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(obj interface{}) uint64

func (f ResolverFunc) ObjectWord(obj interface{}) uint64 { return f(obj) }
