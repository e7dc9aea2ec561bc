// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x86

import (
	"gate.computer/emit/code"
	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/pan"
	"gate.computer/emit/internal/verify"
	"gate.computer/emit/label"
)

// Bind label at the current position.  Near branches are 8-bit relocations
// located immediately before their origin.  Far branches are 32-bit
// relocations which form a chain: each one stores the position of the
// previous one, and the first one stores its own position.
func (e *Encoder) Bind(l *label.L) {
	b := e.a.Buffer()
	bound := b.Size()

	if verify.Enabled {
		verify.Printf("bind at %#x: %d near, linked: %v", bound, l.NearCount(), l.IsLinked())
		verify.Depth++
		defer func() { verify.Depth-- }()
	}

	for l.HasNear() {
		site := l.NearPosition()
		verify.Printf("near branch at %#x", site)
		updateAddr8(b, site, bound-(site+1))
	}

	site, linked := l.Bind(bound)
	for linked {
		next := code.Load[int32](b, site)
		verify.Printf("far branch at %#x", site)
		updateAddr32(b, site, bound-(site+4))
		linked = next != site
		site = next
	}
}

func updateAddr8(b *code.Buffer, site, value int32) {
	if value < -0x80 || value >= 0x80 {
		pan.Panic(errors.Errorf("near branch displacement out of range: %d", value))
	}
	code.Store(b, site, int8(value))
}

func updateAddr32(b *code.Buffer, site, value int32) {
	code.Store(b, site, value)
}

// poolRef is a RIP-relative reference to a pool slot.  The pool is placed
// after the code, so the displacement is known only after all code has been
// emitted.
type poolRef struct {
	e     *Encoder
	index int
}

func (r poolRef) Apply(region []byte, site int32) {
	slotAddr := r.e.PoolOffset() + r.e.a.Pool().Offset(r.index)
	code.Put(region, site, slotAddr-(site+4))
}

func (poolRef) IsPointerOffset() bool { return false }
