// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm provides the base of architecture-specific assemblers: a code
// buffer, an optional object pool builder, labels and code comments.
package asm

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"gate.computer/emit/code"
	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/pan"
	"gate.computer/emit/label"
	"gate.computer/emit/object"
	"gate.computer/emit/pool"
)

// Stopper emits an instruction sequence which halts execution with a message.
type Stopper interface {
	Stop(a *Assembler, message string)
}

// Assembler owns a code buffer which contains position-independent code.
type Assembler struct {
	buf      code.Buffer
	pool     *pool.Builder
	config   Config
	log      logrus.FieldLogger
	comments object.CommentMap
	labels   []*label.L

	prologueOffset   int32
	singleEntryPoint bool

	// Stopper is set by the architecture-specific encoder.
	Stopper Stopper
}

// New assembler.  The pool builder may be nil if the code never references an
// object pool (e.g. when disassembling).
func New(config Config, p *pool.Builder) *Assembler {
	if config.Arch == "" || config.NearBranchCapacity == 0 {
		def := DefaultConfig(config.Arch)
		if config.Arch == "" {
			config.Arch = def.Arch
		}
		if config.NearBranchCapacity == 0 {
			config.NearBranchCapacity = def.NearBranchCapacity
		}
	}

	return &Assembler{
		buf:              code.Make(config.allocator()),
		pool:             p,
		config:           config,
		log:              config.logger(),
		prologueOffset:   -1,
		singleEntryPoint: true,
	}
}

func (a *Assembler) Config() Config                { return a.config }
func (a *Assembler) Buffer() *code.Buffer          { return &a.buf }
func (a *Assembler) Pool() *pool.Builder           { return a.pool }
func (a *Assembler) Logger() logrus.FieldLogger    { return a.log }
func (a *Assembler) CodeSize() int32               { return a.buf.Size() }
func (a *Assembler) CodeAddress(pos int32) uintptr { return a.buf.Address(pos) }
func (a *Assembler) PrologueOffset() int32         { return a.prologueOffset }
func (a *Assembler) SetPrologueOffset(pos int32)   { a.prologueOffset = pos }

// HasSingleEntryPoint is informational; it is maintained by the encoder.
func (a *Assembler) HasSingleEntryPoint() bool       { return a.singleEntryPoint }
func (a *Assembler) SetSingleEntryPoint(single bool) { a.singleEntryPoint = single }

// NewLabel which is checked for unresolved references during finalization.
func (a *Assembler) NewLabel() *label.L {
	l := label.New(a.config.NearBranchCapacity)
	a.labels = append(a.labels, l)
	return l
}

// EmittingComments reports whether Comment records anything.
func (a *Assembler) EmittingComments() bool {
	return a.config.EmitComments
}

// Comment the code at the current position.
func (a *Assembler) Comment(format string, args ...interface{}) {
	if !a.EmittingComments() {
		return
	}

	text := fmt.Sprintf(format, args...)
	a.comments.PutComment(object.TextAddr(a.buf.Size()), text)
	a.log.WithField("offset", a.buf.Size()).Debug(text)
}

// Comments in code offset order.
func (a *Assembler) Comments() []object.Comment {
	return a.comments.Comments
}

// CommentMap for lookups.
func (a *Assembler) CommentMap() *object.CommentMap {
	return &a.comments
}

func (a *Assembler) Unimplemented(message string) { a.Stop("Unimplemented: " + message) }
func (a *Assembler) Untested(message string)      { a.Stop("Untested: " + message) }
func (a *Assembler) Unreachable(message string)   { a.Stop("Unreachable: " + message) }

// Stop emits a halting sequence via the Stopper.
func (a *Assembler) Stop(message string) {
	if a.Stopper == nil {
		pan.Panic(errors.Errorf("no stopper for message: %s", message))
	}
	a.Comment("stop: %s", message)
	a.Stopper.Stop(a, message)
}

// FinalizeInstructions copies the code into region and applies fixups.  All
// labels created via NewLabel must have been resolved.
func (a *Assembler) FinalizeInstructions(region []byte) {
	for _, l := range a.labels {
		l.Release()
	}

	a.buf.FinalizeInstructions(region)

	a.log.WithFields(logrus.Fields{
		"size":     a.buf.Size(),
		"fixups":   a.buf.NumFixups(),
		"pointers": len(a.buf.PointerOffsets()),
	}).Debug("instructions finalized")
}

// CountPointerOffsets without processing the fixups.
func (a *Assembler) CountPointerOffsets() int {
	return a.buf.CountPointerOffsets()
}

// PointerOffsets of finalized code.
func (a *Assembler) PointerOffsets() []int32 {
	return a.buf.PointerOffsets()
}

// PointerMap of finalized code.
func (a *Assembler) PointerMap() object.PointerMap {
	return object.MakePointerMap(a.buf.PointerOffsets())
}

// MakeObjectPool realizes the pool.  The result is nil if the assembler
// doesn't have a pool builder.
func (a *Assembler) MakeObjectPool() *pool.Pool {
	if a.pool == nil {
		return nil
	}

	p := a.pool.MakeObjectPool()
	a.log.WithField("entries", p.Len()).Debug("object pool realized")
	return p
}

// Assemble calls f and returns contract violations and buffer size limit
// errors raised during it.  Runtime errors are not recovered.
func (a *Assembler) Assemble(f func(*Assembler)) (err error) {
	defer func() {
		err = pan.Error(recover())
	}()

	f(a)
	return
}
