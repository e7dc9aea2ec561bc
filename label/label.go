// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package label tracks branch targets within a single code buffer.
//
// A label starts out unused.  Forward references link it: the linked position
// is the head of a chain which the encoder threads through the instruction
// stream (each unresolved site stores the previous one).  Binding resolves the
// label to its final position.  Short-form branches whose displacement must be
// backpatched are tracked separately in a small LIFO stack.
package label

import (
	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/pan"
)

// State of a label.
type State uint8

const (
	Unused State = iota
	Linked
	Bound
)

var stateNames = [...]string{
	Unused: "unused",
	Linked: "linked",
	Bound:  "bound",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "invalid"
}

// Near-branch stack capacities.  Only variable-length instruction sets emit
// short branches which need backpatching.
const (
	MaxNearBranchesX86   = 20
	MaxNearBranchesOther = 1
)

var (
	errBoundTwice    = errors.New("label bound twice")
	errBindNear      = errors.New("label bound with unresolved near branches")
	errLinkBound     = errors.New("bound label linked")
	errUnused        = errors.New("position of unused label")
	errNotLinked     = errors.New("link position of label which is not linked")
	errNoNear        = errors.New("label has no unresolved near branches")
	errReleaseLinked = errors.New("label released while linked")
	errReleaseNear   = errors.New("label released with unresolved near branches")
)

// L is a branch target.  The zero value is an unused label with room for one
// near branch.
type L struct {
	state   State
	pos     int32
	near    []int32
	nearCap int
}

// New label with room for nearCapacity unresolved near branches.
func New(nearCapacity int) *L {
	l := Make(nearCapacity)
	return &l
}

// Make label with room for nearCapacity unresolved near branches.
//
// This function can be used in field initializer expressions.
func Make(nearCapacity int) L {
	return L{nearCap: nearCapacity}
}

func (l *L) State() State   { return l.state }
func (l *L) IsUnused() bool { return l.state == Unused && len(l.near) == 0 }
func (l *L) IsLinked() bool { return l.state == Linked }
func (l *L) IsBound() bool  { return l.state == Bound }
func (l *L) HasNear() bool  { return len(l.near) != 0 }
func (l *L) NearCount() int { return len(l.near) }
func (l *L) Resolved() bool { return l.state != Linked && len(l.near) == 0 }
func (l *L) NearCap() int   { return l.nearCapacity() }
func (l *L) Reinitialize()  { *l = Make(l.nearCap) }
func (l *L) String() string { return l.state.String() }

func (l *L) nearCapacity() int {
	if l.nearCap <= 0 {
		return MaxNearBranchesOther
	}
	return l.nearCap
}

// Position of a bound label, or the most recent link of a linked label.
func (l *L) Position() int32 {
	if l.state == Unused {
		pan.Panic(errUnused)
	}
	return l.pos
}

// LinkPosition is the head of the forward-reference chain.
func (l *L) LinkPosition() int32 {
	if l.state != Linked {
		pan.Panic(errNotLinked)
	}
	return l.pos
}

// Bind the label to its final position.  If the label was linked, the head of
// the chain is returned so that the caller can resolve the remaining sites.
// Near branches must have been resolved before.
func (l *L) Bind(pos int32) (chain int32, linked bool) {
	switch {
	case l.state == Bound:
		pan.Panic(errBoundTwice)

	case len(l.near) != 0:
		pan.Panic(errBindNear)
	}

	chain, linked = l.pos, l.state == Linked
	l.state = Bound
	l.pos = pos
	return
}

// LinkTo records a forward reference at pos.
func (l *L) LinkTo(pos int32) {
	if l.state == Bound {
		pan.Panic(errLinkBound)
	}
	l.state = Linked
	l.pos = pos
}

// NearLinkTo records a short branch at pos.
func (l *L) NearLinkTo(pos int32) {
	if l.state == Bound {
		pan.Panic(errLinkBound)
	}
	if n := l.nearCapacity(); len(l.near) >= n {
		pan.Panic(errors.Errorf("label has too many unresolved near branches (capacity %d)", n))
	}
	if l.near == nil {
		l.near = make([]int32, 0, l.nearCapacity())
	}
	l.near = append(l.near, pos)
}

// NearPosition pops the most recently linked near branch.
func (l *L) NearPosition() int32 {
	n := len(l.near)
	if n == 0 {
		pan.Panic(errNoNear)
	}
	pos := l.near[n-1]
	l.near = l.near[:n-1]
	return pos
}

// Release checks that the label doesn't have unresolved references.  A label
// must not be abandoned while it's linked.
func (l *L) Release() {
	switch {
	case l.state == Linked:
		pan.Panic(errReleaseLinked)

	case len(l.near) != 0:
		pan.Panic(errReleaseNear)
	}
}
