// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package label

import (
	"testing"

	"gate.computer/emit/errors"
	"gate.computer/emit/internal/pan"
)

func expectPanic(t *testing.T, f func()) {
	t.Helper()

	defer func() {
		t.Helper()

		err := pan.Error(recover())
		if err == nil {
			t.Error("no panic")
			return
		}
		if _, ok := err.(errors.ContractError); !ok {
			t.Errorf("not a contract error: %v", err)
		}
	}()

	f()
}

func TestZeroValue(t *testing.T) {
	var l L

	if !l.IsUnused() || l.IsLinked() || l.IsBound() || l.HasNear() {
		t.Error(l.State())
	}
	if l.NearCap() != MaxNearBranchesOther {
		t.Error(l.NearCap())
	}
	if !l.Resolved() {
		t.Error("unused label is not resolved")
	}

	expectPanic(t, func() { l.Position() })
	expectPanic(t, func() { l.LinkPosition() })
	expectPanic(t, func() { l.NearPosition() })

	l.Release()
}

func TestLinkAndBind(t *testing.T) {
	l := New(MaxNearBranchesX86)

	l.LinkTo(4)
	if !l.IsLinked() || l.LinkPosition() != 4 || l.Position() != 4 {
		t.Fatal(l)
	}

	l.LinkTo(10)
	if l.LinkPosition() != 10 {
		t.Error(l.LinkPosition())
	}
	if l.Resolved() {
		t.Error("linked label is resolved")
	}

	chain, linked := l.Bind(20)
	if !linked || chain != 10 {
		t.Error(chain, linked)
	}
	if !l.IsBound() || l.Position() != 20 {
		t.Error(l)
	}

	expectPanic(t, func() { l.LinkPosition() })
	expectPanic(t, func() { l.LinkTo(30) })
	expectPanic(t, func() { l.NearLinkTo(30) })
	expectPanic(t, func() { l.Bind(30) })

	l.Release()
}

func TestBindUnused(t *testing.T) {
	l := New(1)

	if _, linked := l.Bind(0); linked {
		t.Error("unused label was linked")
	}
	if l.Position() != 0 {
		t.Error(l.Position())
	}
}

func TestNearLIFO(t *testing.T) {
	l := New(3)

	l.NearLinkTo(1)
	l.NearLinkTo(5)
	l.NearLinkTo(9)
	if l.NearCount() != 3 || l.IsUnused() {
		t.Fatal(l.NearCount())
	}

	expectPanic(t, func() { l.NearLinkTo(13) })
	expectPanic(t, func() { l.Bind(20) })
	expectPanic(t, l.Release)

	for _, expect := range []int32{9, 5, 1} {
		if pos := l.NearPosition(); pos != expect {
			t.Errorf("near position %d (expected %d)", pos, expect)
		}
	}

	if l.HasNear() {
		t.Error(l.NearCount())
	}

	l.Bind(20)
	l.Release()
}

func TestReleaseLinked(t *testing.T) {
	l := New(1)
	l.LinkTo(0)
	expectPanic(t, l.Release)
}

func TestReinitialize(t *testing.T) {
	l := New(4)
	l.Bind(8)
	l.Reinitialize()

	if !l.IsUnused() || l.NearCap() != 4 {
		t.Error(l.State(), l.NearCap())
	}
}

func TestStateString(t *testing.T) {
	for s, name := range map[State]string{
		Unused:   "unused",
		Linked:   "linked",
		Bound:    "bound",
		State(9): "invalid",
	} {
		if s.String() != name {
			t.Errorf("%d: %s", s, s)
		}
	}
}
