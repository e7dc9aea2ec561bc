// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build cgo

package x86

import (
	"strconv"
	"testing"

	"github.com/bnagy/gapstone"

	"gate.computer/emit/pool"
)

var testEngine gapstone.Engine

func init() {
	engine, err := gapstone.New(gapstone.CS_ARCH_X86, gapstone.CS_MODE_64)
	if err != nil {
		panic(err)
	}

	testEngine = engine
}

func TestDisassemble(t *testing.T) {
	a, e := newTestEncoder(false)
	near := a.NewLabel()
	far := a.NewLabel()
	back := a.NewLabel()

	e.Enter()
	e.Bind(back)
	e.J(CondEqual, near, true)
	e.J(CondGreater, far, false)
	e.MovImm64(RegR8, 1)
	e.Bind(near)
	e.LoadImmediate(RegAX, 7, pool.NotPatchable)
	e.Jmp(far, false)
	e.CallNative(pool.ExternalLabel{Addr: 0x1000}, pool.NotPatchable)
	e.Jmp(back, true)
	e.Bind(far)
	e.Leave()
	e.Ret()

	region, _ := finalize(t, e)

	insns, err := testEngine.Disasm(region[:a.CodeSize()], 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	expect := []struct {
		mnemonic string
		target   int // Branch target label; -1 if none.
	}{
		{"push", -1},
		{"mov", -1},
		{"je", 0},
		{"jg", 1},
		{"movabs", -1},
		{"mov", -1},
		{"jmp", 1},
		{"call", -1},
		{"jmp", 2},
		{"pop", -1},
		{"ret", -1},
	}

	if len(insns) != len(expect) {
		for _, insn := range insns {
			t.Logf("%x: %s %s", insn.Address, insn.Mnemonic, insn.OpStr)
		}
		t.Fatalf("%d instructions", len(insns))
	}

	targets := []uint{
		uint(near.Position()),
		uint(far.Position()),
		uint(back.Position()),
	}

	for i, x := range expect {
		insn := insns[i]

		if insn.Mnemonic != x.mnemonic {
			t.Errorf("%x: %s %s (expected %s)", insn.Address, insn.Mnemonic, insn.OpStr, x.mnemonic)
			continue
		}

		if x.target >= 0 {
			addr, err := strconv.ParseUint(insn.OpStr, 0, 64)
			if err != nil {
				t.Errorf("%x: %s %s: %v", insn.Address, insn.Mnemonic, insn.OpStr, err)
				continue
			}
			if uint(addr) != targets[x.target] {
				t.Errorf("%x: %s %#x (expected %#x)", insn.Address, insn.Mnemonic, addr, targets[x.target])
			}
		}
	}
}
