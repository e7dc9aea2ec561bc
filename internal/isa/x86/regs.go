// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x86

// Reg is a general-purpose register.
type Reg byte

const (
	RegAX = Reg(iota)
	RegCX
	RegDX
	RegBX
	RegSP
	RegBP
	RegSI
	RegDI
	RegR8
	RegR9
	RegR10
	RegR11
	RegR12
	RegR13
	RegR14
	RegR15
)

// XReg is an SSE register.
type XReg byte

const (
	RegX0 = XReg(iota)
	RegX1
	RegX2
	RegX3
	RegX4
	RegX5
	RegX6
	RegX7
)

// Cond is a condition code (the low nibble of Jcc opcodes).
type Cond byte

const (
	CondOverflow       = Cond(0x0)
	CondBelow          = Cond(0x2)
	CondAboveOrEqual   = Cond(0x3)
	CondEqual          = Cond(0x4)
	CondNotEqual       = Cond(0x5)
	CondBelowOrEqual   = Cond(0x6)
	CondAbove          = Cond(0x7)
	CondLess           = Cond(0xc)
	CondGreaterOrEqual = Cond(0xd)
	CondLessOrEqual    = Cond(0xe)
	CondGreater        = Cond(0xf)
)

const (
	rex  = byte(0x40)
	rexW = byte(8) // 64-bit operand size
	rexR = byte(4) // extension of the ModR/M reg field
	rexB = byte(1) // extension of the ModR/M r/m field or opcode reg field
)

func regRexR(r byte) byte { return (r >> 3) << 2 } // 8..15 => 4
func regRexB(r byte) byte { return (r >> 3) << 0 } // 8..15 => 1

const (
	modReg      = byte(0xc0)
	modRMDisp32 = byte(5) // RIP-relative when mod is 0
)

func modRM(mod, ro, rm byte) byte { return mod | (ro&7)<<3 | rm&7 }
