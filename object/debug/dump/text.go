// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build cgo

package dump

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bnagy/gapstone"

	"gate.computer/emit/object"
)

const (
	csArch   = gapstone.CS_ARCH_X86
	csMode   = gapstone.CS_MODE_64
	csSyntax = gapstone.CS_OPT_SYNTAX_ATT
	padInsn  = gapstone.X86_INS_INT3
)

// Text disassembles x86-64 code.  Branch targets are given local names,
// comments are printed before the instructions they refer to, and
// instructions containing object pointers are marked.
func Text(w io.Writer, text []byte, textAddr uintptr, comments []object.Comment, pointers object.PointerMap) (err error) {
	engine, err := gapstone.New(csArch, csMode)
	if err != nil {
		return err
	}
	defer engine.Close()

	err = engine.SetOption(gapstone.CS_OPT_SYNTAX, csSyntax)
	if err != nil {
		return
	}

	insns, err := engine.Disasm(text, 0, 0)
	if err != nil {
		return
	}
	if len(insns) == 0 {
		return
	}

	targets := make(map[uint]string)
	rewriteText(insns, targets)

	lastAddr := textAddr + uintptr(insns[len(insns)-1].Address)
	addrWidth := (len(fmt.Sprintf("%x", lastAddr)) + 7) &^ 7

	var addrFmt string
	if textAddr == 0 { // relative
		addrFmt = fmt.Sprintf("%%%dx", addrWidth)
	} else {
		addrFmt = fmt.Sprintf("%%0%dx", addrWidth)
	}

	skipPad := false

	for _, insn := range insns {
		for len(comments) > 0 && uint(comments[0].PCOffset) <= insn.Address {
			fmt.Fprintf(w, "\t\t; %s\n", comments[0].Text)
			comments = comments[1:]
		}

		if insn.Id == padInsn {
			if skipPad {
				continue
			}
			skipPad = true
		} else {
			skipPad = false
		}

		addr := textAddr + uintptr(insn.Address)

		if name, found := targets[insn.Address]; found {
			fmt.Fprintf(w, "%s:\n", strings.TrimSpace(strings.Split(name, ";")[0]))
		}
		fmt.Fprintf(w, addrFmt, addr)

		line := strings.TrimSpace(fmt.Sprintf("%s\t%s", insn.Mnemonic, insn.OpStr))
		begin := object.TextAddr(insn.Address)
		end := begin + object.TextAddr(insn.Size)
		if ptrs := pointers.Within(begin, end, 1); len(ptrs) > 0 {
			line += fmt.Sprintf("\t\t; object at %#x", ptrs[0])
		}

		fmt.Fprint(w, "\t", line, "\n")
	}

	for _, c := range comments {
		fmt.Fprintf(w, "\t\t; %s\n", c.Text)
	}

	fmt.Fprintln(w)
	return nil
}

func rewriteText(insns []gapstone.Instruction, targets map[uint]string) {
	sequence := 0

	for i := range insns {
		insn := &insns[i]

		switch {
		case strings.HasPrefix(insn.Mnemonic, "j") && strings.HasPrefix(insn.OpStr, "0x"):
			fallthrough
		case strings.HasPrefix(insn.Mnemonic, "call") && strings.HasPrefix(insn.OpStr, "0x"):
			addr, err := strconv.ParseUint(insn.OpStr, 0, 64)
			if err != nil {
				continue
			}

			name, found := targets[uint(addr)]
			if !found {
				name = fmt.Sprintf(".L%d", sequence)
				sequence++

				if uint(addr) <= insn.Address {
					name += "\t\t\t; back"
				}

				targets[uint(addr)] = name
			}

			insn.OpStr = name
		}
	}
}
