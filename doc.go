// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package emit is the instruction emission and relocation layer of a code
// generator.
//
// An architecture-specific encoder emits machine code into a code.Buffer
// owned by an asm.Assembler, refers to branch targets via label.L values,
// requests object pool slots from a pool.Builder and registers deferred
// relocations as fixup.Fixup implementations.  Finalization copies the code
// into its destination (such as a region.Region) and applies every fixup
// exactly once.
//
// # Errors
//
// Contract violations (binding a label twice, finalizing twice, and so on)
// are programming errors and cause panics.  The asm.Assembler.Assemble method
// recovers them, and returns errors implementing the errors.ContractError interface.
//
// Buffer allocators use the buffer.ErrSizeLimit and buffer.ErrStaticSize
// errors to indicate that generated code doesn't fit in its buffer.  They
// implement the errors.BufferSizeLimit interface.
package emit
