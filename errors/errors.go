// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors exports common error types without unnecessary dependencies.
package errors

// ContractError indicates that the assembler API was used in violation of its
// contract: a label was bound twice, a buffer was finalized twice, and so on.
// Such errors are programming errors; they are returned (instead of panicking)
// only by functions which explicitly say so.
type ContractError interface {
	error
	ContractError() bool
}

// BufferSizeLimit indicates that generated code doesn't fit in its buffer.
type BufferSizeLimit interface {
	error
	BufferSizeLimit() string
}
