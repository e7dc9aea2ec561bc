// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !cgo

package dump

import (
	"io"

	"gate.computer/emit/object"
)

func Text(w io.Writer, text []byte, textAddr uintptr, comments []object.Comment, pointers object.PointerMap) error {
	return ErrNoDisassembler
}
