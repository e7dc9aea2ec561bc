// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package verify switches on checks which are too expensive for production
// builds.  Build with "-tags verify" to enable them; the test suite covers
// both variants:
//
//	go test ./...
//	go test -tags verify ./...
package verify

import (
	"fmt"

	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/pan"
)

// Depth of indentation of Printf output.
var Depth int

// Printf writes an indented trace line to stderr.  It's a no-op unless
// verification is enabled.
func Printf(format string, args ...interface{}) {
	if !Enabled {
		return
	}

	if Depth < 0 {
		panic("negative verify.Depth")
	}

	for i := 0; i < Depth; i++ {
		print("  ")
	}

	print(fmt.Sprintf(format+"\n", args...))
}

// Assert raises a contract error if cond is false.  The condition is
// evaluated by the caller, so guard expensive conditions with Enabled.
func Assert(cond bool, format string, args ...interface{}) {
	if Enabled && !cond {
		pan.Panic(errors.Errorf(format, args...))
	}
}
