// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pan

import (
	"runtime"

	"import.name/pan"
)

// Panic raises err so that Error can recover it at an API boundary.
func Panic(err error) {
	pan.Panic(err)
}

// Error converts a recovered value to an error.  Runtime errors and values not
// raised via Panic are re-panicked.
func Error(x interface{}) error {
	if x == nil {
		return nil
	}

	if err, ok := x.(runtime.Error); ok {
		panic(err)
	}

	return pan.Error(x)
}
