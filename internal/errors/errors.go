// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// contractError records the stack where the contract was violated; it can be
// printed with the %+v verb.
type contractError struct {
	err error
}

func New(text string) error {
	return &contractError{errors.New(text)}
}

func Errorf(format string, args ...interface{}) error {
	return &contractError{errors.Errorf(format, args...)}
}

func (e *contractError) Error() string       { return e.err.Error() }
func (e *contractError) ContractError() bool { return true }

func (e *contractError) StackTrace() errors.StackTrace {
	if x, ok := e.err.(interface{ StackTrace() errors.StackTrace }); ok {
		return x.StackTrace()
	}
	return nil
}

func (e *contractError) Format(s fmt.State, verb rune) {
	if f, ok := e.err.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}
	fmt.Fprint(s, e.err.Error())
}
