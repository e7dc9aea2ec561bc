// Copyright (c) 2022 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errordata helps with error serialization.
package errordata

import (
	"errors"

	"gate.computer/emit/buffer"
	eerrors "gate.computer/emit/errors"
)

// Internal details of an error.
type Internal struct {
	Error  string  `json:"error,omitempty" yaml:"error,omitempty"` // Omitted if same as public error.
	Public *Public `json:"public,omitempty" yaml:"public,omitempty"`
}

// Deconstruct an error on best-effort basis.
func Deconstruct(err error) *Internal {
	if pub := deconstructBufferSize(err); pub != nil {
		return newInternalWithPublic(err, pub)
	}
	if pub := deconstructContract(err); pub != nil {
		return newInternalWithPublic(err, pub)
	}

	return &Internal{
		Error: err.Error(),
	}
}

func newInternalWithPublic(err error, pub *Public) *Internal {
	x := &Internal{
		Public: pub,
	}
	if s := err.Error(); s != pub.Error {
		x.Error = s
	}
	return x
}

// GetPublic representation which is well-formed even if there are no public
// details.
func (x *Internal) GetPublic() *Public {
	if x.Public != nil {
		return x.Public
	}

	return &Public{
		Error: "internal error",
	}
}

// Reconstruct an error.
func (x *Internal) Reconstruct() error {
	if x.Public == nil {
		return errors.New(x.Error)
	}

	s := x.Public.Error
	if x.Error != "" {
		s = x.Error
	}
	return reconstructError(s, x.Public)
}

// Public details of an error.
type Public struct {
	Error      string      `json:"error" yaml:"error"`
	Contract   bool        `json:"contract,omitempty" yaml:"contract,omitempty"`
	BufferSize *BufferSize `json:"buffer_size,omitempty" yaml:"buffer_size,omitempty"`
}

// Reconstruct an error without internal details.
func (x *Public) Reconstruct() error {
	return reconstructError(x.Error, x)
}

const contractViolation = "assembler contract violation"

func deconstructContract(err error) *Public {
	var e eerrors.ContractError
	if !errors.As(err, &e) || !e.ContractError() {
		return nil
	}

	return &Public{
		Error:    contractViolation,
		Contract: true,
	}
}

// BufferSize error details.
type BufferSize struct {
	LimitExceeded  bool `json:"limit_exceeded,omitempty" yaml:"limit_exceeded,omitempty"`
	StaticExceeded bool `json:"static_exceeded,omitempty" yaml:"static_exceeded,omitempty"`
}

func deconstructBufferSize(err error) *Public {
	var e eerrors.BufferSizeLimit
	if !errors.As(err, &e) {
		return nil
	}

	return &Public{
		Error: e.BufferSizeLimit(),
		BufferSize: &BufferSize{
			LimitExceeded:  errors.Is(err, buffer.ErrSizeLimit),
			StaticExceeded: errors.Is(err, buffer.ErrStaticSize),
		},
	}
}

func reconstructError(s string, x *Public) error {
	switch {
	case x.BufferSize != nil:
		return newBufferSizeError(s, x)

	case x.Contract:
		return &contractError{publicError{s: s, public: x.Error}}

	default:
		return &publicError{s: s, public: x.Error}
	}
}

type publicError struct {
	s       string
	public  string
	wrapped error
}

func (e *publicError) Error() string       { return e.s }
func (e *publicError) PublicError() string { return e.public }
func (e *publicError) Unwrap() error       { return e.wrapped }

type contractError struct {
	publicError
}

func (*contractError) ContractError() bool { return true }

var _ eerrors.ContractError = (*contractError)(nil)

type bufferSizeError struct {
	publicError
}

func (e *bufferSizeError) BufferSizeLimit() string { return e.public }

var _ eerrors.BufferSizeLimit = (*bufferSizeError)(nil)

func newBufferSizeError(s string, x *Public) error {
	e := &bufferSizeError{publicError{
		s:      s,
		public: x.Error,
	}}
	switch {
	case x.BufferSize.LimitExceeded:
		e.wrapped = buffer.ErrSizeLimit

	case x.BufferSize.StaticExceeded:
		e.wrapped = buffer.ErrStaticSize
	}
	return e
}
