// Copyright (c) 2022 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errordata

import (
	"encoding/json"
	"testing"

	"golang.org/x/xerrors"

	"gate.computer/emit/buffer"
	eerrors "gate.computer/emit/errors"
	"gate.computer/emit/internal/errors"
)

func roundTrip(t *testing.T, x *Internal) *Internal {
	t.Helper()

	data, err := json.Marshal(x)
	if err != nil {
		t.Fatal(err)
	}

	y := new(Internal)
	if err := json.Unmarshal(data, y); err != nil {
		t.Fatal(err)
	}
	return y
}

func TestBufferSize(t *testing.T) {
	for _, orig := range []error{buffer.ErrSizeLimit, buffer.ErrStaticSize} {
		wrapped := xerrors.Errorf("compiling: %w", orig)

		x := roundTrip(t, Deconstruct(wrapped))
		if x.Public == nil || x.Public.BufferSize == nil || x.Error != wrapped.Error() {
			t.Fatalf("%#v", x)
		}

		err := x.Reconstruct()
		if err.Error() != wrapped.Error() {
			t.Error(err)
		}
		if !xerrors.Is(err, orig) {
			t.Errorf("%v is not %v", err, orig)
		}

		var e eerrors.BufferSizeLimit
		if !xerrors.As(err, &e) || e.BufferSizeLimit() != orig.Error() {
			t.Error(err)
		}

		if err := x.Public.Reconstruct(); err.Error() != orig.Error() {
			t.Error(err)
		}
	}
}

func TestContract(t *testing.T) {
	orig := errors.New("label bound twice")

	x := roundTrip(t, Deconstruct(orig))
	if x.GetPublic().Error != contractViolation || !x.Public.Contract || x.Error != orig.Error() {
		t.Fatalf("%#v", x)
	}

	var e eerrors.ContractError
	if err := x.Reconstruct(); !xerrors.As(err, &e) || err.Error() != orig.Error() {
		t.Error(err)
	}
	if err := x.Public.Reconstruct(); err.Error() != contractViolation {
		t.Error(err)
	}
}

func TestInternal(t *testing.T) {
	x := roundTrip(t, Deconstruct(xerrors.New("disk on fire")))
	if x.Public != nil {
		t.Error(x.Public)
	}
	if x.GetPublic().Error != "internal error" {
		t.Error(x.GetPublic())
	}
	if err := x.Reconstruct(); err.Error() != "disk on fire" {
		t.Error(err)
	}
}
