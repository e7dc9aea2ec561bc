// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dump

import (
	"bytes"
	"strings"
	"testing"

	"gate.computer/emit/pool"
)

func TestPool(t *testing.T) {
	b := pool.NewBuilder(0)
	b.FindImmediate(0x1234)
	b.FindNativeFunctionWrapper(pool.ExternalLabel{Addr: 0x5000}, pool.Patchable)
	p := b.MakeObjectPool()

	layout := []byte{
		0x34, 0x12, 0, 0, 0, 0, 0, 0,
		0x00, 0x50, 0, 0, 0, 0, 0, 0,
	}

	var out bytes.Buffer
	if err := Pool(&out, p, layout, 0); err != nil {
		t.Fatal(err)
	}

	expect := "" +
		"pool:\n" +
		"       0 0000000000001234  immediate 0x1234 (not-patchable)\n" +
		"       8 0000000000005000  native-wrapper 0x5000 (patchable)\n" +
		"\n"

	if s := out.String(); s != expect {
		t.Errorf("output:\n%s", s)
	}
}

func TestPoolWithoutLayout(t *testing.T) {
	b := pool.NewBuilder(0)
	b.AddImmediate(1)

	var out bytes.Buffer
	if err := Pool(&out, b.MakeObjectPool(), nil, 0x1000); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "00001000 ................  immediate 0x1") {
		t.Error(out.String())
	}
}

func TestROData(t *testing.T) {
	var out bytes.Buffer
	if err := ROData(&out, []byte{1, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0}, 0); err != nil {
		t.Fatal(err)
	}

	expect := "rodata:\n       0 0000000000000001 ........00000002\n\n"
	if s := out.String(); s != expect {
		t.Errorf("output:\n%q", s)
	}
}
