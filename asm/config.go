// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"io"
	"runtime"

	"github.com/sirupsen/logrus"

	"gate.computer/emit/buffer"
	"gate.computer/emit/code"
	"gate.computer/emit/label"
)

// Config for an assembler.  Architecture-specific encoders consult it instead
// of process-wide flags.
type Config struct {
	// Arch is a GOARCH value.
	Arch string `yaml:"arch"`

	// FarBranches makes encoders use long branch forms even when a short
	// form might reach.
	FarBranches bool `yaml:"far_branches"`

	// NearBranchCapacity of labels created by the assembler.
	NearBranchCapacity int `yaml:"near_branch_capacity"`

	// EmitComments enables recording of code comments.
	EmitComments bool `yaml:"emit_comments"`

	// MaxCodeSize limits the code buffer size if positive.
	MaxCodeSize int `yaml:"max_code_size"`

	// Allocator overrides the code buffer storage policy.
	Allocator code.Allocator `yaml:"-"`

	// Logger receives debug-level traces.  Nil discards them.
	Logger logrus.FieldLogger `yaml:"-"`
}

// DefaultConfig for an architecture.  Empty arch means the host architecture.
func DefaultConfig(arch string) Config {
	if arch == "" {
		arch = runtime.GOARCH
	}

	return Config{
		Arch:               arch,
		NearBranchCapacity: nearBranchCapacity(arch),
	}
}

func nearBranchCapacity(arch string) int {
	switch arch {
	case "amd64", "386":
		return label.MaxNearBranchesX86
	default:
		return label.MaxNearBranchesOther
	}
}

func (c *Config) allocator() code.Allocator {
	switch {
	case c.Allocator != nil:
		return c.Allocator

	case c.MaxCodeSize > 0:
		return buffer.NewLimited(c.MaxCodeSize)

	default:
		return buffer.NewDynamic()
	}
}

func (c *Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}

	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
