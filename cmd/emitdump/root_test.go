// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"debug/elf"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"gate.computer/emit/asm"
	emitelf "gate.computer/emit/object/file/elf"
)

func newTestCommand(args ...string) (*rootCommand, *bytes.Buffer) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c := newRootCommand(logger)
	out := new(bytes.Buffer)
	c.cmd.SetOut(out)
	c.cmd.SetErr(out)
	c.cmd.SetArgs(args)
	return c, out
}

func TestRun(t *testing.T) {
	c, out := newTestCommand("--no-disasm")
	if err := c.cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	s := out.String()
	if !strings.HasPrefix(s, "pool:\n") {
		t.Fatal(s)
	}

	// Immediate, float, shared name, patchable name, native print, print
	// wrapper and patchable native abort.
	if n := strings.Count(s, "\n") - 2; n != 7 {
		t.Errorf("%d pool entries:\n%s", n, s)
	}
	if !strings.Contains(s, "native-wrapper") {
		t.Error(s)
	}
}

func TestRunROData(t *testing.T) {
	c, out := newTestCommand("--no-disasm", "--rodata")
	if err := c.cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	s := out.String()
	i := strings.Index(s, "rodata:\n")
	if i < 0 {
		t.Fatal(s)
	}

	// Seven pool words, four per line.
	lines := strings.Split(strings.TrimSpace(s[i:]), "\n")
	if len(lines) != 3 {
		t.Fatalf("rodata:\n%s", s[i:])
	}
	if n := len(strings.Fields(lines[1])); n != 5 {
		t.Error(lines[1])
	}
	if n := len(strings.Fields(lines[2])); n != 4 {
		t.Error(lines[2])
	}
}

func TestRunFarBranches(t *testing.T) {
	c, _ := newTestCommand("--no-disasm", "--far-branches")
	if err := c.cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !c.config.FarBranches {
		t.Error("far branches not configured")
	}
}

func TestRunSizeLimit(t *testing.T) {
	c, _ := newTestCommand("--no-disasm", "--max-code-size", "16")
	if err := c.cmd.Execute(); err == nil {
		t.Error("code size limit not enforced")
	}
}

func TestConfigFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "emit.yaml")
	data := "arch: amd64\nfar_branches: true\nnear_branch_capacity: 4\nemit_comments: false\n"
	if err := os.WriteFile(filename, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, out := newTestCommand("config", "--config", filename, "--near-branches", "7")
	if err := c.cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	var config asm.Config
	if err := yaml.Unmarshal(out.Bytes(), &config); err != nil {
		t.Fatal(err)
	}
	if !config.FarBranches || config.EmitComments || config.NearBranchCapacity != 7 || config.Arch != "amd64" {
		t.Errorf("%#v", config)
	}
}

func TestConfigFileUnknownField(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "emit.yaml")
	if err := os.WriteFile(filename, []byte("bogus: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, _ := newTestCommand("config", "--config", filename)
	if err := c.cmd.Execute(); err == nil {
		t.Error("unknown field accepted")
	}
}

func TestUnsupportedArch(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "emit.yaml")
	if err := os.WriteFile(filename, []byte("arch: arm64\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, _ := newTestCommand("--config", filename)
	if err := c.cmd.Execute(); err == nil {
		t.Error("arm64 accepted")
	}
}

func TestRunELF(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "sample.elf")

	c, _ := newTestCommand("--no-disasm", "--elf", filename)
	if err := c.cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	f, err := elf.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if f.Entry != emitelf.TextAddr {
		t.Errorf("entry: %#x", f.Entry)
	}
}
