// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"gate.computer/emit/asm"
	"gate.computer/emit/internal/isa/x86"
	"gate.computer/emit/object/debug/dump"
	"gate.computer/emit/object/file/elf"
	"gate.computer/emit/pool"
	"gate.computer/emit/region"
)

type rootCommand struct {
	logger *logrus.Logger
	cmd    *cobra.Command
	config asm.Config

	configFile   string
	logLevel     string
	logFormat    string
	farBranches  bool
	comments     bool
	maxCodeSize  int
	nearCapacity int
	noDisasm     bool
	roData       bool
	elfFile      string
}

func newRootCommand(logger *logrus.Logger) *rootCommand {
	c := &rootCommand{
		logger:   logger,
		logLevel: "info",
		comments: true,
	}

	c.cmd = &cobra.Command{
		Use:               "emitdump",
		Short:             "assemble and dump a sample function",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
		RunE:              c.run,
	}

	c.cmd.PersistentFlags().AddFlagSet(c.persistentFlagSet())
	c.cmd.Flags().BoolVar(&c.noDisasm, "no-disasm", false, "skip disassembly")
	c.cmd.Flags().BoolVar(&c.roData, "rodata", false, "dump the finalized pool as raw words")
	c.cmd.Flags().StringVar(&c.elfFile, "elf", "", "write the finalized code and pool into an ELF file")
	c.cmd.AddCommand(c.configCommand())
	return c
}

func (c *rootCommand) persistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVarP(&c.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVar(&c.logLevel, "log-level", c.logLevel, "log level (debug, info, warning, error)")
	flags.StringVar(&c.logFormat, "log-format", "", "log format (text or json)")
	flags.BoolVar(&c.farBranches, "far-branches", false, "always use long branch forms")
	flags.BoolVar(&c.comments, "comments", c.comments, "record code comments")
	flags.IntVar(&c.maxCodeSize, "max-code-size", 0, "code buffer size limit in bytes (0 means unlimited)")
	flags.IntVar(&c.nearCapacity, "near-branches", 0, "pending near branches per label (0 means architecture default)")
	return flags
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(c.logLevel)
	if err != nil {
		return err
	}
	c.logger.SetLevel(level)

	switch c.logFormat {
	case "", "text":
	case "json":
		c.logger.SetFormatter(new(logrus.JSONFormatter))
	default:
		return fmt.Errorf("unknown log format: %q", c.logFormat)
	}

	config := asm.DefaultConfig("amd64")
	config.EmitComments = c.comments

	if c.configFile != "" {
		if err := loadConfig(c.configFile, &config); err != nil {
			return err
		}
		c.logger.WithField("file", c.configFile).Debug("configuration loaded")
	}

	flags := cmd.Flags()
	if flags.Changed("far-branches") {
		config.FarBranches = c.farBranches
	}
	if flags.Changed("comments") {
		config.EmitComments = c.comments
	}
	if flags.Changed("max-code-size") {
		config.MaxCodeSize = c.maxCodeSize
	}
	if flags.Changed("near-branches") {
		config.NearBranchCapacity = c.nearCapacity
	}

	if config.Arch != "amd64" {
		return fmt.Errorf("unsupported architecture: %s", config.Arch)
	}
	if config.NearBranchCapacity < 0 {
		return fmt.Errorf("invalid near branch capacity: %d", config.NearBranchCapacity)
	}

	config.Logger = c.logger
	c.config = config
	return nil
}

func loadConfig(filename string, config *asm.Config) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil {
		return xerrors.Errorf("%s: %w", filename, err)
	}
	return nil
}

func (c *rootCommand) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(c.config)
		},
	}
}

func (c *rootCommand) run(cmd *cobra.Command, args []string) error {
	objects := newObjectTable()
	a := asm.New(c.config, pool.NewBuilder(8))
	e := x86.New(a, objects)

	if err := a.Assemble(func(*asm.Assembler) { assembleSample(e, objects) }); err != nil {
		return err
	}

	r, err := region.Map(e.RegionSize())
	if err != nil {
		return err
	}
	defer r.Close()

	var p *pool.Pool
	if err := a.Assemble(func(*asm.Assembler) { p = e.Finalize(r.Bytes()) }); err != nil {
		return err
	}

	if err := r.Protect(); err != nil {
		return err
	}

	mem := r.Bytes()
	textAddr := uintptr(unsafe.Pointer(&mem[0]))
	poolOffset := e.PoolOffset()
	out := cmd.OutOrStdout()

	c.logger.WithFields(logrus.Fields{
		"code":    a.CodeSize(),
		"pool":    p.Len(),
		"objects": objects.Len(),
	}).Info("assembled")

	if !c.noDisasm {
		err := dump.Text(out, mem[:a.CodeSize()], textAddr, a.Comments(), a.PointerMap())
		switch {
		case xerrors.Is(err, dump.ErrNoDisassembler):
			c.logger.Warn(err)

		case err != nil:
			return err
		}
	}

	if err := dump.Pool(out, p, mem[poolOffset:poolOffset+int32(p.Len()*8)], textAddr+uintptr(poolOffset)); err != nil {
		return err
	}

	if c.roData {
		if err := dump.ROData(out, mem[poolOffset:e.RegionSize()], textAddr+uintptr(poolOffset)); err != nil {
			return err
		}
	}

	if c.elfFile != "" {
		return writeELF(c.elfFile, mem[:e.RegionSize()], a.PrologueOffset())
	}
	return nil
}

func writeELF(filename string, text []byte, entry int32) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()

	ef := elf.File{
		Text:        text,
		EntryOffset: entry,
	}
	_, err = ef.WriteTo(f)
	return
}
