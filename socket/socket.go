// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package socket is the native socket surface for platforms without socket
// support.  Every entry point fails with ErrUnsupported.
package socket

import (
	"net/netip"
)

// ArgumentError is reported to the caller as an invalid argument.
type ArgumentError string

func (s ArgumentError) Error() string         { return string(s) }
func (s ArgumentError) ArgumentError() string { return string(s) }

// ErrUnsupported is returned by all operations.
var ErrUnsupported error = ArgumentError("Sockets unsupported on this platform")

// Test hooks which force short reads and writes.  They have no effect.
var (
	ShortRead  bool
	ShortWrite bool
)

// Interface is a network interface with its addresses.
type Interface struct {
	Name  string
	Index int
	Addrs []netip.Addr
}

func ParseInternetAddress(s string) (netip.Addr, error) { return netip.Addr{}, ErrUnsupported }

func ListSupportedNetworkInterfaces(includeLoopback, includeLinkLocal bool) ([]Interface, error) {
	return nil, ErrUnsupported
}

func IsBindError(errno int) (bool, error) { return false, ErrUnsupported }
