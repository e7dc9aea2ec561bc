// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package region

func Map(size int) (*Region, error) { return nil, ErrUnsupported }

func (r *Region) Protect() error { return ErrUnsupported }
func (r *Region) Close() error   { return nil }
