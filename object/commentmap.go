// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package object

import (
	"sort"

	"gate.computer/emit/internal/errors"
	"gate.computer/emit/internal/pan"
)

// Comment attached to the instruction at PCOffset.
type Comment struct {
	PCOffset TextAddr
	Text     string
}

// CommentMap stores comments in the order in which they were made, which is
// also ascending PCOffset order.
type CommentMap struct {
	Comments []Comment
}

func (m *CommentMap) PutComment(addr TextAddr, text string) {
	if n := len(m.Comments); n > 0 && m.Comments[n-1].PCOffset > addr {
		pan.Panic(errors.Errorf("comment address %d is smaller than previous", addr))
	}
	m.Comments = append(m.Comments, Comment{addr, text})
}

// FindComments attached to the instruction at addr.
func (m *CommentMap) FindComments(addr TextAddr) []Comment {
	i := sort.Search(len(m.Comments), func(i int) bool {
		return m.Comments[i].PCOffset >= addr
	})
	j := i
	for j < len(m.Comments) && m.Comments[j].PCOffset == addr {
		j++
	}
	return m.Comments[i:j]
}
