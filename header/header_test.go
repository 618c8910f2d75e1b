/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package header

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderOrderPreserved(t *testing.T) {
	h := New(NewField("X-A", "1"), NewField("X-B", "2"), NewField("X-A", "3"))
	fields := h.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "X-A", fields[0].Name)
	assert.Equal(t, "X-B", fields[1].Name)
	assert.Equal(t, "X-A", fields[2].Name)
	assert.Equal(t, []string{"1", "3"}, h.Values("x-a"))
}

func TestHeaderWithReplacesAllPriorSameName(t *testing.T) {
	h := New(NewField("X-A", "1"), NewField("X-B", "2"), NewField("X-A", "3"))
	h2 := h.With(NewField("X-A", "final"))
	assert.Equal(t, []string{"final"}, h2.Values("X-A"))
	assert.Equal(t, 2, h2.Len())
	// original untouched
	assert.Equal(t, 3, h.Len())
}

func TestHeaderWithout(t *testing.T) {
	h := New(NewField("A", "1"), NewField("B", "2"), NewField("C", "3"))
	h2 := h.Without("b")
	assert.False(t, h2.Has("B"))
	assert.True(t, h2.Has("A"))
	assert.True(t, h2.Has("C"))
}

func TestParseGeneric(t *testing.T) {
	h := New(NewField("X-Count", "42"))
	n, err := Parse(h, "X-Count", strconv.Atoi)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = Parse(h, "X-Missing", strconv.Atoi)
	assert.Error(t, err)
}

func TestParseOrDefault(t *testing.T) {
	h := New()
	n, err := ParseOr(h, "X-Count", 7, strconv.Atoi)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestContentLength(t *testing.T) {
	h := New(NewField(ContentLength, "123"))
	n, err := h.ContentLength()
	require.NoError(t, err)
	assert.EqualValues(t, 123, n)
}

func TestCloneIsIndependent(t *testing.T) {
	h := New(NewField("A", "1"))
	clone := h.Clone()
	h2 := h.With(NewField("A", "changed"))
	assert.Equal(t, "1", clone.Value("A"))
	assert.Equal(t, "changed", h2.Value("A"))
}
