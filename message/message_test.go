/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package message

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kiwih/httpwire/header"
)

func TestVersionAtLeast(t *testing.T) {
	assert.True(t, HTTP11.AtLeast(HTTP10))
	assert.False(t, HTTP10.AtLeast(HTTP11))
	assert.True(t, HTTP11.AtLeast(HTTP11))
}

func TestRequestWithMethodsAreImmutable(t *testing.T) {
	base := NewRequest(MethodGet, "/a", HTTP11)
	changed := base.WithMethod(MethodPost).WithTarget("/b")
	assert.Equal(t, MethodGet, base.Method())
	assert.Equal(t, "/a", base.Target())
	assert.Equal(t, MethodPost, changed.Method())
	assert.Equal(t, "/b", changed.Target())
}

func TestRequestWithHeaderFieldReplacesSameName(t *testing.T) {
	req := NewRequest(MethodGet, "/", HTTP11).
		WithHeaderField(header.NewField("X-Token", "a")).
		WithHeaderField(header.NewField("X-Token", "b"))
	assert.Equal(t, "b", req.Header().Value("X-Token"))
	assert.Equal(t, 1, req.Header().Len())
}

func TestResponseBodyAllowed(t *testing.T) {
	cases := []struct {
		status  int
		allowed bool
	}{
		{100, false},
		{204, false},
		{304, false},
		{200, true},
		{404, true},
	}
	for _, c := range cases {
		r := NewResponse(HTTP11, c.status, "")
		assert.Equal(t, c.allowed, r.BodyAllowed(), "status %d", c.status)
	}
}

func TestResponseIsInformational(t *testing.T) {
	assert.True(t, NewResponse(HTTP11, 101, "Switching Protocols").IsInformational())
	assert.False(t, NewResponse(HTTP11, 200, "OK").IsInformational())
}
