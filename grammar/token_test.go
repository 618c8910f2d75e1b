/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsToken(t *testing.T) {
	assert.True(t, IsToken("foo-bar"))
	assert.True(t, IsToken("X-Custom-Header"))
	assert.False(t, IsToken(""))
	assert.False(t, IsToken("has space"))
	assert.False(t, IsToken(`quoted"value`))
}

func TestQuoteIfNeeded(t *testing.T) {
	assert.Equal(t, "token", QuoteIfNeeded("token"))
	assert.Equal(t, `"has space"`, QuoteIfNeeded("has space"))
	assert.Equal(t, `"with \"quote\""`, QuoteIfNeeded(`with "quote"`))
}

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, "Content-Type", CanonicalKey("content-type"))
	assert.Equal(t, "Content-Type", CanonicalKey("Content-Type"))
	assert.Equal(t, "X-Foo-Bar", CanonicalKey("x-foo-bar"))
}

func TestTrimOWS(t *testing.T) {
	assert.Equal(t, "value", TrimOWS("  value  "))
	assert.Equal(t, "value", TrimOWS("\tvalue\t"))
}

func TestTokenEqual(t *testing.T) {
	assert.True(t, TokenEqual("Content-Type", "content-type"))
	assert.False(t, TokenEqual("Content-Type", "Content-Length"))
}

func TestContainsToken(t *testing.T) {
	assert.True(t, ContainsToken("gzip, chunked", "chunked"))
	assert.True(t, ContainsToken("GZIP, CHUNKED", "gzip"))
	assert.False(t, ContainsToken("gzip", "chunked"))
}
