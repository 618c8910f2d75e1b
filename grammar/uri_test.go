/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsOriginForm(t *testing.T) {
	assert.True(t, IsOriginForm("/a/b?c=1"))
	assert.False(t, IsOriginForm("http://example.com/"))
}

func TestIsAbsoluteForm(t *testing.T) {
	u, ok := IsAbsoluteForm("http://example.com/a?b=1")
	require.True(t, ok)
	assert.Equal(t, "example.com", u.Host)

	_, ok = IsAbsoluteForm("/a/b")
	assert.False(t, ok)
}

func TestOriginFormRendersPathAndQuery(t *testing.T) {
	u, ok := IsAbsoluteForm("http://example.com/a/b?x=1")
	require.True(t, ok)
	assert.Equal(t, "/a/b?x=1", OriginForm(u))
}

func TestCleanHostStripsTrailingGarbage(t *testing.T) {
	assert.Equal(t, "example.com", CleanHost("example.com/evil"))
}

func TestCleanHostPreservesPort(t *testing.T) {
	assert.Equal(t, "example.com:8080", CleanHost("example.com:8080"))
}

func TestDefaultPort(t *testing.T) {
	assert.Equal(t, "80", DefaultPort("http"))
	assert.Equal(t, "443", DefaultPort("https"))
}
