/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package stream

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewChunkedEncoder(&buf)
	_, err := enc.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = enc.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	dec := NewChunkedDecoder(bufio.NewReader(&buf), 0, 0)
	out, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(out))
}

func TestChunkedDecoderTrailer(t *testing.T) {
	raw := "5\r\nhello\r\n0\r\nX-Trailer: value\r\n\r\n"
	dec := NewChunkedDecoder(bufio.NewReader(bytes.NewReader([]byte(raw))), 0, 0)
	out, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
	assert.Equal(t, "value", dec.Trailer().Value("X-Trailer"))
}

func TestChunkedDecoderTruncated(t *testing.T) {
	raw := "5\r\nhel"
	dec := NewChunkedDecoder(bufio.NewReader(bytes.NewReader([]byte(raw))), 0, 0)
	_, err := io.ReadAll(dec)
	assert.Error(t, err)
}
