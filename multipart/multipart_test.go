/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package multipart

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Ada Lovelace"))

	fw, err := w.CreateFormFile("upload", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("file contents here"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := NewReader(&buf, w.Boundary())

	p1, err := r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "name", p1.FormName())
	v1, err := io.ReadAll(p1)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", string(v1))

	p2, err := r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "upload", p2.FormName())
	assert.Equal(t, "notes.txt", p2.FileName())
	v2, err := io.ReadAll(p2)
	require.NoError(t, err)
	assert.Equal(t, "file contents here", string(v2))

	_, err = r.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestSetBoundaryRejectsAfterWrite(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.CreateFormField("x")
	require.NoError(t, err)
	err = w.SetBoundary("newboundary")
	assert.Error(t, err)
}
