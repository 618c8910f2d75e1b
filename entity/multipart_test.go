/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package entity

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwih/httpwire/multipart"
)

func TestFromMultipartEncodesPartsInOrder(t *testing.T) {
	mp := Multipart{Parts: []Part{
		TextPart{Name: "title", Value: "hello"},
		FilePart{Name: "upload", Filename: "a.txt", MediaType: "text/plain", Content: FromBytes([]byte("file body"))},
	}}
	e := FromMultipart(mp, "test-boundary", nil)

	ct, ok := e.ContentType()
	require.True(t, ok)
	assert.Equal(t, "multipart/form-data; boundary=test-boundary", ct)

	rc, err := e.OpenStream()
	require.NoError(t, err)
	defer rc.Close()

	r := multipart.NewReader(rc, "test-boundary")
	p1, err := r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "title", p1.FormName())
	v1, err := io.ReadAll(p1)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(v1))

	p2, err := r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "upload", p2.FormName())
	assert.Equal(t, "a.txt", p2.FileName())
	v2, err := io.ReadAll(p2)
	require.NoError(t, err)
	assert.Equal(t, "file body", string(v2))

	_, err = r.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestMultipartValueAndFileLookup(t *testing.T) {
	mp := Multipart{Parts: []Part{
		TextPart{Name: "a", Value: "1"},
		FilePart{Name: "b", Filename: "f.bin", Content: FromBytes([]byte("x"))},
	}}

	v, ok := mp.Value("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	fp, ok := mp.File("b")
	require.True(t, ok)
	assert.Equal(t, "f.bin", fp.Filename)

	_, ok = mp.Value("missing")
	assert.False(t, ok)
}
