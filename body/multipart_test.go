/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package body

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwih/httpwire/entity"
	"github.com/kiwih/httpwire/multipart"
)

func TestReadMultipartPreservesOrderAndKinds(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Ada"))
	fw, err := w.CreateFormFile("upload", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("small file"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	mp, err := ReadMultipart(&buf, w.Boundary(), defaultMaxMemory, "")
	require.NoError(t, err)
	defer mp.RemoveAll()

	require.Len(t, mp.Parts, 2)

	tp, ok := mp.Parts[0].(entity.TextPart)
	require.True(t, ok)
	assert.Equal(t, "name", tp.Name)
	assert.Equal(t, "Ada", tp.Value)

	fp, ok := mp.Parts[1].(entity.FilePart)
	require.True(t, ok)
	assert.Equal(t, "upload", fp.Name)
	assert.Equal(t, "notes.txt", fp.Filename)

	rc, err := fp.Content.OpenStream()
	require.NoError(t, err)
	out, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "small file", string(out))
}

func TestReadMultipartSpillsLargeFileToDisk(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("upload", "big.bin")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte("x"), 100))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	mp, err := ReadMultipart(&buf, w.Boundary(), 10, "")
	require.NoError(t, err)
	defer mp.RemoveAll()

	fp, ok := mp.Parts[0].(entity.FilePart)
	require.True(t, ok)
	path, ok := fp.Content.FilePath()
	require.True(t, ok)
	assert.NotEmpty(t, path)
}
