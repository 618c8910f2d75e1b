/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwih/httpwire/werr"
)

func TestBoundedReaderHardCapacity(t *testing.T) {
	src := bytes.NewReader([]byte("0123456789"))
	r := NewBoundedReader(src, 5, MaxCapacity)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "01234", string(out))
}

func TestBoundedReaderSoftLimitExceeded(t *testing.T) {
	src := bytes.NewReader(bytes.Repeat([]byte("x"), 100))
	r := NewBoundedReader(src, MaxCapacity, 10)
	buf := make([]byte, 1)
	var read int
	var lastErr error
	for i := 0; i < 20; i++ {
		_, err := r.Read(buf)
		if err != nil {
			lastErr = err
			break
		}
		read++
	}
	assert.LessOrEqual(t, read, 10)
	var limitErr werr.ReadLimitExceeded
	assert.ErrorAs(t, lastErr, &limitErr)
}

func TestBoundedReaderRemaining(t *testing.T) {
	r := NewBoundedReader(bytes.NewReader(nil), 42, MaxCapacity)
	assert.EqualValues(t, 42, r.Remaining())

	unbounded := NewBoundedReader(bytes.NewReader(nil), MaxCapacity, MaxCapacity)
	assert.EqualValues(t, -1, unbounded.Remaining())
}
