/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package body

import (
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/kiwih/httpwire/query"
	"github.com/kiwih/httpwire/stream"
	"github.com/kiwih/httpwire/werr"
)

// defaultMaxMemory mirrors the teacher's 32 MiB in-memory form/multipart
// cap from types_request.go's defaultMaxMemory constant.
const defaultMaxMemory = 32 << 20

// ReadBytes drains r fully into memory, failing with werr.EntityTooLarge
// if more than maxLen bytes are produced. maxLen <= 0 means unbounded.
func ReadBytes(r io.Reader, maxLen int64) ([]byte, error) {
	if maxLen <= 0 {
		// One below MaxCapacity so that maxLen+1 below does not overflow.
		maxLen = stream.MaxCapacity - 1
	}
	limited := io.LimitReader(r, maxLen+1)
	buf, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) > maxLen {
		return nil, werr.EntityTooLarge{Max: maxLen}
	}
	return buf, nil
}

// ReadText drains r fully into a string, subject to the same maxLen cap
// as ReadBytes.
func ReadText(r io.Reader, maxLen int64) (string, error) {
	b, err := ReadBytes(r, maxLen)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadQuery drains r and parses it as `application/x-www-form-urlencoded`,
// grounded on the teacher's parsePostForm in request.go, generalized to
// this module's order-preserving query.Values.
func ReadQuery(r io.Reader, maxLen int64) (query.Values, error) {
	if maxLen <= 0 {
		maxLen = defaultMaxMemory
	}
	raw, err := ReadText(r, maxLen)
	if err != nil {
		return query.Values{}, err
	}
	return query.Parse(raw)
}

// ReadFile drains r into a newly created temp file under dir (os.TempDir
// if dir is ""), named with a random UUID so concurrent uploads of the
// same form field never collide — the module's replacement for the
// teacher's os.CreateTemp-based multipart file staging in
// mime/multipart_reader.go's ReadForm. The caller owns the returned file
// and is responsible for removing it.
func ReadFile(r io.Reader, dir string, maxLen int64) (*os.File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "httpwire-"+uuid.NewString()+"-*")
	if err != nil {
		return nil, err
	}
	if maxLen <= 0 {
		// One below MaxCapacity so that maxLen+1 below does not overflow.
		maxLen = stream.MaxCapacity - 1
	}
	n, err := stream.CopyBuffered(f, io.LimitReader(r, maxLen+1))
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	if n > maxLen {
		f.Close()
		os.Remove(f.Name())
		return nil, werr.EntityTooLarge{Max: maxLen}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	return f, nil
}
