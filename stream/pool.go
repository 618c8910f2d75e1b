/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package stream

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// scratchPool backs the scratch buffers CopyBuffered borrows for the body
// parsers' and the client engine's copy loops, so repeated copies don't churn
// the allocator on every request/response.
var scratchPool bytebufferpool.Pool

// Borrow returns a pooled scratch buffer, its length reset to 0.
func Borrow() *bytebufferpool.ByteBuffer {
	return scratchPool.Get()
}

// Release returns buf to the pool for reuse. Callers must not touch buf
// after calling Release.
func Release(buf *bytebufferpool.ByteBuffer) {
	scratchPool.Put(buf)
}

// CopyBuffered copies from src to dst using a pooled scratch buffer rather
// than io.Copy's own allocation, for the hot path of streaming a body
// through the coding stack.
func CopyBuffered(dst io.Writer, src io.Reader) (int64, error) {
	buf := Borrow()
	defer Release(buf)
	buf.B = buf.B[:cap(buf.B)]
	if len(buf.B) == 0 {
		buf.B = make([]byte, 32*1024)
	}
	return io.CopyBuffer(dst, src, buf.B)
}
