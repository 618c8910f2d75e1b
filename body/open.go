/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package body

import (
	"bufio"
	"io"

	"github.com/kiwih/httpwire/header"
	"github.com/kiwih/httpwire/stream"
)

// Reader is a body stream plus, once fully drained, any trailer fields a
// chunked body carried — exposed as a post-stream accessor rather than
// merged silently into the message header, per spec.md's "quiet
// trailers" design note.
type Reader struct {
	io.Reader
	decoder *stream.ChunkedDecoder
}

// Trailer returns the trailer header block, populated only after Read has
// returned io.EOF. For non-chunked framings it is always empty.
func (r *Reader) Trailer() header.Header {
	if r.decoder == nil {
		return header.Header{}
	}
	return r.decoder.Trailer()
}

// Open wires up the raw wire reader per plan's framing and limits, then
// layers the content-coding stack (gzip/deflate) over it, per spec.md §4.6.
// r must be positioned exactly at the start of the body.
func Open(r *bufio.Reader, plan Plan, limits Limits) (*Reader, error) {
	var raw io.Reader
	var decoder *stream.ChunkedDecoder

	switch plan.Framing {
	case FramingNone:
		raw = io.LimitReader(r, 0)
	case FramingContentLength:
		raw = stream.NewBoundedReader(r, plan.Length, limits.readLimit())
	case FramingChunked:
		decoder = stream.NewChunkedDecoder(r, limits.MaxChunkSize, limits.MaxTotalLength)
		raw = decoder
	case FramingClose:
		raw = stream.NewBoundedReader(r, stream.MaxCapacity, limits.readLimit())
	default:
		raw = io.LimitReader(r, 0)
	}

	codingList := plan.Codings
	if decoder != nil && len(codingList) > 0 {
		// The last entry is "chunked" itself, already applied by the
		// ChunkedDecoder above; WrapReader only unwraps the coding layers
		// underneath it.
		codingList = codingList[:len(codingList)-1]
	}
	transferDecoded, err := stream.WrapReader(raw, codingList)
	if err != nil {
		return nil, err
	}
	// Content-Encoding is applied independently of whatever
	// Transfer-Encoding declared (and is frequently the only coding a
	// message carries at all), so it is unwrapped as its own stack after
	// the transfer coding, per spec.md §4.6's "finally apply
	// Content-Encoding codings" step.
	decoded, err := stream.WrapReader(transferDecoded, plan.ContentCodings)
	if err != nil {
		return nil, err
	}
	return &Reader{Reader: decoded, decoder: decoder}, nil
}
