/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package stream

import (
	"bufio"
	"bytes"
	"io"

	"github.com/kiwih/httpwire/header"
	"github.com/kiwih/httpwire/werr"
)

// maxChunkLineLength bounds a single `chunk-size [; ext] CRLF` line,
// matching the teacher's hard-coded 4 KiB chunk-line cap.
const maxChunkLineLength = 4096

var crlf = []byte("\r\n")

// ChunkedDecoder reads an RFC 7230 chunked-coded body: a sequence of
// size-prefixed chunks terminated by a zero-sized chunk, with optional
// trailer headers consumed (and discarded from the main header list, per
// spec.md's "quiet trailers" design note) up to the next blank line.
//
// maxChunkSize bounds any single chunk; maxTotalLength bounds the sum of
// all chunk payloads read. Exceeding the former raises
// werr.ChunkTooLarge; exceeding the latter raises werr.EntityTooLarge.
type ChunkedDecoder struct {
	r              *bufio.Reader
	maxChunkSize   int64
	maxTotalLength int64

	n        int64 // unread bytes remaining in the current chunk
	total    int64 // total payload bytes read so far
	err      error
	trailer  header.Header
	finished bool
}

// NewChunkedDecoder wraps r. A maxChunkSize or maxTotalLength of 0 is
// treated as "no cap" (MaxCapacity).
func NewChunkedDecoder(r *bufio.Reader, maxChunkSize, maxTotalLength int64) *ChunkedDecoder {
	if maxChunkSize <= 0 {
		maxChunkSize = MaxCapacity
	}
	if maxTotalLength <= 0 {
		maxTotalLength = MaxCapacity
	}
	return &ChunkedDecoder{r: r, maxChunkSize: maxChunkSize, maxTotalLength: maxTotalLength}
}

func (c *ChunkedDecoder) Read(p []byte) (n int, err error) {
	if c.err != nil {
		return 0, c.err
	}
	for c.n == 0 {
		if c.finished {
			c.err = io.EOF
			return 0, io.EOF
		}
		if err := c.beginChunk(); err != nil {
			c.err = err
			return 0, err
		}
	}
	if int64(len(p)) > c.n {
		p = p[:c.n]
	}
	n, err = c.r.Read(p)
	c.n -= int64(n)
	c.total += int64(n)
	if c.total > c.maxTotalLength {
		c.err = werr.EntityTooLarge{Max: c.maxTotalLength}
		return n, c.err
	}
	if (err == io.EOF) && c.n > 0 {
		err = io.ErrUnexpectedEOF
	}
	if err != nil && err != io.EOF {
		c.err = err
	}
	if c.n == 0 && err == nil {
		if derr := c.consumeChunkCRLF(); derr != nil {
			c.err = derr
			return n, derr
		}
	}
	return n, err
}

// beginChunk reads a `chunk-size [; chunk-ext] CRLF` line and sets up c.n
// for the next chunk, or marks c.finished on the zero chunk (after
// consuming trailers).
func (c *ChunkedDecoder) beginChunk() error {
	line, err := readChunkLine(c.r)
	if err != nil {
		return err
	}
	size, err := parseHexUint(line)
	if err != nil {
		return werr.MalformedChunk{Detail: "bad chunk size"}
	}
	if int64(size) > c.maxChunkSize {
		return werr.ChunkTooLarge{Max: c.maxChunkSize}
	}
	if size == 0 {
		trailer, err := readTrailer(c.r)
		if err != nil {
			return err
		}
		c.trailer = trailer
		c.finished = true
		return nil
	}
	c.n = int64(size)
	return nil
}

// consumeChunkCRLF reads the literal CRLF that follows a chunk's data.
func (c *ChunkedDecoder) consumeChunkCRLF() error {
	var buf [2]byte
	if _, err := io.ReadFull(c.r, buf[:]); err != nil {
		if err == io.EOF {
			return werr.MalformedChunk{Detail: "missing chunk CRLF"}
		}
		return err
	}
	if !bytes.Equal(buf[:], crlf) {
		return werr.MalformedChunk{Detail: "missing chunk CRLF"}
	}
	return nil
}

// Trailer returns the trailer headers read after the terminating zero
// chunk. It is only populated once the decoder has reached EOF.
func (c *ChunkedDecoder) Trailer() header.Header { return c.trailer }

// readTrailer consumes zero or more header lines up to a blank line,
// after the zero-sized chunk, per spec.md §4.4.
func readTrailer(r *bufio.Reader) (header.Header, error) {
	h := header.Header{}
	for {
		line, err := readRawLine(r, maxChunkLineLength)
		if err != nil {
			return header.Header{}, err
		}
		if len(line) == 0 {
			return h, nil
		}
		f, err := parseHeaderLine(line)
		if err != nil {
			return header.Header{}, err
		}
		h = h.Add(f)
	}
}

// readChunkLine reads a `chunk-size [; ext] CRLF` line, strips the
// extension (ignored, per spec.md §4.4), and returns the hex size bytes.
func readChunkLine(b *bufio.Reader) ([]byte, error) {
	line, err := readRawLine(b, maxChunkLineLength)
	if err != nil {
		return nil, err
	}
	if semi := bytes.IndexByte(line, ';'); semi != -1 {
		line = line[:semi]
	}
	return line, nil
}

// readRawLine reads up to and including '\n', strips the trailing CRLF,
// and fails with werr.LineTooLong if no '\n' appears within max bytes.
func readRawLine(b *bufio.Reader, max int) ([]byte, error) {
	line, err := b.ReadSlice('\n')
	if err != nil {
		if err == bufio.ErrBufferFull || len(line) > max {
			return nil, werr.LineTooLong{Max: max}
		}
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if len(line) > max {
		return nil, werr.LineTooLong{Max: max}
	}
	line = bytes.TrimRight(line, "\r\n")
	return line, nil
}

func parseHeaderLine(line []byte) (header.Field, error) {
	colon := bytes.IndexByte(line, ':')
	if colon < 0 {
		return header.Field{}, werr.MalformedHeader{Line: string(line)}
	}
	name := string(line[:colon])
	value := string(bytes.TrimSpace(line[colon+1:]))
	return header.NewField(name, value), nil
}

func parseHexUint(v []byte) (uint64, error) {
	var n uint64
	if len(v) == 0 {
		return 0, werr.MalformedChunk{Detail: "empty chunk size"}
	}
	for i, b := range v {
		var digit byte
		switch {
		case '0' <= b && b <= '9':
			digit = b - '0'
		case 'a' <= b && b <= 'f':
			digit = b - 'a' + 10
		case 'A' <= b && b <= 'F':
			digit = b - 'A' + 10
		default:
			return 0, werr.MalformedChunk{Detail: "invalid chunk size digit"}
		}
		if i >= 16 {
			return 0, werr.MalformedChunk{Detail: "chunk size too large"}
		}
		n = n<<4 | uint64(digit)
	}
	return n, nil
}

// ChunkedEncoder writes each buffered Write call as one chunk:
// `hex(size) CRLF bytes CRLF`, and Close emits the terminating
// `0 CRLF CRLF`.
type ChunkedEncoder struct {
	w io.Writer
}

// NewChunkedEncoder wraps w.
func NewChunkedEncoder(w io.Writer) *ChunkedEncoder { return &ChunkedEncoder{w: w} }

func (c *ChunkedEncoder) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if _, err := io.WriteString(c.w, hexLen(len(p))); err != nil {
		return 0, err
	}
	if _, err := c.w.Write(crlf); err != nil {
		return 0, err
	}
	n, err := c.w.Write(p)
	if err != nil {
		return n, err
	}
	if _, err := c.w.Write(crlf); err != nil {
		return n, err
	}
	return n, nil
}

// Close writes the terminating zero chunk and final CRLF. It does not
// close the underlying writer.
func (c *ChunkedEncoder) Close() error {
	_, err := io.WriteString(c.w, "0\r\n\r\n")
	return err
}

func hexLen(n int) string {
	const hexDigits = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = hexDigits[n&0xf]
		n >>= 4
	}
	return string(buf[i:])
}
