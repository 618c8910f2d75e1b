/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package multipart implements MultipartCodec: reading and writing
// `multipart/form-data` bodies per RFC 7578. The boundary-scanning
// algorithm (scanUntilBoundary/matchAfterPrefix) is carried over verbatim
// in spirit from the teacher's mime/utils.go and mime/multipart_reader.go
// — it is delicate, correctness-critical code with no idiomatic
// alternative shape, so this package keeps its structure and generalizes
// only the surrounding types (Header instead of a map, werr instead of
// fmt.Errorf).
package multipart

import (
	"bufio"
	"bytes"
	"io"

	"github.com/kiwih/httpwire/header"
	"github.com/kiwih/httpwire/werr"
)

const peekBufferSize = 4096

// Reader reads a multipart body part by part.
type Reader struct {
	br               *bufio.Reader
	currentPart      *Part
	partsRead        int
	newLine          []byte
	nlDashBoundary   []byte
	dashBoundary     []byte
	dashBoundaryDash []byte
}

// NewReader wraps r, scanning for parts delimited by boundary (the value
// of the Content-Type header's boundary parameter).
func NewReader(r io.Reader, boundary string) *Reader {
	b := []byte("\r\n--" + boundary + "--")
	return &Reader{
		br:               bufio.NewReaderSize(r, peekBufferSize),
		newLine:          b[:2],
		nlDashBoundary:   b[:len(b)-2],
		dashBoundaryDash: b[2:],
		dashBoundary:     b[2 : len(b)-2],
	}
}

// NextPart returns the next Part, or io.EOF once the terminating boundary
// has been consumed.
func (r *Reader) NextPart() (*Part, error) {
	if r.currentPart != nil {
		r.currentPart.Close()
	}

	expectNewPart := false
	for {
		line, err := r.br.ReadSlice('\n')

		if err == io.EOF && r.isFinalBoundary(line) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		if r.isBoundaryDelimiterLine(line) {
			r.partsRead++
			p, err := newPart(r)
			if err != nil {
				return nil, err
			}
			r.currentPart = p
			return p, nil
		}

		if r.isFinalBoundary(line) {
			return nil, io.EOF
		}

		if expectNewPart {
			return nil, werr.InvalidMultipartStart{Got: string(line)}
		}

		if r.partsRead == 0 {
			continue
		}

		if bytes.Equal(line, r.newLine) {
			expectNewPart = true
			continue
		}

		return nil, werr.InvalidMultipartStart{Got: string(line)}
	}
}

func (r *Reader) isFinalBoundary(line []byte) bool {
	if len(line) < len(r.dashBoundaryDash) || !bytes.Equal(line[:len(r.dashBoundaryDash)], r.dashBoundaryDash) {
		return false
	}
	rest := skipLWSPChar(line[len(r.dashBoundaryDash):])
	return len(rest) == 0 || bytes.Equal(rest, r.newLine)
}

func (r *Reader) isBoundaryDelimiterLine(line []byte) bool {
	if len(line) < len(r.dashBoundary) || !bytes.Equal(line[:len(r.dashBoundary)], r.dashBoundary) {
		return false
	}
	rest := skipLWSPChar(line[len(r.dashBoundary):])

	if r.partsRead == 0 && len(rest) == 1 && rest[0] == '\n' {
		r.newLine = r.newLine[1:]
		r.nlDashBoundary = r.nlDashBoundary[1:]
	}
	return bytes.Equal(rest, r.newLine)
}

func skipLWSPChar(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	return b
}

// scanUntilBoundary scans buf to identify how much of it can safely be
// returned as part of the current Part's body.
func scanUntilBoundary(buf, dashBoundary, nlDashBoundary []byte, total int64, readErr error) (int, error) {
	if total == 0 {
		if len(buf) >= len(dashBoundary) && bytes.Equal(buf[:len(dashBoundary)], dashBoundary) {
			switch matchAfterPrefix(buf, dashBoundary, readErr) {
			case -1:
				return len(dashBoundary), nil
			case 0:
				return 0, nil
			case +1:
				return 0, io.EOF
			}
		}
		if len(dashBoundary) >= len(buf) && bytes.Equal(dashBoundary[:len(buf)], buf) {
			return 0, readErr
		}
	}

	if i := bytes.Index(buf, nlDashBoundary); i >= 0 {
		switch matchAfterPrefix(buf[i:], nlDashBoundary, readErr) {
		case -1:
			return i + len(nlDashBoundary), nil
		case 0:
			return i, nil
		case +1:
			return i, io.EOF
		}
	}
	if len(nlDashBoundary) >= len(buf) && bytes.Equal(nlDashBoundary[:len(buf)], buf) {
		return 0, readErr
	}

	i := bytes.LastIndexByte(buf, nlDashBoundary[0])
	if i >= 0 && len(nlDashBoundary) >= len(buf[i:]) && bytes.Equal(nlDashBoundary[:len(buf[i:])], buf[i:]) {
		return i, nil
	}
	return len(buf), readErr
}

// matchAfterPrefix reports whether buf (which has prefix as a byte
// prefix) matches the boundary: +1 yes, -1 no, 0 need more input.
func matchAfterPrefix(buf, prefix []byte, readErr error) int {
	if len(buf) == len(prefix) {
		if readErr != nil {
			return +1
		}
		return 0
	}
	c := buf[len(prefix)]
	if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '-' {
		return +1
	}
	return -1
}

func newPart(r *Reader) (*Part, error) {
	p := &Part{reader: r}
	if err := p.populateHeaders(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Part) populateHeaders() error {
	h := header.Header{}
	for {
		line, err := p.reader.br.ReadSlice('\n')
		if err != nil {
			if err == io.EOF {
				return werr.TruncatedPart{}
			}
			return err
		}
		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			break
		}
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			return werr.MalformedHeader{Line: string(line)}
		}
		name := string(line[:colon])
		value := string(bytes.TrimSpace(line[colon+1:]))
		h = h.Add(header.NewField(name, value))
	}
	p.header = h
	return nil
}
