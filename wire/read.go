/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package wire implements WireCodec: parsing a request-line or
// status-line plus a header block off a *bufio.Reader, and serializing a
// Request/Response's start line and headers back onto an io.Writer. It
// does not frame the body itself — that is BodyDecoder's job, once the
// header block tells it which framing (Content-Length, chunked, or
// close-delimited) applies — grounded on the split the teacher keeps
// between public_response.go's ReadResponse (start line + header block
// only) and body.go/utils_transfer.go (body framing).
package wire

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/kiwih/httpwire/header"
	"github.com/kiwih/httpwire/message"
	"github.com/kiwih/httpwire/werr"
)

// Options bounds the line/header-block parsing the way the teacher's
// server applies per-connection limits (conn_reader.go's read limit,
// hdr's header size caps) ahead of any body framing.
type Options struct {
	MaxLineLength int // bytes, including CRLF; 0 means DefaultMaxLineLength
	MaxHeaders    int // field count; 0 means DefaultMaxHeaders
}

// Defaults mirror the teacher's MaxHeaderBytes-class limits, scoped to the
// start line and header block this package parses.
const (
	DefaultMaxLineLength = 8 << 10 // 8 KiB
	DefaultMaxHeaders    = 100
)

func (o Options) lineLimit() int {
	if o.MaxLineLength > 0 {
		return o.MaxLineLength
	}
	return DefaultMaxLineLength
}

func (o Options) headerLimit() int {
	if o.MaxHeaders > 0 {
		return o.MaxHeaders
	}
	return DefaultMaxHeaders
}

// ReadRequestLine parses `method SP request-target SP HTTP-version CRLF`.
func ReadRequestLine(r *bufio.Reader, opts Options) (message.Method, string, message.Version, error) {
	if _, err := r.Peek(1); err == io.EOF {
		return "", "", message.Version{}, io.EOF
	}
	line, err := readLine(r, opts.lineLimit())
	if err != nil {
		return "", "", message.Version{}, err
	}
	parts := strings.SplitN(string(line), " ", 3)
	if len(parts) != 3 {
		return "", "", message.Version{}, werr.MalformedStartLine{Line: string(line)}
	}
	version, ok := parseVersion(parts[2])
	if !ok {
		return "", "", message.Version{}, werr.MalformedStartLine{Line: string(line)}
	}
	return message.Method(parts[0]), parts[1], version, nil
}

// ReadStatusLine parses `HTTP-version SP status-code SP reason-phrase CRLF`.
func ReadStatusLine(r *bufio.Reader, opts Options) (message.Version, int, string, error) {
	line, err := readLine(r, opts.lineLimit())
	if err != nil {
		return message.Version{}, 0, "", err
	}
	s := string(line)
	sp := strings.IndexByte(s, ' ')
	if sp < 0 {
		return message.Version{}, 0, "", werr.MalformedStartLine{Line: s}
	}
	version, ok := parseVersion(s[:sp])
	if !ok {
		return message.Version{}, 0, "", werr.MalformedStartLine{Line: s}
	}
	rest := strings.TrimLeft(s[sp+1:], " ")
	codeStr := rest
	reason := ""
	if sp2 := strings.IndexByte(rest, ' '); sp2 >= 0 {
		codeStr = rest[:sp2]
		reason = rest[sp2+1:]
	}
	if len(codeStr) != 3 {
		return message.Version{}, 0, "", werr.MalformedStartLine{Line: s}
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil || code < 0 {
		return message.Version{}, 0, "", werr.MalformedStartLine{Line: s}
	}
	return version, code, reason, nil
}

func parseVersion(s string) (message.Version, bool) {
	if !strings.HasPrefix(s, "HTTP/") {
		return message.Version{}, false
	}
	s = s[len("HTTP/"):]
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return message.Version{}, false
	}
	major, err1 := strconv.Atoi(s[:dot])
	minor, err2 := strconv.Atoi(s[dot+1:])
	if err1 != nil || err2 != nil {
		return message.Version{}, false
	}
	return message.Version{Major: major, Minor: minor}, true
}

// ReadHeaders reads field lines up to the terminating blank line, failing
// werr.MalformedHeader on obsolete line folding (a line starting with SP or
// HTAB) and werr.TooManyHeaders if the field count exceeds
// opts.headerLimit().
func ReadHeaders(r *bufio.Reader, opts Options) (header.Header, error) {
	h := header.Header{}
	limit := opts.headerLimit()
	for {
		line, err := readLine(r, opts.lineLimit())
		if err != nil {
			return header.Header{}, err
		}
		if len(line) == 0 {
			return h, nil
		}
		// obs-fold: a continuation line starts with SP or HTAB, and is
		// rejected rather than unwrapped.
		if line[0] == ' ' || line[0] == '\t' {
			return header.Header{}, werr.MalformedHeader{Line: string(line)}
		}
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			return header.Header{}, werr.MalformedHeader{Line: string(line)}
		}
		name := string(line[:colon])
		value := string(bytes.TrimSpace(line[colon+1:]))
		if !validFieldName(name) {
			return header.Header{}, werr.MalformedHeader{Line: string(line)}
		}
		h = h.Add(header.NewField(name, value))
		if h.Len() > limit {
			return header.Header{}, werr.TooManyHeaders{Max: limit}
		}
	}
}

func validFieldName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c == ':' || c == 127 {
			return false
		}
	}
	return true
}

func readLine(r *bufio.Reader, max int) ([]byte, error) {
	line, err := r.ReadSlice('\n')
	if err != nil {
		if err == bufio.ErrBufferFull {
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
	return bytes.TrimRight(line, "\r\n"), nil
}

// ReadRequestHead parses a request-line plus header block, leaving the
// body unframed: the caller passes r on to package body to decode the
// body according to the returned header.
func ReadRequestHead(r *bufio.Reader, opts Options) (message.Request, error) {
	method, target, version, err := ReadRequestLine(r, opts)
	if err != nil {
		return message.Request{}, err
	}
	h, err := ReadHeaders(r, opts)
	if err != nil {
		return message.Request{}, err
	}
	return message.NewRequest(method, target, version).WithHeader(h), nil
}

// ReadResponseHead parses a status-line plus header block, leaving the
// body unframed.
func ReadResponseHead(r *bufio.Reader, opts Options) (message.Response, error) {
	version, code, reason, err := ReadStatusLine(r, opts)
	if err != nil {
		return message.Response{}, err
	}
	h, err := ReadHeaders(r, opts)
	if err != nil {
		return message.Response{}, err
	}
	return message.NewResponse(version, code, reason).WithHeader(h), nil
}
