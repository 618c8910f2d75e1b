/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package body implements BodyDecoder — deciding which body framing
// applies to a parsed header block (Content-Length, chunked, or
// close-delimited) — and the BodyParsers that turn a decoded byte stream
// into bytes, text, a parsed form, a query, a file, or a multipart form.
// The framing decision is grounded on the teacher's fixLength/
// fixTransferEncoding/readTransferRequest/readTransferResponse in
// utils_transfer.go, generalized from the teacher's *Response/*Request
// structs onto this module's immutable message.Request/message.Response.
package body

import (
	"strings"

	"github.com/kiwih/httpwire/header"
	"github.com/kiwih/httpwire/message"
	"github.com/kiwih/httpwire/stream"
	"github.com/kiwih/httpwire/werr"
)

// Framing describes how a message's body is delimited on the wire.
type Framing int

const (
	// FramingNone means no body is present at all (e.g. 204, HEAD response,
	// or GET/HEAD/DELETE request with no Content-Length).
	FramingNone Framing = iota
	// FramingContentLength means the body is exactly Length bytes.
	FramingContentLength
	// FramingChunked means the body is chunked-transfer-coded.
	FramingChunked
	// FramingClose means the body runs until the connection closes
	// (HTTP/1.0 response with neither Content-Length nor chunked coding).
	FramingClose
)

// Plan is the result of deciding a message's body framing: how it's
// delimited, its known length (if FramingContentLength), and the two
// coding stacks layered onto the entity-body — Codings from
// Transfer-Encoding (applied/removed first, since it wraps whatever
// Content-Encoding already produced) and ContentCodings from
// Content-Encoding (applied/removed last), per RFC 7230 §3.3.1's layering
// and spec.md §4.6's "finally apply Content-Encoding codings" step.
type Plan struct {
	Framing        Framing
	Length         int64 // valid only when Framing == FramingContentLength
	Codings        []string
	ContentCodings []string
	Trailer        []string // declared trailer field names, from the Trailer header
}

// Limits bounds body decoding; a zero (or negative) field means no cap for
// that field (stream.MaxCapacity), i.e. trust the wire entirely.
type Limits struct {
	MaxChunkSize   int64
	MaxTotalLength int64
	MaxReadLimit   int64
}

func (l Limits) readLimit() int64 {
	if l.MaxReadLimit > 0 {
		return l.MaxReadLimit
	}
	return stream.MaxCapacity
}

// PlanRequest decides the body framing for a request, per RFC 7230 §3.3.3,
// grounded on readTransferRequest/fixLength.
func PlanRequest(method message.Method, h header.Header) (Plan, error) {
	return plan(false, 200, string(method), h)
}

// PlanResponse decides the body framing for a response to a request made
// with requestMethod, per RFC 7230 §3.3.3, grounded on
// readTransferResponse/fixLength. A HEAD request never expects a response
// body regardless of what Content-Length/Transfer-Encoding claim.
func PlanResponse(status int, requestMethod message.Method, h header.Header) (Plan, error) {
	if requestMethod == message.MethodHead {
		return Plan{Framing: FramingNone}, nil
	}
	p, err := plan(true, status, string(requestMethod), h)
	if err != nil {
		return Plan{}, err
	}
	if p.Framing == FramingNone && !h.Has(header.ContentLength) && status/100 != 1 && status != 204 && status != 304 {
		// No Content-Length, not chunked, and a body-bearing status: the
		// teacher's readTransferResponse marks this close-delimited rather
		// than bodyless.
		p.Framing = FramingClose
	}
	return p, nil
}

func plan(isResponse bool, status int, method string, h header.Header) (Plan, error) {
	codings, chunked, err := transferCodings(h)
	if err != nil {
		return Plan{}, err
	}
	contentCodings, err := contentEncodingCodings(h)
	if err != nil {
		return Plan{}, err
	}

	bodyless := bodylessMethod(method) && !isResponse
	if !isResponse {
		if bodyless {
			if err := checkZeroContentLength(h); err != nil {
				return Plan{}, err
			}
			return Plan{Framing: FramingNone}, nil
		}
	} else {
		switch {
		case status/100 == 1, status == 204, status == 304:
			return Plan{Framing: FramingNone}, nil
		}
	}

	if chunked {
		return Plan{Framing: FramingChunked, Codings: codings, ContentCodings: contentCodings, Trailer: splitTrailer(h)}, nil
	}

	length, hasLength, err := contentLength(h)
	if err != nil {
		return Plan{}, err
	}
	if !hasLength {
		return Plan{Framing: FramingNone, Codings: codings, ContentCodings: contentCodings}, nil
	}
	if length == 0 {
		return Plan{Framing: FramingNone, Codings: codings, ContentCodings: contentCodings}, nil
	}
	return Plan{Framing: FramingContentLength, Length: length, Codings: codings, ContentCodings: contentCodings}, nil
}

func bodylessMethod(method string) bool {
	switch method {
	case string(message.MethodGet), string(message.MethodHead), string(message.MethodDelete), string(message.MethodOptions), string(message.MethodTrace):
		return true
	}
	return false
}

// checkZeroContentLength hardens against request smuggling per RFC 7230
// §3.3.3: a body-less method may only declare Content-Length: 0, and only
// once, grounded on fixLength's isRequest branch.
func checkZeroContentLength(h header.Header) error {
	values := h.Values(header.ContentLength)
	if len(values) == 0 {
		return nil
	}
	if len(values) == 1 && strings.TrimSpace(values[0]) == "0" {
		return nil
	}
	return werr.InvalidContentLength{Value: strings.Join(values, ", ")}
}

// contentLength parses the Content-Length header, deduplicating repeated
// identical values and rejecting conflicting ones, grounded on fixLength's
// request-smuggling hardening.
func contentLength(h header.Header) (int64, bool, error) {
	values := h.Values(header.ContentLength)
	if len(values) == 0 {
		return 0, false, nil
	}
	first := strings.TrimSpace(values[0])
	for _, v := range values[1:] {
		if strings.TrimSpace(v) != first {
			return 0, false, werr.InvalidContentLength{Value: strings.Join(values, ", ")}
		}
	}
	n, err := parseContentLength(first)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func parseContentLength(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	var n int64
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c < '0' || c > '9' {
			return 0, werr.InvalidContentLength{Value: v}
		}
		n = n*10 + int64(c-'0')
		if n < 0 {
			return 0, werr.InvalidContentLength{Value: v}
		}
	}
	return n, nil
}

// transferCodings parses the Transfer-Encoding header into its coding
// list, reporting whether "chunked" is the final (and therefore
// operative) coding, per RFC 7230 §3.3.1.
func transferCodings(h header.Header) ([]string, bool, error) {
	v := h.Value(header.TransferEncoding)
	if v == "" {
		return nil, false, nil
	}
	codings, err := stream.ParseCodingList(v)
	if err != nil {
		return nil, false, err
	}
	chunked := len(codings) > 0 && codings[len(codings)-1] == header.TokenChunked
	return codings, chunked, nil
}

// contentEncodingCodings parses the Content-Encoding header into its
// coding list, independent of whatever Transfer-Encoding declares: a
// plain Content-Length response compressed with `Content-Encoding: gzip`
// and no Transfer-Encoding at all must still be decompressed, per
// spec.md §4.6.
func contentEncodingCodings(h header.Header) ([]string, error) {
	v := h.Value(header.ContentEncoding)
	if v == "" {
		return nil, nil
	}
	return stream.ParseCodingList(v)
}

func splitTrailer(h header.Header) []string {
	v := h.Value(header.Trailer)
	if v == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(v, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
