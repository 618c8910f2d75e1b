/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package werr defines the error kinds shared across the wire codec, the
// body decoder/parsers, the multipart codec and the client engine.
//
// Every kind below carries only structural data (names, sizes, limits) in
// its message — never body bytes — so that logging or surfacing an error to
// a caller can never leak payload contents.
package werr

import (
	"fmt"

	"github.com/pkg/errors"
)

type (
	// MalformedStartLine is returned when a request-line or status-line
	// does not match the wire grammar. Fatal to the connection.
	MalformedStartLine struct {
		Line string
	}

	// MalformedHeader is returned when a header line does not match
	// `field-name ":" OWS field-value OWS`, or uses obsolete line
	// folding. Fatal to the connection.
	MalformedHeader struct {
		Line string
	}

	// LineTooLong is returned when a wire line exceeds the configured
	// line buffer size.
	LineTooLong struct {
		Max int
	}

	// TooManyHeaders is returned when a message carries more header
	// lines than the configured maximum.
	TooManyHeaders struct {
		Max int
	}

	// MalformedChunk is returned by the chunked decoder when a chunk
	// size line or trailing CRLF does not match the chunked grammar.
	// Fatal to the body stream.
	MalformedChunk struct {
		Detail string
	}

	// ChunkTooLarge is returned when a single chunk exceeds the
	// decoder's per-chunk cap.
	ChunkTooLarge struct {
		Max int64
	}

	// EntityTooLarge is returned when a body's total decoded length
	// exceeds a per-stream cap.
	EntityTooLarge struct {
		Max int64
	}

	// UnsupportedCoding is returned when a Transfer-Encoding or
	// Content-Encoding token names a coding the codec does not
	// implement.
	UnsupportedCoding struct {
		Name string
	}

	// ReadLimitExceeded is returned when raw wire bytes read for a body
	// exceed the soft `limit` cap, distinct from EntityTooLarge which is
	// raised once a parser has materialized decoded bytes. Callers that
	// want to retry with a larger cap on a fresh connection can match on
	// this kind specifically.
	ReadLimitExceeded struct {
		Limit int64
	}

	// HeaderNotFound is a local, non-fatal error from a typed header
	// accessor's `_or_throw` variant when the header is absent.
	HeaderNotFound struct {
		Name string
	}

	// HeaderMalformed is a local, non-fatal error from a typed header
	// accessor when the header is present but does not parse.
	HeaderMalformed struct {
		Name string
	}

	// InvalidTarget is a client pre-flight error: the request target is
	// not absolute-form with scheme http or https.
	InvalidTarget struct {
		Target string
	}

	// InvalidContentLength is a client pre-flight error: a negative or
	// otherwise invalid Content-Length was set on an outgoing request.
	InvalidContentLength struct {
		Value string
	}

	// InvalidMultipartStart is returned when the multipart preamble line
	// is not the expected `--boundary`.
	InvalidMultipartStart struct {
		Got string
	}

	// TruncatedPart is returned when EOF arrives before a part's
	// terminating boundary line.
	TruncatedPart struct{}
)

func (e MalformedStartLine) Error() string { return fmt.Sprintf("malformed start line: %q", e.Line) }
func (e MalformedHeader) Error() string    { return fmt.Sprintf("malformed header line: %q", e.Line) }
func (e LineTooLong) Error() string        { return fmt.Sprintf("wire line exceeds %d bytes", e.Max) }
func (e TooManyHeaders) Error() string     { return fmt.Sprintf("message has more than %d headers", e.Max) }
func (e MalformedChunk) Error() string     { return fmt.Sprintf("malformed chunk: %s", e.Detail) }
func (e ChunkTooLarge) Error() string      { return fmt.Sprintf("chunk exceeds max size of %d bytes", e.Max) }
func (e EntityTooLarge) Error() string     { return fmt.Sprintf("decoded entity exceeds %d bytes", e.Max) }
func (e UnsupportedCoding) Error() string  { return fmt.Sprintf("unsupported coding %q", e.Name) }
func (e ReadLimitExceeded) Error() string  { return fmt.Sprintf("read limit of %d bytes exceeded", e.Limit) }
func (e HeaderNotFound) Error() string     { return fmt.Sprintf("header %q not found", e.Name) }
func (e HeaderMalformed) Error() string    { return fmt.Sprintf("header %q is malformed", e.Name) }
func (e InvalidTarget) Error() string      { return fmt.Sprintf("invalid request target %q", e.Target) }
func (e InvalidContentLength) Error() string {
	return fmt.Sprintf("invalid Content-Length %q", e.Value)
}
func (e InvalidMultipartStart) Error() string {
	return fmt.Sprintf("invalid multipart preamble: %q", e.Got)
}
func (e TruncatedPart) Error() string { return "multipart part truncated before boundary" }

// Wrap attaches a stack-carrying cause to a structural error kind, for the
// cases where the wire error was triggered by an underlying I/O failure.
// errors.As on the result finds kind; errors.Is/As also reach err.
func Wrap(err error, kind error) error {
	if err == nil {
		return kind
	}
	return errors.WithStack(kindError{kind: kind, cause: err})
}

// kindError pairs a structural error kind with the error that caused it.
type kindError struct{ kind, cause error }

func (k kindError) Error() string   { return k.kind.Error() + ": " + k.cause.Error() }
func (k kindError) Unwrap() []error { return []error{k.kind, k.cause} }
