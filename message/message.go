/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package message defines the immutable Request/Response value types
// WireCodec parses into and serializes out of. The teacher's Request and
// Response (types_request.go, types_response.go) are long-lived mutable
// structs callers poke fields on directly; this package generalizes them
// into copy-on-write immutable values instead, since spec.md §8's
// round-trip property requires that parsing and re-emitting a message
// never silently reorders or loses a header, which is only safe to
// guarantee for a value nothing else can mutate out from under the codec.
package message

import (
	"fmt"

	"github.com/kiwih/httpwire/entity"
	"github.com/kiwih/httpwire/header"
)

// Method is an HTTP request method token.
type Method string

// Well-known methods.
const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodConnect Method = "CONNECT"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

// Version is an HTTP protocol version, e.g. {1, 1} for HTTP/1.1.
type Version struct {
	Major int
	Minor int
}

// String renders the version the way it appears in a start line.
func (v Version) String() string { return fmt.Sprintf("HTTP/%d.%d", v.Major, v.Minor) }

// AtLeast reports whether v is the same or a later version than other.
func (v Version) AtLeast(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor >= other.Minor
}

// HTTP10 and HTTP11 are the predefined versions; the wire codec parses any
// `HTTP/<major>.<minor>` and emits whatever version a message carries.
var (
	HTTP10 = Version{1, 0}
	HTTP11 = Version{1, 1}
)

// Request is an immutable HTTP request message: a method, a request
// target, a protocol version, an ordered header list, and a body entity.
// Every With*/Add*/Without* method returns a new Request; none mutate the
// receiver.
type Request struct {
	method  Method
	target  string
	version Version
	header  header.Header
	body    entity.Entity
}

// NewRequest builds a Request with the given method, request-target and
// version, and an empty body.
func NewRequest(method Method, target string, version Version) Request {
	return Request{method: method, target: target, version: version, body: entity.Empty}
}

func (r Request) Method() Method         { return r.method }
func (r Request) Target() string         { return r.target }
func (r Request) Version() Version       { return r.version }
func (r Request) Header() header.Header  { return r.header }
func (r Request) Body() entity.Entity    { return r.body }

// WithMethod returns a copy of r with a different method.
func (r Request) WithMethod(m Method) Request { r.method = m; return r }

// WithTarget returns a copy of r with a different request-target.
func (r Request) WithTarget(target string) Request { r.target = target; return r }

// WithVersion returns a copy of r with a different protocol version.
func (r Request) WithVersion(v Version) Request { r.version = v; return r }

// WithHeader returns a copy of r whose entire header list is replaced.
func (r Request) WithHeader(h header.Header) Request { r.header = h; return r }

// WithHeaderField returns a copy of r with f added/replacing any existing
// field of the same name, via header.Header.With's copy-on-write add.
func (r Request) WithHeaderField(f header.Field) Request { r.header = r.header.With(f); return r }

// AddHeaders returns a copy of r with fields appended (not deduplicated),
// matching header.Header.Add.
func (r Request) AddHeaders(fields ...header.Field) Request { r.header = r.header.Add(fields...); return r }

// WithoutHeaders returns a copy of r with every field named in names
// removed.
func (r Request) WithoutHeaders(names ...string) Request { r.header = r.header.Without(names...); return r }

// WithBody returns a copy of r carrying a different body entity.
func (r Request) WithBody(e entity.Entity) Request { r.body = e; return r }

// Response is an immutable HTTP response message: a protocol version, a
// status code and reason phrase, an ordered header list, and a body
// entity.
type Response struct {
	version Version
	status  int
	reason  string
	header  header.Header
	body    entity.Entity
}

// NewResponse builds a Response with the given version, status code and
// reason phrase, and an empty body.
func NewResponse(version Version, status int, reason string) Response {
	return Response{version: version, status: status, reason: reason, body: entity.Empty}
}

func (r Response) Version() Version      { return r.version }
func (r Response) Status() int           { return r.status }
func (r Response) Reason() string        { return r.reason }
func (r Response) Header() header.Header { return r.header }
func (r Response) Body() entity.Entity   { return r.body }

// WithVersion returns a copy of r with a different protocol version.
func (r Response) WithVersion(v Version) Response { r.version = v; return r }

// WithStatus returns a copy of r with a different status code and reason
// phrase.
func (r Response) WithStatus(code int, reason string) Response {
	r.status = code
	r.reason = reason
	return r
}

// WithHeader returns a copy of r whose entire header list is replaced.
func (r Response) WithHeader(h header.Header) Response { r.header = h; return r }

// WithHeaderField returns a copy of r with f added/replacing any existing
// field of the same name.
func (r Response) WithHeaderField(f header.Field) Response { r.header = r.header.With(f); return r }

// AddHeaders returns a copy of r with fields appended (not deduplicated).
func (r Response) AddHeaders(fields ...header.Field) Response { r.header = r.header.Add(fields...); return r }

// WithoutHeaders returns a copy of r with every field named in names
// removed.
func (r Response) WithoutHeaders(names ...string) Response { r.header = r.header.Without(names...); return r }

// WithBody returns a copy of r carrying a different body entity.
func (r Response) WithBody(e entity.Entity) Response { r.body = e; return r }

// IsInformational reports whether the status is in the 1xx range.
func (r Response) IsInformational() bool { return r.status >= 100 && r.status < 200 }

// BodyAllowed reports whether a response with this status is permitted to
// carry a body, per RFC 7230 §3.3: 1xx, 204 and 304 never do.
func (r Response) BodyAllowed() bool {
	switch {
	case r.status >= 100 && r.status < 200:
		return false
	case r.status == 204, r.status == 304:
		return false
	default:
		return true
	}
}
