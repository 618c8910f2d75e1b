/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package header implements the Message header model: an ordered,
// duplicate-preserving sequence of name/value fields with case-insensitive
// lookup and copy-on-write builders.
//
// Header is deliberately a slice, not a map, because spec parse/emit
// round-tripping requires whole-message insertion order to survive across
// differently-named headers, which a map keyed by canonical name cannot
// preserve.
package header

import (
	"strconv"
	"time"

	"github.com/kiwih/httpwire/grammar"
	"github.com/kiwih/httpwire/werr"
)

// Field is one name/value header pair. Name is stored in canonical form
// for emission; matching against it is always case-insensitive.
type Field struct {
	Name  string
	Value string
}

// Header is an immutable, ordered sequence of Fields. The zero value is an
// empty header. All mutating-looking methods return a new Header; none
// modify the receiver's backing array in place.
type Header struct {
	fields []Field
}

// New builds a Header from the given fields, in order.
func New(fields ...Field) Header {
	h := Header{}
	return h.Add(fields...)
}

// NewField constructs a Field from a string value.
func NewField(name, value string) Field { return Field{Name: grammar.CanonicalKey(name), Value: value} }

// IntField constructs a Field whose value is the decimal rendering of n.
func IntField(name string, n int) Field {
	return NewField(name, strconv.Itoa(n))
}

// LongField constructs a Field whose value is the decimal rendering of n.
func LongField(name string, n int64) Field {
	return NewField(name, strconv.FormatInt(n, 10))
}

// TimeField constructs a Field whose value is t rendered as RFC 1123 with
// a GMT timezone, per spec.md §6.
func TimeField(name string, t time.Time) Field {
	return NewField(name, t.UTC().Format(TimeFormat))
}

// TimeFormat is the RFC 1123 rendering used for Date and friends.
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

var parseTimeFormats = []string{TimeFormat, time.RFC1123, time.RFC850, time.ANSIC}

// ParseTime parses an RFC 1123 (or RFC 850 / ANSIC, tolerated on input per
// RFC 7231 §7.1.1.1) header time value.
func ParseTime(v string) (time.Time, error) {
	var lastErr error
	for _, f := range parseTimeFormats {
		if t, err := time.Parse(f, v); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

// Len reports the number of fields, including duplicates.
func (h Header) Len() int { return len(h.fields) }

// Fields returns the fields in insertion order. The returned slice must
// not be mutated by the caller.
func (h Header) Fields() []Field { return h.fields }

// Get returns the first field named name (case-insensitive), if any.
func (h Header) Get(name string) (Field, bool) {
	for _, f := range h.fields {
		if grammar.TokenEqual(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}

// Value is a convenience for Get(name) that returns "" when absent.
func (h Header) Value(name string) string {
	f, _ := h.Get(name)
	return f.Value
}

// Values returns all values for name, in order.
func (h Header) Values(name string) []string {
	var out []string
	for _, f := range h.fields {
		if grammar.TokenEqual(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Has reports whether any field named name is present.
func (h Header) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// With returns a new Header where every prior field named f.Name has been
// removed and f has been appended.
func (h Header) With(f Field) Header {
	out := make([]Field, 0, len(h.fields)+1)
	for _, existing := range h.fields {
		if !grammar.TokenEqual(existing.Name, f.Name) {
			out = append(out, existing)
		}
	}
	out = append(out, f)
	return Header{fields: out}
}

// Add appends fields without removing any existing field of the same name.
func (h Header) Add(fields ...Field) Header {
	out := make([]Field, 0, len(h.fields)+len(fields))
	out = append(out, h.fields...)
	out = append(out, fields...)
	return Header{fields: out}
}

// Without returns a new Header with every field whose name matches any of
// names (case-insensitive) removed.
func (h Header) Without(names ...string) Header {
	out := make([]Field, 0, len(h.fields))
	for _, f := range h.fields {
		skip := false
		for _, n := range names {
			if grammar.TokenEqual(f.Name, n) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, f)
		}
	}
	return Header{fields: out}
}

// Parse runs parse against the first value of name, returning
// werr.HeaderNotFound when absent and werr.HeaderMalformed wrapping parse's
// error when parse fails.
func Parse[T any](h Header, name string, parse func(string) (T, error)) (T, error) {
	var zero T
	f, ok := h.Get(name)
	if !ok {
		return zero, werr.HeaderNotFound{Name: name}
	}
	v, err := parse(f.Value)
	if err != nil {
		return zero, werr.Wrap(err, werr.HeaderMalformed{Name: name})
	}
	return v, nil
}

// ParseOr is Parse but returns def instead of an error when the header is
// absent; a present-but-malformed header still returns HeaderMalformed.
func ParseOr[T any](h Header, name string, def T, parse func(string) (T, error)) (T, error) {
	if !h.Has(name) {
		return def, nil
	}
	return Parse(h, name, parse)
}

// ContentLength parses the Content-Length header.
func (h Header) ContentLength() (int64, error) {
	return Parse(h, ContentLength, func(v string) (int64, error) {
		return strconv.ParseInt(grammar.TrimOWS(v), 10, 64)
	})
}

// Date parses the Date header.
func (h Header) Date() (time.Time, error) {
	return Parse(h, Date, ParseTime)
}

// Clone returns a Header sharing no backing array with h (defensive copy
// for callers that will subsequently build on top of it via a mutable
// intermediate).
func (h Header) Clone() Header {
	out := make([]Field, len(h.fields))
	copy(out, h.fields)
	return Header{fields: out}
}
