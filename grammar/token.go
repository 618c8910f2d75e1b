/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package grammar implements the RFC 7230 ABNF primitives shared by the
// header model, the wire codec and the multipart codec: tokens,
// quoted-strings, comma-separated lists, and header/auth parameter lists.
package grammar

import (
	"strings"

	"golang.org/x/net/http/httpguts"
)

const toLower = 'a' - 'A'

// isTokenTable is a copy of the RFC 7230 tchar class:
//
//	tchar = "!" / "#" / "$" / "%" / "&" / "'" / "*" / "+" / "-" / "." /
//	        "^" / "_" / "`" / "|" / "~" / DIGIT / ALPHA
var isTokenTable = [127]bool{
	'!': true, '#': true, '$': true, '%': true, '&': true, '\'': true,
	'*': true, '+': true, '-': true, '.': true, '^': true, '_': true,
	'`': true, '|': true, '~': true,
}

func init() {
	for c := '0'; c <= '9'; c++ {
		isTokenTable[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		isTokenTable[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		isTokenTable[c] = true
	}
}

// IsToken reports whether s is a non-empty RFC 7230 token.
func IsToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if int(b) >= len(isTokenTable) || !isTokenTable[b] {
			return false
		}
	}
	return true
}

// QuoteIfNeeded returns s verbatim if it is already a token, otherwise it
// returns s as an RFC 7230 quoted-string with internal DQUOTE and backslash
// escaped.
func QuoteIfNeeded(s string) string {
	if IsToken(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

// ValidHeaderFieldName reports whether name is a valid RFC 7230 field-name.
func ValidHeaderFieldName(name string) bool {
	return httpguts.ValidHeaderFieldName(name)
}

// ValidHeaderFieldValue reports whether value is a valid RFC 7230
// field-value: no CR/LF except the permitted trailing OWS, which callers
// must already have trimmed.
func ValidHeaderFieldValue(value string) bool {
	return httpguts.ValidHeaderFieldValue(value)
}

// CanonicalKey canonicalizes a header field-name the way it is emitted on
// the wire: first letter and the letter after each '-' upper-cased,
// everything else lower-cased. Non-token input is returned unchanged.
func CanonicalKey(s string) string {
	if !IsToken(s) {
		return s
	}
	b := []byte(s)
	upper := true
	for i, c := range b {
		switch {
		case upper && 'a' <= c && c <= 'z':
			b[i] = c - toLower
		case !upper && 'A' <= c && c <= 'Z':
			b[i] = c + toLower
		}
		upper = b[i] == '-'
	}
	return string(b)
}

// TrimOWS trims leading/trailing optional whitespace (SP / HTAB).
func TrimOWS(s string) string {
	for len(s) > 0 && isOWS(s[0]) {
		s = s[1:]
	}
	for len(s) > 0 && isOWS(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	return s
}

func isOWS(b byte) bool { return b == ' ' || b == '\t' }

// TokenEqual reports whether t1 and t2 are equal under Unicode case
// folding and are either both valid tokens or both not, so a token never
// matches a non-token string that merely folds to it.
func TokenEqual(t1, t2 string) bool {
	return strings.EqualFold(t1, t2) && IsToken(t1) == IsToken(t2)
}

// ContainsToken reports whether the comma-separated list value v contains
// token, ASCII case-insensitively, honoring OWS around each element.
func ContainsToken(v, token string) bool {
	for _, elem := range strings.Split(v, ",") {
		if strings.EqualFold(TrimOWS(elem), token) {
			return true
		}
	}
	return false
}
