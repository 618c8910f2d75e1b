/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package grammar

import "strings"

// ParseList splits input on sep (default ',') honoring RFC 7230 quoted
// strings, so a separator inside DQUOTE is not treated as a boundary.
// Empty elements (consecutive separators, or leading/trailing OWS-only
// segments) are skipped.
func ParseList(input string, sep byte) []string {
	if sep == 0 {
		sep = ','
	}
	var out []string
	var cur strings.Builder
	inQuotes := false
	escaped := false
	flush := func() {
		elem := TrimOWS(cur.String())
		if elem != "" {
			out = append(out, elem)
		}
		cur.Reset()
	}
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case inQuotes && c == '\\':
			cur.WriteByte(c)
			escaped = true
		case c == '"':
			inQuotes = !inQuotes
			cur.WriteByte(c)
		case c == sep && !inQuotes:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}

// UnquoteIfQuoted strips a surrounding RFC 7230 quoted-string and resolves
// its backslash escapes. Input that is not a quoted-string is returned
// unchanged.
func UnquoteIfQuoted(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}
