/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package grammar

import (
	"strings"
)

// Param is a single name/value pair as parsed from a parameter list,
// preserving insertion order.
type Param struct {
	Name  string
	Value string
}

// MalformedAuth is returned by ParseAuthParams when an element is not of
// the form `token = token|quoted-string` (a bare token is rejected too).
type MalformedAuth struct {
	Element string
}

func (e MalformedAuth) Error() string { return "malformed auth param: " + e.Element }

// ParseAuthParams splits input by comma, each element of the form
// `name = token|quoted-string`, and returns them in order. Unlike
// ParseHeaderParams, it fails hard on anything that doesn't match that
// grammar.
func ParseAuthParams(input string) ([]Param, error) {
	var out []Param
	for _, elem := range ParseList(input, ',') {
		eq := strings.IndexByte(elem, '=')
		if eq < 0 {
			return nil, MalformedAuth{elem}
		}
		name := TrimOWS(elem[:eq])
		rawValue := TrimOWS(elem[eq+1:])
		if name == "" || !IsToken(name) {
			return nil, MalformedAuth{elem}
		}
		if rawValue == "" || (!IsToken(rawValue) && !isQuotedString(rawValue)) {
			return nil, MalformedAuth{elem}
		}
		out = append(out, Param{Name: name, Value: UnquoteIfQuoted(rawValue)})
	}
	return out, nil
}

func isQuotedString(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// ParseHeaderParams splits a semicolon-separated parameter list (as found
// after a Content-Type or Content-Disposition's primary value) into
// ordered name/value pairs. Values may be a token, a quoted-string, or —
// tolerating the same ill-formed input the teacher repo's source accepted
// — a raw unquoted, non-token string. Names are matched case-insensitively
// by callers but the original casing is preserved in Param.Name so the
// value can be re-emitted as seen. A bare name with no `=` produces a
// Param with an empty Value; ParamValue reports it as present with an
// empty value, the same as an explicit empty quoted-string.
func ParseHeaderParams(input string) []Param {
	var out []Param
	for _, elem := range splitSemicolon(input) {
		elem = TrimOWS(elem)
		if elem == "" {
			continue
		}
		eq := strings.IndexByte(elem, '=')
		if eq < 0 {
			out = append(out, Param{Name: TrimOWS(elem)})
			continue
		}
		name := TrimOWS(elem[:eq])
		raw := TrimOWS(elem[eq+1:])
		out = append(out, Param{Name: name, Value: UnquoteIfQuoted(raw)})
	}
	return out
}

// splitSemicolon is ParseList specialized to ';', since header parameters
// use semicolons rather than commas while honoring the same quoted-string
// escaping rules.
func splitSemicolon(input string) []string {
	return ParseList(input, ';')
}

// ParamValue looks up name (case-insensitively) in an ordered Param list.
func ParamValue(params []Param, name string) (string, bool) {
	for _, p := range params {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}
