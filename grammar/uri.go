/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package grammar

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// IsOriginForm reports whether target is a valid origin-form request
// target: it must begin with '/'.
func IsOriginForm(target string) bool {
	return strings.HasPrefix(target, "/")
}

// IsAbsoluteForm reports whether target parses as an absolute URI with an
// http or https scheme and a non-empty host — the shape ClientEngine
// requires of a request target before it will open a connection.
func IsAbsoluteForm(target string) (*url.URL, bool) {
	u, err := url.Parse(target)
	if err != nil || !u.IsAbs() {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Host == "" {
		return nil, false
	}
	return u, true
}

// OriginForm renders u's path and query as the origin-form request target
// (the form ClientEngine rewrites an outgoing request's target to once the
// Host is extracted).
func OriginForm(u *url.URL) string {
	r := u.EscapedPath()
	if r == "" {
		r = "/"
	}
	if u.ForceQuery || u.RawQuery != "" {
		r += "?" + u.RawQuery
	}
	return r
}

// CleanHost normalizes a request Host header value: it strips anything
// trailing a stray '/' or space, removes an IPv6 zone identifier (RFC
// 6874), and Punycode-encodes non-ASCII labels.
func CleanHost(in string) string {
	if i := strings.IndexAny(in, " /"); i != -1 {
		in = in[:i]
	}
	host, port, err := net.SplitHostPort(in)
	if err != nil {
		a, perr := idnaASCII(in)
		if perr != nil {
			return in
		}
		return removeZone(a)
	}
	a, perr := idnaASCII(host)
	if perr != nil {
		return removeZone(in)
	}
	return removeZone(net.JoinHostPort(a, port))
}

func idnaASCII(v string) (string, error) {
	for i := 0; i < len(v); i++ {
		if v[i] >= 0x80 {
			return idna.Lookup.ToASCII(v)
		}
	}
	return v, nil
}

func removeZone(host string) string {
	if i := strings.LastIndexByte(host, '%'); i != -1 {
		if strings.LastIndexByte(host, ':') > i {
			return host
		}
		return host[:i]
	}
	return host
}

// DefaultPort returns the default TCP port for an http/https scheme.
func DefaultPort(scheme string) string {
	if scheme == "https" {
		return "443"
	}
	return "80"
}
