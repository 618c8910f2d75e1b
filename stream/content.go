/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package stream

import (
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"

	"github.com/kiwih/httpwire/header"
	"github.com/kiwih/httpwire/werr"
)

// maxCodingDepth bounds how many nested codings ContentCodec will unwrap,
// defense in depth against a maliciously long Transfer-Encoding/
// Content-Encoding stack, per spec.md §4.4.
const maxCodingDepth = 6

// SupportedCodings lists the coding tokens ContentCodec recognizes.
// "chunked" is transfer-only: it is handled by ChunkedDecoder/Encoder, not
// by WrapReader/WrapWriter below, which only ever see content/compression
// codings.
var SupportedCodings = map[string]bool{
	header.TokenChunked:  true,
	header.TokenGzip:     true,
	header.TokenXGzip:    true,
	header.TokenDeflate:  true,
	header.TokenIdentity: true,
}

// ParseCodingList splits a Transfer-Encoding or Content-Encoding header
// value into its comma-separated coding tokens, validating each against
// SupportedCodings.
func ParseCodingList(value string) ([]string, error) {
	var out []string
	for _, tok := range strings.Split(value, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if !SupportedCodings[tok] {
			return nil, werr.UnsupportedCoding{Name: tok}
		}
		out = append(out, tok)
	}
	if len(out) > maxCodingDepth {
		return nil, werr.UnsupportedCoding{Name: "too many nested codings"}
	}
	return out, nil
}

// WrapReader unwraps codings right-to-left, as spec.md §4.4 and §4.6
// require (the last-applied coding was written first, so it must be
// removed first on read). "chunked" and "identity" are no-ops here:
// chunked framing is applied by ChunkedDecoder before WrapReader ever
// sees the stream, and identity means no transformation.
func WrapReader(r io.Reader, codings []string) (io.Reader, error) {
	if len(codings) > maxCodingDepth {
		return nil, werr.UnsupportedCoding{Name: "too many nested codings"}
	}
	for i := len(codings) - 1; i >= 0; i-- {
		switch codings[i] {
		case header.TokenChunked, header.TokenIdentity:
			continue
		case header.TokenGzip, header.TokenXGzip:
			gr, err := gzip.NewReader(r)
			if err != nil {
				return nil, werr.Wrap(err, werr.UnsupportedCoding{Name: codings[i]})
			}
			r = gr
		case header.TokenDeflate:
			r = flate.NewReader(r)
		default:
			return nil, werr.UnsupportedCoding{Name: codings[i]}
		}
	}
	return r, nil
}

// contentEncoder is the common surface of the coding writers WrapWriter
// produces: Write plus a Close that flushes the coding's trailer (gzip
// footer, flate final block) without closing the underlying writer.
type contentEncoder interface {
	io.WriteCloser
}

type passthroughEncoder struct{ w io.Writer }

func (p passthroughEncoder) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p passthroughEncoder) Close() error                { return nil }

// WrapWriter applies codings left-to-right on write (the order they will
// be listed in the outgoing header, first-applied innermost). The caller
// must Close the returned encoder to flush any coding trailer before
// closing/flushing the underlying writer.
func WrapWriter(w io.Writer, codings []string) (contentEncoder, error) {
	var enc contentEncoder = passthroughEncoder{w}
	// Built from the last-listed (outermost) coding inward, so the encoder
	// returned to the caller applies the first-listed coding first.
	for i := len(codings) - 1; i >= 0; i-- {
		coding := codings[i]
		switch coding {
		case header.TokenChunked, header.TokenIdentity:
			continue
		case header.TokenGzip, header.TokenXGzip:
			enc = gzip.NewWriter(chainWriter{enc})
		case header.TokenDeflate:
			fw, err := flate.NewWriter(chainWriter{enc}, flate.DefaultCompression)
			if err != nil {
				return nil, err
			}
			enc = fw
		default:
			return nil, werr.UnsupportedCoding{Name: coding}
		}
	}
	return enc, nil
}

// chainWriter adapts a contentEncoder (Write+Close) into a plain io.Writer
// so it can serve as the destination of the next coding layer without that
// layer accidentally calling Close on it early.
type chainWriter struct{ enc contentEncoder }

func (c chainWriter) Write(p []byte) (int, error) { return c.enc.Write(p) }
