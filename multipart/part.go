/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package multipart

import (
	"io"
	"strings"

	"github.com/kiwih/httpwire/grammar"
	"github.com/kiwih/httpwire/header"
)

// Part is one section of a multipart body: its own header block, then a
// body stream delimited by the next boundary line.
type Part struct {
	header header.Header
	reader *Reader

	n        int   // unread bytes identified as body so far
	total    int64 // total bytes returned by Read so far
	readErr  error // sticky error from br.Peek while scanning for the boundary
	err      error // terminal error/io.EOF to return once n data bytes are drained
}

// Header returns the part's own header block.
func (p *Part) Header() header.Header { return p.header }

// FormName returns the name parameter of a form-data Content-Disposition,
// or "" if the part isn't form-data.
func (p *Part) FormName() string {
	disp, params := p.contentDisposition()
	if disp != "form-data" {
		return ""
	}
	v, _ := grammar.ParamValue(params, "name")
	return v
}

// FileName returns the filename parameter of the part's Content-Disposition.
func (p *Part) FileName() string {
	_, params := p.contentDisposition()
	v, _ := grammar.ParamValue(params, "filename")
	return v
}

func (p *Part) contentDisposition() (string, []grammar.Param) {
	v := p.header.Value(header.ContentDisposition)
	semi := strings.IndexByte(v, ';')
	if semi < 0 {
		return strings.TrimSpace(v), nil
	}
	return strings.TrimSpace(v[:semi]), grammar.ParseHeaderParams(v[semi+1:])
}

// Read reads the part's body, scanning the underlying buffered reader for
// the next boundary line as it goes, per scanUntilBoundary.
func (p *Part) Read(d []byte) (n int, err error) {
	br := p.reader.br
	for p.n == 0 && p.err == nil {
		peek, _ := br.Peek(br.Buffered())
		p.n, p.err = scanUntilBoundary(peek, p.reader.dashBoundary, p.reader.nlDashBoundary, p.total, p.readErr)
		if p.n == 0 && p.err == nil {
			_, p.readErr = br.Peek(len(peek) + 1)
			if p.readErr == io.EOF {
				p.readErr = io.ErrUnexpectedEOF
			}
		}
	}
	if p.n == 0 {
		return 0, p.err
	}
	n = len(d)
	if n > p.n {
		n = p.n
	}
	n, _ = br.Read(d[:n])
	p.total += int64(n)
	p.n -= n
	if p.n == 0 {
		return n, p.err
	}
	return n, nil
}

// Close discards any unread body bytes of the part.
func (p *Part) Close() error {
	_, err := io.Copy(io.Discard, p)
	return err
}
