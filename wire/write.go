/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package wire

import (
	"io"
	"strconv"

	"github.com/kiwih/httpwire/header"
	"github.com/kiwih/httpwire/message"
)

// WriteRequestHead serializes the request-line and header block of req,
// in field insertion order, terminated by the blank line. It does not
// write the body.
func WriteRequestHead(w io.Writer, req message.Request) error {
	target := req.Target()
	if target == "" {
		target = "/"
	}
	if _, err := io.WriteString(w, string(req.Method())+" "+target+" "+req.Version().String()+"\r\n"); err != nil {
		return err
	}
	return writeHeaderBlock(w, req.Header())
}

// WriteResponseHead serializes the status-line and header block of resp,
// in field insertion order, terminated by the blank line. It does not
// write the body.
func WriteResponseHead(w io.Writer, resp message.Response) error {
	reason := resp.Reason()
	line := resp.Version().String() + " " + strconv.Itoa(resp.Status())
	if reason != "" {
		line += " " + reason
	}
	if _, err := io.WriteString(w, line+"\r\n"); err != nil {
		return err
	}
	return writeHeaderBlock(w, resp.Header())
}

// writeHeaderBlock writes each field as `Name: Value\r\n`, in the header's
// insertion order, then the terminating blank line — the order-preserving
// half of spec.md §8's round-trip property.
func writeHeaderBlock(w io.Writer, h header.Header) error {
	for _, f := range h.Fields() {
		if _, err := io.WriteString(w, f.Name+": "+f.Value+"\r\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}
