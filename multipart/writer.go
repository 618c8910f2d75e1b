/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package multipart

import (
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/kiwih/httpwire/header"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// Writer builds a multipart/form-data body one part at a time.
type Writer struct {
	w        io.Writer
	boundary string
	lastpart *partWriter
}

// NewWriter returns a Writer with a random boundary (a UUID rather than
// the teacher's crypto/rand hex string — both are unguessable, and
// google/uuid is already this module's source of random identifiers
// elsewhere), writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, boundary: uuid.NewString()}
}

// Boundary returns the writer's boundary string.
func (w *Writer) Boundary() string { return w.boundary }

// SetBoundary overrides the default boundary. It must be called before
// any part is created.
func (w *Writer) SetBoundary(boundary string) error {
	if w.lastpart != nil {
		return errors.New("multipart: SetBoundary called after write")
	}
	if len(boundary) < 1 || len(boundary) > 70 {
		return errors.New("multipart: invalid boundary length")
	}
	end := len(boundary) - 1
	for i, b := range boundary {
		if 'A' <= b && b <= 'Z' || 'a' <= b && b <= 'z' || '0' <= b && b <= '9' {
			continue
		}
		switch b {
		case '\'', '(', ')', '+', '_', ',', '-', '.', '/', ':', '=', '?':
			continue
		case ' ':
			if i != end {
				continue
			}
		}
		return errors.New("multipart: invalid boundary character")
	}
	w.boundary = boundary
	return nil
}

// FormDataContentType returns the Content-Type header value for this
// writer's boundary.
func (w *Writer) FormDataContentType() string {
	return "multipart/form-data; boundary=" + w.boundary
}

type partWriter struct {
	w *Writer
}

func (p *partWriter) Write(b []byte) (int, error) { return p.w.w.Write(b) }

func (p *partWriter) close() error { return nil }

// CreatePart starts a new part with the given header, returning a Writer
// the part's body should be written to.
func (w *Writer) CreatePart(h header.Header) (io.Writer, error) {
	if w.lastpart != nil {
		if err := w.lastpart.close(); err != nil {
			return nil, err
		}
	}
	var prefix string
	if w.lastpart != nil {
		prefix = "\r\n--" + w.boundary + "\r\n"
	} else {
		prefix = "--" + w.boundary + "\r\n"
	}
	if _, err := io.WriteString(w.w, prefix); err != nil {
		return nil, err
	}
	for _, f := range h.Fields() {
		if _, err := io.WriteString(w.w, f.Name+": "+f.Value+"\r\n"); err != nil {
			return nil, err
		}
	}
	if _, err := io.WriteString(w.w, "\r\n"); err != nil {
		return nil, err
	}
	p := &partWriter{w: w}
	w.lastpart = p
	return p, nil
}

// CreateFormField starts a part carrying a plain form field.
func (w *Writer) CreateFormField(fieldname string) (io.Writer, error) {
	h := header.New(header.NewField(header.ContentDisposition,
		`form-data; name="`+escapeQuotes(fieldname)+`"`))
	return w.CreatePart(h)
}

// CreateFormFile starts a part carrying a file field with the default
// `application/octet-stream` media type.
func (w *Writer) CreateFormFile(fieldname, filename string) (io.Writer, error) {
	return w.CreateFormFileWithType(fieldname, filename, "")
}

// CreateFormFileWithType starts a part carrying a file field, tagged with
// mediaType (or `application/octet-stream` if mediaType is empty), per the
// Content-Type a Multipart entity's FilePart.MediaType carries onto the
// wire.
func (w *Writer) CreateFormFileWithType(fieldname, filename, mediaType string) (io.Writer, error) {
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	h := header.New(
		header.NewField(header.ContentDisposition,
			`form-data; name="`+escapeQuotes(fieldname)+`"; filename="`+escapeQuotes(filename)+`"`),
		header.NewField(header.ContentType, mediaType),
	)
	return w.CreatePart(h)
}

// WriteField writes a complete form field part in one call.
func (w *Writer) WriteField(fieldname, value string) error {
	p, err := w.CreateFormField(fieldname)
	if err != nil {
		return err
	}
	_, err = p.Write([]byte(value))
	return err
}

// Close writes the terminating boundary line.
func (w *Writer) Close() error {
	if w.lastpart != nil {
		if err := w.lastpart.close(); err != nil {
			return err
		}
		w.lastpart = nil
	}
	_, err := io.WriteString(w.w, "\r\n--"+w.boundary+"--\r\n")
	return err
}

