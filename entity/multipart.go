/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package entity

import (
	"io"

	"github.com/kiwih/httpwire/multipart"
	"github.com/kiwih/httpwire/workerpool"
)

// Part is the tagged union a Multipart carries: either a TextPart or a
// FilePart, in the order they appear (and will be emitted) on the wire.
type Part interface {
	partName() string
}

// TextPart is a plain `name=value` multipart/form-data field.
type TextPart struct {
	Name  string
	Value string
}

func (t TextPart) partName() string { return t.Name }

// FilePart is a file field: its disposition always carries both `name=`
// and `filename=`, per the Part invariant spec.md §3 states for the
// Multipart data model. Content is itself an Entity (KindBytes for a
// small in-memory upload, KindFile for one spilled to disk) so a FilePart
// read off the wire and one built by a caller share the same shape.
type FilePart struct {
	Name      string
	Filename  string
	MediaType string
	Content   Entity
}

func (f FilePart) partName() string { return f.Name }

// Multipart is an ordered sequence of multipart/form-data parts, the
// Entity payload FromMultipart wraps and a BodyParser returns after
// decoding an incoming multipart/form-data body. Part order is
// preserved in both directions.
type Multipart struct {
	Parts []Part
}

// Value returns the first TextPart's value named name, if any.
func (m Multipart) Value(name string) (string, bool) {
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok && tp.Name == name {
			return tp.Value, true
		}
	}
	return "", false
}

// File returns the first FilePart named name, if any.
func (m Multipart) File(name string) (FilePart, bool) {
	for _, p := range m.Parts {
		if fp, ok := p.(FilePart); ok && fp.Name == name {
			return fp, true
		}
	}
	return FilePart{}, false
}

// RemoveAll closes and deletes every FilePart's temp file this Multipart
// staged to disk, mirroring the teacher's mime.Form.RemoveAll cleanup
// step. It is safe to call on a Multipart whose FileParts are all
// in-memory (KindBytes content): closeAndRemoveFile is then a no-op.
func (m Multipart) RemoveAll() {
	for _, p := range m.Parts {
		if fp, ok := p.(FilePart); ok {
			fp.Content.closeAndRemoveFile()
		}
	}
}

// FromMultipart wraps mp as a KindMultipart Entity that encodes itself
// under boundary the first time its stream is opened, running the
// encoder on pool (or a bare goroutine if pool is nil) the same way
// FromWriter defers a callback onto an io.Pipe.
func FromMultipart(mp Multipart, boundary string, pool *workerpool.Pool) Entity {
	return Entity{kind: KindMultipart, multipart: mp, boundary: boundary, pool: pool}
}

// Boundary returns the entity's multipart boundary and true, for a
// KindMultipart entity; false otherwise.
func (e Entity) Boundary() (string, bool) {
	if e.kind != KindMultipart {
		return "", false
	}
	return e.boundary, true
}

// ContentType returns the `multipart/form-data; boundary=...` value a
// KindMultipart entity's outgoing Content-Type header must carry; false
// for every other kind.
func (e Entity) ContentType() (string, bool) {
	boundary, ok := e.Boundary()
	if !ok {
		return "", false
	}
	return "multipart/form-data; boundary=" + boundary, true
}

func (e Entity) openMultipartPipe() io.ReadCloser {
	pr, pw := io.Pipe()
	run := func() {
		w := multipart.NewWriter(pw)
		err := w.SetBoundary(e.boundary)
		if err == nil {
			err = encodeMultipart(w, e.multipart)
		}
		if err == nil {
			err = w.Close()
		}
		pw.CloseWithError(err)
	}
	if e.pool != nil {
		e.pool.Submit(run)
	} else {
		go run()
	}
	return pr
}

func encodeMultipart(w *multipart.Writer, mp Multipart) error {
	for _, part := range mp.Parts {
		switch p := part.(type) {
		case TextPart:
			if err := w.WriteField(p.Name, p.Value); err != nil {
				return err
			}
		case FilePart:
			dst, err := w.CreateFormFileWithType(p.Name, p.Filename, p.MediaType)
			if err != nil {
				return err
			}
			src, err := p.Content.OpenStream()
			if err != nil {
				return err
			}
			_, err = io.Copy(dst, src)
			src.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}
