/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package entity implements Entity: the tagged union of body sources a
// Message can carry before it is framed onto the wire. This generalizes
// the teacher's several single-purpose body sources — the byte-slice
// body built by NewRequest (types_request.go), the os.File body served
// by filetransport's file_handler.go, and the io.Pipe-backed body
// filetransport's RoundTrip populates via newPopulateResponseWriter — into
// one sum type WireCodec and BodyDecoder can both reason about uniformly.
package entity

import (
	"io"
	"os"

	"github.com/kiwih/httpwire/query"
	"github.com/kiwih/httpwire/workerpool"
)

// Kind discriminates the Entity variants.
type Kind int

const (
	// KindEmpty carries no body at all.
	KindEmpty Kind = iota
	// KindBytes carries a fully materialized in-memory payload.
	KindBytes
	// KindFile streams from an *os.File, whose size is known from stat.
	KindFile
	// KindStream wraps an arbitrary io.Reader of unknown size.
	KindStream
	// KindWriter defers body production to a callback that writes into an
	// io.Pipe on a workerpool goroutine, the way filetransport's RoundTrip
	// runs ServeHTTP in a goroutine writing into a piped ResponseWriter.
	KindWriter
	// KindMultipart carries an ordered Multipart part sequence, encoded
	// lazily (on the same io.Pipe/workerpool machinery as KindWriter) the
	// first time its stream is opened.
	KindMultipart
)

// WriterFunc is the callback KindWriter entities run against the write
// side of an io.Pipe. Returning an error aborts the pipe with that error,
// surfacing it to the reader side.
type WriterFunc func(w io.Writer) error

// Entity is an immutable description of a message body source. The zero
// value is the empty entity.
type Entity struct {
	kind Kind

	bytes []byte

	file     *os.File
	fileSize int64

	stream     io.Reader
	streamSize int64 // -1 if unknown

	writerFn WriterFunc
	pool     *workerpool.Pool

	multipart Multipart
	boundary  string
}

// Empty is the canonical empty Entity.
var Empty = Entity{kind: KindEmpty}

// FromBytes wraps an in-memory payload. The slice is not copied; callers
// must not mutate it afterwards.
func FromBytes(b []byte) Entity {
	if len(b) == 0 {
		return Empty
	}
	return Entity{kind: KindBytes, bytes: b}
}

// FromString wraps a string payload as bytes.
func FromString(s string) Entity {
	return FromBytes([]byte(s))
}

// FromFile wraps an open *os.File. The caller remains responsible for
// closing f once the entity's stream has been fully read, mirroring the
// teacher's serveContent contract in filetransport.
func FromFile(f *os.File) (Entity, error) {
	fi, err := f.Stat()
	if err != nil {
		return Entity{}, err
	}
	return Entity{kind: KindFile, file: f, fileSize: fi.Size()}, nil
}

// FromStream wraps an arbitrary reader whose total size is not known
// ahead of time; size of -1 means unknown, any non-negative value is
// reported as the entity's known size.
func FromStream(r io.Reader, size int64) Entity {
	if size < 0 {
		size = -1
	}
	return Entity{kind: KindStream, stream: r, streamSize: size}
}

// FromQuery encodes q as an `application/x-www-form-urlencoded` byte
// payload, the representation a POST form body takes on the wire.
func FromQuery(q query.Values) Entity {
	return FromBytes([]byte(q.Encode()))
}

// FromWriter defers production of the body to fn, which runs on pool
// writing into the read side returned by OpenStream. If pool is nil, fn
// runs on a new goroutine of its own; no package-wide default pool is used. This is the generalized form of filetransport's
// goroutine-plus-io.Pipe RoundTrip pattern, usable for any outgoing body
// that is cheaper to stream than to buffer (e.g. an on-the-fly multipart
// encoding).
func FromWriter(fn WriterFunc, pool *workerpool.Pool) Entity {
	return Entity{kind: KindWriter, writerFn: fn, pool: pool}
}

// Kind reports which variant e is.
func (e Entity) Kind() Kind { return e.kind }

// KnownSize returns the entity's size and true if it can be determined
// without consuming the entity (KindEmpty, KindBytes, KindFile, or a
// KindStream constructed with a known size). KindWriter never has a known
// size: the callback may write an arbitrary amount.
func (e Entity) KnownSize() (int64, bool) {
	switch e.kind {
	case KindEmpty:
		return 0, true
	case KindBytes:
		return int64(len(e.bytes)), true
	case KindFile:
		return e.fileSize, true
	case KindStream:
		if e.streamSize >= 0 {
			return e.streamSize, true
		}
	}
	return 0, false
}

// IsKnownEmpty reports whether e is certain to produce zero body bytes,
// the distinction WireCodec needs to decide whether to omit a body
// entirely rather than emit a zero-length Content-Length framing.
func (e Entity) IsKnownEmpty() bool {
	size, known := e.KnownSize()
	return known && size == 0
}

// OpenStream returns a reader over the entity's bytes. For KindFile the
// returned reader seeks to the start of the file first, so the same
// Entity can be opened more than once (e.g. on a retried request).
func (e Entity) OpenStream() (io.ReadCloser, error) {
	switch e.kind {
	case KindEmpty:
		return io.NopCloser(io.LimitReader(nil, 0)), nil
	case KindBytes:
		return io.NopCloser(newByteReader(e.bytes)), nil
	case KindFile:
		if _, err := e.file.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return noopCloseFile{e.file}, nil
	case KindStream:
		if rc, ok := e.stream.(io.ReadCloser); ok {
			return rc, nil
		}
		return io.NopCloser(e.stream), nil
	case KindWriter:
		return e.openPipe(), nil
	case KindMultipart:
		return e.openMultipartPipe(), nil
	default:
		return io.NopCloser(io.LimitReader(nil, 0)), nil
	}
}

// FilePath returns the path of the underlying *os.File plus true, for a
// KindFile entity backed by an on-disk file (e.g. a staged multipart
// upload a BodyParser spilled to disk); false for every other kind.
func (e Entity) FilePath() (string, bool) {
	if e.kind != KindFile {
		return "", false
	}
	return e.file.Name(), true
}

// closeAndRemoveFile closes and deletes the underlying file of a KindFile
// entity; a no-op for every other kind. Used by Multipart.RemoveAll to
// clean up file parts a BodyParser staged to disk during decoding.
func (e Entity) closeAndRemoveFile() {
	if e.kind != KindFile {
		return
	}
	name := e.file.Name()
	e.file.Close()
	os.Remove(name)
}

// noopCloseFile lets OpenStream hand back *os.File without closing it on
// Close: the caller owns the file's lifetime per FromFile's contract.
type noopCloseFile struct{ f *os.File }

func (n noopCloseFile) Read(p []byte) (int, error) { return n.f.Read(p) }
func (n noopCloseFile) Close() error                { return nil }

func (e Entity) openPipe() io.ReadCloser {
	pr, pw := io.Pipe()
	run := func() {
		err := e.writerFn(pw)
		pw.CloseWithError(err)
	}
	if e.pool != nil {
		e.pool.Submit(run)
	} else {
		go run()
	}
	return pr
}

func newByteReader(b []byte) io.Reader {
	return &byteReader{b: b}
}

type byteReader struct {
	b []byte
	i int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.i >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.i:])
	r.i += n
	return n, nil
}
