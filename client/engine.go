/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package client implements ClientEngine: sending a single
// message.Request over a single connection and handing the caller its
// message.Response plus a decoded body stream. It is grounded on the
// teacher's Transport.RoundTrip (src/http/transport.go), persistConn's
// writeLoop/readResponse/waitForContinue (src/http/tport/persist_conn.go)
// and Request.write's Host/User-Agent/body-framing shaping
// (src/http/request.go), generalized onto this module's immutable
// Request/Response and deliberately stripped of the teacher's idle
// connection pool: each Send dials, sends one request, reads one
// response, and closes, per spec.md's connection-per-call scope.
package client

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/kiwih/httpwire/body"
	"github.com/kiwih/httpwire/entity"
	"github.com/kiwih/httpwire/grammar"
	"github.com/kiwih/httpwire/header"
	"github.com/kiwih/httpwire/internal/logging"
	"github.com/kiwih/httpwire/message"
	"github.com/kiwih/httpwire/stream"
	"github.com/kiwih/httpwire/werr"
	"github.com/kiwih/httpwire/wire"
)

// Dialer opens the transport connection for a request. Tests substitute
// net.Pipe-backed dialers; production code defaults to DialContext.
type Dialer func(ctx context.Context, network, addr string) (net.Conn, error)

// Config shapes Engine's behavior. DialTimeout and ExpectContinueTimeout
// default to a teacher-grounded value (ExpectContinueTimeout mirrors
// Transport.ExpectContinueTimeout's role in persist_conn.go's
// waitForContinue) when left zero; a zero ReadHeaderTimeout sets no read
// deadline at all.
type Config struct {
	Dialer                Dialer
	DialTimeout           time.Duration
	ReadHeaderTimeout      time.Duration
	ExpectContinueTimeout time.Duration
	UserAgent             string
	WireOptions           wire.Options
	BodyLimits            body.Limits
}

func (c Config) dialTimeout() time.Duration {
	if c.DialTimeout > 0 {
		return c.DialTimeout
	}
	return 30 * time.Second
}

func (c Config) expectContinueTimeout() time.Duration {
	if c.ExpectContinueTimeout > 0 {
		return c.ExpectContinueTimeout
	}
	return time.Second
}

func (c Config) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return "httpwire/1.1"
}

// Engine sends requests over individual connections.
type Engine struct {
	cfg Config
}

// New builds an Engine from cfg.
func New(cfg Config) *Engine {
	if cfg.Dialer == nil {
		var d net.Dialer
		cfg.Dialer = d.DialContext
	}
	return &Engine{cfg: cfg}
}

// Handler is invoked with the response head and its still-open body
// stream once the response has been read. The body must be fully drained
// or the caller must tolerate Engine closing the connection with it
// partially read.
type Handler func(resp message.Response, b *body.Reader) error

// Send dials req's target, writes the request, reads the response, and
// invokes handler with it. The connection is always closed before Send
// returns, regardless of outcome.
func (e *Engine) Send(ctx context.Context, req message.Request, handler Handler) error {
	host, addr, req, err := e.resolveTarget(req)
	if err != nil {
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, e.cfg.dialTimeout())
	conn, err := e.cfg.Dialer(dialCtx, "tcp", addr)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close()

	req = e.shapeHeaders(req, host)

	br := bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)

	continueExpected := strings.EqualFold(req.Header().Value(header.Expect), "100-continue")

	if err := wire.WriteRequestHead(bw, req); err != nil {
		return err
	}

	sendBody := true
	if continueExpected {
		if err := bw.Flush(); err != nil {
			return err
		}
		sendBody = e.waitForContinue(conn, br)
	}

	if sendBody {
		if err := e.writeBody(bw, req.Body()); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	if e.cfg.ReadHeaderTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(e.cfg.ReadHeaderTimeout))
	}
	resp, err := wire.ReadResponseHead(br, e.cfg.WireOptions)
	if err != nil {
		return err
	}
	conn.SetReadDeadline(time.Time{})

	if resp.Status() == 100 {
		resp, err = wire.ReadResponseHead(br, e.cfg.WireOptions)
		if err != nil {
			return err
		}
	}

	plan, err := body.PlanResponse(resp.Status(), req.Method(), resp.Header())
	if err != nil {
		return err
	}
	bodyReader, err := body.Open(br, plan, e.cfg.BodyLimits)
	if err != nil {
		return err
	}

	return handler(resp, bodyReader)
}

// resolveTarget validates req's request-target, per grammar.IsOriginForm/
// IsAbsoluteForm, and returns the Host header value plus the dial address,
// grounded on the teacher's cleanHost/DefaultPort in url/url.go.
func (e *Engine) resolveTarget(req message.Request) (host, addr string, out message.Request, err error) {
	target := req.Target()
	if u, ok := grammar.IsAbsoluteForm(target); ok {
		host = grammar.CleanHost(u.Host)
		port := u.Port()
		if port == "" {
			port = grammar.DefaultPort(u.Scheme)
		}
		addr = net.JoinHostPort(grammar.CleanHost(u.Hostname()), port)
		out = req.WithTarget(grammar.OriginForm(u))
		return host, addr, out, nil
	}
	if grammar.IsOriginForm(target) {
		host = req.Header().Value(header.Host)
		if host == "" {
			return "", "", req, errors.New("httpwire: request has no Host header and an origin-form target")
		}
		addr = grammar.CleanHost(host)
		if !strings.Contains(addr, ":") {
			addr += ":80"
		}
		return host, addr, req, nil
	}
	return "", "", req, werr.InvalidTarget{Target: target}
}

// shapeHeaders fills in Host/User-Agent/Connection/body-framing headers
// the way Request.write does in request.go, before the request is
// serialized. Host and User-Agent are always recomputed from the resolved
// target and engine config, discarding whatever the caller set, since a
// stale Host (left over from a retry against a different target, say)
// must never be sent verbatim. Connection is rebuilt from scratch too:
// this engine never pools a connection, so "close" is asserted on every
// send regardless of what the caller asked for.
func (e *Engine) shapeHeaders(req message.Request, host string) message.Request {
	h := req.Header()
	h = h.With(header.NewField(header.Host, host))
	h = h.With(header.NewField(header.UserAgent, e.cfg.userAgent()))
	h = h.With(header.NewField(header.Connection, connectionValue(h)))

	size, known := req.Body().KnownSize()
	switch {
	case req.Body().IsKnownEmpty():
		h = h.Without(header.ContentLength, header.TransferEncoding)
	case known:
		h = h.With(header.LongField(header.ContentLength, size)).Without(header.TransferEncoding)
	default:
		h = h.With(header.NewField(header.TransferEncoding, header.TokenChunked)).Without(header.ContentLength)
	}
	return req.WithHeader(h)
}

// connectionValue rebuilds the Connection header value from h: caller-set
// tokens survive minus the reserved "close"/"keep-alive" ones (those are
// this engine's call, not the caller's), "TE" is appended if the request
// carries a TE header, and "close" is always appended last, since Send
// never pools the connection and every request is a last request.
func connectionValue(h header.Header) string {
	var tokens []string
	seen := make(map[string]bool)
	add := func(tok string) {
		key := strings.ToLower(tok)
		if seen[key] {
			return
		}
		seen[key] = true
		tokens = append(tokens, tok)
	}

	for _, tok := range grammar.ParseList(h.Value(header.Connection), ',') {
		switch strings.ToLower(tok) {
		case "close", "keep-alive":
			continue
		}
		add(tok)
	}
	if h.Has(header.TE) {
		add("TE")
	}
	add(header.TokenClose)
	return strings.Join(tokens, ", ")
}

// waitForContinue blocks until a 100-continue response arrives, the
// timeout elapses, or the connection fails, returning whether the body
// should still be sent — grounded on persistConn.waitForContinue's three-way
// select, simplified to a single connection with no shared continueCh.
func (e *Engine) waitForContinue(conn net.Conn, br *bufio.Reader) bool {
	conn.SetReadDeadline(time.Now().Add(e.cfg.expectContinueTimeout()))
	defer conn.SetReadDeadline(time.Time{})

	_, err := br.Peek(1)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			logging.Debugw("expect-continue timed out, sending body anyway")
			return true
		}
		return false
	}

	version, status, _, err := wire.ReadStatusLine(br, e.cfg.WireOptions)
	if err != nil {
		return false
	}
	if _, err := wire.ReadHeaders(br, e.cfg.WireOptions); err != nil {
		return false
	}
	_ = version
	return status != 417
}

// writeBody streams the body entity onto bw, chunk-encoding it when its
// size was not known ahead of time, grounded on chunk_writer.go's
// transferWriter.writeBody.
func (e *Engine) writeBody(bw *bufio.Writer, e2 entity.Entity) error {
	if e2.IsKnownEmpty() {
		return nil
	}
	src, err := e2.OpenStream()
	if err != nil {
		return err
	}
	defer src.Close()

	if _, known := e2.KnownSize(); known {
		_, err := stream.CopyBuffered(bw, src)
		return err
	}

	enc := stream.NewChunkedEncoder(bw)
	if _, err := stream.CopyBuffered(enc, src); err != nil {
		return err
	}
	return enc.Close()
}
