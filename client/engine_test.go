/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package client

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwih/httpwire/body"
	"github.com/kiwih/httpwire/entity"
	"github.com/kiwih/httpwire/header"
	"github.com/kiwih/httpwire/message"
)

// pipeDialer returns a Dialer that hands back one side of a net.Pipe, with
// the other side driven by serve on a background goroutine — standing in
// for a real listener the way the teacher's transport tests stub RoundTrip.
func pipeDialer(serve func(net.Conn)) Dialer {
	client, server := net.Pipe()
	go serve(server)
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return client, nil
	}
}

func TestSendMinimalGet(t *testing.T) {
	engine := New(Config{Dialer: pipeDialer(func(conn net.Conn) {
		defer conn.Close()
		br := bufio.NewReader(conn)
		line, _ := br.ReadString('\n')
		assert.Equal(t, "GET /widgets HTTP/1.1\r\n", line)
		for {
			l, _ := br.ReadString('\n')
			if l == "\r\n" || l == "" {
				break
			}
		}
		io.WriteString(conn, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")
	})})

	req := message.NewRequest(message.MethodGet, "/widgets", message.HTTP11).
		WithHeaderField(header.NewField(header.Host, "example.com"))

	var gotBody string
	err := engine.Send(context.Background(), req, func(resp message.Response, b *body.Reader) error {
		assert.Equal(t, 200, resp.Status())
		out, err := io.ReadAll(b)
		gotBody = string(out)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", gotBody)
}

func TestSendChunkedResponse(t *testing.T) {
	engine := New(Config{Dialer: pipeDialer(func(conn net.Conn) {
		defer conn.Close()
		br := bufio.NewReader(conn)
		for {
			l, _ := br.ReadString('\n')
			if l == "\r\n" || l == "" {
				break
			}
		}
		io.WriteString(conn, "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n")
	})})

	req := message.NewRequest(message.MethodGet, "/stream", message.HTTP11).
		WithHeaderField(header.NewField(header.Host, "example.com"))

	var gotBody string
	err := engine.Send(context.Background(), req, func(resp message.Response, b *body.Reader) error {
		out, err := io.ReadAll(b)
		gotBody = string(out)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", gotBody)
}

func TestSendRequestBodyWithKnownLength(t *testing.T) {
	engine := New(Config{Dialer: pipeDialer(func(conn net.Conn) {
		defer conn.Close()
		br := bufio.NewReader(conn)
		reqLine, _ := br.ReadString('\n')
		assert.Equal(t, "POST /submit HTTP/1.1\r\n", reqLine)
		var contentLength string
		for {
			l, _ := br.ReadString('\n')
			if l == "\r\n" || l == "" {
				break
			}
			if strings.HasPrefix(strings.ToLower(l), "content-length:") {
				contentLength = l
			}
		}
		assert.Equal(t, "Content-Length: 4\r\n", contentLength)
		payload := make([]byte, 4)
		io.ReadFull(br, payload)
		assert.Equal(t, "body", string(payload))
		io.WriteString(conn, "HTTP/1.1 204 No Content\r\n\r\n")
	})})

	req := message.NewRequest(message.MethodPost, "/submit", message.HTTP11).
		WithHeaderField(header.NewField(header.Host, "example.com")).
		WithBody(entity.FromString("body"))

	err := engine.Send(context.Background(), req, func(resp message.Response, b *body.Reader) error {
		assert.Equal(t, 204, resp.Status())
		return nil
	})
	require.NoError(t, err)
}

func TestSendOverridesStaleHostAndConnection(t *testing.T) {
	engine := New(Config{Dialer: pipeDialer(func(conn net.Conn) {
		defer conn.Close()
		br := bufio.NewReader(conn)
		reqLine, _ := br.ReadString('\n')
		assert.Equal(t, "GET /widgets HTTP/1.1\r\n", reqLine)
		var host, connection string
		for {
			l, _ := br.ReadString('\n')
			if l == "\r\n" || l == "" {
				break
			}
			switch {
			case strings.HasPrefix(strings.ToLower(l), "host:"):
				host = l
			case strings.HasPrefix(strings.ToLower(l), "connection:"):
				connection = l
			}
		}
		assert.Equal(t, "Host: fresh.example.com\r\n", host)
		assert.Equal(t, "Connection: Upgrade, TE, close\r\n", connection)
		io.WriteString(conn, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")
	})})

	req := message.NewRequest(message.MethodGet, "http://fresh.example.com/widgets", message.HTTP11).
		WithHeaderField(header.NewField(header.Host, "stale.example.com")).
		WithHeaderField(header.NewField(header.Connection, "keep-alive, Upgrade")).
		WithHeaderField(header.NewField(header.TE, "trailers"))

	err := engine.Send(context.Background(), req, func(resp message.Response, b *body.Reader) error {
		assert.Equal(t, 200, resp.Status())
		return nil
	})
	require.NoError(t, err)
}
