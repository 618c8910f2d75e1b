/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package wire

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwih/httpwire/header"
	"github.com/kiwih/httpwire/message"
	"github.com/kiwih/httpwire/werr"
)

func TestReadRequestHeadRoundTrip(t *testing.T) {
	raw := "GET /widgets?x=1 HTTP/1.1\r\nHost: example.com\r\nAccept: */*\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))
	req, err := ReadRequestHead(r, Options{})
	require.NoError(t, err)
	assert.Equal(t, message.MethodGet, req.Method())
	assert.Equal(t, "/widgets?x=1", req.Target())
	assert.Equal(t, message.HTTP11, req.Version())
	assert.Equal(t, "example.com", req.Header().Value("Host"))

	var buf bytes.Buffer
	require.NoError(t, WriteRequestHead(&buf, req))
	assert.Equal(t, raw, buf.String())
}

func TestReadResponseHeadRoundTrip(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))
	resp, err := ReadResponseHead(r, Options{})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status())
	assert.Equal(t, "OK", resp.Reason())
	assert.Equal(t, "5", resp.Header().Value("Content-Length"))

	var buf bytes.Buffer
	require.NoError(t, WriteResponseHead(&buf, resp))
	assert.Equal(t, raw, buf.String())
}

func TestReadHeadersObsFoldRejected(t *testing.T) {
	raw := "X-Long: part-one\r\n part-two\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))
	_, err := ReadHeaders(r, Options{})
	require.Error(t, err)
	var malformed werr.MalformedHeader
	assert.ErrorAs(t, err, &malformed)
}

func TestReadHeadersTooManyRejected(t *testing.T) {
	var raw strings.Builder
	for i := 0; i < 5; i++ {
		raw.WriteString("X-N: v\r\n")
	}
	raw.WriteString("\r\n")
	r := bufio.NewReader(strings.NewReader(raw.String()))
	_, err := ReadHeaders(r, Options{MaxHeaders: 3})
	assert.Error(t, err)
}

func TestWriteRequestHeadPreservesOrder(t *testing.T) {
	req := message.NewRequest(message.MethodPost, "/", message.HTTP11).
		WithHeader(header.New(header.NewField("Z-First", "1"), header.NewField("A-Second", "2")))
	var buf bytes.Buffer
	require.NoError(t, WriteRequestHead(&buf, req))
	out := buf.String()
	assert.True(t, strings.Index(out, "Z-First") < strings.Index(out, "A-Second"))
}
