/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderParamsQuotedValue(t *testing.T) {
	params := ParseHeaderParams(`form-data; name="file"; filename="a b.txt"`)
	v, ok := ParamValue(params, "filename")
	require.True(t, ok)
	assert.Equal(t, "a b.txt", v)
}

func TestParseHeaderParamsUnquotedTokenValue(t *testing.T) {
	params := ParseHeaderParams("multipart/form-data; boundary=xyz")
	v, ok := ParamValue(params, "boundary")
	require.True(t, ok)
	assert.Equal(t, "xyz", v)
}

func TestParseAuthParamsRejectsMalformed(t *testing.T) {
	_, err := ParseAuthParams("no-equals-sign")
	assert.Error(t, err)
}

func TestParseAuthParamsAcceptsQuoted(t *testing.T) {
	out, err := ParseAuthParams(`realm="example", qop=auth`)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "example", out[0].Value)
	assert.Equal(t, "auth", out[1].Value)
}
