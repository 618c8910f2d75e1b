/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListSkipsEmptyElements(t *testing.T) {
	out := ParseList("a, , b,c", ',')
	assert.Equal(t, []string{"a", "b", "c"}, out)
}

func TestParseListHonorsQuotedSeparator(t *testing.T) {
	out := ParseList(`a="b,c",d`, ',')
	assert.Equal(t, []string{`a="b,c"`, "d"}, out)
}

func TestUnquoteIfQuotedResolvesEscapes(t *testing.T) {
	assert.Equal(t, `a"b`, UnquoteIfQuoted(`"a\"b"`))
}

func TestUnquoteIfQuotedLeavesBareTokenAlone(t *testing.T) {
	assert.Equal(t, "token", UnquoteIfQuoted("token"))
}
