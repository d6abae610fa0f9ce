// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"go/format"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandURL(t *testing.T) {
	u, err := MustLookup(CmdGetElementAttribute).URL("s1", "e/2", "data value")
	require.NoError(t, err)
	assert.Equal(t, "/session/s1/element/e%2F2/attribute/data%20value", u)

	u, err = MustLookup(CmdStatus).URL()
	require.NoError(t, err)
	assert.Equal(t, "/status", u)
}

func TestCommandURLArity(t *testing.T) {
	_, err := MustLookup(CmdElementClick).URL("s1")
	assert.Error(t, err)

	_, err = MustLookup(CmdGetTitle).URL("s1", "extra")
	assert.Error(t, err)

	_, err = MustLookup(CmdGetTitle).URL("")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	c, ok := Lookup(CmdFindElements)
	require.True(t, ok)
	assert.Equal(t, "POST", c.Method)

	_, ok = Lookup("teleport")
	assert.False(t, ok)
	assert.Panics(t, func() { MustLookup("teleport") })
}

func TestCommandTableIsFormatted(t *testing.T) {
	src, err := os.ReadFile("command.go")
	require.NoError(t, err)
	formatted, err := format.Source(src)
	require.NoError(t, err)
	assert.Equal(t, string(formatted), string(src))
}
