// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mxk/go-sqlite/go1/sqlite3"
)

func TestValueEqual(t *testing.T) {
	tbl := []struct {
		a, b Value
		eq   bool
	}{
		{Integer(42), Integer(42), true},
		{Integer(42), Integer(43), false},
		{Integer(1), Float(1), false},
		{Float(1.5), Float(1.5), true},
		{Text("abc"), Text("abc"), true},
		{Text("abc"), Blob("abc"), false},
		{Blob{1, 2}, Blob{1, 2}, true},
		{Blob{}, Blob(nil), true},
		{Null{}, Null{}, false},
		{Null{}, Integer(0), false},
		{Integer(0), Null{}, false},
	}
	for _, tc := range tbl {
		assert.Equal(t, tc.eq, tc.a.Equal(tc.b), "%v.Equal(%v)", tc.a, tc.b)
	}

	var n Value = Null{}
	assert.False(t, n.Equal(n), "Null must not equal itself")
}

func TestValueTypes(t *testing.T) {
	assert.Equal(t, byte(INTEGER), Integer(1).Type())
	assert.Equal(t, byte(FLOAT), Float(1).Type())
	assert.Equal(t, byte(TEXT), Text("").Type())
	assert.Equal(t, byte(BLOB), Blob{}.Type())
	assert.Equal(t, byte(NULL), Null{}.Type())

	assert.Equal(t, "42", Integer(42).String())
	assert.Equal(t, "x'0AFF'", Blob{0x0a, 0xff}.String())
	assert.Equal(t, "NULL", Null{}.String())

	assert.Equal(t, int64(7), Interface(Integer(7)))
	assert.Equal(t, "s", Interface(Text("s")))
	assert.Nil(t, Interface(Null{}))
}

func TestNewBlobCopies(t *testing.T) {
	src := []byte("abc")
	b := NewBlob(src)
	src[0] = 'X'
	assert.Equal(t, Blob("abc"), b)
	assert.NotNil(t, NewBlob(nil))
}

func TestValueRoundTrip(t *testing.T) {
	c := openConn(t, ":memory:")
	defer closeConn(t, c)

	s, err := c.Prepare("SELECT ?")
	require.NoError(t, err)
	defer closeStmt(t, s)

	vals := []Value{
		Integer(42),
		Integer(-1 << 63),
		Float(3.25),
		Text("hello, world"),
		Text(""),
		Blob{0, 1, 2, 0xff},
		Blob{},
	}
	for _, v := range vals {
		require.NoError(t, s.Reset())
		require.NoError(t, s.Bind(1, v))
		ok, err := s.Step()
		require.NoError(t, err)
		require.True(t, ok)

		have, err := s.ColumnValue(0)
		require.NoError(t, err)
		assert.True(t, v.Equal(have), "bind %#v, read %#v", v, have)
		assert.True(t, v.Equal(s.Row().Value(0)))
		assert.Equal(t, v.Type(), s.Row().Type(0))
	}

	// NULL never equals itself, so check the type instead
	require.NoError(t, s.Reset())
	require.NoError(t, s.Bind(1, Null{}))
	ok, err := s.Step()
	require.NoError(t, err)
	require.True(t, ok)
	have, err := s.ColumnValue(0)
	require.NoError(t, err)
	assert.Equal(t, Null{}, have)
	assert.True(t, s.Row().IsNull(0))
}
