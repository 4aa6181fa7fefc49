// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3_test

import (
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mxk/go-sqlite/go1/sqlite3"
)

// minVersion is the minimum required SQLite version. The package will not build
// with anything less, so it's only used to check that VersionNum is working.
const minVersion = 3034000

func openConn(t *testing.T, name string) *Conn {
	t.Helper()
	c, err := Open(name)
	require.NoError(t, err, "Open(%q)", name)
	require.NotNil(t, c)
	return c
}

func closeConn(t *testing.T, c *Conn) {
	t.Helper()
	require.NoError(t, c.Close())
}

func closeStmt(t *testing.T, s *Stmt) {
	t.Helper()
	require.NoError(t, s.Close())
}

func closeBackup(t *testing.T, b *Backup) {
	t.Helper()
	require.NoError(t, b.Close())
}

// rows returns every remaining row of s as a slice of values.
func rows(t *testing.T, s *Stmt) [][]Value {
	t.Helper()
	var all [][]Value
	err := s.ForEachRow(func(r *Row) error {
		vals := make([]Value, r.Len())
		for i := range vals {
			vals[i] = r.Value(i)
		}
		all = append(all, vals)
		return nil
	})
	require.NoError(t, err)
	return all
}

func TestInit(t *testing.T) {
	if SingleThread() {
		t.Log("SQLite was built with -DSQLITE_THREADSAFE=0")
	}
	assert.GreaterOrEqual(t, VersionNum(), minVersion)
	assert.True(t, strings.HasPrefix(Version(), "3."), Version())
	assert.NotEmpty(t, SourceId())

	closeConn(t, openConn(t, ":memory:"))

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	require.NoError(t, db.Close())
}

func TestBasic(t *testing.T) {
	c := openConn(t, ":memory:")
	defer closeConn(t, c)

	assert.True(t, c.AutoCommit())
	assert.Empty(t, c.Path("main"))

	require.NoError(t, c.Exec(`CREATE TABLE x(a, b, c)`))
	require.NoError(t, c.Exec(`INSERT INTO x VALUES(NULL, 42, ?)`, "hello, world"))
	assert.Equal(t, int64(1), c.LastInsertId())
	assert.Equal(t, 1, c.RowsAffected())

	// Queries do not accept more arguments than they have parameters
	query := `SELECT * FROM x`
	assert.Error(t, c.Exec(query, 42))

	s, err := c.Query(query)
	require.NoError(t, err)
	defer closeStmt(t, s)

	assert.Same(t, c, s.Conn())
	assert.True(t, s.Valid())
	assert.True(t, s.Busy())
	assert.True(t, s.ReadOnly())
	assert.Equal(t, query, s.String())
	assert.Equal(t, 0, s.NumParams())
	assert.Equal(t, 3, s.NumColumns())
	assert.Nil(t, s.Params())
	assert.Equal(t, []string{"a", "b", "c"}, s.Columns())
	assert.Equal(t, []string{"", "", ""}, s.DeclTypes())
	assert.Equal(t, []byte{NULL, INTEGER, TEXT}, s.DataTypes())

	// The current row as values, then as Go types
	r := s.Row()
	require.NotNil(t, r)
	assert.Equal(t, Null{}, r.Value(0))
	assert.Equal(t, Integer(42), r.Value(1))
	assert.Equal(t, Text("hello, world"), r.Value(2))

	var a interface{} = "bad"
	var b int
	var str string
	require.NoError(t, s.Scan(&a, &b, &str))
	assert.Nil(t, a)
	assert.Equal(t, 42, b)
	assert.Equal(t, "hello, world", str)

	// Trailing columns go into a RowMap
	have := make(RowMap)
	require.NoError(t, s.Scan(&a, have))
	assert.Equal(t, RowMap{"b": int64(42), "c": "hello, world"}, have)

	assert.Equal(t, io.EOF, s.Next())
	assert.False(t, s.Busy())
	assert.Nil(t, s.DataTypes())
	assert.Nil(t, s.Row())

	closeStmt(t, s)
	assert.Same(t, c, s.Conn())
	assert.False(t, s.Valid())
}

func TestParams(t *testing.T) {
	c := openConn(t, ":memory:")
	defer closeConn(t, c)
	require.NoError(t, c.Exec(`CREATE TABLE x(a, b, c)`))

	s, err := c.Prepare(`INSERT INTO x VALUES(?, ?, ?)`)
	require.NoError(t, err)
	defer closeStmt(t, s)
	assert.Equal(t, 3, s.NumParams())
	assert.Nil(t, s.Params())

	assert.Error(t, s.BindAll())
	assert.Error(t, s.Exec(1, 2, 3, 4))
	assert.Error(t, s.Exec(NamedArgs{}))
	require.NoError(t, s.Exec(1, 2, 3))
	require.NoError(t, s.Exec(1.1, 2.2, 3.3))

	named, err := c.Prepare(`INSERT INTO x VALUES(:a, @B, $c)`)
	require.NoError(t, err)
	defer closeStmt(t, named)
	assert.Equal(t, 3, named.NumParams())
	assert.Equal(t, []string{":a", "@B", "$c"}, named.Params())

	// Named parameters may still be bound by position. Map keys are
	// case-sensitive, so "$C" leaves $c NULL.
	require.NoError(t, named.Exec("a", "b", "c"))
	args := NamedArgs{
		":a": []byte("X"),
		"@B": []byte("Y"),
		"$C": []byte("*"),
	}
	assert.Equal(t, io.EOF, named.Query(args))

	q, err := c.Prepare(`SELECT rowid, * FROM x ORDER BY rowid`)
	require.NoError(t, err)
	defer closeStmt(t, q)
	want := [][]Value{
		{Integer(1), Integer(1), Integer(2), Integer(3)},
		{Integer(2), Float(1.1), Float(2.2), Float(3.3)},
		{Integer(3), Text("a"), Text("b"), Text("c")},
		{Integer(4), Blob("X"), Blob("Y"), Null{}},
	}
	assert.Equal(t, want, rows(t, q))
}

func TestBlobIO(t *testing.T) {
	c := openConn(t, ":memory:")
	defer closeConn(t, c)

	require.NoError(t, c.Exec(`CREATE TABLE x(a)`))
	require.NoError(t, c.Exec(`INSERT INTO x VALUES(?)`, ZeroBlob(8)))
	require.NoError(t, c.Exec(`INSERT INTO x VALUES(?)`, "hello, world"))

	b, err := c.BlobIO("main", "x", "a", 1, true)
	require.NoError(t, err)
	assert.Same(t, c, b.Conn())
	assert.Equal(t, int64(1), b.Row())
	assert.Equal(t, 8, b.Len())

	n, err := b.Write([]byte("1234567"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	n, err = b.Write([]byte("89"))
	assert.Equal(t, ErrBlobFull, err)
	assert.Equal(t, 0, n)

	require.NoError(t, b.Reopen(2))
	assert.Equal(t, int64(2), b.Row())
	assert.Equal(t, 12, b.Len())

	for i := 0; i < 2; i++ {
		out := make([]byte, 13)
		n, err := b.Read(out)
		require.NoError(t, err)
		assert.Equal(t, 12, n)
		assert.Equal(t, "hello, world\x00", string(out))

		n, err = b.Read(out)
		assert.Equal(t, io.EOF, err)
		assert.Equal(t, 0, n)

		p, err := b.Seek(0, io.SeekStart)
		require.NoError(t, err)
		assert.Equal(t, int64(0), p)
	}
	p, err := b.Seek(-5, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p)
	_, err = b.Seek(1, io.SeekEnd)
	assert.Error(t, err)

	require.NoError(t, b.Close())
	_, err = b.Read(make([]byte, 1))
	assert.Equal(t, ErrBadIO, err)
	assert.NoError(t, b.Close())

	s, err := c.Prepare("SELECT a FROM x ORDER BY rowid")
	require.NoError(t, err)
	defer closeStmt(t, s)
	want := [][]Value{
		{Blob("1234567\x00")},
		{Text("hello, world")},
	}
	assert.Equal(t, want, rows(t, s))
}
