// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/mxk/go-sqlite/go1/sqlite3"
)

// makeSource creates a database file with a table of n rows.
func makeSource(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.db")
	c, err := sqlite3.Open(path)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Exec(`CREATE TABLE x(id INTEGER PRIMARY KEY, data BLOB)`))
	for i := 0; i < n; i++ {
		require.NoError(t, c.Exec(`INSERT INTO x(data) VALUES(randomblob(500))`))
	}
	return path
}

func Test_run(t *testing.T) {
	src := makeSource(t, 50)
	dst := filepath.Join(t.TempDir(), "dst.db")

	var out bytes.Buffer
	err := run(options{Src: src, Dst: dst, Timeout: 0, Check: true, Sum: true}, &out)
	require.NoError(t, err)
	t.Log(out.String())

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	sum := blake3.Sum256(data)
	assert.Contains(t, out.String(), "copied "+src+" to "+dst)
	assert.Contains(t, out.String(), "integrity check ok")
	assert.Contains(t, out.String(), "blake3 "+hex.EncodeToString(sum[:]))

	c, err := sqlite3.OpenReadOnly(dst)
	require.NoError(t, err)
	defer c.Close()
	s, err := c.Query("SELECT count(*) FROM x")
	require.NoError(t, err)
	defer s.Close()
	var n int
	require.NoError(t, s.Scan(&n))
	assert.Equal(t, 50, n)
}

func Test_runErrors(t *testing.T) {
	dir := t.TempDir()

	err := run(options{Src: filepath.Join(dir, "missing.db"), Dst: filepath.Join(dir, "dst.db")}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't open source")

	src := makeSource(t, 1)
	err = run(options{Src: src, Dst: filepath.Join(dir, "no", "such", "dir.db")}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't back up")
}

func Test_checkIntegrity(t *testing.T) {
	src := makeSource(t, 10)
	require.NoError(t, checkIntegrity(src))

	garbage := filepath.Join(t.TempDir(), "garbage.db")
	require.NoError(t, os.WriteFile(garbage, bytes.Repeat([]byte("not a database "), 100), 0o600))
	assert.Error(t, checkIntegrity(garbage))
}

func Test_digest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	sum, err := digest(path)
	require.NoError(t, err)
	want := blake3.Sum256([]byte("hello"))
	assert.Equal(t, hex.EncodeToString(want[:]), sum)

	_, err = digest(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
