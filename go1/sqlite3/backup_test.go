// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3_test

import (
	"database/sql"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	. "github.com/mxk/go-sqlite/go1/sqlite3"
)

// fillConn creates table x with enough data to span many pages.
func fillConn(t *testing.T, c *Conn, rows int) {
	t.Helper()
	require.NoError(t, c.Exec(`CREATE TABLE x(id INTEGER PRIMARY KEY, data BLOB)`))
	err := c.Transaction(Immediate, func() (TxAction, error) {
		s, err := c.Prepare("INSERT INTO x(data) VALUES(randomblob(1000))")
		if err != nil {
			return TxRollback, err
		}
		defer s.Close()
		for i := 0; i < rows; i++ {
			if err = s.Exec(); err != nil {
				return TxRollback, err
			}
		}
		return TxCommit, nil
	})
	require.NoError(t, err)
}

// pageCount returns the number of pages in the main database of c.
func pageCount(t *testing.T, c *Conn) int {
	t.Helper()
	s, err := c.Query("PRAGMA page_count")
	require.NoError(t, err)
	defer closeStmt(t, s)
	var n int
	require.NoError(t, s.Scan(&n))
	return n
}

func TestBackupTo(t *testing.T) {
	src := openConn(t, ":memory:")
	defer closeConn(t, src)
	dst := openConn(t, ":memory:")
	defer closeConn(t, dst)
	fillConn(t, src, 200)

	var remaining, totals []int
	err := src.BackupTo(dst, func(rem, total int) {
		remaining = append(remaining, rem)
		totals = append(totals, total)
	})
	require.NoError(t, err)

	require.Greater(t, len(remaining), 2, "expected several steps")
	assert.Equal(t, 0, remaining[len(remaining)-1])
	assert.Equal(t, pageCount(t, src), totals[0])
	assert.Equal(t, totals[0]-BackupPageStep, remaining[0])
	for i := 1; i < len(remaining); i++ {
		assert.Less(t, remaining[i], remaining[i-1], "step %d", i)
		assert.Equal(t, totals[0], totals[i], "step %d", i)
	}
	assert.Greater(t, totals[0], BackupPageStep)
	assert.Equal(t, 200, count(t, dst))

	// Without a progress function
	dst2 := openConn(t, ":memory:")
	defer closeConn(t, dst2)
	require.NoError(t, src.BackupTo(dst2, nil))
	assert.Equal(t, 200, count(t, dst2))

	// Invalid destinations
	assert.Equal(t, ErrBadConn, src.BackupTo(src, nil))
	assert.Equal(t, ErrBadConn, src.BackupTo(nil, nil))
}

func TestBackupStep(t *testing.T) {
	src := openConn(t, ":memory:")
	defer closeConn(t, src)
	dst := openConn(t, ":memory:")
	defer closeConn(t, dst)
	fillConn(t, src, 50)

	b, err := src.Backup("main", dst, "main")
	require.NoError(t, err)
	s, d := b.Conn()
	assert.Same(t, src, s)
	assert.Same(t, dst, d)

	require.NoError(t, b.Step(1))
	assert.Equal(t, pageCount(t, src), b.PageCount())
	assert.Equal(t, b.PageCount()-1, b.Remaining())
	assert.Equal(t, io.EOF, b.Step(-1))
	assert.Equal(t, 0, b.Remaining())
	closeBackup(t, b)

	assert.Equal(t, ErrBadBackup, b.Step(1))
	assert.Equal(t, 0, b.PageCount())
	assert.Equal(t, 50, count(t, dst))
}

func TestBackupToFile(t *testing.T) {
	src := openConn(t, ":memory:")
	defer closeConn(t, src)
	fillConn(t, src, 100)

	path := filepath.Join(t.TempDir(), "copy.db")
	calls := 0
	require.NoError(t, src.BackupToFile(path, func(int, int) { calls++ }))
	assert.Greater(t, calls, 0)

	// The copy is an ordinary database file that any SQLite can read
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM x").Scan(&n))
	assert.Equal(t, 100, n)

	var check string
	require.NoError(t, db.QueryRow("PRAGMA integrity_check").Scan(&check))
	assert.Equal(t, "ok", check)
	require.NoError(t, db.Close())

	// Overwriting an existing copy
	require.NoError(t, src.Exec(`DELETE FROM x WHERE id > 10`))
	require.NoError(t, src.BackupToFile(path, nil))
	c := openConn(t, path)
	defer closeConn(t, c)
	assert.Equal(t, 10, count(t, c))
}

func TestBackupToReadOnly(t *testing.T) {
	src := openConn(t, ":memory:")
	defer closeConn(t, src)
	fillConn(t, src, 20)

	path := filepath.Join(t.TempDir(), "ro.db")
	c := openConn(t, path)
	require.NoError(t, c.Exec(`CREATE TABLE y(a)`))
	closeConn(t, c)

	dst, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer closeConn(t, dst)

	// The failure is reported once even though finishing the backup
	// returns the same code
	err = src.BackupTo(dst, nil)
	require.Error(t, err)
	e, ok := err.(*Error)
	require.True(t, ok, "%T: %v", err, err)
	assert.Equal(t, READONLY, e.Primary())
}
