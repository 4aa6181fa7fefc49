// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mxk/go-sqlite/go1/sqlite3"
)

// lockedPair returns two connections to the same file database. The first one
// holds an exclusive lock.
func lockedPair(t *testing.T) (c1, c2 *Conn) {
	name := filepath.Join(t.TempDir(), "busy.db")
	c1 = openConn(t, name)
	c2 = openConn(t, name)
	require.NoError(t, c1.Exec(`CREATE TABLE x(a)`))
	require.NoError(t, c1.BeginMode(Exclusive))
	return c1, c2
}

func TestBusyFunc(t *testing.T) {
	c1, c2 := lockedPair(t)
	defer closeConn(t, c1)
	defer closeConn(t, c2)

	const retries = 3
	var counts []int
	prev, err := c2.BusyFunc(func(count int) bool {
		counts = append(counts, count)
		return count < retries
	})
	require.NoError(t, err)
	assert.Nil(t, prev)

	err = c2.Exec(`INSERT INTO x VALUES(1)`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBusy), "%v", err)
	assert.Equal(t, []int{0, 1, 2, 3}, counts, "expected exactly %d retries", retries)

	// A timeout replaces the custom handler and hands it back
	start := time.Now()
	prev, err = c2.BusyTimeout(0)
	require.NoError(t, err)
	assert.NotNil(t, prev)

	counts = nil
	err = c2.Exec(`INSERT INTO x VALUES(1)`)
	assert.True(t, errors.Is(err, ErrBusy), "%v", err)
	assert.Empty(t, counts)
	assert.Less(t, time.Since(start), time.Second)

	prev, err = c2.BusyFunc(nil)
	require.NoError(t, err)
	assert.Nil(t, prev)

	require.NoError(t, c1.Commit())
	require.NoError(t, c2.Exec(`INSERT INTO x VALUES(1)`))
}

func TestBusyTimeoutWaits(t *testing.T) {
	c1, c2 := lockedPair(t)
	defer closeConn(t, c1)
	defer closeConn(t, c2)

	_, err := c2.BusyTimeout(5 * time.Second)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(50 * time.Millisecond)
		assert.NoError(t, c1.Commit())
	}()
	require.NoError(t, c2.Exec(`INSERT INTO x VALUES(1)`))
	<-done
}

func TestCommitRollbackFunc(t *testing.T) {
	c := openConn(t, ":memory:")
	defer closeConn(t, c)
	require.NoError(t, c.Exec(`CREATE TABLE x(a)`))

	allow := true
	commits, rollbacks := 0, 0
	assert.Nil(t, c.CommitFunc(func() bool {
		commits++
		return allow
	}))
	assert.Nil(t, c.RollbackFunc(func() { rollbacks++ }))

	require.NoError(t, c.Exec(`INSERT INTO x VALUES(1)`))
	assert.Equal(t, 1, commits)
	assert.Equal(t, 0, rollbacks)

	// A veto turns the commit into a rollback
	allow = false
	require.NoError(t, c.Begin())
	require.NoError(t, c.Exec(`INSERT INTO x VALUES(2)`))
	err := c.Commit()
	require.Error(t, err)
	assert.Equal(t, CONSTRAINT_COMMITHOOK, err.(*Error).Code())
	assert.True(t, c.AutoCommit())
	assert.Equal(t, 2, commits)
	assert.Equal(t, 1, rollbacks)
	assert.Equal(t, 1, count(t, c))

	// Removal returns the previous functions
	assert.NotNil(t, c.CommitFunc(nil))
	assert.NotNil(t, c.RollbackFunc(nil))
	assert.Nil(t, c.CommitFunc(nil))
	require.NoError(t, c.Exec(`INSERT INTO x VALUES(3)`))
	assert.Equal(t, 2, commits)
}

func TestUpdateFunc(t *testing.T) {
	c := openConn(t, ":memory:")
	defer closeConn(t, c)
	require.NoError(t, c.Exec(`CREATE TABLE x(a)`))

	var changes []Change
	c.UpdateFunc(func(ch Change) { changes = append(changes, ch) })

	require.NoError(t, c.Exec(`INSERT INTO x VALUES(1)`))
	require.NoError(t, c.Exec(`UPDATE x SET a = 2`))
	require.NoError(t, c.Exec(`DELETE FROM x WHERE a = 2`))

	want := []Change{
		{INSERT, "main", "x", 1},
		{UPDATE, "main", "x", 1},
		{DELETE, "main", "x", 1},
	}
	assert.Equal(t, want, changes)
	assert.Equal(t, "UPDATE", changes[1].Op.String())
}

func TestHookPanic(t *testing.T) {
	c := openConn(t, ":memory:")
	defer closeConn(t, c)
	require.NoError(t, c.Exec(`CREATE TABLE x(a)`))

	c.UpdateFunc(func(Change) { panic("update") })
	assert.PanicsWithValue(t, "update", func() {
		c.Exec(`INSERT INTO x VALUES(?)`, 1)
	})

	// The connection remains usable once the hook is gone
	c.UpdateFunc(nil)
	require.NoError(t, c.Exec(`INSERT INTO x VALUES(2)`))

	// A panicking commit hook forces a rollback
	c.CommitFunc(func() bool { panic("commit") })
	assert.PanicsWithValue(t, "commit", func() {
		c.Exec(`INSERT INTO x VALUES(3)`)
	})
	c.CommitFunc(nil)
	assert.True(t, c.AutoCommit())

	s, err := c.Query("SELECT max(a) FROM x")
	require.NoError(t, err)
	defer closeStmt(t, s)
	var top int
	require.NoError(t, s.Scan(&top))
	assert.Equal(t, 2, top)
}

func TestWALFunc(t *testing.T) {
	c := openConn(t, filepath.Join(t.TempDir(), "wal.db"))
	defer closeConn(t, c)

	// SQLite owns the auto-checkpoint hook that is active in WAL mode
	require.NoError(t, c.Exec(`PRAGMA journal_mode=WAL`))
	require.NoError(t, c.Exec(`CREATE TABLE x(a)`))

	var dbs []string
	pages := 0
	assert.Nil(t, c.WALFunc(func(db string, n int) {
		dbs = append(dbs, db)
		pages = n
	}))
	require.NoError(t, c.Exec(`INSERT INTO x VALUES(1)`))
	assert.Equal(t, []string{"main"}, dbs)
	assert.Greater(t, pages, 0)

	// Setting the checkpoint interval replaces the handler
	require.NoError(t, c.Exec(`PRAGMA wal_autocheckpoint=10`))
	dbs = nil
	require.NoError(t, c.Exec(`INSERT INTO x VALUES(2)`))
	assert.Empty(t, dbs)

	calls := 0
	assert.Nil(t, c.WALFunc(func(string, int) { calls++ }))
	require.NoError(t, c.Exec(`INSERT INTO x VALUES(3)`))
	assert.Equal(t, 1, calls)

	assert.NotNil(t, c.WALFunc(nil))
	assert.Nil(t, c.WALFunc(nil))
	require.NoError(t, c.Exec(`INSERT INTO x VALUES(4)`))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 4, count(t, c))
}

func TestHooksOnFreshConn(t *testing.T) {
	// Handles that belong to another connection must survive Close
	other := openConn(t, ":memory:")
	defer closeConn(t, other)
	const funcs = 1100
	for i := 0; i < funcs; i++ {
		i := i
		require.NoError(t, other.CreateFunction(fmt.Sprintf("f%d", i), 0, func([]Value) (Value, error) {
			return Integer(i), nil
		}))
	}

	for _, name := range []string{":memory:", filepath.Join(t.TempDir(), "fresh.db")} {
		c := openConn(t, name)
		require.NoError(t, c.Close(), name)

		c = openConn(t, name)
		assert.Nil(t, c.CommitFunc(nil))
		assert.Nil(t, c.RollbackFunc(nil))
		assert.Nil(t, c.UpdateFunc(nil))
		assert.Nil(t, c.WALFunc(nil))
		assert.Nil(t, c.WALFunc(func(string, int) {}))
		require.NoError(t, c.Close(), name)
	}

	for i := 0; i < funcs; i++ {
		s, err := other.Query(fmt.Sprintf("SELECT f%d()", i))
		require.NoError(t, err)
		var n int
		require.NoError(t, s.Scan(&n))
		require.Equal(t, i, n)
		closeStmt(t, s)
	}
}

func TestCloseRemovesHooks(t *testing.T) {
	c := openConn(t, ":memory:")
	_, err := c.BusyFunc(func(int) bool { return false })
	require.NoError(t, err)
	c.CommitFunc(func() bool { return true })
	c.RollbackFunc(func() {})
	c.UpdateFunc(func(Change) {})
	c.WALFunc(func(string, int) {})
	closeConn(t, c)

	// Everything on a closed connection is a no-op or ErrBadConn
	assert.Nil(t, c.CommitFunc(func() bool { return true }))
	_, err = c.BusyFunc(nil)
	assert.Equal(t, ErrBadConn, err)
	assert.Equal(t, ErrBadConn, c.Exec("SELECT 1"))
	assert.NoError(t, c.Close())
}
