// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/syncs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mxk/go-sqlite/go1/sqlite3"
)

func TestOpenFlags(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenReadOnly(filepath.Join(dir, "missing.db"))
	require.Error(t, err)

	_, err = OpenFlags(filepath.Join(dir, "x.db"), OPEN_CREATE)
	require.Error(t, err)
	assert.Equal(t, MisuseError, err.(*Error).Kind())

	name := filepath.Join(dir, "x.db")
	c := openConn(t, name)
	require.NoError(t, c.Exec(`CREATE TABLE x(a)`))
	assert.True(t, strings.HasSuffix(c.Path("main"), "x.db"), c.Path("main"))
	assert.Empty(t, c.Path("nosuchdb"))
	closeConn(t, c)

	ro, err := OpenReadOnly(name)
	require.NoError(t, err)
	defer closeConn(t, ro)
	err = ro.Exec(`INSERT INTO x VALUES(1)`)
	require.Error(t, err)
	assert.Equal(t, READONLY, err.(*Error).Primary())
}

func TestConcurrentConns(t *testing.T) {
	name := filepath.Join(t.TempDir(), "wal.db")
	c := openConn(t, name)
	defer closeConn(t, c)
	require.NoError(t, c.Exec(`PRAGMA journal_mode=WAL; CREATE TABLE x(worker, n)`))

	const workers, rows = 4, 50
	wg := syncs.NewErrSizedGroup(workers)
	for w := 0; w < workers; w++ {
		w := w
		wg.Go(func() error {
			wc, err := Open(name)
			if err != nil {
				return err
			}
			defer wc.Close()
			if _, err = wc.BusyTimeout(10 * time.Second); err != nil {
				return err
			}
			for i := 0; i < rows; i++ {
				err = wc.Transaction(Immediate, func() (TxAction, error) {
					return TxCommit, wc.Exec(`INSERT INTO x VALUES(?, ?)`, w, i)
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, wg.Wait())
	assert.Equal(t, workers*rows, count(t, c))
}

func TestInterruptOnDone(t *testing.T) {
	c := openConn(t, ":memory:")
	defer closeConn(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	stop := c.InterruptOnDone(ctx)
	err := c.Exec(`
		WITH RECURSIVE c(x) AS (SELECT 1 UNION ALL SELECT x+1 FROM c)
		SELECT count(*) FROM c`)
	stop()
	stop()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInterrupt), "%v", err)

	// A context that is never done does not start a watcher
	stop = c.InterruptOnDone(context.Background())
	require.NoError(t, c.Exec(`SELECT 1`))
	stop()
}

func TestStatusAndLimit(t *testing.T) {
	c := openConn(t, ":memory:")
	defer closeConn(t, c)
	require.NoError(t, c.Exec(`CREATE TABLE x(a)`))

	cur, _, err := c.Status(STATUS_SCHEMA_USED, false)
	require.NoError(t, err)
	assert.Greater(t, cur, 0)
	assert.Equal(t, "SCHEMA_USED", STATUS_SCHEMA_USED.String())
	assert.Equal(t, "STATUS(99)", StatusParam(99).String())

	_, _, err = c.Status(StatusParam(99), false)
	assert.Error(t, err)

	prev := c.Limit(LIMIT_SQL_LENGTH, 100)
	assert.Greater(t, prev, 100)
	_, err = c.Prepare("SELECT '" + strings.Repeat("x", 200) + "'")
	require.Error(t, err)
	assert.Equal(t, TOOBIG, err.(*Error).Primary())
	assert.Equal(t, 100, c.Limit(LIMIT_SQL_LENGTH, prev))
	assert.Equal(t, prev, c.Limit(LIMIT_SQL_LENGTH, -1))
}

func TestSetLogger(t *testing.T) {
	c := openConn(t, ":memory:")
	defer closeConn(t, c)

	var buf bytes.Buffer
	c.SetLogger(lgr.New(lgr.Out(&buf), lgr.Debug))

	require.NoError(t, c.CreateFunction("f", 0, func([]Value) (Value, error) {
		return Integer(1), nil
	}))
	_, err := c.BusyFunc(func(int) bool { return false })
	require.NoError(t, err)
	_, err = c.BusyTimeout(time.Second)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "function f updated")
	assert.Contains(t, out, "busy timeout replaced previous busy handler")

	buf.Reset()
	c.SetLogger(nil)
	require.NoError(t, c.RemoveFunction("f", 0))
	assert.Empty(t, buf.String())
}
