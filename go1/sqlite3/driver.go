// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3

import "C"

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
)

// register makes the database/sql driver available under the given name.
func register(name string) {
	defer func() {
		// Don't panic if the driver has already been registered under this name
		recover()
	}()
	sql.Register(name, Driver{})
}

// Driver implements the interface required by database/sql. The data source
// name is passed to Open unchanged, so URI filenames may be used to set open
// flags (for example, "file:test.db?mode=ro").
type Driver struct{}

// Open opens a new connection in read-write mode, creating the database if
// necessary.
func (Driver) Open(name string) (driver.Conn, error) {
	c, err := Open(name)
	if err != nil {
		return nil, err
	}
	return &conn{c}, nil
}

// conn adapts *Conn to driver.Conn.
type conn struct {
	*Conn
}

// SQLiteConn returns the underlying connection. It is intended for use with
// sql.Conn.Raw to reach features that database/sql does not expose, such as
// hooks, functions, and backups.
func (c *conn) SQLiteConn() *Conn {
	return c.Conn
}

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if c.db == nil {
		return nil, driver.ErrBadConn
	}
	stop := c.InterruptOnDone(ctx)
	defer stop()
	s, err := c.Conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	if !s.Valid() {
		s.Close()
		return nil, pkgErr(CompileError, MISUSE, "empty statement")
	}
	return &stmt{s, false}, nil
}

func (c *conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx starts a deferred transaction, or an immediate one unless the
// transaction is read-only. Isolation levels other than the default and
// serializable are rejected.
func (c *conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if c.db == nil {
		return nil, driver.ErrBadConn
	}
	switch sql.IsolationLevel(opts.Isolation) {
	case sql.LevelDefault, sql.LevelSerializable:
	default:
		return nil, pkgErr(MisuseError, MISUSE, "unsupported isolation level %s",
			sql.IsolationLevel(opts.Isolation))
	}
	mode := Deferred
	if !opts.ReadOnly {
		mode = Immediate
	}
	stop := c.InterruptOnDone(ctx)
	defer stop()
	if err := c.BeginMode(mode); err != nil {
		return nil, err
	}
	return tx{c.Conn}, nil
}

func (c *conn) Close() error {
	return c.Conn.Close()
}

// IsValid is called by database/sql before reusing a connection.
func (c *conn) IsValid() bool {
	return c.db != nil
}

// stmt adapts *Stmt to driver.Stmt.
type stmt struct {
	*Stmt
	closed bool
}

func (s *stmt) Close() error {
	s.closed = true
	return s.Stmt.Close()
}

func (s *stmt) NumInput() int {
	if len(s.Params()) > 0 {
		return -1 // Named parameters may be given in any order
	}
	return s.NumParams()
}

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), namedValues(args))
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), namedValues(args))
}

func (s *stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	c := s.conn
	if err := s.bindArgs(args); err != nil {
		return nil, err
	}
	stop := c.InterruptOnDone(ctx)
	defer stop()
	if err := s.Execute(); err != nil {
		return nil, err
	}
	return result{c.LastInsertId(), int64(c.RowsAffected())}, nil
}

func (s *stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if err := s.bindArgs(args); err != nil {
		return nil, err
	}
	stop := s.conn.InterruptOnDone(ctx)
	if _, err := s.Step(); err != nil {
		stop()
		return nil, err
	}
	return &rows{s.Stmt, stop, true}, nil
}

// bindArgs resets the statement and binds args, which are converted to a
// NamedArgs map if any argument has a name.
func (s *stmt) bindArgs(args []driver.NamedValue) error {
	if s.closed || s.stmt == nil {
		return driver.ErrBadConn
	}
	if s.state != unstarted {
		s.Reset()
	}
	if len(args) == 0 {
		if s.nVars > 0 {
			return s.ClearBindings()
		}
		return nil
	}
	var named NamedArgs
	vals := make([]interface{}, len(args))
	for i, arg := range args {
		vals[i] = arg.Value
		if arg.Name != "" {
			if named == nil {
				named = make(NamedArgs, 3*len(args))
			}
			for _, prefix := range [...]string{":", "@", "$"} {
				named[prefix+arg.Name] = arg.Value
			}
		}
	}
	if named != nil {
		return s.BindAll(named)
	}
	return s.BindAll(vals...)
}

// namedValues converts positional driver values to NamedValues.
func namedValues(args []driver.Value) []driver.NamedValue {
	nv := make([]driver.NamedValue, len(args))
	for i, v := range args {
		nv[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return nv
}

// rows adapts a stepping *Stmt to driver.Rows.
type rows struct {
	s     *Stmt
	stop  func()
	first bool // Current row was produced by QueryContext and not yet returned
}

func (r *rows) Columns() []string {
	return r.s.Columns()
}

func (r *rows) Next(dest []driver.Value) error {
	if r.first {
		r.first = false
	} else if r.s.state == hasRow {
		if _, err := r.s.Step(); err != nil {
			return err
		}
	}
	if r.s.state != hasRow {
		return io.EOF
	}
	for i := range dest {
		var v interface{}
		if err := r.s.scanDynamic(C.int(i), &v); err != nil {
			return err
		}
		dest[i] = v
	}
	return nil
}

func (r *rows) Close() error {
	r.stop()
	if r.s.stmt != nil && r.s.state != unstarted {
		// Step errors were already returned by Next
		r.s.Reset()
	}
	return nil
}

// tx implements driver.Tx.
type tx struct {
	c *Conn
}

func (t tx) Commit() error {
	if err := t.c.Commit(); err != nil {
		t.c.abortTx()
		return err
	}
	return nil
}

func (t tx) Rollback() error {
	return t.c.Rollback()
}

// result implements driver.Result.
type result struct {
	id, n int64
}

func (r result) LastInsertId() (int64, error) {
	return r.id, nil
}

func (r result) RowsAffected() (int64, error) {
	return r.n, nil
}
