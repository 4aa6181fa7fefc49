// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3

/*
#include "sqlite3.h"

static int txn_state(sqlite3 *db, const char *schema) {
	return sqlite3_txn_state(db, (*schema ? schema : 0));
}
*/
import "C"

import (
	"fmt"

	"github.com/google/uuid"
)

// TxMode selects the locking behavior of a transaction started by BeginMode.
// [http://www.sqlite.org/lang_transaction.html]
type TxMode int

const (
	Deferred  TxMode = iota // Locks are acquired on first use
	Immediate               // A write lock is acquired immediately
	Exclusive               // Like Immediate, and readers are excluded
)

func (m TxMode) String() string {
	switch m {
	case Deferred:
		return "DEFERRED"
	case Immediate:
		return "IMMEDIATE"
	case Exclusive:
		return "EXCLUSIVE"
	}
	return fmt.Sprintf("TxMode(%d)", int(m))
}

// TxAction is returned by the function passed to Transaction or WithSavepoint
// to select how the unit of work ends.
type TxAction int

const (
	TxCommit TxAction = iota
	TxRollback
)

// TxState is the transaction state of a database schema.
// [http://www.sqlite.org/c3ref/c_txn_none.html]
type TxState int

const (
	TxNone  TxState = C.SQLITE_TXN_NONE
	TxRead  TxState = C.SQLITE_TXN_READ
	TxWrite TxState = C.SQLITE_TXN_WRITE
)

func (s TxState) String() string {
	switch s {
	case TxNone:
		return "none"
	case TxRead:
		return "read"
	case TxWrite:
		return "write"
	}
	return fmt.Sprintf("TxState(%d)", int(s))
}

// Begin starts a new deferred transaction.
// [http://www.sqlite.org/lang_transaction.html]
func (c *Conn) Begin() error {
	return c.BeginMode(Deferred)
}

// BeginMode starts a new transaction with the specified locking mode.
// Transactions do not nest; use Savepoint inside an active transaction.
func (c *Conn) BeginMode(mode TxMode) error {
	if c.db == nil {
		return ErrBadConn
	}
	var sql string
	switch mode {
	case Deferred:
		sql = "BEGIN DEFERRED TRANSACTION;\x00"
	case Immediate:
		sql = "BEGIN IMMEDIATE TRANSACTION;\x00"
	case Exclusive:
		sql = "BEGIN EXCLUSIVE TRANSACTION;\x00"
	default:
		return pkgErr(MisuseError, MISUSE, "invalid transaction mode (%d)", int(mode))
	}
	if !c.AutoCommit() {
		return pkgErr(TxStateError, ERROR, "cannot begin a transaction within a transaction")
	}
	return c.exec(cStr(sql))
}

// Commit saves all changes made within a transaction to the database.
func (c *Conn) Commit() error {
	if c.db == nil {
		return ErrBadConn
	}
	if c.AutoCommit() {
		return pkgErr(TxStateError, ERROR, "cannot commit - no transaction is active")
	}
	return c.exec(cStr("COMMIT;\x00"))
}

// Rollback aborts the current transaction without saving any changes.
func (c *Conn) Rollback() error {
	if c.db == nil {
		return ErrBadConn
	}
	if c.AutoCommit() {
		return pkgErr(TxStateError, ERROR, "cannot rollback - no transaction is active")
	}
	return c.exec(cStr("ROLLBACK;\x00"))
}

// AutoCommit returns true if the database connection is in auto-commit mode
// (i.e. outside of an explicit transaction started by BEGIN).
// [http://www.sqlite.org/c3ref/get_autocommit.html]
func (c *Conn) AutoCommit() bool {
	if c.db == nil {
		return false
	}
	return C.sqlite3_get_autocommit(c.db) != 0
}

// TxState returns the transaction state of the named schema ("main", "temp",
// or an attached database). An empty schema returns the most advanced state
// across all schemas. Unknown schema names report TxNone.
// [http://www.sqlite.org/c3ref/txn_state.html]
func (c *Conn) TxState(schema string) TxState {
	if c.db == nil {
		return TxNone
	}
	schema += "\x00"
	switch st := C.txn_state(c.db, cStr(schema)); st {
	case C.SQLITE_TXN_NONE, C.SQLITE_TXN_READ, C.SQLITE_TXN_WRITE:
		return TxState(st)
	case -1:
		return TxNone
	default:
		panic(fmt.Sprintf("sqlite3: unknown transaction state (%d)", int(st)))
	}
}

// Savepoint is an active named checkpoint inside a transaction. Savepoints may
// be nested and may be started in auto-commit mode, in which case releasing the
// outermost savepoint commits the transaction.
// [http://www.sqlite.org/lang_savepoint.html]
type Savepoint struct {
	c    *Conn
	name string
	done bool
}

// Savepoint starts a new savepoint with a unique generated name.
func (c *Conn) Savepoint() (*Savepoint, error) {
	if c.db == nil {
		return nil, ErrBadConn
	}
	sp := &Savepoint{c: c, name: uuid.NewString()}
	if err := c.exec(cStr("SAVEPOINT '" + sp.name + "';\x00")); err != nil {
		return nil, err
	}
	return sp, nil
}

// Name returns the generated savepoint name.
func (sp *Savepoint) Name() string {
	return sp.name
}

// Release merges all changes made since the savepoint into the enclosing
// transaction (or commits them if this is the outermost savepoint) and ends
// the savepoint, along with any savepoints nested inside it.
func (sp *Savepoint) Release() error {
	if sp.done {
		return pkgErr(TxStateError, ERROR, "savepoint %s already released", sp.name)
	}
	if sp.c.db == nil {
		return ErrBadConn
	}
	if err := sp.c.exec(cStr("RELEASE '" + sp.name + "';\x00")); err != nil {
		return err
	}
	sp.done = true
	return nil
}

// RollbackTo discards all changes made since the savepoint. The savepoint
// remains active and must still be released.
func (sp *Savepoint) RollbackTo() error {
	if sp.done {
		return pkgErr(TxStateError, ERROR, "savepoint %s already released", sp.name)
	}
	if sp.c.db == nil {
		return ErrBadConn
	}
	return sp.c.exec(cStr("ROLLBACK TO '" + sp.name + "';\x00"))
}

// Transaction runs fn inside a new transaction. The transaction is committed
// or rolled back as selected by fn's TxAction. If fn returns an error or
// panics, the transaction is rolled back and the error or panic is passed on.
// A rollback failure on that path is logged and otherwise ignored. The
// connection is back in auto-commit mode when Transaction returns with an
// error.
func (c *Conn) Transaction(mode TxMode, fn func() (TxAction, error)) (err error) {
	if err = c.BeginMode(mode); err != nil {
		return err
	}
	ok := false
	defer func() {
		if !ok {
			c.abortTx()
		}
	}()
	act, err := fn()
	ok = true
	if err != nil {
		c.abortTx()
		return err
	}
	switch act {
	case TxCommit:
	case TxRollback:
		return c.Rollback()
	default:
		c.abortTx()
		return badTxAction(act)
	}
	if err = c.Commit(); err != nil {
		c.abortTx()
	}
	return err
}

// WithSavepoint runs fn inside a new savepoint, which may be nested within a
// transaction or another savepoint. The savepoint is always released; when fn
// returns TxRollback, fails, or panics, its changes are rolled back first.
func (c *Conn) WithSavepoint(fn func() (TxAction, error)) (err error) {
	sp, err := c.Savepoint()
	if err != nil {
		return err
	}
	ok := false
	defer func() {
		if !ok {
			sp.abort()
		}
	}()
	act, err := fn()
	ok = true
	if err != nil {
		sp.abort()
		return err
	}
	switch act {
	case TxCommit:
	case TxRollback:
		if err = sp.RollbackTo(); err != nil {
			sp.abort()
			return err
		}
	default:
		sp.abort()
		return badTxAction(act)
	}
	if err = sp.Release(); err != nil {
		sp.abort()
	}
	return err
}

// badTxAction returns the error for an action that is neither TxCommit nor
// TxRollback. The changes are rolled back in that case.
func badTxAction(act TxAction) error {
	return pkgErr(MisuseError, MISUSE, "invalid transaction action (%d)", int(act))
}

// abortTx rolls back the current transaction, if any, without reporting
// errors to the caller.
func (c *Conn) abortTx() {
	if c.db == nil || c.AutoCommit() {
		return
	}
	defer c.suppress("rollback")
	if err := c.exec(cStr("ROLLBACK;\x00")); err != nil {
		c.log.Logf("[WARN] rollback failed, %v", err)
	}
}

// abort rolls back and releases the savepoint without reporting errors to the
// caller.
func (sp *Savepoint) abort() {
	c := sp.c
	if sp.done || c.db == nil || c.AutoCommit() {
		return
	}
	defer c.suppress("savepoint rollback")
	if err := c.exec(cStr("ROLLBACK TO '" + sp.name + "';\x00")); err != nil {
		c.log.Logf("[WARN] rollback to savepoint %s failed, %v", sp.name, err)
	}
	if err := sp.Release(); err != nil {
		c.log.Logf("[WARN] release of savepoint %s failed, %v", sp.name, err)
		c.abortTx()
	}
}

// suppress logs and discards a panic raised by a hook during error cleanup.
func (c *Conn) suppress(what string) {
	if r := recover(); r != nil {
		c.log.Logf("[WARN] %s: callback panic suppressed, %v", what, r)
	}
}
