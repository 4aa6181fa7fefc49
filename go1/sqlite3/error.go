// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3

/*
#include "sqlite3.h"
*/
import "C"

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the operation class that produced an Error.
type ErrorKind int

// Error kinds.
const (
	ExecError    ErrorKind = iota // sqlite3_step, sqlite3_exec, and other calls
	CompileError                  // sqlite3_prepare_v2
	BindError                     // sqlite3_bind_* and parameter index checks
	TxStateError                  // BEGIN/COMMIT/ROLLBACK issued in the wrong state
	HookError                     // callback or function registration failed
	MisuseError                   // incorrect use of this package
)

var kindNames = [...]string{
	ExecError:    "exec",
	CompileError: "compile",
	BindError:    "bind",
	TxStateError: "tx state",
	HookError:    "hook",
	MisuseError:  "misuse",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Errors returned for access attempts to closed or invalid objects.
var (
	ErrBadConn   = &Error{MisuseError, MISUSE, "closed or invalid connection", ""}
	ErrBadStmt   = &Error{MisuseError, MISUSE, "closed or null prepared statement", ""}
	ErrBadIO     = &Error{MisuseError, MISUSE, "closed or invalid incremental I/O operation", ""}
	ErrBadBackup = &Error{MisuseError, MISUSE, "closed or invalid backup operation", ""}
)

// Sentinels for errors.Is. An *Error matches a sentinel if its primary result
// code is the same.
var (
	ErrConstraint = errors.New("sqlite3: constraint violation")
	ErrBusy       = errors.New("sqlite3: database is locked")
	ErrInterrupt  = errors.New("sqlite3: interrupted")
)

// Error is returned for all SQLite API result codes other than OK, ROW, and
// DONE.
type Error struct {
	kind ErrorKind
	rc   int
	msg  string
	sql  string
}

// NewError creates a new Error instance using the specified SQLite result code
// and error message.
func NewError(rc int, msg string) *Error {
	return &Error{ExecError, rc, msg, ""}
}

// libErr reports an error originating in SQLite. The error message is obtained
// from the database connection when possible, which may include some
// additional information. It must be called before any other SQLite function
// touches db, since the error state is overwritten by every API call.
// [http://www.sqlite.org/c3ref/errcode.html]
func libErr(kind ErrorKind, rc C.int, db *C.sqlite3) error {
	if db != nil {
		if code := C.sqlite3_extended_errcode(db); code&0xff == rc&0xff {
			return &Error{kind, int(code), C.GoString(C.sqlite3_errmsg(db)), ""}
		}
	}
	return &Error{kind, int(rc), errstr(rc), ""}
}

// pkgErr reports an error originating in this package.
func pkgErr(kind ErrorKind, rc int, msg string, v ...interface{}) error {
	if len(v) > 0 {
		msg = fmt.Sprintf(msg, v...)
	}
	return &Error{kind, rc, msg, ""}
}

// Kind returns the class of operation that failed.
func (err *Error) Kind() ErrorKind {
	return err.kind
}

// Code returns the extended SQLite result code.
func (err *Error) Code() int {
	return err.rc
}

// Primary returns the general result code (the low byte of Code).
func (err *Error) Primary() int {
	return err.rc & 0xff
}

// SQL returns the statement text that failed to compile, if any.
func (err *Error) SQL() string {
	return err.sql
}

// Constraint returns true for execution errors caused by a constraint
// violation (UNIQUE, NOT NULL, CHECK, FOREIGN KEY, and so on).
func (err *Error) Constraint() bool {
	return err.kind == ExecError && err.Primary() == CONSTRAINT
}

// Error implements the error interface.
func (err *Error) Error() string {
	if err.sql != "" {
		return fmt.Sprintf("sqlite3: %s [%d] in %q", err.msg, err.rc, err.sql)
	}
	return fmt.Sprintf("sqlite3: %s [%d]", err.msg, err.rc)
}

// Is allows errors.Is to match an *Error against ErrConstraint, ErrBusy, and
// ErrInterrupt.
func (err *Error) Is(target error) bool {
	switch target {
	case ErrConstraint:
		return err.Primary() == CONSTRAINT
	case ErrBusy:
		return err.Primary() == BUSY
	case ErrInterrupt:
		return err.Primary() == INTERRUPT
	}
	return false
}

// errstr uses the native implementation of sqlite3_errstr.
func errstr(rc C.int) string {
	return C.GoString(C.sqlite3_errstr(rc))
}
