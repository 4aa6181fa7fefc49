// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3

/*
#include "sqlite3.h"
#include <stdint.h>
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"strings"
	"unsafe"
)

// NamedArgs is a name/value map of arguments passed to a prepared statement
// that uses ?NNN, :AAA, @AAA, and/or $AAA parameter formats. Name matching is
// case-sensitive and the prefix character (one of [?:@$]) must be included in
// the name. Names that are missing from the map are treated as NULL. Names
// that are not used in the prepared statement are ignored.
//
// It is not possible to mix named and anonymous ("?") parameters in the same
// statement.
// [http://www.sqlite.org/lang_expr.html#varparam]
type NamedArgs map[string]interface{}

// RowMap may be passed as the last (or only) argument to Stmt.Scan to create a
// map of all remaining column/value pairs in the current row. The map is not
// cleared before being populated with new column values. Assignment is
// performed in left-to-right column order, and values may be overwritten if
// the query returns two or more columns with identical names.
type RowMap map[string]interface{}

// RawString and RawBytes are special string and []byte types that may be used
// for database input and output without the cost of an extra copy operation.
//
// When used as an argument to a statement, the contents are bound using
// the Static storage hint, meaning that the original memory must remain valid
// and unmodified until either the statement is reset or a new value is bound.
//
// When used for retrieving query output, the internal string/[]byte pointer is
// set to reference memory belonging to SQLite. The memory remains valid until
// another method is called on the Stmt object and should not be modified.
type (
	RawString string
	RawBytes  []byte
)

// Copy returns a Go-managed copy of s.
func (s RawString) Copy() string {
	return strings.Clone(string(s))
}

// Copy returns a Go-managed copy of b.
func (b RawBytes) Copy() []byte {
	if len(b) == 0 {
		if b == nil {
			return nil
		}
		return []byte("")
	}
	return append([]byte(nil), b...)
}

// ZeroBlob is a special argument type used to allocate a zero-filled BLOB of
// the specified length. The BLOB can then be opened for incremental I/O to
// efficiently transfer a large amount of data. The maximum BLOB size can be
// queried with Conn.Limit(LIMIT_LENGTH, -1).
type ZeroBlob int

// BusyFunc is a callback function invoked by SQLite when it is unable to
// acquire a lock on a table. Count is the number of times that the callback
// has been invoked for this locking event so far. If the function returns
// false, then the operation is aborted with BUSY or IOERR_BLOCKED error code.
// Otherwise, SQLite will make another attempt to acquire the lock.
// [http://www.sqlite.org/c3ref/busy_handler.html]
type BusyFunc func(count int) (retry bool)

// CommitFunc is a callback function invoked by SQLite before a transaction is
// committed. If the function returns false, the transaction is rolled back
// instead and the COMMIT fails with CONSTRAINT_COMMITHOOK.
// [http://www.sqlite.org/c3ref/commit_hook.html]
type CommitFunc func() (allow bool)

// RollbackFunc is a callback function invoked by SQLite when a transaction is
// rolled back.
// [http://www.sqlite.org/c3ref/commit_hook.html]
type RollbackFunc func()

// UpdateFunc is a callback function invoked by SQLite for each row that is
// inserted, updated, or deleted in a rowid table.
// [http://www.sqlite.org/c3ref/update_hook.html]
type UpdateFunc func(ch Change)

// WALFunc is a callback function invoked by SQLite after each commit to a
// database in WAL mode. Pages is the number of frames in the log file.
// [http://www.sqlite.org/c3ref/wal_hook.html]
type WALFunc func(db string, pages int)

// ChangeOp identifies the kind of row change reported to an UpdateFunc.
type ChangeOp int

func (op ChangeOp) String() string {
	switch op {
	case INSERT:
		return "INSERT"
	case DELETE:
		return "DELETE"
	case UPDATE:
		return "UPDATE"
	}
	return fmt.Sprintf("ChangeOp(%d)", int(op))
}

// Change describes a single row mutation observed by the update hook.
type Change struct {
	Op    ChangeOp
	DB    string // Database name ("main", "temp", or an ATTACH alias)
	Table string
	RowID int64
}

// callback is the context box behind every cgo.Handle given to SQLite as
// callback user data. The handle value itself is the void* that SQLite stores.
type callback struct {
	st *connState
	fn interface{}
}

// connState is the part of Conn that callbacks may touch. It is kept separate
// so that live handles do not prevent an abandoned Conn from being finalized.
type connState struct {
	panicked *callbackPanic
}

// newHandle boxes fn and returns the handle value to be passed to SQLite.
func newHandle(c *Conn, fn interface{}) C.uintptr_t {
	return C.uintptr_t(cgo.NewHandle(&callback{c.st, fn}))
}

// handleFunc returns the function boxed by h or nil if h is zero.
func handleFunc(h C.uintptr_t) interface{} {
	if h == 0 {
		return nil
	}
	return cgo.Handle(h).Value().(*callback).fn
}

// freeHandle releases a handle returned by newHandle. Zero is ignored.
func freeHandle(h C.uintptr_t) {
	if h != 0 {
		cgo.Handle(h).Delete()
	}
}

// getCallback returns the callback box referenced by SQLite user data.
func getCallback(p unsafe.Pointer) *callback {
	return cgo.Handle(uintptr(p)).Value().(*callback)
}

// catch stores a panic raised by a hook so that it can be re-raised by the Go
// code that entered SQLite. Unwinding through C frames would leave the
// connection mutex locked.
func (cb *callback) catch() {
	if r := recover(); r != nil && cb.st.panicked == nil {
		cb.st.panicked = &callbackPanic{r}
	}
}

// callbackPanic wraps a value recovered inside a callback.
type callbackPanic struct {
	v interface{}
}

//export go_busy_handler
func go_busy_handler(data unsafe.Pointer, count C.int) (retry C.int) {
	cb := getCallback(data)
	defer cb.catch()
	return cBool(cb.fn.(BusyFunc)(int(count)))
}

//export go_commit_hook
func go_commit_hook(data unsafe.Pointer) (abort C.int) {
	abort = 1
	cb := getCallback(data)
	defer cb.catch()
	return cBool(!cb.fn.(CommitFunc)())
}

//export go_rollback_hook
func go_rollback_hook(data unsafe.Pointer) {
	cb := getCallback(data)
	defer cb.catch()
	cb.fn.(RollbackFunc)()
}

//export go_update_hook
func go_update_hook(data unsafe.Pointer, op C.int, db, tbl *C.char, row C.sqlite3_int64) {
	cb := getCallback(data)
	defer cb.catch()
	cb.fn.(UpdateFunc)(Change{ChangeOp(op), C.GoString(db), C.GoString(tbl), int64(row)})
}

//export go_wal_hook
func go_wal_hook(data unsafe.Pointer, conn *C.sqlite3, db *C.char, pages C.int) C.int {
	cb := getCallback(data)
	defer cb.catch()
	cb.fn.(WALFunc)(C.GoString(db), int(pages))
	return OK
}

//export go_destroy_handle
func go_destroy_handle(data unsafe.Pointer) {
	cgo.Handle(uintptr(data)).Delete()
}

//export go_func
func go_func(ctx *C.sqlite3_context, argc C.int, argv **C.sqlite3_value) {
	cb := getCallback(C.sqlite3_user_data(ctx))
	defer resultPanic(ctx)
	v, err := cb.fn.(ScalarFunc)(funcArgs(argc, argv))
	setResult(ctx, v, err)
}

//export go_step
func go_step(ctx *C.sqlite3_context, argc C.int, argv **C.sqlite3_value) {
	defer resultPanic(ctx)
	agg := aggInstance(ctx, true)
	if agg == nil {
		C.sqlite3_result_error_nomem(ctx)
		return
	}
	if err := agg.Step(funcArgs(argc, argv)); err != nil {
		setResult(ctx, nil, err)
	}
}

//export go_inverse
func go_inverse(ctx *C.sqlite3_context, argc C.int, argv **C.sqlite3_value) {
	defer resultPanic(ctx)
	agg, _ := aggInstance(ctx, true).(WindowAggregate)
	if agg == nil {
		C.sqlite3_result_error_nomem(ctx)
		return
	}
	if err := agg.Inverse(funcArgs(argc, argv)); err != nil {
		setResult(ctx, nil, err)
	}
}

//export go_value
func go_value(ctx *C.sqlite3_context) {
	defer resultPanic(ctx)
	agg, _ := aggInstance(ctx, true).(WindowAggregate)
	if agg == nil {
		C.sqlite3_result_error_nomem(ctx)
		return
	}
	v, err := agg.Value()
	setResult(ctx, v, err)
}

//export go_final
func go_final(ctx *C.sqlite3_context) {
	defer resultPanic(ctx)
	h := aggHandle(ctx, false)
	if h == nil || *h == 0 {
		// No rows in the group, so Step was never called
		agg := getCallback(C.sqlite3_user_data(ctx)).fn.(aggFactory)()
		if agg == nil {
			panic("aggregate factory returned nil")
		}
		v, err := agg.Final()
		setResult(ctx, v, err)
		return
	}
	agg := cgo.Handle(*h).Value().(Aggregate)
	defer func() {
		cgo.Handle(*h).Delete()
		*h = 0
	}()
	v, err := agg.Final()
	setResult(ctx, v, err)
}

// cStr returns a pointer to the first byte in s.
func cStr(s string) *C.char {
	return (*C.char)(unsafe.Pointer(unsafe.StringData(s)))
}

// cStrOffset returns the offset of p in s or -1 if p doesn't point into s.
func cStrOffset(s string, p *C.char) int {
	if off := uintptr(unsafe.Pointer(p)) - uintptr(unsafe.Pointer(cStr(s))); off < uintptr(len(s)) {
		return int(off)
	}
	return -1
}

// cBytes returns a pointer to the first byte in b.
func cBytes(b []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b))
}

// cBool returns a C representation of a Go bool (false = 0, true = 1).
func cBool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

// goStrN returns a Go representation of an n-byte C string without copying.
func goStrN(p *C.char, n C.int) string {
	if n <= 0 {
		return ""
	}
	return unsafe.String((*byte)(unsafe.Pointer(p)), int(n))
}

// goBytes returns a Go representation of an n-byte C array without copying.
func goBytes(p unsafe.Pointer, n C.int) []byte {
	if n <= 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(p), int(n))
}
