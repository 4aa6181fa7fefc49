// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3

/*
#include "sqlite3.h"
#include <stdint.h>

// Go callbacks are implemented in util.go.
extern void go_func(sqlite3_context*, int, sqlite3_value**);
extern void go_step(sqlite3_context*, int, sqlite3_value**);
extern void go_inverse(sqlite3_context*, int, sqlite3_value**);
extern void go_value(sqlite3_context*);
extern void go_final(sqlite3_context*);
extern void go_destroy_handle(void*);

// SQLite calls xDestroy even if registration fails, so handle h is always
// owned by SQLite after these calls.
static int create_function(sqlite3 *db, const char *name, int n, int flags, uintptr_t h) {
	return sqlite3_create_function_v2(db, name, n, SQLITE_UTF8|flags, (void*)h,
		go_func, 0, 0, go_destroy_handle);
}
static int create_aggregate(sqlite3 *db, const char *name, int n, int flags, uintptr_t h) {
	return sqlite3_create_function_v2(db, name, n, SQLITE_UTF8|flags, (void*)h,
		0, go_step, go_final, go_destroy_handle);
}
static int create_window(sqlite3 *db, const char *name, int n, int flags, uintptr_t h) {
	return sqlite3_create_window_function(db, name, n, SQLITE_UTF8|flags, (void*)h,
		go_step, go_final, go_value, go_inverse, go_destroy_handle);
}
static int remove_function(sqlite3 *db, const char *name, int n) {
	return sqlite3_create_function_v2(db, name, n, SQLITE_UTF8, 0, 0, 0, 0, 0);
}

static void result_text(sqlite3_context *ctx, const char *p, int n) {
	sqlite3_result_text(ctx, (n > 0 ? p : ""), n, SQLITE_TRANSIENT);
}
static void result_blob(sqlite3_context *ctx, const void *p, int n) {
	if (n > 0) {
		sqlite3_result_blob(ctx, p, n, SQLITE_TRANSIENT);
	} else {
		sqlite3_result_zeroblob(ctx, 0);
	}
}

static uintptr_t *agg_handle(sqlite3_context *ctx, int create) {
	return (uintptr_t*)sqlite3_aggregate_context(ctx, (create ? sizeof(uintptr_t) : 0));
}
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"
)

// ScalarFunc implements an SQL function that maps its arguments to a single
// result. A non-nil error is reported to SQLite as the function result and
// aborts the statement.
// [http://www.sqlite.org/appfunc.html]
type ScalarFunc func(args []Value) (Value, error)

// Aggregate accumulates rows of a group. A new instance is created for each
// group, Step is called once per row, and Final returns the result. The
// instance is discarded after Final.
type Aggregate interface {
	Step(args []Value) error
	Final() (Value, error)
}

// WindowAggregate is an Aggregate that can also be used as an aggregate window
// function. Inverse removes the oldest row from the current window and Value
// returns the result for the current window without ending the instance.
// [http://www.sqlite.org/windowfunctions.html#udfwinfunc]
type WindowAggregate interface {
	Aggregate
	Inverse(args []Value) error
	Value() (Value, error)
}

// aggFactory creates per-group instances of a registered aggregate.
type aggFactory func() Aggregate

// FuncFlag is a function property reported to the query planner.
// [http://www.sqlite.org/c3ref/c_deterministic.html]
type FuncFlag int

const (
	// Deterministic functions always return the same result for the same
	// arguments, which lets SQLite factor them out of loops and use them in
	// indexes.
	Deterministic FuncFlag = 1 << iota

	// DirectOnly functions may not be invoked from triggers, views, or schema
	// structures such as CHECK constraints.
	DirectOnly

	// Subtype functions may call sqlite3_result_subtype.
	Subtype

	// Innocuous functions have no side effects and cannot leak information.
	Innocuous
)

// DefaultFuncFlags is used when no flags are given to CreateFunction,
// CreateAggregate, or CreateWindow.
const DefaultFuncFlags = Deterministic | DirectOnly

// funcFlags combines flags into the corresponding SQLITE_* bits.
func funcFlags(flags []FuncFlag) C.int {
	var ff FuncFlag
	if len(flags) == 0 {
		ff = DefaultFuncFlags
	}
	for _, f := range flags {
		ff |= f
	}
	var cf C.int
	if ff&Deterministic != 0 {
		cf |= C.SQLITE_DETERMINISTIC
	}
	if ff&DirectOnly != 0 {
		cf |= C.SQLITE_DIRECTONLY
	}
	if ff&Subtype != 0 {
		cf |= C.SQLITE_SUBTYPE
	}
	if ff&Innocuous != 0 {
		cf |= C.SQLITE_INNOCUOUS
	}
	return cf
}

// CreateFunction registers f as the SQL function name taking nArg arguments
// (-1 for any number). An existing function with the same name and number of
// arguments is replaced.
// [http://www.sqlite.org/c3ref/create_function.html]
func (c *Conn) CreateFunction(name string, nArg int, f ScalarFunc, flags ...FuncFlag) error {
	if c.db == nil {
		return ErrBadConn
	}
	if f == nil {
		return pkgErr(HookError, MISUSE, "nil function %q", name)
	}
	name += "\x00"
	rc := C.create_function(c.db, cStr(name), C.int(nArg), funcFlags(flags), newHandle(c, f))
	return c.funcErr(rc, name)
}

// CreateAggregate registers an aggregate SQL function. newAgg is called to
// create the state for each group.
func (c *Conn) CreateAggregate(name string, nArg int, newAgg func() Aggregate, flags ...FuncFlag) error {
	if c.db == nil {
		return ErrBadConn
	}
	if newAgg == nil {
		return pkgErr(HookError, MISUSE, "nil aggregate factory %q", name)
	}
	name += "\x00"
	rc := C.create_aggregate(c.db, cStr(name), C.int(nArg), funcFlags(flags),
		newHandle(c, aggFactory(newAgg)))
	return c.funcErr(rc, name)
}

// CreateWindow registers an aggregate window function. The function can also
// be used as a plain aggregate.
// [http://www.sqlite.org/c3ref/create_function.html]
func (c *Conn) CreateWindow(name string, nArg int, newAgg func() WindowAggregate, flags ...FuncFlag) error {
	if c.db == nil {
		return ErrBadConn
	}
	if newAgg == nil {
		return pkgErr(HookError, MISUSE, "nil window factory %q", name)
	}
	name += "\x00"
	f := aggFactory(func() Aggregate { return newAgg() })
	rc := C.create_window(c.db, cStr(name), C.int(nArg), funcFlags(flags), newHandle(c, f))
	return c.funcErr(rc, name)
}

// RemoveFunction deletes the SQL function name taking nArg arguments.
func (c *Conn) RemoveFunction(name string, nArg int) error {
	if c.db == nil {
		return ErrBadConn
	}
	name += "\x00"
	return c.funcErr(C.remove_function(c.db, cStr(name), C.int(nArg)), name)
}

func (c *Conn) funcErr(rc C.int, name string) error {
	if rc != OK {
		return libErr(HookError, rc, c.db)
	}
	c.log.Logf("[DEBUG] function %s updated", name[:len(name)-1])
	return nil
}

// funcArgs converts native function arguments into Values.
func funcArgs(argc C.int, argv **C.sqlite3_value) []Value {
	if argc <= 0 {
		return nil
	}
	args := make([]Value, argc)
	for i, v := range unsafe.Slice(argv, int(argc)) {
		args[i] = valueOf(v)
	}
	return args
}

// valueOf copies a protected sqlite3_value into a Value.
func valueOf(v *C.sqlite3_value) Value {
	switch typ := C.sqlite3_value_type(v); typ {
	case INTEGER:
		return Integer(C.sqlite3_value_int64(v))
	case FLOAT:
		return Float(C.sqlite3_value_double(v))
	case TEXT:
		p := (*C.char)(unsafe.Pointer(C.sqlite3_value_text(v)))
		return Text(C.GoStringN(p, C.sqlite3_value_bytes(v)))
	case BLOB:
		p := C.sqlite3_value_blob(v)
		if n := C.sqlite3_value_bytes(v); n > 0 {
			return Blob(C.GoBytes(p, n))
		}
		return Blob{}
	case NULL:
		return Null{}
	default:
		panic("sqlite3: unknown value type " + typeName(byte(typ)))
	}
}

// setResult reports the outcome of a function call to SQLite. A nil v with a
// nil err is NULL.
func setResult(ctx *C.sqlite3_context, v Value, err error) {
	if err != nil {
		resultError(ctx, err.Error())
		if e, ok := err.(*Error); ok && e.rc != OK {
			C.sqlite3_result_error_code(ctx, C.int(e.rc))
		}
		return
	}
	switch v := v.(type) {
	case nil, Null:
		C.sqlite3_result_null(ctx)
	case Integer:
		C.sqlite3_result_int64(ctx, C.sqlite3_int64(v))
	case Float:
		C.sqlite3_result_double(ctx, C.double(v))
	case Text:
		C.result_text(ctx, cStr(string(v)), C.int(len(v)))
	case Blob:
		C.result_blob(ctx, cBytes(v), C.int(len(v)))
	default:
		panic(fmt.Sprintf("sqlite3: unknown value type %T", v))
	}
}

func resultError(ctx *C.sqlite3_context, msg string) {
	msg += "\x00"
	C.sqlite3_result_error(ctx, cStr(msg), -1)
}

// resultPanic converts a panic in a function implementation into an error
// result. It must be deferred directly.
func resultPanic(ctx *C.sqlite3_context) {
	if r := recover(); r != nil {
		resultError(ctx, fmt.Sprint("sqlite3: function panic: ", r))
	}
}

// aggHandle returns the aggregate context slot of ctx, allocating it if create
// is true. Nil is returned if allocation fails or, with create false, if Step
// was never called.
func aggHandle(ctx *C.sqlite3_context, create bool) *C.uintptr_t {
	return C.agg_handle(ctx, cBool(create))
}

// aggInstance returns the Aggregate for the group being evaluated, creating it
// on first use.
func aggInstance(ctx *C.sqlite3_context, create bool) Aggregate {
	h := aggHandle(ctx, create)
	if h == nil {
		return nil
	}
	if *h != 0 {
		return cgo.Handle(*h).Value().(Aggregate)
	}
	if !create {
		return nil
	}
	agg := getCallback(C.sqlite3_user_data(ctx)).fn.(aggFactory)()
	if agg == nil {
		panic("aggregate factory returned nil")
	}
	*h = C.uintptr_t(cgo.NewHandle(agg))
	return agg
}
