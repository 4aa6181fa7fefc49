// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3

/*
#include "sqlite3.h"

// cgo doesn't handle SQLITE_{STATIC,TRANSIENT} pointer constants.
static int bind_text(sqlite3_stmt *s, int i, const char *p, int n, int copy) {
	if (n > 0) {
		return sqlite3_bind_text(s, i, p, n,
			(copy ? SQLITE_TRANSIENT : SQLITE_STATIC));
	}
	return sqlite3_bind_text(s, i, "", 0, SQLITE_STATIC);
}
static int bind_blob(sqlite3_stmt *s, int i, const void *p, int n, int copy) {
	if (n > 0) {
		return sqlite3_bind_blob(s, i, p, n,
			(copy ? SQLITE_TRANSIENT : SQLITE_STATIC));
	}
	// For consistency between []byte(nil) and []byte("")
	return sqlite3_bind_zeroblob(s, i, 0);
}
*/
import "C"

import (
	"database/sql/driver"
	"io"
	"math"
	"net/url"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage tells SQLite whether bound text and blob memory must be copied.
type Storage int

const (
	// Transient makes SQLite copy the value before the bind call returns.
	Transient Storage = iota

	// Static lets SQLite reference the caller's memory, which must remain
	// valid and unmodified until the parameter is rebound or the statement is
	// finalized.
	Static
)

// stmtState is the execution state of a prepared statement.
type stmtState uint8

const (
	unstarted stmtState = iota // Reset or never stepped
	hasRow                     // Last step returned ROW
	done                       // Last step returned DONE or an error
)

// Stmt is a prepared statement handle.
// [http://www.sqlite.org/c3ref/stmt.html]
type Stmt struct {
	Tail string // Uncompiled portion of the SQL string passed to Conn.Prepare

	conn *Conn
	stmt *C.sqlite3_stmt

	text  string    // SQL text used to create this statement (minus the Tail)
	nVars int       // Number of bound parameters (or maximum ?NNN value)
	nCols int       // Number of columns in each row
	state stmtState // Step position
	gen   uint64    // Incremented by every step and reset to invalidate Rows

	varNames []string // Names of bound parameters (or unnamedVars)
	colNames []string // Names of columns in the result set
	colDecls []string // Column type declarations in upper case
	colTypes []byte   // Data type codes for all columns in the current row
}

// newStmt creates a new prepared statement.
func newStmt(c *Conn, sql string) (*Stmt, error) {
	zSQL := sql + "\x00"

	var stmt *C.sqlite3_stmt
	var tail *C.char
	rc := C.sqlite3_prepare_v2(c.db, cStr(zSQL), -1, &stmt, &tail)
	if rc != OK {
		err := libErr(CompileError, rc, c.db)
		err.(*Error).sql = sql
		c.rethrow()
		return nil, err
	}
	c.rethrow()

	// stmt will be nil if sql contained only comments or whitespace. s.Tail may
	// be useful to the caller, so s is still returned without an error.
	s := &Stmt{conn: c, stmt: stmt}
	if stmt != nil {
		if C.sqlite3_db_handle(stmt) != c.db {
			C.sqlite3_finalize(stmt)
			panic("sqlite3: prepared statement belongs to another connection")
		}
		s.nVars = int(C.sqlite3_bind_parameter_count(stmt))
		s.nCols = int(C.sqlite3_column_count(stmt))
		if s.nCols > 0 {
			s.colTypes = make([]byte, s.nCols)
		}
		runtime.SetFinalizer(s, func(s *Stmt) { s.Close() })
	}
	if tail != nil {
		// tail points into zSQL, which is a regular Go string on the heap, so
		// an extra C.GoString allocation can be avoided.
		if off := cStrOffset(zSQL, tail); off >= 0 && off < len(sql) {
			s.Tail = sql[off:]
		}
	}
	return s, nil
}

// Close releases all resources associated with the prepared statement. This
// method can be called at any point in the statement's life cycle.
// [http://www.sqlite.org/c3ref/finalize.html]
func (s *Stmt) Close() error {
	if stmt := s.stmt; stmt != nil {
		// Tail, conn, and text keep their current values
		s.stmt = nil
		s.nVars = 0
		s.nCols = 0
		s.state = done
		s.gen++
		s.varNames = nil
		s.colNames = nil
		s.colDecls = nil
		s.colTypes = nil
		runtime.SetFinalizer(s, nil)
		if rc := C.sqlite3_finalize(stmt); rc != OK {
			return libErr(ExecError, rc, s.conn.db)
		}
	}
	return nil
}

// Conn returns the connection that that created this prepared statement.
func (s *Stmt) Conn() *Conn {
	return s.conn
}

// Valid returns true if the prepared statement can be executed by calling Exec
// or Query. A new prepared statement may not be valid if the SQL string
// contained nothing but comments or whitespace.
func (s *Stmt) Valid() bool {
	return s.stmt != nil
}

// Busy returns true if the prepared statement is in the middle of execution
// with a row available for scanning. It is not necessary to reset a busy
// statement before making another call to Exec or Query.
func (s *Stmt) Busy() bool {
	return s.state == hasRow
}

// ReadOnly returns true if the prepared statement makes no direct changes to
// the content of the database file.
// [http://www.sqlite.org/c3ref/stmt_readonly.html]
func (s *Stmt) ReadOnly() bool {
	return s.stmt == nil || C.sqlite3_stmt_readonly(s.stmt) != 0
}

// String implements fmt.Stringer by returning the SQL text that was used to
// create this prepared statement.
// [http://www.sqlite.org/c3ref/sql.html]
func (s *Stmt) String() string {
	if s.text == "" && s.stmt != nil {
		if text := C.sqlite3_sql(s.stmt); text != nil {
			s.text = C.GoString(text)
		}
	}
	return s.text
}

// NumParams returns the number of bound parameters in the prepared statement.
// This is also the number of arguments required for calling Exec or Query
// without a NamedArgs map.
// [http://www.sqlite.org/c3ref/bind_parameter_count.html]
func (s *Stmt) NumParams() int {
	return s.nVars
}

// NumColumns returns the number of columns produced by the prepared statement.
// [http://www.sqlite.org/c3ref/column_count.html]
func (s *Stmt) NumColumns() int {
	return s.nCols
}

// unnamedVars is assigned to Stmt.varNames if the prepared statement does not
// use named parameters. It just causes s.varNames == nil to evaluate to false.
var unnamedVars = []string{}

// Params returns the names of bound parameters in the prepared statement. Nil
// is returned if the statement does not use named parameters.
// [http://www.sqlite.org/c3ref/bind_parameter_name.html]
func (s *Stmt) Params() []string {
	if s.varNames == nil && s.nVars > 0 {
		var names []string
		for i := 0; i < s.nVars; i++ {
			name := C.sqlite3_bind_parameter_name(s.stmt, C.int(i+1))
			if name == nil {
				names = unnamedVars
				break
			}
			if names == nil {
				names = make([]string, s.nVars)
			}
			names[i] = C.GoString(name)
		}
		s.varNames = names
	}
	if len(s.varNames) == 0 {
		return nil // unnamedVars != nil
	}
	return s.varNames
}

// Columns returns the names of columns produced by the prepared statement.
// [http://www.sqlite.org/c3ref/column_name.html]
func (s *Stmt) Columns() []string {
	if s.colNames == nil && s.nCols > 0 {
		names := make([]string, s.nCols)
		for i := range names {
			name := C.sqlite3_column_name(s.stmt, C.int(i))
			if name != nil {
				names[i] = C.GoString(name)
			}
		}
		s.colNames = names
	}
	return s.colNames
}

// DeclTypes returns the type declarations of columns produced by the prepared
// statement. The type declarations are normalized to upper case.
// [http://www.sqlite.org/c3ref/column_decltype.html]
func (s *Stmt) DeclTypes() []string {
	if s.colDecls == nil && s.nCols > 0 {
		decls := make([]string, s.nCols)
		for i := range decls {
			decl := C.sqlite3_column_decltype(s.stmt, C.int(i))
			if decl != nil {
				decls[i] = strings.ToUpper(C.GoString(decl))
			}
		}
		s.colDecls = decls
	}
	return s.colDecls
}

// DataTypes returns the data type codes of columns in the current row. Possible
// data types are INTEGER, FLOAT, TEXT, BLOB, and NULL. These represent the
// actual storage classes used by SQLite to store each value. The returned slice
// should not be modified.
// [http://www.sqlite.org/c3ref/column_blob.html]
func (s *Stmt) DataTypes() []byte {
	if s.state != hasRow {
		return nil
	}
	for i := range s.colTypes {
		s.colType(C.int(i))
	}
	return s.colTypes
}

// Bind binds v to parameter i (starting at 1). A nil v, a nil pointer, and
// Null bind NULL. Bindings remain in effect until they are replaced or cleared
// by ClearBindings; Reset does not clear them.
// [http://www.sqlite.org/c3ref/bind_blob.html]
func (s *Stmt) Bind(i int, v interface{}) error {
	if s.stmt == nil {
		return ErrBadStmt
	}
	if i < 1 || i > s.nVars {
		return pkgErr(BindError, RANGE, "parameter index %d out of range [1, %d]", i, s.nVars)
	}
	return s.bind(C.int(i), v, "")
}

// BindAll binds args to all statement parameters. Args must be either a single
// NamedArgs map or one value for each parameter.
func (s *Stmt) BindAll(args ...interface{}) error {
	if s.stmt == nil {
		return ErrBadStmt
	}
	var err error
	if named := namedArgs(args); named != nil {
		err = s.bindNamed(named)
	} else {
		err = s.bindUnnamed(args)
	}
	if err != nil && s.nVars > 0 {
		C.sqlite3_clear_bindings(s.stmt)
	}
	return err
}

// ClearBindings resets all parameters to NULL.
// [http://www.sqlite.org/c3ref/clear_bindings.html]
func (s *Stmt) ClearBindings() error {
	if s.stmt == nil {
		return ErrBadStmt
	}
	if rc := C.sqlite3_clear_bindings(s.stmt); rc != OK {
		return libErr(BindError, rc, s.conn.db)
	}
	return nil
}

// Step evaluates the next step in the statement's program. It returns true if a
// new row is available and false when the statement is done. A done statement
// keeps returning false until Reset is called.
// [http://www.sqlite.org/c3ref/step.html]
func (s *Stmt) Step() (bool, error) {
	if s.stmt == nil {
		return false, ErrBadStmt
	}
	if s.state == done {
		return false, nil
	}
	err := s.step()
	return s.state == hasRow, err
}

// Execute steps the statement until it is done, discarding any rows.
func (s *Stmt) Execute() error {
	if s.stmt == nil {
		return ErrBadStmt
	}
	for s.state != done {
		if err := s.step(); err != nil {
			return err
		}
	}
	return nil
}

// ForEachRow steps the statement until it is done, calling f for each row. The
// Row is only valid until f returns. Iteration stops at the first error,
// whether it comes from SQLite or from f, and that error is returned. The
// statement is not stepped again after f fails.
func (s *Stmt) ForEachRow(f func(r *Row) error) error {
	if s.stmt == nil {
		return ErrBadStmt
	}
	for {
		if s.state != hasRow {
			if s.state == done {
				return nil
			}
			if err := s.step(); err != nil {
				return err
			}
			continue
		}
		if err := f(s.row()); err != nil {
			return err
		}
		if err := s.step(); err != nil {
			return err
		}
	}
}

// Exec resets the statement, binds args (if any), and executes it to
// completion. No rows are returned. Without args the current bindings are
// reused.
// [http://www.sqlite.org/c3ref/step.html]
func (s *Stmt) Exec(args ...interface{}) error {
	if s.stmt == nil {
		return ErrBadStmt
	}
	if err := s.exec(args); err != nil {
		return err
	}
	return s.Execute()
}

// Query executes the prepared statement and makes the first returned row
// available for scanning. io.EOF is returned if the query did not return any
// rows. Without args the current bindings are reused.
func (s *Stmt) Query(args ...interface{}) error {
	if s.stmt == nil {
		return ErrBadStmt
	}
	if err := s.exec(args); err != nil {
		return err
	}
	if err := s.step(); err != nil {
		return err
	}
	if s.state != hasRow {
		return io.EOF
	}
	return nil
}

// Next makes the next row available for scanning. io.EOF is returned if no
// more rows are available.
func (s *Stmt) Next() error {
	if s.state == hasRow {
		if err := s.step(); err != nil {
			return err
		}
		if s.state == hasRow {
			return nil
		}
	}
	return io.EOF
}

// Reset returns the prepared statement to its initial state, ready to be
// re-executed. Parameter bindings are not cleared. If the most recent step
// failed, the same error is returned here (for example, a constraint
// violation).
// [http://www.sqlite.org/c3ref/reset.html]
func (s *Stmt) Reset() error {
	if s.stmt == nil {
		return ErrBadStmt
	}
	s.state = unstarted
	s.gen++
	if rc := C.sqlite3_reset(s.stmt); rc != OK {
		return libErr(ExecError, rc, s.conn.db)
	}
	return nil
}

// Status returns the current value of a statement performance counter,
// specified by one of the STMTSTATUS constants. If reset is true, the value is
// reset back down to 0 after retrieval.
// [http://www.sqlite.org/c3ref/stmt_status.html]
func (s *Stmt) Status(op int, reset bool) int {
	if s.stmt == nil {
		return 0
	}
	return int(C.sqlite3_stmt_status(s.stmt, C.int(op), cBool(reset)))
}

// exec quietly resets the statement and binds new parameter values, if any.
func (s *Stmt) exec(args []interface{}) error {
	if s.state != unstarted {
		// The error from a previous step is not relevant to the new execution
		s.Reset()
	}
	if len(args) > 0 {
		return s.BindAll(args...)
	}
	return nil
}

// bindNamed binds statement parameters using the name/value pairs in args.
func (s *Stmt) bindNamed(args NamedArgs) error {
	if s.nVars == 0 {
		return nil
	}
	names := s.Params()
	if names == nil {
		return pkgErr(BindError, MISUSE, "statement does not accept named arguments")
	}
	for i, name := range names {
		if err := s.bind(C.int(i+1), args[name], name); err != nil {
			return err
		}
	}
	return nil
}

// bindUnnamed binds statement parameters using successive values in args.
func (s *Stmt) bindUnnamed(args []interface{}) error {
	if len(args) != s.nVars {
		return pkgErr(BindError, MISUSE, "statement requires %d argument(s), %d given",
			s.nVars, len(args))
	}
	for i, v := range args {
		if err := s.bind(C.int(i+1), v, ""); err != nil {
			return err
		}
	}
	return nil
}

// bind binds statement parameter i (starting at 1) to the value v. The
// parameter name is only used for error reporting. Every derived type is
// reduced to one of the primitive bind calls below.
func (s *Stmt) bind(i C.int, v interface{}, name string) error {
	switch v := v.(type) {
	case nil:
		return s.bindNull(i)
	case Value:
		switch v := v.(type) {
		case Integer:
			return s.bindInt64(i, int64(v))
		case Float:
			return s.bindFloat(i, float64(v))
		case Text:
			return s.bindText(i, string(v), Transient)
		case Blob:
			return s.bindBlob(i, v, Transient)
		case Null:
			return s.bindNull(i)
		}
	case int:
		return s.bindInt64(i, int64(v))
	case int8:
		return s.bindInt64(i, int64(v))
	case int16:
		return s.bindInt64(i, int64(v))
	case int32:
		return s.bindInt64(i, int64(v))
	case int64:
		return s.bindInt64(i, v)
	case uint:
		return s.bindUint64(i, uint64(v), name)
	case uint8:
		return s.bindInt64(i, int64(v))
	case uint16:
		return s.bindInt64(i, int64(v))
	case uint32:
		return s.bindInt64(i, int64(v))
	case uint64:
		return s.bindUint64(i, v, name)
	case float32:
		return s.bindFloat(i, float64(v))
	case float64:
		return s.bindFloat(i, v)
	case bool:
		if v {
			return s.bindInt64(i, 1)
		}
		return s.bindInt64(i, 0)
	case string:
		return s.bindText(i, v, Transient)
	case []byte:
		return s.bindBlob(i, v, Transient)
	case time.Time:
		return s.bindInt64(i, v.Unix())
	case RawString:
		return s.bindText(i, string(v), Static)
	case RawBytes:
		return s.bindBlob(i, v, Static)
	case ZeroBlob:
		return s.check(C.sqlite3_bind_zeroblob(s.stmt, i, C.int(v)))
	case uuid.UUID:
		return s.bindText(i, v.String(), Transient)
	case *url.URL:
		if v == nil {
			return s.bindNull(i)
		}
		return s.bindText(i, v.String(), Transient)
	case url.URL:
		return s.bindText(i, v.String(), Transient)
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return pkgErr(BindError, MISMATCH, "%s: %v", paramName(i, name), err)
		}
		if _, ok := dv.(driver.Valuer); ok {
			break
		}
		return s.bind(i, dv, name)
	default:
		// Optional values: a nil pointer is NULL, otherwise bind the target
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return s.bindNull(i)
			}
			return s.bind(i, rv.Elem().Interface(), name)
		}
	}
	return pkgErr(BindError, MISMATCH, "unsupported type for %s (%T)", paramName(i, name), v)
}

func (s *Stmt) bindNull(i C.int) error {
	return s.check(C.sqlite3_bind_null(s.stmt, i))
}

func (s *Stmt) bindInt64(i C.int, v int64) error {
	return s.check(C.sqlite3_bind_int64(s.stmt, i, C.sqlite3_int64(v)))
}

func (s *Stmt) bindUint64(i C.int, v uint64, name string) error {
	if v > math.MaxInt64 {
		return pkgErr(BindError, RANGE, "%s overflows int64 (%d)", paramName(i, name), v)
	}
	return s.bindInt64(i, int64(v))
}

func (s *Stmt) bindFloat(i C.int, v float64) error {
	return s.check(C.sqlite3_bind_double(s.stmt, i, C.double(v)))
}

func (s *Stmt) bindText(i C.int, v string, st Storage) error {
	return s.check(C.bind_text(s.stmt, i, cStr(v), C.int(len(v)), cBool(st == Transient)))
}

func (s *Stmt) bindBlob(i C.int, v []byte, st Storage) error {
	return s.check(C.bind_blob(s.stmt, i, cBytes(v), C.int(len(v)), cBool(st == Transient)))
}

// check converts the result code of a bind call into an error.
func (s *Stmt) check(rc C.int) error {
	if rc != OK {
		return libErr(BindError, rc, s.conn.db)
	}
	return nil
}

// paramName describes parameter i for error messages.
func paramName(i C.int, name string) string {
	if name != "" {
		return name
	}
	return "parameter " + strconv.Itoa(int(i))
}

// step evaluates the next step in the statement's program. Errors leave the
// statement in the done state until it is reset.
func (s *Stmt) step() error {
	rc := C.sqlite3_step(s.stmt)
	s.gen++
	var err error
	switch rc {
	case ROW:
		s.state = hasRow
		// Clear previous data types and reload new ones on demand
		for i := range s.colTypes {
			s.colTypes[i] = 0
		}
	case DONE:
		s.state = done
	default:
		s.state = done
		err = libErr(ExecError, rc, s.conn.db)
	}
	s.conn.rethrow()
	return err
}

// namedArgs checks if args contains exactly one NamedArgs map and returns it.
func namedArgs(args []interface{}) (named NamedArgs) {
	if len(args) == 1 {
		named, _ = args[0].(NamedArgs)
	}
	return
}
