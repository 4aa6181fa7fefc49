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
	"io"
	"time"
	"unsafe"

	"github.com/google/uuid"
)

// ErrRowUsed is the panic value raised when a Row is accessed after the
// statement that produced it was stepped, reset, or closed.
var ErrRowUsed = errors.New("sqlite3: row is no longer valid")

// Row is a read-only view of the current result row of a statement. It is only
// valid until the next call to Step, Reset, or Close on that statement. Using a
// stale Row panics with ErrRowUsed.
type Row struct {
	s   *Stmt
	gen uint64
}

// Row returns the current row or nil if the statement is not positioned on a
// row.
func (s *Stmt) Row() *Row {
	if s.state != hasRow {
		return nil
	}
	return s.row()
}

func (s *Stmt) row() *Row {
	return &Row{s, s.gen}
}

// check panics if the row is no longer current or i is not a valid column
// index.
func (r *Row) check(i int) C.int {
	if r.gen != r.s.gen || r.s.state != hasRow {
		panic(ErrRowUsed)
	}
	if i < 0 || i >= r.s.nCols {
		panic(fmt.Sprintf("sqlite3: column index %d out of range [0, %d)", i, r.s.nCols))
	}
	return C.int(i)
}

// Len returns the number of columns in the row.
func (r *Row) Len() int {
	if r.gen != r.s.gen || r.s.state != hasRow {
		panic(ErrRowUsed)
	}
	return r.s.nCols
}

// Type returns the storage class of column i before any conversion.
func (r *Row) Type(i int) byte {
	return r.s.colType(r.check(i))
}

// IsNull reports whether column i is NULL.
func (r *Row) IsNull(i int) bool {
	return r.Type(i) == NULL
}

// Int64 returns column i converted to an integer using SQLite's rules.
func (r *Row) Int64(i int) int64 {
	c := r.check(i)
	r.s.colType(c)
	return int64(C.sqlite3_column_int64(r.s.stmt, c))
}

// Float returns column i converted to a float using SQLite's rules.
func (r *Row) Float(i int) float64 {
	c := r.check(i)
	r.s.colType(c)
	return float64(C.sqlite3_column_double(r.s.stmt, c))
}

// Text returns a copy of column i converted to text.
func (r *Row) Text(i int) string {
	c := r.check(i)
	r.s.colType(c)
	return text(r.s.stmt, c, true)
}

// Blob returns a copy of column i converted to a BLOB. NULL yields nil.
func (r *Row) Blob(i int) []byte {
	c := r.check(i)
	r.s.colType(c)
	return blob(r.s.stmt, c, true)
}

// Value returns column i in its original storage class.
func (r *Row) Value(i int) Value {
	return r.s.columnValue(r.check(i))
}

// Scan is equivalent to Stmt.Scan on the row's statement.
func (r *Row) Scan(dst ...interface{}) error {
	r.Len()
	return r.s.Scan(dst...)
}

// ColumnValue returns column i (starting at 0) of the current row as a Value.
// Text and BLOB contents are copied.
func (s *Stmt) ColumnValue(i int) (Value, error) {
	if s.state != hasRow {
		return nil, io.EOF
	}
	if i < 0 || i >= s.nCols {
		return nil, pkgErr(MisuseError, RANGE, "column index %d out of range [0, %d)", i, s.nCols)
	}
	return s.columnValue(C.int(i)), nil
}

func (s *Stmt) columnValue(i C.int) Value {
	switch typ := s.colType(i); typ {
	case INTEGER:
		return Integer(C.sqlite3_column_int64(s.stmt, i))
	case FLOAT:
		return Float(C.sqlite3_column_double(s.stmt, i))
	case TEXT:
		return Text(text(s.stmt, i, true))
	case BLOB:
		if b := blob(s.stmt, i, true); b != nil {
			return Blob(b)
		}
		return Blob{}
	case NULL:
		return Null{}
	default:
		panic("sqlite3: unknown column type " + typeName(typ))
	}
}

// Scan retrieves data from the current row, storing successive column values
// into successive arguments. If the last argument is an instance of RowMap,
// then all remaining column/value pairs are assigned into the map. The same row
// may be scanned multiple times. Nil arguments are silently skipped.
// [http://www.sqlite.org/c3ref/column_blob.html]
func (s *Stmt) Scan(dst ...interface{}) error {
	if s.state != hasRow {
		return io.EOF
	}
	n := len(dst)
	if n == 0 {
		return nil
	}
	if n > s.nCols {
		return pkgErr(MisuseError, MISUSE, "cannot assign %d value(s) from %d column(s)",
			n, s.nCols)
	}
	rowMap, _ := dst[n-1].(RowMap)
	if rowMap != nil {
		n--
	}
	for i, v := range dst[:n] {
		if v != nil {
			if err := s.scan(C.int(i), v); err != nil {
				return err
			}
		}
	}
	if rowMap != nil {
		var v interface{}
		for i, col := range s.Columns()[n:] {
			if err := s.scanDynamic(C.int(n+i), &v); err != nil {
				return err
			}
			rowMap[col] = v
		}
	}
	return nil
}

// colType returns the data type code of column i in the current row (one of
// INTEGER, FLOAT, TEXT, BLOB, or NULL). The value becomes undefined after a
// type conversion, so this method must be called for column i to cache the
// original value before using any other sqlite3_column_* functions.
func (s *Stmt) colType(i C.int) (typ byte) {
	if typ = s.colTypes[i]; typ == 0 {
		typ = byte(C.sqlite3_column_type(s.stmt, i))
		s.colTypes[i] = typ
	}
	return
}

// scan scans the value of column i (starting at 0) into v.
func (s *Stmt) scan(i C.int, v interface{}) error {
	if typ := s.colType(i); typ == NULL {
		return s.scanZero(i, v)
	}
	switch v := v.(type) {
	case *interface{}:
		return s.scanDynamic(i, v)
	case *Value:
		*v = s.columnValue(i)
	case *int:
		*v = int(C.sqlite3_column_int64(s.stmt, i))
	case *int64:
		*v = int64(C.sqlite3_column_int64(s.stmt, i))
	case *float64:
		*v = float64(C.sqlite3_column_double(s.stmt, i))
	case *bool:
		*v = C.sqlite3_column_int64(s.stmt, i) != 0
	case *string:
		*v = text(s.stmt, i, true)
	case *[]byte:
		*v = blob(s.stmt, i, true)
	case *time.Time:
		*v = time.Unix(int64(C.sqlite3_column_int64(s.stmt, i)), 0)
	case *uuid.UUID:
		id, err := uuid.ParseBytes(blob(s.stmt, i, false))
		if err != nil {
			return pkgErr(MisuseError, MISMATCH, "column %d: %v", int(i), err)
		}
		*v = id
	case *RawString:
		*v = RawString(text(s.stmt, i, false))
	case *RawBytes:
		*v = RawBytes(blob(s.stmt, i, false))
	case io.Writer:
		if _, err := v.Write(blob(s.stmt, i, false)); err != nil {
			return err
		}
	default:
		return pkgErr(MisuseError, MISUSE, "unscannable type for column %d (%T)", int(i), v)
	}
	return nil
}

// scanZero assigns the zero value to v when the associated column is NULL.
func (s *Stmt) scanZero(i C.int, v interface{}) error {
	switch v := v.(type) {
	case *interface{}:
		*v = nil
	case *Value:
		*v = Null{}
	case *int:
		*v = 0
	case *int64:
		*v = 0
	case *float64:
		*v = 0.0
	case *bool:
		*v = false
	case *string:
		*v = ""
	case *[]byte:
		*v = nil
	case *time.Time:
		*v = time.Time{}
	case *uuid.UUID:
		*v = uuid.Nil
	case *RawString:
		*v = ""
	case *RawBytes:
		*v = nil
	case io.Writer:
	default:
		return pkgErr(MisuseError, MISUSE, "unscannable type for column %d (%T)", int(i), v)
	}
	return nil
}

// scanDynamic scans the value of column i (starting at 0) into v, using the
// column's data type and declaration to select an appropriate representation.
func (s *Stmt) scanDynamic(i C.int, v *interface{}) error {
	switch typ := s.colType(i); typ {
	case INTEGER:
		n := int64(C.sqlite3_column_int64(s.stmt, i))
		*v = n
		if decl := s.DeclTypes()[i]; len(decl) >= 4 {
			switch decl[:4] {
			case "DATE", "TIME":
				*v = time.Unix(n, 0)
			case "BOOL":
				*v = n != 0
			}
		}
	case FLOAT:
		*v = float64(C.sqlite3_column_double(s.stmt, i))
	case TEXT:
		*v = text(s.stmt, i, true)
	case BLOB:
		*v = blob(s.stmt, i, true)
	case NULL:
		*v = nil
	default:
		*v = nil
		panic("sqlite3: unknown column type " + typeName(typ))
	}
	return nil
}

// text returns the value of column i as a string. If copy is false, the string
// will point to memory allocated by SQLite.
func text(stmt *C.sqlite3_stmt, i C.int, copy bool) string {
	p := (*C.char)(unsafe.Pointer(C.sqlite3_column_text(stmt, i)))
	if n := C.sqlite3_column_bytes(stmt, i); n > 0 {
		if copy {
			return C.GoStringN(p, n)
		}
		return goStrN(p, n)
	}
	return ""
}

// blob returns the value of column i as a []byte. If copy is false, the []byte
// will point to memory allocated by SQLite.
func blob(stmt *C.sqlite3_stmt, i C.int, copy bool) []byte {
	if p := C.sqlite3_column_blob(stmt, i); p != nil {
		n := C.sqlite3_column_bytes(stmt, i)
		if copy {
			return C.GoBytes(p, n)
		}
		return goBytes(p, n)
	}
	return nil
}
