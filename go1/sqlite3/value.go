// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3

import (
	"bytes"
	"fmt"
	"strconv"
)

// Value is a single SQLite value of one of the five fundamental storage
// classes. The set of implementations is closed: Integer, Float, Text, Blob,
// and Null.
//
// Equal follows SQL semantics for NULL. A Null value is not equal to anything,
// including another Null, so v.Equal(v) is false when v is Null. Values of
// different storage classes are never equal (Integer(1) != Float(1)).
type Value interface {
	// Type returns INTEGER, FLOAT, TEXT, BLOB, or NULL.
	Type() byte

	// Equal reports whether v holds the same storage class and contents.
	Equal(v Value) bool

	fmt.Stringer
	value()
}

// Integer is a 64-bit signed INTEGER value.
type Integer int64

// Float is a 64-bit IEEE floating point value.
type Float float64

// Text is a UTF-8 TEXT value.
type Text string

// Blob is a BLOB value. Use NewBlob to create a copy of an existing slice.
type Blob []byte

// Null is the SQL NULL value.
type Null struct{}

// NewBlob returns a Blob holding a private copy of b. A nil b yields an empty,
// non-nil Blob, because SQLite does not distinguish the two.
func NewBlob(b []byte) Blob {
	return append(Blob{}, b...)
}

func (Integer) Type() byte { return INTEGER }
func (Float) Type() byte   { return FLOAT }
func (Text) Type() byte    { return TEXT }
func (Blob) Type() byte    { return BLOB }
func (Null) Type() byte    { return NULL }

func (Integer) value() {}
func (Float) value()   {}
func (Text) value()    {}
func (Blob) value()    {}
func (Null) value()    {}

func (v Integer) Equal(u Value) bool {
	w, ok := u.(Integer)
	return ok && v == w
}

func (v Float) Equal(u Value) bool {
	w, ok := u.(Float)
	return ok && v == w
}

func (v Text) Equal(u Value) bool {
	w, ok := u.(Text)
	return ok && v == w
}

func (v Blob) Equal(u Value) bool {
	w, ok := u.(Blob)
	return ok && bytes.Equal(v, w)
}

// Equal always returns false.
func (Null) Equal(Value) bool { return false }

func (v Integer) String() string { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string   { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Text) String() string    { return string(v) }
func (v Blob) String() string    { return fmt.Sprintf("x'%X'", []byte(v)) }
func (Null) String() string      { return "NULL" }

// Interface converts v into one of the plain Go types int64, float64, string,
// []byte, or nil.
func Interface(v Value) interface{} {
	switch v := v.(type) {
	case Integer:
		return int64(v)
	case Float:
		return float64(v)
	case Text:
		return string(v)
	case Blob:
		return []byte(v)
	}
	return nil
}

// typeName returns the SQL name of a storage class code.
func typeName(typ byte) string {
	switch typ {
	case INTEGER:
		return "INTEGER"
	case FLOAT:
		return "FLOAT"
	case TEXT:
		return "TEXT"
	case BLOB:
		return "BLOB"
	case NULL:
		return "NULL"
	}
	return "type(" + strconv.Itoa(int(typ)) + ")"
}
