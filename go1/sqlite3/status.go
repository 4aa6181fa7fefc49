// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3

/*
#include "sqlite3.h"
*/
import "C"

import "strconv"

// StatusParam selects a connection status counter for Conn.Status.
// [http://www.sqlite.org/c3ref/c_dbstatus_options.html]
type StatusParam int

const (
	STATUS_LOOKASIDE_USED      StatusParam = C.SQLITE_DBSTATUS_LOOKASIDE_USED      // 0
	STATUS_CACHE_USED          StatusParam = C.SQLITE_DBSTATUS_CACHE_USED          // 1
	STATUS_SCHEMA_USED         StatusParam = C.SQLITE_DBSTATUS_SCHEMA_USED         // 2
	STATUS_STMT_USED           StatusParam = C.SQLITE_DBSTATUS_STMT_USED           // 3
	STATUS_LOOKASIDE_HIT       StatusParam = C.SQLITE_DBSTATUS_LOOKASIDE_HIT       // 4
	STATUS_LOOKASIDE_MISS_SIZE StatusParam = C.SQLITE_DBSTATUS_LOOKASIDE_MISS_SIZE // 5
	STATUS_LOOKASIDE_MISS_FULL StatusParam = C.SQLITE_DBSTATUS_LOOKASIDE_MISS_FULL // 6
	STATUS_CACHE_HIT           StatusParam = C.SQLITE_DBSTATUS_CACHE_HIT           // 7
	STATUS_CACHE_MISS          StatusParam = C.SQLITE_DBSTATUS_CACHE_MISS          // 8
	STATUS_CACHE_WRITE         StatusParam = C.SQLITE_DBSTATUS_CACHE_WRITE         // 9
	STATUS_DEFERRED_FKS        StatusParam = C.SQLITE_DBSTATUS_DEFERRED_FKS        // 10
	STATUS_CACHE_USED_SHARED   StatusParam = C.SQLITE_DBSTATUS_CACHE_USED_SHARED   // 11
)

var statusNames = map[StatusParam]string{
	STATUS_LOOKASIDE_USED:      "LOOKASIDE_USED",
	STATUS_CACHE_USED:          "CACHE_USED",
	STATUS_SCHEMA_USED:         "SCHEMA_USED",
	STATUS_STMT_USED:           "STMT_USED",
	STATUS_LOOKASIDE_HIT:       "LOOKASIDE_HIT",
	STATUS_LOOKASIDE_MISS_SIZE: "LOOKASIDE_MISS_SIZE",
	STATUS_LOOKASIDE_MISS_FULL: "LOOKASIDE_MISS_FULL",
	STATUS_CACHE_HIT:           "CACHE_HIT",
	STATUS_CACHE_MISS:          "CACHE_MISS",
	STATUS_CACHE_WRITE:         "CACHE_WRITE",
	STATUS_DEFERRED_FKS:        "DEFERRED_FKS",
	STATUS_CACHE_USED_SHARED:   "CACHE_USED_SHARED",
}

func (p StatusParam) String() string {
	if s, ok := statusNames[p]; ok {
		return s
	}
	return "STATUS(" + strconv.Itoa(int(p)) + ")"
}

// Status returns the current and peak values of a connection performance
// counter, specified by one of the STATUS constants. If reset is true, the
// peak value is reset back down to the current value after retrieval.
// [http://www.sqlite.org/c3ref/db_status.html]
func (c *Conn) Status(op StatusParam, reset bool) (cur, peak int, err error) {
	if c.db == nil {
		return 0, 0, ErrBadConn
	}
	var cCur, cPeak C.int
	rc := C.sqlite3_db_status(c.db, C.int(op), &cCur, &cPeak, cBool(reset))
	if rc != OK {
		return 0, 0, pkgErr(MisuseError, int(rc), "invalid status parameter %s", op)
	}
	return int(cCur), int(cPeak), nil
}
