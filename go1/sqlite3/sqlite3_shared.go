// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3

/*
#cgo pkg-config: sqlite3

// To avoid using pkg-config, comment out the line above and uncomment the one
// below. Use -L to specify the directory containing libsqlite3.so.
//#cgo LDFLAGS: -lsqlite3

#include "sqlite3.h"

#if SQLITE_VERSION_NUMBER < 3034000
#error "SQLite 3.34.0 or newer is required"
#endif
*/
import "C"

// minVersion is the oldest SQLite library version that provides every API used
// by this package.
const minVersion = 3034000

// checkVersion verifies that the library loaded at run time is not older than
// the headers used at build time.
func checkVersion() error {
	if v := VersionNum(); v < minVersion {
		return pkgErr(MisuseError, MISUSE, "SQLite %s is too old, %d or newer required",
			Version(), minVersion)
	}
	return nil
}
