//
// Written by Maxim Khitrov (February 2013)
//

package sqlite3

/*
#include "sqlite3.h"
#include <stdint.h>

// cgo doesn't handle '...' arguments for sqlite3_{config,mprintf}.
static int init_config_uri(int onoff) {
	return sqlite3_config(SQLITE_CONFIG_URI, onoff);
}
static void init_temp_dir(const char *path) {
	sqlite3_temp_directory = sqlite3_mprintf("%s", path);
}
*/
import "C"

import (
	"context"
	"os"
	"runtime"
	"sync"

	"github.com/go-pkgz/lgr"
	"github.com/hashicorp/go-multierror"
)

// initerr is used to indicate a fatal initialization error, which disables this
// package, but allows the rest of the program to continue running.
var initerr error

// threadsafe is the threading mode that SQLite was compiled with. Connections
// are opened in serialized mode (OPEN_FULLMUTEX) unless this is 0.
var threadsafe = int(C.sqlite3_threadsafe())

func init() {
	// Enable URI handling by default (requires SQLite version 3.7.7+).
	C.init_config_uri(1)

	// Use the same temporary directory as Go.
	// [http://www.sqlite.org/c3ref/temp_directory.html]
	tmp := os.TempDir() + "\x00"
	C.init_temp_dir(cStr(tmp))

	// "For maximum portability, it is recommended that applications always
	// invoke sqlite3_initialize() directly prior to using any other SQLite
	// interface. Future releases of SQLite may require this."
	// [http://www.sqlite.org/c3ref/initialize.html]
	if rc := C.sqlite3_initialize(); rc != OK {
		initerr = libErr(ExecError, rc, nil)
		return
	}
	if initerr = checkVersion(); initerr != nil {
		return
	}

	// Register database/sql driver.
	register("sqlite3")
}

// Conn is a connection handle, which may have multiple databases attached to it
// by using the ATTACH SQL statement.
// [http://www.sqlite.org/c3ref/sqlite3.html]
type Conn struct {
	db  *C.sqlite3
	st  *connState
	log lgr.L

	// Hook contexts created by this package. SQLite may install or replace
	// hooks of its own (e.g. the default WAL auto-checkpoint hook), so the
	// user data pointers it reports are never treated as handles.
	busy     C.uintptr_t
	commit   C.uintptr_t
	rollback C.uintptr_t
	update   C.uintptr_t
	wal      C.uintptr_t
}

// Open creates a new connection to a SQLite database. The name can be 1) a path
// to a file, which is created if it does not exist, 2) a URI using the syntax
// described at http://www.sqlite.org/uri.html, 3) the string ":memory:", which
// creates a temporary in-memory database, or 4) an empty string, which creates
// a temporary on-disk database (deleted when closed) in the directory returned
// by os.TempDir().
// [http://www.sqlite.org/c3ref/open.html]
func Open(name string) (*Conn, error) {
	return OpenFlags(name, OPEN_READWRITE|OPEN_CREATE)
}

// OpenReadOnly opens an existing database for reading only.
func OpenReadOnly(name string) (*Conn, error) {
	return OpenFlags(name, OPEN_READONLY)
}

// OpenFlags is like Open, but the access mode and other options are given by a
// combination of OPEN_* flags. One of OPEN_READONLY or OPEN_READWRITE is
// required. OPEN_FULLMUTEX is always added, which serializes concurrent calls
// on the same connection inside SQLite.
func OpenFlags(name string, flags int) (*Conn, error) {
	if initerr != nil {
		return nil, initerr
	}
	if flags&(OPEN_READONLY|OPEN_READWRITE) == 0 {
		return nil, pkgErr(MisuseError, MISUSE, "open flags must include OPEN_READONLY or OPEN_READWRITE")
	}
	name += "\x00"

	var db *C.sqlite3
	rc := C.sqlite3_open_v2(cStr(name), &db, C.int(flags|OPEN_FULLMUTEX), nil)
	if rc != OK {
		err := libErr(ExecError, rc, db)
		C.sqlite3_close(db)
		return nil, err
	}

	c := &Conn{db: db, st: new(connState), log: lgr.NoOp}
	C.sqlite3_extended_result_codes(db, 1)
	runtime.SetFinalizer(c, func(c *Conn) { c.Close() })
	return c, nil
}

// Close releases all resources associated with the connection. If any prepared
// statements, incremental I/O operations, or backup operations are still
// active, the connection becomes an unusable "zombie" and is closed after all
// remaining statements and operations are destroyed. A BUSY error code is
// returned if the connection is left in this "zombie" status, which may
// indicate a programming mistake where some previously allocated resource was
// not properly released.
//
// All hooks are removed, and their contexts released, before the handle is
// closed. SQL function contexts are released by SQLite when the handle is
// finally destroyed.
// [http://www.sqlite.org/c3ref/close.html]
func (c *Conn) Close() error {
	db := c.db
	if db == nil {
		return nil
	}
	var errs *multierror.Error
	if err := c.removeHooks(); err != nil {
		errs = multierror.Append(errs, err)
	}
	c.db = nil
	runtime.SetFinalizer(c, nil)
	if rc := C.sqlite3_close(db); rc != OK {
		errs = multierror.Append(errs, libErr(ExecError, rc, db))
		if rc == BUSY {
			c.log.Logf("[WARN] connection %p closed with unfinalized statements", db)
			C.sqlite3_close_v2(db)
		}
	}
	return errs.ErrorOrNil()
}

// SetLogger sets the destination for diagnostic messages about hook
// replacement, suppressed rollback failures, and similar events. The default
// is lgr.NoOp.
func (c *Conn) SetLogger(l lgr.L) {
	if l == nil {
		l = lgr.NoOp
	}
	c.log = l
}

// Prepare compiles the first statement in sql. Any remaining text after the
// first statement is saved in Stmt.Tail.
// [http://www.sqlite.org/c3ref/prepare.html]
func (c *Conn) Prepare(sql string) (*Stmt, error) {
	if c.db == nil {
		return nil, ErrBadConn
	}
	return newStmt(c, sql)
}

// Exec is a convenience method for executing one or more statements in sql.
// Arguments may be specified either as a list of unnamed interface{} values or
// as a single NamedArgs map. In unnamed mode, each statement consumes the
// required number of values from args. For example:
//
//	c.Exec("UPDATE x SET a=?; UPDATE x SET b=?", 1, 2) // is executed as:
//	// UPDATE x SET a=1
//	// UPDATE x SET b=2
//
// When NamedArgs is used, the entire map is passed to every statement in sql,
// and unreferenced names are ignored. The following example is identical to the
// one above:
//
//	args := NamedArgs{"@A": 1, "@B": 2}
//	c.Exec("UPDATE x SET a=@A; UPDATE x SET b=@B", args)
//
// Without any arguments, the statements are executed by a single call to
// sqlite3_exec, which should be faster, especially for long SQL scripts.
func (c *Conn) Exec(sql string, args ...interface{}) error {
	if c.db == nil {
		return ErrBadConn
	}

	// Fast path via sqlite3_exec, which doesn't support parameter binding
	if len(args) == 0 {
		sql += "\x00"
		return c.exec(cStr(sql))
	}

	// Slow path via Prepare -> Exec -> Close
	unnamed := namedArgs(args) == nil
	execNext := func() error {
		s, err := newStmt(c, sql)
		if err != nil {
			return err
		}
		defer s.Close()

		sql = s.Tail
		if s.stmt == nil {
			return nil // Comment or whitespace
		}
		var myArgs []interface{}
		if s.nVars > 0 {
			if myArgs = args; unnamed {
				if s.nVars < len(myArgs) {
					myArgs = myArgs[:s.nVars]
				}
				args = args[len(myArgs):]
			}
			if err = s.BindAll(myArgs...); err != nil {
				return err
			}
		}
		return s.Execute()
	}
	var err error
	for sql != "" && err == nil {
		err = execNext()
	}
	if unnamed && err == nil && len(args) != 0 {
		return pkgErr(BindError, MISUSE, "%d argument(s) left unconsumed", len(args))
	}
	return err
}

// Query is a convenience method for executing the first query in sql. It
// returns either a prepared statement ready for scanning or an error, which
// will be io.EOF if the query did not return any rows.
func (c *Conn) Query(sql string, args ...interface{}) (*Stmt, error) {
	if c.db == nil {
		return nil, ErrBadConn
	}
	s, err := newStmt(c, sql)
	if err == nil {
		if err = s.Query(args...); err == nil {
			return s, nil
		}
		s.Close()
	}
	return nil, err
}

// Interrupt causes any pending database operation to abort and return at its
// earliest opportunity. It is safe to call this method from a goroutine
// different from the one that is currently running the database operation, but
// it is not safe to call this method on a connection that might close before
// the call returns. Statements that have not started stepping are not affected.
// [http://www.sqlite.org/c3ref/interrupt.html]
func (c *Conn) Interrupt() {
	if db := c.db; db != nil {
		C.sqlite3_interrupt(db)
	}
}

// InterruptOnDone interrupts the connection when ctx is done. The returned stop
// function must be called before the connection is closed. It waits for the
// watcher goroutine to exit, so no interrupt can be delivered after it returns.
func (c *Conn) InterruptOnDone(ctx context.Context) (stop func()) {
	db := c.db
	if db == nil || ctx.Done() == nil {
		return func() {}
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			C.sqlite3_interrupt(db)
		case <-done:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

// LastInsertId returns the ROWID of the most recent successful INSERT
// statement.
// [http://www.sqlite.org/c3ref/last_insert_rowid.html]
func (c *Conn) LastInsertId() int64 {
	if c.db == nil {
		return 0
	}
	return int64(C.sqlite3_last_insert_rowid(c.db))
}

// RowsAffected returns the number of rows that were changed, inserted, or
// deleted by the most recent statement. Auxiliary changes caused by triggers or
// foreign key actions are not included (see Conn.TotalRowsAffected).
// [http://www.sqlite.org/c3ref/changes.html]
func (c *Conn) RowsAffected() int {
	if c.db == nil {
		return 0
	}
	return int(C.sqlite3_changes(c.db))
}

// TotalRowsAffected returns the number of rows that were changed, inserted, or
// deleted since the database connection was opened, including changes caused by
// triggers and foreign key actions.
// [http://www.sqlite.org/c3ref/total_changes.html]
func (c *Conn) TotalRowsAffected() int {
	if c.db == nil {
		return 0
	}
	return int(C.sqlite3_total_changes(c.db))
}

// Backup starts an online database backup of c.srcName into dst.dstName.
// Connections c and dst must be distinct. All existing contents of the
// destination database are overwritten.
//
// A read lock is acquired on the source database only while it is being read
// during a call to Backup.Step. The source connection may be used for other
// purposes between these calls. The destination connection must not be used for
// anything until the backup is closed.
// [http://www.sqlite.org/backup.html]
func (c *Conn) Backup(srcName string, dst *Conn, dstName string) (*Backup, error) {
	if c.db == nil || c == dst || dst == nil || dst.db == nil {
		return nil, ErrBadConn
	}
	return newBackup(c, srcName, dst, dstName)
}

// BlobIO opens a BLOB or TEXT value for incremental I/O, allowing the value to
// be treated as a file for reading and/or writing. The value is located as if
// by the following query:
//
//	SELECT col FROM db.tbl WHERE rowid=row
//
// If rw is true, the value is opened with read-write access, otherwise it is
// read-only. It is not possible to open a column that is part of an index or
// primary key for writing. If foreign key constraints are enabled, it is not
// possible to open a column that is part of a child key for writing.
// [http://www.sqlite.org/c3ref/blob_open.html]
func (c *Conn) BlobIO(db, tbl, col string, row int64, rw bool) (*BlobIO, error) {
	if c.db == nil {
		return nil, ErrBadConn
	}
	return newBlobIO(c, db, tbl, col, row, rw)
}

// Path returns the full file path of an attached database. An empty string is
// returned for temporary databases.
// [http://www.sqlite.org/c3ref/db_filename.html]
func (c *Conn) Path(db string) string {
	if c.db != nil {
		db += "\x00"
		if path := C.sqlite3_db_filename(c.db, cStr(db)); path != nil {
			return C.GoString(path)
		}
	}
	return ""
}

// Limit changes a per-connection resource usage or performance limit, specified
// by one of the LIMIT constants, returning its previous value. If the new value
// is negative, the limit is left unchanged and its current value is returned.
// [http://www.sqlite.org/c3ref/limit.html]
func (c *Conn) Limit(id, value int) (prev int) {
	if c.db != nil {
		prev = int(C.sqlite3_limit(c.db, C.int(id), C.int(value)))
	}
	return
}

// exec calls sqlite3_exec on sql, which must be a null-terminated C string.
func (c *Conn) exec(sql *C.char) error {
	rc := C.sqlite3_exec(c.db, sql, nil, nil, nil)
	var err error
	if rc != OK {
		err = libErr(ExecError, rc, c.db)
	}
	c.rethrow()
	return err
}

// rethrow re-raises a panic that was caught inside a callback during the last
// call into SQLite.
func (c *Conn) rethrow() {
	if p := c.st.panicked; p != nil {
		c.st.panicked = nil
		panic(p.v)
	}
}

// Version returns the SQLite version as a string in the format "X.Y.Z[.N]".
// [http://www.sqlite.org/c3ref/libversion.html]
func Version() string {
	return C.GoString(C.sqlite3_libversion())
}

// VersionNum returns the SQLite version as an integer in the format X*1000000 +
// Y*1000 + Z, where X is the major version, Y is the minor version, and Z is
// the release number.
func VersionNum() int {
	return int(C.sqlite3_libversion_number())
}

// SourceId returns the check-in identifier of SQLite within its configuration
// management system.
// [http://www.sqlite.org/c3ref/c_source_id.html]
func SourceId() string {
	return C.GoString(C.sqlite3_sourceid())
}

// SingleThread returns true if the SQLite library was compiled with
// -DSQLITE_THREADSAFE=0. In this threading mode all mutex code is omitted and
// the package becomes unsafe for concurrent access, even to separate database
// connections.
// [http://www.sqlite.org/threadsafe.html]
func SingleThread() bool {
	return threadsafe == 0
}
