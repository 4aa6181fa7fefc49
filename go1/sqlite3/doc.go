//
// Written by Maxim Khitrov (February 2013)
//

/*
Package sqlite3 provides an interface to SQLite version 3 databases.

Database connections are created either directly via this package or with the
"sqlite3" database/sql driver. The driver is recommended when your application
has to support multiple database engines. The direct interface exposes
SQLite-specific features, such as incremental I/O and online backups, and
provides better performance.

Installation

The package uses cgo to call SQLite library functions. Your system must have gcc
and the SQLite development files installed to build this package. pkg-config is
used to locate and link with the shared library. You can modify the #cgo lines
in sqlite3_shared.go to change this behavior.

The minimum version of the shared library that will work with this package is
3.34.0 (released 2020-12-01) due to the use of sqlite3_txn_state() and the
SQLITE_DIRECTONLY and SQLITE_INNOCUOUS function flags.

Concurrency

A single connection and all related objects (prepared statements, backup
operations, etc.) may NOT be used concurrently from multiple goroutines without
external locking. All methods in this package, with the exception of
Conn.Interrupt, assume single-threaded operation. Connections are opened in
serialized mode (OPEN_FULLMUTEX), so SQLite itself stays consistent even when
this rule is broken, but Stmt and Row state kept on the Go side does not. It is
safe to use separate database connections concurrently, even if they are
accessing the same database file. For example:

	// ERROR (without any extra synchronization)
	c, _ := sqlite3.Open("./sqlite.db")
	go use(c)
	go use(c)

	// OK
	c1, _ := sqlite3.Open("./sqlite.db")
	c2, _ := sqlite3.Open("./sqlite.db")
	go use(c1)
	go use(c2)

If the SQLite library was compiled with -DSQLITE_THREADSAFE=0, then all mutex
code was omitted, and this package is unsafe for concurrent access even to
separate database connections. Use SingleThread() to determine if this is the
case. See http://www.sqlite.org/threadsafe.html for additional information.

Conn.InterruptOnDone ties a running operation to a context.Context:

	stop := c.InterruptOnDone(ctx)
	defer stop()
	err := c.Exec(longRunningSQL) // INTERRUPT error once ctx is cancelled

Statements and Rows

Stmt.Step advances a statement one row at a time and Stmt.ForEachRow drives it
to completion, handing each row to a callback as a *Row. A Row is a view of the
statement's current position and is only valid until the next Step, Reset, or
Close. Keeping a Row past that point and calling any of its methods panics with
ErrRowUsed:

	s, _ := c.Prepare("SELECT id, name FROM users WHERE age > ?")
	s.Bind(1, 30)
	err := s.ForEachRow(func(r *sqlite3.Row) error {
		fmt.Println(r.Int64(0), r.Text(1))
		return nil
	})

Parameter bindings survive Reset and are only replaced by new Bind calls or
cleared by ClearBindings.

Values

Value is a closed set of types mirroring SQLite's storage classes: Integer,
Float, Text, Blob, and Null. Values are what custom SQL functions receive and
return, and what Row.Value and Stmt.ColumnValue produce. Equal treats NULL the
way SQL does: Null is not equal to anything, including itself.

Transactions

Conn.Begin, BeginMode, Commit, and Rollback issue the corresponding SQL and
report a TxStateError when called in the wrong state. Savepoints can be nested
to any depth; their names are generated. Conn.Transaction and Conn.WithSavepoint
run a function inside a transaction or savepoint and guarantee that it ends on
every path, including panics:

	err := c.Transaction(sqlite3.Immediate, func() (sqlite3.TxAction, error) {
		if err := c.Exec("UPDATE acct SET bal = bal - 10 WHERE id = 1"); err != nil {
			return sqlite3.TxRollback, err
		}
		return sqlite3.TxCommit, c.Exec("UPDATE acct SET bal = bal + 10 WHERE id = 2")
	})

Maps

NamedArgs and RowMap types are provided for using maps as statement arguments
and for query output, respectively. Here is a short usage example with the
error-handling code omitted for brevity:

	c, _ := sqlite3.Open(":memory:")
	c.Exec("CREATE TABLE x(a, b, c)")

	args := sqlite3.NamedArgs{"@a": 1, "@b": "demo"}
	c.Exec("INSERT INTO x VALUES(@a, @b, @c)", args) // @c will be NULL

	sql := "SELECT rowid, * FROM x"
	row := make(sqlite3.RowMap)
	for s, err := c.Query(sql); err == nil; err = s.Next() {
		var rowid int64
		s.Scan(&rowid, row) // Assign column 0 to rowid, the rest to row
		fmt.Println(rowid, row)
	}

Data Types

See http://www.sqlite.org/datatype3.html for documentation of the SQLite version
3 data type system. See http://www.sqlite.org/c3ref/column_blob.html for details
of how column values are retrieved from the results of a query.

The following data types are supported as arguments to prepared statements (and
may be used in NamedArgs):

	nil       -- Bound as NULL, as are nil pointers and Null.
	Value     -- Integer, Float, Text, Blob, and Null are bound as themselves.
	int, int8, int16, int32, int64, uint8, uint16, uint32
	uint, uint64 -- Bound as an int64. Values above math.MaxInt64 are an error.
	float32, float64
	bool      -- Bound as an int: false -> 0, true -> 1.
	string    -- Bound as a text value. SQLite makes an internal copy.
	[]byte    -- Bound as a BLOB value. SQLite makes an internal copy.
	time.Time -- Bound as an int64 after conversion via Unix().
	RawString -- Bound as a text value referencing Go's copy of the string. The
	             string must remain valid for the duration of the query.
	RawBytes  -- Bound as a BLOB value referencing Go's copy of the array. The
	             array must remain valid and unmodified for the duration of the
	             query.
	ZeroBlob  -- Allocates a zero-filled BLOB of the specified length
	             (e.g. ZeroBlob(4096) allocates 4KB).
	uuid.UUID -- Bound as its canonical lower case text form.
	url.URL   -- Bound as text via URL.String().
	*T        -- A pointer to any type above. A nil pointer is bound as NULL.
	driver.Valuer -- Bound as the value it returns (e.g. sql.NullString).

The following static data types are supported for retrieving column values:

	*Value     -- Retrieved in its original storage class (text and BLOB
	              values are copied).
	*int
	*int64
	*float64
	*bool      -- Retrieved as an int64: 0 -> false, else -> true.
	*string    -- Retrieved as a text value and copied into Go-managed memory.
	*[]byte    -- Retrieved as a BLOB value and copied into Go-managed memory.
	*time.Time -- Retrieved as an int64 and converted via time.Unix(). TEXT
	              values are not supported, but see SQLite's date and time SQL
	              functions, which can perform the required conversion.
	*RawString -- Retrieved as a text value and returned as a string pointing
	              into SQLite's memory. The value remains valid as long as no
	              other Stmt methods are called.
	*RawBytes  -- Retrieved as a BLOB value and returned as a []byte pointing
	              into SQLite's memory. The value remains valid as long as no
	              other Stmt methods are called and must not be modified
	              (re-slicing is ok).
	*uuid.UUID -- Retrieved as a text value and parsed.
	io.Writer  -- Retrieved as a BLOB value and written out directly from
	              SQLite's memory into the writer.

The following rules are used for assigning column values to *interface{} and
RowMap arguments (dynamic typing). The SQLite's storage class and column
declaration are used to select the best Go representation:

	INTEGER -- Retrieved as an int64. If the column type declaration begins with
	           "DATE" or "TIME", convert via time.Unix(). If the declaration
	           begins with "BOOL", return a bool: 0 -> false, else -> true.
	FLOAT   -- Returned as a float64.
	TEXT    -- Returned as a string copy.
	BLOB    -- Returned as a []byte copy.
	NULL    -- Returned as nil.

Database Names

Methods that require a database name as one of the arguments (e.g. Conn.Path)
expect the symbolic name by which the database is known to the connection, not a
path to a file. Valid database names are "main", "temp", or a name specified
after the AS keyword in an ATTACH statement.

Callbacks

SQLite allows the user to install callback functions that are executed for
various internal events (e.g. busy handler and commit/rollback hooks) and to
define SQL functions in Go. There are four important things to remember when
using these callbacks:

1. The callbacks are executed while SQLite is in the middle of a C function (Go
-> C -> Go). They are locked to the current thread, as though
runtime.LockOSThread() was called, and the Go runtime may have spawned
additional threads for running other goroutines.

2. The callbacks are not reentrant, meaning that they must not do anything that
will modify the database connection that invoked the callback. This includes
running/preparing any other SQL statements. The safest bet is to avoid all
interactions with Conn, Stmt, and other package objects within these callbacks.

3. Only one callback of each type can be installed for each connection. In
particular, Conn.BusyTimeout and Conn.BusyFunc are mutually exclusive. Setting
one clears the other. The former is a built-in busy handler that retries the
locking operation for the specified amount of time. It should be preferred over
BusyFunc when no additional logic is needed, since it avoids the transition
overhead between C and Go.

4. A panic never unwinds through SQLite. A panicking hook is stopped at the C
boundary (a busy handler stops retrying, a commit hook forces a rollback) and
the panic is raised again by the method that called into SQLite. A panicking
SQL function fails the statement with an error describing the panic.

Custom SQL functions are registered with Conn.CreateFunction,
Conn.CreateAggregate, and Conn.CreateWindow:

	c.CreateFunction("upper_ascii", 1, func(args []sqlite3.Value) (sqlite3.Value, error) {
		if s, ok := args[0].(sqlite3.Text); ok {
			return sqlite3.Text(strings.ToUpper(string(s))), nil
		}
		return args[0], nil
	})

Aggregates get a fresh instance from the factory for every group.
*/
package sqlite3
