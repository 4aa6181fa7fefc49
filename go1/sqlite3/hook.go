// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqlite3

/*
#include "sqlite3.h"
#include <stdint.h>

// Go callbacks are implemented in util.go.
extern int go_busy_handler(void*, int);
extern int go_commit_hook(void*);
extern void go_rollback_hook(void*);
extern void go_update_hook(void*, int, char*, char*, sqlite3_int64);
extern int go_wal_hook(void*, sqlite3*, char*, int);

static void update_hook_tramp(void *p, int op, const char *db, const char *tbl,
                              sqlite3_int64 row) {
	go_update_hook(p, op, (char*)db, (char*)tbl, row);
}
static int wal_hook_tramp(void *p, sqlite3 *db, const char *name, int pages) {
	return go_wal_hook(p, db, (char*)name, pages);
}

// Each setter installs the Go trampoline with handle h as user data, or removes
// the hook if h is 0. The previous user data pointer is returned where SQLite
// reports it. It may belong to SQLite rather than to a Go handle.
static int set_busy_handler(sqlite3 *db, uintptr_t h) {
	return sqlite3_busy_handler(db, (h ? go_busy_handler : 0), (void*)h);
}
static uintptr_t set_commit_hook(sqlite3 *db, uintptr_t h) {
	return (uintptr_t)sqlite3_commit_hook(db, (h ? go_commit_hook : 0), (void*)h);
}
static uintptr_t set_rollback_hook(sqlite3 *db, uintptr_t h) {
	return (uintptr_t)sqlite3_rollback_hook(db, (h ? go_rollback_hook : 0), (void*)h);
}
static uintptr_t set_update_hook(sqlite3 *db, uintptr_t h) {
	return (uintptr_t)sqlite3_update_hook(db, (h ? update_hook_tramp : 0), (void*)h);
}

// Removing the WAL hook restores automatic checkpoints at the default
// interval, which is what SQLite installs when a connection is opened.
static uintptr_t set_wal_hook(sqlite3 *db, uintptr_t h) {
	uintptr_t old = (uintptr_t)sqlite3_wal_hook(db, (h ? wal_hook_tramp : 0), (void*)h);
	if (!h) {
		sqlite3_wal_autocheckpoint(db, 1000);
	}
	return old;
}
*/
import "C"

import "time"

// BusyFunc registers a function that is invoked by SQLite when it is unable to
// acquire a lock on a table. The previous busy handler, if it was set by this
// method, is returned. Setting f to nil disables the busy handler, which makes
// every lock conflict return BUSY immediately. BusyFunc and BusyTimeout replace
// each other.
// [http://www.sqlite.org/c3ref/busy_handler.html]
func (c *Conn) BusyFunc(f BusyFunc) (prev BusyFunc, err error) {
	if c.db == nil {
		return nil, ErrBadConn
	}
	var h C.uintptr_t
	if f != nil {
		h = newHandle(c, f)
	}
	if rc := C.set_busy_handler(c.db, h); rc != OK {
		err = libErr(HookError, rc, c.db)
		freeHandle(h)
		return nil, err
	}
	return c.swapBusy(h, "busy handler"), nil
}

// BusyTimeout installs SQLite's built-in busy handler, which sleeps and
// retries until the total time spent waiting for a lock exceeds d. A zero or
// negative d disables the handler. Any handler installed by BusyFunc is removed
// and returned.
// [http://www.sqlite.org/c3ref/busy_timeout.html]
func (c *Conn) BusyTimeout(d time.Duration) (prev BusyFunc, err error) {
	if c.db == nil {
		return nil, ErrBadConn
	}
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	} else if ms > 1<<31-1 {
		ms = 1<<31 - 1
	}
	if rc := C.sqlite3_busy_timeout(c.db, C.int(ms)); rc != OK {
		return nil, libErr(HookError, rc, c.db)
	}
	return c.swapBusy(0, "busy timeout"), nil
}

// swapBusy records h as the current busy handler context and releases the old
// one, which SQLite no longer references.
func (c *Conn) swapBusy(h C.uintptr_t, what string) BusyFunc {
	old := c.busy
	c.busy = h
	prev, _ := handleFunc(old).(BusyFunc)
	if old != 0 {
		freeHandle(old)
		c.log.Logf("[DEBUG] %s replaced previous busy handler", what)
	}
	return prev
}

// CommitFunc registers a function that is invoked by SQLite before a
// transaction is committed. It returns the previous commit handler, if any. If
// the function returns false, the transaction is rolled back instead of being
// committed.
// [http://www.sqlite.org/c3ref/commit_hook.html]
func (c *Conn) CommitFunc(f CommitFunc) (prev CommitFunc) {
	if c.db == nil || (f == nil && c.commit == 0) {
		return nil
	}
	var h C.uintptr_t
	if f != nil {
		h = newHandle(c, f)
	}
	prev, _ = c.swapHook(&c.commit, h, C.set_commit_hook(c.db, h), "commit hook").(CommitFunc)
	return
}

// RollbackFunc registers a function that is invoked by SQLite when a
// transaction is rolled back. It returns the previous rollback handler, if
// any. The function is not called for the implicit rollback performed when the
// connection is closed.
// [http://www.sqlite.org/c3ref/commit_hook.html]
func (c *Conn) RollbackFunc(f RollbackFunc) (prev RollbackFunc) {
	if c.db == nil || (f == nil && c.rollback == 0) {
		return nil
	}
	var h C.uintptr_t
	if f != nil {
		h = newHandle(c, f)
	}
	prev, _ = c.swapHook(&c.rollback, h, C.set_rollback_hook(c.db, h), "rollback hook").(RollbackFunc)
	return
}

// UpdateFunc registers a function that is invoked by SQLite for each row that
// is inserted, updated, or deleted in a rowid table. It returns the previous
// update handler, if any. The function must not modify the database.
// [http://www.sqlite.org/c3ref/update_hook.html]
func (c *Conn) UpdateFunc(f UpdateFunc) (prev UpdateFunc) {
	if c.db == nil || (f == nil && c.update == 0) {
		return nil
	}
	var h C.uintptr_t
	if f != nil {
		h = newHandle(c, f)
	}
	prev, _ = c.swapHook(&c.update, h, C.set_update_hook(c.db, h), "update hook").(UpdateFunc)
	return
}

// WALFunc registers a function that is invoked by SQLite after each commit to
// a database in WAL mode. It returns the previous WAL handler, if it was set by
// this method and is still installed. Installing a WAL handler disables
// automatic checkpoints. Removing it restores them at the default interval of
// 1000 pages. Note that PRAGMA wal_autocheckpoint replaces any WAL handler.
// [http://www.sqlite.org/c3ref/wal_hook.html]
func (c *Conn) WALFunc(f WALFunc) (prev WALFunc) {
	if c.db == nil || (f == nil && c.wal == 0) {
		return nil
	}
	var h C.uintptr_t
	if f != nil {
		h = newHandle(c, f)
	}
	prev, _ = c.swapHook(&c.wal, h, C.set_wal_hook(c.db, h), "wal hook").(WALFunc)
	return
}

// swapHook records h as the current context in slot and releases the one it
// replaces. SQLite reported old as the previous user data pointer. The old
// function is returned only if old is still the context this package
// installed. Otherwise, SQLite replaced the hook in the meantime.
func (c *Conn) swapHook(slot *C.uintptr_t, h, old C.uintptr_t, what string) interface{} {
	mine := *slot
	*slot = h
	if mine == 0 {
		return nil
	}
	var prev interface{}
	if old == mine {
		prev = handleFunc(mine)
	}
	freeHandle(mine)
	c.log.Logf("[DEBUG] %s replaced", what)
	return prev
}

// removeHooks uninstalls all callbacks installed by this package and releases
// their contexts. Hooks that belong to SQLite are left alone.
func (c *Conn) removeHooks() error {
	var err error
	if c.busy != 0 {
		if rc := C.set_busy_handler(c.db, 0); rc != OK {
			err = libErr(HookError, rc, c.db)
		} else {
			freeHandle(c.busy)
			c.busy = 0
		}
	}
	if c.commit != 0 {
		C.set_commit_hook(c.db, 0)
	}
	if c.rollback != 0 {
		C.set_rollback_hook(c.db, 0)
	}
	if c.update != 0 {
		C.set_update_hook(c.db, 0)
	}
	if c.wal != 0 {
		C.set_wal_hook(c.db, 0)
	}
	for _, h := range []*C.uintptr_t{&c.commit, &c.rollback, &c.update, &c.wal} {
		freeHandle(*h)
		*h = 0
	}
	return err
}
