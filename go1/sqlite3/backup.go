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
	"io"
	"runtime"
	"time"

	"github.com/hashicorp/go-multierror"
)

const (
	// BackupPageStep is the number of pages copied by each step of BackupTo.
	BackupPageStep = 10

	// BackupRetryDelay is how long BackupTo sleeps when the source or the
	// destination database is locked.
	BackupRetryDelay = 25 * time.Millisecond
)

// ProgressFunc receives the number of pages that remain to be copied and the
// total number of pages in the source database after each backup step.
type ProgressFunc func(remaining, total int)

// Backup is a handle to an online backup operation between two databases.
// [http://www.sqlite.org/c3ref/backup.html]
type Backup struct {
	src  *Conn
	dst  *Conn
	bkup *C.sqlite3_backup
}

// newBackup initializes an online backup operation from src.srcName to
// dst.dstName.
func newBackup(src *Conn, srcName string, dst *Conn, dstName string) (*Backup, error) {
	srcName += "\x00"
	dstName += "\x00"

	bkup := C.sqlite3_backup_init(dst.db, cStr(dstName), src.db, cStr(srcName))
	if bkup == nil {
		return nil, libErr(ExecError, C.sqlite3_errcode(dst.db), dst.db)
	}

	b := &Backup{src, dst, bkup}
	runtime.SetFinalizer(b, func(b *Backup) { b.Close() })
	return b, nil
}

// Close releases all resources associated with the backup operation. It is
// safe to call this method prior to backup completion to abort the operation.
// [http://www.sqlite.org/c3ref/backup_finish.html#sqlite3backupfinish]
func (b *Backup) Close() error {
	if bkup := b.bkup; bkup != nil {
		b.bkup = nil
		runtime.SetFinalizer(b, nil)
		if rc := C.sqlite3_backup_finish(bkup); rc != OK {
			return libErr(ExecError, rc, b.dst.db)
		}
	}
	return nil
}

// Conn returns the source and destination connections that are used by this
// backup operation. The destination connection must not be used until the
// backup operation is closed.
func (b *Backup) Conn() (src, dst *Conn) {
	return b.src, b.dst
}

// Step copies up to n pages to the destination database. If n is negative, all
// remaining pages are copied. io.EOF is returned upon successful backup
// completion.
// [http://www.sqlite.org/c3ref/backup_finish.html#sqlite3backupstep]
func (b *Backup) Step(n int) error {
	if b.bkup == nil {
		return ErrBadBackup
	}
	switch rc := C.sqlite3_backup_step(b.bkup, C.int(n)); rc {
	case OK:
		return nil
	case DONE:
		return io.EOF
	default:
		return libErr(ExecError, rc, b.dst.db)
	}
}

// Remaining returns the number of pages that still need to be backed up. The
// value is updated by each call to Step.
// [http://www.sqlite.org/c3ref/backup_finish.html#sqlite3backupremaining]
func (b *Backup) Remaining() int {
	if b.bkup == nil {
		return 0
	}
	return int(C.sqlite3_backup_remaining(b.bkup))
}

// PageCount returns the total number of pages in the source database as of the
// most recent call to Step.
// [http://www.sqlite.org/c3ref/backup_finish.html#sqlite3backuppagecount]
func (b *Backup) PageCount() int {
	if b.bkup == nil {
		return 0
	}
	return int(C.sqlite3_backup_pagecount(b.bkup))
}

// BackupTo copies the main database of c into the main database of dst,
// overwriting its contents. Pages are copied BackupPageStep at a time and the
// step is retried after BackupRetryDelay while either database is busy or
// locked. Progress, if not nil, is called after every step. The last call
// reports zero remaining pages.
func (c *Conn) BackupTo(dst *Conn, progress ProgressFunc) (err error) {
	b, err := c.Backup("main", dst, "main")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(); cerr != nil && !sameCode(err, cerr) {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()
	for {
		switch err := b.Step(BackupPageStep); {
		case err == nil:
		case err == io.EOF:
			if progress != nil {
				progress(0, b.PageCount())
			}
			return nil
		case retryable(err):
			c.log.Logf("[DEBUG] backup step blocked, %v", err)
			time.Sleep(BackupRetryDelay)
		default:
			return err
		}
		if progress != nil {
			progress(b.Remaining(), b.PageCount())
		}
	}
}

// BackupToFile copies the main database of c into the database file at path,
// which is created if necessary. See BackupTo.
func (c *Conn) BackupToFile(path string, progress ProgressFunc) (err error) {
	if c.db == nil {
		return ErrBadConn
	}
	dst, err := Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()
	dst.SetLogger(c.log)
	return c.BackupTo(dst, progress)
}

// sameCode reports whether err and other are both SQLite errors with the same
// result code. A failed step is reported again when the backup is finished.
func sameCode(err, other error) bool {
	var e1, e2 *Error
	return errors.As(err, &e1) && errors.As(other, &e2) && e1.Code() == e2.Code()
}

// retryable reports whether err is a transient BUSY or LOCKED condition.
func retryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		p := e.Primary()
		return p == BUSY || p == LOCKED
	}
	return false
}
