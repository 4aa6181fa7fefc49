// Copyright 2013 The Go-SQLite Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command sqlite3bak makes an online copy of a SQLite database using the backup
// API, optionally verifying the copy and printing its BLAKE3 digest.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/hashicorp/go-multierror"
	"github.com/jessevdk/go-flags"
	"github.com/zeebo/blake3"

	"github.com/mxk/go-sqlite/go1/sqlite3"
)

type options struct {
	Src     string        `short:"s" long:"src" env:"SQLITE3BAK_SRC" description:"source database" required:"true"`
	Dst     string        `short:"d" long:"dst" env:"SQLITE3BAK_DST" description:"destination database file" required:"true"`
	Timeout time.Duration `long:"timeout" description:"busy timeout for the source database" default:"5s"`
	Check   bool          `long:"check" description:"run integrity check on the copy"`
	Sum     bool          `long:"sum" description:"print blake3 digest of the copy"`

	Version bool `long:"version" description:"show version"`
	Dbg     bool `long:"dbg" description:"debug mode"`
}

var revision = "latest"

func main() {
	fmt.Printf("sqlite3bak %s (sqlite %s)\n", revision, sqlite3.Version())

	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		os.Exit(1)
	}
	if opts.Version {
		os.Exit(0) // already printed
	}
	setupLog(opts.Dbg)

	if err := run(opts, os.Stdout); err != nil {
		if opts.Dbg {
			log.Panicf("[ERROR] %v", err)
		}
		fmt.Printf("failed, %v\n", err)
		os.Exit(1)
	}
}

// run copies opts.Src to opts.Dst and writes a summary to w.
func run(opts options, w io.Writer) (err error) {
	st := time.Now()
	src, err := sqlite3.OpenReadOnly(opts.Src)
	if err != nil {
		return fmt.Errorf("can't open source %q: %w", opts.Src, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			err = multierror.Append(err, fmt.Errorf("can't close source: %w", cerr)).ErrorOrNil()
		}
	}()
	src.SetLogger(lgr.Std)
	if _, err = src.BusyTimeout(opts.Timeout); err != nil {
		return fmt.Errorf("can't set busy timeout: %w", err)
	}

	pages := 0
	progress := func(remaining, total int) {
		pages = total
		log.Printf("[DEBUG] copied %d of %d pages", total-remaining, total)
	}
	if err = src.BackupToFile(opts.Dst, progress); err != nil {
		return fmt.Errorf("can't back up %q to %q: %w", opts.Src, opts.Dst, err)
	}

	fi, err := os.Stat(opts.Dst)
	if err != nil {
		return fmt.Errorf("can't stat %q: %w", opts.Dst, err)
	}
	fmt.Fprintf(w, "copied %s to %s, %d pages, %s in %v\n", opts.Src, opts.Dst, pages,
		humanize.Bytes(uint64(fi.Size())), time.Since(st).Truncate(time.Millisecond))

	if opts.Check {
		if err = checkIntegrity(opts.Dst); err != nil {
			return err
		}
		fmt.Fprintln(w, "integrity check ok")
	}
	if opts.Sum {
		sum, derr := digest(opts.Dst)
		if derr != nil {
			return derr
		}
		fmt.Fprintf(w, "blake3 %s\n", sum)
	}
	return nil
}

// checkIntegrity runs PRAGMA integrity_check on the database at path.
func checkIntegrity(path string) (err error) {
	c, err := sqlite3.OpenReadOnly(path)
	if err != nil {
		return fmt.Errorf("can't open copy %q: %w", path, err)
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	s, err := c.Query("PRAGMA integrity_check")
	if err != nil {
		return fmt.Errorf("can't check integrity of %q: %w", path, err)
	}
	defer s.Close()

	errs := new(multierror.Error)
	err = s.ForEachRow(func(r *sqlite3.Row) error {
		if msg := r.Text(0); msg != "ok" {
			errs = multierror.Append(errs, fmt.Errorf("integrity: %s", msg))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("can't read integrity check of %q: %w", path, err)
	}
	return errs.ErrorOrNil()
}

// digest returns the hex encoded BLAKE3 hash of the file at path.
func digest(path string) (string, error) {
	f, err := os.Open(path) // nolint
	if err != nil {
		return "", fmt.Errorf("can't open %q: %w", path, err)
	}
	defer f.Close() // nolint

	h := blake3.New()
	if _, err = io.Copy(h, f); err != nil {
		return "", fmt.Errorf("can't read %q: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)} // default to discard
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
