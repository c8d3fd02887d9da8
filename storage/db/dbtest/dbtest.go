// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens scratch results databases for tests.
package dbtest

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"flag"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"golang.org/x/gridbench/storage/db"
)

var mysqlServer = flag.String("mysql", "", "run tests on the MySQL server at this DSN prefix (such as root:@tcp(localhost:3306)/) instead of in-memory SQLite")

// createEmptyMySQLDB makes a new, empty database for the test.
func createEmptyMySQLDB(t *testing.T) (dsn string, cleanup func()) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatal(err)
	}

	name := "gridbench-test-" + base64.RawURLEncoding.EncodeToString(buf)

	prefix := *mysqlServer

	db, err := sql.Open("mysql", prefix)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE `%s`", name)); err != nil {
		db.Close()
		t.Fatal(err)
	}

	t.Logf("Using database %q", name)

	return prefix + name, func() {
		if _, err := db.Exec(fmt.Sprintf("DROP DATABASE `%s`", name)); err != nil {
			t.Error(err)
		}
		db.Close()
	}
}

// NewDB makes a connection to a testing database, either sqlite3 or
// MySQL depending on the -mysql flag. The database is closed when the
// test ends.
func NewDB(t *testing.T) *db.DB {
	t.Helper()
	driverName, dataSourceName := "sqlite3", ":memory:"
	var mysqlCleanup func()
	if *mysqlServer != "" {
		driverName = "mysql"
		dataSourceName, mysqlCleanup = createEmptyMySQLDB(t)
	}
	d, err := db.OpenSQL(driverName, dataSourceName)
	if err != nil {
		if mysqlCleanup != nil {
			mysqlCleanup()
		}
		t.Fatalf("open database: %v", err)
	}

	t.Cleanup(func() {
		d.Close()
		if mysqlCleanup != nil {
			mysqlCleanup()
		}
	})
	// Make sure the database really is empty.
	n, err := d.CountExperiments()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("found %d row(s) in Experiments, want 0", n)
	}
	return d
}
