// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db archives experiment runs and their metrics in a SQL
// database.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
)

// DB is a high-level interface to a results database. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertExperiment *sql.Stmt
	insertRun        *sql.Stmt
	insertMetric     *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite3" {
		// Every connection to ":memory:" is a distinct database.
		db.SetMaxOpenConns(1)
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Experiments (
	ExperimentID VARCHAR(36) PRIMARY KEY,
	Name VARCHAR(255),
	Label VARCHAR(255),
	Created VARCHAR(32)
);
CREATE TABLE IF NOT EXISTS Runs (
	ExperimentID VARCHAR(36),
	Run BIGINT,
	PRIMARY KEY (ExperimentID, Run),
	FOREIGN KEY (ExperimentID) REFERENCES Experiments(ExperimentID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS RunMetrics (
	ExperimentID VARCHAR(36),
	Run BIGINT,
	Name VARCHAR(255),
	Value DOUBLE,
{{if not .sqlite3}}
	Index (ExperimentID, Name(100)),
{{end}}
	FOREIGN KEY (ExperimentID, Run) REFERENCES Runs(ExperimentID, Run) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS RunMetricsName ON RunMetrics(ExperimentID, Name);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertExperiment, err = db.sql.Prepare("INSERT INTO Experiments(ExperimentID, Name, Label, Created) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(ExperimentID, Run) VALUES (?, ?)")
	if err != nil {
		return err
	}
	db.insertMetric, err = db.sql.Prepare("INSERT INTO RunMetrics(ExperimentID, Run, Name, Value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// An Experiment groups the runs of one experiment.
type Experiment struct {
	// ID is a random UUID identifying the experiment.
	ID string

	Name  string
	Label string

	// Created is the creation time, in UTC.
	Created time.Time

	db *DB
}

// NewExperiment records a new experiment and returns it.
func (db *DB) NewExperiment(ctx context.Context, name, label string) (*Experiment, error) {
	e := &Experiment{
		ID:      uuid.NewString(),
		Name:    name,
		Label:   label,
		Created: now().UTC().Truncate(time.Second),
		db:      db,
	}
	if _, err := db.insertExperiment.ExecContext(ctx, e.ID, name, label, e.Created.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("insert experiment: %w", err)
	}
	return e, nil
}

// InsertRun inserts run number run of e with its metrics, in a single
// transaction.
func (e *Experiment) InsertRun(ctx context.Context, run int, metrics map[string]float64) (err error) {
	tx, err := e.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	if _, err = tx.StmtContext(ctx, e.db.insertRun).ExecContext(ctx, e.ID, run); err != nil {
		return fmt.Errorf("insert run %d: %w", run, err)
	}
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	stmt := tx.StmtContext(ctx, e.db.insertMetric)
	for _, name := range names {
		if _, err = stmt.ExecContext(ctx, e.ID, run, name, metrics[name]); err != nil {
			return fmt.Errorf("insert metric %s of run %d: %w", name, run, err)
		}
	}
	return nil
}

// Metrics returns the values of metric for every run of experiment
// id, ordered by run.
func (db *DB) Metrics(ctx context.Context, id, metric string) ([]float64, error) {
	rows, err := db.sql.QueryContext(ctx,
		"SELECT Value FROM RunMetrics WHERE ExperimentID = ? AND Name = ? ORDER BY Run", id, metric)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Experiments returns the experiments named name, oldest first. An
// empty name matches every experiment.
func (db *DB) Experiments(ctx context.Context, name string) ([]*Experiment, error) {
	q := "SELECT ExperimentID, Name, Label, Created FROM Experiments"
	var args []interface{}
	if name != "" {
		q += " WHERE Name = ?"
		args = append(args, name)
	}
	q += " ORDER BY Created, ExperimentID"
	rows, err := db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var exps []*Experiment
	for rows.Next() {
		e := &Experiment{db: db}
		var created string
		if err := rows.Scan(&e.ID, &e.Name, &e.Label, &created); err != nil {
			return nil, err
		}
		if e.Created, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("experiment %s: %w", e.ID, err)
		}
		exps = append(exps, e)
	}
	return exps, rows.Err()
}

// CountRuns returns the number of runs stored for experiment id.
func (db *DB) CountRuns(ctx context.Context, id string) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Runs WHERE ExperimentID = ?", id).Scan(&n)
	return n, err
}

// CountExperiments returns the number of experiments in the database.
func (db *DB) CountExperiments() (int, error) {
	var n int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Experiments").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertExperiment, db.insertRun, db.insertMetric} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
