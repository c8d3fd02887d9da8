// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package experiment

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/aclements/go-gg/table"

	"golang.org/x/gridbench/chart"
	"golang.org/x/gridbench/schema"
	"golang.org/x/gridbench/storage/db"
	"golang.org/x/gridbench/trialstat"
)

// A metric is one named measurement with a value per run.
type metric struct {
	name   string
	values []float64
}

func floats(xs []int) []float64 {
	fs := make([]float64, len(xs))
	for i, x := range xs {
		fs[i] = float64(x)
	}
	return fs
}

func mean(xs []float64) float64 {
	return trialstat.Summarize(xs, trialstat.DefaultConfidence).Center
}

// compare tests two metrics of the same runs at the 5% level.
func compare(x1, x2 []float64) trialstat.Comparison {
	return trialstat.ComparePaired(x1, x2, 0.05)
}

func strof(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return ""
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func newTSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return cw
}

// writeRuns writes one line per run with every metric.
func writeRuns(w io.Writer, ms []metric, runs int) error {
	cw := newTSVWriter(w)
	header := []string{"Run"}
	for _, m := range ms {
		header = append(header, m.name)
	}
	cw.Write(header)
	for run := 0; run < runs; run++ {
		row := []string{strconv.Itoa(run)}
		for _, m := range ms {
			row = append(row, strof(m.values[run]))
		}
		cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

// writeSummary writes a header and a single line holding the mean of
// every metric followed by the standard deviation of every metric.
func writeSummary(w io.Writer, label string, ms []metric) error {
	cw := newTSVWriter(w)
	header := []string{"Experiment"}
	row := []string{label}
	for _, m := range ms {
		header = append(header, "Mean("+m.name+")")
		row = append(row, strof(trialstat.Summarize(m.values, trialstat.DefaultConfidence).Center))
	}
	for _, m := range ms {
		header = append(header, "StdDev("+m.name+")")
		row = append(row, strof(trialstat.Summarize(m.values, trialstat.DefaultConfidence).StdDev))
	}
	cw.Write(header)
	cw.Write(row)
	cw.Flush()
	return cw.Error()
}

type textRow struct {
	Metric string
	Mean   float64
	StdDev float64
	CI     string
}

// formatText prints a console table with the summary of every metric.
func formatText(w io.Writer, label string, ms []metric, runs int) error {
	rows := make([]textRow, 0, len(ms))
	for _, m := range ms {
		s := trialstat.Summarize(m.values, trialstat.DefaultConfidence)
		rows = append(rows, textRow{m.name, s.Center, s.StdDev, s.PctRangeString()})
	}
	fmt.Fprintf(w, "%s: %d runs\n", label, runs)
	if len(rows) == 0 {
		return nil
	}
	return table.Fprint(w, table.TableFromStructs(rows), "%s", "%.6g", "%.6g", "±%s")
}

// archive stores every run of ms as a new experiment of d.
func archive(ctx context.Context, d *db.DB, name, label string, ms []metric, runs int) (*db.Experiment, error) {
	e, err := d.NewExperiment(ctx, name, label)
	if err != nil {
		return nil, err
	}
	for run := 0; run < runs; run++ {
		values := make(map[string]float64, len(ms))
		for _, m := range ms {
			if v := m.values[run]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				values[m.name] = v
			}
		}
		if err := e.InsertRun(ctx, run, values); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// boxChart draws the box plots of ms.
func boxChart(path, label string, ms []metric) error {
	names := make([]string, len(ms))
	values := make([][]float64, len(ms))
	for i, m := range ms {
		names[i], values[i] = m.name, m.values
	}
	return chart.BoxPlots(path, label, names, values)
}

// writeDatabase writes the records of d as TSV, one column per
// attribute.
func writeDatabase(w io.Writer, d *schema.Database) error {
	cw := newTSVWriter(w)
	attrs := d.Class.Attributes()
	header := make([]string, len(attrs))
	for i, a := range attrs {
		header[i] = a.Name
	}
	cw.Write(header)
	row := make([]string, len(attrs))
	for _, rec := range d.Objects {
		for i, a := range attrs {
			if a.Type == schema.Numerical {
				row[i] = strof(rec.Numerical(a.Index))
			} else {
				row[i] = rec.Categorical(a.Index)
			}
		}
		cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}
