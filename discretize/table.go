// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package discretize implements supervised discretization of a
// numerical attribute against a categorical target.
//
// A discretizer consumes a FrequencyTable whose rows are ordered
// elementary intervals (typically one row per distinct value) and
// whose columns are target classes, and merges adjacent rows into
// intervals. The MODL cost of a table measures the description length
// of the partition it represents: smaller is better.
package discretize

import (
	"fmt"
	"sort"
)

// A FrequencyTable holds class counts for a sequence of ordered rows.
type FrequencyTable struct {
	// Counts[i][j] is the number of records of class j in row i.
	Counts [][]int

	classes int
}

// NewFrequencyTable returns an empty table with the given number of
// class columns.
func NewFrequencyTable(classes int) *FrequencyTable {
	if classes <= 0 {
		panic(fmt.Sprintf("discretize: table with %d classes", classes))
	}
	return &FrequencyTable{classes: classes}
}

// AddRow appends a row with the given class counts.
func (t *FrequencyTable) AddRow(counts ...int) {
	if len(counts) != t.classes {
		panic(fmt.Sprintf("discretize: row with %d counts, want %d", len(counts), t.classes))
	}
	for _, c := range counts {
		if c < 0 {
			panic("discretize: negative count")
		}
	}
	t.Counts = append(t.Counts, append([]int(nil), counts...))
}

// Rows returns the number of rows of t.
func (t *FrequencyTable) Rows() int { return len(t.Counts) }

// Classes returns the number of class columns of t.
func (t *FrequencyTable) Classes() int { return t.classes }

// RowTotal returns the number of records in row i.
func (t *FrequencyTable) RowTotal(i int) int {
	n := 0
	for _, c := range t.Counts[i] {
		n += c
	}
	return n
}

// Total returns the number of records in t.
func (t *FrequencyTable) Total() int {
	n := 0
	for i := range t.Counts {
		n += t.RowTotal(i)
	}
	return n
}

// ClassTotals returns the number of records of each class.
func (t *FrequencyTable) ClassTotals() []int {
	totals := make([]int, t.classes)
	for _, row := range t.Counts {
		for j, c := range row {
			totals[j] += c
		}
	}
	return totals
}

// Merge returns the table obtained by summing the rows of t into
// intervals. ends[k] is the exclusive end row of interval k; the
// last end must be t.Rows().
func (t *FrequencyTable) Merge(ends []int) *FrequencyTable {
	m := NewFrequencyTable(t.classes)
	start := 0
	for _, end := range ends {
		if end <= start || end > t.Rows() {
			panic(fmt.Sprintf("discretize: bad interval end %d after %d", end, start))
		}
		row := make([]int, t.classes)
		for i := start; i < end; i++ {
			for j, c := range t.Counts[i] {
				row[j] += c
			}
		}
		m.Counts = append(m.Counts, row)
		start = end
	}
	if start != t.Rows() {
		panic(fmt.Sprintf("discretize: intervals end at row %d of %d", start, t.Rows()))
	}
	return m
}

// TableFromValues builds the elementary table of a sample: one row per
// distinct value of xs, in increasing order, with one column per label.
// classes[i] is the label of xs[i]. It returns the table and the
// distinct values.
func TableFromValues(xs []float64, classes []string, labels []string) (*FrequencyTable, []float64) {
	if len(xs) != len(classes) {
		panic(fmt.Sprintf("discretize: %d values and %d classes", len(xs), len(classes)))
	}
	col := make(map[string]int, len(labels))
	for j, l := range labels {
		col[l] = j
	}
	order := make([]int, len(xs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return xs[order[a]] < xs[order[b]] })

	t := NewFrequencyTable(len(labels))
	var values []float64
	for _, i := range order {
		j, ok := col[classes[i]]
		if !ok {
			panic(fmt.Sprintf("discretize: unknown label %q", classes[i]))
		}
		if len(values) == 0 || xs[i] != values[len(values)-1] {
			values = append(values, xs[i])
			t.Counts = append(t.Counts, make([]int, len(labels)))
		}
		t.Counts[len(t.Counts)-1][j]++
	}
	return t, values
}

// CutPoints returns the interior cut points of a discretization of
// the distinct sorted values: the midpoints between the last value of
// an interval and the first value of the next.
func CutPoints(ends []int, values []float64) []float64 {
	var cuts []float64
	for _, e := range ends[:len(ends)-1] {
		cuts = append(cuts, (values[e-1]+values[e])/2)
	}
	return cuts
}
