// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package discretize

import (
	"errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/mathx"
)

// ErrEmpty is returned when discretizing a table with no records.
var ErrEmpty = errors.New("empty frequency table")

// A Result is the output of a Discretizer.
type Result struct {
	// Table has one row per interval.
	Table *FrequencyTable

	// Ends[k] is the exclusive end row, in the input table, of
	// interval k.
	Ends []int

	// Cost is the MODL cost of Table.
	Cost float64
}

// Intervals returns the number of intervals of r.
func (r *Result) Intervals() int { return len(r.Ends) }

// A Discretizer partitions the rows of a table into intervals.
type Discretizer interface {
	Name() string
	Discretize(t *FrequencyTable) (*Result, error)
}

// Named returns the discretizer called name. maxIntervals bounds the
// number of intervals; 0 means no bound for MODL, and 10 intervals for
// equal frequency.
func Named(name string, maxIntervals int) (Discretizer, error) {
	switch name {
	case "modl", "MODL":
		return &MODL{MaxIntervals: maxIntervals}, nil
	case "eqfreq", "EqualFrequency":
		if maxIntervals <= 0 {
			maxIntervals = 10
		}
		return &EqualFrequency{Intervals: maxIntervals}, nil
	}
	return nil, fmt.Errorf("unknown discretizer %q", name)
}

// Cost returns the MODL cost of the partition represented by t, where
// each row is one interval:
//
//	log N + log C(N+I-1, I-1)
//	  + Σ_i log C(N_i+J-1, J-1)
//	  + Σ_i log(N_i! / Π_j N_ij!)
//
// for N records, I intervals and J classes.
func Cost(t *FrequencyTable) float64 {
	n := t.Total()
	if n == 0 {
		return 0
	}
	cost := PartitionCost(n, t.Rows())
	for _, row := range t.Counts {
		cost += CellCost(row)
	}
	return cost
}

// PartitionCost is the prior cost of choosing i intervals over n
// records.
func PartitionCost(n, i int) float64 {
	return math.Log(float64(n)) + mathx.Lchoose(n+i-1, i-1)
}

// CellCost is the cost of the class distribution of one interval.
func CellCost(row []int) float64 {
	n := 0
	for _, c := range row {
		n += c
	}
	cost := mathx.Lchoose(n+len(row)-1, len(row)-1) + lfact(n)
	for _, c := range row {
		cost -= lfact(c)
	}
	return cost
}

func lfact(n int) float64 {
	v, _ := math.Lgamma(float64(n + 1))
	return v
}

// MODL merges adjacent intervals bottom-up, starting from the rows of
// the input table, always taking the merge that decreases the cost the
// most, and stops when no merge decreases it.
//
// If MaxIntervals > 0, merging continues past the cost optimum until
// at most MaxIntervals intervals remain.
type MODL struct {
	MaxIntervals int
}

func (*MODL) Name() string { return "MODL" }

func (d *MODL) Discretize(t *FrequencyTable) (*Result, error) {
	n := t.Total()
	if n == 0 {
		return nil, ErrEmpty
	}

	// Drop empty rows up front by folding them into their
	// predecessor (or successor for leading ones).
	type interval struct {
		counts []int
		end    int
		cost   float64
	}
	var ivs []interval
	for i, row := range t.Counts {
		if t.RowTotal(i) == 0 {
			if len(ivs) > 0 {
				ivs[len(ivs)-1].end = i + 1
			}
			continue
		}
		ivs = append(ivs, interval{counts: append([]int(nil), row...), end: i + 1, cost: CellCost(row)})
	}
	ivs[len(ivs)-1].end = t.Rows()

	merged := make([]int, t.Classes())
	for len(ivs) > 1 {
		best, bestDelta := -1, math.Inf(1)
		prior := PartitionCost(n, len(ivs)-1) - PartitionCost(n, len(ivs))
		for k := 0; k+1 < len(ivs); k++ {
			for j := range merged {
				merged[j] = ivs[k].counts[j] + ivs[k+1].counts[j]
			}
			delta := prior + CellCost(merged) - ivs[k].cost - ivs[k+1].cost
			if delta < bestDelta {
				best, bestDelta = k, delta
			}
		}
		overLimit := d.MaxIntervals > 0 && len(ivs) > d.MaxIntervals
		if bestDelta >= -1e-9 && !overLimit {
			break
		}
		a, b := &ivs[best], ivs[best+1]
		for j := range a.counts {
			a.counts[j] += b.counts[j]
		}
		a.end = b.end
		a.cost = CellCost(a.counts)
		ivs = append(ivs[:best+1], ivs[best+2:]...)
	}

	ends := make([]int, len(ivs))
	for k, iv := range ivs {
		ends[k] = iv.end
	}
	m := t.Merge(ends)
	return &Result{Table: m, Ends: ends, Cost: Cost(m)}, nil
}

// EqualFrequency cuts the table into Intervals intervals holding about
// the same number of records. Row boundaries are never split, so
// heavy rows can produce fewer intervals.
type EqualFrequency struct {
	Intervals int
}

func (*EqualFrequency) Name() string { return "EqualFrequency" }

func (d *EqualFrequency) Discretize(t *FrequencyTable) (*Result, error) {
	n := t.Total()
	if n == 0 {
		return nil, ErrEmpty
	}
	if d.Intervals <= 0 {
		return nil, fmt.Errorf("equal frequency with %d intervals", d.Intervals)
	}
	var ends []int
	cum, k := 0, 1
	for i := range t.Counts {
		cum += t.RowTotal(i)
		if i == t.Rows()-1 {
			ends = append(ends, i+1)
			break
		}
		// Close the interval once it reaches its share of records.
		if float64(cum) >= float64(k)*float64(n)/float64(d.Intervals) {
			ends = append(ends, i+1)
			for float64(cum) >= float64(k)*float64(n)/float64(d.Intervals) {
				k++
			}
		}
	}
	m := t.Merge(ends)
	return &Result{Table: m, Ends: ends, Cost: Cost(m)}, nil
}
