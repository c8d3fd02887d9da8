// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grid implements data grids: a partition of each input
// attribute into parts, whose cross product forms cells annotated with
// target class frequencies.
package grid

import (
	"fmt"

	"golang.org/x/gridbench/discretize"
	"golang.org/x/gridbench/schema"
)

// A DataGrid is a product of input partitions with per-cell target
// frequencies.
type DataGrid struct {
	Inputs []*Partition

	// Targets holds one target label per target part.
	Targets []string

	// Frequencies[c][j] is the number of training records in cell c
	// with label Targets[j]. Cells are indexed in mixed radix, the
	// first input varying fastest.
	Frequencies [][]int

	// Cost is the MODL cost of the grid, used to sort grids.
	Cost float64
}

// New returns an empty grid over the given partitions and labels.
func New(inputs []*Partition, targets []string) *DataGrid {
	g := &DataGrid{Inputs: inputs, Targets: targets}
	g.Frequencies = make([][]int, g.CellCount())
	for c := range g.Frequencies {
		g.Frequencies[c] = make([]int, len(targets))
	}
	return g
}

// CellCount returns the number of cells of g.
func (g *DataGrid) CellCount() int {
	n := 1
	for _, p := range g.Inputs {
		n *= p.PartCount()
	}
	return n
}

// CellIndexOf returns the cell of the given part indexes, or -1 if any
// of them is -1.
func (g *DataGrid) CellIndexOf(parts []int) int {
	cell, radix := 0, 1
	for k, p := range g.Inputs {
		if parts[k] < 0 {
			return -1
		}
		cell += parts[k] * radix
		radix *= p.PartCount()
	}
	return cell
}

// CellIndex returns the cell holding rec, using the value indexes the
// partitions are bound to.
func (g *DataGrid) CellIndex(rec *schema.Record) int {
	cell, radix := 0, 1
	for _, p := range g.Inputs {
		part := p.PartIndex(rec, p.index)
		if part < 0 {
			return -1
		}
		cell += part * radix
		radix *= p.PartCount()
	}
	return cell
}

// Bind binds every input partition of g to class c.
func (g *DataGrid) Bind(c *schema.Class) error {
	for _, p := range g.Inputs {
		if err := p.Bind(c); err != nil {
			return err
		}
	}
	return nil
}

// TargetIndex returns the target part of label, or -1.
func (g *DataGrid) TargetIndex(label string) int {
	for j, t := range g.Targets {
		if t == label {
			return j
		}
	}
	return -1
}

// Add counts rec in its cell. Records outside the grid are ignored.
func (g *DataGrid) Add(rec *schema.Record, label string) {
	cell := g.CellIndex(rec)
	j := g.TargetIndex(label)
	if cell < 0 || j < 0 {
		return
	}
	g.Frequencies[cell][j]++
}

// CellFrequency returns the number of records in cell c.
func (g *DataGrid) CellFrequency(c int) int {
	n := 0
	for _, f := range g.Frequencies[c] {
		n += f
	}
	return n
}

// Frequency returns the number of records counted in g.
func (g *DataGrid) Frequency() int {
	n := 0
	for c := range g.Frequencies {
		n += g.CellFrequency(c)
	}
	return n
}

// TargetFrequencies returns the number of records of each label.
func (g *DataGrid) TargetFrequencies() []int {
	totals := make([]int, len(g.Targets))
	for _, row := range g.Frequencies {
		for j, f := range row {
			totals[j] += f
		}
	}
	return totals
}

// NonEmptyCellCount returns the number of cells with records.
func (g *DataGrid) NonEmptyCellCount() int {
	n := 0
	for c := range g.Frequencies {
		if g.CellFrequency(c) > 0 {
			n++
		}
	}
	return n
}

// InformativeAttributeCount returns the number of inputs partitioned
// in more than one part.
func (g *DataGrid) InformativeAttributeCount() int {
	n := 0
	for _, p := range g.Inputs {
		if p.PartCount() > 1 {
			n++
		}
	}
	return n
}

// PartSizes returns the part count of each input.
func (g *DataGrid) PartSizes() []int {
	sizes := make([]int, len(g.Inputs))
	for k, p := range g.Inputs {
		sizes[k] = p.PartCount()
	}
	return sizes
}

func (g *DataGrid) String() string {
	return fmt.Sprintf("grid%v cells=%d/%d cost=%.3f", g.PartSizes(), g.NonEmptyCellCount(), g.CellCount(), g.Cost)
}

// Cost returns the MODL-style cost of g: a prior per input partition
// plus the class distribution cost of every cell.
//
// A numerical input with I intervals costs log N + log C(N+I-1, I-1).
// A categorical input with V values in G groups costs
// log V + log C(V+G-1, G-1). Each cell costs as a discretization
// interval.
func Cost(g *DataGrid) float64 {
	n := g.Frequency()
	if n == 0 {
		return 0
	}
	var cost float64
	for _, p := range g.Inputs {
		if p.Type == schema.Numerical {
			cost += discretize.PartitionCost(n, p.PartCount())
		} else {
			values := len(p.groupOf)
			if values == 0 {
				values = 1
			}
			cost += discretize.PartitionCost(values, p.PartCount())
		}
	}
	for _, row := range g.Frequencies {
		cost += discretize.CellCost(row)
	}
	return cost
}
