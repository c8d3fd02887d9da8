// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/gridbench/discretize"
	"golang.org/x/gridbench/sampling"
	"golang.org/x/gridbench/schema"
)

func TestPartOfValue(t *testing.T) {
	p := NewNumerical("X", []float64{0.25, 0.5})
	check := func(x float64, want int) {
		t.Helper()
		if got := p.PartOfValue(x); got != want {
			t.Errorf("PartOfValue(%v) = %d, want %d", x, got, want)
		}
	}
	check(-1, 0)
	check(0.25, 0)
	check(0.26, 1)
	check(0.5, 1)
	check(0.51, 2)
	check(math.Inf(1), 2)
	check(math.NaN(), -1)
	if p.PartCount() != 3 {
		t.Errorf("PartCount() = %d, want 3", p.PartCount())
	}
}

func TestPartOfSymbol(t *testing.T) {
	p := NewCategorical("Y", [][]string{{"a", "b"}, {"c"}})
	if got := p.PartOfSymbol("b"); got != 0 {
		t.Errorf("PartOfSymbol(b) = %d, want 0", got)
	}
	if got := p.PartOfSymbol("z"); got != -1 {
		t.Errorf("unknown value without star: got %d, want -1", got)
	}
	p = NewCategorical("Y", [][]string{{"a"}, {"c", StarValue}})
	if got := p.PartOfSymbol("z"); got != 1 {
		t.Errorf("unknown value with star: got %d, want 1", got)
	}
}

func TestCellIndex(t *testing.T) {
	g := New([]*Partition{
		NewNumerical("X1", []float64{0.5}),
		NewNumerical("X2", []float64{0.2, 0.4}),
	}, []string{"+", "-"})
	if g.CellCount() != 6 {
		t.Fatalf("CellCount() = %d, want 6", g.CellCount())
	}
	// First input varies fastest.
	check := func(parts []int, want int) {
		t.Helper()
		if got := g.CellIndexOf(parts); got != want {
			t.Errorf("CellIndexOf(%v) = %d, want %d", parts, got, want)
		}
	}
	check([]int{0, 0}, 0)
	check([]int{1, 0}, 1)
	check([]int{0, 1}, 2)
	check([]int{1, 2}, 5)
	check([]int{-1, 2}, -1)
}

func chessBoardSample(t *testing.T, categorical bool, n int) (*sampling.Generator, *schema.Database) {
	t.Helper()
	gen := sampling.NewGenerator(&sampling.ChessBoard{Categorical: categorical, Modalities: 2}, 0, nil)
	db := schema.NewDatabase("train", gen.SampleClass(), n)
	gen.GenerateDatabase(db, rand.New(rand.NewSource(1)))
	return gen, db
}

func TestEqualFrequencySymbolGrid(t *testing.T) {
	gen, db := chessBoardSample(t, true, 400)
	c := gen.SampleClass()
	g, err := (&EqualFrequency{Parts: 2}).Build(db, c.Inputs(), c.Target())
	require.NoError(t, err)

	assert.Equal(t, []string{"+", "-"}, g.Targets)
	assert.Equal(t, []int{2, 2}, g.PartSizes())
	assert.Equal(t, 400, g.Frequency())
	assert.Equal(t, 4, g.NonEmptyCellCount())
	assert.Equal(t, 2, g.InformativeAttributeCount())
	// Every cell is pure.
	for cell, row := range g.Frequencies {
		if row[0] > 0 && row[1] > 0 {
			t.Errorf("cell %d is mixed: %v", cell, row)
		}
	}
	assert.InDelta(t, Cost(g), g.Cost, 1e-9)
	assert.True(t, g.Cost > 0)
}

func TestEqualFrequencyNumericalBounds(t *testing.T) {
	gen, db := chessBoardSample(t, false, 1000)
	c := gen.SampleClass()
	g, err := (&EqualFrequency{Parts: 4}).Build(db, c.Inputs(), c.Target())
	require.NoError(t, err)
	for _, p := range g.Inputs {
		require.Len(t, p.Bounds, 3)
		for k, b := range p.Bounds {
			assert.InDelta(t, float64(k+1)/4, b, 0.06)
		}
	}
	// Each interval holds about a quarter of the records.
	counts := make([]int, 4)
	for _, rec := range db.Objects {
		counts[g.Inputs[0].PartIndex(rec, g.Inputs[0].Index())]++
	}
	for _, n := range counts {
		assert.InDelta(t, 250, n, 2)
	}
}

func TestUnivariateBuilder(t *testing.T) {
	// One numerical input whose class flips at 0.5.
	c := schema.NewClass("U")
	c.AddAttribute("X", schema.Numerical)
	c.AddAttribute("Class", schema.Categorical)
	require.NoError(t, c.SetTarget("Class"))
	c.Compile()
	x, target := c.Lookup("X"), c.Target()
	db := schema.NewDatabase("train", c, 200)
	for i, rec := range db.Objects {
		v := float64(i) / 200
		rec.SetNumerical(x.Index, v)
		if v < 0.5 {
			rec.SetCategorical(target.Index, "-")
		} else {
			rec.SetCategorical(target.Index, "+")
		}
	}
	g, err := (&Univariate{Discretizer: &discretize.MODL{}}).Build(db, c.Inputs(), target)
	require.NoError(t, err)
	require.Len(t, g.Inputs, 1)
	assert.Equal(t, []float64{(0.495 + 0.5) / 2}, g.Inputs[0].Bounds)
	assert.Equal(t, 2, g.NonEmptyCellCount())
}

func TestBind(t *testing.T) {
	gen, _ := chessBoardSample(t, false, 1)
	g := New([]*Partition{NewNumerical("X2", nil)}, []string{"+", "-"})
	require.NoError(t, g.Bind(gen.SampleClass()))
	assert.Equal(t, gen.SampleClass().Lookup("X2").Index, g.Inputs[0].Index())

	bad := New([]*Partition{NewNumerical("Nope", nil)}, nil)
	assert.Error(t, bad.Bind(gen.SampleClass()))
	sym := New([]*Partition{NewCategorical("X1", [][]string{{StarValue}})}, nil)
	assert.Error(t, sym.Bind(gen.SampleClass()))
}

func TestParams(t *testing.T) {
	p := NewParams("eqfreq", 0)
	f := p.Freshness()
	b, err := p.Builder()
	require.NoError(t, err)
	assert.Equal(t, &EqualFrequency{Parts: 10}, b)

	p.SetMethod("modl")
	p.SetMaxParts(3)
	assert.Equal(t, f+2, p.Freshness())
	b, err = p.Builder()
	require.NoError(t, err)
	assert.Equal(t, &Univariate{Discretizer: &discretize.MODL{MaxIntervals: 3}}, b)

	p.SetMethod("bogus")
	_, err = p.Builder()
	assert.Error(t, err)
}
