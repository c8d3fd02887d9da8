// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evaluate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/gridbench/grid"
	"golang.org/x/gridbench/sampling"
	"golang.org/x/gridbench/schema"
)

func sample(gen *sampling.Generator, name string, n int, seed int64) *schema.Database {
	db := schema.NewDatabase(name, gen.SampleClass(), n)
	gen.GenerateDatabase(db, rand.New(rand.NewSource(seed)))
	return db
}

func TestPerfectChessBoardGrid(t *testing.T) {
	gen := sampling.NewGenerator(&sampling.ChessBoard{Categorical: true, Modalities: 2}, 0, nil)
	c := gen.SampleClass()

	// One cell per modality pair, labeled by parity.
	g := grid.New([]*grid.Partition{
		grid.NewCategorical("X1", [][]string{{"v0"}, {"v1"}}),
		grid.NewCategorical("X2", [][]string{{"v0"}, {"v1"}}),
	}, []string{sampling.Plus, sampling.Minus})
	g.Frequencies[g.CellIndexOf([]int{0, 0})][0] = 10
	g.Frequencies[g.CellIndexOf([]int{1, 1})][0] = 10
	g.Frequencies[g.CellIndexOf([]int{0, 1})][1] = 10
	g.Frequencies[g.CellIndexOf([]int{1, 0})][1] = 10

	e, err := New(g, c)
	require.NoError(t, err)
	test := sample(gen, "test", 500, 9)
	for _, rec := range test.Objects {
		if ObjectError(e, gen, rec) != 0 {
			t.Fatalf("perfect grid mispredicts %v", rec.Categorical(gen.Layout().Target))
		}
	}
	assert.Equal(t, 0.0, DatabaseError(e, gen, test))
	assert.Less(t, DatabaseDKL(e, gen, test), 0.01)
	assert.Less(t, DatabaseMSE(e, gen, test), 1e-3)
}

func TestRandomLawError(t *testing.T) {
	gen := sampling.NewGenerator(&sampling.Random{Inputs: 2}, 0, nil)
	c := gen.SampleClass()
	train := sample(gen, "train", 1000, 0)
	test := sample(gen, "test", 1000, 12345)

	g, err := (&grid.EqualFrequency{Parts: 4}).Build(train, c.Inputs(), c.Target())
	require.NoError(t, err)
	e, err := New(g, c)
	require.NoError(t, err)

	errRate := DatabaseError(e, gen, test)
	assert.GreaterOrEqual(t, errRate, 0.40)
	assert.LessOrEqual(t, errRate, 0.60)
	assert.GreaterOrEqual(t, DatabaseDKL(e, gen, test), 0.0)
}

func TestNormalization(t *testing.T) {
	gen := sampling.NewGenerator(&sampling.ChessBoard{Modalities: 3}, 0.2, nil)
	c := gen.SampleClass()
	train := sample(gen, "train", 300, 1)
	g, err := (&grid.EqualFrequency{Parts: 3}).Build(train, c.Inputs(), c.Target())
	require.NoError(t, err)
	e, err := New(g, c)
	require.NoError(t, err)
	for _, rec := range sample(gen, "test", 300, 2).Objects {
		sum := e.PredictedProb(rec, sampling.Plus) + e.PredictedProb(rec, sampling.Minus)
		assert.InDelta(t, 1, sum, 1e-5)
	}
}

func TestLaplaceTable(t *testing.T) {
	gen := sampling.NewGenerator(&sampling.Random{Inputs: 1}, 0, nil)
	c := gen.SampleClass()
	g := grid.New([]*grid.Partition{grid.NewNumerical("X1", []float64{0.5})},
		[]string{sampling.Plus, sampling.Minus})
	g.Frequencies[0] = []int{3, 1}
	// Cell 1 stays empty.
	e, err := New(g, c)
	require.NoError(t, err)

	rec := schema.NewRecord(c)
	x := c.Lookup("X1").Index
	eps := 1.0 / 5

	rec.SetNumerical(x, 0.1)
	assert.Equal(t, 0, e.CellIndex(rec))
	assert.InDelta(t, (3+eps)/(4+2*eps), e.PredictedProb(rec, sampling.Plus), 1e-12)
	assert.Equal(t, sampling.Plus, e.PredictedClass(rec))

	rec.SetNumerical(x, 0.9)
	assert.Equal(t, 0.5, e.PredictedProb(rec, sampling.Plus))
	assert.Equal(t, sampling.Plus, e.PredictedClass(rec), "ties go to Plus")

	// Missing values fall back to the global ratios.
	rec.SetNumerical(x, math.NaN())
	assert.Equal(t, -1, e.CellIndex(rec))
	assert.Equal(t, 0.75, e.PredictedProb(rec, sampling.Plus))
}

func TestAbsentClass(t *testing.T) {
	gen := sampling.NewGenerator(&sampling.Random{Inputs: 1}, 0, nil)
	c := gen.SampleClass()
	g := grid.New([]*grid.Partition{grid.NewNumerical("X1", nil)}, []string{sampling.Minus})
	g.Frequencies[0] = []int{5}
	e, err := New(g, c)
	require.NoError(t, err)

	rec := schema.NewRecord(c)
	rec.SetNumerical(c.Lookup("X1").Index, 0.3)
	assert.Equal(t, 0.0, e.PredictedProb(rec, sampling.Plus))
	assert.Equal(t, 1.0, e.PredictedProb(rec, sampling.Minus))
	assert.Equal(t, sampling.Minus, e.PredictedClass(rec))

	// Zero predicted probability is floored in the divergence.
	rec.SetCategorical(gen.Layout().Target, sampling.Plus)
	d := ObjectDKL(e, gen, rec)
	assert.False(t, math.IsInf(d, 0))
	assert.InDelta(t, 0.5*math.Log(0.5/minProb)+0.5*math.Log(0.5), d, 1e-9)
}

func TestCriteria(t *testing.T) {
	gen := sampling.NewGenerator(&sampling.ChessBoard{Modalities: 2}, 0.5, nil)
	c := gen.SampleClass()
	lay := gen.Layout()
	rec := schema.NewRecord(c)
	rec.SetNumerical(lay.Inputs[0], 0.1)
	rec.SetNumerical(lay.Inputs[1], 0.1)
	rec.SetCategorical(lay.Target, sampling.Minus)
	// Parity is even, so the noisy truth is P(+) = 0.75.

	g := grid.New([]*grid.Partition{grid.NewNumerical("X1", nil)}, []string{sampling.Plus, sampling.Minus})
	g.Frequencies[0] = []int{1, 1}
	e, err := New(g, c)
	require.NoError(t, err)
	// Balanced cell: P(+) = 0.5, predicted Plus.

	assert.Equal(t, 1.0, ObjectError(e, gen, rec))
	wantDKL := 0.75*math.Log(0.75/0.5) + 0.25*math.Log(0.25/0.5)
	assert.InDelta(t, wantDKL, ObjectDKL(e, gen, rec), 1e-12)
	assert.InDelta(t, (0.25-0.5)*(0.25-0.5), ObjectMSE(e, gen, rec), 1e-12)

	empty := schema.NewDatabase("empty", c, 0)
	assert.Equal(t, 0.0, DatabaseError(e, gen, empty))
	assert.Equal(t, 0.0, DatabaseDKL(e, gen, empty))
	assert.Equal(t, 0.0, DatabaseMSE(e, gen, empty))
}

func TestLawPredictor(t *testing.T) {
	gen := sampling.NewGenerator(sampling.NewGaussianMixture(), 0, nil)
	train := sample(gen, "train", 2000, 3)
	test := sample(gen, "test", 2000, 4)
	fit := &LawPredictor{Law: sampling.FitGaussianMixture(train, gen.Layout()), Layout: gen.Layout()}
	exact := &LawPredictor{Law: gen.Law, Layout: gen.Layout()}

	assert.InDelta(t, 0.0, DatabaseDKL(exact, gen, test), 1e-12)
	assert.Less(t, DatabaseDKL(fit, gen, test), 0.01)
	// The Bayes error of the default mixture is Φ(-1/√2) ≈ 0.24.
	assert.InDelta(t, 0.24, DatabaseError(exact, gen, test), 0.04)
}

func TestNonBinaryTargets(t *testing.T) {
	gen := sampling.NewGenerator(&sampling.Random{Inputs: 1}, 0, nil)
	g := grid.New([]*grid.Partition{grid.NewNumerical("X1", nil)}, []string{"a", "b"})
	_, err := New(g, gen.SampleClass())
	assert.Error(t, err)

	g = grid.New([]*grid.Partition{grid.NewNumerical("Z", nil)}, []string{sampling.Plus})
	_, err = New(g, gen.SampleClass())
	assert.Error(t, err)
}

func TestNewBindsGrid(t *testing.T) {
	gen := sampling.NewGenerator(&sampling.Random{Inputs: 2}, 0, nil)
	c := gen.SampleClass()
	g := grid.New([]*grid.Partition{grid.NewNumerical("X2", []float64{0.5})},
		[]string{sampling.Plus, sampling.Minus})
	e, err := New(g, c)
	require.NoError(t, err)
	x2 := c.Lookup("X2").Index
	assert.Equal(t, x2, g.Inputs[0].Index())

	rec := schema.NewRecord(c)
	rec.SetNumerical(x2, 0.7)
	assert.Equal(t, 1, e.CellIndex(rec))
	assert.Equal(t, e.CellIndex(rec), g.CellIndex(rec))

	sym := grid.New([]*grid.Partition{grid.NewCategorical("X1", [][]string{{"v0"}})},
		[]string{sampling.Plus, sampling.Minus})
	_, err = New(sym, c)
	assert.Error(t, err, "categorical partition of a numerical attribute")
}
