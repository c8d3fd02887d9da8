// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package evaluate scores class predictions against generative laws
// with known true class probabilities.
//
// An Evaluator predicts the class of a record from a trained data
// grid. The criteria compare any Predictor with the noisy true
// probability of a Truth: the 0/1 error against the drawn label, the
// Kullback-Leibler divergence, and the squared error on the drawn
// label's probability.
package evaluate

import (
	"fmt"
	"math"

	"golang.org/x/gridbench/grid"
	"golang.org/x/gridbench/sampling"
	"golang.org/x/gridbench/schema"
	"golang.org/x/gridbench/valueindex"
)

// normTolerance bounds the deviation of p(+)+p(-) from 1.
const normTolerance = 1e-5

// minProb floors predicted probabilities in the divergence.
const minProb = 1e-12

// A Predictor predicts the class distribution of a record.
type Predictor interface {
	PredictedProb(rec *schema.Record, class string) float64
	PredictedClass(rec *schema.Record) string
}

// A Truth knows the true class distribution of a record, label noise
// included, and where the drawn label is stored.
type Truth interface {
	NoisyTrueProb(rec *schema.Record, class string) float64
	Layout() *sampling.Layout
}

// An Evaluator predicts classes from a trained data grid.
//
// Each cell predicts the Laplace estimate (n_cj + ε)/(n_c + Jε) with
// ε = 1/(N+1). Records outside the grid get the global class ratios.
type Evaluator struct {
	grid    *grid.DataGrid
	indexes []valueindex.Index
	table   [][2]float64 // per cell: P(+), P(-)
	global  [2]float64
	plus    int
	minus   int
	parts   []int
}

// New returns an Evaluator for g, whose partitions are resolved
// against the attributes of class c.
func New(g *grid.DataGrid, c *schema.Class) (*Evaluator, error) {
	e := &Evaluator{
		grid:  g,
		plus:  g.TargetIndex(sampling.Plus),
		minus: g.TargetIndex(sampling.Minus),
		parts: make([]int, len(g.Inputs)),
	}
	if len(g.Targets) > 2 || (len(g.Targets) > 0 && e.plus < 0 && e.minus < 0) {
		return nil, fmt.Errorf("grid targets %q are not binary", g.Targets)
	}
	if err := g.Bind(c); err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	for _, p := range g.Inputs {
		e.indexes = append(e.indexes, p.Index())
	}

	n := g.Frequency()
	totals := g.TargetFrequencies()
	e.global = [2]float64{0.5, 0.5}
	if n > 0 && e.plus >= 0 && e.minus >= 0 {
		e.global = [2]float64{float64(totals[e.plus]) / float64(n), float64(totals[e.minus]) / float64(n)}
	}

	eps := 1 / float64(n+1)
	jeps := float64(len(g.Targets)) * eps
	e.table = make([][2]float64, len(g.Frequencies))
	for cell, row := range g.Frequencies {
		nc := float64(g.CellFrequency(cell))
		if nc == 0 {
			e.table[cell] = [2]float64{0.5, 0.5}
			continue
		}
		if e.plus >= 0 && e.minus >= 0 {
			e.table[cell] = [2]float64{
				(float64(row[e.plus]) + eps) / (nc + jeps),
				(float64(row[e.minus]) + eps) / (nc + jeps),
			}
		}
	}
	return e, nil
}

// Grid returns the grid e predicts from.
func (e *Evaluator) Grid() *grid.DataGrid { return e.grid }

// CellIndex returns the grid cell of rec, or -1 if rec falls outside
// the grid.
func (e *Evaluator) CellIndex(rec *schema.Record) int {
	for k, p := range e.grid.Inputs {
		e.parts[k] = p.PartIndex(rec, e.indexes[k])
	}
	return e.grid.CellIndexOf(e.parts)
}

// distribution returns P(+) and P(-) for rec.
func (e *Evaluator) distribution(rec *schema.Record) (float64, float64) {
	switch {
	case e.plus < 0:
		return 0, 1
	case e.minus < 0:
		return 1, 0
	}
	var d [2]float64
	if cell := e.CellIndex(rec); cell < 0 {
		d = e.global
	} else {
		d = e.table[cell]
	}
	checkDistribution(d[0], d[1])
	return d[0], d[1]
}

// PredictedProb returns the predicted probability of class for rec.
func (e *Evaluator) PredictedProb(rec *schema.Record, class string) float64 {
	pPlus, pMinus := e.distribution(rec)
	return pick(pPlus, pMinus, class)
}

// PredictedClass returns the most probable class for rec. Ties go to
// Plus.
func (e *Evaluator) PredictedClass(rec *schema.Record) string {
	pPlus, pMinus := e.distribution(rec)
	if pPlus >= pMinus {
		return sampling.Plus
	}
	return sampling.Minus
}

// A LawPredictor predicts with the true probability of a law. It
// scores parametric models such as a fitted GaussianMixture.
type LawPredictor struct {
	Law    sampling.Law
	Layout *sampling.Layout
}

func (p *LawPredictor) PredictedProb(rec *schema.Record, class string) float64 {
	pPlus := p.Law.TrueProb(rec, p.Layout, sampling.Plus)
	checkDistribution(pPlus, 1-pPlus)
	return pick(pPlus, 1-pPlus, class)
}

func (p *LawPredictor) PredictedClass(rec *schema.Record) string {
	if p.Law.TrueProb(rec, p.Layout, sampling.Plus) >= 0.5 {
		return sampling.Plus
	}
	return sampling.Minus
}

func pick(pPlus, pMinus float64, class string) float64 {
	switch class {
	case sampling.Plus:
		return pPlus
	case sampling.Minus:
		return pMinus
	}
	return 0
}

func checkDistribution(pPlus, pMinus float64) {
	if !(pPlus >= 0 && pPlus <= 1 && pMinus >= 0 && pMinus <= 1) {
		panic(fmt.Sprintf("evaluate: probabilities (%v, %v) outside [0,1]", pPlus, pMinus))
	}
	if math.Abs(pPlus+pMinus-1) > normTolerance {
		panic(fmt.Sprintf("evaluate: probabilities (%v, %v) do not sum to 1", pPlus, pMinus))
	}
}

func trueDistribution(t Truth, rec *schema.Record) (float64, float64) {
	pPlus, pMinus := t.NoisyTrueProb(rec, sampling.Plus), t.NoisyTrueProb(rec, sampling.Minus)
	checkDistribution(pPlus, pMinus)
	return pPlus, pMinus
}

// ObjectError returns 1 if p mispredicts the drawn label of rec, and 0
// otherwise.
func ObjectError(p Predictor, t Truth, rec *schema.Record) float64 {
	if p.PredictedClass(rec) != rec.Categorical(t.Layout().Target) {
		return 1
	}
	return 0
}

// ObjectDKL returns the Kullback-Leibler divergence of the predicted
// distribution from the true one: Σ t·log(t/p).
func ObjectDKL(p Predictor, t Truth, rec *schema.Record) float64 {
	tPlus, tMinus := trueDistribution(t, rec)
	var d float64
	for _, c := range [...]struct {
		class string
		prob  float64
	}{{sampling.Plus, tPlus}, {sampling.Minus, tMinus}} {
		if c.prob == 0 {
			continue
		}
		pp := math.Max(p.PredictedProb(rec, c.class), minProb)
		d += c.prob * math.Log(c.prob/pp)
	}
	return d
}

// ObjectMSE returns the squared difference between the true and the
// predicted probability of the drawn label of rec.
func ObjectMSE(p Predictor, t Truth, rec *schema.Record) float64 {
	trueDistribution(t, rec)
	drawn := rec.Categorical(t.Layout().Target)
	diff := t.NoisyTrueProb(rec, drawn) - p.PredictedProb(rec, drawn)
	return diff * diff
}

func mean(db *schema.Database, f func(*schema.Record) float64) float64 {
	if db.Len() == 0 {
		return 0
	}
	var sum float64
	for _, rec := range db.Objects {
		sum += f(rec)
	}
	return sum / float64(db.Len())
}

// DatabaseError returns the mean ObjectError over db.
func DatabaseError(p Predictor, t Truth, db *schema.Database) float64 {
	return mean(db, func(rec *schema.Record) float64 { return ObjectError(p, t, rec) })
}

// DatabaseDKL returns the mean ObjectDKL over db.
func DatabaseDKL(p Predictor, t Truth, db *schema.Database) float64 {
	return mean(db, func(rec *schema.Record) float64 { return ObjectDKL(p, t, rec) })
}

// DatabaseMSE returns the mean ObjectMSE over db.
func DatabaseMSE(p Predictor, t Truth, db *schema.Database) float64 {
	return mean(db, func(rec *schema.Record) float64 { return ObjectMSE(p, t, rec) })
}
