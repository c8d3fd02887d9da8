// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package univariate

import (
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/gridbench/discretize"
	"golang.org/x/gridbench/sampling"
	"golang.org/x/gridbench/schema"
	"golang.org/x/gridbench/valueindex"
)

// ClassName is the name of the univariate sample class.
const ClassName = "NumericalSample(X,Class)"

// A Generator writes samples of a Law into records of the class
// NumericalSample(X,Class).
type Generator struct {
	Law Law

	registry *schema.Registry
	class    *schema.Class
	x        valueindex.Index
	target   valueindex.Index
}

// NewGenerator returns a Generator for law. The sample class is cached
// in reg, or in a new registry if reg is nil.
func NewGenerator(law Law, reg *schema.Registry) *Generator {
	if reg == nil {
		reg = schema.NewRegistry()
	}
	return &Generator{Law: law, registry: reg}
}

// SampleClass returns the sample class, building it on first use.
func (g *Generator) SampleClass() *schema.Class {
	if g.class != nil {
		return g.class
	}
	c := g.registry.Lookup(ClassName)
	if c == nil {
		c = schema.NewClass(ClassName)
		c.AddAttribute("X", schema.Numerical)
		c.AddAttribute(sampling.TargetName, schema.Categorical)
		if err := c.SetTarget(sampling.TargetName); err != nil {
			panic(err)
		}
		c.Compile()
		if err := g.registry.Insert(c); err != nil {
			panic(err)
		}
	}
	g.class = c
	g.x = c.Lookup("X").Index
	g.target = c.Target().Index
	return c
}

// GenerateDatabase regenerates every record of db.
func (g *Generator) GenerateDatabase(db *schema.Database, rng *rand.Rand) {
	g.SampleClass()
	for _, rec := range db.Objects {
		x, class := g.Law.Generate(rng)
		rec.SetNumerical(g.x, x)
		rec.SetCategorical(g.target, class)
	}
}

// Values returns the values and classes stored in db.
func (g *Generator) Values(db *schema.Database) ([]float64, []string) {
	g.SampleClass()
	xs := make([]float64, db.Len())
	classes := make([]string, db.Len())
	for i, rec := range db.Objects {
		xs[i] = rec.Numerical(g.x)
		classes[i] = rec.Categorical(g.target)
	}
	return xs, classes
}

// A Discretization is a partition of X into intervals with the class
// frequencies of each interval.
type Discretization struct {
	// Bounds holds the interior cut points. Interval i spans
	// (Bounds[i-1], Bounds[i]], the outer ones being unbounded.
	Bounds []float64

	// Frequencies[i] holds the Plus and Minus counts of interval i.
	Frequencies [][2]int
}

var labels = []string{sampling.Plus, sampling.Minus}

// NewDiscretization converts a discretizer result over the distinct
// sorted values into a Discretization.
func NewDiscretization(res *discretize.Result, values []float64) *Discretization {
	if res.Table.Classes() != 2 {
		panic(fmt.Sprintf("univariate: %d classes", res.Table.Classes()))
	}
	d := &Discretization{Bounds: discretize.CutPoints(res.Ends, values)}
	for _, row := range res.Table.Counts {
		d.Frequencies = append(d.Frequencies, [2]int{row[0], row[1]})
	}
	return d
}

// Discretize discretizes a sample with disc.
func Discretize(disc discretize.Discretizer, xs []float64, classes []string) (*Discretization, error) {
	tab, values := discretize.TableFromValues(xs, classes, labels)
	res, err := disc.Discretize(tab)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", disc.Name(), err)
	}
	return NewDiscretization(res, values), nil
}

// Intervals returns the number of intervals of d.
func (d *Discretization) Intervals() int { return len(d.Frequencies) }

// interval describes one interval as scored against a law.
type interval struct {
	lower, upper float64
	plus, minus  int
}

func (iv interval) plusMajority() bool { return iv.plus >= iv.minus }

func (iv interval) plusProb() float64 {
	return float64(iv.plus) / float64(iv.plus+iv.minus)
}

// intervals returns the intervals of d. If a class is absent from the
// sample, the support is one interval.
func (d *Discretization) intervals() []interval {
	var plus, minus int
	for _, f := range d.Frequencies {
		plus += f[0]
		minus += f[1]
	}
	if plus == 0 || minus == 0 {
		return []interval{{math.Inf(-1), math.Inf(1), plus, minus}}
	}
	ivs := make([]interval, len(d.Frequencies))
	for i, f := range d.Frequencies {
		ivs[i] = interval{math.Inf(-1), math.Inf(1), f[0], f[1]}
		if i > 0 {
			ivs[i].lower = d.Bounds[i-1]
		}
		if i < len(d.Bounds) {
			ivs[i].upper = d.Bounds[i]
		}
	}
	return ivs
}

// Steps returns the interval bounds and the estimated P(+) of each
// interval.
func (d *Discretization) Steps() (bounds []float64, probs []float64) {
	for _, iv := range d.intervals() {
		if iv.plus+iv.minus > 0 {
			probs = append(probs, iv.plusProb())
		} else {
			probs = append(probs, 0.5)
		}
	}
	if len(probs) == 1 {
		return nil, probs
	}
	return d.Bounds, probs
}

// LearningError returns the training error of the majority vote of
// each interval. Ties vote Plus.
func LearningError(d *Discretization) float64 {
	var errs, n int
	for _, iv := range d.intervals() {
		n += iv.plus + iv.minus
		if iv.plusMajority() {
			errs += iv.minus
		} else {
			errs += iv.plus
		}
	}
	if n == 0 {
		return 0
	}
	return float64(errs) / float64(n)
}

// TestError returns the exact expected error of the majority vote of
// d under law.
func TestError(law Law, d *Discretization) float64 {
	var e float64
	for _, iv := range d.intervals() {
		e += law.IntervalTestError(iv.lower, iv.upper, iv.plusMajority())
	}
	return e
}

// Distance returns the exact L1 distance between the estimated
// P(+|x) of d and the true one of law.
func Distance(law Law, d *Discretization) float64 {
	var dist float64
	for _, iv := range d.intervals() {
		if iv.plus+iv.minus == 0 {
			continue
		}
		dist += law.IntervalDistance(iv.lower, iv.upper, iv.plusProb())
	}
	return dist
}
