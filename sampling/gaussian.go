// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sampling

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"

	"golang.org/x/gridbench/schema"
)

// densityEpsilon smooths the class densities of a GaussianMixture so
// that points far from both means still get a defined probability.
const densityEpsilon = 1e-5

// A Gaussian is an axis-aligned bivariate normal distribution.
type Gaussian struct {
	Mean   [2]float64
	StdDev [2]float64
}

// density returns the density of g at (x, y), up to the constant
// factor 1/(2π).
func (g Gaussian) density(x, y float64) float64 {
	d := 1.0
	for i, v := range [2]float64{x, y} {
		z := (v - g.Mean[i]) / g.StdDev[i]
		d *= math.Exp(-z*z/2) / g.StdDev[i]
	}
	return d
}

// GaussianMixture draws the class by a fair coin and then the two
// inputs from that class's Gaussian.
type GaussianMixture struct {
	Minus, Plus Gaussian
}

// NewGaussianMixture returns the default mixture: class Minus centered
// at (-1,-1) and class Plus at (1,1), both with standard deviation 2.
func NewGaussianMixture() *GaussianMixture {
	return &GaussianMixture{
		Minus: Gaussian{Mean: [2]float64{-1, -1}, StdDev: [2]float64{2, 2}},
		Plus:  Gaussian{Mean: [2]float64{1, 1}, StdDev: [2]float64{2, 2}},
	}
}

func (l *GaussianMixture) Name() string { return "GaussianMixture" }

func (l *GaussianMixture) InputTypes() []schema.Type {
	return inputTypes(2, false)
}

func (l *GaussianMixture) Generate(rec *schema.Record, lay *Layout, rng *rand.Rand) {
	class := coin(rng)
	g := l.Minus
	if class == Plus {
		g = l.Plus
	}
	for i, idx := range lay.Inputs {
		n := stats.NormalDist{Mu: g.Mean[i], Sigma: g.StdDev[i]}
		rec.SetNumerical(idx, n.InvCDF(openUnit(rng)))
	}
	rec.SetCategorical(lay.Target, class)
}

// openUnit returns a uniform value in the open interval (0,1), on
// which InvCDF is finite.
func openUnit(rng *rand.Rand) float64 {
	return (float64(rng.Int63n(1<<53)) + 0.5) / (1 << 53)
}

func (l *GaussianMixture) TrueProb(rec *schema.Record, lay *Layout, class string) float64 {
	x, y := rec.Numerical(lay.Inputs[0]), rec.Numerical(lay.Inputs[1])
	plus := l.Plus.density(x, y) + densityEpsilon
	minus := l.Minus.density(x, y) + densityEpsilon
	return complement(plus/(plus+minus), class)
}

func (l *GaussianMixture) String() string {
	return fmt.Sprintf("-:N(%v,%v) +:N(%v,%v)", l.Minus.Mean, l.Minus.StdDev, l.Plus.Mean, l.Plus.StdDev)
}

// FitGaussianMixture fits a GaussianMixture to the records of db by
// maximum likelihood: per class, the mean and standard deviation of
// each input. A class with fewer than two records gets mean 0 and
// standard deviation 1; an input without spread keeps its mean and
// gets standard deviation 1.
func FitGaussianMixture(db *schema.Database, lay *Layout) *GaussianMixture {
	var xs [2][2][]float64 // class (0 minus, 1 plus), input
	for _, rec := range db.Objects {
		c := 0
		if rec.Categorical(lay.Target) == Plus {
			c = 1
		}
		for i := 0; i < 2; i++ {
			xs[c][i] = append(xs[c][i], rec.Numerical(lay.Inputs[i]))
		}
	}
	fit := func(c int) Gaussian {
		var g Gaussian
		for i := 0; i < 2; i++ {
			g.Mean[i], g.StdDev[i] = 0, 1
			if len(xs[c][i]) <= 1 {
				continue
			}
			mean, std := stat.PopMeanStdDev(xs[c][i], nil)
			g.Mean[i] = mean
			if std > 0 && !math.IsNaN(std) {
				g.StdDev[i] = std
			}
		}
		return g
	}
	return &GaussianMixture{Minus: fit(0), Plus: fit(1)}
}
