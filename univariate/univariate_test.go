// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package univariate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/integrate"

	"golang.org/x/gridbench/discretize"
	"golang.org/x/gridbench/sampling"
	"golang.org/x/gridbench/schema"
)

// numeric integrates f over [a,b] with the trapezoidal rule.
func numeric(a, b float64, f func(x float64) float64) float64 {
	a, b = math.Max(a, 0), math.Min(b, 1)
	if b <= a {
		return 0
	}
	const n = 20001
	xs := make([]float64, n)
	fs := make([]float64, n)
	for i := range xs {
		xs[i] = a + (b-a)*float64(i)/(n-1)
		fs[i] = f(xs[i])
	}
	return integrate.Trapezoidal(xs, fs)
}

var bounds = [][2]float64{
	{0, 1}, {0.1, 0.3}, {0.2, 0.7}, {0.5, 0.5}, {0.6, 0.9},
	{-1, 0.4}, {0.45, 2}, {1.5, 3}, {0.25, 0.75},
}

func checkLaw(t *testing.T, law Law) {
	t.Helper()
	pPlus := func(x float64) float64 { return law.TrueProb(x, sampling.Plus) }
	for _, bd := range bounds {
		lo, hi := bd[0], bd[1]
		for _, plus := range []bool{true, false} {
			want := numeric(lo, hi, func(x float64) float64 {
				if plus {
					return 1 - pPlus(x)
				}
				return pPlus(x)
			})
			assert.InDelta(t, want, law.IntervalTestError(lo, hi, plus), 1e-6,
				"%s error on [%v,%v] plus=%v", law.Name(), lo, hi, plus)
		}
		for _, p := range []float64{0, 0.2, 0.35, 0.5, 0.8, 1} {
			want := numeric(lo, hi, func(x float64) float64 { return math.Abs(p - pPlus(x)) })
			assert.InDelta(t, want, law.IntervalDistance(lo, hi, p), 1e-6,
				"%s distance on [%v,%v] p=%v", law.Name(), lo, hi, p)
		}
	}
}

func TestLinearProbIntegrals(t *testing.T) {
	checkLaw(t, LinearProb{})
}

func TestRandomIntegrals(t *testing.T) {
	checkLaw(t, Random{})
}

func TestSinusSignIntegrals(t *testing.T) {
	// The trapezoidal rule smears each jump between arches over one
	// step, hence the looser tolerance.
	law := &SinusSign{Frequency: 2, NoiseProb: 0.2}
	for _, bd := range bounds {
		lo, hi := bd[0], bd[1]
		for _, p := range []float64{0, 0.5, 0.9} {
			want := numeric(lo, hi, func(x float64) float64 {
				return math.Abs(p - law.TrueProb(x, sampling.Plus))
			})
			assert.InDelta(t, want, law.IntervalDistance(lo, hi, p), 1e-4)
		}
	}
}

func TestSinusSignNoNoise(t *testing.T) {
	law := &SinusSign{Frequency: 1}
	d := &Discretization{Bounds: []float64{0.5}, Frequencies: [][2]int{{10, 0}, {0, 10}}}
	assert.Equal(t, 0.0, TestError(law, d))
	assert.Equal(t, 0.0, Distance(law, d))
	assert.Equal(t, 0.0, LearningError(d))

	// A single interval gets half the support wrong.
	one := &Discretization{Frequencies: [][2]int{{10, 10}}}
	assert.InDelta(t, 0.5, TestError(law, one), 1e-12)

	noisy := &SinusSign{Frequency: 1, NoiseProb: 0.4}
	assert.InDelta(t, 0.2, TestError(noisy, d), 1e-12)
}

func TestSinusSignArches(t *testing.T) {
	law := &SinusSign{Frequency: 3}
	check := func(x float64, want string) {
		t.Helper()
		if got := law.TrueProb(x, want); got != 1 {
			t.Errorf("TrueProb(%v, %s) = %v, want 1", x, want, got)
		}
	}
	check(0, sampling.Plus)
	check(0.1, sampling.Plus)
	check(1.0/6+0.01, sampling.Minus)
	check(2.0/6+0.01, sampling.Plus)
	check(0.99, sampling.Minus)
	check(1, sampling.Minus)
}

func TestGenerateMatchesTrueProb(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, law := range []Law{Random{}, LinearProb{}, &SinusSign{Frequency: 2, NoiseProb: 0.3}} {
		var plus, sum float64
		const n = 20000
		for i := 0; i < n; i++ {
			x, class := law.Generate(rng)
			require.True(t, x >= 0 && x < 1)
			if class == sampling.Plus {
				plus++
			}
			sum += law.TrueProb(x, sampling.Plus)
		}
		assert.InDelta(t, sum/n, plus/n, 0.02, law.Name())
	}
}

func TestDiscretizeSample(t *testing.T) {
	reg := schema.NewRegistry()
	gen := NewGenerator(&SinusSign{Frequency: 1}, reg)
	c := gen.SampleClass()
	assert.Same(t, c, NewGenerator(LinearProb{}, reg).SampleClass())
	assert.Equal(t, ClassName, c.Name)

	db := schema.NewDatabase("train", c, 1000)
	gen.GenerateDatabase(db, rand.New(rand.NewSource(7)))
	xs, classes := gen.Values(db)
	d, err := Discretize(&discretize.MODL{}, xs, classes)
	require.NoError(t, err)

	assert.Equal(t, 2, d.Intervals())
	assert.InDelta(t, 0.5, d.Bounds[0], 0.01)
	assert.Equal(t, 0.0, LearningError(d))
	assert.Less(t, TestError(gen.Law, d), 0.01)
	assert.Less(t, Distance(gen.Law, d), 0.01)

	bounds, probs := d.Steps()
	assert.Equal(t, d.Bounds, bounds)
	assert.Equal(t, []float64{1, 0}, probs)
}

func TestAbsentClass(t *testing.T) {
	// Only Plus was drawn: the whole support is one Plus interval.
	d := &Discretization{Bounds: []float64{0.3}, Frequencies: [][2]int{{4, 0}, {6, 0}}}
	law := LinearProb{}
	assert.InDelta(t, 0.5, TestError(law, d), 1e-12)
	assert.InDelta(t, 0.5, Distance(law, d), 1e-12)
	assert.Equal(t, 0.0, LearningError(d))
	bounds, probs := d.Steps()
	assert.Nil(t, bounds)
	assert.Equal(t, []float64{1}, probs)
}

func TestNamed(t *testing.T) {
	for _, name := range []string{"random", "sinus", "linear"} {
		law, err := Named(name, 2, 0.1)
		require.NoError(t, err, name)
		assert.NotEmpty(t, law.Name())
	}
	_, err := Named("sinus", 0, 0)
	assert.Error(t, err)
	_, err = Named("bogus", 1, 0)
	assert.Error(t, err)
}
