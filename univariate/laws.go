// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package univariate generates one-dimensional samples, a value X in
// [0,1) and a binary class, under laws for which the test error and
// the probability distance of any interval decision can be integrated
// exactly.
package univariate

import (
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/gridbench/sampling"
)

// A Law is a generative law of (X, class) with X uniform on [0,1).
type Law interface {
	Name() string

	// Generate draws one value and its class.
	Generate(rng *rand.Rand) (x float64, class string)

	// TrueProb returns P(class | x).
	TrueProb(x float64, class string) float64

	// IntervalTestError returns the probability mass of records in
	// [lower, upper] misclassified by the constant decision Plus (if
	// plusMajority) or Minus.
	IntervalTestError(lower, upper float64, plusMajority bool) float64

	// IntervalDistance returns the integral over [lower, upper] of
	// |plusProb - P(+|x)|.
	IntervalDistance(lower, upper, plusProb float64) float64
}

// support clamps [lower, upper] to [0,1]. ok is false when the result
// is empty.
func support(lower, upper float64) (a, b float64, ok bool) {
	a, b = math.Max(lower, 0), math.Min(upper, 1)
	return a, b, b > a
}

// intervalProjection returns the length of [a,b] ∩ [c,d].
func intervalProjection(a, b, c, d float64) float64 {
	return math.Max(0, math.Min(b, d)-math.Max(a, c))
}

func coin(rng *rand.Rand) string {
	if rng.Intn(2) == 0 {
		return sampling.Plus
	}
	return sampling.Minus
}

func plusComplement(pPlus float64, class string) float64 {
	if class == sampling.Plus {
		return pPlus
	}
	return 1 - pPlus
}

// Random draws the class by a fair coin.
type Random struct{}

func (Random) Name() string { return "Random" }

func (Random) Generate(rng *rand.Rand) (float64, string) {
	return rng.Float64(), coin(rng)
}

func (Random) TrueProb(x float64, class string) float64 { return 0.5 }

func (Random) IntervalTestError(lower, upper float64, plusMajority bool) float64 {
	a, b, ok := support(lower, upper)
	if !ok {
		return 0
	}
	return 0.5 * (b - a)
}

func (Random) IntervalDistance(lower, upper, plusProb float64) float64 {
	a, b, ok := support(lower, upper)
	if !ok {
		return 0
	}
	return (b - a) * math.Abs(plusProb-0.5)
}

// SinusSign labels x by the sign of sin(2kπx): arch j = floor(2kx) is
// Plus when j is even. With probability NoiseProb the class is
// replaced by a fair coin.
type SinusSign struct {
	Frequency int
	NoiseProb float64
}

func (l *SinusSign) Name() string {
	return fmt.Sprintf("SinusSign(k=%d,noise=%g)", l.Frequency, l.NoiseProb)
}

func (l *SinusSign) arches() int { return 2 * l.Frequency }

func (l *SinusSign) arch(x float64) int {
	j := int(math.Floor(x * float64(l.arches())))
	if j >= l.arches() {
		j = l.arches() - 1
	}
	return j
}

// archProb returns P(+) on arch j.
func (l *SinusSign) archProb(j int) float64 {
	if j%2 == 0 {
		return 1 - l.NoiseProb/2
	}
	return l.NoiseProb / 2
}

func (l *SinusSign) Generate(rng *rand.Rand) (float64, string) {
	x := rng.Float64()
	class := sampling.Minus
	if l.arch(x)%2 == 0 {
		class = sampling.Plus
	}
	if l.NoiseProb > 0 && rng.Float64() < l.NoiseProb {
		class = coin(rng)
	}
	return x, class
}

func (l *SinusSign) TrueProb(x float64, class string) float64 {
	return plusComplement(l.archProb(l.arch(x)), class)
}

// walk calls f with the plus probability and the overlap length of
// every arch meeting [a,b].
func (l *SinusSign) walk(a, b float64, f func(pPlus, span float64)) {
	width := 1 / float64(l.arches())
	for j := l.arch(a); j < l.arches(); j++ {
		lo := float64(j) * width
		if lo >= b {
			break
		}
		if span := intervalProjection(a, b, lo, lo+width); span > 0 {
			f(l.archProb(j), span)
		}
	}
}

func (l *SinusSign) IntervalTestError(lower, upper float64, plusMajority bool) float64 {
	a, b, ok := support(lower, upper)
	if !ok {
		return 0
	}
	var e float64
	l.walk(a, b, func(pPlus, span float64) {
		if plusMajority {
			e += span * (1 - pPlus)
		} else {
			e += span * pPlus
		}
	})
	return e
}

func (l *SinusSign) IntervalDistance(lower, upper, plusProb float64) float64 {
	a, b, ok := support(lower, upper)
	if !ok {
		return 0
	}
	var d float64
	l.walk(a, b, func(pPlus, span float64) {
		d += span * math.Abs(plusProb-pPlus)
	})
	return d
}

// LinearProb has P(+|x) = x.
type LinearProb struct{}

func (LinearProb) Name() string { return "LinearProb" }

func (LinearProb) Generate(rng *rand.Rand) (float64, string) {
	x := rng.Float64()
	if rng.Float64() < x {
		return x, sampling.Plus
	}
	return x, sampling.Minus
}

func (LinearProb) TrueProb(x float64, class string) float64 {
	return plusComplement(math.Min(math.Max(x, 0), 1), class)
}

// IntervalTestError splits the interval at the Bayes boundary 0.5. On
// each side the error is the Bayes error ∫min(x,1-x), plus the excess
// ∫|2x-1| where the decision disagrees with the Bayes decision.
func (LinearProb) IntervalTestError(lower, upper float64, plusMajority bool) float64 {
	a, b, ok := support(lower, upper)
	if !ok {
		return 0
	}
	var e float64
	if lo, hi := a, math.Min(b, 0.5); hi > lo {
		// Bayes decision is Minus; error density x.
		e += (hi*hi - lo*lo) / 2
		if plusMajority {
			// ∫(1-2x)
			e += (hi - lo) - (hi*hi - lo*lo)
		}
	}
	if lo, hi := math.Max(a, 0.5), b; hi > lo {
		// Bayes decision is Plus; error density 1-x.
		e += (hi - lo) - (hi*hi-lo*lo)/2
		if !plusMajority {
			// ∫(2x-1)
			e += (hi*hi - lo*lo) - (hi - lo)
		}
	}
	return e
}

// IntervalDistance integrates |p - x| over the interval in closed form,
// depending on whether p lies below, above, or inside it.
func (LinearProb) IntervalDistance(lower, upper, plusProb float64) float64 {
	a, b, ok := support(lower, upper)
	if !ok {
		return 0
	}
	p := plusProb
	switch {
	case p <= a:
		return (b*b-a*a)/2 - p*(b-a)
	case p >= b:
		return p*(b-a) - (b*b-a*a)/2
	default:
		return ((p-a)*(p-a) + (b-p)*(b-p)) / 2
	}
}

// Named returns the law called name. frequency and noise only apply to
// SinusSign.
func Named(name string, frequency int, noise float64) (Law, error) {
	switch name {
	case "random", "Random":
		return Random{}, nil
	case "sinus", "SinusSign":
		if frequency <= 0 {
			return nil, fmt.Errorf("sinus law with frequency %d", frequency)
		}
		return &SinusSign{Frequency: frequency, NoiseProb: noise}, nil
	case "linear", "LinearProb":
		return LinearProb{}, nil
	}
	return nil, fmt.Errorf("unknown univariate law %q", name)
}
