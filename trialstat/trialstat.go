// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trialstat summarizes metrics measured over repeated
// experiment runs.
//
// Each run of an experiment yields one value per metric. A Sample
// gathers the values of one metric across runs; its Summary reports
// the mean, the confidence interval around it, and the standard
// deviation.
//
// Summaries and comparisons carry a list of warnings, captured as an
// []error value. These don't prevent the analysis, but should be shown
// along with its results.
package trialstat

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/mathx"
	"github.com/aclements/go-moremath/stats"
)

// DefaultConfidence is the confidence level of reported intervals.
const DefaultConfidence = 0.95

// A Sample is the set of values of one metric over the runs of an
// experiment.
type Sample struct {
	// Values are the per-run values, in ascending order.
	Values []float64
}

// NewSample returns a Sample of a copy of values.
func NewSample(values []float64) *Sample {
	vs := append([]float64(nil), values...)
	sort.Float64s(vs)
	return &Sample{vs}
}

func (s *Sample) sample() stats.Sample {
	return stats.Sample{Xs: s.Values, Sorted: true}
}

// A Summary summarizes a Sample.
type Summary struct {
	// Center is the mean of the sample.
	Center float64

	// Lo and Hi give the bounds of the confidence interval around
	// Center.
	Lo, Hi float64

	// Confidence is the confidence level of [Lo, Hi].
	Confidence float64

	// StdDev is the sample standard deviation. It is 0 for a single
	// run.
	StdDev float64

	// N is the number of runs.
	N int

	// Warnings is a list of warnings about this summary.
	Warnings []error
}

// Summarize returns the Summary of values at the given confidence
// level, in [0,1].
func Summarize(values []float64, confidence float64) Summary {
	return NewSample(values).Summary(confidence)
}

// Summary returns the summary of s at the given confidence level.
func (s *Sample) Summary(confidence float64) Summary {
	if len(s.Values) == 0 {
		return Summary{Confidence: confidence, Warnings: []error{errors.New("no runs")}}
	}
	sample := s.sample()
	mean, lo, hi := sample.MeanCI(confidence)
	sum := Summary{
		Center:     mean,
		Lo:         lo,
		Hi:         hi,
		Confidence: confidence,
		StdDev:     sample.StdDev(),
		N:          len(s.Values),
	}
	if len(s.Values) == 1 {
		sum.Warnings = []error{errors.New("need >= 2 runs for a confidence interval")}
	}
	return sum
}

// PctRangeString returns a string representation of the range of this
// Summary's confidence interval as a percentage.
func (s Summary) PctRangeString() string {
	if math.IsInf(s.Lo, 0) || math.IsInf(s.Hi, 0) {
		return "∞"
	}

	// If the signs of the bounds differ from the center, we can't
	// render it as a percent.
	var csign = mathx.Sign(s.Center)
	if csign != mathx.Sign(s.Lo) || csign != mathx.Sign(s.Hi) {
		return "?"
	}

	// A zero center can only have a zero interval here.
	if s.Center == 0 {
		return "0%"
	}

	v := math.Max(s.Hi/s.Center-1, 1-s.Lo/s.Center)
	return fmt.Sprintf("%.0f%%", 100*v)
}

// String formats s as "center ±pct".
func (s Summary) String() string {
	return fmt.Sprintf("%.4g ±%s", s.Center, s.PctRangeString())
}

// A Comparison is the result of testing whether two metrics measured
// on the same runs have the same mean.
type Comparison struct {
	// P is the p-value of the null hypothesis that the means are
	// equal. If P < Alpha, we reject it.
	P float64

	// N is the number of paired runs.
	N int

	// Alpha is the rejection threshold, typically 0.05.
	Alpha float64

	// Warnings is a list of warnings about this comparison.
	Warnings []error
}

// ComparePaired runs a paired t-test on two metrics measured on the
// same runs, such as the divergence of two predictors.
func ComparePaired(x1, x2 []float64, alpha float64) Comparison {
	c := Comparison{P: 1, N: len(x1), Alpha: alpha}
	if len(x1) != len(x2) {
		c.Warnings = []error{fmt.Errorf("unpaired samples of %d and %d runs", len(x1), len(x2))}
		return c
	}
	t, err := stats.PairedTTest(x1, x2, 0, stats.LocationDiffers)
	if err != nil {
		// Report as if there's no significant difference, along
		// with the error.
		c.Warnings = []error{err}
		return c
	}
	if t == nil {
		// Identical samples.
		return c
	}
	c.P = t.P
	return c
}

// String summarizes the comparison as "p=0.PPP n=N".
func (c Comparison) String() string {
	return fmt.Sprintf("p=%0.3f n=%d", c.P, c.N)
}

// FormatDelta formats the difference between the means old and new.
// It returns "~" when the comparison finds no significant difference,
// and the percent change otherwise.
func (c Comparison) FormatDelta(old, new float64) string {
	if c.P > c.Alpha {
		return "~"
	}
	if old == new {
		return "0.00%"
	}
	if old == 0 {
		return "?"
	}
	pct := ((new / old) - 1.0) * 100.0
	return fmt.Sprintf("%+.2f%%", pct)
}
