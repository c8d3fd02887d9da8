// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trialstat

import (
	"math"
	"testing"
)

func TestSummaryFormat(t *testing.T) {
	check := func(center, lo, hi float64, want string) {
		t.Helper()
		s := Summary{Center: center, Lo: lo, Hi: hi}
		got := s.PctRangeString()
		if got != want {
			t.Errorf("for %v CI [%v, %v], got %s, want %s", center, lo, hi, got, want)
		}
	}
	inf := math.Inf(1)

	check(1, 0.5, 1.1, "50%")
	check(1, 0.9, 1.5, "50%")
	check(1, 1, 1, "0%")

	check(-1, -0.5, -1.1, "50%")
	check(-1, -1, -1, "0%")

	check(1, -inf, 1, "∞")
	check(1, 1, inf, "∞")

	check(1, -1, 1, "?")
	check(0, -1, 1, "?")
	check(0, 0, 0, "0%")
}

func TestSummarize(t *testing.T) {
	values := []float64{3, 1, 2, 4, 5}
	s := Summarize(values, DefaultConfidence)
	if s.Center != 3 {
		t.Errorf("Center = %v, want 3", s.Center)
	}
	if want := math.Sqrt(2.5); math.Abs(s.StdDev-want) > 1e-12 {
		t.Errorf("StdDev = %v, want %v", s.StdDev, want)
	}
	if !(s.Lo < 3 && s.Hi > 3) || math.Abs((s.Hi-3)-(3-s.Lo)) > 1e-12 {
		t.Errorf("CI [%v, %v] not symmetric around 3", s.Lo, s.Hi)
	}
	if s.N != 5 || len(s.Warnings) != 0 {
		t.Errorf("N = %d, warnings %v", s.N, s.Warnings)
	}
	if values[0] != 3 {
		t.Errorf("Summarize reordered its input")
	}

	one := Summarize([]float64{0.5}, DefaultConfidence)
	if one.Center != 0.5 || one.StdDev != 0 || len(one.Warnings) != 1 {
		t.Errorf("single run summary = %+v", one)
	}
	if one.PctRangeString() != "∞" {
		t.Errorf("single run range = %s, want ∞", one.PctRangeString())
	}

	none := Summarize(nil, DefaultConfidence)
	if none.N != 0 || len(none.Warnings) != 1 {
		t.Errorf("empty summary = %+v", none)
	}
}

func TestComparePaired(t *testing.T) {
	grid := []float64{0.10, 0.12, 0.11, 0.13, 0.12, 0.11}
	fit := []float64{0.01, 0.02, 0.01, 0.02, 0.01, 0.02}
	c := ComparePaired(grid, fit, 0.05)
	if c.P >= 0.05 || c.N != 6 || len(c.Warnings) != 0 {
		t.Errorf("clear difference: %+v", c)
	}
	if got := c.FormatDelta(0.1, 0.05); got != "-50.00%" {
		t.Errorf("FormatDelta = %s", got)
	}

	same := ComparePaired(grid, grid, 0.05)
	if same.P != 1 || len(same.Warnings) != 1 {
		t.Errorf("identical samples: %+v", same)
	}
	if got := same.FormatDelta(1, 2); got != "~" {
		t.Errorf("FormatDelta = %s, want ~", got)
	}

	if c := ComparePaired(grid, fit[:2], 0.05); len(c.Warnings) != 1 {
		t.Errorf("unpaired samples accepted")
	}
	if got := (Comparison{P: 0.5, N: 10}).String(); got != "p=0.500 n=10" {
		t.Errorf("String() = %s", got)
	}
}
