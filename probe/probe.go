// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package probe measures how large a pure interval must be before a
// discretizer detects it.
//
// The probe builds binary frequency tables with one record per row, in
// which a contiguous block of records shares class 0 and the other
// records are spread evenly, and searches the smallest block that the
// discretizer isolates.
package probe

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"golang.org/x/gridbench/discretize"
)

// A Shape places the pure blocks of a probe table.
type Shape int

const (
	// HeadPure puts the pure block at the first rows.
	HeadPure Shape = iota
	// CenterPure puts the pure block in the middle.
	CenterPure
	// TwoPure puts a class 0 block followed by a class 1 block of
	// the same size in the middle.
	TwoPure
)

var shapeNames = []string{"head", "center", "two"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShape returns the shape called name.
func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown probe shape %q", name)
}

// Threshold returns the number of intervals a discretizer produces
// without detecting the blocks of shape.
func Threshold(s Shape) int {
	if s == TwoPure {
		return 3
	}
	return 1
}

// maxPureSize returns the largest block size Table accepts.
func maxPureSize(s Shape, n, firstFreq int) int {
	if s == TwoPure && n-firstFreq < firstFreq {
		return n - firstFreq
	}
	return firstFreq
}

// Table returns an n-row table with one record per row. firstFreq
// records have class 0; pureSize of them form the pure block, and the
// remaining class counts are spread evenly over the other rows.
func Table(s Shape, n, firstFreq, pureSize int) *discretize.FrequencyTable {
	if firstFreq < 0 || firstFreq > n {
		panic(fmt.Sprintf("probe: first class frequency %d of %d", firstFreq, n))
	}
	if pureSize < 0 || pureSize > maxPureSize(s, n, firstFreq) {
		panic(fmt.Sprintf("probe: pure size %d for %v table of %d with %d first", pureSize, s, n, firstFreq))
	}

	block := pureSize
	if s == TwoPure {
		block = 2 * pureSize
	}
	start := 0
	if s != HeadPure {
		start = (n - block) / 2
	}

	// Bresenham spacing of the remaining class 0 records.
	rest := n - block
	restFirst := firstFreq - pureSize
	spread := func(i int) int {
		if (i+1)*restFirst/rest > i*restFirst/rest {
			return 0
		}
		return 1
	}

	t := discretize.NewFrequencyTable(2)
	for row, i := 0, 0; row < n; row++ {
		class := 0
		switch {
		case row >= start && row < start+pureSize:
		case s == TwoPure && row >= start+pureSize && row < start+block:
			class = 1
		default:
			class = spread(i)
			i++
		}
		if class == 0 {
			t.AddRow(1, 0)
		} else {
			t.AddRow(0, 1)
		}
	}
	return t
}

// MinPureSize returns the smallest pure block size for which d finds
// more than Threshold(s) intervals in an n-row table with firstFreq
// records of class 0, or 0 if no size does.
func MinPureSize(d discretize.Discretizer, s Shape, n, firstFreq int) (int, error) {
	for size := 1; size <= maxPureSize(s, n, firstFreq); size++ {
		res, err := d.Discretize(Table(s, n, firstFreq, size))
		if err != nil {
			return 0, fmt.Errorf("pure size %d: %w", size, err)
		}
		if res.Intervals() > Threshold(s) {
			return size, nil
		}
	}
	return 0, nil
}

// TableFromBits returns an n-row table with one record per row, of
// class 1 if bit i of bits is set and class 0 otherwise.
func TableFromBits(bits uint64, n int) *discretize.FrequencyTable {
	if n < 1 || n > 64 {
		panic(fmt.Sprintf("probe: %d bits", n))
	}
	t := discretize.NewFrequencyTable(2)
	for i := 0; i < n; i++ {
		if bits&(1<<uint(i)) != 0 {
			t.AddRow(0, 1)
		} else {
			t.AddRow(1, 0)
		}
	}
	return t
}

// Enumerate discretizes every n-bit class sequence and returns the
// histogram of interval counts: hist[k] sequences give k intervals.
func Enumerate(d discretize.Discretizer, n int) ([]int, error) {
	if n < 1 || n > 30 {
		return nil, fmt.Errorf("enumeration of %d bits", n)
	}
	hist := make([]int, n+1)
	for bits := uint64(0); bits < 1<<uint(n); bits++ {
		res, err := d.Discretize(TableFromBits(bits, n))
		if err != nil {
			return nil, fmt.Errorf("pattern %0*b: %w", n, bits, err)
		}
		hist[res.Intervals()]++
	}
	return hist, nil
}

// Study writes, for each sample size, the minimum pure block size of
// shape s as TSV. ratio is the fraction of class 0 records.
func Study(w io.Writer, d discretize.Discretizer, s Shape, sizes []int, ratio float64) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	cw.Write([]string{"N", "FirstFreq", "MinPureSize", "MinPureRatio"})
	for _, n := range sizes {
		first := int(math.Round(ratio * float64(n)))
		size, err := MinPureSize(d, s, n, first)
		if err != nil {
			return fmt.Errorf("size %d: %w", n, err)
		}
		cw.Write([]string{
			strconv.Itoa(n),
			strconv.Itoa(first),
			strconv.Itoa(size),
			strconv.FormatFloat(float64(size)/float64(n), 'g', 4, 64),
		})
	}
	cw.Flush()
	return cw.Error()
}
