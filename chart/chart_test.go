// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/plot/plotter"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func checkPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Errorf("%s is not a PNG", path)
	}
}

func TestBoxPlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "metrics.png")
	names := []string{"error", "dkl"}
	values := [][]float64{{0.1, 0.2, 0.15, math.NaN()}, {0.01, 0.03, 0.02, math.Inf(1)}}
	if err := BoxPlots(path, "ChessBoard", names, values); err != nil {
		t.Fatal(err)
	}
	checkPNG(t, path)

	if err := BoxPlots(path, "x", names, values[:1]); err == nil {
		t.Errorf("mismatched names accepted")
	}
	if err := BoxPlots(path, "x", []string{"mse"}, [][]float64{{math.NaN()}}); err == nil {
		t.Errorf("empty sample accepted")
	}
}

func TestCurve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.png")
	truth := func(x float64) float64 { return x }
	if err := Curve(path, "LinearProb", truth, []float64{0.5}, []float64{0.2, 0.8}); err != nil {
		t.Fatal(err)
	}
	checkPNG(t, path)

	if err := Curve(path, "x", truth, []float64{0.5}, []float64{0.2}); err == nil {
		t.Errorf("mismatched steps accepted")
	}
}

func TestStepPoints(t *testing.T) {
	got := stepPoints([]float64{0.25, 0.75}, []float64{0, 1, 0.5})
	want := plotter.XYs{{X: 0, Y: 0}, {X: 0.25, Y: 0}, {X: 0.25, Y: 1}, {X: 0.75, Y: 1}, {X: 0.75, Y: 0.5}, {X: 1, Y: 0.5}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %v, want %v", i, got[i], want[i])
		}
	}
}
