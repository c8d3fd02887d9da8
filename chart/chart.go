// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart renders experiment metrics and estimated probability
// curves as PNG images.
package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	pointRad = 3
	dpi      = 150
)

var fills = []color.Color{blue(0x50), red(0x50), purple(0x50), green(0x50)}

// BoxPlots writes a PNG at path with one box per named sample.
// Infinite and NaN values are dropped; a sample left empty is an error.
func BoxPlots(path, title string, names []string, values [][]float64) error {
	if len(names) != len(values) {
		return fmt.Errorf("chart: %d names for %d samples", len(names), len(values))
	}
	if len(names) == 0 {
		return fmt.Errorf("chart: no samples")
	}

	pl := plot.New()
	pl.Title.Text = title
	pl.Title.TextStyle.Font.Size = 16
	pl.Y.Tick.Label.Font.Size = 10

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	w := vg.Points(20)
	var boxes []plot.Plotter
	for i, vs := range values {
		p := make(plotter.Values, 0, len(vs))
		for _, v := range vs {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				continue
			}
			p = append(p, v)
		}
		if len(p) == 0 {
			return fmt.Errorf("chart: no values for %s", names[i])
		}
		b, err := plotter.NewBoxPlot(w, float64(i), p)
		if err != nil {
			return fmt.Errorf("chart: %s: %w", names[i], err)
		}
		b.BoxStyle.Color = color.Black
		b.FillColor = fills[i%len(fills)]
		b.GlyphStyle.Radius = pointRad
		boxes = append(boxes, b)
	}
	pl.Add(boxes...)
	pl.NominalX(names...)
	pl.X.Tick.Label.Rotation = -math.Pi / 8
	pl.X.Tick.Label.YAlign = draw.YTop
	pl.X.Tick.Label.XAlign = draw.XLeft

	width := 3 * float64(2+len(names))
	if width < 12 {
		width = 12
	}
	return save(pl, path, width, 10)
}

// Curve writes a PNG at path comparing truth over [0, 1] with the step
// function that takes probs[i] on interval i of the cut points bounds.
func Curve(path, title string, truth func(float64) float64, bounds, probs []float64) error {
	if len(probs) != len(bounds)+1 {
		return fmt.Errorf("chart: %d probabilities for %d cut points", len(probs), len(bounds))
	}

	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "x"
	pl.Y.Label.Text = "P(+|x)"
	pl.X.Min, pl.X.Max = 0, 1
	pl.Y.Min, pl.Y.Max = 0, 1
	pl.Add(plotter.NewGrid())

	f := plotter.NewFunction(truth)
	f.XMin, f.XMax = 0, 1
	f.Samples = 1000
	f.Color = blue(0xff)
	f.Width = vg.Points(1)

	steps, err := plotter.NewLine(stepPoints(bounds, probs))
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	steps.Color = red(0xff)
	steps.Width = vg.Points(1.5)

	pl.Add(f, steps)
	pl.Legend.Add("true", f)
	pl.Legend.Add("estimated", steps)
	pl.Legend.Top = true

	return save(pl, path, 16, 10)
}

// stepPoints traces a step function over [0, 1].
func stepPoints(bounds, probs []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, 2*len(probs))
	lo := 0.0
	for i, p := range probs {
		hi := 1.0
		if i < len(bounds) {
			hi = math.Max(lo, math.Min(bounds[i], 1))
		}
		pts = append(pts, plotter.XY{X: lo, Y: p}, plotter.XY{X: hi, Y: p})
		lo = hi
	}
	return pts
}

// save draws pl as a PNG of the given size in centimeters.
func save(pl *plot.Plot, path string, width, height float64) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return err
		}
	}
	can := vgimg.PngCanvas{Canvas: vgimg.NewWith(
		vgimg.UseWH(vg.Length(width)*vg.Centimeter, vg.Length(height)*vg.Centimeter),
		vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))}
	pl.Draw(draw.New(can))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := can.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("chart: write %s: %w", path, err)
	}
	return f.Close()
}

func red(alpha uint8) color.Color {
	return color.NRGBA{0xFF, 0, 0, alpha}
}
func green(alpha uint8) color.Color {
	return color.NRGBA{0, 0xFF, 0, alpha}
}
func blue(alpha uint8) color.Color {
	return color.NRGBA{0, 0, 0xFF, alpha}
}
func purple(alpha uint8) color.Color {
	return color.NRGBA{0x99, 0, 0xFF, alpha}
}
