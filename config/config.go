// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads gridbench experiment files.
//
// An experiment file is YAML with one section per experiment kind:
//
//	grid:
//	  law: xor
//	  inputs: 5
//	  xor_inputs: 2
//	  noise: 0.1
//	  method: modl
//	  sample_size: 1000
//	  runs: 100
//	discretize:
//	  law: sinus
//	  frequency: 4
//	archive:
//	  driver: sqlite3
//	  dsn: results.db
//
// Fields left out keep their Default values. Unknown fields are
// errors.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"golang.org/x/gridbench/discretize"
	"golang.org/x/gridbench/sampling"
	"golang.org/x/gridbench/univariate"
)

// Config is a complete experiment file.
type Config struct {
	Grid       Grid       `yaml:"grid"`
	Discretize Discretize `yaml:"discretize"`
	Probe      Probe      `yaml:"probe"`
	Archive    Archive    `yaml:"archive"`
}

// Grid configures a multivariate data-grid experiment.
type Grid struct {
	Law        string  `yaml:"law" validate:"oneof=random randomsymbol chessboard chessboardsymbol xor gaussian"`
	Inputs     int     `yaml:"inputs" validate:"gte=1,lte=32"`
	XORInputs  int     `yaml:"xor_inputs" validate:"gte=1"`
	Modalities int     `yaml:"modalities" validate:"gte=1"`
	Noise      float64 `yaml:"noise" validate:"gte=0,lte=1"`
	Method     string  `yaml:"method" validate:"oneof=modl eqfreq"`
	MaxParts   int     `yaml:"max_parts" validate:"gte=0"`
	SampleSize int     `yaml:"sample_size" validate:"gt=0"`
	TestSize   int     `yaml:"test_size" validate:"gt=0"`
	Runs       int     `yaml:"runs" validate:"gt=0"`
	ExportRun  int     `yaml:"export_run" validate:"gte=-1"`
	Output     string  `yaml:"output"`
}

// Discretize configures a univariate discretization experiment.
type Discretize struct {
	Law          string  `yaml:"law" validate:"oneof=random sinus linear"`
	Frequency    int     `yaml:"frequency" validate:"gte=1"`
	Noise        float64 `yaml:"noise" validate:"gte=0,lte=1"`
	Method       string  `yaml:"method" validate:"oneof=modl eqfreq"`
	MaxIntervals int     `yaml:"max_intervals" validate:"gte=0"`
	SampleSize   int     `yaml:"sample_size" validate:"gt=0"`
	Runs         int     `yaml:"runs" validate:"gt=0"`
	ExportRun    int     `yaml:"export_run" validate:"gte=-1"`
	Output       string  `yaml:"output"`
}

// Probe configures the pure-interval threshold study and the
// exhaustive enumeration.
type Probe struct {
	Method string  `yaml:"method" validate:"oneof=modl eqfreq"`
	Shape  string  `yaml:"shape" validate:"oneof=head center two"`
	Sizes  []int   `yaml:"sizes" validate:"min=1,dive,gt=1"`
	Ratio  float64 `yaml:"ratio" validate:"gt=0,lt=1"`
	Bits   int     `yaml:"bits" validate:"gte=1,lte=20"`
}

// Archive names an optional SQL database for run results.
type Archive struct {
	Driver string `yaml:"driver" validate:"omitempty,oneof=sqlite3 mysql"`
	DSN    string `yaml:"dsn" validate:"required_with=Driver"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Grid: Grid{
			Law:        "chessboard",
			Inputs:     2,
			XORInputs:  2,
			Modalities: 4,
			Method:     "modl",
			SampleSize: 1000,
			TestSize:   10000,
			Runs:       10,
			ExportRun:  -1,
		},
		Discretize: Discretize{
			Law:        "linear",
			Frequency:  2,
			Method:     "modl",
			SampleSize: 1000,
			Runs:       10,
			ExportRun:  -1,
		},
		Probe: Probe{
			Method: "modl",
			Shape:  "head",
			Sizes:  []int{10, 20, 50, 100, 200, 500, 1000},
			Ratio:  0.5,
			Bits:   10,
		},
	}
}

// Load reads the experiment file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes an experiment file over the defaults. It does not
// validate the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(gridLevel, Grid{})
	v.RegisterStructValidation(discretizeLevel, Discretize{})
	return v
}

// gridLevel checks the constraints between fields of a Grid section.
func gridLevel(sl validator.StructLevel) {
	g := sl.Current().Interface().(Grid)
	if g.Law == "xor" && g.XORInputs > g.Inputs {
		sl.ReportError(g.XORInputs, "xor_inputs", "XORInputs", "ltefield", "Inputs")
	}
	if g.Law == "chessboardsymbol" && g.Modalities < 2 {
		sl.ReportError(g.Modalities, "modalities", "Modalities", "gte", "2")
	}
	if g.ExportRun >= g.Runs {
		sl.ReportError(g.ExportRun, "export_run", "ExportRun", "ltfield", "Runs")
	}
}

func discretizeLevel(sl validator.StructLevel) {
	d := sl.Current().Interface().(Discretize)
	if d.ExportRun >= d.Runs {
		sl.ReportError(d.ExportRun, "export_run", "ExportRun", "ltfield", "Runs")
	}
}

// Validate reports every invalid field of c.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GridLaw returns the multivariate law of the grid section.
func (c *Config) GridLaw() (sampling.Law, error) {
	g := c.Grid
	switch g.Law {
	case "random", "randomsymbol":
		return &sampling.Random{Inputs: g.Inputs, Categorical: g.Law == "randomsymbol", Modalities: g.Modalities}, nil
	case "chessboard", "chessboardsymbol":
		return &sampling.ChessBoard{Categorical: g.Law == "chessboardsymbol", Modalities: g.Modalities}, nil
	case "xor":
		return &sampling.XOR{Inputs: g.Inputs, XORInputs: g.XORInputs, Modalities: g.Modalities}, nil
	case "gaussian":
		return sampling.NewGaussianMixture(), nil
	}
	return nil, fmt.Errorf("unknown grid law %q", g.Law)
}

// UnivariateLaw returns the law of the discretize section.
func (c *Config) UnivariateLaw() (univariate.Law, error) {
	d := c.Discretize
	return univariate.Named(d.Law, d.Frequency, d.Noise)
}

// Discretizer returns the discretizer of the discretize section.
func (c *Config) Discretizer() (discretize.Discretizer, error) {
	return discretize.Named(c.Discretize.Method, c.Discretize.MaxIntervals)
}
