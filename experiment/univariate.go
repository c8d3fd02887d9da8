// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/gridbench/chart"
	"golang.org/x/gridbench/discretize"
	"golang.org/x/gridbench/sampling"
	"golang.org/x/gridbench/schema"
	"golang.org/x/gridbench/storage/db"
	"golang.org/x/gridbench/univariate"
)

// A UnivariateRunner runs discretization experiments on one continuous
// input and scores them with the exact interval integrals of the law.
type UnivariateRunner struct {
	// Logger receives progress reports. If nil, slog.Default() is
	// used.
	Logger *slog.Logger

	generator   *univariate.Generator
	discretizer discretize.Discretizer
	sampleSize  int
	runNumber   int
	exportRun   int
	exportDir   string

	freshness      int
	statsFreshness int

	train   *schema.Database
	results *UnivariateResults
}

// NewUnivariateRunner returns a runner with 1000 records, one run and
// no export.
func NewUnivariateRunner() *UnivariateRunner {
	return &UnivariateRunner{
		sampleSize: 1000,
		runNumber:  1,
		exportRun:  -1,
		freshness:  1,
	}
}

func (r *UnivariateRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *UnivariateRunner) Generator() *univariate.Generator      { return r.generator }
func (r *UnivariateRunner) Discretizer() discretize.Discretizer { return r.discretizer }
func (r *UnivariateRunner) SampleSize() int                      { return r.sampleSize }
func (r *UnivariateRunner) RunNumber() int                       { return r.runNumber }

func (r *UnivariateRunner) SetGenerator(g *univariate.Generator) {
	r.generator = g
	r.freshness++
}

func (r *UnivariateRunner) SetDiscretizer(d discretize.Discretizer) {
	r.discretizer = d
	r.freshness++
}

func (r *UnivariateRunner) SetSampleSize(n int) {
	if n < 0 {
		panic(fmt.Sprintf("experiment: sample size %d", n))
	}
	r.sampleSize = n
	r.freshness++
}

func (r *UnivariateRunner) SetRunNumber(n int) {
	if n < 0 {
		panic(fmt.Sprintf("experiment: run number %d", n))
	}
	r.runNumber = n
	r.freshness++
}

func (r *UnivariateRunner) SetExportRun(run int) {
	r.exportRun = run
	r.freshness++
}

func (r *UnivariateRunner) SetExportDir(dir string) {
	r.exportDir = dir
	r.freshness++
}

func (r *UnivariateRunner) IsStatsComputed() bool {
	return r.results != nil && r.statsFreshness == r.freshness
}

// Results returns the results of the last ComputeStats, or ErrStale if
// the configuration changed since.
func (r *UnivariateRunner) Results() (*UnivariateResults, error) {
	if !r.IsStatsComputed() {
		return nil, ErrStale
	}
	return r.results, nil
}

// ComputeStats discretizes a fresh sample per run and scores it.
func (r *UnivariateRunner) ComputeStats(ctx context.Context) error {
	if r.generator == nil {
		panic("experiment: ComputeStats without a generator")
	}
	if r.discretizer == nil {
		panic("experiment: ComputeStats without a discretizer")
	}
	law := r.generator.Law
	log := r.logger().With("experiment", law.Name(), "method", r.discretizer.Name())

	class := r.generator.SampleClass()
	if r.train == nil || r.train.Class != class {
		r.train = schema.NewDatabase("Train", class, r.sampleSize)
	}
	r.train.Resize(r.sampleSize)

	res := &UnivariateResults{Label: law.Name() + " " + r.discretizer.Name(), law: law}
	log.Info("computing stats", "runs", r.runNumber, "train", r.sampleSize)
	for run := 0; run < r.runNumber; run++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rng := rand.New(rand.NewSource(int64(run)))
		r.generator.GenerateDatabase(r.train, rng)
		xs, classes := r.generator.Values(r.train)

		start := time.Now()
		d, err := univariate.Discretize(r.discretizer, xs, classes)
		elapsed := time.Since(start)
		if err != nil {
			return fmt.Errorf("run %d: %w", run, err)
		}
		res.LearningError = append(res.LearningError, univariate.LearningError(d))
		res.TestError = append(res.TestError, univariate.TestError(law, d))
		res.Distance = append(res.Distance, univariate.Distance(law, d))
		res.Intervals = append(res.Intervals, d.Intervals())
		res.Time = append(res.Time, elapsed.Seconds())
		res.Discretizations = append(res.Discretizations, d)
		log.Debug("run", "run", run, "intervals", d.Intervals(), "test_error", res.TestError[run])

		if run == r.exportRun && r.exportDir != "" {
			if err := r.export(run, d); err != nil {
				return fmt.Errorf("export run %d: %w", run, err)
			}
		}
		if (run+1)%progressEvery == 0 {
			log.Info("progress", "runs", run+1, "of", r.runNumber)
		}
	}

	r.results = res
	r.statsFreshness = r.freshness
	log.Info("stats computed", "runs", res.Runs())
	return nil
}

func (r *UnivariateRunner) export(run int, d *univariate.Discretization) error {
	if err := os.MkdirAll(r.exportDir, 0777); err != nil {
		return err
	}
	base := filepath.Join(r.exportDir, fmt.Sprintf("run%d", run))
	if err := writeFile(base+"_train.tsv", func(w io.Writer) error { return writeDatabase(w, r.train) }); err != nil {
		return err
	}
	return writeFile(base+"_intervals.tsv", func(w io.Writer) error { return writeIntervals(w, d) })
}

// writeIntervals writes one line per interval of d with its bounds and
// class counts.
func writeIntervals(w io.Writer, d *univariate.Discretization) error {
	cw := newTSVWriter(w)
	cw.Write([]string{"Lower", "Upper", sampling.Plus, sampling.Minus})
	for i, f := range d.Frequencies {
		lower, upper := "-inf", "+inf"
		if i > 0 {
			lower = strof(d.Bounds[i-1])
		}
		if i < len(d.Bounds) {
			upper = strof(d.Bounds[i])
		}
		cw.Write([]string{lower, upper, fmt.Sprint(f[0]), fmt.Sprint(f[1])})
	}
	cw.Flush()
	return cw.Error()
}

// UnivariateResults holds the per-run metrics of a discretization
// experiment. The slices are indexed by run.
type UnivariateResults struct {
	Label string

	LearningError, TestError, Distance []float64
	Intervals                          []int
	Time                               []float64

	Discretizations []*univariate.Discretization

	law univariate.Law
}

// Runs returns the number of runs.
func (res *UnivariateResults) Runs() int { return len(res.TestError) }

func (res *UnivariateResults) metrics() []metric {
	return []metric{
		{"LearningError", res.LearningError},
		{"TestError", res.TestError},
		{"Distance", res.Distance},
		{"Intervals", floats(res.Intervals)},
		{"Time", res.Time},
	}
}

// WriteRuns writes the metrics of every run as TSV.
func (res *UnivariateResults) WriteRuns(w io.Writer) error {
	return writeRuns(w, res.metrics(), res.Runs())
}

// WriteSummary writes the mean and standard deviation of every metric
// as a two-line TSV table.
func (res *UnivariateResults) WriteSummary(w io.Writer) error {
	return writeSummary(w, res.Label, res.metrics())
}

// FormatText prints a summary table of the metrics.
func (res *UnivariateResults) FormatText(w io.Writer) error {
	return formatText(w, res.Label, res.metrics(), res.Runs())
}

// Archive stores the runs in d as a "discretize" experiment.
func (res *UnivariateResults) Archive(ctx context.Context, d *db.DB) (*db.Experiment, error) {
	return archive(ctx, d, "discretize", res.Label, res.metrics(), res.Runs())
}

// Chart draws box plots of the error and distance metrics.
func (res *UnivariateResults) Chart(path string) error {
	return boxChart(path, res.Label, res.metrics()[:3])
}

// CurveChart plots the true probability of Plus against the estimate
// of run.
func (res *UnivariateResults) CurveChart(path string, run int) error {
	if run < 0 || run >= len(res.Discretizations) {
		return fmt.Errorf("run %d outside %d runs", run, len(res.Discretizations))
	}
	bounds, probs := res.Discretizations[run].Steps()
	truth := func(x float64) float64 { return res.law.TrueProb(x, sampling.Plus) }
	return chart.Curve(path, fmt.Sprintf("%s run %d", res.Label, run), truth, bounds, probs)
}
