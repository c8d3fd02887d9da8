// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package experiment runs repeated train-and-evaluate trials of grid
// builders and discretizers against laws with known true
// probabilities, and reports the per-run metrics.
//
// A runner is configured through setters. Every setter invalidates the
// statistics computed so far, which ComputeStats recomputes. Run r
// draws its training sample from a generator seeded with r, so
// experiments are reproducible.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/gridbench/evaluate"
	"golang.org/x/gridbench/grid"
	"golang.org/x/gridbench/sampling"
	"golang.org/x/gridbench/schema"
	"golang.org/x/gridbench/storage/db"
)

// ErrStale is returned for results of a runner whose configuration
// changed since the last ComputeStats.
var ErrStale = errors.New("experiment: statistics not computed")

// testSeed seeds the generation of the held-out test set.
const testSeed = 1 << 30

// progressEvery is the number of runs between progress reports.
const progressEvery = 1000

// A Runner runs multivariate data-grid experiments.
type Runner struct {
	// Logger receives progress reports. If nil, slog.Default() is
	// used.
	Logger *slog.Logger

	generator  *sampling.Generator
	params     *grid.Params
	sampleSize int
	testSize   int
	runNumber  int
	exportRun  int
	exportDir  string

	freshness       int
	statsFreshness  int
	paramsFreshness int

	train, test *schema.Database
	results     *Results
}

// NewRunner returns a runner with 1000 training records, 10000 test
// records, one run and no export.
func NewRunner() *Runner {
	return &Runner{
		sampleSize: 1000,
		testSize:   10000,
		runNumber:  1,
		exportRun:  -1,
		freshness:  1,
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) Generator() *sampling.Generator { return r.generator }
func (r *Runner) Params() *grid.Params           { return r.params }
func (r *Runner) SampleSize() int                { return r.sampleSize }
func (r *Runner) TestSize() int                  { return r.testSize }
func (r *Runner) RunNumber() int                 { return r.runNumber }
func (r *Runner) ExportRun() int                 { return r.exportRun }
func (r *Runner) ExportDir() string              { return r.exportDir }

func (r *Runner) SetGenerator(g *sampling.Generator) {
	r.generator = g
	r.freshness++
}

func (r *Runner) SetParams(p *grid.Params) {
	r.params = p
	r.freshness++
}

func (r *Runner) SetSampleSize(n int) {
	if n < 0 {
		panic(fmt.Sprintf("experiment: sample size %d", n))
	}
	r.sampleSize = n
	r.freshness++
}

func (r *Runner) SetTestSize(n int) {
	if n < 0 {
		panic(fmt.Sprintf("experiment: test size %d", n))
	}
	r.testSize = n
	r.freshness++
}

func (r *Runner) SetRunNumber(n int) {
	if n < 0 {
		panic(fmt.Sprintf("experiment: run number %d", n))
	}
	r.runNumber = n
	r.freshness++
}

// SetExportRun designates the run whose sample and grid are written to
// the export directory. -1 exports nothing.
func (r *Runner) SetExportRun(run int) {
	r.exportRun = run
	r.freshness++
}

func (r *Runner) SetExportDir(dir string) {
	r.exportDir = dir
	r.freshness++
}

// IsStatsComputed reports whether the results reflect the current
// configuration, including the grid parameters.
func (r *Runner) IsStatsComputed() bool {
	return r.results != nil && r.statsFreshness == r.freshness &&
		r.params != nil && r.paramsFreshness == r.params.Freshness()
}

// Results returns the results of the last ComputeStats, or ErrStale if
// the configuration changed since.
func (r *Runner) Results() (*Results, error) {
	if !r.IsStatsComputed() {
		return nil, ErrStale
	}
	return r.results, nil
}

// databases allocates the train and test databases of class c, reusing
// their records when the class is unchanged.
func (r *Runner) databases(c *schema.Class) {
	if r.train == nil || r.train.Class != c {
		r.train = schema.NewDatabase("Train", c, r.sampleSize)
		r.test = schema.NewDatabase("Test", c, r.testSize)
	}
	r.train.Resize(r.sampleSize)
	r.test.Resize(r.testSize)
}

// ComputeStats runs every trial and aggregates the results.
//
// The test set is drawn once under a fixed seed. For laws with
// per-run parameters, it is redrawn under the same seed after each
// Randomize, so its inputs stay fixed while its labels follow the
// current law.
func (r *Runner) ComputeStats(ctx context.Context) error {
	if r.generator == nil {
		panic("experiment: ComputeStats without a generator")
	}
	if r.params == nil {
		panic("experiment: ComputeStats without grid parameters")
	}
	builder, err := r.params.Builder()
	if err != nil {
		return err
	}
	log := r.logger().With("experiment", r.generator.Label(), "method", r.params.String())

	gen := r.generator
	class := gen.SampleClass()
	lay := gen.Layout()
	r.databases(class)
	gen.GenerateDatabase(r.test, rand.New(rand.NewSource(testSeed)))
	rz, randomized := gen.Law.(sampling.Randomizer)
	_, gaussian := gen.Law.(*sampling.GaussianMixture)

	res := &Results{Label: gen.Label()}
	for _, a := range class.Inputs() {
		res.Inputs = append(res.Inputs, a.Name)
	}
	log.Info("computing stats", "runs", r.runNumber, "train", r.sampleSize, "test", r.testSize)
	for run := 0; run < r.runNumber; run++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rng := rand.New(rand.NewSource(int64(run)))
		if randomized {
			rz.Randomize(rng)
			gen.GenerateDatabase(r.test, rand.New(rand.NewSource(testSeed)))
		}
		gen.GenerateDatabase(r.train, rng)

		start := time.Now()
		g, err := builder.Build(r.train, class.Inputs(), class.Target())
		elapsed := time.Since(start)
		if err != nil {
			return fmt.Errorf("run %d: %w", run, err)
		}
		ev, err := evaluate.New(g, class)
		if err != nil {
			return fmt.Errorf("run %d: %w", run, err)
		}
		res.add(ev, gen, r.test, elapsed)
		if gaussian {
			fit := &evaluate.LawPredictor{Law: sampling.FitGaussianMixture(r.train, lay), Layout: lay}
			res.FitError = append(res.FitError, evaluate.DatabaseError(fit, gen, r.test))
			res.FitDKL = append(res.FitDKL, evaluate.DatabaseDKL(fit, gen, r.test))
			res.FitMSE = append(res.FitMSE, evaluate.DatabaseMSE(fit, gen, r.test))
		}
		log.Debug("run", "run", run, "grid", g, "error", res.Error[run], "time", elapsed)

		if run == r.exportRun {
			if err := r.export(run, g); err != nil {
				return fmt.Errorf("export run %d: %w", run, err)
			}
		}
		if (run+1)%progressEvery == 0 {
			log.Info("progress", "runs", run+1, "of", r.runNumber)
		}
	}

	r.results = res
	r.statsFreshness = r.freshness
	r.paramsFreshness = r.params.Freshness()
	log.Info("stats computed", "runs", res.Runs())
	return nil
}

// export writes the training sample and the grid of run.
func (r *Runner) export(run int, g *grid.DataGrid) error {
	if r.exportDir == "" {
		return nil
	}
	if err := os.MkdirAll(r.exportDir, 0777); err != nil {
		return err
	}
	base := filepath.Join(r.exportDir, fmt.Sprintf("run%d", run))
	if err := writeFile(base+"_train.tsv", func(w io.Writer) error { return writeDatabase(w, r.train) }); err != nil {
		return err
	}
	return writeFile(base+"_grid.txt", func(w io.Writer) error { return writeGrid(w, g) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeGrid describes the partitions of g and its cell frequencies.
func writeGrid(w io.Writer, g *grid.DataGrid) error {
	fmt.Fprintln(w, g)
	for _, p := range g.Inputs {
		fmt.Fprintln(w, p)
	}
	cw := newTSVWriter(w)
	cw.Write(append([]string{"Cell"}, g.Targets...))
	for c, freqs := range g.Frequencies {
		row := []string{fmt.Sprint(c)}
		for _, n := range freqs {
			row = append(row, fmt.Sprint(n))
		}
		cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

// Results holds the per-run metrics of a multivariate experiment. The
// slices are indexed by run.
type Results struct {
	Label string

	// Inputs names the input attributes, in PartSizes order.
	Inputs []string

	// Error, DKL and MSE are the test-set criteria of the grid.
	Error, DKL, MSE []float64

	// Cost is the grid cost and Time the build time in seconds.
	Cost, Time []float64

	Cells, NonEmptyCells, Informative []int
	PartSizes                         [][]int

	// FitError, FitDKL and FitMSE score the maximum-likelihood
	// Gaussian mixture. They are empty for other laws.
	FitError, FitDKL, FitMSE []float64
}

func (res *Results) add(ev *evaluate.Evaluator, truth evaluate.Truth, test *schema.Database, elapsed time.Duration) {
	g := ev.Grid()
	res.Error = append(res.Error, evaluate.DatabaseError(ev, truth, test))
	res.DKL = append(res.DKL, evaluate.DatabaseDKL(ev, truth, test))
	res.MSE = append(res.MSE, evaluate.DatabaseMSE(ev, truth, test))
	res.Cost = append(res.Cost, g.Cost)
	res.Time = append(res.Time, elapsed.Seconds())
	res.Cells = append(res.Cells, g.CellCount())
	res.NonEmptyCells = append(res.NonEmptyCells, g.NonEmptyCellCount())
	res.Informative = append(res.Informative, g.InformativeAttributeCount())
	res.PartSizes = append(res.PartSizes, g.PartSizes())
}

// Runs returns the number of runs.
func (res *Results) Runs() int { return len(res.Error) }

func (res *Results) metrics() []metric {
	ms := []metric{
		{"Error", res.Error},
		{"DKL", res.DKL},
		{"MSE", res.MSE},
		{"Cost", res.Cost},
		{"Time", res.Time},
		{"Cells", floats(res.Cells)},
		{"NonEmptyCells", floats(res.NonEmptyCells)},
		{"Informative", floats(res.Informative)},
	}
	for k, name := range res.Inputs {
		flags := make([]float64, res.Runs())
		parts := make([]float64, res.Runs())
		for run, sizes := range res.PartSizes {
			parts[run] = float64(sizes[k])
			if sizes[k] > 1 {
				flags[run] = 1
			}
		}
		ms = append(ms, metric{"Informative(" + name + ")", flags}, metric{"Parts(" + name + ")", parts})
	}
	if len(res.FitError) > 0 {
		ms = append(ms,
			metric{"FitError", res.FitError},
			metric{"FitDKL", res.FitDKL},
			metric{"FitMSE", res.FitMSE})
	}
	return ms
}

// WriteRuns writes the metrics of every run as TSV.
func (res *Results) WriteRuns(w io.Writer) error {
	return writeRuns(w, res.metrics(), res.Runs())
}

// WriteSummary writes the mean and standard deviation of every metric
// as a two-line TSV table.
func (res *Results) WriteSummary(w io.Writer) error {
	return writeSummary(w, res.Label, res.metrics())
}

// FormatText prints a summary table of the criteria. For Gaussian
// mixtures it also compares the grid with the fitted mixture.
func (res *Results) FormatText(w io.Writer) error {
	ms := res.metrics()
	if err := formatText(w, res.Label, ms, res.Runs()); err != nil {
		return err
	}
	if len(res.FitError) == 0 {
		return nil
	}
	pairs := []struct {
		name      string
		grid, fit []float64
	}{
		{"Error", res.Error, res.FitError},
		{"DKL", res.DKL, res.FitDKL},
		{"MSE", res.MSE, res.FitMSE},
	}
	for _, p := range pairs {
		c := compare(p.grid, p.fit)
		fmt.Fprintf(w, "%-5s grid vs fit: %s (%s)\n", p.name, c.FormatDelta(mean(p.grid), mean(p.fit)), c)
	}
	return nil
}

// Archive stores the runs in d as a "grid" experiment.
func (res *Results) Archive(ctx context.Context, d *db.DB) (*db.Experiment, error) {
	return archive(ctx, d, "grid", res.Label, res.metrics(), res.Runs())
}

// Chart draws box plots of the test-set criteria to a PNG file.
func (res *Results) Chart(path string) error {
	ms := []metric{{"Error", res.Error}, {"DKL", res.DKL}, {"MSE", res.MSE}}
	if len(res.FitError) > 0 {
		ms = append(ms, metric{"FitError", res.FitError}, metric{"FitDKL", res.FitDKL}, metric{"FitMSE", res.FitMSE})
	}
	return boxChart(path, res.Label, ms)
}
