// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Gridbench runs supervised discretization and data-grid experiments
// on synthetic data and reports their accuracy.
//
// Usage:
//
//	gridbench [--config file] [-v] grid [flags]
//	gridbench [--config file] [-v] discretize [flags]
//	gridbench [--config file] [-v] probe [flags]
//	gridbench [--config file] [-v] enumerate [flags]
//
// The grid command samples a multivariate law, builds a data grid per
// run and evaluates it on a fixed test set. The discretize command
// discretizes a univariate law and scores the intervals against the
// exact class probability. The probe command searches the smallest
// pure interval a discretizer detects, and enumerate counts the
// intervals found on every short class sequence.
//
// Settings come from the YAML file named by --config, if any, and
// command-line flags override them. See package
// golang.org/x/gridbench/config for the file format.
//
// When an output directory is configured, grid and discretize write
// runs.tsv with every metric of every run, summary.tsv with the means
// and standard deviations, and box.png with box plots of the metrics.
// Discretize also writes curve.png comparing the estimated and true
// class probabilities. With an archive configured, the runs are also
// stored in the SQL database it names.
//
// If the settings are invalid, gridbench prints the usage and the
// invalid fields and runs nothing.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/aclements/go-gg/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"golang.org/x/gridbench/config"
	"golang.org/x/gridbench/discretize"
	"golang.org/x/gridbench/experiment"
	"golang.org/x/gridbench/grid"
	"golang.org/x/gridbench/probe"
	"golang.org/x/gridbench/sampling"
	"golang.org/x/gridbench/schema"
	"golang.org/x/gridbench/storage/db"
	"golang.org/x/gridbench/univariate"
)

func main() {
	log.SetPrefix("gridbench: ")
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil && !errors.Is(err, errSkipped) {
		stop()
		log.Fatal(err)
	}
}

// errSkipped is returned when invalid settings skip the run. The usage
// and the errors are already on stdout.
var errSkipped = errors.New("invalid settings, run skipped")

// skip prints the usage of cmd and err to stdout and returns
// errSkipped.
func skip(cmd *cobra.Command, err error) error {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, cmd.UsageString())
	fmt.Fprintln(out)
	fmt.Fprintln(out, err)
	return errSkipped
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return skip(cmd, err)
	}
	return nil
}

// app holds the state shared by the subcommands.
type app struct {
	configPath string
	verbose    bool
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := new(app)
	root := &cobra.Command{
		Use:           "gridbench",
		Short:         "Evaluate supervised discretization and data grids on synthetic data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	root.SetFlagErrorFunc(skip)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "read settings from YAML `file`")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every run")

	root.AddCommand(a.gridCmd(), a.discretizeCmd(), a.probeCmd(), a.enumerateCmd())
	return root
}

// A binder defines flags over the fields of a scratch Config and copies
// the flags set on the command line into a loaded Config.
type binder struct {
	flags *config.Config
	apply map[string]func(*config.Config)
}

func newBinder() *binder {
	return &binder{flags: config.Default(), apply: make(map[string]func(*config.Config))}
}

func bind[T any](b *binder, define func(*T, string, T, string), name string, field func(*config.Config) *T, usage string) {
	p := field(b.flags)
	define(p, name, *p, usage)
	b.apply[name] = func(c *config.Config) { *field(c) = *p }
}

// load reads the configuration file, applies the flags set on cmd, and
// validates the result. If the result is invalid, load prints the
// usage and the errors to stdout and returns errSkipped.
func (a *app) load(cmd *cobra.Command, b *binder) (*config.Config, error) {
	c := config.Default()
	if a.configPath != "" {
		var err error
		if c, err = config.Load(a.configPath); err != nil {
			return nil, err
		}
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if apply, ok := b.apply[f.Name]; ok {
			apply(c)
		}
	})

	if err := c.Validate(); err != nil {
		return nil, skip(cmd, err)
	}
	return c, nil
}

// openArchive opens the configured results database, or returns nil if
// there is none.
func openArchive(c config.Archive) (*db.DB, error) {
	if c.Driver == "" {
		return nil, nil
	}
	d, err := db.OpenSQL(c.Driver, c.DSN)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return d, nil
}

// reporter is the report surface common to both experiment kinds.
type reporter interface {
	WriteRuns(io.Writer) error
	WriteSummary(io.Writer) error
	FormatText(io.Writer) error
	Archive(context.Context, *db.DB) (*db.Experiment, error)
	Chart(path string) error
}

func (a *app) report(ctx context.Context, cmd *cobra.Command, res reporter, dir string, archive config.Archive) error {
	if err := res.FormatText(cmd.OutOrStdout()); err != nil {
		return err
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return err
		}
		if err := create(filepath.Join(dir, "runs.tsv"), res.WriteRuns); err != nil {
			return err
		}
		if err := create(filepath.Join(dir, "summary.tsv"), res.WriteSummary); err != nil {
			return err
		}
		if err := res.Chart(filepath.Join(dir, "box.png")); err != nil {
			return err
		}
	}

	d, err := openArchive(archive)
	if err != nil || d == nil {
		return err
	}
	defer d.Close()
	e, err := res.Archive(ctx, d)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	a.log.Info("archived", "experiment", e.ID, "driver", archive.Driver)
	return nil
}

func create(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func (a *app) gridCmd() *cobra.Command {
	b := newBinder()
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Build and evaluate data grids on a multivariate law",
		Args:  noArgs,
	}
	f := cmd.Flags()
	g := func(c *config.Config) *config.Grid { return &c.Grid }
	bind(b, f.StringVar, "law", func(c *config.Config) *string { return &g(c).Law }, "generating `law`: random, randomsymbol, chessboard, chessboardsymbol, xor, gaussian")
	bind(b, f.IntVar, "inputs", func(c *config.Config) *int { return &g(c).Inputs }, "number of input attributes")
	bind(b, f.IntVar, "xor-inputs", func(c *config.Config) *int { return &g(c).XORInputs }, "number of inputs in the XOR")
	bind(b, f.IntVar, "modalities", func(c *config.Config) *int { return &g(c).Modalities }, "modalities per input")
	bind(b, f.Float64Var, "noise", func(c *config.Config) *float64 { return &g(c).Noise }, "probability of a random label")
	bind(b, f.StringVar, "method", func(c *config.Config) *string { return &g(c).Method }, "grid `method`: modl or eqfreq")
	bind(b, f.IntVar, "max-parts", func(c *config.Config) *int { return &g(c).MaxParts }, "maximum parts per input, 0 for none")
	bind(b, f.IntVar, "sample-size", func(c *config.Config) *int { return &g(c).SampleSize }, "training records per run")
	bind(b, f.IntVar, "test-size", func(c *config.Config) *int { return &g(c).TestSize }, "test records")
	bind(b, f.IntVar, "runs", func(c *config.Config) *int { return &g(c).Runs }, "number of runs")
	bind(b, f.IntVar, "export-run", func(c *config.Config) *int { return &g(c).ExportRun }, "`run` whose data and grid are exported, -1 for none")
	bind(b, f.StringVar, "output", func(c *config.Config) *string { return &g(c).Output }, "write reports to `dir`")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := a.load(cmd, b)
		if err != nil {
			return err
		}
		return a.runGrid(cmd, c)
	}
	return cmd
}

func (a *app) runGrid(cmd *cobra.Command, c *config.Config) error {
	law, err := c.GridLaw()
	if err != nil {
		return err
	}
	g := c.Grid
	r := experiment.NewRunner()
	r.Logger = a.log
	r.SetGenerator(sampling.NewGenerator(law, g.Noise, schema.NewRegistry()))
	r.SetParams(grid.NewParams(g.Method, g.MaxParts))
	r.SetSampleSize(g.SampleSize)
	r.SetTestSize(g.TestSize)
	r.SetRunNumber(g.Runs)
	r.SetExportRun(g.ExportRun)
	r.SetExportDir(g.Output)

	if err := r.ComputeStats(cmd.Context()); err != nil {
		return err
	}
	res, err := r.Results()
	if err != nil {
		return err
	}
	return a.report(cmd.Context(), cmd, res, g.Output, c.Archive)
}

func (a *app) discretizeCmd() *cobra.Command {
	b := newBinder()
	cmd := &cobra.Command{
		Use:   "discretize",
		Short: "Discretize a univariate law and score the intervals",
		Args:  noArgs,
	}
	f := cmd.Flags()
	d := func(c *config.Config) *config.Discretize { return &c.Discretize }
	bind(b, f.StringVar, "law", func(c *config.Config) *string { return &d(c).Law }, "generating `law`: random, sinus, linear")
	bind(b, f.IntVar, "frequency", func(c *config.Config) *int { return &d(c).Frequency }, "sign changes of the sinus law")
	bind(b, f.Float64Var, "noise", func(c *config.Config) *float64 { return &d(c).Noise }, "probability of a random label")
	bind(b, f.StringVar, "method", func(c *config.Config) *string { return &d(c).Method }, "discretization `method`: modl or eqfreq")
	bind(b, f.IntVar, "max-intervals", func(c *config.Config) *int { return &d(c).MaxIntervals }, "maximum intervals, 0 for none")
	bind(b, f.IntVar, "sample-size", func(c *config.Config) *int { return &d(c).SampleSize }, "records per run")
	bind(b, f.IntVar, "runs", func(c *config.Config) *int { return &d(c).Runs }, "number of runs")
	bind(b, f.IntVar, "export-run", func(c *config.Config) *int { return &d(c).ExportRun }, "`run` whose data and intervals are exported, -1 for none")
	bind(b, f.StringVar, "output", func(c *config.Config) *string { return &d(c).Output }, "write reports to `dir`")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := a.load(cmd, b)
		if err != nil {
			return err
		}
		return a.runDiscretize(cmd, c)
	}
	return cmd
}

func (a *app) runDiscretize(cmd *cobra.Command, c *config.Config) error {
	law, err := c.UnivariateLaw()
	if err != nil {
		return err
	}
	disc, err := c.Discretizer()
	if err != nil {
		return err
	}
	d := c.Discretize
	r := experiment.NewUnivariateRunner()
	r.Logger = a.log
	r.SetGenerator(univariate.NewGenerator(law, schema.NewRegistry()))
	r.SetDiscretizer(disc)
	r.SetSampleSize(d.SampleSize)
	r.SetRunNumber(d.Runs)
	r.SetExportRun(d.ExportRun)
	r.SetExportDir(d.Output)

	if err := r.ComputeStats(cmd.Context()); err != nil {
		return err
	}
	res, err := r.Results()
	if err != nil {
		return err
	}
	if err := a.report(cmd.Context(), cmd, res, d.Output, c.Archive); err != nil {
		return err
	}
	if d.Output == "" {
		return nil
	}
	run := max(d.ExportRun, 0)
	return res.CurveChart(filepath.Join(d.Output, "curve.png"), run)
}

func (a *app) probeCmd() *cobra.Command {
	b := newBinder()
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Find the smallest pure interval a discretizer detects",
		Args:  noArgs,
	}
	f := cmd.Flags()
	p := func(c *config.Config) *config.Probe { return &c.Probe }
	bind(b, f.StringVar, "method", func(c *config.Config) *string { return &p(c).Method }, "discretization `method`: modl or eqfreq")
	bind(b, f.StringVar, "shape", func(c *config.Config) *string { return &p(c).Shape }, "pure block `shape`: head, center, two")
	bind(b, f.IntSliceVar, "sizes", func(c *config.Config) *[]int { return &p(c).Sizes }, "sample `sizes` to probe")
	bind(b, f.Float64Var, "ratio", func(c *config.Config) *float64 { return &p(c).Ratio }, "fraction of records in the first class")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := a.load(cmd, b)
		if err != nil {
			return err
		}
		disc, err := discretize.Named(c.Probe.Method, 0)
		if err != nil {
			return err
		}
		shape, err := probe.ParseShape(c.Probe.Shape)
		if err != nil {
			return err
		}
		a.log.Info("probing", "method", disc.Name(), "shape", shape, "sizes", len(c.Probe.Sizes))
		return probe.Study(cmd.OutOrStdout(), disc, shape, c.Probe.Sizes, c.Probe.Ratio)
	}
	return cmd
}

// A histRow is one line of the enumerate output.
type histRow struct {
	Intervals int
	Patterns  int
}

func (a *app) enumerateCmd() *cobra.Command {
	b := newBinder()
	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "Count the intervals found on every short class sequence",
		Args:  noArgs,
	}
	f := cmd.Flags()
	p := func(c *config.Config) *config.Probe { return &c.Probe }
	bind(b, f.StringVar, "method", func(c *config.Config) *string { return &p(c).Method }, "discretization `method`: modl or eqfreq")
	bind(b, f.IntVar, "bits", func(c *config.Config) *int { return &p(c).Bits }, "sequence length")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := a.load(cmd, b)
		if err != nil {
			return err
		}
		disc, err := discretize.Named(c.Probe.Method, 0)
		if err != nil {
			return err
		}
		hist, err := probe.Enumerate(disc, c.Probe.Bits)
		if err != nil {
			return err
		}
		var rows []histRow
		for k, n := range hist {
			if n > 0 {
				rows = append(rows, histRow{k, n})
			}
		}
		if len(rows) == 0 {
			return errors.New("no patterns enumerated")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s on %d bits\n", disc.Name(), c.Probe.Bits)
		return table.Fprint(cmd.OutOrStdout(), table.TableFromStructs(rows))
	}
	return cmd
}
