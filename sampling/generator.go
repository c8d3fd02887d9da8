// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sampling generates synthetic supervised samples under
// generative laws whose true conditional class probability is known.
//
// A Law draws the input values and the target label of one record and
// computes the exact probability of a class given the stored inputs.
// A Generator wraps a Law with a label-noise rate and the record class
// the law writes to.
package sampling

import (
	"fmt"
	"math/rand"
	"strings"

	"golang.org/x/gridbench/schema"
	"golang.org/x/gridbench/valueindex"
)

// The two target labels of every binary law.
const (
	Plus  = "+"
	Minus = "-"
)

// TargetName is the name of the target attribute of sample classes.
const TargetName = "Class"

// A Layout holds the resolved value indexes of a sample class.
type Layout struct {
	Inputs []valueindex.Index
	Target valueindex.Index
}

// A Law is a generative law over records with len(InputTypes()) inputs
// and a binary target.
type Law interface {
	// Name returns a short display name for the law, such as
	// "ChessBoard".
	Name() string

	// InputTypes returns the type of each input attribute.
	InputTypes() []schema.Type

	// Generate draws the inputs and the target of rec.
	Generate(rec *schema.Record, l *Layout, rng *rand.Rand)

	// TrueProb returns the probability of class given the inputs
	// stored in rec, without label noise.
	TrueProb(rec *schema.Record, l *Layout, class string) float64
}

// A Randomizer is a Law with parameters that are redrawn once per
// experiment run.
type Randomizer interface {
	Randomize(rng *rand.Rand)
}

// A Modal law discretizes its inputs into a number of modalities.
type Modal interface {
	ModalityNumber() int
}

// A Generator generates records under a Law and injects label noise.
type Generator struct {
	Law Law

	// NoiseRate is the fraction of records whose label is
	// replaced by a fair coin flip after generation.
	NoiseRate float64

	registry *schema.Registry
	class    *schema.Class
	layout   Layout
}

// NewGenerator returns a Generator for law with the given noise rate.
// Sample classes are cached in reg.
func NewGenerator(law Law, noiseRate float64, reg *schema.Registry) *Generator {
	if noiseRate < 0 || noiseRate > 1 {
		panic(fmt.Sprintf("sampling: noise rate %v outside [0,1]", noiseRate))
	}
	if reg == nil {
		reg = schema.NewRegistry()
	}
	return &Generator{Law: law, NoiseRate: noiseRate, registry: reg}
}

// Signature returns the registry key of the sample class of law. It
// depends only on the input attribute types.
func Signature(law Law) string {
	var b strings.Builder
	b.WriteString("Sample(")
	for i, t := range law.InputTypes() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.Letter())
	}
	b.WriteByte(')')
	return b.String()
}

// Label returns a display name for g including its modality number
// and noise rate.
func (g *Generator) Label() string {
	label := g.Law.Name()
	if m, ok := g.Law.(Modal); ok && m.ModalityNumber() > 0 {
		label += fmt.Sprintf(" K=%d", m.ModalityNumber())
	}
	if g.NoiseRate > 0 {
		label += fmt.Sprintf(" noise=%g", g.NoiseRate)
	}
	return label
}

// SampleClass returns the record class of g, building and registering
// it on first use. Generators whose laws share an input signature
// share the class.
func (g *Generator) SampleClass() *schema.Class {
	if g.class != nil {
		return g.class
	}
	name := Signature(g.Law)
	c := g.registry.Lookup(name)
	if c == nil {
		c = schema.NewClass(name)
		for i, t := range g.Law.InputTypes() {
			c.AddAttribute(fmt.Sprintf("X%d", i+1), t)
		}
		c.AddAttribute(TargetName, schema.Categorical)
		if err := c.SetTarget(TargetName); err != nil {
			panic(err)
		}
		c.Compile()
		if err := g.registry.Insert(c); err != nil {
			panic(err)
		}
	}
	g.class = c
	g.layout = Layout{Target: c.Target().Index}
	for _, a := range c.Inputs() {
		g.layout.Inputs = append(g.layout.Inputs, a.Index)
	}
	return c
}

// Layout returns the resolved value indexes of the sample class.
func (g *Generator) Layout() *Layout {
	g.SampleClass()
	return &g.layout
}

// GenerateObject generates the values of rec and then, with
// probability NoiseRate, replaces its label by a fair coin flip.
func (g *Generator) GenerateObject(rec *schema.Record, rng *rand.Rand) {
	g.mustCheck(rec)
	l := g.Layout()
	g.Law.Generate(rec, l, rng)
	if g.NoiseRate > 0 && rng.Float64() < g.NoiseRate {
		rec.SetCategorical(l.Target, coin(rng))
	}
}

// GenerateDatabase regenerates the values of every record of db.
func (g *Generator) GenerateDatabase(db *schema.Database, rng *rand.Rand) {
	for _, rec := range db.Objects {
		g.GenerateObject(rec, rng)
	}
}

// TrueProb returns the noiseless probability of class given rec.
func (g *Generator) TrueProb(rec *schema.Record, class string) float64 {
	g.mustCheck(rec)
	p := g.Law.TrueProb(rec, g.Layout(), class)
	checkProb(p)
	return p
}

// NoisyTrueProb returns the probability of class given rec once label
// noise is accounted for: (1-ρ)·TrueProb + ρ/2.
func (g *Generator) NoisyTrueProb(rec *schema.Record, class string) float64 {
	p := (1-g.NoiseRate)*g.TrueProb(rec, class) + g.NoiseRate*0.5
	checkProb(p)
	return p
}

// CheckObject reports whether rec can be generated or scored by g.
func (g *Generator) CheckObject(rec *schema.Record) error {
	c := g.SampleClass()
	switch {
	case rec == nil:
		return fmt.Errorf("%s: nil record", g.Label())
	case rec.Class() != c:
		return fmt.Errorf("%s: record of class %s, want %s", g.Label(), rec.Class().Name, c.Name)
	case !rec.Class().IsCompiled():
		return fmt.Errorf("%s: class %s is not compiled", g.Label(), c.Name)
	case rec.Len() != len(g.layout.Inputs)+1:
		return fmt.Errorf("%s: record has %d values, want %d", g.Label(), rec.Len(), len(g.layout.Inputs)+1)
	case rec.Class().Target() == nil || rec.Class().Target().Index != g.layout.Target:
		return fmt.Errorf("%s: target index mismatch", g.Label())
	}
	return nil
}

// mustCheck panics if rec is not a record of the sample class of g.
func (g *Generator) mustCheck(rec *schema.Record) {
	if err := g.CheckObject(rec); err != nil {
		panic("sampling: " + err.Error())
	}
}

func coin(rng *rand.Rand) string {
	if rng.Intn(2) == 0 {
		return Plus
	}
	return Minus
}

// complement returns p if class is Plus, and 1-p otherwise.
func complement(pPlus float64, class string) float64 {
	if class == Plus {
		return pPlus
	}
	return 1 - pPlus
}

func checkProb(p float64) {
	if !(p >= 0 && p <= 1) {
		panic(fmt.Sprintf("sampling: probability %v outside [0,1]", p))
	}
}
