// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"golang.org/x/gridbench/discretize"
	"golang.org/x/gridbench/schema"
)

// A Builder computes a data grid from a training database.
type Builder interface {
	Build(db *schema.Database, inputs []*schema.Attribute, target *schema.Attribute) (*DataGrid, error)
}

// EqualFrequency partitions each numerical input in Parts intervals of
// about the same frequency, and each categorical input in at most
// Parts groups, the most frequent values first.
type EqualFrequency struct {
	Parts int
}

func (b *EqualFrequency) Build(db *schema.Database, inputs []*schema.Attribute, target *schema.Attribute) (*DataGrid, error) {
	if b.Parts <= 0 {
		return nil, fmt.Errorf("equal frequency grid with %d parts", b.Parts)
	}
	return build(db, inputs, target, func(a *schema.Attribute, labels []string) (*Partition, error) {
		if a.Type == schema.Categorical {
			return frequentGroups(a, db, b.Parts), nil
		}
		xs := numericalValues(db, a)
		sort.Float64s(xs)
		var bounds []float64
		for k := 1; k < b.Parts && len(xs) > 0; k++ {
			q := stat.Quantile(float64(k)/float64(b.Parts), stat.Empirical, xs, nil)
			if q == xs[len(xs)-1] {
				break
			}
			if len(bounds) == 0 || q > bounds[len(bounds)-1] {
				bounds = append(bounds, q)
			}
		}
		return NewNumerical(a.Name, bounds), nil
	})
}

// Univariate discretizes each numerical input against the target with
// Discretizer, and gives each value of a categorical input its own
// group.
type Univariate struct {
	Discretizer discretize.Discretizer
}

func (b *Univariate) Build(db *schema.Database, inputs []*schema.Attribute, target *schema.Attribute) (*DataGrid, error) {
	return build(db, inputs, target, func(a *schema.Attribute, labels []string) (*Partition, error) {
		if a.Type == schema.Categorical {
			return frequentGroups(a, db, 0), nil
		}
		classes := make([]string, len(db.Objects))
		for i, rec := range db.Objects {
			classes[i] = rec.Categorical(target.Index)
		}
		tab, values := discretize.TableFromValues(numericalValues(db, a), classes, labels)
		res, err := b.Discretizer.Discretize(tab)
		if err != nil {
			return nil, fmt.Errorf("discretizing %s: %w", a.Name, err)
		}
		return NewNumerical(a.Name, discretize.CutPoints(res.Ends, values)), nil
	})
}

type partitioner func(a *schema.Attribute, labels []string) (*Partition, error)

func build(db *schema.Database, inputs []*schema.Attribute, target *schema.Attribute, part partitioner) (*DataGrid, error) {
	if db.Len() == 0 {
		return nil, fmt.Errorf("database %s is empty", db.Name)
	}
	if target == nil || target.Type != schema.Categorical {
		return nil, fmt.Errorf("database %s: no categorical target", db.Name)
	}
	labels := targetLabels(db, target)
	var parts []*Partition
	for _, a := range inputs {
		p, err := part(a, labels)
		if err != nil {
			return nil, err
		}
		p.index = a.Index
		parts = append(parts, p)
	}
	g := New(parts, labels)
	for _, rec := range db.Objects {
		g.Add(rec, rec.Categorical(target.Index))
	}
	g.Cost = Cost(g)
	return g, nil
}

// targetLabels returns the sorted distinct labels of db.
func targetLabels(db *schema.Database, target *schema.Attribute) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, rec := range db.Objects {
		l := rec.Categorical(target.Index)
		if !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)
	return labels
}

func numericalValues(db *schema.Database, a *schema.Attribute) []float64 {
	xs := make([]float64, len(db.Objects))
	for i, rec := range db.Objects {
		xs[i] = rec.Numerical(a.Index)
	}
	return xs
}

// frequentGroups returns a categorical partition with one group per
// value, most frequent first. If limit > 0, values past the first
// limit-1 share the last group. The star value joins the last group.
func frequentGroups(a *schema.Attribute, db *schema.Database, limit int) *Partition {
	counts := make(map[string]int)
	for _, rec := range db.Objects {
		counts[rec.Categorical(a.Index)]++
	}
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	var groups [][]string
	for _, v := range values {
		if limit > 0 && len(groups) == limit {
			groups[limit-1] = append(groups[limit-1], v)
			continue
		}
		groups = append(groups, []string{v})
	}
	groups[len(groups)-1] = append(groups[len(groups)-1], StarValue)
	return NewCategorical(a.Name, groups)
}

// Params selects a grid builder. Every change bumps its freshness.
type Params struct {
	method    string
	maxParts  int
	freshness int
}

// NewParams returns builder parameters for method ("eqfreq" or "modl")
// and a maximum part count per input (0 for the method default).
func NewParams(method string, maxParts int) *Params {
	return &Params{method: method, maxParts: maxParts}
}

func (p *Params) Method() string { return p.method }
func (p *Params) MaxParts() int  { return p.maxParts }
func (p *Params) Freshness() int { return p.freshness }

func (p *Params) SetMethod(m string) {
	p.method = m
	p.freshness++
}

func (p *Params) SetMaxParts(n int) {
	p.maxParts = n
	p.freshness++
}

// Builder returns the configured builder.
func (p *Params) Builder() (Builder, error) {
	switch p.method {
	case "eqfreq":
		n := p.maxParts
		if n <= 0 {
			n = 10
		}
		return &EqualFrequency{Parts: n}, nil
	case "modl":
		return &Univariate{Discretizer: &discretize.MODL{MaxIntervals: p.maxParts}}, nil
	}
	return nil, fmt.Errorf("unknown grid method %q", p.method)
}

func (p *Params) String() string {
	return fmt.Sprintf("%s(max=%d)", p.method, p.maxParts)
}
