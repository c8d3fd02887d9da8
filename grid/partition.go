// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/gridbench/schema"
	"golang.org/x/gridbench/valueindex"
)

// StarValue is the catch-all categorical value. The group holding it
// receives every value not listed in any group.
const StarValue = "*"

// A Partition splits the domain of one input attribute into parts.
type Partition struct {
	Attribute string
	Type      schema.Type

	// Bounds holds the sorted interior cut points of a numerical
	// partition. Part i is the interval (Bounds[i-1], Bounds[i]].
	Bounds []float64

	// Groups holds the value groups of a categorical partition.
	Groups [][]string

	groupOf map[string]int
	star    int
	index   valueindex.Index
}

// NewNumerical returns a numerical partition of attr with the given
// interior cut points.
func NewNumerical(attr string, bounds []float64) *Partition {
	if !sort.Float64sAreSorted(bounds) {
		panic(fmt.Sprintf("grid: unsorted bounds for %s", attr))
	}
	return &Partition{Attribute: attr, Type: schema.Numerical, Bounds: bounds, index: valueindex.Invalid()}
}

// NewCategorical returns a categorical partition of attr with the
// given value groups.
func NewCategorical(attr string, groups [][]string) *Partition {
	p := &Partition{Attribute: attr, Type: schema.Categorical, Groups: groups,
		groupOf: make(map[string]int), star: -1, index: valueindex.Invalid()}
	for i, g := range groups {
		for _, v := range g {
			if _, dup := p.groupOf[v]; dup {
				panic(fmt.Sprintf("grid: value %q in two groups of %s", v, attr))
			}
			p.groupOf[v] = i
			if v == StarValue {
				p.star = i
			}
		}
	}
	return p
}

// PartCount returns the number of parts of p.
func (p *Partition) PartCount() int {
	if p.Type == schema.Numerical {
		return len(p.Bounds) + 1
	}
	return len(p.Groups)
}

// PartOfValue returns the interval holding x, or -1 if x is missing.
func (p *Partition) PartOfValue(x float64) int {
	if math.IsNaN(x) {
		return -1
	}
	// First bound >= x: intervals are closed on the right.
	return sort.SearchFloat64s(p.Bounds, x)
}

// PartOfSymbol returns the group holding v. Unknown values fall in the
// star group, or -1 if there is none.
func (p *Partition) PartOfSymbol(v string) int {
	if g, ok := p.groupOf[v]; ok {
		return g
	}
	return p.star
}

// PartIndex returns the part of the value stored at idx in rec.
func (p *Partition) PartIndex(rec *schema.Record, idx valueindex.Index) int {
	if p.Type == schema.Numerical {
		return p.PartOfValue(rec.Numerical(idx))
	}
	return p.PartOfSymbol(rec.Categorical(idx))
}

// Bind resolves the value index of p in class c.
func (p *Partition) Bind(c *schema.Class) error {
	a := c.Lookup(p.Attribute)
	if a == nil {
		return fmt.Errorf("attribute %s not in class %s", p.Attribute, c.Name)
	}
	if a.Type != p.Type {
		return fmt.Errorf("attribute %s is %v, partition is %v", p.Attribute, a.Type, p.Type)
	}
	p.index = a.Index
	return nil
}

// Index returns the value index p is bound to.
func (p *Partition) Index() valueindex.Index { return p.index }

func (p *Partition) String() string {
	if p.Type == schema.Numerical {
		return fmt.Sprintf("%s%v", p.Attribute, p.Bounds)
	}
	gs := make([]string, len(p.Groups))
	for i, g := range p.Groups {
		gs[i] = "{" + strings.Join(g, ",") + "}"
	}
	return p.Attribute + strings.Join(gs, "")
}
