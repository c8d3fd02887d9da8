// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"fmt"
	"math"

	"golang.org/x/gridbench/valueindex"
)

// A Record is a dense vector of attribute values of one class.
// Numerical cells default to NaN, the missing value.
type Record struct {
	class *Class
	nums  []float64
	cats  []string
}

// NewRecord returns a record of the compiled class c.
func NewRecord(c *Class) *Record {
	if !c.IsCompiled() {
		panic(fmt.Sprintf("schema: record of uncompiled class %s", c.Name))
	}
	n := c.AttributeCount()
	r := &Record{class: c, nums: make([]float64, n), cats: make([]string, n)}
	for i := range r.nums {
		r.nums[i] = math.NaN()
	}
	return r
}

// Class returns the class r was built against.
func (r *Record) Class() *Class { return r.class }

// Len returns the number of cells of r.
func (r *Record) Len() int { return len(r.nums) }

func (r *Record) pos(idx valueindex.Index) int {
	if !idx.IsValid() || idx.IsSparse() {
		panic(fmt.Sprintf("schema: records are dense, cannot address value %v", idx))
	}
	return idx.DenseIndex()
}

// Numerical returns the numerical value at idx.
func (r *Record) Numerical(idx valueindex.Index) float64 {
	return r.nums[r.pos(idx)]
}

// SetNumerical sets the numerical value at idx.
func (r *Record) SetNumerical(idx valueindex.Index, v float64) {
	r.nums[r.pos(idx)] = v
}

// Categorical returns the categorical value at idx.
func (r *Record) Categorical(idx valueindex.Index) string {
	return r.cats[r.pos(idx)]
}

// SetCategorical sets the categorical value at idx.
func (r *Record) SetCategorical(idx valueindex.Index, v string) {
	r.cats[r.pos(idx)] = v
}

// A Database is a named collection of records of one class.
type Database struct {
	Name    string
	Class   *Class
	Objects []*Record
}

// NewDatabase returns a database holding size fresh records of c.
func NewDatabase(name string, c *Class, size int) *Database {
	db := &Database{Name: name, Class: c}
	db.Resize(size)
	return db
}

// Resize grows or shrinks db to n records. Existing records are kept.
func (db *Database) Resize(n int) {
	if n < len(db.Objects) {
		db.Objects = db.Objects[:n]
		return
	}
	for len(db.Objects) < n {
		db.Objects = append(db.Objects, NewRecord(db.Class))
	}
}

// Len returns the number of records in db.
func (db *Database) Len() int { return len(db.Objects) }
