// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"math"
	"testing"
)

func newTestClass(t *testing.T) *Class {
	t.Helper()
	c := NewClass("Test")
	c.AddAttribute("X", Numerical)
	c.AddAttribute("Y", Categorical)
	c.AddAttribute("Class", Categorical)
	if err := c.SetTarget("Class"); err != nil {
		t.Fatal(err)
	}
	c.Compile()
	return c
}

func TestCompile(t *testing.T) {
	c := newTestClass(t)
	for i, a := range c.Attributes() {
		if a.Index.DenseIndex() != i || !a.Index.IsDense() {
			t.Errorf("attribute %s has index %v, want %d", a.Name, a.Index, i)
		}
	}
	if got := len(c.Inputs()); got != 2 {
		t.Errorf("got %d inputs, want 2", got)
	}
	if c.Target() != c.Lookup("Class") {
		t.Errorf("target is %v", c.Target())
	}
	if err := c.SetTarget("X"); err == nil {
		t.Errorf("numerical target accepted")
	}
	if err := c.SetTarget("Z"); err == nil {
		t.Errorf("unknown target accepted")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	c := newTestClass(t)
	if err := r.Insert(c); err != nil {
		t.Fatal(err)
	}
	if r.Lookup("Test") != c {
		t.Errorf("lookup did not return the inserted class")
	}
	if err := r.Insert(NewClass("Test")); err == nil {
		t.Errorf("duplicate insert accepted")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRecord(t *testing.T) {
	c := newTestClass(t)
	x, y := c.Lookup("X").Index, c.Lookup("Y").Index
	r := NewRecord(c)
	if !math.IsNaN(r.Numerical(x)) {
		t.Errorf("new numerical cell is %v, want NaN", r.Numerical(x))
	}
	r.SetNumerical(x, 0.25)
	r.SetCategorical(y, "v1")
	if r.Numerical(x) != 0.25 || r.Categorical(y) != "v1" {
		t.Errorf("got %v %q", r.Numerical(x), r.Categorical(y))
	}

	db := NewDatabase("train", c, 3)
	first := db.Objects[0]
	db.Resize(5)
	if db.Len() != 5 || db.Objects[0] != first {
		t.Errorf("resize did not keep records")
	}
	db.Resize(2)
	if db.Len() != 2 {
		t.Errorf("Len() = %d after shrink, want 2", db.Len())
	}
}

func TestCompiledClassIsFrozen(t *testing.T) {
	c := newTestClass(t)
	defer func() {
		if recover() == nil {
			t.Errorf("AddAttribute on compiled class did not panic")
		}
	}()
	c.AddAttribute("W", Numerical)
}
