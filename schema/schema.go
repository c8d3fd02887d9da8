// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schema describes records: their classes (ordered, typed
// attribute lists with a designated target), the registry that caches
// classes by name, and the records and databases built against them.
package schema

import (
	"fmt"

	"golang.org/x/gridbench/valueindex"
)

// A Type is the semantic type of an attribute.
type Type int

const (
	Numerical Type = iota
	Categorical
)

func (t Type) String() string {
	switch t {
	case Numerical:
		return "Numerical"
	case Categorical:
		return "Categorical"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Letter returns the one-letter code of t used in class signatures.
func (t Type) Letter() string {
	if t == Categorical {
		return "C"
	}
	return "N"
}

// An Attribute is a named, typed field of a Class.
type Attribute struct {
	Name string
	Type Type

	// Index is resolved by Class.Compile.
	Index valueindex.Index
}

// A Class is a record schema: an ordered list of attributes, one of
// which may be designated as the target.
type Class struct {
	Name string

	attrs    []*Attribute
	byName   map[string]*Attribute
	target   *Attribute
	compiled bool
}

// NewClass returns an empty, uncompiled class.
func NewClass(name string) *Class {
	return &Class{Name: name, byName: make(map[string]*Attribute)}
}

// AddAttribute appends a new attribute to c and returns it. Adding an
// attribute to a compiled class or reusing a name panics.
func (c *Class) AddAttribute(name string, typ Type) *Attribute {
	if c.compiled {
		panic(fmt.Sprintf("schema: add attribute %s to compiled class %s", name, c.Name))
	}
	if _, ok := c.byName[name]; ok {
		panic(fmt.Sprintf("schema: duplicate attribute %s in class %s", name, c.Name))
	}
	a := &Attribute{Name: name, Type: typ, Index: valueindex.Invalid()}
	c.attrs = append(c.attrs, a)
	c.byName[name] = a
	return a
}

// SetTarget designates the named attribute as the target of c. The
// target must be categorical.
func (c *Class) SetTarget(name string) error {
	a := c.byName[name]
	if a == nil {
		return fmt.Errorf("class %s has no attribute %s", c.Name, name)
	}
	if a.Type != Categorical {
		return fmt.Errorf("target %s of class %s must be categorical", name, c.Name)
	}
	c.target = a
	return nil
}

// Compile resolves the value index of every attribute.
func (c *Class) Compile() {
	for i, a := range c.attrs {
		a.Index = valueindex.Dense(i)
	}
	c.compiled = true
}

// IsCompiled reports whether Compile has been called.
func (c *Class) IsCompiled() bool { return c.compiled }

// Attributes returns the attributes of c in declaration order.
func (c *Class) Attributes() []*Attribute { return c.attrs }

// AttributeCount returns the number of attributes, target included.
func (c *Class) AttributeCount() int { return len(c.attrs) }

// Target returns the target attribute, or nil.
func (c *Class) Target() *Attribute { return c.target }

// Inputs returns the non-target attributes of c in declaration order.
func (c *Class) Inputs() []*Attribute {
	var in []*Attribute
	for _, a := range c.attrs {
		if a != c.target {
			in = append(in, a)
		}
	}
	return in
}

// Lookup returns the named attribute, or nil.
func (c *Class) Lookup(name string) *Attribute {
	return c.byName[name]
}

// A Registry caches classes by name. A registry is meant to live for
// one experiment; it is not safe for concurrent use.
type Registry struct {
	classes map[string]*Class
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// Lookup returns the class with the given name, or nil.
func (r *Registry) Lookup(name string) *Class {
	return r.classes[name]
}

// Insert adds c to r. Class names are unique within a registry.
func (r *Registry) Insert(c *Class) error {
	if _, ok := r.classes[c.Name]; ok {
		return fmt.Errorf("class %s already registered", c.Name)
	}
	r.classes[c.Name] = c
	return nil
}

// Len returns the number of registered classes.
func (r *Registry) Len() int { return len(r.classes) }
