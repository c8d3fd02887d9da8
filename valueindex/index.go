// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package valueindex provides the addressing handle used to read and
// write attribute values on records.
//
// An Index references a value either directly, by its dense
// position, or inside a sparse block, by the dense position of the
// block plus an offset within it. Both parts are packed into a single
// 64-bit word so that an Index is a plain comparable value.
package valueindex

import "fmt"

// An Index is a dense/sparse value address. The zero Index is the
// valid sparse index 0:0; use Invalid or Reset for an unset index.
type Index struct {
	// word holds the dense index in its low 32 bits and the
	// sparse index in its high 32 bits, both as int32.
	word int64
}

// Invalid returns a reset Index.
func Invalid() Index {
	var i Index
	i.Reset()
	return i
}

// Dense returns a valid dense Index at position n.
func Dense(n int) Index {
	i := Invalid()
	i.SetDenseIndex(n)
	return i
}

// Reset makes i invalid: both its dense and sparse parts become -1.
func (i *Index) Reset() {
	i.word = -1
}

// SetDenseIndex sets the dense part of i. n must be >= -1.
func (i *Index) SetDenseIndex(n int) {
	checkPart("dense", n)
	i.word = int64(uint64(i.word)&^0xffffffff | uint64(uint32(int32(n))))
}

// SetSparseIndex sets the sparse part of i. n must be >= -1.
func (i *Index) SetSparseIndex(n int) {
	checkPart("sparse", n)
	i.word = int64(uint64(i.word)&0xffffffff | uint64(uint32(int32(n)))<<32)
}

// DenseIndex returns the dense part of i.
func (i Index) DenseIndex() int {
	return int(int32(uint32(uint64(i.word))))
}

// SparseIndex returns the sparse part of i.
func (i Index) SparseIndex() int {
	return int(int32(uint32(uint64(i.word) >> 32)))
}

// IsValid reports whether i references a value.
func (i Index) IsValid() bool {
	return i.DenseIndex() != -1
}

// IsDense reports whether i addresses a dense value.
func (i Index) IsDense() bool {
	return i.SparseIndex() == -1
}

// IsSparse reports whether i addresses an offset in a sparse block.
func (i Index) IsSparse() bool {
	return !i.IsDense()
}

func (i Index) String() string {
	if !i.IsValid() {
		return "invalid"
	}
	if i.IsDense() {
		return fmt.Sprintf("%d", i.DenseIndex())
	}
	return fmt.Sprintf("%d:%d", i.DenseIndex(), i.SparseIndex())
}

func checkPart(part string, n int) {
	if n < -1 || n > 1<<31-1 {
		panic(fmt.Sprintf("valueindex: %s index %d out of range", part, n))
	}
}
