// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package discretize

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(rows ...[]int) *FrequencyTable {
	t := NewFrequencyTable(len(rows[0]))
	for _, r := range rows {
		t.AddRow(r...)
	}
	return t
}

func TestTableTotals(t *testing.T) {
	tab := table([]int{1, 0}, []int{2, 3}, []int{0, 4})
	if got := tab.Total(); got != 10 {
		t.Errorf("Total() = %d, want 10", got)
	}
	if got := tab.ClassTotals(); !reflect.DeepEqual(got, []int{3, 7}) {
		t.Errorf("ClassTotals() = %v, want [3 7]", got)
	}
	m := tab.Merge([]int{2, 3})
	if !reflect.DeepEqual(m.Counts, [][]int{{3, 3}, {0, 4}}) {
		t.Errorf("Merge = %v", m.Counts)
	}
}

func TestTableFromValues(t *testing.T) {
	xs := []float64{0.5, 0.1, 0.5, 0.9, 0.1}
	cs := []string{"+", "-", "-", "+", "-"}
	tab, values := TableFromValues(xs, cs, []string{"+", "-"})
	if !reflect.DeepEqual(values, []float64{0.1, 0.5, 0.9}) {
		t.Errorf("values = %v", values)
	}
	want := [][]int{{0, 2}, {1, 1}, {1, 0}}
	if !reflect.DeepEqual(tab.Counts, want) {
		t.Errorf("counts = %v, want %v", tab.Counts, want)
	}
}

func TestCost(t *testing.T) {
	// One interval of N records over J classes:
	// log N + log C(N+J-1, J-1) + log(N!/Π N_j!).
	tab := table([]int{2, 1})
	want := math.Log(3) + math.Log(4) + math.Log(3)
	assert.InDelta(t, want, Cost(tab), 1e-12)

	// Splitting a pure-looking table must not be cheaper than one
	// interval when the classes are perfectly mixed.
	mixed := table([]int{1, 1}, []int{1, 1})
	assert.Greater(t, Cost(mixed), Cost(mixed.Merge([]int{2})))

	assert.Equal(t, 0.0, Cost(NewFrequencyTable(2)))
}

func TestMODLSeparable(t *testing.T) {
	// 50 records of class 0 followed by 50 of class 1.
	tab := NewFrequencyTable(2)
	for i := 0; i < 100; i++ {
		if i < 50 {
			tab.AddRow(1, 0)
		} else {
			tab.AddRow(0, 1)
		}
	}
	res, err := (&MODL{}).Discretize(tab)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 100}, res.Ends)
	assert.Equal(t, [][]int{{50, 0}, {0, 50}}, res.Table.Counts)
	assert.InDelta(t, Cost(res.Table), res.Cost, 1e-12)
}

func TestMODLRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tab := NewFrequencyTable(2)
	for i := 0; i < 200; i++ {
		if rng.Intn(2) == 0 {
			tab.AddRow(1, 0)
		} else {
			tab.AddRow(0, 1)
		}
	}
	res, err := (&MODL{}).Discretize(tab)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Cost, Cost(tab), "merging increased the cost")
	assert.LessOrEqual(t, res.Intervals(), 2, "random labels should yield almost no intervals")
}

func TestMODLMaxIntervals(t *testing.T) {
	tab := NewFrequencyTable(2)
	for i := 0; i < 60; i++ {
		if (i/10)%2 == 0 {
			tab.AddRow(1, 0)
		} else {
			tab.AddRow(0, 1)
		}
	}
	res, err := (&MODL{}).Discretize(tab)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Intervals())

	res, err = (&MODL{MaxIntervals: 2}).Discretize(tab)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Intervals(), 2)
	assert.Equal(t, 60, res.Table.Total())
}

func TestMODLEmptyRows(t *testing.T) {
	tab := table([]int{0, 0}, []int{3, 0}, []int{0, 0}, []int{0, 3}, []int{0, 0})
	res, err := (&MODL{}).Discretize(tab)
	require.NoError(t, err)
	assert.Equal(t, tab.Rows(), res.Ends[len(res.Ends)-1])
	assert.Equal(t, 6, res.Table.Total())

	_, err = (&MODL{}).Discretize(table([]int{0, 0}))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestEqualFrequency(t *testing.T) {
	tab := NewFrequencyTable(2)
	for i := 0; i < 100; i++ {
		tab.AddRow(1, 0)
	}
	check := func(intervals int, wantEnds []int) {
		t.Helper()
		res, err := (&EqualFrequency{Intervals: intervals}).Discretize(tab)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(res.Ends, wantEnds) {
			t.Errorf("EqualFrequency(%d) ends = %v, want %v", intervals, res.Ends, wantEnds)
		}
	}
	check(1, []int{100})
	check(4, []int{25, 50, 75, 100})
	check(3, []int{34, 67, 100})

	// A single heavy row cannot be split.
	heavy := table([]int{10, 10}, []int{1, 0})
	res, err := (&EqualFrequency{Intervals: 4}).Discretize(heavy)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.Ends)
}

func TestNamed(t *testing.T) {
	d, err := Named("modl", 0)
	require.NoError(t, err)
	assert.Equal(t, "MODL", d.Name())
	d, err = Named("eqfreq", 0)
	require.NoError(t, err)
	assert.Equal(t, &EqualFrequency{Intervals: 10}, d)
	_, err = Named("bogus", 0)
	assert.Error(t, err)
}

func TestCutPoints(t *testing.T) {
	got := CutPoints([]int{1, 3, 4}, []float64{1, 2, 3, 5})
	if want := []float64{1.5, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("CutPoints = %v, want %v", got, want)
	}
}
