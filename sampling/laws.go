// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sampling

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/gridbench/schema"
	"golang.org/x/gridbench/valueindex"
)

// Random draws independent uniform inputs and a coin-flip target. It
// is the least learnable law: every class has probability 0.5.
type Random struct {
	Inputs      int
	Categorical bool
	Modalities  int // categorical values per input
}

func (l *Random) Name() string {
	if l.Categorical {
		return "RandomSymbol"
	}
	return "Random"
}

// ModalityNumber returns 0 for continuous inputs, which have no
// modalities.
func (l *Random) ModalityNumber() int {
	if !l.Categorical {
		return 0
	}
	return l.Modalities
}

func (l *Random) InputTypes() []schema.Type {
	return inputTypes(l.Inputs, l.Categorical)
}

func (l *Random) Generate(rec *schema.Record, lay *Layout, rng *rand.Rand) {
	for _, idx := range lay.Inputs {
		if l.Categorical {
			rec.SetCategorical(idx, modalityValue(rng.Intn(l.Modalities)))
		} else {
			rec.SetNumerical(idx, rng.Float64())
		}
	}
	rec.SetCategorical(lay.Target, coin(rng))
}

func (l *Random) TrueProb(rec *schema.Record, lay *Layout, class string) float64 {
	return 0.5
}

// ChessBoard draws two inputs, each in one of K modalities, and labels
// the record by the parity of the modality sum: even sums are Plus.
type ChessBoard struct {
	Categorical bool
	Modalities  int
}

func (l *ChessBoard) Name() string {
	if l.Categorical {
		return "ChessBoardSymbol"
	}
	return "ChessBoard"
}

func (l *ChessBoard) ModalityNumber() int { return l.Modalities }

func (l *ChessBoard) InputTypes() []schema.Type {
	return inputTypes(2, l.Categorical)
}

func (l *ChessBoard) Generate(rec *schema.Record, lay *Layout, rng *rand.Rand) {
	sum := 0
	for _, idx := range lay.Inputs {
		if l.Categorical {
			m := rng.Intn(l.Modalities)
			rec.SetCategorical(idx, modalityValue(m))
			sum += m
		} else {
			x := rng.Float64()
			rec.SetNumerical(idx, x)
			sum += continuousModality(x, l.Modalities)
		}
	}
	rec.SetCategorical(lay.Target, parityClass(sum))
}

func (l *ChessBoard) TrueProb(rec *schema.Record, lay *Layout, class string) float64 {
	sum := 0
	for _, idx := range lay.Inputs {
		sum += storedModality(rec, idx, l.Categorical, l.Modalities)
	}
	return hardProb(parityClass(sum), class)
}

// XOR generalizes ChessBoard to Inputs continuous variables, of which
// only a selected subset of XORInputs determines the parity. The other
// variables are noise dimensions.
type XOR struct {
	Inputs     int
	XORInputs  int
	Modalities int

	selected []int
}

func (l *XOR) Name() string { return fmt.Sprintf("XOR(%d/%d)", l.XORInputs, l.Inputs) }

func (l *XOR) ModalityNumber() int { return l.Modalities }

func (l *XOR) InputTypes() []schema.Type {
	return inputTypes(l.Inputs, false)
}

// Randomize redraws the subset of XOR variables.
func (l *XOR) Randomize(rng *rand.Rand) {
	l.check()
	perm := rng.Perm(l.Inputs)
	l.selected = append(l.selected[:0], perm[:l.XORInputs]...)
	sort.Ints(l.selected)
}

// Selected returns the indexes of the inputs that determine the
// target, in increasing order.
func (l *XOR) Selected() []int {
	if l.selected == nil {
		l.check()
		for i := 0; i < l.XORInputs; i++ {
			l.selected = append(l.selected, i)
		}
	}
	return l.selected
}

func (l *XOR) check() {
	if l.XORInputs < 1 || l.XORInputs > l.Inputs {
		panic(fmt.Sprintf("sampling: %d XOR inputs out of %d inputs", l.XORInputs, l.Inputs))
	}
}

func (l *XOR) Generate(rec *schema.Record, lay *Layout, rng *rand.Rand) {
	for _, idx := range lay.Inputs {
		rec.SetNumerical(idx, rng.Float64())
	}
	rec.SetCategorical(lay.Target, parityClass(l.parity(rec, lay)))
}

func (l *XOR) TrueProb(rec *schema.Record, lay *Layout, class string) float64 {
	return hardProb(parityClass(l.parity(rec, lay)), class)
}

func (l *XOR) parity(rec *schema.Record, lay *Layout) int {
	sum := 0
	for _, i := range l.Selected() {
		sum += continuousModality(rec.Numerical(lay.Inputs[i]), l.Modalities)
	}
	return sum
}

func inputTypes(n int, categorical bool) []schema.Type {
	types := make([]schema.Type, n)
	for i := range types {
		if categorical {
			types[i] = schema.Categorical
		}
	}
	return types
}

// continuousModality maps x in [0,1) to one of k modalities.
func continuousModality(x float64, k int) int {
	m := int(x * float64(k))
	if m >= k {
		m = k - 1
	}
	if m < 0 {
		m = 0
	}
	return m
}

func modalityValue(m int) string {
	return "v" + strconv.Itoa(m)
}

// storedModality recovers the modality of a stored input value.
func storedModality(rec *schema.Record, idx valueindex.Index, categorical bool, k int) int {
	if categorical {
		return parseModality(rec.Categorical(idx))
	}
	return continuousModality(rec.Numerical(idx), k)
}

func parityClass(sum int) string {
	if sum%2 == 0 {
		return Plus
	}
	return Minus
}

func hardProb(truth, class string) float64 {
	if truth == class {
		return 1
	}
	return 0
}

// parseModality returns the modality of a "vM" categorical value, or
// -1 if v is not such a value.
func parseModality(v string) int {
	if !strings.HasPrefix(v, "v") {
		return -1
	}
	m, err := strconv.Atoi(v[1:])
	if err != nil {
		return -1
	}
	return m
}
