// Copyright © 2023 Jessica Bonnie
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package sketch

import (
	"math"

	"github.com/zeebo/xxh3"
)

// OrderMinHash sketches a single string for edit-distance neighborhoods.
// Items are (k-mer, occurrence index) pairs, so both content and order
// contribute; register l keeps the minimum of a per-register derived
// hash over all pairs.
type OrderMinHash struct {
	ss int
	k  int

	regs []float64
	mins []uint64
	occ  map[uint64]uint64
}

// NewOrderMinHash creates an order min-hash of ss registers over k-mers
// of length k.
func NewOrderMinHash(ss, k int) *OrderMinHash {
	return &OrderMinHash{
		ss:   ss,
		k:    k,
		regs: make([]float64, ss),
		mins: make([]uint64, ss),
		occ:  make(map[uint64]uint64, 1<<10),
	}
}

// Reset restores the sketch to its post-construction state.
func (o *OrderMinHash) Reset() {
	for i := range o.regs {
		o.regs[i] = 0
		o.mins[i] = 0
	}
	if len(o.occ) > 0 {
		o.occ = make(map[uint64]uint64, 1<<10)
	}
}

// Sketch fills the registers from one sequence. Sequences shorter than k
// produce an all-zero row.
func (o *OrderMinHash) Sketch(seq []byte) []float64 {
	for i := range o.mins {
		o.mins[i] = math.MaxUint64
	}
	if len(o.occ) > 0 {
		o.occ = make(map[uint64]uint64, 1<<10)
	}
	n := len(seq) - o.k + 1
	for i := 0; i < n; i++ {
		kh := xxh3.Hash(seq[i : i+o.k])
		occ := o.occ[kh]
		o.occ[kh] = occ + 1
		pair := mix64(kh ^ mix64(occ))
		for l := 0; l < o.ss; l++ {
			v := mix2(pair, uint64(l))
			if v < o.mins[l] {
				o.mins[l] = v
			}
		}
	}
	for l := 0; l < o.ss; l++ {
		if n <= 0 || o.mins[l] == math.MaxUint64 {
			o.regs[l] = 0
		} else {
			o.regs[l] = float64(o.mins[l])
		}
	}
	return o.regs
}

// Data returns the registers filled by the last Sketch call.
func (o *OrderMinHash) Data() []float64 { return o.regs }
