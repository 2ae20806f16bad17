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
	"sort"

	"github.com/twotwotwo/sorts/sortutil"
)

// Counter is an exact multiplicity table of hashed m-mers. One counter
// handles either 64-bit or 128-bit keys per run; the width is decided by
// which Add method the caller uses.
type Counter struct {
	m64  map[uint64]uint32
	m128 map[Uint128]uint32
	hint int
}

// NewCounter creates a counter with the given capacity hint.
func NewCounter(hint int) *Counter {
	if hint < 1 {
		hint = 1 << 10
	}
	return &Counter{
		m64:  make(map[uint64]uint32, hint),
		m128: make(map[Uint128]uint32),
		hint: hint,
	}
}

// Add admits one 64-bit m-mer.
func (c *Counter) Add(h uint64) { c.m64[h]++ }

// Add128 admits one 128-bit m-mer.
func (c *Counter) Add128(x Uint128) { c.m128[x]++ }

// Reset restores the counter to its post-construction state.
func (c *Counter) Reset() {
	if len(c.m64) > 0 {
		c.m64 = make(map[uint64]uint32, c.hint)
	}
	if len(c.m128) > 0 {
		c.m128 = make(map[Uint128]uint32)
	}
}

// Finalize extracts the 64-bit keys with count > threshold, ascending,
// with parallel counts.
func (c *Counter) Finalize(threshold float64) ([]uint64, []float64) {
	keys := make([]uint64, 0, len(c.m64))
	for k, v := range c.m64 {
		if float64(v) > threshold {
			keys = append(keys, k)
		}
	}
	sortutil.Uint64s(keys)
	counts := make([]float64, len(keys))
	for i, k := range keys {
		counts[i] = float64(c.m64[k])
	}
	return keys, counts
}

// Finalize128 extracts the 128-bit keys with count > threshold, ascending,
// with parallel counts.
func (c *Counter) Finalize128(threshold float64) ([]Uint128, []float64) {
	keys := make([]Uint128, 0, len(c.m128))
	for k, v := range c.m128 {
		if float64(v) > threshold {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	counts := make([]float64, len(keys))
	for i, k := range keys {
		counts[i] = float64(c.m128[k])
	}
	return keys, counts
}

// weightedSketch is satisfied by BagMinHash, ProbMinHash and SetSketch,
// all of which can be fed from a finalized counter.
type weightedSketch interface {
	AddCount(id uint64, count uint32)
}

// FinalizeSketch feeds every key with count > threshold into a weighted
// sketch. 128-bit keys are identified by their low 64 bits.
func (c *Counter) FinalizeSketch(s weightedSketch, threshold float64) {
	if len(c.m128) > 0 {
		keys, counts := c.Finalize128(threshold)
		for i, k := range keys {
			s.AddCount(k.Lo, uint32(counts[i]))
		}
		return
	}
	keys, counts := c.Finalize(threshold)
	for i, k := range keys {
		s.AddCount(k, uint32(counts[i]))
	}
}
