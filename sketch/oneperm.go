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

	"github.com/bmkessler/fastdiv"
)

// OnePermSetSketch is a one-permutation min-hash sketch: each m-mer lands
// in one of ss buckets and the bucket keeps the minimum of a derived
// uniform draw in (0, 1]. Empty buckets hold 1.
type OnePermSetSketch struct {
	ss  int
	div fastdiv.Uint64

	regs     []float64
	ids      []uint64
	idcounts []uint32

	mincount float64
	seen     map[uint64]uint32

	updates uint64
}

// NewOnePermSetSketch creates a one-permutation sketch with ss buckets.
func NewOnePermSetSketch(ss int) *OnePermSetSketch {
	s := &OnePermSetSketch{
		ss:       ss,
		div:      fastdiv.NewUint64(uint64(ss)),
		regs:     make([]float64, ss),
		ids:      make([]uint64, ss),
		idcounts: make([]uint32, ss),
	}
	for i := range s.regs {
		s.regs[i] = 1
	}
	return s
}

// SetMinCount sets the minimum multiplicity an m-mer must exceed before
// it is admitted into the registers.
func (s *OnePermSetSketch) SetMinCount(t float64) {
	s.mincount = t
	if t > 0 && s.seen == nil {
		s.seen = make(map[uint64]uint32, 1<<10)
	}
}

// Update admits one 64-bit m-mer hash.
func (s *OnePermSetSketch) Update(x uint64) {
	s.updates++
	if s.mincount > 0 {
		s.seen[x]++
		if float64(s.seen[x]) <= s.mincount {
			return
		}
	}
	j := s.div.Mod(x)
	v := u01(mix64(x))
	if v < s.regs[j] {
		s.regs[j] = v
		s.ids[j] = x
		s.idcounts[j] = 1
	} else if s.ids[j] == x {
		s.idcounts[j]++
	}
}

// Update128 admits one 128-bit m-mer hash, identified by its low 64 bits.
func (s *OnePermSetSketch) Update128(x Uint128) { s.Update(x.Lo) }

// Reset restores the sketch to its post-construction state.
func (s *OnePermSetSketch) Reset() {
	for i := range s.regs {
		s.regs[i] = 1
		s.ids[i] = 0
		s.idcounts[i] = 0
	}
	if s.seen != nil && len(s.seen) > 0 {
		s.seen = make(map[uint64]uint32, 1<<10)
	}
	s.updates = 0
}

// Data returns the ss registers.
func (s *OnePermSetSketch) Data() []float64 { return s.regs }

// IDs returns the current register m-mer identifiers.
func (s *OnePermSetSketch) IDs() []uint64 { return s.ids }

// IDCounts returns the observation counts of the register identifiers.
func (s *OnePermSetSketch) IDCounts() []uint32 { return s.idcounts }

// Updates returns the number of admitted updates since the last reset.
func (s *OnePermSetSketch) Updates() uint64 { return s.updates }

// Card estimates the cardinality from the bucket minima: a bucket that
// received n/ss uniform draws has expected minimum 1/(n/ss+1).
func (s *OnePermSetSketch) Card() float64 {
	var sum float64
	for _, v := range s.regs {
		sum += v
	}
	if sum == 0 {
		return math.Inf(1)
	}
	est := float64(s.ss) * (float64(s.ss)/sum - 1)
	if est < 0 {
		return 0
	}
	return est
}
