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

import "math"

// BagMinHash sketches a weighted set: per register the minimum of
// exponential draws with rate equal to the m-mer count. Fed from a
// finalized Counter.
type BagMinHash struct {
	ss         int
	saveIDs    bool
	saveCounts bool

	regs     []float64
	ids      []uint64
	idcounts []uint32
	total    float64
}

// NewBagMinHash creates a weighted min-hash sketch with ss registers.
func NewBagMinHash(ss int, saveIDs, saveCounts bool) *BagMinHash {
	s := &BagMinHash{
		ss:         ss,
		saveIDs:    saveIDs,
		saveCounts: saveCounts,
		regs:       make([]float64, ss),
	}
	for i := range s.regs {
		s.regs[i] = math.Inf(1)
	}
	if saveIDs {
		s.ids = make([]uint64, ss)
	}
	if saveCounts {
		s.idcounts = make([]uint32, ss)
	}
	return s
}

// AddCount admits a key with its multiplicity.
func (s *BagMinHash) AddCount(id uint64, count uint32) {
	if count == 0 {
		return
	}
	w := float64(count)
	s.total += w
	for j := 0; j < s.ss; j++ {
		d := expDraw(mix2(id, uint64(j)), w)
		if d < s.regs[j] {
			s.regs[j] = d
			if s.saveIDs {
				s.ids[j] = id
			}
			if s.saveCounts {
				s.idcounts[j] = count
			}
		}
	}
}

// Reset restores the sketch to its post-construction state.
func (s *BagMinHash) Reset() {
	for i := range s.regs {
		s.regs[i] = math.Inf(1)
	}
	for i := range s.ids {
		s.ids[i] = 0
	}
	for i := range s.idcounts {
		s.idcounts[i] = 0
	}
	s.total = 0
}

// Data returns the ss registers.
func (s *BagMinHash) Data() []float64 { return s.regs }

// IDs returns the register m-mer identifiers, or nil if not tracked.
func (s *BagMinHash) IDs() []uint64 { return s.ids }

// IDCounts returns the register multiplicities, or nil if not tracked.
func (s *BagMinHash) IDCounts() []uint32 { return s.idcounts }

// TotalWeight returns the summed multiplicity of all admitted keys.
func (s *BagMinHash) TotalWeight() float64 { return s.total }
