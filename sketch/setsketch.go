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
	"container/heap"
	"sort"
)

// SetSketch is a bottom-k sketch of a set of hashed m-mers: it retains
// the ss smallest distinct keys seen so far. Registers hold the kept
// keys in ascending order; unfilled registers are zero. With saveIDs or
// saveCounts, parallel id and observation-count arrays are maintained.
type SetSketch struct {
	ss         int
	saveIDs    bool
	saveCounts bool

	h          maxHeap
	counts     map[uint64]uint32
	overflowed bool

	regs     []float64
	ids      []uint64
	idcounts []uint32
}

// NewSetSketch creates a bottom-k set sketch with ss registers.
func NewSetSketch(ss int, saveIDs, saveCounts bool) *SetSketch {
	s := &SetSketch{
		ss:         ss,
		saveIDs:    saveIDs,
		saveCounts: saveCounts,
		h:          make(maxHeap, 0, ss),
		counts:     make(map[uint64]uint32, ss),
		regs:       make([]float64, ss),
	}
	if saveIDs {
		s.ids = make([]uint64, ss)
	}
	if saveCounts {
		s.idcounts = make([]uint32, ss)
	}
	return s
}

// Update admits one 64-bit m-mer hash.
func (s *SetSketch) Update(x uint64) { s.AddCount(x, 1) }

// Update128 admits one 128-bit m-mer hash, identified by its low 64 bits.
func (s *SetSketch) Update128(x Uint128) { s.AddCount(x.Lo, 1) }

// AddCount admits a key with an observation count, as produced by a
// finalized Counter.
func (s *SetSketch) AddCount(key uint64, count uint32) {
	if c, ok := s.counts[key]; ok {
		s.counts[key] = c + count
		return
	}
	if len(s.h) < s.ss {
		heap.Push(&s.h, key)
		s.counts[key] = count
		return
	}
	s.overflowed = true
	if key < s.h[0] {
		delete(s.counts, s.h[0])
		s.h[0] = key
		heap.Fix(&s.h, 0)
		s.counts[key] = count
	}
}

// Reset restores the sketch to its post-construction state.
func (s *SetSketch) Reset() {
	s.h = s.h[:0]
	s.counts = make(map[uint64]uint32, s.ss)
	s.overflowed = false
}

// fill sorts the kept keys ascending into the register buffer and the
// optional id/count arrays.
func (s *SetSketch) fill() {
	keys := make([]uint64, len(s.h))
	copy(keys, s.h)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for i := 0; i < s.ss; i++ {
		if i < len(keys) {
			s.regs[i] = float64(keys[i])
			if s.saveIDs {
				s.ids[i] = keys[i]
			}
			if s.saveCounts {
				s.idcounts[i] = s.counts[keys[i]]
			}
		} else {
			s.regs[i] = 0
			if s.saveIDs {
				s.ids[i] = 0
			}
			if s.saveCounts {
				s.idcounts[i] = 0
			}
		}
	}
}

// Data returns the ss registers.
func (s *SetSketch) Data() []float64 {
	s.fill()
	return s.regs
}

// IDs returns the m-mer identifiers parallel to Data, or nil if ids are
// not tracked.
func (s *SetSketch) IDs() []uint64 {
	if !s.saveIDs {
		return nil
	}
	s.fill()
	return s.ids
}

// IDCounts returns the observation counts parallel to Data, or nil if
// counts are not tracked.
func (s *SetSketch) IDCounts() []uint32 {
	if !s.saveCounts {
		return nil
	}
	s.fill()
	return s.idcounts
}

// Card estimates the cardinality of the underlying set. While the sketch
// has not evicted any key the count is exact; afterwards the bottom-k
// estimator (ss-1) * 2^64 / max applies.
func (s *SetSketch) Card() float64 {
	if !s.overflowed {
		return float64(len(s.h))
	}
	return float64(s.ss-1) * 18446744073709551616.0 / float64(s.h[0])
}
