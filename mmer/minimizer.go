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

package mmer

import "github.com/jessicabonnie/dashing2/sketch"

// minRing64 selects the leftmost minimum hash over a sliding window of
// the last m k-mer positions. Each new minimizer position is reported
// once, so runs of windows sharing a minimizer emit a single value.
type minRing64 struct {
	vals []uint64
	pos  []int64
	size int

	head, n int
	minOff  int
	cnt     int64
	lastPos int64
}

func newMinRing64(m int) *minRing64 {
	return &minRing64{
		vals:    make([]uint64, m),
		pos:     make([]int64, m),
		size:    m,
		lastPos: -1,
	}
}

func (r *minRing64) reset() {
	r.head, r.n = 0, 0
	r.cnt = 0
	r.lastPos = -1
}

func (r *minRing64) rescan() {
	r.minOff = r.head
	for i := 1; i < r.n; i++ {
		off := (r.head + i) % r.size
		if r.vals[off] < r.vals[r.minOff] {
			r.minOff = off
		}
	}
}

// push admits the hash of the next k-mer position and reports the window
// minimizer when the window is full and the minimizer is new.
func (r *minRing64) push(v uint64) (uint64, bool) {
	evictedMin := false
	if r.n == r.size {
		if r.minOff == r.head {
			evictedMin = true
		}
		r.head = (r.head + 1) % r.size
		r.n--
	}
	slot := (r.head + r.n) % r.size
	r.vals[slot] = v
	r.pos[slot] = r.cnt
	r.cnt++
	r.n++
	if evictedMin {
		r.rescan()
	} else if r.n == 1 || v < r.vals[r.minOff] {
		r.minOff = slot
	}
	if r.n < r.size {
		return 0, false
	}
	if r.pos[r.minOff] != r.lastPos {
		r.lastPos = r.pos[r.minOff]
		return r.vals[r.minOff], true
	}
	return 0, false
}

// minRing128 is the 128-bit variant of minRing64.
type minRing128 struct {
	vals []sketch.Uint128
	pos  []int64
	size int

	head, n int
	minOff  int
	cnt     int64
	lastPos int64
}

func newMinRing128(m int) *minRing128 {
	return &minRing128{
		vals:    make([]sketch.Uint128, m),
		pos:     make([]int64, m),
		size:    m,
		lastPos: -1,
	}
}

func (r *minRing128) reset() {
	r.head, r.n = 0, 0
	r.cnt = 0
	r.lastPos = -1
}

func (r *minRing128) rescan() {
	r.minOff = r.head
	for i := 1; i < r.n; i++ {
		off := (r.head + i) % r.size
		if r.vals[off].Less(r.vals[r.minOff]) {
			r.minOff = off
		}
	}
}

func (r *minRing128) push(v sketch.Uint128) (sketch.Uint128, bool) {
	evictedMin := false
	if r.n == r.size {
		if r.minOff == r.head {
			evictedMin = true
		}
		r.head = (r.head + 1) % r.size
		r.n--
	}
	slot := (r.head + r.n) % r.size
	r.vals[slot] = v
	r.pos[slot] = r.cnt
	r.cnt++
	r.n++
	if evictedMin {
		r.rescan()
	} else if r.n == 1 || v.Less(r.vals[r.minOff]) {
		r.minOff = slot
	}
	if r.n < r.size {
		return sketch.Uint128{}, false
	}
	if r.pos[r.minOff] != r.lastPos {
		r.lastPos = r.pos[r.minOff]
		return r.vals[r.minOff], true
	}
	return sketch.Uint128{}, false
}
