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

import "container/heap"

// maxHeap is a max-heap of uint64 keys: Less returns the larger value so
// that the maximum sits at index 0.
type maxHeap []uint64

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return h[i] > h[j] }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *maxHeap) Push(x interface{}) {
	*h = append(*h, x.(uint64))
}

func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// BottomK selects the len(dst) smallest keys whose parallel count exceeds
// threshold, and stores them ascending in the tail of dst. counts may be
// nil, in which case every key is counted once. When fewer keys qualify
// than dst can hold, the leading slots of dst are left zero.
func BottomK(keys []uint64, counts []float64, threshold float64, dst []uint64) {
	k := len(dst)
	if k == 0 {
		return
	}
	h := make(maxHeap, 0, k)
	for i, key := range keys {
		count := 1.0
		if counts != nil {
			count = counts[i]
		}
		if count <= threshold {
			continue
		}
		if len(h) < k {
			heap.Push(&h, key)
		} else if key < h[0] {
			h[0] = key
			heap.Fix(&h, 0)
		}
	}
	for i := range dst {
		dst[i] = 0
	}
	for i := k - 1; len(h) > 0; i-- {
		dst[i] = heap.Pop(&h).(uint64)
	}
}

// BottomK128 selects over 128-bit keys. The stored key is the low 64 bits
// of the m-mer, so that it fits a 64-bit register slot.
func BottomK128(keys []Uint128, counts []float64, threshold float64, dst []uint64) {
	lo := make([]uint64, len(keys))
	for i, x := range keys {
		lo[i] = x.Lo
	}
	BottomK(lo, counts, threshold, dst)
}
