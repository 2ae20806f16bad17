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

// Package sketch provides the streaming sketch data structures used to
// summarize multisets of hashed m-mers: a bottom-k set sketch, a
// one-permutation set sketch, weighted min-hash sketches over counted
// m-mers, an order-sensitive min-hash for strings, and an exact counter.
//
// All sketches expose ss float64 registers. A register stores either a
// 64-bit key converted by value to float64 (the bottom-k set sketch and
// the order min-hash), a uniform draw in (0, 1] (the one-permutation
// sketch), or an exponential draw (the weighted sketches). Resetting any
// sketch returns it to its post-construction state.
package sketch

import "math"

// Uint128 is a 128-bit m-mer hash, ordered by Hi then Lo.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// Less reports whether x sorts before y.
func (x Uint128) Less(y Uint128) bool {
	if x.Hi != y.Hi {
		return x.Hi < y.Hi
	}
	return x.Lo < y.Lo
}

// mix64 is the splitmix64 finalizer, used to derive per-register hash
// values from a single base hash.
func mix64(h uint64) uint64 {
	h += 0x9e3779b97f4a7c15
	h = (h ^ (h >> 30)) * 0xbf58476d1ce4e5b9
	h = (h ^ (h >> 27)) * 0x94d049bb133111eb
	return h ^ (h >> 31)
}

// mix2 combines a key with a register index before finalizing.
func mix2(key uint64, j uint64) uint64 {
	return mix64(key ^ (j+1)*0x9e3779b97f4a7c15)
}

// u01 maps a 64-bit hash to a uniform draw in (0, 1].
func u01(h uint64) float64 {
	return (float64(h>>11) + 1) / (1 << 53)
}

// expDraw returns an exponential draw with the given rate.
func expDraw(h uint64, rate float64) float64 {
	return -math.Log(u01(h)) / rate
}
