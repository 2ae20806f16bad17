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

import (
	"math/bits"

	"github.com/zeebo/wyhash"
)

// protSeed fixes the residue table so that runs are reproducible.
const protSeed = 5299

// protTable holds one 64-bit constant per residue byte, used by the
// cyclic-polynomial rolling hash for protein sequences.
var protTable [256]uint64

func init() {
	var b [1]byte
	for i := range protTable {
		b[0] = byte(i)
		protTable[i] = wyhash.Hash(b[:], protSeed)
	}
}

func isResidue(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// rollProtein streams the cyclic-polynomial rolling hash of k-residue
// windows. A non-residue byte resets the window.
func rollProtein(seq []byte, k int, emit func(h uint64)) {
	rot := uint(k % 64)
	var h uint64
	l := 0
	for i := 0; i < len(seq); i++ {
		b := seq[i]
		if !isResidue(b) {
			h = 0
			l = 0
			continue
		}
		h = bits.RotateLeft64(h, 1) ^ protTable[upperTable[b]]
		l++
		if l > k {
			h ^= bits.RotateLeft64(protTable[upperTable[seq[i-k]]], int(rot))
		}
		if l >= k {
			emit(h)
		}
	}
}
