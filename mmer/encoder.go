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
	"github.com/will-rowe/nthash"
	"github.com/zeebo/xxh3"

	"github.com/jessicabonnie/dashing2/sketch"
)

// Encoder streams hashed m-mers of a fixed width. The width follows the
// encoder selection rule: DNA with w > k or k <= 64 uses the exact
// encoder (64-bit hashes below k=32, 128-bit at or above); protein
// sequences and long DNA k-mers use a rolling hash, 128-bit iff Use128.
type Encoder struct {
	K       int
	W       int // window size; W > K selects one minimizer per window
	Protein bool
	Use128  bool
	Filter  *FilterSet
}

// Scratch holds per-thread reusable state for one encoder.
type Scratch struct {
	win    *minRing64
	win128 *minRing128
	kbuf   []byte
}

// NewScratch allocates the per-thread scratch for e.
func (e *Encoder) NewScratch() *Scratch {
	sc := &Scratch{kbuf: make([]byte, e.K)}
	if e.W > e.K {
		m := e.W - e.K + 1
		sc.win = newMinRing64(m)
		sc.win128 = newMinRing128(m)
	}
	return sc
}

func (e *Encoder) exact() bool {
	return !e.Protein && (e.W > e.K || e.K <= 64)
}

// Hash128 reports whether the encoder emits 128-bit m-mers.
func (e *Encoder) Hash128() bool {
	if e.exact() {
		return e.K >= 32
	}
	return e.Use128
}

// ForEachFile streams every m-mer of one FASTA/Q file. Exactly one of
// emit64 and emit128 is invoked, per Hash128.
func (e *Encoder) ForEachFile(file string, sc *Scratch, emit64 func(uint64), emit128 func(sketch.Uint128)) error {
	return ForEachRecord(file, func(_, seq []byte) error {
		e.ForEachSeq(seq, sc, emit64, emit128)
		return nil
	})
}

// ForEachSeq streams the m-mers of one sequence.
func (e *Encoder) ForEachSeq(seq []byte, sc *Scratch, emit64 func(uint64), emit128 func(sketch.Uint128)) {
	if e.Hash128() {
		e.windowHash128(seq, sc, e.sink128(sc, emit128), e.Protein)
		return
	}
	sink := e.sink64(sc, emit64)
	switch {
	case e.exact():
		e.exact64(seq, sink)
	case e.Protein:
		rollProtein(seq, e.K, sink)
	default:
		e.rollDNA64(seq, sink)
	}
}

// sink64 wraps an emit callback with minimizer selection and the filter.
func (e *Encoder) sink64(sc *Scratch, emit func(uint64)) func(uint64) {
	fs := e.Filter
	if e.W <= e.K {
		if fs == nil {
			return emit
		}
		return func(h uint64) {
			if !fs.Contains(h) {
				emit(h)
			}
		}
	}
	win := sc.win
	win.reset()
	return func(h uint64) {
		if m, ok := win.push(h); ok {
			if fs == nil || !fs.Contains(m) {
				emit(m)
			}
		}
	}
}

func (e *Encoder) sink128(sc *Scratch, emit func(sketch.Uint128)) func(sketch.Uint128) {
	fs := e.Filter
	if e.W <= e.K {
		if fs == nil {
			return emit
		}
		return func(x sketch.Uint128) {
			if !fs.Contains128(x) {
				emit(x)
			}
		}
	}
	win := sc.win128
	win.reset()
	return func(x sketch.Uint128) {
		if m, ok := win.push(x); ok {
			if fs == nil || !fs.Contains128(m) {
				emit(m)
			}
		}
	}
}

// exact64 emits the invertible hash of the canonical 2-bit code of every
// k-mer. N resets the window.
func (e *Encoder) exact64(seq []byte, emit func(uint64)) {
	k := e.K
	if len(seq) < k {
		return
	}
	mask := (uint64(1) << uint(2*k)) - 1
	shift := uint(2 * (k - 1))
	var fwd, rev uint64
	l := 0
	for i := 0; i < len(seq); i++ {
		c := seqNT4Table[seq[i]]
		if c > 3 {
			fwd, rev, l = 0, 0, 0
			continue
		}
		fwd = (fwd<<2 | uint64(c)) & mask
		rev = (rev >> 2) | (3-uint64(c))<<shift
		l++
		if l < k {
			continue
		}
		x := fwd
		if rev < fwd {
			x = rev
		}
		emit(hash64(x))
	}
}

// windowHash128 emits the 128-bit hash of every k-length window,
// upper-cased. Windows containing an invalid symbol are skipped.
func (e *Encoder) windowHash128(seq []byte, sc *Scratch, emit func(sketch.Uint128), protein bool) {
	k := e.K
	if len(seq) < k {
		return
	}
	l := 0
	for i := 0; i < len(seq); i++ {
		b := seq[i]
		var ok bool
		if protein {
			ok = isResidue(b)
		} else {
			ok = seqNT4Table[b] <= 3
		}
		if !ok {
			l = 0
			continue
		}
		l++
		if l < k {
			continue
		}
		win := seq[i-k+1 : i+1]
		for j, c := range win {
			sc.kbuf[j] = upperTable[c]
		}
		h := xxh3.Hash128(sc.kbuf)
		emit(sketch.Uint128{Lo: h.Lo, Hi: h.Hi})
	}
}

// rollDNA64 streams canonical ntHash values for long DNA k-mers.
func (e *Encoder) rollDNA64(seq []byte, emit func(uint64)) {
	if len(seq) < e.K {
		return
	}
	hasher, err := nthash.NewHasher(&seq, uint(e.K))
	if err != nil {
		return
	}
	for {
		h, ok := hasher.Next(true)
		if !ok {
			break
		}
		emit(h)
	}
}
