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

import "testing"

func TestOnePermDeterministic(t *testing.T) {
	a := NewOnePermSetSketch(16)
	b := NewOnePermSetSketch(16)
	for h := uint64(1); h < 1000; h++ {
		a.Update(h * 2654435761)
		b.Update(h * 2654435761)
	}
	da, db := a.Data(), b.Data()
	for i := range da {
		if da[i] != db[i] {
			t.Fatalf("register %d differs: %g vs %g", i, da[i], db[i])
		}
	}
	if a.Card() <= 0 {
		t.Errorf("cardinality estimate must be positive, got %g", a.Card())
	}
}

func TestOnePermReset(t *testing.T) {
	s := NewOnePermSetSketch(8)
	for h := uint64(0); h < 100; h++ {
		s.Update(h)
	}
	s.Reset()
	if s.Updates() != 0 {
		t.Errorf("updates after reset: got %d", s.Updates())
	}
	for i, v := range s.Data() {
		if v != 1 {
			t.Errorf("register %d after reset: got %g, want 1", i, v)
		}
	}
	if card := s.Card(); card != 0 {
		t.Errorf("cardinality after reset: got %g, want 0", card)
	}
}

func TestOnePermMinCount(t *testing.T) {
	s := NewOnePermSetSketch(4)
	s.SetMinCount(1)

	s.Update(12345)
	for _, v := range s.Data() {
		if v != 1 {
			t.Fatalf("m-mer admitted below min count: %v", s.Data())
		}
	}

	// the second observation crosses the threshold
	s.Update(12345)
	var touched bool
	for _, v := range s.Data() {
		if v != 1 {
			touched = true
		}
	}
	if !touched {
		t.Error("m-mer not admitted after crossing min count")
	}
}
