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

package fastxsketch

import "testing"

func TestValidateEditDistance(t *testing.T) {
	opt := &Options{K: 16, SketchSize: 8, Space: SpaceEditDistance}
	if err := opt.Validate(); err == nil {
		t.Error("edit distance without parse-by-seq must be rejected")
	}

	opt = &Options{K: 16, SketchSize: 8, Space: SpaceEditDistance, ParseBySeq: true}
	if err := opt.Validate(); err != nil {
		t.Errorf("edit distance with parse-by-seq rejected: %s", err)
	}
}

func TestValidateBasics(t *testing.T) {
	if err := (&Options{K: 0, SketchSize: 8}).Validate(); err == nil {
		t.Error("k = 0 must be rejected")
	}
	if err := (&Options{K: 16, SketchSize: 0}).Validate(); err == nil {
		t.Error("sketch size 0 must be rejected")
	}
	if err := (&Options{K: 16, W: 8, SketchSize: 8}).Validate(); err == nil {
		t.Error("w < k must be rejected")
	}

	opt := &Options{K: 16, SketchSize: 8}
	if err := opt.Validate(); err != nil {
		t.Fatal(err)
	}
	if opt.W != 16 {
		t.Errorf("window not normalized: got %d", opt.W)
	}
	if opt.Threads < 1 {
		t.Error("threads not defaulted")
	}
}

func TestValidateImplicitKmerCounts(t *testing.T) {
	for _, space := range []Space{SpaceMultiset, SpacePSet} {
		opt := &Options{K: 16, SketchSize: 8, Space: space}
		if err := opt.Validate(); err != nil {
			t.Fatal(err)
		}
		if !opt.SaveKmerCounts {
			t.Errorf("%s must imply saving k-mer counts", space)
		}
	}
}

func TestModeDecision(t *testing.T) {
	cases := []struct {
		opt  Options
		want sketchMode
	}{
		{Options{K: 16, SketchSize: 8, Space: SpaceSet, KmerResult: OnePerm}, modeRegister},
		{Options{K: 16, SketchSize: 8, Space: SpaceSet, KmerResult: FullSetSketch}, modeRegister},
		{Options{K: 16, SketchSize: 8, Space: SpaceSet, KmerResult: FullSetSketch, SaveKmerCounts: true}, modeCounted},
		{Options{K: 16, SketchSize: 8, Space: SpaceSet, KmerResult: FullSetSketch, CountThreshold: 1}, modeCounted},
		{Options{K: 16, SketchSize: 8, Space: SpaceMultiset}, modeCounted},
		{Options{K: 16, SketchSize: 8, Space: SpacePSet}, modeCounted},
		{Options{K: 16, SketchSize: 8, Space: SpaceSet, KmerResult: FullMmerSet}, modeCounted},
		{Options{K: 16, SketchSize: 8, Space: SpaceSet, KmerResult: FullMmerCountdict}, modeCounted},
		{Options{K: 16, SketchSize: 8, Space: SpaceSet, KmerResult: FullMmerSequence}, modeSequence},
	}
	for i := range cases {
		if got := cases[i].opt.mode(); got != cases[i].want {
			t.Errorf("case %d: mode = %v, want %v", i, got, cases[i].want)
		}
	}
}

func TestSketchEmptyPaths(t *testing.T) {
	opt := &Options{K: 16, SketchSize: 8, Threads: 1}
	if _, err := Sketch(opt, nil); err == nil {
		t.Error("empty path set must be rejected")
	}
}
