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

import (
	"strings"
	"testing"
)

func TestDestination(t *testing.T) {
	opt := &Options{K: 21, W: 21, SketchSize: 64, Space: SpaceSet, KmerResult: OnePerm}
	dest := Destination("data/sample.fa", opt)
	if dest != "data/sample.fa.21.set.DNA.opss" {
		t.Errorf("got %q", dest)
	}

	// deterministic
	if dest != Destination("data/sample.fa", opt) {
		t.Error("destination is not deterministic")
	}

	// only the first substream names the row
	if Destination("data/sample.fa data/other.fa", opt) != dest {
		t.Error("path line must be truncated at the first space")
	}
}

func TestDestinationComponents(t *testing.T) {
	opt := &Options{
		K: 16, W: 32, SketchSize: 64,
		Space: SpaceMultiset, KmerResult: FullSetSketch,
		CountThreshold:  2,
		TrimFolderPaths: true,
		OutPrefix:       "out",
	}
	dest := Destination("data/sample.fa", opt)
	if dest != "out/sample.fa.16.32.2.u32.multiset.DNA.bmh" {
		t.Errorf("got %q", dest)
	}

	if KmerFile(dest) != "out/sample.fa.16.32.2.u32.multiset.DNA.kmer.u64" {
		t.Errorf("kmer file: got %q", KmerFile(dest))
	}
	if KmerCountFile(dest) != "out/sample.fa.16.32.2.u32.multiset.DNA.kmercounts.f64" {
		t.Errorf("kmer count file: got %q", KmerCountFile(dest))
	}
}

func TestDestinationCollisionFree(t *testing.T) {
	base := Options{K: 16, W: 16, SketchSize: 64, Space: SpaceSet, KmerResult: OnePerm}
	variants := []Options{
		base,
		{K: 17, W: 17, SketchSize: 64, Space: SpaceSet, KmerResult: OnePerm},
		{K: 16, W: 32, SketchSize: 64, Space: SpaceSet, KmerResult: OnePerm},
		{K: 16, W: 16, SketchSize: 64, Space: SpaceSet, KmerResult: FullSetSketch},
		{K: 16, W: 16, SketchSize: 64, Space: SpaceMultiset, KmerResult: OnePerm},
		{K: 16, W: 16, SketchSize: 64, Space: SpacePSet, KmerResult: OnePerm},
		{K: 16, W: 16, SketchSize: 64, Space: SpaceSet, KmerResult: OnePerm, CountThreshold: 1},
		{K: 16, W: 16, SketchSize: 64, Space: SpaceSet, KmerResult: OnePerm, ParseProtein: true},
		{K: 16, W: 16, SketchSize: 64, Space: SpaceSet, KmerResult: FullMmerSet},
		{K: 16, W: 16, SketchSize: 64, Space: SpaceSet, KmerResult: FullMmerCountdict},
		{K: 16, W: 16, SketchSize: 64, Space: SpaceSet, KmerResult: FullMmerSequence},
	}
	seen := make(map[string]int, len(variants))
	for i := range variants {
		dest := Destination("sample.fa", &variants[i])
		if j, ok := seen[dest]; ok {
			t.Errorf("configs %d and %d collide on %q", i, j, dest)
		}
		seen[dest] = i
	}
}

func TestDefaultStackedName(t *testing.T) {
	opt := &Options{K: 16, W: 16, SketchSize: 8, Space: SpacePSet}
	if got := DefaultStackedName("a/b.fa extra.fa", opt); got != "a/b.fa.pmh" {
		t.Errorf("got %q", got)
	}
	opt2 := &Options{K: 16, W: 16, SketchSize: 8, Space: SpaceSet, KmerResult: OnePerm,
		TrimFolderPaths: true, OutPrefix: "sketches"}
	if got := DefaultStackedName("a/b.fa", opt2); got != "sketches/b.fa.opss" {
		t.Errorf("got %q", got)
	}
	if !strings.HasSuffix(DefaultStackedName("x.fa", &Options{Space: SpaceEditDistance}), ".omh") {
		t.Error("edit distance must use the .omh suffix")
	}
}
