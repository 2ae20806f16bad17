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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jessicabonnie/dashing2/mmer"
)

func writeFasta(t *testing.T, dir, name string, seqs [][2]string) string {
	t.Helper()
	var b strings.Builder
	for _, rec := range seqs {
		fmt.Fprintf(&b, ">%s\n%s\n", rec[0], rec[1])
	}
	file := filepath.Join(dir, name)
	if err := os.WriteFile(file, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

func readU64s(t *testing.T, file string) []uint64 {
	t.Helper()
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(data)%8 != 0 {
		t.Fatalf("%s: %d bytes is not a multiple of 8", file, len(data))
	}
	out := make([]uint64, len(data)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(data[8*i:])
	}
	return out
}

func TestSketchShape(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFasta(t, dir, "a.fa", [][2]string{{"s1", "ACGGATTTACCGGATACCGAGATTACACCGGT"}}),
		writeFasta(t, dir, "b.fa", [][2]string{{"s1", "TTTTACCGAGGATTACAGGATTACAACCGGTT"}}),
		writeFasta(t, dir, "c.fa", [][2]string{{"s1", "GGATACCGAGATTACACCGGTTAACCGGTTAA"}}),
	}
	opt := &Options{
		K: 7, SketchSize: 8,
		Space: SpaceSet, KmerResult: OnePerm,
		BuildSigMatrix: true,
		Threads:        2,
	}
	res, err := Sketch(opt, paths)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Signatures) != len(paths)*8 {
		t.Errorf("signatures: got %d values, want %d", len(res.Signatures), len(paths)*8)
	}
	if len(res.Names) != len(paths) || len(res.Cardinalities) != len(paths) ||
		len(res.DestinationFiles) != len(paths) {
		t.Error("names, cardinalities and destinations must have one entry per path")
	}
	for i, dest := range res.DestinationFiles {
		st, err := os.Stat(dest)
		if err != nil {
			t.Fatalf("destination %s not written: %s", dest, err)
		}
		if st.Size() != 8*8 {
			t.Errorf("destination %s: %d bytes, want %d", dest, st.Size(), 8*8)
		}
		if res.Cardinalities[i] <= 0 {
			t.Errorf("cardinality %d not positive: %g", i, res.Cardinalities[i])
		}
	}
}

func TestSketchDeterminism(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir, "a.fa", [][2]string{{"s1", "ACGGATTTACCGGATACCGAGATTACACCGGT"}})
	opt := &Options{
		K: 7, SketchSize: 8,
		Space: SpaceSet, KmerResult: FullSetSketch,
		BuildSigMatrix: true,
		SaveKmers:      true,
		Threads:        1,
	}
	res1, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(res1.DestinationFiles[0])
	if err != nil {
		t.Fatal(err)
	}
	firstKmers, err := os.ReadFile(res1.KmerFiles[0])
	if err != nil {
		t.Fatal(err)
	}

	res2, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(res2.DestinationFiles[0])
	secondKmers, _ := os.ReadFile(res2.KmerFiles[0])
	if !bytes.Equal(first, second) {
		t.Error("destination artifacts differ between identical runs")
	}
	if !bytes.Equal(firstKmers, secondKmers) {
		t.Error("k-mer artifacts differ between identical runs")
	}
	for i := range res1.Signatures {
		if res1.Signatures[i] != res2.Signatures[i] {
			t.Error("signature matrices differ between identical runs")
			break
		}
	}
}

func TestSketchCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir, "a.fa", [][2]string{{"s1", "ACGGATTTACCGGATACCGAGATTACACCGGT"}})
	ss := 8
	opt := &Options{
		K: 7, SketchSize: ss,
		Space: SpaceSet, KmerResult: OnePerm,
		BuildSigMatrix: true,
		SaveKmers:      true,
		CacheSketches:  true,
		Threads:        1,
	}
	res, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	dest := res.DestinationFiles[0]
	kmerFile := res.KmerFiles[0]
	if kmerFile != KmerFile(dest) {
		t.Fatalf("kmer file: got %s", kmerFile)
	}

	// plant known registers; a cache hit surfaces them without
	// recomputing, and still reports the persisted cardinality
	planted := make([]float64, ss)
	for i := range planted {
		planted[i] = 0.5
	}
	if err = writeF64File(dest, planted); err != nil {
		t.Fatal(err)
	}
	res2, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < ss; i++ {
		if res2.Signatures[i] != 0.5 {
			t.Fatalf("cache hit did not reload planted registers: %v", res2.Signatures[:ss])
		}
	}
	if res2.Cardinalities[0] != res.Cardinalities[0] {
		t.Errorf("reloaded cardinality: got %g, want %g", res2.Cardinalities[0], res.Cardinalities[0])
	}

	// a missing required artifact forces a recompute
	if err = os.Remove(kmerFile); err != nil {
		t.Fatal(err)
	}
	res3, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if !isFile(kmerFile) {
		t.Error("recompute did not rewrite the k-mer artifact")
	}
	same := true
	for i := 0; i < ss; i++ {
		if res3.Signatures[i] != 0.5 {
			same = false
			break
		}
	}
	if same {
		t.Error("missing k-mer artifact must force a recompute")
	}

	// the cardinality artifact gates the hit as well
	if err = os.Remove(CardFile(dest)); err != nil {
		t.Fatal(err)
	}
	if err = writeF64File(dest, planted); err != nil {
		t.Fatal(err)
	}
	res4, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if res4.Signatures[0] == 0.5 {
		t.Error("missing cardinality artifact must force a recompute")
	}
	if !isFile(CardFile(dest)) {
		t.Error("recompute did not rewrite the cardinality artifact")
	}
}

// Sketching a second time over cached artifacts must reproduce the
// first run's in-memory result exactly, for every sketch kind and
// similarity space that supports caching.
func TestSketchCacheRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		opt  Options
	}{
		{"oneperm", Options{Space: SpaceSet, KmerResult: OnePerm, SaveKmers: true}},
		{"setsketch", Options{Space: SpaceSet, KmerResult: FullSetSketch}},
		{"setsketch-counts", Options{Space: SpaceSet, KmerResult: FullSetSketch,
			SaveKmerCounts: true, BuildCountMatrix: true}},
		{"multiset", Options{Space: SpaceMultiset, BuildCountMatrix: true}},
		{"pset", Options{Space: SpacePSet}},
		{"mmer-set", Options{Space: SpaceSet, KmerResult: FullMmerSet, SaveKmerCounts: true}},
		{"mmer-countdict", Options{Space: SpaceSet, KmerResult: FullMmerCountdict,
			BuildCountMatrix: true}},
		{"mmer-sequence", Options{Space: SpaceSet, KmerResult: FullMmerSequence}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFasta(t, dir, "a.fa", [][2]string{
				{"s1", "ACGGATTTACCGGATACCGAGATTACACCGGT"},
				{"s2", "GGATACCGAGATTACACCGGTTAACCGGTTAA"},
			})
			opt := c.opt
			opt.K = 7
			opt.SketchSize = 4
			opt.BuildSigMatrix = true
			opt.CacheSketches = true
			opt.Threads = 1

			res1, err := Sketch(&opt, []string{path})
			if err != nil {
				t.Fatal(err)
			}
			res2, err := Sketch(&opt, []string{path})
			if err != nil {
				t.Fatal(err)
			}

			if len(res2.Cardinalities) != len(res1.Cardinalities) {
				t.Fatalf("cardinalities: %d vs %d", len(res2.Cardinalities), len(res1.Cardinalities))
			}
			for i := range res1.Cardinalities {
				if res2.Cardinalities[i] != res1.Cardinalities[i] {
					t.Errorf("cardinality %d: cached %g, live %g",
						i, res2.Cardinalities[i], res1.Cardinalities[i])
				}
			}
			if len(res2.Signatures) != len(res1.Signatures) {
				t.Fatalf("signatures: %d vs %d", len(res2.Signatures), len(res1.Signatures))
			}
			for i := range res1.Signatures {
				if res2.Signatures[i] != res1.Signatures[i] {
					t.Errorf("signature %d: cached %g, live %g",
						i, res2.Signatures[i], res1.Signatures[i])
					break
				}
			}
			if len(res2.Kmers) != len(res1.Kmers) {
				t.Fatalf("kmers: %d vs %d", len(res2.Kmers), len(res1.Kmers))
			}
			for i := range res1.Kmers {
				if res2.Kmers[i] != res1.Kmers[i] {
					t.Errorf("kmer %d: cached %d, live %d", i, res2.Kmers[i], res1.Kmers[i])
					break
				}
			}
			if len(res2.KmerCounts) != len(res1.KmerCounts) {
				t.Fatalf("kmercounts: %d vs %d", len(res2.KmerCounts), len(res1.KmerCounts))
			}
			for i := range res1.KmerCounts {
				if res2.KmerCounts[i] != res1.KmerCounts[i] {
					t.Errorf("kmercount %d: cached %g, live %g",
						i, res2.KmerCounts[i], res1.KmerCounts[i])
					break
				}
			}
			for i := range res1.Names {
				if res2.Names[i] != res1.Names[i] {
					t.Errorf("name %d: cached %q, live %q", i, res2.Names[i], res1.Names[i])
				}
			}
		})
	}
}

func TestSketchMmerSet(t *testing.T) {
	dir := t.TempDir()
	// six 3-mers collapsing to three canonical keys, each seen twice
	path := writeFasta(t, dir, "a.fa", [][2]string{{"s1", "AACCGGTT"}})
	ss := 2
	opt := &Options{
		K: 3, SketchSize: ss,
		Space: SpaceSet, KmerResult: FullMmerSet,
		BuildSigMatrix: true,
		SaveKmerCounts: true,
		Threads:        1,
	}
	res, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if res.Cardinalities[0] != 3 {
		t.Errorf("cardinality: got %g, want 3", res.Cardinalities[0])
	}

	dest := res.DestinationFiles[0]
	keys := readU64s(t, dest)
	if len(keys) != 3 {
		t.Fatalf("key artifact: got %d keys, want 3", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i] <= keys[i-1] {
			t.Error("keys not strictly ascending")
		}
	}

	// bottom-k of the keys lands in the signature row, bit-reinterpreted
	for j := 0; j < ss; j++ {
		if got := math.Float64bits(res.Signatures[j]); got != keys[j] {
			t.Errorf("signature slot %d: got %#x, want %#x", j, got, keys[j])
		}
	}

	counts, err := os.ReadFile(res.KmerCountFiles[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 3*8 {
		t.Fatalf("count artifact: %d bytes, want 24", len(counts))
	}
	for i := 0; i < 3; i++ {
		c := math.Float64frombits(binary.LittleEndian.Uint64(counts[8*i:]))
		if c != 2 {
			t.Errorf("count %d: got %g, want 2", i, c)
		}
	}

	// cache reload derives the cardinality from the artifact size
	opt.CacheSketches = true
	res2, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if res2.Cardinalities[0] != 3 {
		t.Errorf("cached cardinality: got %g, want 3", res2.Cardinalities[0])
	}
}

func TestSketchCountdict(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir, "a.fa", [][2]string{{"s1", "AACCGGTT"}})
	opt := &Options{
		K: 3, SketchSize: 4,
		Space: SpaceSet, KmerResult: FullMmerCountdict,
		BuildSigMatrix: true,
		Threads:        1,
	}
	res, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if res.Cardinalities[0] != 6 {
		t.Errorf("cardinality: got %g, want 6", res.Cardinalities[0])
	}

	// cached rerun sums the memory-mapped count file
	opt.CacheSketches = true
	res2, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if res2.Cardinalities[0] != 6 {
		t.Errorf("cached cardinality: got %g, want 6", res2.Cardinalities[0])
	}
}

func TestSketchFilterHonored(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir, "a.fa", [][2]string{{"s1", "AACCGGTT"}})
	opt := &Options{
		K: 3, SketchSize: 4,
		Space: SpaceSet, KmerResult: FullMmerSet,
		BuildSigMatrix: true,
		Threads:        1,
	}
	res, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	keys := readU64s(t, res.DestinationFiles[0])
	if len(keys) != 3 {
		t.Fatalf("got %d keys", len(keys))
	}

	fs := mmer.NewFilterSet()
	fs.Add(keys[0])
	opt2 := &Options{
		K: 3, SketchSize: 4,
		Space: SpaceSet, KmerResult: FullMmerSet,
		BuildSigMatrix: true,
		Filter:         fs,
		Threads:        1,
	}
	res2, err := Sketch(opt2, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if res2.Cardinalities[0] != 2 {
		t.Errorf("cardinality with filter: got %g, want 2", res2.Cardinalities[0])
	}
	for _, k := range readU64s(t, res2.DestinationFiles[0]) {
		if k == keys[0] {
			t.Error("filtered m-mer reached the sketch")
		}
	}
}

func TestSketchMmerSequenceHomopolymer(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir, "a.fa", [][2]string{{"s1", "AAAAAAAAAA"}})

	opt := &Options{
		K: 4, SketchSize: 4,
		Space: SpaceSet, KmerResult: FullMmerSequence,
		HomopolymerCompress: true,
		Threads:             1,
	}
	res, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if res.Cardinalities[0] != 1 {
		t.Errorf("compressed cardinality: got %g, want 1", res.Cardinalities[0])
	}
	out := readU64s(t, res.DestinationFiles[0])
	for i := 1; i < len(out); i++ {
		if out[i] == out[i-1] {
			t.Error("consecutive equal values survived homopolymer compression")
		}
	}

	opt2 := &Options{
		K: 4, SketchSize: 4,
		Space: SpaceSet, KmerResult: FullMmerSequence,
		Threads: 1,
	}
	res2, err := Sketch(opt2, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if res2.Cardinalities[0] != 7 {
		t.Errorf("uncompressed cardinality: got %g, want 7", res2.Cardinalities[0])
	}
}

func TestSketchBySeqMerge(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFasta(t, dir, "x.fa", [][2]string{
		{"a", "ACGGATTTACCGGATACCGAGATTACACCGGT"},
		{"b", "TTTTACCGAGGATTACAGGATTACAACCGGTT"},
	})
	p2 := writeFasta(t, dir, "y.fa", [][2]string{
		{"c", "GGATACCGAGATTACACCGGTTAACCGGTTAA"},
	})
	opt := &Options{
		K: 7, SketchSize: 4,
		Space: SpaceSet, KmerResult: OnePerm,
		ParseBySeq:     true,
		BuildSigMatrix: true,
		Threads:        2,
	}
	res, err := Sketch(opt, []string{p1, p2})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.NPerFile) != 2 || res.NPerFile[0] != 2 || res.NPerFile[1] != 1 {
		t.Errorf("rows per file: got %v, want [2 1]", res.NPerFile)
	}
	if res.Rows() != 3 {
		t.Fatalf("rows: got %d, want 3", res.Rows())
	}
	if len(res.Signatures) != 3*4 {
		t.Errorf("signatures: got %d values, want 12", len(res.Signatures))
	}
	wantNames := []string{"a:" + p1, "b:" + p1, "c:" + p2}
	for i, want := range wantNames {
		if res.Names[i] != want {
			t.Errorf("name %d: got %q, want %q", i, res.Names[i], want)
		}
		if strings.Count(res.Names[i], ":") != 1 {
			t.Errorf("name %d must contain exactly one ':': %q", i, res.Names[i])
		}
	}
	for i, card := range res.Cardinalities {
		if card <= 0 {
			t.Errorf("cardinality %d not positive: %g", i, card)
		}
	}
}

func TestSketchBySeqSingleFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFasta(t, dir, "x.fa", [][2]string{{"a", "ACGGATTTACCGGATACCGAGATTACACCGGT"}})
	opt := &Options{
		K: 7, SketchSize: 4,
		Space: SpaceSet, KmerResult: OnePerm,
		ParseBySeq:     true,
		BuildSigMatrix: true,
		Threads:        1,
	}
	res, err := Sketch(opt, []string{p})
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows() != 1 || len(res.NPerFile) != 1 || res.NPerFile[0] != 1 {
		t.Fatalf("rows: %d, nperfile: %v", res.Rows(), res.NPerFile)
	}
	if res.Names[0] != p+":a" {
		t.Errorf("single-file rename: got %q, want %q", res.Names[0], p+":a")
	}
}

func TestSketchBySeqEditDistance(t *testing.T) {
	dir := t.TempDir()
	p := writeFasta(t, dir, "x.fa", [][2]string{
		{"a", "ACGGATTTACCGGATACCGAGATTACACCGGT"},
		{"b", "GGATACCGAGATTACACCGGTTAACCGGTTAA"},
	})
	opt := &Options{
		K: 7, SketchSize: 8,
		Space:          SpaceEditDistance,
		ParseBySeq:     true,
		BuildSigMatrix: true,
		Threads:        1,
	}
	res, err := Sketch(opt, []string{p})
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows() != 2 {
		t.Fatalf("rows: got %d, want 2", res.Rows())
	}
	a := res.Signatures[:8]
	b := res.Signatures[8:16]
	var differs bool
	for i := range a {
		if a[i] == 0 {
			t.Fatal("edit-distance registers must be filled")
		}
		if a[i] != b[i] {
			differs = true
		}
	}
	if !differs {
		t.Error("different sequences produced identical order min-hash rows")
	}
}

func TestSketchMultisetCounts(t *testing.T) {
	dir := t.TempDir()
	path := writeFasta(t, dir, "a.fa", [][2]string{{"s1", "AACCGGTT"}})
	opt := &Options{
		K: 3, SketchSize: 4,
		Space:            SpaceMultiset,
		BuildSigMatrix:   true,
		BuildCountMatrix: true,
		Threads:          1,
	}
	res, err := Sketch(opt, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if !opt.SaveKmerCounts {
		t.Error("multiset must force saving k-mer counts")
	}
	// three canonical 3-mers, each twice
	if res.Cardinalities[0] != 6 {
		t.Errorf("total weight: got %g, want 6", res.Cardinalities[0])
	}
	if !isFile(res.KmerCountFiles[0]) {
		t.Error("count artifact missing")
	}
	for _, c := range res.KmerCounts[:4] {
		if c != 2 {
			t.Errorf("register count: got %g, want 2", c)
		}
	}
}
