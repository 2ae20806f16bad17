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
	"fmt"
	"strings"
	"sync"

	"github.com/smallnest/ringbuffer"
)

// Result collects one sketching run: one row per input file, or one row
// per sequence in parse-by-seq mode. All matrices are row-major with
// SketchSize columns.
type Result struct {
	Options *Options

	Names            []string
	Sequences        []string
	DestinationFiles []string
	KmerFiles        []string
	KmerCountFiles   []string

	Signatures    []float64
	Kmers         []uint64
	KmerCounts    []float64
	Cardinalities []float64

	// NPerFile holds, per input file, the number of rows it contributed
	// (parse-by-seq only).
	NPerFile []int

	SketchSize int
}

// Rows returns the number of rows in the result.
func (r *Result) Rows() int { return len(r.Names) }

func (r *Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d names", len(r.Names))
	if len(r.NPerFile) > 0 {
		fmt.Fprintf(&b, "; sketched by sequence over %d files", len(r.NPerFile))
	} else {
		b.WriteString("; sketched by file")
	}
	if len(r.Signatures) > 0 {
		fmt.Fprintf(&b, "; %d signatures", len(r.Signatures))
	}
	if len(r.Kmers) > 0 {
		fmt.Fprintf(&b, "; %d kmers", len(r.Kmers))
	}
	if len(r.KmerCounts) > 0 {
		fmt.Fprintf(&b, "; %d kmercounts", len(r.KmerCounts))
	}
	return b.String()
}

// trimAtSpace truncates a path line at the first ASCII space.
func trimAtSpace(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// mergeResults concatenates per-file parse-by-seq sub-results into one
// flat result. Sequence names are renamed so that the originating file
// remains identifiable.
func mergeResults(subs []*Result, paths []string, nt int) *Result {
	n := len(subs)
	ret := &Result{}
	if n == 0 {
		return ret
	}
	if n == 1 {
		ret = subs[0]
		ret.NPerFile = []int{len(ret.Names)}
		fname := trimAtSpace(paths[0])
		for i, name := range ret.Names {
			ret.Names[i] = fname + ":" + name
		}
		return ret
	}

	ret.SketchSize = subs[0].SketchSize
	ret.NPerFile = make([]int, n)
	offsets := make([]int, n+1)
	sigOffsets := make([]int, n+1)
	totalSeqs, totalSigs := 0, 0
	for i, sub := range subs {
		ret.NPerFile[i] = len(sub.Names)
		totalSeqs += len(sub.Names)
		totalSigs += len(sub.Signatures)
		offsets[i+1] = totalSeqs
		sigOffsets[i+1] = totalSigs
	}

	ret.Names = make([]string, totalSeqs)
	ret.Cardinalities = make([]float64, totalSeqs)
	var anySeqs bool
	for _, sub := range subs {
		if len(sub.Sequences) > 0 {
			anySeqs = true
			break
		}
	}
	if anySeqs {
		ret.Sequences = make([]string, totalSeqs)
	}
	sketchsz := 0
	if len(subs[0].Names) > 0 {
		sketchsz = len(subs[0].Signatures) / len(subs[0].Names)
	}
	if totalSigs > 0 {
		ret.Signatures = make([]float64, totalSigs)
	}
	if len(subs[0].Kmers) > 0 {
		ret.Kmers = make([]uint64, totalSeqs*sketchsz)
	}
	if len(subs[0].KmerCounts) > 0 {
		ret.KmerCounts = make([]float64, totalSigs)
	}

	var wg sync.WaitGroup
	tokens := ringbuffer.New(nt)
	for i := range subs {
		tokens.WriteByte(0)
		wg.Add(1)
		go func(i int) {
			defer func() {
				wg.Done()
				tokens.ReadByte()
			}()

			src := subs[i]
			ofs := offsets[i]
			fname := trimAtSpace(paths[i])
			for j, name := range src.Names {
				ret.Names[ofs+j] = name + ":" + fname
			}
			copy(ret.Cardinalities[ofs:], src.Cardinalities)
			if anySeqs {
				copy(ret.Sequences[ofs:], src.Sequences)
			}
			if len(ret.Signatures) > 0 {
				copy(ret.Signatures[sigOffsets[i]:], src.Signatures)
			}
			if len(ret.Kmers) > 0 {
				copy(ret.Kmers[sigOffsets[i]:], src.Kmers)
			}
			if len(ret.KmerCounts) > 0 {
				copy(ret.KmerCounts[sigOffsets[i]:], src.KmerCounts)
			}
		}(i)
	}
	wg.Wait()
	return ret
}
