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

// Package fastxsketch turns collections of FASTA/Q files into fixed-size
// numerical sketches: per input file (or per sequence) one row of ss
// registers, with optional parallel m-mer id and count rows, written as
// raw little-endian artifacts and collected into flat matrices.
package fastxsketch

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/shenwei356/go-logging"

	"github.com/jessicabonnie/dashing2/mmer"
)

var log = logging.MustGetLogger("dashing2")

// Space is the similarity space a sketch approximates.
type Space int

const (
	SpaceSet Space = iota
	SpaceMultiset
	SpacePSet
	SpaceEditDistance
)

func (s Space) String() string {
	switch s {
	case SpaceSet:
		return "set"
	case SpaceMultiset:
		return "multiset"
	case SpacePSet:
		return "pset"
	case SpaceEditDistance:
		return "editdistance"
	}
	return "unknown"
}

// KmerResult is the output kind within the set space. The order matters:
// results below FullMmerSet are fixed-width register sketches.
type KmerResult int

const (
	OnePerm KmerResult = iota
	FullSetSketch
	FullMmerSet
	FullMmerCountdict
	FullMmerSequence
)

func (r KmerResult) String() string {
	switch r {
	case OnePerm:
		return "oneperm"
	case FullSetSketch:
		return "setsketch"
	case FullMmerSet:
		return "mmerset"
	case FullMmerCountdict:
		return "mmercountdict"
	case FullMmerSequence:
		return "mmersequence"
	}
	return "unknown"
}

// Options is the configuration matrix of one sketching run. It is
// read-only once Validate has been called.
type Options struct {
	K int
	W int // 0 or K disables minimizer selection

	SketchSize int
	Space      Space
	KmerResult KmerResult

	CountThreshold float64

	SaveKmers        bool
	SaveKmerCounts   bool
	BuildSigMatrix   bool
	BuildMmerMatrix  bool
	BuildCountMatrix bool

	CacheSketches bool
	Use128        bool
	ParseBySeq    bool
	ParseProtein  bool

	HomopolymerCompress bool

	TrimFolderPaths bool
	OutPrefix       string

	CSSize int
	Filter *mmer.FilterSet

	Threads int
	Verbose bool
}

// Validate checks flag compatibility and applies the implicit rules that
// must hold before the parallel region starts. It mutates the receiver
// (normalized window, forced count saving, default thread count) and
// must be called exactly once per run.
func (o *Options) Validate() error {
	if o.K < 1 {
		return errors.New("k-mer length must be >= 1")
	}
	if o.SketchSize < 1 {
		return errors.New("sketch size must be >= 1")
	}
	if o.W == 0 {
		o.W = o.K
	}
	if o.W < o.K {
		return errors.Errorf("window size (%d) must be >= k (%d)", o.W, o.K)
	}
	if o.Space == SpaceEditDistance && !o.ParseBySeq {
		return errors.New("space edit distance is only available in parse-by-seq mode, as it is only defined on strings rather than string collections")
	}
	if o.ParseBySeq {
		switch o.KmerResult {
		case FullMmerSet, FullMmerCountdict, FullMmerSequence:
			return errors.Errorf("k-mer result %s is not available in parse-by-seq mode", o.KmerResult)
		}
	}
	if o.Space == SpaceMultiset || o.Space == SpacePSet {
		// counts always saved for BagMinHash and ProbMinHash
		o.SaveKmerCounts = true
	}
	if o.Threads < 1 {
		o.Threads = runtime.NumCPU()
	}
	return nil
}

// setsketchWithCounts reports whether a full set sketch needs the
// counted path because counts are saved or a threshold applies.
func (o *Options) setsketchWithCounts() bool {
	return o.KmerResult == FullSetSketch && (o.SaveKmerCounts || o.CountThreshold > 0)
}

// sketchMode is the dispatch decision of the file sketcher.
type sketchMode int

const (
	modeCounted sketchMode = iota
	modeSequence
	modeRegister
)

func (o *Options) mode() sketchMode {
	switch {
	case o.Space == SpaceMultiset || o.Space == SpacePSet ||
		o.KmerResult == FullMmerSet || o.KmerResult == FullMmerCountdict ||
		o.setsketchWithCounts():
		return modeCounted
	case o.KmerResult == FullMmerSequence:
		return modeSequence
	default:
		return modeRegister
	}
}

// newEncoder builds the m-mer encoder for this configuration.
func (o *Options) newEncoder() mmer.Encoder {
	return mmer.Encoder{
		K:       o.K,
		W:       o.W,
		Protein: o.ParseProtein,
		Use128:  o.Use128,
		Filter:  o.Filter,
	}
}

// hash128 reports the effective m-mer width of the run.
func (o *Options) hash128() bool {
	enc := o.newEncoder()
	return enc.Hash128()
}

// keyWidth is the on-disk size of one exact m-mer key.
func (o *Options) keyWidth() int {
	if o.hash128() {
		return 16
	}
	return 8
}
