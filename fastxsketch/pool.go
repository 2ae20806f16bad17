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
	"github.com/jessicabonnie/dashing2/mmer"
	"github.com/jessicabonnie/dashing2/sketch"
)

// sketcherPool pre-allocates, per worker, one instance of every sketch
// variant the configuration can reach, plus a counter and encoder
// scratch. Workers own their slot exclusively; reset between files
// restores every allocated variant.
type sketcherPool struct {
	opt *Options
	enc mmer.Encoder

	opss []*sketch.OnePermSetSketch
	fss  []*sketch.SetSketch
	bmhs []*sketch.BagMinHash
	pmhs []*sketch.ProbMinHash
	omhs []*sketch.OrderMinHash
	ctrs []*sketch.Counter

	scratches []*mmer.Scratch
}

func newSketcherPool(opt *Options, nt int) *sketcherPool {
	p := &sketcherPool{opt: opt, enc: opt.newEncoder()}
	ss := opt.SketchSize
	saveIDs := opt.SaveKmers || opt.BuildMmerMatrix
	saveCounts := opt.SaveKmerCounts || opt.BuildCountMatrix

	switch opt.Space {
	case SpaceSet:
		switch opt.KmerResult {
		case OnePerm:
			p.opss = make([]*sketch.OnePermSetSketch, nt)
			for i := range p.opss {
				p.opss[i] = sketch.NewOnePermSetSketch(ss)
				p.opss[i].SetMinCount(opt.CountThreshold)
			}
		case FullSetSketch:
			p.fss = make([]*sketch.SetSketch, nt)
			for i := range p.fss {
				p.fss[i] = sketch.NewSetSketch(ss, saveIDs, saveCounts)
			}
		}
	case SpaceMultiset:
		p.bmhs = make([]*sketch.BagMinHash, nt)
		for i := range p.bmhs {
			p.bmhs[i] = sketch.NewBagMinHash(ss, saveIDs, saveCounts)
		}
	case SpacePSet:
		p.pmhs = make([]*sketch.ProbMinHash, nt)
		for i := range p.pmhs {
			p.pmhs[i] = sketch.NewProbMinHash(ss, saveIDs, saveCounts)
		}
	case SpaceEditDistance:
		p.omhs = make([]*sketch.OrderMinHash, nt)
		for i := range p.omhs {
			p.omhs[i] = sketch.NewOrderMinHash(ss, opt.K)
		}
	}

	p.ctrs = make([]*sketch.Counter, nt)
	for i := range p.ctrs {
		p.ctrs[i] = sketch.NewCounter(opt.CSSize)
	}
	p.scratches = make([]*mmer.Scratch, nt)
	for i := range p.scratches {
		p.scratches[i] = p.enc.NewScratch()
	}
	return p
}

// reset restores every variant of one worker slot to its
// post-construction state.
func (p *sketcherPool) reset(tid int) {
	if p.fss != nil {
		p.fss[tid].Reset()
	}
	if p.opss != nil {
		p.opss[tid].Reset()
	}
	if p.bmhs != nil {
		p.bmhs[tid].Reset()
	}
	if p.pmhs != nil {
		p.pmhs[tid].Reset()
	}
	if p.omhs != nil {
		p.omhs[tid].Reset()
	}
	if p.ctrs != nil {
		p.ctrs[tid].Reset()
	}
}
