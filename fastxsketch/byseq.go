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
	"github.com/pkg/errors"

	"github.com/jessicabonnie/dashing2/mmer"
	"github.com/jessicabonnie/dashing2/sketch"
)

// sketchFileBySeq sketches every sequence of one path line into its own
// row of a per-file sub-result. Rows are merged across files afterwards.
func (r *runner) sketchFileBySeq(tid int, path string) (*Result, error) {
	opt := r.opt
	ss := opt.SketchSize
	sub := &Result{SketchSize: ss}
	sc := r.pool.scratches[tid]
	enc := r.pool.enc

	saveIDs := (opt.SaveKmers || opt.BuildMmerMatrix) && opt.Space != SpaceEditDistance
	saveCounts := (opt.SaveKmerCounts || opt.BuildCountMatrix) && opt.Space != SpaceEditDistance

	process := func(name, seq []byte) error {
		r.pool.reset(tid)

		var regs []float64
		var ids []uint64
		var idcounts []uint32
		var card float64

		switch {
		case opt.Space == SpaceEditDistance:
			omh := r.pool.omhs[tid]
			regs = omh.Sketch(seq)
			card = float64(len(seq))
		case opt.Space == SpaceMultiset:
			ctr := r.pool.ctrs[tid]
			enc.ForEachSeq(seq, sc,
				func(h uint64) { ctr.Add(h) },
				func(x sketch.Uint128) { ctr.Add128(x) })
			bmh := r.pool.bmhs[tid]
			ctr.FinalizeSketch(bmh, opt.CountThreshold)
			card = bmh.TotalWeight()
			regs, ids, idcounts = bmh.Data(), bmh.IDs(), bmh.IDCounts()
		case opt.Space == SpacePSet:
			ctr := r.pool.ctrs[tid]
			enc.ForEachSeq(seq, sc,
				func(h uint64) { ctr.Add(h) },
				func(x sketch.Uint128) { ctr.Add128(x) })
			pmh := r.pool.pmhs[tid]
			ctr.FinalizeSketch(pmh, opt.CountThreshold)
			card = pmh.TotalWeight()
			regs, ids, idcounts = pmh.Data(), pmh.IDs(), pmh.IDCounts()
		case opt.setsketchWithCounts():
			ctr := r.pool.ctrs[tid]
			enc.ForEachSeq(seq, sc,
				func(h uint64) { ctr.Add(h) },
				func(x sketch.Uint128) { ctr.Add128(x) })
			fss := r.pool.fss[tid]
			ctr.FinalizeSketch(fss, opt.CountThreshold)
			card = fss.Card()
			regs, ids, idcounts = fss.Data(), fss.IDs(), fss.IDCounts()
		case opt.KmerResult == OnePerm:
			ops := r.pool.opss[tid]
			enc.ForEachSeq(seq, sc,
				func(h uint64) { ops.Update(h) },
				func(x sketch.Uint128) { ops.Update128(x) })
			card = ops.Card()
			regs, ids, idcounts = ops.Data(), ops.IDs(), ops.IDCounts()
		case opt.KmerResult == FullSetSketch:
			fss := r.pool.fss[tid]
			enc.ForEachSeq(seq, sc,
				func(h uint64) { fss.Update(h) },
				func(x sketch.Uint128) { fss.Update128(x) })
			card = fss.Card()
			regs, ids, idcounts = fss.Data(), fss.IDs(), fss.IDCounts()
		default:
			return errors.New("unexpected k-mer result in parse-by-seq mode")
		}

		sub.Names = append(sub.Names, string(name))
		sub.Cardinalities = append(sub.Cardinalities, card)
		sub.Signatures = append(sub.Signatures, regs...)
		if saveIDs {
			if ids == nil {
				return errors.New("unexpected: no id source for saving k-mers")
			}
			sub.Kmers = append(sub.Kmers, ids...)
		}
		if saveCounts {
			if idcounts == nil {
				return errors.New("unexpected: no count source for saving k-mer counts")
			}
			for _, c := range idcounts {
				sub.KmerCounts = append(sub.KmerCounts, float64(c))
			}
		}
		return nil
	}

	err := mmer.ForEachSubstr(path, func(subpath string) error {
		return mmer.ForEachRecord(subpath, process)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}
