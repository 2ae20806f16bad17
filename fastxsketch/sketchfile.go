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
	"math"

	"github.com/pkg/errors"

	"github.com/jessicabonnie/dashing2/mmer"
	"github.com/jessicabonnie/dashing2/sketch"
)

// runner is the state shared by all workers of one run.
type runner struct {
	opt  *Options
	pool *sketcherPool
	res  *Result
}

// perFile drives the enumerator over every substream of one path line.
func (r *runner) perFile(tid int, path string, emit64 func(uint64), emit128 func(sketch.Uint128)) error {
	sc := r.pool.scratches[tid]
	return mmer.ForEachSubstr(path, func(sub string) error {
		return r.pool.enc.ForEachFile(sub, sc, emit64, emit128)
	})
}

// sigRow returns the signature row of index i, or nil if the matrix is
// not built.
func (r *runner) sigRow(i int) []float64 {
	if len(r.res.Signatures) == 0 {
		return nil
	}
	ss := r.opt.SketchSize
	return r.res.Signatures[i*ss : (i+1)*ss]
}

// sketchFile sketches one path line into row i: it consults the cache,
// drives the enumerator through the mode the configuration selects,
// fills the result row, and writes the destination artifacts.
func (r *runner) sketchFile(tid, i int, path string) error {
	opt := r.opt
	res := r.res
	dest := res.DestinationFiles[i]
	if len(res.KmerCountFiles) > 0 {
		res.KmerCountFiles[i] = KmerCountFile(dest)
	}

	hit, err := r.tryCache(i, path, dest)
	if err != nil {
		return err
	}
	if hit {
		return nil
	}

	r.pool.reset(tid)
	switch opt.mode() {
	case modeCounted:
		return r.sketchCounted(tid, i, path, dest)
	case modeSequence:
		return r.sketchSequence(tid, i, path, dest)
	case modeRegister:
		return r.sketchRegister(tid, i, path, dest)
	}
	return errors.New("unexpected: no sketching mode matched the configuration")
}

// sketchCounted is the counted path: every m-mer lands in the counter
// first, and the finalized (key, count) table feeds the target
// representation.
func (r *runner) sketchCounted(tid, i int, path, dest string) error {
	opt := r.opt
	res := r.res
	ss := opt.SketchSize
	ctr := r.pool.ctrs[tid]

	err := r.perFile(tid, path,
		func(h uint64) { ctr.Add(h) },
		func(x sketch.Uint128) { ctr.Add128(x) })
	if err != nil {
		return err
	}

	var keys64 []uint64
	var keys128 []sketch.Uint128
	var keyCounts []float64
	var regs []float64
	var ids []uint64
	var idcounts []uint32

	switch {
	case opt.KmerResult == FullMmerSet || opt.KmerResult == FullMmerCountdict:
		if opt.hash128() {
			keys128, keyCounts = ctr.Finalize128(opt.CountThreshold)
		} else {
			keys64, keyCounts = ctr.Finalize(opt.CountThreshold)
		}
		if opt.KmerResult == FullMmerSet {
			res.Cardinalities[i] = float64(len(keys64) + len(keys128))
		} else {
			var sum float64
			for _, c := range keyCounts {
				sum += c
			}
			res.Cardinalities[i] = sum
		}
	case opt.Space == SpaceMultiset:
		bmh := r.pool.bmhs[tid]
		ctr.FinalizeSketch(bmh, opt.CountThreshold)
		res.Cardinalities[i] = bmh.TotalWeight()
		regs, ids, idcounts = bmh.Data(), bmh.IDs(), bmh.IDCounts()
	case opt.Space == SpacePSet:
		pmh := r.pool.pmhs[tid]
		ctr.FinalizeSketch(pmh, opt.CountThreshold)
		res.Cardinalities[i] = pmh.TotalWeight()
		regs, ids, idcounts = pmh.Data(), pmh.IDs(), pmh.IDCounts()
	case opt.setsketchWithCounts():
		fss := r.pool.fss[tid]
		ctr.FinalizeSketch(fss, opt.CountThreshold)
		res.Cardinalities[i] = fss.Card()
		regs, ids, idcounts = fss.Data(), fss.IDs(), fss.IDCounts()
	default:
		return errors.New("unexpected space for counter-based m-mer encoding")
	}

	// Exact keys plus a signature matrix: store the bottom-k of the keys
	// in the signature row, bit-reinterpreted into the registers. The
	// file on disk still holds all keys.
	if row := r.sigRow(i); row != nil {
		if regs != nil {
			copy(row, regs)
		} else {
			bk := make([]uint64, ss)
			counts := keyCounts
			if len(counts) == 0 {
				counts = nil
			}
			if len(keys128) > 0 {
				sketch.BottomK128(keys128, counts, opt.CountThreshold, bk)
			} else {
				sketch.BottomK(keys64, counts, opt.CountThreshold, bk)
			}
			for j, kv := range bk {
				row[j] = math.Float64frombits(kv)
			}
		}
	}

	// the signature artifact: all keys for exact modes, ss registers for
	// sketches
	switch {
	case opt.KmerResult == FullMmerSet || opt.KmerResult == FullMmerCountdict:
		if opt.hash128() {
			err = writeU128File(dest, keys128)
		} else {
			err = writeU64File(dest, keys64)
		}
	default:
		if err = writeF64File(dest, regs); err != nil {
			return err
		}
		err = writeF64File(CardFile(dest), []float64{res.Cardinalities[i]})
	}
	if err != nil {
		return err
	}

	exact := opt.KmerResult == FullMmerSet || opt.KmerResult == FullMmerCountdict
	if (opt.SaveKmers || opt.BuildMmerMatrix) && !exact {
		if ids == nil {
			return errors.New("unexpected: no id source for saving k-mers")
		}
		destKmer := KmerFile(dest)
		if len(res.KmerFiles) > 0 {
			res.KmerFiles[i] = destKmer
		}
		if err = writeU64File(destKmer, ids); err != nil {
			return err
		}
		if len(res.Kmers) > 0 {
			copy(res.Kmers[i*ss:(i+1)*ss], ids)
		}
	}

	if opt.SaveKmerCounts || opt.KmerResult == FullMmerCountdict {
		var tmp []float64
		if exact {
			tmp = keyCounts
		} else {
			if idcounts == nil {
				return errors.New("unexpected: no count source for saving k-mer counts")
			}
			tmp = make([]float64, ss)
			for j, c := range idcounts {
				tmp[j] = float64(c)
			}
		}
		if err = writeF64File(KmerCountFile(dest), tmp); err != nil {
			return err
		}
		if len(res.KmerCounts) > 0 {
			row := res.KmerCounts[i*ss : (i+1)*ss]
			copy(row, tmp)
		}
	}
	return nil
}

// sketchSequence is the FULL_MMER_SEQUENCE path: the whole m-mer stream
// is kept in order, optionally homopolymer-compressed, and written
// verbatim.
func (r *runner) sketchSequence(tid, i int, path, dest string) error {
	opt := r.opt
	res := r.res
	hcm := opt.HomopolymerCompress

	if opt.hash128() {
		buf := make([]sketch.Uint128, 0, 1<<20)
		err := r.perFile(tid, path, nil, func(x sketch.Uint128) {
			if hcm && len(buf) > 0 && buf[len(buf)-1] == x {
				return
			}
			buf = append(buf, x)
		})
		if err != nil {
			return err
		}
		res.Cardinalities[i] = float64(len(buf))
		return writeU128File(dest, buf)
	}

	buf := make([]uint64, 0, 1<<20)
	err := r.perFile(tid, path, func(h uint64) {
		if hcm && len(buf) > 0 && buf[len(buf)-1] == h {
			return
		}
		buf = append(buf, h)
	}, nil)
	if err != nil {
		return err
	}
	res.Cardinalities[i] = float64(len(buf))
	return writeU64File(dest, buf)
}

// sketchRegister is the plain streaming path for one-permutation and
// full set sketches without counts.
func (r *runner) sketchRegister(tid, i int, path, dest string) error {
	opt := r.opt
	res := r.res
	ss := opt.SketchSize

	var regs []float64
	var ids []uint64
	var idcounts []uint32
	switch {
	case r.pool.opss != nil:
		ops := r.pool.opss[tid]
		err := r.perFile(tid, path,
			func(h uint64) { ops.Update(h) },
			func(x sketch.Uint128) { ops.Update128(x) })
		if err != nil {
			return err
		}
		res.Cardinalities[i] = ops.Card()
		regs, ids, idcounts = ops.Data(), ops.IDs(), ops.IDCounts()
	case r.pool.fss != nil:
		fss := r.pool.fss[tid]
		err := r.perFile(tid, path,
			func(h uint64) { fss.Update(h) },
			func(x sketch.Uint128) { fss.Update128(x) })
		if err != nil {
			return err
		}
		res.Cardinalities[i] = fss.Card()
		regs, ids, idcounts = fss.Data(), fss.IDs(), fss.IDCounts()
	default:
		return errors.New("unexpected: no register sketch allocated")
	}

	if err := writeF64File(dest, regs); err != nil {
		return err
	}
	if err := writeF64File(CardFile(dest), []float64{res.Cardinalities[i]}); err != nil {
		return err
	}
	if row := r.sigRow(i); row != nil {
		copy(row, regs)
	}

	if (opt.SaveKmers || opt.BuildMmerMatrix) && ids != nil {
		destKmer := KmerFile(dest)
		if len(res.KmerFiles) > 0 {
			res.KmerFiles[i] = destKmer
		}
		if err := writeU64File(destKmer, ids); err != nil {
			return err
		}
		if len(res.Kmers) > 0 {
			copy(res.Kmers[i*ss:(i+1)*ss], ids)
		}
	}
	if opt.SaveKmerCounts && idcounts != nil {
		tmp := make([]float64, ss)
		for j, c := range idcounts {
			tmp[j] = float64(c)
		}
		if err := writeF64File(KmerCountFile(dest), tmp); err != nil {
			return err
		}
		if len(res.KmerCounts) > 0 {
			copy(res.KmerCounts[i*ss:(i+1)*ss], tmp)
		}
	}
	return nil
}
