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
	"encoding/binary"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"

	"github.com/jessicabonnie/dashing2/sketch"
)

// tryCache reloads row i from existing artifacts. A hit requires caching
// to be enabled and the destination to exist, plus the k-mer file when
// k-mers are saved, the count file when counts are saved or a count
// dictionary is built, and the cardinality file for register sketches;
// contents are not revalidated, only presence. A reloaded row reports the same
// cardinality the sketching run did: register sketches reload the
// persisted cardinality artifact, exact m-mer kinds re-derive it from
// their own artifacts the way the live run computed it.
func (r *runner) tryCache(i int, path, dest string) (bool, error) {
	opt := r.opt
	if !opt.CacheSketches || !isFile(dest) {
		return false, nil
	}
	destKmer := KmerFile(dest)
	destCounts := KmerCountFile(dest)
	if opt.SaveKmers && !isFile(destKmer) {
		return false, nil
	}
	if (opt.SaveKmerCounts || opt.KmerResult == FullMmerCountdict) && !isFile(destCounts) {
		return false, nil
	}
	if opt.KmerResult < FullMmerSet && !isFile(CardFile(dest)) {
		return false, nil
	}

	res := r.res
	ss := opt.SketchSize
	switch {
	case opt.KmerResult < FullMmerSet:
		// a register sketch of fixed width: reload registers and the
		// cardinality the live run persisted (ss/Σregisters matches
		// none of the live estimators: SetSketch counts or applies the
		// bottom-k estimator, OnePerm uses its bucket-minimum formula,
		// BagMinHash/ProbMinHash report Σ counter weights)
		if len(res.Signatures) > 0 {
			row := res.Signatures[i*ss : (i+1)*ss]
			if err := readF64File(dest, row); err != nil {
				return false, err
			}
		}
		var card [1]float64
		if err := readF64File(CardFile(dest), card[:]); err != nil {
			return false, err
		}
		res.Cardinalities[i] = card[0]
		if len(res.Kmers) > 0 && isFile(destKmer) {
			if err := readU64File(destKmer, res.Kmers[i*ss:(i+1)*ss]); err != nil {
				return false, err
			}
		}
		if len(res.KmerCounts) > 0 && isFile(destCounts) {
			if err := readF64File(destCounts, res.KmerCounts[i*ss:(i+1)*ss]); err != nil {
				return false, err
			}
		}
	case opt.KmerResult == FullMmerCountdict:
		if err := r.reloadExactRows(i, dest, destCounts); err != nil {
			return false, err
		}
		card, err := sumCountFile(destCounts)
		if err != nil {
			return false, err
		}
		res.Cardinalities[i] = card
	case opt.KmerResult == FullMmerSet:
		if err := r.reloadExactRows(i, dest, destCounts); err != nil {
			return false, err
		}
		st, err := os.Stat(dest)
		if err != nil {
			return false, errors.Wrap(err, dest)
		}
		res.Cardinalities[i] = float64(st.Size()) / float64(opt.keyWidth())
	case opt.KmerResult == FullMmerSequence:
		st, err := os.Stat(dest)
		if err != nil {
			return false, errors.Wrap(err, dest)
		}
		res.Cardinalities[i] = float64(st.Size()) / float64(opt.keyWidth())
	}
	if opt.Verbose {
		log.Infof("cache-sketches enabled, using saved data at %s", dest)
	}
	return true, nil
}

// reloadExactRows rebuilds the matrix rows an exact m-mer run would
// have filled: the bottom-k of the stored keys in the signature row and
// the leading counts in the count row. The stored keys already passed
// the count threshold, so no re-filtering is needed.
func (r *runner) reloadExactRows(i int, dest, destCounts string) error {
	opt := r.opt
	res := r.res
	ss := opt.SketchSize
	if row := r.sigRow(i); row != nil {
		bk := make([]uint64, ss)
		if opt.hash128() {
			keys, err := readAllU128(dest)
			if err != nil {
				return err
			}
			sketch.BottomK128(keys, nil, 0, bk)
		} else {
			keys, err := readAllU64(dest)
			if err != nil {
				return err
			}
			sketch.BottomK(keys, nil, 0, bk)
		}
		for j, kv := range bk {
			row[j] = math.Float64frombits(kv)
		}
	}
	if len(res.KmerCounts) > 0 && isFile(destCounts) {
		if err := readF64Prefix(destCounts, res.KmerCounts[i*ss:(i+1)*ss]); err != nil {
			return err
		}
	}
	return nil
}

// sumCountFile memory-maps a count dictionary artifact and sums its
// double-precision values. A size that is not a multiple of 8 is a
// terminal error.
func sumCountFile(file string) (float64, error) {
	fh, err := os.Open(file)
	if err != nil {
		return 0, errors.Wrap(err, file)
	}
	defer fh.Close()
	m, err := mmap.Map(fh, mmap.RDONLY, 0)
	if err != nil {
		return 0, errors.Wrap(err, file)
	}
	defer m.Unmap()
	if len(m)%8 != 0 {
		return 0, errors.Errorf("wrong size file %s: %d bytes is not a multiple of 8", file, len(m))
	}
	var sum float64
	for i := 0; i < len(m); i += 8 {
		sum += math.Float64frombits(binary.LittleEndian.Uint64(m[i:]))
	}
	return sum, nil
}
