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
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

// Sketch runs the whole pipeline: it validates the configuration,
// pre-allocates per-worker sketch state and the result matrices, and
// distributes the path lines over Threads workers with dynamic
// granularity 1. Workers write only to their own rows, so the matrices
// need no locking. The first error aborts the run.
func Sketch(opt *Options, paths []string) (*Result, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("can't sketch empty path set")
	}
	nt := opt.Threads
	if nt > len(paths) {
		nt = len(paths)
	}
	pool := newSketcherPool(opt, nt)
	r := &runner{opt: opt, pool: pool}

	if opt.ParseBySeq {
		return r.runBySeq(paths, nt)
	}

	n := len(paths)
	ss := opt.SketchSize
	res := &Result{Options: opt, SketchSize: ss}
	r.res = res
	res.Names = append([]string(nil), paths...)
	res.DestinationFiles = make([]string, n)
	res.Cardinalities = make([]float64, n)
	if opt.SaveKmers {
		res.KmerFiles = make([]string, n)
	}
	if opt.SaveKmerCounts || opt.KmerResult == FullMmerCountdict {
		res.KmerCountFiles = make([]string, n)
	}
	if opt.BuildSigMatrix {
		res.Signatures = make([]float64, ss*n)
	}
	if opt.BuildMmerMatrix || opt.SaveKmers {
		res.Kmers = make([]uint64, ss*n)
	}
	if opt.BuildCountMatrix {
		res.KmerCounts = make([]float64, ss*n)
	}
	for i, p := range paths {
		res.DestinationFiles[i] = Destination(p, opt)
	}

	err := r.forEachPath(paths, nt, func(tid, i int) error {
		return r.sketchFile(tid, i, paths[i])
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// runBySeq sketches every file into per-sequence rows and merges the
// per-file sub-results.
func (r *runner) runBySeq(paths []string, nt int) (*Result, error) {
	subs := make([]*Result, len(paths))
	err := r.forEachPath(paths, nt, func(tid, i int) error {
		sub, err := r.sketchFileBySeq(tid, paths[i])
		if err != nil {
			return err
		}
		subs[i] = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	merged := mergeResults(subs, paths, nt)
	merged.Options = r.opt
	return merged, nil
}

// forEachPath distributes path indices over nt workers, one index at a
// time, with per-file timing and an optional progress bar.
func (r *runner) forEachPath(paths []string, nt int, fn func(tid, i int) error) error {
	n := len(paths)

	var pbs *mpb.Progress
	var bar *mpb.Bar
	chDuration := make(chan time.Duration, nt)
	done := make(chan int)
	if r.opt.Verbose {
		pbs = mpb.New(mpb.WithWidth(79), mpb.WithOutput(os.Stderr))
		bar = pbs.AddBar(int64(n),
			mpb.BarStyle("[=>-]<+"),
			mpb.PrependDecorators(
				decor.Name("sketching file: ", decor.WC{W: len("sketching file: "), C: decor.DidentRight}),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.EwmaETA(decor.ET_STYLE_GO, 60),
			),
		)
	}
	go func() {
		for t := range chDuration {
			if bar != nil {
				bar.Increment()
				bar.DecoratorEwmaUpdate(t)
			}
		}
		done <- 1
	}()

	ch := make(chan int, n)
	for i := 0; i < n; i++ {
		ch <- i
	}
	close(ch)

	var wg sync.WaitGroup
	var aborted int32
	var once sync.Once
	var firstErr error
	for tid := 0; tid < nt; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			for i := range ch {
				if atomic.LoadInt32(&aborted) != 0 {
					continue
				}
				startTime := time.Now()
				if err := fn(tid, i); err != nil {
					once.Do(func() {
						firstErr = err
						atomic.StoreInt32(&aborted, 1)
					})
					continue
				}
				if r.opt.Verbose {
					log.Infof("sketched %s in %s", paths[i], time.Since(startTime))
				}
				chDuration <- time.Since(startTime)
			}
		}(tid)
	}
	wg.Wait()
	close(chDuration)
	<-done
	if pbs != nil {
		if firstErr != nil {
			bar.Abort(true)
		}
		pbs.Wait()
	}
	return firstErr
}
