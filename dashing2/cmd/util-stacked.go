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

package cmd

import (
	"encoding/binary"
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
	"gopkg.in/yaml.v2"

	"github.com/jessicabonnie/dashing2/fastxsketch"
)

// runInfoExt is the extension of the manifest written next to a stacked
// output.
const runInfoExt = ".yml"

// RunInfo describes one stacked sketch output for later inspection.
type RunInfo struct {
	Version    string `yaml:"version"`
	K          int    `yaml:"k"`
	Window     int    `yaml:"window"`
	SketchSize int    `yaml:"sketchsize"`
	Space      string `yaml:"space"`
	KmerResult string `yaml:"kmerResult"`
	Protein    bool   `yaml:"protein"`
	BySeq      bool   `yaml:"bySeq"`
	Rows       int    `yaml:"rows"`

	Files []string `yaml:"files"`
}

// ReadRunInfo loads the manifest of a stacked output.
func ReadRunInfo(file string) (*RunInfo, error) {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	info := &RunInfo{}
	if err = yaml.Unmarshal(data, info); err != nil {
		return nil, errors.Wrapf(err, "fail to unmarshal run info: %s", file)
	}
	return info, nil
}

func (i *RunInfo) writeTo(file string) error {
	data, err := yaml.Marshal(i)
	if err != nil {
		return errors.New("fail to marshal run info")
	}
	return ioutil.WriteFile(file, data, 0644)
}

func writeBinary(file string, data interface{}) error {
	outfh, gw, w, err := outStream(file, false, 0)
	if err != nil {
		return err
	}
	if err = binary.Write(outfh, binary.LittleEndian, data); err != nil {
		w.Close()
		return errors.Wrap(err, file)
	}
	if err = outfh.Flush(); err != nil {
		w.Close()
		return errors.Wrap(err, file)
	}
	if gw != nil {
		gw.Close()
	}
	return errors.Wrap(w.Close(), file)
}

// writeStacked writes the raw signatures matrix, the names file, the
// best-effort m-mer side-cars, and the run manifest.
func writeStacked(outFile string, res *fastxsketch.Result, opt *fastxsketch.Options) error {
	if len(res.Signatures) == 0 {
		return errors.New("can't write stacked sketches if signatures were not generated")
	}
	if err := writeBinary(outFile, res.Signatures); err != nil {
		return err
	}

	if len(res.Names) > 0 {
		w, err := xopen.Wopen(outFile + ".names.txt")
		if err != nil {
			return errors.Wrap(err, outFile+".names.txt")
		}
		for i, name := range res.Names {
			fmt.Fprintf(w, "%s", name)
			if len(res.Cardinalities) > i {
				fmt.Fprintf(w, "\t%0.12g", res.Cardinalities[i])
			}
			if len(res.KmerCountFiles) > i {
				fmt.Fprintf(w, "\t%s", res.KmerCountFiles[i])
			}
			fmt.Fprintln(w)
		}
		if err = w.Close(); err != nil {
			return errors.Wrap(err, outFile+".names.txt")
		}
	}

	// best-effort side-cars: failures are logged and swallowed
	if len(res.Kmers) > 0 {
		if err := writeBinary(outFile+".kmerhashes.u64", res.Kmers); err != nil {
			log.Warningf("failed to write k-mers, failing silently: %s", err)
		}
	}
	if len(res.KmerCounts) > 0 {
		if err := writeBinary(outFile+".kmercounts.f64", res.KmerCounts); err != nil {
			log.Warningf("failed to write k-mer counts, failing silently: %s", err)
		}
	}

	info := &RunInfo{
		Version:    VERSION,
		K:          opt.K,
		Window:     opt.W,
		SketchSize: opt.SketchSize,
		Space:      opt.Space.String(),
		KmerResult: opt.KmerResult.String(),
		Protein:    opt.ParseProtein,
		BySeq:      opt.ParseBySeq,
		Rows:       res.Rows(),
		Files:      res.DestinationFiles,
	}
	if err := info.writeTo(outFile + runInfoExt); err != nil {
		log.Warningf("failed to write run info: %s", err)
	}
	return nil
}
