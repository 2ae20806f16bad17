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
	"path/filepath"
	"strconv"
	"strings"
)

// countTypeTag names the multiplicity type carried by counted spaces.
const countTypeTag = "u32"

// suffix is the final destination name component, determined by the
// similarity space first and the k-mer result kind within the set space.
func (o *Options) suffix() string {
	switch o.Space {
	case SpaceMultiset:
		return ".bmh"
	case SpacePSet:
		return ".pmh"
	case SpaceEditDistance:
		return ".omh"
	}
	switch o.KmerResult {
	case OnePerm:
		return ".opss"
	case FullSetSketch:
		return ".ss"
	case FullMmerSet:
		return ".kmerset"
	case FullMmerCountdict:
		return ".kmercountdict"
	case FullMmerSequence:
		return ".mmerseq"
	}
	return ".unknown_sketch"
}

func (o *Options) rollingTag() string {
	if o.ParseProtein {
		return "Protein"
	}
	return "DNA"
}

// Destination derives the cache artifact name of one path line. It is a
// pure function of (path, options): distinct configurations yield
// distinct names.
func Destination(path string, o *Options) string {
	dest := path
	if i := strings.IndexByte(dest, ' '); i >= 0 {
		dest = dest[:i]
	}
	if o.TrimFolderPaths {
		dest = filepath.Base(dest)
	}
	if o.OutPrefix != "" {
		dest = o.OutPrefix + "/" + dest
	}
	dest += "." + strconv.Itoa(o.K)
	if o.W > o.K {
		dest += "." + strconv.Itoa(o.W)
	}
	if o.CountThreshold > 0 {
		dest += "." + strconv.FormatFloat(o.CountThreshold, 'g', -1, 64)
	}
	if o.Space != SpaceSet && o.Space != SpaceEditDistance {
		dest += "." + countTypeTag
	}
	dest += "." + o.Space.String()
	dest += "." + o.rollingTag()
	dest += o.suffix()
	return dest
}

// destPrefix strips the final extension component of a destination.
func destPrefix(dest string) string {
	if i := strings.LastIndexByte(dest, '.'); i >= 0 {
		return dest[:i]
	}
	return dest
}

// DefaultStackedName derives the stacked output name when a single path
// line is sketched and no explicit output was requested.
func DefaultStackedName(path string, o *Options) string {
	out := trimAtSpace(path)
	if o.TrimFolderPaths {
		out = filepath.Base(out)
		if o.OutPrefix != "" {
			out = o.OutPrefix + "/" + out
		}
	}
	return out + o.suffix()
}

// KmerFile is the m-mer id artifact belonging to a destination.
func KmerFile(dest string) string { return destPrefix(dest) + ".kmer.u64" }

// KmerCountFile is the m-mer count artifact belonging to a destination.
func KmerCountFile(dest string) string { return destPrefix(dest) + ".kmercounts.f64" }

// CardFile is the cardinality artifact belonging to a destination.
// Register sketches persist their live cardinality here, so that a
// cache hit reports exactly the value the sketching run did.
func CardFile(dest string) string { return destPrefix(dest) + ".card.f64" }
