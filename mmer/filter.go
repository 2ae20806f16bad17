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

package mmer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
	"github.com/shenwei356/kmers"

	"github.com/jessicabonnie/dashing2/sketch"
)

// FilterSet is a set of m-mer hashes to discard before sketching. A file
// lists one entry per line: a decimal or 0x-prefixed hash value (more
// than 16 hex digits makes a 128-bit entry), or a literal DNA k-mer
// which is canonicalized and hashed like the exact encoder's output.
type FilterSet struct {
	m64  map[uint64]struct{}
	m128 map[sketch.Uint128]struct{}
}

// Contains reports whether a 64-bit m-mer is in the set.
func (f *FilterSet) Contains(h uint64) bool {
	_, ok := f.m64[h]
	return ok
}

// Contains128 reports whether a 128-bit m-mer is in the set.
func (f *FilterSet) Contains128(x sketch.Uint128) bool {
	_, ok := f.m128[x]
	return ok
}

// Len returns the number of entries.
func (f *FilterSet) Len() int { return len(f.m64) + len(f.m128) }

// Add inserts a 64-bit entry.
func (f *FilterSet) Add(h uint64) { f.m64[h] = struct{}{} }

// Add128 inserts a 128-bit entry.
func (f *FilterSet) Add128(x sketch.Uint128) { f.m128[x] = struct{}{} }

// NewFilterSet returns an empty filter set.
func NewFilterSet() *FilterSet {
	return &FilterSet{
		m64:  make(map[uint64]struct{}, 1<<10),
		m128: make(map[sketch.Uint128]struct{}),
	}
}

// LoadFilterSet reads a filter set from a text file. k is the run's
// k-mer length, needed to accept literal k-mers.
func LoadFilterSet(file string, k int) (*FilterSet, error) {
	fs := NewFilterSet()
	fn := func(line string) (interface{}, bool, error) {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			return nil, false, nil
		}
		return line, true, nil
	}
	reader, err := breader.NewBufferedReader(file, 2, 100, fn)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, errors.Wrap(chunk.Err, file)
		}
		for _, data := range chunk.Data {
			token := data.(string)
			if err := fs.addToken(token, k); err != nil {
				return nil, errors.Wrap(err, file)
			}
		}
	}
	return fs, nil
}

func (f *FilterSet) addToken(token string, k int) error {
	if strings.HasPrefix(token, "0x") || strings.HasPrefix(token, "0X") {
		hex := token[2:]
		if len(hex) > 16 {
			if len(hex) > 32 {
				return fmt.Errorf("hash too wide: %s", token)
			}
			hi, err := strconv.ParseUint(hex[:len(hex)-16], 16, 64)
			if err != nil {
				return fmt.Errorf("invalid hash: %s", token)
			}
			lo, err := strconv.ParseUint(hex[len(hex)-16:], 16, 64)
			if err != nil {
				return fmt.Errorf("invalid hash: %s", token)
			}
			f.Add128(sketch.Uint128{Lo: lo, Hi: hi})
			return nil
		}
		v, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return fmt.Errorf("invalid hash: %s", token)
		}
		f.Add(v)
		return nil
	}
	if v, err := strconv.ParseUint(token, 10, 64); err == nil {
		f.Add(v)
		return nil
	}
	// a literal k-mer, hashed the way the exact encoder emits it
	if len(token) != k || k >= 32 {
		return fmt.Errorf("not a hash value or %d-mer: %s", k, token)
	}
	code, err := kmers.Encode([]byte(token))
	if err != nil {
		return fmt.Errorf("not a hash value or %d-mer: %s", k, token)
	}
	if rc := revComp64(code, k); rc < code {
		code = rc
	}
	f.Add(hash64(code))
	return nil
}
