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

// Package mmer enumerates hashed m-mers from FASTA/Q files: exact 2-bit
// encoding for short DNA k-mers, rolling hashes for protein sequences and
// long k, minimizer selection for windows wider than k, and an optional
// filter set of m-mers to discard.
package mmer

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
)

// ForEachSubstr splits a path line on ASCII spaces and calls fn for each
// substream path. The emissions of all substreams belong to one row.
func ForEachSubstr(line string, fn func(sub string) error) error {
	for len(line) > 0 {
		i := strings.IndexByte(line, ' ')
		var sub string
		if i < 0 {
			sub, line = line, ""
		} else {
			sub, line = line[:i], line[i+1:]
		}
		if sub == "" {
			continue
		}
		if err := fn(sub); err != nil {
			return err
		}
	}
	return nil
}

// ForEachRecord streams the records of one FASTA/Q file.
func ForEachRecord(file string, fn func(name, seq []byte) error) error {
	reader, err := fastx.NewDefaultReader(file)
	if err != nil {
		return errors.Wrap(err, file)
	}
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, file)
		}
		if err = fn(record.Name, record.Seq.Seq); err != nil {
			return err
		}
	}
}

// seqNT4Table maps nucleotides to 2-bit codes; anything else maps to 4.
var seqNT4Table [256]uint8

// upperTable maps ASCII letters to upper case.
var upperTable [256]byte

func init() {
	for i := range seqNT4Table {
		seqNT4Table[i] = 4
		upperTable[i] = byte(i)
	}
	for i := byte('a'); i <= 'z'; i++ {
		upperTable[i] = i - 'a' + 'A'
	}
	for _, p := range [][2]byte{{'A', 0}, {'C', 1}, {'G', 2}, {'T', 3}, {'U', 3}} {
		seqNT4Table[p[0]] = p[1]
		seqNT4Table[p[0]-'A'+'a'] = p[1]
	}
}

// hash64 is the invertible 64-bit integer finalizer of Thomas Wang,
// applied to canonical k-mer codes before they enter any sketch.
func hash64(key uint64) uint64 {
	key = (^key) + (key << 21)
	key = key ^ (key >> 24)
	key = (key + (key << 3)) + (key << 8)
	key = key ^ (key >> 14)
	key = (key + (key << 2)) + (key << 4)
	key = key ^ (key >> 28)
	key = key + (key << 31)
	return key
}

// revComp64 returns the reverse complement of a 2-bit encoded k-mer.
func revComp64(code uint64, k int) uint64 {
	var rc uint64
	for i := 0; i < k; i++ {
		rc = rc<<2 | (3 - (code & 3))
		code >>= 2
	}
	return rc
}
