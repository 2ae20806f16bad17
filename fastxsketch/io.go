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
	"bufio"
	"encoding/binary"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/jessicabonnie/dashing2/sketch"
)

// All artifacts are raw little-endian arrays with no header.

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func writeBinaryFile(file string, data interface{}) error {
	fh, err := os.Create(file)
	if err != nil {
		return errors.Wrap(err, file)
	}
	w := bufio.NewWriter(fh)
	if err = binary.Write(w, binary.LittleEndian, data); err != nil {
		fh.Close()
		return errors.Wrap(err, file)
	}
	if err = w.Flush(); err != nil {
		fh.Close()
		return errors.Wrap(err, file)
	}
	return errors.Wrap(fh.Close(), file)
}

func writeU64File(file string, vals []uint64) error {
	return writeBinaryFile(file, vals)
}

// writeU128File writes 16-byte keys, low half first.
func writeU128File(file string, vals []sketch.Uint128) error {
	return writeBinaryFile(file, vals)
}

func writeF64File(file string, vals []float64) error {
	return writeBinaryFile(file, vals)
}

// readF64File fills dst from a register artifact; a short file is an
// error naming the file.
func readF64File(file string, dst []float64) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, file)
	}
	if len(data) < 8*len(dst) {
		return errors.Errorf("short read: %s: %d bytes, want %d", file, len(data), 8*len(dst))
	}
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[8*i:]))
	}
	return nil
}

// readF64Prefix fills as much of dst as the file provides, mirroring the
// truncating copy of a count vector into a fixed-width matrix row.
func readF64Prefix(file string, dst []float64) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, file)
	}
	n := len(data) / 8
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[8*i:]))
	}
	return nil
}

func readU64File(file string, dst []uint64) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, file)
	}
	if len(data) < 8*len(dst) {
		return errors.Errorf("short read: %s: %d bytes, want %d", file, len(data), 8*len(dst))
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint64(data[8*i:])
	}
	return nil
}

// readAllU64 loads a whole key artifact.
func readAllU64(file string) ([]uint64, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	out := make([]uint64, len(data)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(data[8*i:])
	}
	return out, nil
}

// readAllU128 loads a whole 128-bit key artifact, low half first.
func readAllU128(file string) ([]sketch.Uint128, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	out := make([]sketch.Uint128, len(data)/16)
	for i := range out {
		out[i] = sketch.Uint128{
			Lo: binary.LittleEndian.Uint64(data[16*i:]),
			Hi: binary.LittleEndian.Uint64(data[16*i+8:]),
		}
	}
	return out, nil
}
