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
	"fmt"
	"io"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	prettytable "github.com/tatsushid/go-prettytable"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print information of stacked sketch outputs",
	Long: `Print information of stacked sketch outputs

Reads the <out>.yml manifest written by "dashing2 sketch -o <out>".

`,
	Run: func(cmd *cobra.Command, args []string) {
		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		if len(files) == 1 && isStdin(files[0]) {
			checkError(fmt.Errorf("stacked output files needed"))
		}

		columns := []prettytable.Column{
			{Header: "file"},
			{Header: "k", AlignRight: true},
			{Header: "window", AlignRight: true},
			{Header: "sketchsize", AlignRight: true},
			{Header: "space"},
			{Header: "result"},
			{Header: "rows", AlignRight: true},
			{Header: "size", AlignRight: true},
		}
		tbl, err := prettytable.NewTable(columns...)
		checkError(err)
		tbl.Separator = "  "

		for _, file := range files {
			info, err := ReadRunInfo(file + runInfoExt)
			checkError(err)

			var size string
			if st, err := os.Stat(file); err == nil {
				size = humanize.Bytes(uint64(st.Size()))
			} else {
				size = "missing"
			}

			if rows, err := countNamesRows(file + ".names.txt"); err == nil && rows != info.Rows {
				log.Warningf("%s: %d rows in names file, %d in manifest", file, rows, info.Rows)
			}

			tbl.AddRow(
				file,
				info.K,
				info.Window,
				info.SketchSize,
				info.Space,
				info.KmerResult,
				humanize.Comma(int64(info.Rows)),
				size,
			)
		}
		os.Stdout.WriteString(tbl.String())
	},
}

// countNamesRows counts the rows of a names file, transparently
// decompressing if needed.
func countNamesRows(file string) (int, error) {
	infh, r, _, err := inStream(file)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n := 0
	for {
		_, err := infh.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, err
		}
		n++
	}
}

func init() {
	RootCmd.AddCommand(infoCmd)
}
