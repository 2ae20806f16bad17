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
	"os"
	"regexp"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/shenwei356/bio/seq"
	"github.com/spf13/cobra"

	"github.com/jessicabonnie/dashing2/fastxsketch"
	"github.com/jessicabonnie/dashing2/mmer"
)

var sketchCmd = &cobra.Command{
	Use:   "sketch",
	Short: "Sketch FASTA/Q files into fixed-size signatures",
	Long: `Sketch FASTA/Q files into fixed-size signatures

Similarity spaces (--space):
  1. set           plain set similarity (default)
  2. multiset      weighted similarity via BagMinHash
  3. pset          probability-set similarity via ProbMinHash
  4. edit-distance order min-hash, requires --by-seq

Set-space results (--result):
  1. oneperm        one-permutation set sketch (default)
  2. setsketch      full set sketch
  3. mmer-set       exact m-mer set
  4. mmer-countdict exact m-mer count dictionary
  5. mmer-sequence  the raw m-mer stream

Each input line may contain several space-separated files which are
sketched as one collection. Per input a signature artifact is written
next to the data (or under --prefix); re-runs with --cache reuse
compatible artifacts instead of re-sketching.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile)
		}
		timeStart := time.Now()
		defer func() {
			if opt.Verbose || opt.Log2File {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		// ---------------------------------------------------------------
		// basic flags

		k := getFlagPositiveInt(cmd, "kmer-len")
		window := getFlagNonNegativeInt(cmd, "window")
		sketchSize := getFlagPositiveInt(cmd, "sketch-size")

		var space fastxsketch.Space
		switch strings.ToLower(getFlagString(cmd, "space")) {
		case "set":
			space = fastxsketch.SpaceSet
		case "multiset":
			space = fastxsketch.SpaceMultiset
		case "pset":
			space = fastxsketch.SpacePSet
		case "edit-distance", "editdistance":
			space = fastxsketch.SpaceEditDistance
		default:
			checkError(fmt.Errorf("invalid value for --space, available values: set, multiset, pset, edit-distance"))
		}

		var result fastxsketch.KmerResult
		switch strings.ToLower(getFlagString(cmd, "result")) {
		case "oneperm":
			result = fastxsketch.OnePerm
		case "setsketch":
			result = fastxsketch.FullSetSketch
		case "mmer-set":
			result = fastxsketch.FullMmerSet
		case "mmer-countdict":
			result = fastxsketch.FullMmerCountdict
		case "mmer-sequence":
			result = fastxsketch.FullMmerSequence
		default:
			checkError(fmt.Errorf("invalid value for --result, available values: oneperm, setsketch, mmer-set, mmer-countdict, mmer-sequence"))
		}

		outFile := getFlagString(cmd, "out")
		prefix := expandHome(getFlagString(cmd, "prefix"))
		if prefix != "" {
			makeOutDir(prefix, getFlagBool(cmd, "force"))
		}

		sopt := &fastxsketch.Options{
			K:                   k,
			W:                   window,
			SketchSize:          sketchSize,
			Space:               space,
			KmerResult:          result,
			CountThreshold:      getFlagNonNegativeFloat64(cmd, "count-threshold"),
			SaveKmers:           getFlagBool(cmd, "save-kmers"),
			SaveKmerCounts:      getFlagBool(cmd, "save-kmercounts"),
			BuildSigMatrix:      getFlagBool(cmd, "sig-matrix"),
			BuildMmerMatrix:     getFlagBool(cmd, "mmer-matrix"),
			BuildCountMatrix:    getFlagBool(cmd, "count-matrix"),
			CacheSketches:       getFlagBool(cmd, "cache"),
			Use128:              getFlagBool(cmd, "use128"),
			ParseBySeq:          getFlagBool(cmd, "by-seq"),
			ParseProtein:        getFlagBool(cmd, "protein"),
			HomopolymerCompress: getFlagBool(cmd, "compress-homopolymers"),
			TrimFolderPaths:     getFlagBool(cmd, "trim-folder-paths"),
			OutPrefix:           prefix,
			CSSize:              getFlagNonNegativeInt(cmd, "cssize"),
			Threads:             opt.NumCPUs,
			Verbose:             opt.Verbose || opt.Log2File,
		}

		if fsFile := getFlagString(cmd, "filter-set"); fsFile != "" {
			fs, err := mmer.LoadFilterSet(expandHome(fsFile), k)
			checkError(err)
			sopt.Filter = fs
			if sopt.Verbose {
				log.Infof("%d m-mers loaded from filter set %s", fs.Len(), fsFile)
			}
		}

		// ---------------------------------------------------------------
		// input files

		if sopt.Verbose {
			log.Info("checking input files ...")
		}
		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		if inDir := getFlagString(cmd, "in-dir"); inDir != "" {
			pattern, err := regexp.Compile(getFlagString(cmd, "file-regexp"))
			checkError(err)
			_files, err := getFileListFromDir(expandHome(inDir), pattern, opt.NumCPUs)
			checkError(err)
			if len(files) == 1 && isStdin(files[0]) {
				files = _files
			} else {
				files = append(files, _files...)
			}
		}
		if len(files) == 1 && isStdin(files[0]) {
			checkError(fmt.Errorf("stdin not supported, please give FASTA/Q files"))
		}
		if sopt.Verbose {
			log.Infof("%d input file(s) given", len(files))
			var nBytes uint64
			for _, file := range files {
				mmer.ForEachSubstr(file, func(sub string) error {
					if st, err := os.Stat(sub); err == nil {
						nBytes += uint64(st.Size())
					}
					return nil
				})
			}
			log.Infof("total input size: %s", humanize.Bytes(nBytes))
		}

		// ---------------------------------------------------------------
		// log

		if sopt.Verbose {
			log.Infof("-------------------- [main parameters] --------------------")
			log.Infof("k: %d", k)
			if window > k {
				log.Infof("minimizer window: %d", window)
			}
			log.Infof("sketch size: %d", sketchSize)
			log.Infof("space: %s", space)
			if space == fastxsketch.SpaceSet {
				log.Infof("k-mer result: %s", result)
			}
			if sopt.CountThreshold > 0 {
				log.Infof("count threshold: %g", sopt.CountThreshold)
			}
			log.Infof("-------------------- [main parameters] --------------------")
		}

		// ---------------------------------------------------------------
		// sketch

		res, err := fastxsketch.Sketch(sopt, files)
		checkError(err)
		if sopt.Verbose {
			log.Infof("sketched: %s", res)
		}

		// ---------------------------------------------------------------
		// stacked output

		if outFile == "" && len(files) == 1 {
			outFile = fastxsketch.DefaultStackedName(files[0], sopt)
		}
		if outFile != "" {
			checkError(writeStacked(outFile, res, sopt))
			if sopt.Verbose {
				log.Infof("stacked sketches saved to %s", outFile)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(sketchCmd)

	sketchCmd.Flags().StringP("out", "o", "", `stacked output file, with <out>.names.txt and optional side-cars`)
	sketchCmd.Flags().StringP("prefix", "p", "", `directory to place per-file sketch artifacts in (with --trim-folder-paths)`)
	sketchCmd.Flags().BoolP("force", "", false, `overwrite output directory`)
	sketchCmd.Flags().StringP("in-dir", "I", "", `directory of input files`)
	sketchCmd.Flags().StringP("file-regexp", "", `\.(f[aq](st[aq])?|fn[aq])(.gz)?$`, `regular expression for matching sequence files in -I/--in-dir`)

	sketchCmd.Flags().IntP("kmer-len", "k", 31, "k-mer length")
	sketchCmd.Flags().IntP("window", "W", 0, `minimizer window size, 0 for no minimizer selection`)
	sketchCmd.Flags().IntP("sketch-size", "s", 1024, "number of registers per sketch")
	sketchCmd.Flags().StringP("space", "", "set", `similarity space: set, multiset, pset, edit-distance`)
	sketchCmd.Flags().StringP("result", "", "oneperm", `set-space result: oneperm, setsketch, mmer-set, mmer-countdict, mmer-sequence`)
	sketchCmd.Flags().Float64P("count-threshold", "c", 0, `minimum multiplicity for an m-mer to be admitted`)

	sketchCmd.Flags().BoolP("save-kmers", "", false, `write m-mer id artifacts (<dest without its last extension>.kmer.u64)`)
	sketchCmd.Flags().BoolP("save-kmercounts", "", false, `write m-mer count artifacts (<dest without its last extension>.kmercounts.f64)`)
	sketchCmd.Flags().BoolP("sig-matrix", "", true, `collect the signature matrix in memory`)
	sketchCmd.Flags().BoolP("mmer-matrix", "", false, `collect the m-mer id matrix in memory`)
	sketchCmd.Flags().BoolP("count-matrix", "", false, `collect the m-mer count matrix in memory`)

	sketchCmd.Flags().BoolP("cache", "", false, `reuse compatible sketch artifacts from previous runs`)
	sketchCmd.Flags().BoolP("use128", "", false, `use 128-bit m-mer hashes for rolling-hash encoders`)
	sketchCmd.Flags().BoolP("by-seq", "", false, `sketch every sequence separately instead of per file`)
	sketchCmd.Flags().BoolP("protein", "", false, `input is protein sequence`)
	sketchCmd.Flags().BoolP("compress-homopolymers", "", false, `suppress consecutive equal minimizers (mmer-sequence only)`)
	sketchCmd.Flags().BoolP("trim-folder-paths", "", false, `name artifacts by file basename instead of full path`)
	sketchCmd.Flags().IntP("cssize", "", 0, `counter capacity hint for counted modes`)
	sketchCmd.Flags().StringP("filter-set", "", "", `file of m-mers to discard (hash values or literal k-mers, one per line)`)
}
