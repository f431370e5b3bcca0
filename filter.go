// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"

	log "github.com/sirupsen/logrus"
)

// FilterOptions configures LoadAndFilter.
type FilterOptions struct {
	// NGeneCols is the number of leading identifier columns in the
	// count file (0 means the conventional 2).
	NGeneCols int
	// MinCells drops genes below a prevalence threshold.
	MinCells CellThreshold
	// Whitelist, when set, is the path of a gene table file; only
	// genes on it are kept. Blacklist is the inverse.
	Whitelist string
	Blacklist string
	// Reference, when set, is the path of a gene table file the
	// loaded matrix is reconciled against before masking.
	Reference string
	Match     MatchOptions
}

// LoadAndFilter loads the coordinate count file at path, optionally
// reconciles it against a reference gene order, and narrows the gene
// axis by the AND of the prevalence, whitelist, and blacklist masks.
// The cell axis is left alone.
func LoadAndFilter(path string, opts FilterOptions) (*CountMatrix, *GeneTable, error) {
	ngenecols := opts.NGeneCols
	if ngenecols == 0 {
		ngenecols = 2
	}
	var m *CountMatrix
	var genes *GeneTable
	var err error
	if opts.Reference != "" {
		m, genes, err = LoadLike(path, opts.Reference, ngenecols, opts.Match)
	} else {
		m, genes, err = LoadTxt(path, ngenecols)
	}
	if err != nil {
		return nil, nil, err
	}

	masks := [][]bool{MinCellsMask(m, opts.MinCells)}
	if opts.Whitelist != "" || opts.Blacklist != "" {
		ids, err := opts.Match.column(genes)
		if err != nil {
			return nil, nil, err
		}
		for _, list := range []struct {
			path      string
			whitelist bool
		}{
			{opts.Whitelist, true},
			{opts.Blacklist, false},
		} {
			if list.path == "" {
				continue
			}
			t, err := LoadGeneTable(list.path)
			if err != nil {
				return nil, nil, err
			}
			listIDs, err := opts.Match.column(t)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", list.path, err)
			}
			masks = append(masks, GenelistMask(ids, listIDs, list.whitelist, opts.Match))
		}
	}
	keep := maskIndexes(andMask(masks...))
	return m.SelectGenes(keep), genes.Select(keep), nil
}

type filtercmd struct {
	opts FilterOptions
}

func (cmd *filtercmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	pprof := flags.String("pprof", "", "serve Go profile data at http://`[addr]:port`")
	inputFilename := flags.String("i", "", "input count matrix `file`")
	outputDir := flags.String("output-dir", ".", "output `directory`")
	loglevel := flags.String("loglevel", "info", "logging threshold (trace, debug, info, warn, error, fatal, or panic)")
	flags.IntVar(&cmd.opts.NGeneCols, "gene-cols", 2, "number of leading gene identifier columns")
	minCells := flags.Float64("min-cells", 0, "drop genes expressed in fewer than `N` cells (or fraction of cells, if <1)")
	flags.StringVar(&cmd.opts.Whitelist, "whitelist", "", "gene table `file`; keep only genes on it")
	flags.StringVar(&cmd.opts.Blacklist, "blacklist", "", "gene table `file`; drop genes on it")
	flags.StringVar(&cmd.opts.Reference, "like", "", "gene table `file` to reconcile gene order against before filtering")
	byName := flags.Bool("by-gene-name", false, "match gene symbols instead of accessions")
	flags.BoolVar(&cmd.opts.Match.NoSplitOnDot, "no-split-on-dot", false, "compare accessions verbatim, keeping version suffixes")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	} else if *inputFilename == "" {
		err = fmt.Errorf("cannot filter without -i argument")
		return 2
	} else if flags.NArg() > 0 {
		err = fmt.Errorf("errant command line arguments after parsed flags: %v", flags.Args())
		return 2
	}
	cmd.opts.MinCells = ParseCellThreshold(*minCells)
	if *byName {
		cmd.opts.Match.Style = MatchName
	}

	if *pprof != "" {
		go func() {
			log.Println(http.ListenAndServe(*pprof, nil))
		}()
	}

	lvl, err := log.ParseLevel(*loglevel)
	if err != nil {
		return 2
	}
	log.SetLevel(lvl)

	log.Print("reading")
	m, genes, err := LoadAndFilter(*inputFilename, cmd.opts)
	if err != nil {
		return 1
	}
	log.Printf("filtering done, %d cells × %d genes", m.Cells(), m.Genes())

	log.Print("writing")
	err = writeNumpy(*outputDir+"/matrix.npy", m)
	if err != nil {
		return 1
	}
	err = genes.Save(*outputDir + "/genes.txt")
	if err != nil {
		return 1
	}
	log.Print("writing done")
	fmt.Fprintln(stdout, *outputDir+"/matrix.npy")
	return 0
}
