// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

type statscmd struct {
	ngenecols int
}

func (cmd *statscmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
	outputFilename := flags.String("o", "-", "output `file`")
	flags.IntVar(&cmd.ngenecols, "gene-cols", 2, "number of leading gene identifier columns")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	} else if *inputFilename == "" {
		err = fmt.Errorf("cannot compute stats without -i argument")
		return 2
	}

	if *pprof != "" {
		go func() {
			log.Println(http.ListenAndServe(*pprof, nil))
		}()
	}

	var output io.WriteCloser
	if *outputFilename == "-" {
		output = nopCloser{stdout}
	} else {
		output, err = os.OpenFile(*outputFilename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0777)
		if err != nil {
			return 1
		}
		defer output.Close()
	}

	bufw := bufio.NewWriter(output)
	err = cmd.doStats(*inputFilename, bufw)
	if err != nil {
		return 1
	}
	err = bufw.Flush()
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}

func (cmd *statscmd) doStats(path string, output io.Writer) error {
	m, genes, err := LoadTxt(path, cmd.ngenecols)
	if err != nil {
		return err
	}

	var ret struct {
		Cells              int
		Genes              int
		Nonzeros           int
		MeanCellsPerGene   float64
		PrevalenceQuartile [3]float64
		GenesNotExpressed  int
		GeneTableDigest    string
	}
	ret.Cells = m.Cells()
	ret.Genes = m.Genes()
	ret.Nonzeros = m.NNZ()

	prevalence := make([]float64, 0, m.Genes())
	for _, n := range m.CellsExpressing() {
		if n == 0 {
			ret.GenesNotExpressed++
		}
		prevalence = append(prevalence, float64(n))
	}
	ret.MeanCellsPerGene = stat.Mean(prevalence, nil)
	sort.Float64s(prevalence)
	for i, q := range []float64{0.25, 0.5, 0.75} {
		ret.PrevalenceQuartile[i] = stat.Quantile(q, stat.Empirical, prevalence, nil)
	}
	digest := genes.Digest()
	ret.GeneTableDigest = fmt.Sprintf("%x", digest[:])

	return json.NewEncoder(output).Encode(ret)
}
