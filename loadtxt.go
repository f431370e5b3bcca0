// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
)

// Count files with many cells have one line per gene, so lines can run
// to megabytes. 1 GiB leaves headroom without risking silent
// truncation by bufio.Scanner.
const maxLineBytes = 1 << 30

type gzFile struct {
	*pgzip.Reader
	f *os.File
}

func (gz gzFile) Close() error {
	err := gz.Reader.Close()
	if err2 := gz.f.Close(); err == nil {
		err = err2
	}
	return err
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	rdr, err := pgzip.NewReader(bufio.NewReaderSize(f, 4*1024*1024))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: gzip: %w", path, err)
	}
	return gzFile{rdr, f}, nil
}

// LoadTxt reads a whitespace-delimited coordinate count file: one row
// per gene, the leading ngenecols fields gene identifiers, the
// remaining fields integer counts, one per cell. It returns the
// (cells × genes) count matrix and the gene table of the identifier
// fields. Transparently decompresses *.gz.
func LoadTxt(path string, ngenecols int) (*CountMatrix, *GeneTable, error) {
	if ngenecols < 1 {
		return nil, nil, fmt.Errorf("ngenecols must be ≥ 1, got %d", ngenecols)
	}
	f, err := openFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var generows [][]string
	var cellix, geneix []int
	var counts []float64
	ncells := -1
	scanner := bufio.NewScanner(f)
	scanner.Buffer(nil, maxLineBytes)
	for lineno := 1; scanner.Scan(); lineno++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) <= ngenecols {
			return nil, nil, fmt.Errorf("%s line %d: %d fields, need gene identifiers plus at least one count", path, lineno, len(fields))
		}
		if ncells < 0 {
			ncells = len(fields) - ngenecols
		} else if len(fields)-ngenecols != ncells {
			return nil, nil, fmt.Errorf("%s line %d: %d counts, expected %d", path, lineno, len(fields)-ngenecols, ncells)
		}
		gene := len(generows)
		generows = append(generows, fields[:ngenecols])
		for cell, field := range fields[ngenecols:] {
			count, err := strconv.Atoi(field)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: bad count %q: %w", path, lineno, field, err)
			}
			if count == 0 {
				continue
			}
			cellix = append(cellix, cell)
			geneix = append(geneix, gene)
			counts = append(counts, float64(count))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if ncells < 0 {
		return nil, nil, fmt.Errorf("%s: no data rows", path)
	}
	m := newCountMatrix(ncells, len(generows), cellix, geneix, counts)
	return m, &GeneTable{rows: generows}, nil
}
