// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// GeneTable is an ordered table of gene identifiers. Row i describes
// column i of the matrix the table was loaded with. The first column
// is the primary identifier (accession); further columns (gene symbol,
// annotations) are optional. Tables are not modified after
// construction; Select returns a new table.
type GeneTable struct {
	rows [][]string
}

// Len returns the number of genes in the table.
func (t *GeneTable) Len() int {
	return len(t.rows)
}

// Columns returns the number of identifier fields per gene.
func (t *GeneTable) Columns() int {
	if len(t.rows) == 0 {
		return 0
	}
	return len(t.rows[0])
}

// Row returns the identifier fields of gene i.
func (t *GeneTable) Row(i int) []string {
	return t.rows[i]
}

// Column returns one identifier column across all genes.
func (t *GeneTable) Column(col int) []string {
	ids := make([]string, len(t.rows))
	for i, row := range t.rows {
		ids[i] = row[col]
	}
	return ids
}

// Select returns a new table whose row k is a copy of row ix[k].
func (t *GeneTable) Select(ix []int) *GeneTable {
	rows := make([][]string, len(ix))
	for k, i := range ix {
		rows[k] = append([]string(nil), t.rows[i]...)
	}
	return &GeneTable{rows: rows}
}

// Digest returns a blake2b checksum of the primary identifier column,
// in order, so two tables covering the same gene space in the same
// order can be compared without shipping the tables around.
func (t *GeneTable) Digest() [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(strings.Join(t.Column(0), "\n")))
}

// LoadGeneTable reads a whitespace-delimited gene table file: no
// header, one gene per row, first field the primary identifier.
// Transparently decompresses *.gz.
func LoadGeneTable(path string) (*GeneTable, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows [][]string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(nil, maxLineBytes)
	for lineno := 1; scanner.Scan(); lineno++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(rows) > 0 && len(fields) != len(rows[0]) {
			return nil, fmt.Errorf("%s line %d: %d fields, expected %d", path, lineno, len(fields), len(rows[0]))
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &GeneTable{rows: rows}, nil
}

// Save writes the table as tab-delimited text with no header.
func (t *GeneTable) Save(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0777)
	if err != nil {
		return err
	}
	defer f.Close()
	bufw := bufio.NewWriter(f)
	for _, row := range t.rows {
		_, err = fmt.Fprintln(bufw, strings.Join(row, "\t"))
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	err = bufw.Flush()
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
