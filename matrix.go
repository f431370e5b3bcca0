// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// CountMatrix is a sparse matrix of non-negative integer expression
// counts with rows = cells and columns = genes. Column order is
// meaningful: column j is described by row j of the GeneTable the
// matrix was loaded with. A CountMatrix is never modified after
// construction; every transformation returns a new matrix.
type CountMatrix struct {
	csr *sparse.CSR
}

func newCountMatrix(ncells, ngenes int, cellix, geneix []int, counts []float64) *CountMatrix {
	coo := sparse.NewCOO(ncells, ngenes, cellix, geneix, counts)
	return &CountMatrix{csr: coo.ToCSR()}
}

// Cells returns the number of rows.
func (m *CountMatrix) Cells() int {
	r, _ := m.csr.Dims()
	return r
}

// Genes returns the number of columns.
func (m *CountMatrix) Genes() int {
	_, c := m.csr.Dims()
	return c
}

// At returns the count for one cell/gene pair.
func (m *CountMatrix) At(cell, gene int) float64 {
	return m.csr.At(cell, gene)
}

// NNZ returns the number of stored nonzero counts.
func (m *CountMatrix) NNZ() int {
	return m.csr.NNZ()
}

// Dense returns a dense copy of the matrix.
func (m *CountMatrix) Dense() *mat.Dense {
	return mat.DenseCopyOf(m.csr)
}

// CellsExpressing returns, for each gene column, the number of cells
// with a nonzero count for that gene.
func (m *CountMatrix) CellsExpressing() []int {
	n := make([]int, m.Genes())
	m.csr.DoNonZero(func(i, j int, v float64) {
		if v != 0 {
			n[j]++
		}
	})
	return n
}

// SelectGenes returns a new matrix whose column k is a copy of column
// order[k] of m. The order slice may subset and reorder columns but
// must not repeat one. Counts are copied unchanged.
func (m *CountMatrix) SelectGenes(order []int) *CountMatrix {
	newcol := make(map[int]int, len(order))
	for k, j := range order {
		newcol[j] = k
	}
	var cellix, geneix []int
	var counts []float64
	m.csr.DoNonZero(func(i, j int, v float64) {
		if k, ok := newcol[j]; ok {
			cellix = append(cellix, i)
			geneix = append(geneix, k)
			counts = append(counts, v)
		}
	})
	return newCountMatrix(m.Cells(), len(order), cellix, geneix, counts)
}
