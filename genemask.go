// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

// CellThreshold is a minimum-prevalence threshold, tagged as either an
// absolute number of cells or a fraction of the total cell count.
type CellThreshold struct {
	value    float64
	fraction bool
}

// CellCount returns a threshold of n cells.
func CellCount(n float64) CellThreshold {
	return CellThreshold{value: n}
}

// CellFraction returns a threshold of f × the matrix's cell count.
func CellFraction(f float64) CellThreshold {
	return CellThreshold{value: f, fraction: true}
}

// ParseCellThreshold keeps the conventional command-line duality:
// values below 1 are read as fractions of the cell count, values of 1
// or more as absolute counts.
func ParseCellThreshold(v float64) CellThreshold {
	if v < 1 {
		return CellFraction(v)
	}
	return CellCount(v)
}

func (t CellThreshold) cells(ncells int) float64 {
	if t.fraction {
		return t.value * float64(ncells)
	}
	return t.value
}

// MinCellsMask returns a gene mask selecting genes with a nonzero
// count in at least the threshold number of cells. The integer
// prevalence is compared against the unrounded threshold, so a
// fraction just under 1 excludes any gene short of near-total
// prevalence, and a threshold of 0 keeps every gene.
func MinCellsMask(m *CountMatrix, min CellThreshold) []bool {
	want := min.cells(m.Cells())
	mask := make([]bool, m.Genes())
	for j, n := range m.CellsExpressing() {
		mask[j] = float64(n) >= want
	}
	return mask
}

// GenelistMask returns a gene mask from membership of ids in list:
// with whitelist true, genes on the list are kept; with whitelist
// false the list is a blacklist and genes on it are dropped.
func GenelistMask(ids, list []string, whitelist bool, opts MatchOptions) []bool {
	mask := MatchMask(ids, list, opts)
	if !whitelist {
		for i := range mask {
			mask[i] = !mask[i]
		}
	}
	return mask
}

func andMask(masks ...[]bool) []bool {
	out := append([]bool(nil), masks[0]...)
	for _, mask := range masks[1:] {
		for i, keep := range mask {
			out[i] = out[i] && keep
		}
	}
	return out
}

func maskIndexes(mask []bool) []int {
	var ix []int
	for i, keep := range mask {
		if keep {
			ix = append(ix, i)
		}
	}
	return ix
}
