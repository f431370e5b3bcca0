// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"gopkg.in/check.v1"
)

type genemaskSuite struct{}

var _ = check.Suite(&genemaskSuite{})

func (s *genemaskSuite) loadTestMatrix(c *check.C, ncells, ngenes int) *CountMatrix {
	path := c.MkDir() + "/matrix.txt"
	writeTestMatrix(c, path, ncells, ngenes)
	m, _, err := LoadTxt(path, 2)
	c.Assert(err, check.IsNil)
	return m
}

func countTrue(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}

func (s *genemaskSuite) TestMinCellsMask(c *check.C) {
	ncells, ngenes := 10, 30
	m := s.loadTestMatrix(c, ncells, ngenes)

	c.Check(countTrue(MinCellsMask(m, CellCount(0))), check.Equals, ngenes)
	c.Check(countTrue(MinCellsMask(m, CellCount(float64(ncells+1)))), check.Equals, 0)

	// a fraction just under 1 demands near-total prevalence, which no
	// gene in this matrix reaches
	c.Check(countTrue(MinCellsMask(m, CellFraction(0.9999999))), check.Equals, 0)

	// count and the equivalent fraction of the cell count agree
	c.Check(MinCellsMask(m, CellFraction(5.0/float64(ncells))), check.DeepEquals,
		MinCellsMask(m, CellCount(5)))

	want := make([]bool, ngenes)
	for j, n := range m.CellsExpressing() {
		want[j] = n >= 5
	}
	c.Check(MinCellsMask(m, CellCount(5)), check.DeepEquals, want)
}

func (s *genemaskSuite) TestParseCellThreshold(c *check.C) {
	ncells := 10
	m := s.loadTestMatrix(c, ncells, 30)

	// 1 parses as an absolute count, not as "all cells"
	c.Check(MinCellsMask(m, ParseCellThreshold(1)), check.DeepEquals,
		MinCellsMask(m, CellCount(1)))
	c.Check(MinCellsMask(m, ParseCellThreshold(0.3)), check.DeepEquals,
		MinCellsMask(m, CellCount(3)))
}

func (s *genemaskSuite) TestGenelistMaskComplement(c *check.C) {
	ids := make([]string, 20)
	for g := range ids {
		ids[g] = testAccession(g)
	}
	list := []string{testAccession(3), testAccession(7), "ENSG99999999.1"}

	for _, opts := range []MatchOptions{
		{},
		{NoSplitOnDot: true},
	} {
		white := GenelistMask(ids, list, true, opts)
		black := GenelistMask(ids, list, false, opts)
		c.Assert(white, check.HasLen, len(ids))
		for i := range white {
			c.Check(white[i], check.Equals, !black[i])
		}
	}

	white := GenelistMask(ids, list, true, MatchOptions{})
	c.Check(countTrue(white), check.Equals, 2)
	c.Check(white[3], check.Equals, true)
	c.Check(white[7], check.Equals, true)
}

func (s *genemaskSuite) TestAndMask(c *check.C) {
	a := []bool{true, true, false, false}
	b := []bool{true, false, true, false}
	c.Check(andMask(a, b), check.DeepEquals, []bool{true, false, false, false})
	c.Check(maskIndexes(andMask(a, b)), check.DeepEquals, []int{0})
	// inputs are not clobbered
	c.Check(a, check.DeepEquals, []bool{true, true, false, false})
}
