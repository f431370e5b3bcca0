// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kshedden/gonpy"
	"gopkg.in/check.v1"
)

type filterSuite struct{}

var _ = check.Suite(&filterSuite{})

// writeGenelist writes a gene table of the given gene numbers, using
// version suffixes that differ from the test matrix's so membership
// only works through accession normalization.
func writeGenelist(c *check.C, path string, genes []int) {
	var b strings.Builder
	for _, g := range genes {
		fmt.Fprintf(&b, "ENSG%08d.9\t%s\n", g, testSymbol(g))
	}
	err := os.WriteFile(path, []byte(b.String()), 0644)
	c.Assert(err, check.IsNil)
}

func (s *filterSuite) TestLoadAndFilter(c *check.C) {
	tmpdir := c.MkDir()
	ncells, ngenes := 100, 500
	matrixFile := tmpdir + "/matrix.txt"
	writeTestMatrix(c, matrixFile, ncells, ngenes)

	// whitelist genes 0..399, blacklist 350..399 plus some absent ids
	var white, black []int
	for g := 0; g < 400; g++ {
		white = append(white, g)
	}
	for g := 350; g < 400; g++ {
		black = append(black, g)
	}
	black = append(black, 9000, 9001)
	writeGenelist(c, tmpdir+"/whitelist.txt", white)
	writeGenelist(c, tmpdir+"/blacklist.txt", black)

	opts := FilterOptions{
		MinCells:  CellCount(2),
		Whitelist: tmpdir + "/whitelist.txt",
		Blacklist: tmpdir + "/blacklist.txt",
	}
	m2, genes2, err := LoadAndFilter(matrixFile, opts)
	c.Assert(err, check.IsNil)
	c.Check(m2.Cells(), check.Equals, ncells)
	c.Check(m2.Genes() <= ngenes, check.Equals, true)
	c.Check(genes2.Len(), check.Equals, m2.Genes())

	whiteIDs := make([]string, len(white))
	for i, g := range white {
		whiteIDs[i] = fmt.Sprintf("ENSG%08d.9", g)
	}
	blackIDs := make([]string, len(black))
	for i, g := range black {
		blackIDs[i] = fmt.Sprintf("ENSG%08d.9", g)
	}
	for i, onWhite := range MatchMask(genes2.Column(0), whiteIDs, MatchOptions{}) {
		c.Check(onWhite, check.Equals, true, check.Commentf("gene %s", genes2.Column(0)[i]))
	}
	for i, onBlack := range MatchMask(genes2.Column(0), blackIDs, MatchOptions{}) {
		c.Check(onBlack, check.Equals, false, check.Commentf("gene %s", genes2.Column(0)[i]))
	}
	for _, n := range m2.CellsExpressing() {
		c.Check(n >= 2, check.Equals, true)
	}

	opts.MinCells = CellCount(5)
	m5, _, err := LoadAndFilter(matrixFile, opts)
	c.Assert(err, check.IsNil)
	c.Check(m5.Genes() <= m2.Genes(), check.Equals, true)
	for _, n := range m5.CellsExpressing() {
		c.Check(n >= 5, check.Equals, true)
	}
}

func (s *filterSuite) TestLoadAndFilterLike(c *check.C) {
	tmpdir := c.MkDir()
	matrixFile := tmpdir + "/matrix.txt"
	writeTestMatrix(c, matrixFile, 10, 40)

	_, genes, err := LoadTxt(matrixFile, 2)
	c.Assert(err, check.IsNil)
	ref := genes.Select([]int{30, 20, 10, 5})
	c.Assert(ref.Save(tmpdir+"/ref.txt"), check.IsNil)

	m, got, err := LoadAndFilter(matrixFile, FilterOptions{Reference: tmpdir + "/ref.txt"})
	c.Assert(err, check.IsNil)
	c.Check(m.Genes(), check.Equals, 4)
	c.Check(got.Column(0), check.DeepEquals, ref.Column(0))
}

func (s *filterSuite) TestFilterCommand(c *check.C) {
	tmpdir := c.MkDir()
	ncells, ngenes := 20, 50
	writeTestMatrix(c, tmpdir+"/matrix.txt", ncells, ngenes)

	var stdout strings.Builder
	exited := (&filtercmd{}).RunCommand("scprep filter", []string{
		"-i", tmpdir + "/matrix.txt",
		"-min-cells", "2",
		"-output-dir", tmpdir,
	}, nil, &stdout, os.Stderr)
	c.Assert(exited, check.Equals, 0)
	c.Check(stdout.String(), check.Equals, tmpdir+"/matrix.npy\n")

	f, err := os.Open(tmpdir + "/matrix.npy")
	c.Assert(err, check.IsNil)
	defer f.Close()
	npy, err := gonpy.NewReader(f)
	c.Assert(err, check.IsNil)
	counts, err := npy.GetInt32()
	c.Assert(err, check.IsNil)
	c.Assert(npy.Shape, check.HasLen, 2)
	c.Check(npy.Shape[0], check.Equals, ncells)
	c.Check(npy.Shape[1] <= ngenes, check.Equals, true)
	c.Check(counts, check.HasLen, ncells*npy.Shape[1])

	buf, err := os.ReadFile(tmpdir + "/genes.txt")
	c.Assert(err, check.IsNil)
	lines := strings.Split(strings.TrimRight(string(buf), "\n"), "\n")
	c.Check(lines, check.HasLen, npy.Shape[1])

	// filtered output agrees with the library call
	m, _, err := LoadAndFilter(tmpdir+"/matrix.txt", FilterOptions{MinCells: CellCount(2)})
	c.Assert(err, check.IsNil)
	c.Assert(m.Genes(), check.Equals, npy.Shape[1])
	for i := 0; i < m.Cells(); i++ {
		for j := 0; j < m.Genes(); j++ {
			c.Assert(float64(counts[i*m.Genes()+j]), check.Equals, m.At(i, j))
		}
	}
}

func (s *filterSuite) TestStatsCommand(c *check.C) {
	tmpdir := c.MkDir()
	ncells, ngenes := 10, 30
	writeTestMatrix(c, tmpdir+"/matrix.txt", ncells, ngenes)

	var stdout strings.Builder
	exited := (&statscmd{}).RunCommand("scprep stats", []string{
		"-i", tmpdir + "/matrix.txt",
	}, nil, &stdout, os.Stderr)
	c.Assert(exited, check.Equals, 0)

	var ret struct {
		Cells             int
		Genes             int
		Nonzeros          int
		GenesNotExpressed int
		GeneTableDigest   string
	}
	err := json.Unmarshal([]byte(stdout.String()), &ret)
	c.Assert(err, check.IsNil)
	c.Check(ret.Cells, check.Equals, ncells)
	c.Check(ret.Genes, check.Equals, ngenes)
	c.Check(ret.Nonzeros > 0, check.Equals, true)
	// genes 0, 10, 20 have prevalence 0 in the test fixture
	c.Check(ret.GenesNotExpressed, check.Equals, 3)
	c.Check(ret.GeneTableDigest, check.HasLen, 64)
}
