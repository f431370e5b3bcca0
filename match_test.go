package scprep

import (
	"gopkg.in/check.v1"
)

type matchSuite struct{}

var _ = check.Suite(&matchSuite{})

func (s *matchSuite) TestAccessionVersionStripping(c *check.C) {
	ids := []string{"ENSG00000139.4", "ENSG00000200", "ENSG00000300.1"}
	list := []string{"ENSG00000139.9", "ENSG00000300"}

	c.Check(MatchMask(ids, list, MatchOptions{}), check.DeepEquals,
		[]bool{true, false, true})

	// verbatim comparison keeps the version suffixes apart
	c.Check(MatchMask(ids, list, MatchOptions{NoSplitOnDot: true}), check.DeepEquals,
		[]bool{false, false, false})
}

func (s *matchSuite) TestNameStyleIsRaw(c *check.C) {
	ids := []string{"TP53", "MT-CO1", "BRCA1.1"}
	list := []string{"MT-CO1", "BRCA1"}

	c.Check(MatchMask(ids, list, MatchOptions{Style: MatchName}), check.DeepEquals,
		[]bool{false, true, false})
}

func (s *matchSuite) TestMatchColumn(c *check.C) {
	t := &GeneTable{rows: [][]string{{"ENSG1.1", "A"}, {"ENSG2.1", "B"}}}

	ids, err := MatchOptions{}.column(t)
	c.Check(err, check.IsNil)
	c.Check(ids, check.DeepEquals, []string{"ENSG1.1", "ENSG2.1"})

	ids, err = MatchOptions{Style: MatchName}.column(t)
	c.Check(err, check.IsNil)
	c.Check(ids, check.DeepEquals, []string{"A", "B"})

	single := &GeneTable{rows: [][]string{{"ENSG1.1"}}}
	_, err = MatchOptions{Style: MatchName}.column(single)
	c.Check(err, check.NotNil)
}
