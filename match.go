// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"fmt"
	"strings"
)

// MatchStyle selects how gene identifiers are compared.
type MatchStyle int

const (
	// MatchAccession compares structured identifiers (e.g. Ensembl
	// gene IDs), stripping any version suffix after the first "." so
	// ENSG00000139.4 and ENSG00000139.7 compare equal.
	MatchAccession MatchStyle = iota
	// MatchName compares gene symbols byte for byte.
	MatchName
)

// MatchOptions configures identifier comparison.
type MatchOptions struct {
	Style MatchStyle
	// NoSplitOnDot disables version-suffix stripping in
	// MatchAccession style.
	NoSplitOnDot bool
}

func (o MatchOptions) normalize(id string) string {
	if o.Style == MatchAccession && !o.NoSplitOnDot {
		if i := strings.IndexByte(id, '.'); i >= 0 {
			return id[:i]
		}
	}
	return id
}

// column returns the gene-table column identifiers are matched on:
// the primary accession column for MatchAccession, the symbol column
// for MatchName.
func (o MatchOptions) column(t *GeneTable) ([]string, error) {
	col := 0
	if o.Style == MatchName {
		col = 1
	}
	if t.Columns() <= col {
		return nil, fmt.Errorf("gene table has %d columns, need %d for this match style", t.Columns(), col+1)
	}
	return t.Column(col), nil
}

// MatchMask reports, for each identifier in ids, whether its
// normalized form occurs among the normalized identifiers in list.
func MatchMask(ids, list []string, opts MatchOptions) []bool {
	in := make(map[string]bool, len(list))
	for _, id := range list {
		in[opts.normalize(id)] = true
	}
	mask := make([]bool, len(ids))
	for i, id := range ids {
		mask[i] = in[opts.normalize(id)]
	}
	return mask
}
