// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"errors"
	"fmt"
)

// ErrGeneMatch is wrapped by every reconciliation failure: a reference
// identifier with zero, or more than one, matching column in the input
// gene table, or a reference identifier that repeats.
var ErrGeneMatch = errors.New("gene match failure")

// Reconcile returns a copy of m whose gene axis exactly matches ref:
// output column i holds the input column whose identifier matches
// reference identifier i under opts, and the output gene table carries
// the reference's own rows in the reference's order. Counts are a pure
// selection of input columns, never recomputed. Any reference
// identifier with no match, with several, or repeated within the
// reference makes the whole operation fail; partial reconciliation is
// never returned.
func Reconcile(m *CountMatrix, genes, ref *GeneTable, opts MatchOptions) (*CountMatrix, *GeneTable, error) {
	inIDs, err := opts.column(genes)
	if err != nil {
		return nil, nil, fmt.Errorf("input gene table: %w", err)
	}
	refIDs, err := opts.column(ref)
	if err != nil {
		return nil, nil, fmt.Errorf("reference gene table: %w", err)
	}
	pos := make(map[string][]int, len(inIDs))
	for j, id := range inIDs {
		n := opts.normalize(id)
		pos[n] = append(pos[n], j)
	}
	seen := make(map[string]bool, len(refIDs))
	order := make([]int, len(refIDs))
	for i, id := range refIDs {
		norm := opts.normalize(id)
		if seen[norm] {
			return nil, nil, fmt.Errorf("%w: reference identifier %q appears more than once", ErrGeneMatch, id)
		}
		seen[norm] = true
		cols := pos[norm]
		switch len(cols) {
		case 1:
			order[i] = cols[0]
		case 0:
			return nil, nil, fmt.Errorf("%w: reference identifier %q has no matching input gene", ErrGeneMatch, id)
		default:
			return nil, nil, fmt.Errorf("%w: reference identifier %q matches %d input genes", ErrGeneMatch, id, len(cols))
		}
	}
	ix := make([]int, ref.Len())
	for i := range ix {
		ix[i] = i
	}
	return m.SelectGenes(order), ref.Select(ix), nil
}

// LoadLike loads the coordinate count file at path and reconciles it
// against the gene table file at reference, so the returned matrix and
// gene table follow the reference's gene order exactly.
func LoadLike(path, reference string, ngenecols int, opts MatchOptions) (*CountMatrix, *GeneTable, error) {
	m, genes, err := LoadTxt(path, ngenecols)
	if err != nil {
		return nil, nil, err
	}
	ref, err := LoadGeneTable(reference)
	if err != nil {
		return nil, nil, err
	}
	return Reconcile(m, genes, ref, opts)
}
