// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	_ "net/http/pprof"
	"os"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Subsample is the outcome of one subsampling draw.
type Subsample struct {
	// Indexes are the chosen population indices, sorted ascending.
	Indexes []int
	// Feasible is false when the requested size exceeded the
	// quota-constrained eligible pool and the draw was truncated to
	// the pool size.
	Feasible bool
	// Capacity is the size of the eligible pool: every unlabeled
	// element plus each labeled group's quota.
	Capacity int
}

// SubsampleN draws n indices without replacement from the implicit
// population 0..pop-1. See SubsampleIxs.
func SubsampleN(pop, n int, groupIDs []string, maxGroupFrac float64, rnd *rand.Rand) (Subsample, error) {
	choices := make([]int, pop)
	for i := range choices {
		choices[i] = i
	}
	return SubsampleIxs(choices, n, groupIDs, maxGroupFrac, rnd)
}

// SubsampleIxs draws n elements without replacement from choices,
// using rnd as the only source of randomness.
//
// groupIDs, when non-nil, labels each element of choices; elements
// with an empty label are ungrouped. At most
// floor(maxGroupFrac × group size) members of any one group are ever
// candidates, and which members fill that quota is itself a random
// draw. Ungrouped elements are always candidates. When the quotas
// leave fewer than n candidates the draw is truncated to the pool
// size, reported with Feasible == false and a single warning; a
// shorter subset is still usable downstream, unlike a misdrawn one.
//
// Requesting more than len(choices) elements is an error.
func SubsampleIxs(choices []int, n int, groupIDs []string, maxGroupFrac float64, rnd *rand.Rand) (Subsample, error) {
	pop := len(choices)
	if n < 0 || n > pop {
		return Subsample{}, fmt.Errorf("cannot draw %d from a population of %d", n, pop)
	}
	if groupIDs != nil && len(groupIDs) != pop {
		return Subsample{}, fmt.Errorf("%d group labels for a population of %d", len(groupIDs), pop)
	}

	// Pool of candidate positions in choices.
	var pool []int
	if len(groupIDs) == 0 {
		pool = rnd.Perm(pop)
	} else {
		if maxGroupFrac <= 0 || maxGroupFrac > 1 {
			return Subsample{}, fmt.Errorf("max group fraction %g outside (0, 1]", maxGroupFrac)
		}
		groups := map[string][]int{}
		for i, g := range groupIDs {
			if g == "" {
				pool = append(pool, i)
			} else {
				groups[g] = append(groups[g], i)
			}
		}
		for _, members := range groups {
			quota := int(maxGroupFrac * float64(len(members)))
			rnd.Shuffle(len(members), func(i, j int) {
				members[i], members[j] = members[j], members[i]
			})
			pool = append(pool, members[:quota]...)
		}
		rnd.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
	}

	ret := Subsample{Feasible: true, Capacity: len(pool)}
	if len(pool) < n {
		log.Warnf("requested %d of %d cells, but group quotas leave only %d eligible", n, pop, len(pool))
		ret.Feasible = false
		n = len(pool)
	}
	ret.Indexes = make([]int, n)
	for k, p := range pool[:n] {
		ret.Indexes[k] = choices[p]
	}
	sort.Ints(ret.Indexes)
	return ret, nil
}

type subsamplecmd struct{}

func (cmd *subsamplecmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	pprof := flags.String("pprof", "", "serve Go profile data at http://`[addr]:port`")
	inputFilename := flags.String("i", "", "count matrix `file` used to size the population")
	population := flags.Int("population", 0, "population size (alternative to -i)")
	ngenecols := flags.Int("gene-cols", 2, "number of leading gene identifier columns in the matrix file")
	sampleSize := flags.Float64("sample-size", 0, "number (or proportion, if <1) of cells to draw")
	groupFilename := flags.String("group-file", "", "whitespace-delimited `file` of cell index and group label; unlisted cells are ungrouped")
	maxGroupFrac := flags.Float64("max-group-frac", 1, "maximum `fraction` of any one group's own members in the sample")
	randSeed := flags.Int64("random-seed", 0, "PRNG seed")
	outputDir := flags.String("output-dir", ".", "output `directory`")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	} else if flags.NArg() > 0 {
		err = fmt.Errorf("errant command line arguments after parsed flags: %v", flags.Args())
		return 2
	} else if (*inputFilename == "") == (*population == 0) {
		err = fmt.Errorf("must provide either -i or -population")
		return 2
	}

	if *pprof != "" {
		go func() {
			log.Println(http.ListenAndServe(*pprof, nil))
		}()
	}

	pop := *population
	if *inputFilename != "" {
		var m *CountMatrix
		m, _, err = LoadTxt(*inputFilename, *ngenecols)
		if err != nil {
			return 1
		}
		pop = m.Cells()
	}
	n := int(*sampleSize)
	if *sampleSize < 1 {
		n = int(*sampleSize * float64(pop))
	}

	var groupIDs []string
	if *groupFilename != "" {
		groupIDs, err = loadGroupFile(*groupFilename, pop)
		if err != nil {
			return 1
		}
	}

	rnd := rand.New(rand.NewSource(*randSeed))
	sub, err := SubsampleIxs(seq(pop), n, groupIDs, *maxGroupFrac, rnd)
	if err != nil {
		return 1
	}
	log.Infof("chose %d of %d cells", len(sub.Indexes), pop)

	cellsFilename := *outputDir + "/cells.csv"
	log.Infof("writing cell subset to %s", cellsFilename)
	f, err := os.Create(cellsFilename)
	if err != nil {
		return 1
	}
	defer f.Close()
	bufw := bufio.NewWriter(f)
	_, err = fmt.Fprint(bufw, "Index,Group,Selected\n")
	if err != nil {
		return 1
	}
	next := 0
	for i := 0; i < pop; i++ {
		selected := "0"
		if next < len(sub.Indexes) && sub.Indexes[next] == i {
			selected = "1"
			next++
		}
		var group string
		if groupIDs != nil {
			group = groupIDs[i]
		}
		_, err = fmt.Fprintf(bufw, "%d,%s,%s\n", i, group, selected)
		if err != nil {
			err = fmt.Errorf("write %s: %w", cellsFilename, err)
			return 1
		}
	}
	err = bufw.Flush()
	if err != nil {
		return 1
	}
	err = f.Close()
	if err != nil {
		err = fmt.Errorf("close %s: %w", cellsFilename, err)
		return 1
	}
	return 0
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// loadGroupFile reads a whitespace-delimited file of (cell index,
// group label) rows into a label vector of length pop. Cells not
// listed stay ungrouped.
func loadGroupFile(path string, pop int) ([]string, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	groupIDs := make([]string, pop)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(nil, maxLineBytes)
	for lineno := 1; scanner.Scan(); lineno++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s line %d: expected cell index and group label, got %d fields", path, lineno, len(fields))
		}
		i, err := strconv.Atoi(fields[0])
		if err != nil || i < 0 || i >= pop {
			return nil, fmt.Errorf("%s line %d: bad cell index %q for population of %d", path, lineno, fields[0], pop)
		}
		groupIDs[i] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return groupIDs, nil
}
