// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package authors splits the metadata table by author presence and finds
// authors that appear on more than one submission. Author strings are
// compared exactly: no case folding, trimming, or Unicode normalization.
package authors

import (
	"slices"
	"strings"

	"github.com/pdiddy/authorcheck/pkg/types"
)

// minDuplicates is the number of submissions an author needs to be reported.
const minDuplicates = 2

// Partition splits t into rows with and without an author. Every row lands
// in exactly one result. Rows with an author keep table order; rows without
// one are sorted by ModDate (nil last).
func Partition(t types.Table) (withAuthor, noAuthor types.Table) {
	withAuthor = types.Table{}
	noAuthor = types.Table{}
	for _, s := range t {
		if s.HasAuthor() {
			withAuthor = append(withAuthor, s)
		} else {
			noAuthor = append(noAuthor, s)
		}
	}
	noAuthor.SortByModDate()
	return withAuthor, noAuthor
}

// FindDuplicates returns the rows of t whose author appears on at least two
// rows, sorted by author and then ModDate (nil last). Rows without an author
// are ignored.
func FindDuplicates(t types.Table) types.Table {
	counts := make(map[string]int)
	for _, s := range t {
		if s.HasAuthor() {
			counts[*s.Author]++
		}
	}

	dups := types.Table{}
	for _, s := range t {
		if s.HasAuthor() && counts[*s.Author] >= minDuplicates {
			dups = append(dups, s)
		}
	}

	slices.SortStableFunc(dups, func(a, b types.Submission) int {
		if c := strings.Compare(*a.Author, *b.Author); c != 0 {
			return c
		}
		return types.CompareOptional(a.ModDate, b.ModDate)
	})
	return dups
}

// Group is the set of submissions sharing one author string.
type Group struct {
	Author string   `json:"author" yaml:"author"`
	Paths  []string `json:"paths" yaml:"paths"`
}

// Groups collects the rows of a FindDuplicates result into one Group per
// author, in author order.
func Groups(dups types.Table) []Group {
	var groups []Group
	for _, s := range dups {
		if !s.HasAuthor() {
			continue
		}
		if n := len(groups); n > 0 && groups[n-1].Author == *s.Author {
			groups[n-1].Paths = append(groups[n-1].Paths, s.Path)
			continue
		}
		groups = append(groups, Group{Author: *s.Author, Paths: []string{s.Path}})
	}
	return groups
}
