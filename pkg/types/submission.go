// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"cmp"
	"slices"
)

// Submission holds the authorship metadata read from one submitted PDF.
// Optional fields are nil when the document does not carry them.
type Submission struct {
	// Path is the PDF location as discovered under the scan root. It is the
	// unique key of a Table row.
	Path string `json:"path" yaml:"path"`

	// Author is the /Author entry of the document information dictionary.
	// An empty author is stored as nil.
	Author *string `json:"author" yaml:"author"`

	// CreationDate is the raw /CreationDate token (e.g. "D:20240115093000+09'00'").
	// The format is not validated.
	CreationDate *string `json:"creation_date" yaml:"creation_date"`

	// ModDate is the raw /ModDate token. The format is not validated.
	ModDate *string `json:"mod_date" yaml:"mod_date"`

	// ImageMatch is the image cluster tag assigned by the deduplicator when
	// the rendered first page matches another submission exactly.
	ImageMatch *int `json:"image_matched,omitempty" yaml:"image_matched,omitempty"`
}

// HasAuthor reports whether the submission declares an author.
func (s Submission) HasAuthor() bool {
	return s.Author != nil
}

// Table is an ordered set of submissions. Row order is discovery order until
// a stage sorts it.
type Table []Submission

// Len returns the number of rows.
func (t Table) Len() int { return len(t) }

// Paths returns the row keys in table order.
func (t Table) Paths() []string {
	paths := make([]string, len(t))
	for i, s := range t {
		paths[i] = s.Path
	}
	return paths
}

// Clone returns a deep copy of t. Pointer fields are copied so that
// annotating the clone never changes the original.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, s := range t {
		out[i] = Submission{
			Path:         s.Path,
			Author:       cloneString(s.Author),
			CreationDate: cloneString(s.CreationDate),
			ModDate:      cloneString(s.ModDate),
		}
		if s.ImageMatch != nil {
			tag := *s.ImageMatch
			out[i].ImageMatch = &tag
		}
	}
	return out
}

// HasImageMatches reports whether any row carries an image cluster tag.
func (t Table) HasImageMatches() bool {
	for _, s := range t {
		if s.ImageMatch != nil {
			return true
		}
	}
	return false
}

// SortByModDate stably sorts t by ModDate ascending, nil last.
func (t Table) SortByModDate() {
	slices.SortStableFunc(t, func(a, b Submission) int {
		return CompareOptional(a.ModDate, b.ModDate)
	})
}

// CompareOptional orders two optional values ascending with nil after every
// non-nil value. Two nils compare equal.
func CompareOptional[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
