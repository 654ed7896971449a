// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes submission tables to an xlsx workbook, one sheet per
// table.
package report

import (
	"fmt"
	"path/filepath"
	"regexp"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/authorcheck/pkg/types"
)

// RemovedMarker replaces characters that are illegal in spreadsheet cells.
const RemovedMarker = "[REMOVED]"

// Column headers. The first column holds the submission path and has no
// header.
const (
	ColAuthor       = "Author"
	ColCreationDate = "CreationDate"
	ColModDate      = "ModDate"
	ColImageMatch   = "Image(matched)"
)

// maxSheetName is the xlsx limit on sheet name length, in characters.
const maxSheetName = 31

var illegalChars = regexp.MustCompile(`[\x00-\x08]|[\x0b-\x0c]|[\x0e-\x1f]`)

// Sanitize replaces control characters that xlsx cannot store with
// RemovedMarker. Tab, newline and carriage return are kept.
func Sanitize(s string) string {
	return illegalChars.ReplaceAllLiteralString(s, RemovedMarker)
}

// SheetName clips name to the xlsx sheet name limit.
func SheetName(name string) string {
	if utf8.RuneCountInString(name) <= maxSheetName {
		return name
	}
	return string([]rune(name)[:maxSheetName])
}

// Workbook accumulates sheets until SaveAs is called.
type Workbook struct {
	f            *excelize.File
	defaultSheet string
	written      map[string]bool
}

// New returns an empty workbook.
func New() *Workbook {
	f := excelize.NewFile()
	return &Workbook{
		f:            f,
		defaultSheet: f.GetSheetName(0),
		written:      make(map[string]bool),
	}
}

// WriteSheet writes t as a new sheet called name. Paths in the first column
// are made relative to baseDir. The Image(matched) column is added only when
// some row of t carries a cluster tag.
func (w *Workbook) WriteSheet(t types.Table, name, baseDir string) error {
	name = SheetName(name)
	if w.written[name] {
		return fmt.Errorf("sheet %q already written", name)
	}

	if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %q: %w", name, err)
	}
	if len(w.written) == 0 {
		if w.defaultSheet != "" && w.defaultSheet != name {
			if err := w.f.DeleteSheet(w.defaultSheet); err != nil {
				return fmt.Errorf("removing default sheet: %w", err)
			}
		}
		idx, err := w.f.GetSheetIndex(name)
		if err != nil {
			return fmt.Errorf("locating sheet %q: %w", name, err)
		}
		w.f.SetActiveSheet(idx)
	}
	w.written[name] = true

	withTags := t.HasImageMatches()
	header := []any{"", ColAuthor, ColCreationDate, ColModDate}
	if withTags {
		header = append(header, ColImageMatch)
	}
	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("writing header of %q: %w", name, err)
	}

	for i, s := range t {
		row := []any{
			relPath(baseDir, s.Path),
			cellString(s.Author, Sanitize),
			cellString(s.CreationDate, nil),
			cellString(s.ModDate, nil),
		}
		if withTags {
			if s.ImageMatch != nil {
				row = append(row, *s.ImageMatch)
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing row %d of %q: %w", i+2, name, err)
		}
	}
	return nil
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

// Close releases the workbook's temporary resources.
func (w *Workbook) Close() error {
	return w.f.Close()
}

func relPath(baseDir, path string) string {
	if baseDir == "" {
		return path
	}
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func cellString(v *string, clean func(string) string) any {
	if v == nil {
		return nil
	}
	if clean != nil {
		return clean(*v)
	}
	return *v
}
