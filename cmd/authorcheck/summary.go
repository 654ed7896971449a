// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/authorcheck/internal/audit"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}
}

// writeSummary prints the outcome of a scan in the requested format.
func writeSummary(w io.Writer, res audit.Result, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case formatText, "":
		return writeText(w, res)
	default:
		return checkFormat(format)
	}
}

func writeText(w io.Writer, res audit.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Scanned %d PDF(s) under %s: %d read, %d unreadable, %d missing dates\n\n",
		res.Build.Total(), res.Root, res.Build.Read, res.Build.Unreadable, res.Build.MissingDates)

	b.WriteString(renderTable(
		[]string{"Sheet", "Rows", "Image clusters", "Clustered", "Render failures"},
		[][]string{
			{"all submissions", strconv.Itoa(res.Metadata.Len()), "", "", ""},
			{"duplicate authors", strconv.Itoa(res.Duplicates.Len()),
				strconv.Itoa(res.DuplicateImages.Clusters),
				strconv.Itoa(res.DuplicateImages.Matched),
				strconv.Itoa(res.DuplicateImages.Failed)},
			{"no author", strconv.Itoa(res.NoAuthor.Len()),
				strconv.Itoa(res.NoAuthorImages.Clusters),
				strconv.Itoa(res.NoAuthorImages.Matched),
				strconv.Itoa(res.NoAuthorImages.Failed)},
		},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	b.WriteString("\n")

	if len(res.Groups) > 0 {
		rows := make([][]string, 0, len(res.Groups))
		for _, g := range res.Groups {
			rows = append(rows, []string{g.Author, strconv.Itoa(len(g.Paths)), relJoin(res.Root, g.Paths)})
		}
		b.WriteString("\n")
		b.WriteString(renderTable([]string{"Author", "Files", "Paths"}, rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft}))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nWorkbook: %s\n", res.Output)
	if res.NoAuthor.Len() > 0 {
		fmt.Fprintf(&b, "First pages of no-author submissions: %s\n", res.ImageDir)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func relJoin(root string, paths []string) string {
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		out[i] = rel
	}
	return strings.Join(out, "\n")
}
