// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/authorcheck/pkg/types"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean", in: "Taro Yamada", want: "Taro Yamada"},
		{name: "null byte", in: "Ta\x00ro", want: "Ta[REMOVED]ro"},
		{name: "vertical tab and form feed", in: "a\x0bb\x0cc", want: "a[REMOVED]b[REMOVED]c"},
		{name: "unit separator", in: "x\x1f", want: "x[REMOVED]"},
		{name: "tab newline carriage return kept", in: "a\tb\nc\rd", want: "a\tb\nc\rd"},
		{name: "non ascii kept", in: "山田\x01太郎", want: "山田[REMOVED]太郎"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, types.DefaultDuplicateSheet, SheetName(types.DefaultDuplicateSheet))

	long := strings.Repeat("あ", 40)
	got := SheetName(long)
	assert.Equal(t, strings.Repeat("あ", 31), got)
}

// cell returns rows[r][c] or "" when the cell was trimmed as trailing empty.
func cell(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

func saveAndOpen(t *testing.T, w *Workbook) *excelize.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.xlsx")
	require.NoError(t, w.SaveAs(path))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWorkbook_WriteSheets(t *testing.T) {
	base := filepath.Join("/", "submissions")
	all := types.Table{
		{
			Path:         filepath.Join(base, "s1", "a.pdf"),
			Author:       types.StringPtr("Ha\x00nako"),
			CreationDate: types.StringPtr("D:20240101"),
			ModDate:      types.StringPtr("D:20240102"),
		},
		{Path: filepath.Join(base, "b.pdf")},
	}
	tagged := types.Table{
		{Path: filepath.Join(base, "c.pdf"), ImageMatch: types.IntPtr(0)},
		{Path: filepath.Join(base, "d.pdf"), ImageMatch: types.IntPtr(0)},
		{Path: filepath.Join(base, "e.pdf"), ModDate: types.StringPtr("D:1")},
	}

	w := New()
	require.NoError(t, w.WriteSheet(all, types.DefaultMetadataSheet, base))
	require.NoError(t, w.WriteSheet(tagged, types.DefaultDuplicateSheet, base))
	require.NoError(t, w.WriteSheet(types.Table{}, types.DefaultNoAuthorSheet, base))

	f := saveAndOpen(t, w)
	assert.Equal(t, []string{
		types.DefaultMetadataSheet,
		types.DefaultDuplicateSheet,
		types.DefaultNoAuthorSheet,
	}, f.GetSheetList(), "the default sheet should be gone")

	rows, err := f.GetRows(types.DefaultMetadataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"", ColAuthor, ColCreationDate, ColModDate}, rows[0])
	assert.Equal(t, "s1/a.pdf", cell(rows, 1, 0))
	assert.Equal(t, "Ha[REMOVED]nako", cell(rows, 1, 1))
	assert.Equal(t, "D:20240101", cell(rows, 1, 2))
	assert.Equal(t, "D:20240102", cell(rows, 1, 3))
	assert.Equal(t, "b.pdf", cell(rows, 2, 0))
	assert.Empty(t, cell(rows, 2, 1))
	assert.Empty(t, cell(rows, 2, 3))

	rows, err = f.GetRows(types.DefaultDuplicateSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"", ColAuthor, ColCreationDate, ColModDate, ColImageMatch}, rows[0])
	assert.Equal(t, "0", cell(rows, 1, 4))
	assert.Equal(t, "0", cell(rows, 2, 4))
	assert.Empty(t, cell(rows, 3, 4))
	assert.Equal(t, "D:1", cell(rows, 3, 3))

	rows, err = f.GetRows(types.DefaultNoAuthorSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"", ColAuthor, ColCreationDate, ColModDate}, rows[0])
}

func TestWorkbook_DuplicateSheet(t *testing.T) {
	w := New()
	defer w.Close()

	require.NoError(t, w.WriteSheet(nil, "list", ""))
	err := w.WriteSheet(nil, "list", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already written")
}

func TestWorkbook_KeepsDefaultNameWhenReused(t *testing.T) {
	w := New()
	require.NoError(t, w.WriteSheet(types.Table{{Path: "x.pdf"}}, "Sheet1", ""))

	f := saveAndOpen(t, w)
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "x.pdf", cell(rows, 1, 0))
}

func TestWorkbook_SaveAsError(t *testing.T) {
	w := New()
	defer w.Close()
	require.NoError(t, w.WriteSheet(nil, "list", ""))

	err := w.SaveAs(filepath.Join(t.TempDir(), "missing", "dir", "out.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving workbook")
}
