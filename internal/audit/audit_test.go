// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/authorcheck/internal/metadata"
	"github.com/pdiddy/authorcheck/internal/testsupport"
	"github.com/pdiddy/authorcheck/pkg/types"
)

// pageRenderer returns a canned page keyed by file base name.
type pageRenderer map[string]image.Image

func (p pageRenderer) Render(_ context.Context, path string) (image.Image, error) {
	img, ok := p[filepath.Base(path)]
	if !ok {
		return nil, errors.New("pdftoppm not installed")
	}
	return img, nil
}

var (
	pageX = testsupport.SolidImage(6, 6, color.NRGBA{R: 200, A: 255})
	pageY = testsupport.SolidImage(6, 6, color.NRGBA{G: 200, A: 255})
	pageZ = testsupport.SolidImage(6, 6, color.NRGBA{B: 200, A: 255})
	pageW = testsupport.SolidImage(6, 6, color.NRGBA{R: 90, G: 90, A: 255})
)

// fixture lays out a submissions folder:
//
//	s1/a.pdf  author A, mod D:2
//	s2/b.pdf  author A, mod D:1
//	s3/c.pdf  author B
//	s4/d.pdf  no author, no dates
//	s5/e.pdf  no author
//	s6/f.pdf  no author, same page as e.pdf
//	broken.pdf, notes.txt
func fixture(t *testing.T) (root string, cfg types.AuditConfig) {
	t.Helper()
	work := t.TempDir()
	root = filepath.Join(work, "submissions")

	testsupport.WritePDF(t, filepath.Join(root, "s1", "a.pdf"), testsupport.PDFInfo{
		Author: testsupport.Str("A"), CreationDate: testsupport.Str("D:1"), ModDate: testsupport.Str("D:2"),
	})
	testsupport.WritePDF(t, filepath.Join(root, "s2", "b.pdf"), testsupport.PDFInfo{
		Author: testsupport.Str("A"), CreationDate: testsupport.Str("D:1"), ModDate: testsupport.Str("D:1"),
	})
	testsupport.WritePDF(t, filepath.Join(root, "s3", "c.pdf"), testsupport.PDFInfo{
		Author: testsupport.Str("B"), CreationDate: testsupport.Str("D:1"), ModDate: testsupport.Str("D:1"),
	})
	testsupport.WritePDF(t, filepath.Join(root, "s4", "d.pdf"), testsupport.PDFInfo{})
	testsupport.WritePDF(t, filepath.Join(root, "s5", "e.pdf"), testsupport.PDFInfo{ModDate: testsupport.Str("D:5")})
	testsupport.WritePDF(t, filepath.Join(root, "s6", "f.pdf"), testsupport.PDFInfo{ModDate: testsupport.Str("D:3")})
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.pdf"), []byte("%PDF-1.4 truncated"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("not a pdf"), 0o644))

	cfg = types.AuditConfig{
		Root:     root,
		ImageDir: filepath.Join(work, "noname"),
		Report:   types.ReportConfig{Output: filepath.Join(work, "metadata.xlsx")},
	}
	return root, cfg
}

func deps(t *testing.T, pages pageRenderer) (Dependencies, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	return Dependencies{
		Extractor: metadata.NewInfoExtractor(log),
		Renderer:  pages,
		Log:       log,
	}, hook
}

func TestRun(t *testing.T) {
	root, cfg := fixture(t)
	d, hook := deps(t, pageRenderer{
		"a.pdf": pageX, "b.pdf": pageY, "c.pdf": pageX,
		"d.pdf": pageW, "e.pdf": pageZ, "f.pdf": pageZ,
	})

	res, err := Run(context.Background(), cfg, d)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Metadata.Len())
	assert.Equal(t, 1, res.Build.Unreadable)

	assert.Equal(t, []string{
		filepath.Join(root, "s2", "b.pdf"),
		filepath.Join(root, "s1", "a.pdf"),
	}, res.Duplicates.Paths())
	assert.False(t, res.Duplicates.HasImageMatches())
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "A", res.Groups[0].Author)

	assert.Equal(t, []string{
		filepath.Join(root, "s6", "f.pdf"),
		filepath.Join(root, "s5", "e.pdf"),
		filepath.Join(root, "s4", "d.pdf"),
	}, res.NoAuthor.Paths())
	assert.Equal(t, 0, *res.NoAuthor[0].ImageMatch)
	assert.Equal(t, 0, *res.NoAuthor[1].ImageMatch)
	assert.Nil(t, res.NoAuthor[2].ImageMatch)
	assert.Equal(t, 1, res.NoAuthorImages.Clusters)

	for _, name := range []string{"d.png", "e.png", "f.png"} {
		assert.FileExists(t, filepath.Join(cfg.ImageDir, name))
	}
	assert.NoFileExists(t, filepath.Join(cfg.ImageDir, "a.png"), "duplicate-author pages are not saved")

	f, err := excelize.OpenFile(cfg.Report.Output)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{
		types.DefaultMetadataSheet,
		types.DefaultDuplicateSheet,
		types.DefaultNoAuthorSheet,
	}, f.GetSheetList())

	rows, err := f.GetRows(types.DefaultNoAuthorSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Image(matched)", rows[0][4])
	last := rows[3]
	assert.Equal(t, "s4/d.pdf", last[0])
	for _, v := range last[1:] {
		assert.Empty(t, v, "d.pdf has no metadata and no cluster")
	}

	assert.Equal(t, "scan finished", hook.LastEntry().Message)
}

func TestRun_PDF20(t *testing.T) {
	root, cfg := fixture(t)
	testsupport.WritePDF(t, filepath.Join(root, "s7", "g.pdf"), testsupport.PDFInfo{
		Version: "2.0", ModDate: testsupport.Str("D:4"),
	})
	testsupport.WritePDF(t, filepath.Join(root, "s8", "h.pdf"), testsupport.PDFInfo{
		Version: "2.0", Author: testsupport.Str("B"), ModDate: testsupport.Str("D:9"),
	})
	d, _ := deps(t, pageRenderer{})

	res, err := Run(context.Background(), cfg, d)
	require.NoError(t, err)

	assert.Equal(t, 8, res.Metadata.Len())
	assert.Equal(t, 1, res.Build.Unreadable, "only broken.pdf")
	assert.Contains(t, res.NoAuthor.Paths(), filepath.Join(root, "s7", "g.pdf"))
	assert.Equal(t, 4, res.Duplicates.Len())
	assert.Contains(t, res.Duplicates.Paths(), filepath.Join(root, "s8", "h.pdf"))
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "B", res.Groups[1].Author)
}

func TestRun_RenderUnavailable(t *testing.T) {
	_, cfg := fixture(t)
	d, hook := deps(t, pageRenderer{})

	res, err := Run(context.Background(), cfg, d)
	require.NoError(t, err)

	assert.Equal(t, 3, res.NoAuthor.Len(), "metadata results survive a missing renderer")
	assert.Equal(t, 3, res.NoAuthorImages.Failed)
	assert.Equal(t, 2, res.DuplicateImages.Failed)
	assert.False(t, res.NoAuthor.HasImageMatches())

	var warned int
	for _, e := range hook.AllEntries() {
		if e.Message == "cannot convert to png" {
			warned++
		}
	}
	assert.Equal(t, 5, warned)
}

func TestRun_ImageDirExists(t *testing.T) {
	_, cfg := fixture(t)
	require.NoError(t, os.Mkdir(cfg.ImageDir, 0o755))
	d, _ := deps(t, pageRenderer{})

	_, err := Run(context.Background(), cfg, d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.NoFileExists(t, cfg.Report.Output)

	cfg.ReuseImageDir = true
	_, err = Run(context.Background(), cfg, d)
	require.NoError(t, err)
	assert.FileExists(t, cfg.Report.Output)
}

func TestRun_MissingRoot(t *testing.T) {
	d, _ := deps(t, pageRenderer{})
	_, err := Run(context.Background(), types.AuditConfig{Root: filepath.Join(t.TempDir(), "nope")}, d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading scan root")
}

func TestRun_Cancelled(t *testing.T) {
	_, cfg := fixture(t)
	d, _ := deps(t, pageRenderer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, d)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, cfg.Report.Output)
}

func TestNewDependencies(t *testing.T) {
	log, _ := test.NewNullLogger()

	d, err := NewDependencies(types.AuditConfig{}.WithDefaults(), log)
	require.NoError(t, err)
	assert.NotNil(t, d.Extractor)
	assert.NotNil(t, d.Renderer)

	_, err = NewDependencies(types.AuditConfig{Render: types.RenderConfig{Backend: "gpu"}}, log)
	require.Error(t, err)
}
