// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit runs one authorship scan end to end: discover PDFs, read
// their metadata, find shared and missing authors, cluster identical first
// pages, and write the workbook.
package audit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/authorcheck/internal/authors"
	"github.com/pdiddy/authorcheck/internal/dedup"
	"github.com/pdiddy/authorcheck/internal/metadata"
	"github.com/pdiddy/authorcheck/internal/render"
	"github.com/pdiddy/authorcheck/internal/report"
	"github.com/pdiddy/authorcheck/internal/scan"
	"github.com/pdiddy/authorcheck/pkg/types"
)

// Dependencies are the collaborators a scan uses.
type Dependencies struct {
	Extractor metadata.Extractor
	Renderer  render.Renderer
	Log       logrus.FieldLogger
}

// NewDependencies builds the production extractor and renderer for cfg.
func NewDependencies(cfg types.AuditConfig, log logrus.FieldLogger) (Dependencies, error) {
	r, err := render.New(cfg.Render, log)
	if err != nil {
		return Dependencies{}, fmt.Errorf("configuring renderer: %w", err)
	}
	return Dependencies{
		Extractor: metadata.NewInfoExtractor(log),
		Renderer:  r,
		Log:       log,
	}, nil
}

// Result is everything a scan produced.
type Result struct {
	Root     string `json:"root" yaml:"root"`
	Output   string `json:"output" yaml:"output"`
	ImageDir string `json:"image_dir" yaml:"image_dir"`

	Build           metadata.BuildSummary `json:"build" yaml:"build"`
	DuplicateImages dedup.Summary         `json:"duplicate_images" yaml:"duplicate_images"`
	NoAuthorImages  dedup.Summary         `json:"no_author_images" yaml:"no_author_images"`
	Groups          []authors.Group       `json:"duplicate_authors" yaml:"duplicate_authors"`

	Metadata   types.Table `json:"metadata" yaml:"metadata"`
	Duplicates types.Table `json:"duplicates" yaml:"duplicates"`
	NoAuthor   types.Table `json:"no_author" yaml:"no_author"`
}

// Run scans cfg.Root and writes cfg.Report.Output. Unreadable files and
// render failures are logged and do not fail the run; a missing root, an
// existing image directory (unless cfg.ReuseImageDir) and workbook errors
// do.
func Run(ctx context.Context, cfg types.AuditConfig, deps Dependencies) (Result, error) {
	cfg = cfg.WithDefaults()
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	res := Result{Root: cfg.Root, Output: cfg.Report.Output, ImageDir: cfg.ImageDir}

	paths, err := scan.Discover(cfg.Root, log)
	if err != nil {
		return res, err
	}
	log.WithFields(logrus.Fields{"root": cfg.Root, "files": len(paths)}).Info("discovered submissions")

	res.Metadata, res.Build = metadata.BuildTable(deps.Extractor, paths, log)

	withAuthor, noAuthor := authors.Partition(res.Metadata)
	dups := authors.FindDuplicates(withAuthor)
	res.Groups = authors.Groups(dups)

	res.Duplicates, res.DuplicateImages, err = dedup.Deduplicate(ctx, dups, deps.Renderer, dedup.Options{}, log)
	if err != nil {
		return res, fmt.Errorf("comparing duplicate-author pages: %w", err)
	}

	if err := prepareImageDir(cfg.ImageDir, cfg.ReuseImageDir); err != nil {
		return res, err
	}
	res.NoAuthor, res.NoAuthorImages, err = dedup.Deduplicate(ctx, noAuthor, deps.Renderer, dedup.Options{SaveDir: cfg.ImageDir}, log)
	if err != nil {
		return res, fmt.Errorf("comparing no-author pages: %w", err)
	}

	if err := writeReport(cfg, res); err != nil {
		return res, err
	}

	log.WithFields(logrus.Fields{
		"output":      cfg.Report.Output,
		"submissions": res.Metadata.Len(),
		"duplicates":  res.Duplicates.Len(),
		"no_author":   res.NoAuthor.Len(),
	}).Info("scan finished")
	return res, nil
}

// prepareImageDir creates dir. An existing directory is an error unless
// reuse is set.
func prepareImageDir(dir string, reuse bool) error {
	err := os.Mkdir(dir, 0o755)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrExist) && reuse:
		info, statErr := os.Stat(dir)
		if statErr == nil && info.IsDir() {
			return nil
		}
		return fmt.Errorf("image directory %s exists and is not a directory", dir)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("image directory %s already exists (remove it or enable reuse_image_dir)", dir)
	default:
		return fmt.Errorf("creating image directory %s: %w", dir, err)
	}
}

func writeReport(cfg types.AuditConfig, res Result) error {
	wb := report.New()
	defer wb.Close()

	sheets := []struct {
		table types.Table
		name  string
	}{
		{res.Metadata, cfg.Report.MetadataSheet},
		{res.Duplicates, cfg.Report.DuplicateSheet},
		{res.NoAuthor, cfg.Report.NoAuthorSheet},
	}
	for _, s := range sheets {
		if err := wb.WriteSheet(s.table, s.name, cfg.Root); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return wb.SaveAs(cfg.Report.Output)
}
