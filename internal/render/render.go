// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render rasterizes the first page of a PDF so submissions can be
// compared visually. Rasterization is delegated to poppler's pdftoppm, run
// natively or inside a container image.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/authorcheck/internal/container"
	"github.com/pdiddy/authorcheck/pkg/types"
)

// ErrNoPage is returned when a document has no page to render.
var ErrNoPage = errors.New("document has no pages")

// Renderer rasterizes page 1 of a PDF.
type Renderer interface {
	Render(ctx context.Context, pdfPath string) (image.Image, error)
}

// PageCounter reports how many pages a PDF has.
type PageCounter interface {
	PageCount(pdfPath string) (int, error)
}

func init() {
	// pdfcpu otherwise writes a config directory under the user's home.
	api.DisableConfigDir()
}

// PdfcpuCounter counts pages with pdfcpu.
type PdfcpuCounter struct{}

func (PdfcpuCounter) PageCount(pdfPath string) (int, error) {
	return api.PageCountFile(pdfPath)
}

// PopplerRenderer renders with pdftoppm through a container.Runner. The PDF
// is piped on stdin and the PNG read from stdout, so the same arguments work
// for a native binary and a containerized one.
type PopplerRenderer struct {
	runner container.Runner
	pages  PageCounter
	dpi    int
	log    logrus.FieldLogger
}

// NewPopplerRenderer returns a renderer that runs runner at dpi. pages may be
// nil to skip the page count check.
func NewPopplerRenderer(runner container.Runner, pages PageCounter, dpi int, log logrus.FieldLogger) *PopplerRenderer {
	if dpi <= 0 {
		dpi = types.DefaultDPI
	}
	return &PopplerRenderer{runner: runner, pages: pages, dpi: dpi, log: log}
}

// New builds the renderer described by cfg. A missing backend is not an
// error here: it is logged once and every Render call then fails, leaving
// metadata results intact.
func New(cfg types.RenderConfig, log logrus.FieldLogger) (*PopplerRenderer, error) {
	var runner container.Runner
	switch cfg.Backend {
	case types.BackendNative, "":
		runner = container.NewTool(cfg.Binary)
	case types.BackendContainer:
		rt, err := container.DetectRuntime()
		if err != nil {
			runner = unavailable{name: cfg.Binary, err: err}
		} else {
			runner = container.InImage(rt, cfg.Image, cfg.Binary)
		}
	default:
		return nil, fmt.Errorf("unsupported render backend %q: use native or container", cfg.Backend)
	}

	if !runner.Available() {
		log.WithField("renderer", runner.Name()).Warn("renderer not available; image comparison will be skipped")
	}
	return NewPopplerRenderer(runner, PdfcpuCounter{}, cfg.DPI, log), nil
}

// Render rasterizes page 1 of pdfPath.
func (r *PopplerRenderer) Render(ctx context.Context, pdfPath string) (image.Image, error) {
	if r.pages != nil {
		n, err := r.pages.PageCount(pdfPath)
		switch {
		case err != nil:
			// pdfcpu is stricter than poppler; let pdftoppm decide.
			r.log.WithField("file", pdfPath).WithError(err).Debug("page count unavailable")
		case n == 0:
			return nil, ErrNoPage
		}
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := r.runner.Exec(ctx, r.args(), f, &out); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", pdfPath, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("rendering %s: %w", pdfPath, ErrNoPage)
	}

	img, err := imaging.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("decoding rendered page of %s: %w", pdfPath, err)
	}
	return img, nil
}

func (r *PopplerRenderer) args() []string {
	return []string{
		"-png",
		"-f", "1",
		"-l", "1",
		"-singlefile",
		"-r", strconv.Itoa(r.dpi),
		"-",
	}
}

// Save writes img to path as PNG, creating parent directories.
func Save(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// PNGPath returns dir/<stem of origin>.png.
func PNGPath(origin, dir string) string {
	base := filepath.Base(origin)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+".png")
}

// unavailable is a Runner standing in for a backend that could not be set up.
type unavailable struct {
	name string
	err  error
}

func (u unavailable) Name() string    { return u.name }
func (u unavailable) Available() bool { return false }

func (u unavailable) Exec(context.Context, []string, io.Reader, io.Writer) error {
	return u.err
}
