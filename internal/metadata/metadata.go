// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata reads authorship metadata from submitted PDFs and builds
// the per-run metadata table.
//
// Only the classic document information dictionary (trailer /Info) is read.
// XMP metadata streams are ignored, so PDF 2.0 files that carry authorship
// only in XMP show up as submissions without an author.
//
// rsc.io/pdf handles the common case. Files it rejects, such as PDF 2.0
// headers or AES-256 encryption, are read again with pdfcpu in relaxed mode.
package metadata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"
	"rsc.io/pdf"

	"github.com/pdiddy/authorcheck/pkg/types"
)

const pdfMIME = "application/pdf"

func init() {
	api.DisableConfigDir()
}

// Extractor reads the metadata of a single PDF. An error means the document
// could not be opened or parsed; missing fields are not errors.
type Extractor interface {
	Extract(path string) (types.Submission, error)
}

// InfoExtractor implements Extractor on top of rsc.io/pdf, falling back to
// pdfcpu for documents rsc.io/pdf cannot parse.
type InfoExtractor struct {
	log logrus.FieldLogger
}

// NewInfoExtractor returns an extractor that reports missing date fields to log.
func NewInfoExtractor(log logrus.FieldLogger) *InfoExtractor {
	return &InfoExtractor{log: log}
}

// infoFields are the raw information dictionary values of one document.
type infoFields struct {
	author, creationDate, modDate *string
}

// Extract opens path, checks that it really is a PDF, and reads /Author,
// /CreationDate and /ModDate from the information dictionary. An empty
// author is returned as nil. Absent dates are logged and returned as nil.
func (e *InfoExtractor) Extract(path string) (sub types.Submission, err error) {
	// Both parsers panic on some malformed cross-reference data.
	defer func() {
		if r := recover(); r != nil {
			sub = types.Submission{}
			err = fmt.Errorf("parsing %s: %v", path, r)
		}
	}()

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return types.Submission{}, fmt.Errorf("detecting content type of %s: %w", path, err)
	}
	if !mt.Is(pdfMIME) {
		return types.Submission{}, fmt.Errorf("%s is not a PDF (detected %s)", path, mt.String())
	}

	f, err := os.Open(path)
	if err != nil {
		return types.Submission{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return types.Submission{}, fmt.Errorf("stat %s: %w", path, err)
	}

	log := e.log.WithField("file", path)
	fields, err := readInfo(f, st.Size())
	if err != nil {
		log.WithError(err).Debug("retrying with relaxed parser")
		var relaxedErr error
		fields, relaxedErr = readInfoRelaxed(f)
		if relaxedErr != nil {
			return types.Submission{}, fmt.Errorf("parsing %s: %w (relaxed: %v)", path, err, relaxedErr)
		}
	}

	sub = types.Submission{Path: path, Author: fields.author}
	if sub.Author != nil && *sub.Author == "" {
		sub.Author = nil
	}
	sub.CreationDate = fields.creationDate
	if sub.CreationDate == nil {
		log.Warn("creation date cannot be read")
	}
	sub.ModDate = fields.modDate
	if sub.ModDate == nil {
		log.Warn("mod date cannot be read")
	}
	return sub, nil
}

func readInfo(f io.ReaderAt, size int64) (infoFields, error) {
	r, err := pdf.NewReader(f, size)
	if err != nil {
		return infoFields{}, err
	}
	info := r.Trailer().Key("Info")
	return infoFields{
		author:       textValue(info.Key("Author")),
		creationDate: textValue(info.Key("CreationDate")),
		modDate:      textValue(info.Key("ModDate")),
	}, nil
}

// textValue returns the decoded text of a string value, the PDF syntax of
// any other non-null value, and nil for a missing key.
func textValue(v pdf.Value) *string {
	if v.IsNull() {
		return nil
	}
	var s string
	if v.Kind() == pdf.String {
		s = v.Text()
	} else {
		s = v.String()
	}
	return &s
}

// readInfoRelaxed reads the information dictionary with pdfcpu. The context
// is not validated, so date strings come back exactly as stored.
func readInfoRelaxed(rs io.ReadSeeker) (infoFields, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return infoFields{}, err
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return infoFields{}, err
	}
	// pdfcpu repairs aggressively; a file with no catalog is not a document.
	if ctx.Root == nil {
		return infoFields{}, errors.New("no document catalog")
	}
	if ctx.Info == nil {
		return infoFields{}, nil
	}
	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		// A broken /Info reads as an empty one, as with rsc.io/pdf.
		return infoFields{}, nil
	}
	return infoFields{
		author:       relaxedValue(ctx.XRefTable, d["Author"]),
		creationDate: relaxedValue(ctx.XRefTable, d["CreationDate"]),
		modDate:      relaxedValue(ctx.XRefTable, d["ModDate"]),
	}, nil
}

// relaxedValue mirrors textValue for pdfcpu objects.
func relaxedValue(xt *model.XRefTable, o pdftypes.Object) *string {
	if o == nil {
		return nil
	}
	obj, err := xt.Dereference(o)
	if err != nil || obj == nil {
		return nil
	}
	var s string
	switch obj.(type) {
	case pdftypes.StringLiteral, pdftypes.HexLiteral:
		if s, err = xt.DereferenceStringOrHexLiteral(obj, model.V10, nil); err != nil {
			return nil
		}
	default:
		s = obj.PDFString()
	}
	return &s
}

// BuildSummary holds counts from a metadata table build.
type BuildSummary struct {
	Read         int `json:"read" yaml:"read"`
	Unreadable   int `json:"unreadable" yaml:"unreadable"`
	MissingDates int `json:"missing_dates" yaml:"missing_dates"`
}

// Total returns the number of files processed.
func (s BuildSummary) Total() int {
	return s.Read + s.Unreadable
}

// BuildTable extracts metadata for every path, in order. Files the extractor
// cannot open are logged and left out of the table.
func BuildTable(ex Extractor, paths []string, log logrus.FieldLogger) (types.Table, BuildSummary) {
	var summary BuildSummary
	table := make(types.Table, 0, len(paths))

	for _, p := range paths {
		sub, err := ex.Extract(p)
		if err != nil {
			log.WithField("file", p).WithError(err).Warn("cannot open")
			summary.Unreadable++
			continue
		}
		sub.Path = p
		if sub.CreationDate == nil || sub.ModDate == nil {
			summary.MissingDates++
		}
		table = append(table, sub)
		summary.Read++
	}

	for i := range table {
		table[i].Author = normalizeField(table[i].Author)
		table[i].CreationDate = normalizeField(table[i].CreationDate)
		table[i].ModDate = normalizeField(table[i].ModDate)
	}

	log.WithFields(logrus.Fields{
		"read":       summary.Read,
		"unreadable": summary.Unreadable,
	}).Info("metadata table built")
	return table, summary
}

// overflowTokens are spellings of IEEE infinities that can leak into
// metadata when a producer coerces a number into a text field.
var overflowTokens = map[string]bool{
	"inf":       true,
	"+inf":      true,
	"-inf":      true,
	"infinity":  true,
	"+infinity": true,
	"-infinity": true,
}

// normalizeField maps overflow sentinels to nil and leaves every other value
// untouched.
func normalizeField(v *string) *string {
	if v == nil {
		return nil
	}
	if overflowTokens[strings.ToLower(strings.TrimSpace(*v))] {
		return nil
	}
	return v
}
