// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package testsupport builds PDF and image fixtures for package tests.
package testsupport

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf16"
)

// PDFInfo describes the document information dictionary of a fixture. A nil
// field leaves the key out of the dictionary entirely.
type PDFInfo struct {
	Author       *string
	CreationDate *string
	ModDate      *string
	// OmitInfo drops the /Info entry from the trailer.
	OmitInfo bool
	// Pages is the page count (default 1).
	Pages int
	// Version is the header version, such as "2.0" (default "1.4").
	Version string
}

// Str returns a pointer to s, for building PDFInfo literals.
func Str(s string) *string { return &s }

// WritePDF writes a minimal, well-formed PDF to path and returns path.
func WritePDF(t testing.TB, path string, info PDFInfo) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, BuildPDF(info), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// BuildPDF returns the bytes of a minimal PDF carrying info.
func BuildPDF(info PDFInfo) []byte {
	pages := info.Pages
	if pages == 0 {
		pages = 1
	}
	if pages < 0 {
		pages = 0
	}

	// 1 catalog, 2 page tree, 3 info, 4 content stream, 5.. pages.
	content := "0 0 1 rg 10 10 50 50 re f"
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 5+i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))

	var dict strings.Builder
	dict.WriteString("<<")
	writeEntry(&dict, "Author", info.Author)
	writeEntry(&dict, "CreationDate", info.CreationDate)
	writeEntry(&dict, "ModDate", info.ModDate)
	dict.WriteString(" /Producer (testsupport) >>")
	objs = append(objs, dict.String())

	objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	for range pages {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Resources << >> /Contents 4 0 R >>")
	}

	var buf bytes.Buffer
	version := info.Version
	if version == "" {
		version = "1.4"
	}
	fmt.Fprintf(&buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", version)
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := fmt.Sprintf("<< /Size %d /Root 1 0 R", len(objs)+1)
	if !info.OmitInfo {
		trailer += " /Info 3 0 R"
	}
	trailer += " >>"
	fmt.Fprintf(&buf, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer, xref)
	return buf.Bytes()
}

func writeEntry(b *strings.Builder, key string, value *string) {
	if value == nil {
		return
	}
	fmt.Fprintf(b, " /%s %s", key, pdfString(*value))
}

// pdfString encodes s as a literal string when it is ASCII and as a UTF-16BE
// hex string with a byte order mark otherwise.
func pdfString(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
		return "(" + r.Replace(s) + ")"
	}
	units := utf16.Encode([]rune(s))
	raw := make([]byte, 0, 2+2*len(units))
	raw = append(raw, 0xfe, 0xff)
	for _, u := range units {
		raw = append(raw, byte(u>>8), byte(u))
	}
	return "<" + hex.EncodeToString(raw) + ">"
}

// SolidImage returns a w×h image filled with c.
func SolidImage(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}
