// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup clusters submissions whose rendered first page is
// pixel-identical.
//
// Clustering is a single online pass. Images seen once are kept in a list of
// unmatched candidates; the first time a second file matches one of them a
// cluster is opened with that image as its representative, and any later
// file matching the representative joins the cluster. Cluster tags are
// assigned sequentially from 0 in discovery order and never change.
package dedup

import (
	"bytes"
	"context"
	"image"
	"slices"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/authorcheck/internal/render"
	"github.com/pdiddy/authorcheck/pkg/types"
)

// Options controls a deduplication pass.
type Options struct {
	// SaveDir, when set, receives every rendered page as <stem>.png.
	SaveDir string
}

// Summary holds counts from a deduplication pass.
type Summary struct {
	Rendered int `json:"rendered" yaml:"rendered"`
	Failed   int `json:"failed" yaml:"failed"`
	Clusters int `json:"clusters" yaml:"clusters"`
	Matched  int `json:"matched" yaml:"matched"`
}

// candidate is an image seen exactly once so far.
type candidate struct {
	row int
	img *image.NRGBA
}

// Deduplicate renders every row of t with r and returns a copy of t in which
// rows whose page matches another row carry a shared ImageMatch tag.
//
// Rows that fail to render are logged and stay untagged. The result is
// sorted by (tag, ModDate) when any row was tagged and by ModDate otherwise;
// nil sorts last in both keys. The only error returned is ctx's.
func Deduplicate(ctx context.Context, t types.Table, r render.Renderer, opts Options, log logrus.FieldLogger) (types.Table, Summary, error) {
	out := t.Clone()
	var (
		summary  Summary
		unique   []candidate
		clusters []*image.NRGBA
	)

	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, summary, err
		}

		path := out[i].Path
		flog := log.WithField("file", path)

		img, err := r.Render(ctx, path)
		if err != nil {
			flog.WithError(err).Warn("cannot convert to png")
			summary.Failed++
			continue
		}
		summary.Rendered++

		if opts.SaveDir != "" {
			if err := render.Save(img, render.PNGPath(path, opts.SaveDir)); err != nil {
				flog.WithError(err).Warn("figure cannot be saved as png")
			}
		}

		page := normalize(img)

		if tag := slices.IndexFunc(clusters, func(rep *image.NRGBA) bool { return equalNRGBA(rep, page) }); tag >= 0 {
			out[i].ImageMatch = types.IntPtr(tag)
			summary.Matched++
			flog.WithField("tag", tag).Info("image matches existing cluster")
			continue
		}

		if j := slices.IndexFunc(unique, func(c candidate) bool { return equalNRGBA(c.img, page) }); j >= 0 {
			first := unique[j]
			tag := len(clusters)
			clusters = append(clusters, first.img)
			unique = slices.Delete(unique, j, j+1)

			out[first.row].ImageMatch = types.IntPtr(tag)
			out[i].ImageMatch = types.IntPtr(tag)
			summary.Matched += 2
			flog.WithFields(logrus.Fields{
				"tag":   tag,
				"match": out[first.row].Path,
			}).Info("new image cluster")
			continue
		}

		unique = append(unique, candidate{row: i, img: page})
	}
	summary.Clusters = len(clusters)

	if out.HasImageMatches() {
		slices.SortStableFunc(out, func(a, b types.Submission) int {
			if c := types.CompareOptional(a.ImageMatch, b.ImageMatch); c != 0 {
				return c
			}
			return types.CompareOptional(a.ModDate, b.ModDate)
		})
	} else {
		out.SortByModDate()
	}
	return out, summary, nil
}

// Equal reports whether a and b have the same size and identical pixels.
// Both are compared in NRGBA so that, for example, a paletted and an RGBA
// encoding of the same page are equal.
func Equal(a, b image.Image) bool {
	return equalNRGBA(normalize(a), normalize(b))
}

func normalize(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	return imaging.Clone(img)
}

// equalNRGBA compares two images produced by normalize, which guarantees a
// zero origin and a stride of exactly 4 bytes per pixel.
func equalNRGBA(a, b *image.NRGBA) bool {
	if a.Rect.Size() != b.Rect.Size() {
		return false
	}
	n := a.Rect.Dy() * a.Stride
	return bytes.Equal(a.Pix[:n], b.Pix[:n])
}
