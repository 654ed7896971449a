// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan discovers submitted PDF files under a directory tree.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const pdfExt = ".pdf"

// Discover walks root recursively and returns every regular file with a
// ".pdf" extension, in lexical walk order. Paths are joined onto root so
// they can later be made relative to it. Unreadable subdirectories are
// logged and skipped. Hidden entries (names starting with ".") are skipped
// along with everything beneath them, so AppleDouble files such as
// "._essay.pdf" never reach the metadata reader.
func Discover(root string, log logrus.FieldLogger) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.WithField("path", path).WithError(err).Warn("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path != root && isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if filepath.Ext(path) == pdfExt {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
