// Package ingest discovers processable documents on the filesystem, either
// by a one-shot directory scan or by watching for new arrivals.
package ingest

import (
	"io/fs"
	"path/filepath"

	"github.com/MohammedZaid-AI/docextract/constants"
)

// Scan walks dir and returns every file with a supported extension, in walk
// order.
func Scan(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if allowed(path) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func allowed(path string) bool {
	ext := constants.NormalizeExt(filepath.Ext(path))
	_, ok := constants.AllowedExtensions[ext]
	return ok
}
