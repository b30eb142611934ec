// Package util provides utility functions for file operations.
package util

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileSize returns the on-disk byte size of path.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// IsGzipFile returns true if the file path indicates gzip compression.
func IsGzipFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

// Decompress layers gzip decoding over r when path indicates a
// compressed file, otherwise returns r unchanged. The returned cleanup
// function must be called when done reading; it does not close r.
func Decompress(r io.Reader, path string) (io.Reader, func() error, error) {
	if !IsGzipFile(path) {
		return r, func() error { return nil }, nil
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return gz, gz.Close, nil
}

// BaseFormat extracts the format extension after stripping compression.
// e.g., "ledger.json.gz" -> ".json", "ledger.json" -> ".json"
func BaseFormat(path string) string {
	return strings.ToLower(filepath.Ext(stripCompression(path)))
}

// stripCompression removes compression extensions (.gz) from a path.
func stripCompression(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".gz") {
		return path[:len(path)-3]
	}
	return path
}
