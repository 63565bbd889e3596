// Package source opens HTML input files for the CLIs.
package source

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotRegularFile is returned for directories and other non-file paths.
var ErrNotRegularFile = errors.New("not a regular file")

// Open opens path for reading. Missing, unreadable and non-regular paths are
// reported as errors wrapping the underlying fs error (fs.ErrNotExist,
// fs.ErrPermission) or ErrNotRegularFile. The caller closes the file.
func Open(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("open input: empty path")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat input %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("open input %s: %w", path, ErrNotRegularFile)
	}
	return f, nil
}
