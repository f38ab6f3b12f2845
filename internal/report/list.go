// Package report reads image lists and writes per-image dominant colour records.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/prevalent/internal/compression"
)

// ListOptions controls how an input list is read.
type ListOptions struct {
	// Dedupe drops repeated identifiers, keeping the first occurrence.
	Dedupe bool
	// MaxBytes caps the decompressed size of the list. Zero uses the compression default.
	MaxBytes int64
}

// ReadList reads one identifier per line. Surrounding whitespace is trimmed,
// and blank lines and lines starting with '#' are skipped.
func ReadList(r io.Reader, opts ListOptions) ([]string, error) {
	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if opts.Dedupe {
			if seen[line] {
				continue
			}
			seen[line] = true
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list: %w", err)
	}
	return ids, nil
}

// ReadListFile reads an identifier list from path. Compressed lists
// (.xz, .gz, .bz2) are decompressed transparently.
func ReadListFile(path string, opts ListOptions) ([]string, error) {
	rc, err := compression.Open(path, opts.MaxBytes)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	ids, err := ReadList(rc, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ids, nil
}
