// Package compression opens plain or compressed input files as a single stream.
package compression

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/prevalent/internal/security"
)

// DefaultMaxBytes caps the decompressed size of an input file.
const DefaultMaxBytes int64 = 100 * 1024 * 1024

// Format identifies the compression of an input stream.
type Format string

const (
	FormatNone  Format = "none"
	FormatGzip  Format = "gzip"
	FormatXz    Format = "xz"
	FormatBzip2 Format = "bzip2"
)

var magic = []struct {
	format Format
	prefix []byte
}{
	{FormatGzip, []byte{0x1f, 0x8b}},
	{FormatXz, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{FormatBzip2, []byte("BZh")},
}

// DetectFormat reports the format of a stream from its leading bytes,
// falling back to the file extension of name.
func DetectFormat(head []byte, name string) Format {
	for _, m := range magic {
		if bytes.HasPrefix(head, m.prefix) {
			return m.format
		}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		return FormatGzip
	case ".xz":
		return FormatXz
	case ".bz2":
		return FormatBzip2
	}
	return FormatNone
}

// NewReader wraps r so that compressed content is decompressed transparently.
// The decompressed stream is limited to maxBytes; reading past it fails with
// security.ErrSizeLimit. A maxBytes of zero selects DefaultMaxBytes.
func NewReader(r io.Reader, name string, maxBytes int64) (io.Reader, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	br := bufio.NewReader(r)
	head, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var dr io.Reader
	switch DetectFormat(head, name) {
	case FormatGzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		dr = gzr
	case FormatXz:
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		dr = xzr
	case FormatBzip2:
		dr = bzip2.NewReader(br)
	default:
		dr = br
	}

	return security.NewLimitedReader(dr, maxBytes), nil
}

// Open opens path for reading, decompressing it if needed.
func Open(path string, maxBytes int64) (io.ReadCloser, error) {
	f, err := os.Open(path) // #nosec G304 - User-specified input list, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	r, err := NewReader(f, path, maxBytes)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return struct {
		io.Reader
		io.Closer
	}{r, f}, nil
}
