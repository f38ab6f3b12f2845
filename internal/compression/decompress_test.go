package compression

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/prevalent/internal/security"
)

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func xzBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		file string
		want Format
	}{
		{name: "gzip magic", head: []byte{0x1f, 0x8b, 8}, file: "list.txt", want: FormatGzip},
		{name: "xz magic", head: []byte{0xfd, '7', 'z', 'X', 'Z', 0}, file: "list", want: FormatXz},
		{name: "bzip2 magic", head: []byte("BZh91AY"), file: "list", want: FormatBzip2},
		{name: "extension only", head: []byte("abc"), file: "LIST.XZ", want: FormatXz},
		{name: "plain text", head: []byte("https://"), file: "urls.txt", want: FormatNone},
		{name: "empty", head: nil, file: "urls.txt", want: FormatNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.head, tt.file); got != tt.want {
				t.Errorf("DetectFormat() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewReader(t *testing.T) {
	const content = "https://example.com/a.jpg\nhttps://example.com/b.jpg\n"

	tests := []struct {
		name string
		data []byte
	}{
		{name: "plain", data: []byte(content)},
		{name: "gzip", data: gzipBytes(t, content)},
		{name: "xz", data: xzBytes(t, content)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.data), "urls", 0)
			if err != nil {
				t.Fatalf("NewReader() error: %v", err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll() error: %v", err)
			}
			if string(got) != content {
				t.Errorf("content = %q, want %q", got, content)
			}
		})
	}
}

func TestNewReaderEmpty(t *testing.T) {
	r, err := NewReader(strings.NewReader(""), "empty.txt", 0)
	if err != nil {
		t.Fatalf("NewReader() error: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil || len(got) != 0 {
		t.Errorf("ReadAll() = %q, %v; want empty", got, err)
	}
}

func TestNewReaderLimit(t *testing.T) {
	data := xzBytes(t, strings.Repeat("x", 1024))
	r, err := NewReader(bytes.NewReader(data), "big.xz", 100)
	if err != nil {
		t.Fatalf("NewReader() error: %v", err)
	}
	if _, err := io.ReadAll(r); !errors.Is(err, security.ErrSizeLimit) {
		t.Errorf("ReadAll() error = %v, want ErrSizeLimit", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt.gz")
	if err := os.WriteFile(path, gzipBytes(t, "one\ntwo\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	rc, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil || string(got) != "one\ntwo\n" {
		t.Errorf("ReadAll() = %q, %v", got, err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing"), 0); err == nil {
		t.Error("expected error for missing file")
	}
}
