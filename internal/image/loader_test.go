package image

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "red.png")
	writePNG(t, good, 3, 2, color.RGBA{R: 255, A: 255})

	bad := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := NewFileLoader()

	img, err := loader.Load(context.Background(), good)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", good, err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("Load() bounds = %v, want 3x2", b)
	}

	tests := []struct {
		name        string
		path        string
		wantInvalid bool
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(dir, "nope.png")},
		{name: "directory", path: dir},
		{name: "undecodable", path: bad, wantInvalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(context.Background(), tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrInvalidImage); got != tt.wantInvalid {
				t.Errorf("errors.Is(err, ErrInvalidImage) = %v, want %v (err: %v)", got, tt.wantInvalid, err)
			}
		})
	}
}

func TestValidateImagePath(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "ok.png")
	writePNG(t, good, 1, 1, color.White)
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("xx"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path    string
		wantErr bool
	}{
		{path: good},
		{path: "https://example.com/x.png"},
		{path: "", wantErr: true},
		{path: bad, wantErr: true},
		{path: dir, wantErr: true},
		{path: filepath.Join(dir, "missing.png"), wantErr: true},
	}

	for _, tt := range tests {
		err := ValidateImagePath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateImagePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestScanDirectoryForImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 1, 1, color.Black)
	writePNG(t, filepath.Join(dir, "a.PNG"), 1, 1, color.Black)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ScanDirectoryForImages(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryForImages() error: %v", err)
	}
	want := []string{filepath.Join(dir, "a.PNG"), filepath.Join(dir, "b.png")}
	if len(got) != len(want) {
		t.Fatalf("ScanDirectoryForImages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := ScanDirectoryForImages(t.TempDir()); err == nil {
		t.Error("expected error for directory without images")
	}
}

func TestSmartLoaderURL(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "served.png")
	writePNG(t, src, 4, 4, color.RGBA{B: 255, A: 255})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/garbage.png" {
			_, _ = w.Write([]byte("garbage"))
			return
		}
		http.ServeFile(w, r, src)
	}))
	defer srv.Close()

	loaders := map[string]*SmartLoader{
		"direct": NewSmartLoader(),
		"cached": NewSmartLoader(WithCacheDir(filepath.Join(dir, "cache"))),
	}

	for name, loader := range loaders {
		t.Run(name, func(t *testing.T) {
			img, err := loader.Load(context.Background(), srv.URL+"/served.png")
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
				t.Errorf("Load() bounds = %v, want 4x4", b)
			}

			_, err = loader.Load(context.Background(), srv.URL+"/garbage.png")
			if !errors.Is(err, ErrInvalidImage) {
				t.Errorf("Load(garbage) error = %v, want ErrInvalidImage", err)
			}
		})
	}
}
