package colour

import (
	"errors"
	"sync"
	"testing"
)

func TestCatalogName(t *testing.T) {
	cat := DefaultCatalog()

	tests := []struct {
		rgb  RGB
		want string
	}{
		{RGB{255, 0, 0}, "Red"},
		{RGB{0, 255, 0}, "Green"},
		{RGB{0, 0, 255}, "Blue"},
		{RGB{255, 255, 255}, "White"},
		{RGB{250, 250, 250}, "White"},
		{RGB{0, 0, 0}, "Black"},
		{RGB{70, 70, 70}, "DarkGray"},
		{RGB{255, 255, 10}, "Yellow"},
		{RGB{0, 0, 120}, "Navy"},
	}

	for _, tt := range tests {
		t.Run(tt.rgb.Hex(), func(t *testing.T) {
			if got := cat.Name(tt.rgb); got != tt.want {
				t.Errorf("Name(%s) = %s, want %s", tt.rgb.Hex(), got, tt.want)
			}
		})
	}
}

func TestCatalogNameIsTotal(t *testing.T) {
	cat := DefaultCatalog()
	known := make(map[string]bool)
	for _, n := range cat.Names() {
		known[n] = true
	}

	// Walk a coarse lattice of the RGB cube including its corners.
	for r := 0; r <= 255; r += 15 {
		for g := 0; g <= 255; g += 15 {
			for b := 0; b <= 255; b += 15 {
				name := cat.Name(RGB{uint8(r), uint8(g), uint8(b)})
				if !known[name] {
					t.Fatalf("Name(%d,%d,%d) = %q, not a catalog name", r, g, b, name)
				}
			}
		}
	}
}

func TestCatalogTiesGoToEarlierSwatch(t *testing.T) {
	cat, err := NewCatalog([]NamedColour{
		{Name: "Low", RGB: RGB{0, 0, 0}},
		{Name: "High", RGB: RGB{2, 2, 2}},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error: %v", err)
	}
	if got := cat.Name(RGB{1, 1, 1}); got != "Low" {
		t.Errorf("Name() = %s, want Low", got)
	}
}

func TestNewCatalogRejectsMisconfiguration(t *testing.T) {
	tests := []struct {
		name     string
		swatches []NamedColour
	}{
		{name: "empty", swatches: nil},
		{name: "unnamed", swatches: []NamedColour{{RGB: RGB{1, 2, 3}}}},
		{name: "duplicate", swatches: []NamedColour{{Name: "Red"}, {Name: "red"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.swatches)
			if !errors.Is(err, ErrCatalog) {
				t.Errorf("NewCatalog() error = %v, want ErrCatalog", err)
			}
		})
	}
}

func TestCatalogResolve(t *testing.T) {
	cat := DefaultCatalog()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "White", want: "White"},
		{in: "white", want: "White"},
		{in: " darkgray ", want: "DarkGray"},
		{in: "#ffffff", want: "White"},
		{in: "#fefefe", want: "White"},
		{in: "#f00", want: "Red"},
		{in: "Chartreuse", wantErr: true},
		{in: "", wantErr: true},
		{in: "#nothex", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := cat.Resolve(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q) = %q, expected error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCatalogConcurrentReads(t *testing.T) {
	cat := DefaultCatalog()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range 256 {
				_ = cat.Name(RGB{uint8(v), uint8(i * 30), uint8(255 - v)})
			}
		}()
	}
	wg.Wait()
}
