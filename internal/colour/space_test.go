package colour

import (
	"errors"
	"image"
	"testing"
)

func TestParseSpace(t *testing.T) {
	for _, s := range ValidSpaces() {
		got, err := ParseSpace(string(s))
		if err != nil || got != s {
			t.Errorf("ParseSpace(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseSpace("hsv"); err == nil {
		t.Error("ParseSpace(hsv) expected error")
	}
}

func TestSpaceRoundTrip(t *testing.T) {
	samples := []RGB{
		{0, 0, 0},
		{255, 255, 255},
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
		{12, 200, 77},
		{128, 128, 128},
		{250, 128, 114},
	}

	for _, space := range ValidSpaces() {
		for _, rgb := range samples {
			if got := space.ToRGB(space.FromRGB(rgb)); got != rgb {
				t.Errorf("%s round trip of %s = %s", space, rgb.Hex(), got.Hex())
			}
		}
	}
}

func TestSpaceLabValues(t *testing.T) {
	white := SpaceLab.FromRGB(RGB{255, 255, 255})
	if !vectorsClose(white, Vector{1, 0, 0}, 1e-3) {
		t.Errorf("Lab(white) = %v, want ~[1 0 0]", white)
	}
	black := SpaceLab.FromRGB(RGB{})
	if !vectorsClose(black, Vector{0, 0, 0}, 1e-9) {
		t.Errorf("Lab(black) = %v, want [0 0 0]", black)
	}
}

func TestSpaceToRGBClampsOutOfGamut(t *testing.T) {
	got := SpaceRGB.ToRGB(Vector{300, -20, 128})
	if got != (RGB{255, 0, 128}) {
		t.Errorf("ToRGB() = %+v, want {255 0 128}", got)
	}
}

func TestToRaster(t *testing.T) {
	img := imageOf(3, 2,
		RGB{1, 2, 3}, RGB{4, 5, 6}, RGB{7, 8, 9},
		RGB{10, 11, 12}, RGB{13, 14, 15}, RGB{16, 17, 18},
	)

	r, err := ToRaster(img, SpaceRGB)
	if err != nil {
		t.Fatalf("ToRaster() error: %v", err)
	}
	if r.Width != 3 || r.Height != 2 || r.Len() != 6 {
		t.Fatalf("raster = %dx%d with %d pixels", r.Width, r.Height, r.Len())
	}
	if r.Pix[4] != (Vector{13, 14, 15}) {
		t.Errorf("Pix[4] = %v, want pixel (1,1)", r.Pix[4])
	}

	back := r.ToImage()
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if ToRGB(back.At(x, y)) != ToRGB(img.At(x, y)) {
				t.Errorf("pixel (%d,%d) changed in round trip", x, y)
			}
		}
	}
}

func TestToRasterOffsetBounds(t *testing.T) {
	img := solidImage(4, 4, RGB{9, 9, 9}).SubImage(image.Rect(1, 1, 3, 4))
	r, err := ToRaster(img, SpaceLab)
	if err != nil {
		t.Fatalf("ToRaster() error: %v", err)
	}
	if r.Width != 2 || r.Height != 3 {
		t.Errorf("raster = %dx%d, want 2x3", r.Width, r.Height)
	}
}

func TestToRasterInvalid(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{name: "nil", img: nil},
		{name: "zero width", img: image.NewRGBA(image.Rect(0, 0, 0, 5))},
		{name: "zero height", img: image.NewRGBA(image.Rect(0, 0, 5, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToRaster(tt.img, SpaceLab)
			if !errors.Is(err, ErrInvalidImage) {
				t.Errorf("ToRaster() error = %v, want ErrInvalidImage", err)
			}
		})
	}

	if _, err := ToRaster(solidImage(1, 1, RGB{}), Space("xyz")); err == nil {
		t.Error("ToRaster() with unknown space expected error")
	}
}
