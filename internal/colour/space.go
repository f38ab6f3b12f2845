// Package colour provides colour clustering, naming and ranking for dominant colour extraction.
package colour

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	// ErrInvalidImage is returned for absent, zero-dimension or otherwise unusable rasters.
	ErrInvalidImage = errors.New("invalid image")

	// ErrSpaceMismatch is returned when vectors from different colour spaces are mixed in one run.
	ErrSpaceMismatch = errors.New("colour space mismatch")
)

// Space identifies the vector space pixels are clustered in.
type Space string

const (
	// SpaceLab clusters in CIE L*a*b* (D65). Euclidean distance there tracks perceived difference.
	SpaceLab Space = "lab"

	// SpaceRGB clusters directly on device RGB with channels in [0, 255].
	SpaceRGB Space = "rgb"
)

// ValidSpaces returns the supported clustering spaces.
func ValidSpaces() []Space {
	return []Space{SpaceLab, SpaceRGB}
}

// IsValidSpace checks if the given space name is supported.
func IsValidSpace(s Space) bool {
	for _, valid := range ValidSpaces() {
		if s == valid {
			return true
		}
	}
	return false
}

// ParseSpace converts a flag value into a Space.
func ParseSpace(name string) (Space, error) {
	s := Space(name)
	if !IsValidSpace(s) {
		return "", fmt.Errorf("unknown colour space: %s (valid spaces: %v)", name, ValidSpaces())
	}
	return s, nil
}

// Vector is a colour in a clustering space.
type Vector [3]float64

// sqDist returns the squared Euclidean distance between two vectors.
func (v Vector) sqDist(o Vector) float64 {
	d0 := v[0] - o[0]
	d1 := v[1] - o[1]
	d2 := v[2] - o[2]
	return d0*d0 + d1*d1 + d2*d2
}

// FromRGB maps an 8-bit RGB colour into the space.
func (s Space) FromRGB(rgb RGB) Vector {
	if s == SpaceRGB {
		return Vector{float64(rgb.R), float64(rgb.G), float64(rgb.B)}
	}
	l, a, b := colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}.Lab()
	return Vector{l, a, b}
}

// ToRGB maps a vector back to 8-bit RGB, clamping out-of-gamut values.
func (s Space) ToRGB(v Vector) RGB {
	var c colorful.Color
	if s == SpaceRGB {
		c = colorful.Color{R: v[0] / 255.0, G: v[1] / 255.0, B: v[2] / 255.0}
	} else {
		c = colorful.Lab(v[0], v[1], v[2])
	}
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// Raster is an image converted into a clustering space.
// Pix is row-major: the pixel at (x, y) is Pix[y*Width+x].
type Raster struct {
	Width  int
	Height int
	Space  Space
	Pix    []Vector
}

// Len returns the number of pixels in the raster.
func (r *Raster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Pix)
}

// ToRaster converts every pixel of img into the given space.
// The same image always yields the same raster.
func ToRaster(img image.Image, space Space) (*Raster, error) {
	if img == nil {
		return nil, ErrInvalidImage
	}
	if !IsValidSpace(space) {
		return nil, fmt.Errorf("unknown colour space: %s", space)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImage, w, h)
	}

	// Identical colours are common after quantization, so memoise conversions.
	memo := make(map[RGB]Vector)
	pix := make([]Vector, 0, w*h)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgb := ToRGB(img.At(x, y))
			v, ok := memo[rgb]
			if !ok {
				v = space.FromRGB(rgb)
				memo[rgb] = v
			}
			pix = append(pix, v)
		}
	}

	return &Raster{Width: w, Height: h, Space: space, Pix: pix}, nil
}

// ToImage converts the raster back to an RGBA image anchored at the origin.
func (r *Raster) ToImage() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for i, v := range r.Pix {
		rgb := r.Space.ToRGB(v)
		out.SetRGBA(i%r.Width, i/r.Width, color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255})
	}
	return out
}
