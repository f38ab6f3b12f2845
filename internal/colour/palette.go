package colour

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// RGBA implements color.Color with full opacity.
func (rgb RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}.RGBA()
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// ParseHex parses "#rrggbb" or "rrggbb" into an RGB value.
func ParseHex(s string) (RGB, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// Swatch is one palette entry: a centroid colour, its name and the share of pixels it covers.
type Swatch struct {
	RGB    RGB     `json:"rgb"`
	Hex    string  `json:"hex"`
	Name   string  `json:"name"`
	Pixels int     `json:"pixels"`
	Weight float64 `json:"weight"`
}

// Palette is the set of populated clusters from one clustering run, in cluster id order.
type Palette struct {
	Swatches []Swatch `json:"swatches"`
}

// NewPalette builds a palette from a clustering, naming each populated centroid with the catalog.
// Empty clusters are omitted.
func NewPalette(c *Clustering, cat *Catalog) *Palette {
	total := 0
	for _, ct := range c.Centroids {
		total += ct.Size
	}

	p := &Palette{Swatches: make([]Swatch, 0, len(c.Centroids))}
	for _, ct := range c.Centroids {
		if ct.Size == 0 {
			continue
		}
		rgb := c.Space.ToRGB(ct.Vector)
		p.Swatches = append(p.Swatches, Swatch{
			RGB:    rgb,
			Hex:    rgb.Hex(),
			Name:   cat.Name(rgb),
			Pixels: ct.Size,
			Weight: float64(ct.Size) / float64(total),
		})
	}
	return p
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	return len(p.Swatches)
}

// Counts aggregates the pixel coverage of each swatch by colour name.
func (p *Palette) Counts() map[string]int {
	counts := make(map[string]int, len(p.Swatches))
	for _, s := range p.Swatches {
		counts[s.Name] += s.Pixels
	}
	return counts
}

// ToHex converts the palette colors to hex strings.
func (p *Palette) ToHex() []string {
	hexColors := make([]string, len(p.Swatches))
	for i, s := range p.Swatches {
		hexColors[i] = s.Hex
	}
	return hexColors
}

// ToJSON converts the palette to JSON format.
func (p *Palette) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if len(p.Swatches) == 0 {
		return "Empty palette"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Palette with %d colors:\n", len(p.Swatches))
	for i, s := range p.Swatches {
		fmt.Fprintf(&b, "  %2d: %s %-14s %5.1f%%\n", i+1, s.Hex, s.Name, s.Weight*100)
	}
	return b.String()
}
