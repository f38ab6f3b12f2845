package colour

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrCatalog indicates a misconfigured colour name catalog. It is never a per-image condition.
var ErrCatalog = errors.New("invalid colour catalog")

// NamedColour is a reference swatch in a Catalog.
type NamedColour struct {
	Name string `json:"name"`
	RGB  RGB    `json:"rgb"`
}

// Catalog maps continuous colours to canonical names by nearest reference swatch.
// A Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	swatches []NamedColour
	index    map[string]int
}

// defaultSwatches is the built-in palette. Order matters only for exact distance ties.
var defaultSwatches = []NamedColour{
	{"Black", RGB{0x00, 0x00, 0x00}},
	{"DarkGray", RGB{0x40, 0x40, 0x40}},
	{"Gray", RGB{0x80, 0x80, 0x80}},
	{"LightGray", RGB{0xc0, 0xc0, 0xc0}},
	{"White", RGB{0xff, 0xff, 0xff}},
	{"Red", RGB{0xff, 0x00, 0x00}},
	{"DarkRed", RGB{0x8b, 0x00, 0x00}},
	{"Crimson", RGB{0xdc, 0x14, 0x3c}},
	{"Salmon", RGB{0xfa, 0x80, 0x72}},
	{"Coral", RGB{0xff, 0x7f, 0x50}},
	{"Pink", RGB{0xff, 0xc0, 0xcb}},
	{"HotPink", RGB{0xff, 0x69, 0xb4}},
	{"Orange", RGB{0xff, 0xa5, 0x00}},
	{"DarkOrange", RGB{0xff, 0x8c, 0x00}},
	{"Brown", RGB{0xa5, 0x2a, 0x2a}},
	{"SaddleBrown", RGB{0x8b, 0x45, 0x13}},
	{"Tan", RGB{0xd2, 0xb4, 0x8c}},
	{"Beige", RGB{0xf5, 0xf5, 0xdc}},
	{"Gold", RGB{0xff, 0xd7, 0x00}},
	{"Yellow", RGB{0xff, 0xff, 0x00}},
	{"Khaki", RGB{0xf0, 0xe6, 0x8c}},
	{"Olive", RGB{0x80, 0x80, 0x00}},
	{"YellowGreen", RGB{0x9a, 0xcd, 0x32}},
	{"LightGreen", RGB{0x90, 0xee, 0x90}},
	{"Green", RGB{0x00, 0xff, 0x00}},
	{"ForestGreen", RGB{0x22, 0x8b, 0x22}},
	{"DarkGreen", RGB{0x00, 0x64, 0x00}},
	{"Teal", RGB{0x00, 0x80, 0x80}},
	{"Turquoise", RGB{0x40, 0xe0, 0xd0}},
	{"Cyan", RGB{0x00, 0xff, 0xff}},
	{"LightBlue", RGB{0xad, 0xd8, 0xe6}},
	{"SkyBlue", RGB{0x87, 0xce, 0xeb}},
	{"SteelBlue", RGB{0x46, 0x82, 0xb4}},
	{"RoyalBlue", RGB{0x41, 0x69, 0xe1}},
	{"Blue", RGB{0x00, 0x00, 0xff}},
	{"Navy", RGB{0x00, 0x00, 0x80}},
	{"Indigo", RGB{0x4b, 0x00, 0x82}},
	{"Purple", RGB{0x80, 0x00, 0x80}},
	{"Violet", RGB{0xee, 0x82, 0xee}},
	{"Magenta", RGB{0xff, 0x00, 0xff}},
	{"Plum", RGB{0xdd, 0xa0, 0xdd}},
	{"Lavender", RGB{0xe6, 0xe6, 0xfa}},
}

var defaultCatalog = mustCatalog(defaultSwatches)

// DefaultCatalog returns the shared built-in catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// NewCatalog builds a catalog from the given swatches.
// Names must be non-empty and unique ignoring case.
func NewCatalog(swatches []NamedColour) (*Catalog, error) {
	if len(swatches) == 0 {
		return nil, fmt.Errorf("%w: no swatches", ErrCatalog)
	}

	c := &Catalog{
		swatches: make([]NamedColour, len(swatches)),
		index:    make(map[string]int, len(swatches)),
	}
	copy(c.swatches, swatches)

	for i, s := range c.swatches {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: swatch %d has no name", ErrCatalog, i)
		}
		key := strings.ToLower(s.Name)
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrCatalog, s.Name)
		}
		c.index[key] = i
	}
	return c, nil
}

func mustCatalog(swatches []NamedColour) *Catalog {
	c, err := NewCatalog(swatches)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of swatches.
func (c *Catalog) Len() int {
	return len(c.swatches)
}

// Swatches returns a copy of the catalog entries in catalog order.
func (c *Catalog) Swatches() []NamedColour {
	out := make([]NamedColour, len(c.swatches))
	copy(out, c.swatches)
	return out
}

// Names returns the swatch names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.swatches))
	for i, s := range c.swatches {
		names[i] = s.Name
	}
	return names
}

// Name returns the name of the swatch closest to rgb by Euclidean RGB distance.
// Every colour gets exactly one name; exact ties go to the earlier swatch.
func (c *Catalog) Name(rgb RGB) string {
	best := -1
	bestDist := math.MaxInt
	for i, s := range c.swatches {
		dr := int(rgb.R) - int(s.RGB.R)
		dg := int(rgb.G) - int(s.RGB.G)
		db := int(rgb.B) - int(s.RGB.B)
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 {
		// Unreachable for catalogs built by NewCatalog.
		panic(fmt.Errorf("%w: no swatch matched %s", ErrCatalog, rgb.Hex()))
	}
	return c.swatches[best].Name
}

// Lookup returns the swatch with the given name, ignoring case.
func (c *Catalog) Lookup(name string) (NamedColour, bool) {
	i, ok := c.index[strings.ToLower(name)]
	if !ok {
		return NamedColour{}, false
	}
	return c.swatches[i], true
}

// Resolve turns a colour name or hex value into a canonical catalog name.
// Hex values resolve to the name of their nearest swatch.
func (c *Catalog) Resolve(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("empty colour")
	}
	if s, ok := c.Lookup(value); ok {
		return s.Name, nil
	}
	if strings.HasPrefix(value, "#") {
		rgb, err := ParseHex(value)
		if err != nil {
			return "", err
		}
		return c.Name(rgb), nil
	}
	return "", fmt.Errorf("unknown colour %q (use a catalog name or #rrggbb)", value)
}
