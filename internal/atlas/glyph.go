package atlas

import "github.com/gogpu/etext/internal/packer"

// Key identifies a rasterized glyph. Glyphs are cached per font, pixel
// size, and glyph index, so the same character at two sizes occupies
// two cache entries.
type Key struct {
	// Font is the identifier assigned to the font by the owner.
	Font uint32

	// Size is the pixel size the glyph was rasterized at.
	Size uint16

	// Index is the glyph index within the font, as produced by shaping.
	Index uint16
}

// Metrics describes a glyph bitmap and its placement relative to the
// pen position on the baseline.
type Metrics struct {
	// Width and Height are the bitmap dimensions in pixels. A glyph
	// with zero width or height has no raster coverage (space, newline).
	Width  int
	Height int

	// Left is the horizontal offset from the pen to the bitmap's left
	// edge.
	Left int

	// Top is the vertical offset from the baseline to the bitmap's top
	// edge. Negative values place the bitmap above the baseline, which
	// is the common case in a y-down coordinate system.
	Top int
}

// Glyph is a cached glyph. Visible glyphs hold a region inside the
// atlas texture; invisible glyphs are cached without any allocation so
// repeated lookups skip rasterization.
type Glyph struct {
	Metrics Metrics

	// X, Y is the glyph's top-left corner inside the atlas texture.
	// Only meaningful when Allocated is true.
	X int
	Y int

	// Allocated reports whether the glyph occupies atlas space.
	Allocated bool

	allocID packer.AllocID

	// bitmap holds the coverage data, Width*Height bytes, one byte per
	// pixel. Retained so the glyph can be re-blitted when the atlas
	// grows. Nil for invisible glyphs.
	bitmap []byte
}

// Visible reports whether the glyph has raster coverage and therefore
// occupies atlas space and produces vertices.
func (g *Glyph) Visible() bool {
	return g.Metrics.Width > 0 && g.Metrics.Height > 0
}
