package etext

// FontID identifies a font registered with [TextSystem.AddFont].
// IDs are chosen by the caller; registering the same ID twice replaces
// the font.
type FontID uint32

// AreaHandle identifies a text area owned by a [TextSystem]. Handles
// are never reused within a system's lifetime.
type AreaHandle uint32

// HorizontalAlign places lines of text within a text area's width.
// The zero value centers each line.
type HorizontalAlign uint8

const (
	AlignCenter HorizontalAlign = iota
	AlignLeft
	AlignRight
)

// VerticalAlign places the block of lines within a text area's height.
// The zero value centers the block.
type VerticalAlign uint8

const (
	AlignMiddle VerticalAlign = iota
	AlignTop
	AlignBottom
)

// TextArea is a rectangular region of text. Coordinates are in surface
// pixels with the origin at the top-left and y growing downward.
//
// Text wraps at word boundaries within Width, falling back to breaking
// inside a word when a single word is wider than the area. Newlines in
// Text always force a line break. Glyphs whose bitmaps fall entirely
// outside the area rectangle are culled at whole-glyph granularity;
// partially overlapping glyphs draw in full.
type TextArea struct {
	// X, Y is the top-left corner of the area.
	X float32
	Y float32

	// Width and Height bound layout and culling.
	Width  float32
	Height float32

	// Text is the string to display.
	Text string

	// Font selects a font previously registered with AddFont.
	Font FontID

	// Size is the pixel size glyphs are rasterized at.
	Size float32

	// LineHeight scales the font's natural line advance. Zero or
	// negative values are treated as 1.
	LineHeight float32

	// HAlign and VAlign position the text inside the area. The zero
	// values center it both ways.
	HAlign HorizontalAlign
	VAlign VerticalAlign

	// LeftOffset and TopOffset shift rendered glyphs without
	// affecting layout or culling. Useful for drop-shadow passes.
	LeftOffset float32
	TopOffset  float32
}

// lineHeightFactor returns the effective line height multiplier.
func (a *TextArea) lineHeightFactor() float32 {
	if a.LineHeight <= 0 {
		return 1
	}
	return a.LineHeight
}
