package etext

import (
	"errors"

	"github.com/gogpu/etext/internal/atlas"
)

// Sentinel errors returned by the text system. Wrapped errors carry
// additional context; test with [errors.Is].
var (
	// ErrNilDevice is returned by New when the device or queue is nil.
	ErrNilDevice = errors.New("etext: nil device or queue")

	// ErrEmptyFontData is returned by AddFont for empty font data.
	ErrEmptyFontData = errors.New("etext: empty font data")

	// ErrFontNotFound is returned by Render when a text area references
	// a font that was never registered with AddFont.
	ErrFontNotFound = errors.New("etext: font not found")
)

// GlyphTooLargeError is returned by Render when a single glyph bitmap
// exceeds the maximum atlas size and can never be cached. The text
// system remains usable; the offending area keeps its previous
// geometry. Test with [errors.As].
type GlyphTooLargeError = atlas.GlyphTooLargeError
