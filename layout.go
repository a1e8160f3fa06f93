package etext

import (
	"strings"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// positionedGlyph is a shaped glyph placed on a baseline in surface
// coordinates. x, y is the pen position; the glyph bitmap is offset
// from it by its raster metrics.
type positionedGlyph struct {
	gid  uint16
	x, y float32
}

// wrappedLine is one laid-out line: glyphs with pen positions relative
// to the line start, plus the line's total width for alignment.
type wrappedLine struct {
	glyphs []lineGlyph
	width  float32
}

type lineGlyph struct {
	gid uint16
	x   float32
}

// layoutArea shapes, wraps, and aligns an area's text, producing
// baseline pen positions for every glyph. Newlines force breaks; lines
// longer than the area width break at the last word boundary, or
// mid-word when a single word overflows on its own.
func layoutArea(shaper *shaping.HarfbuzzShaper, f *Font, area *TextArea) []positionedGlyph {
	if area.Text == "" {
		return nil
	}

	face := font.NewFace(f.shaped)
	size := fixed.Int26_6(area.Size * 64)

	var (
		lines      []wrappedLine
		haveBounds bool
		bounds     shaping.Bounds
	)
	for _, paragraph := range strings.Split(area.Text, "\n") {
		if paragraph == "" {
			lines = append(lines, wrappedLine{})
			continue
		}
		runes := []rune(paragraph)
		out := shaper.Shape(shaping.Input{
			Text:      runes,
			RunStart:  0,
			RunEnd:    len(runes),
			Direction: di.DirectionLTR,
			Face:      face,
			Size:      size,
			Script:    detectScript(runes),
			Language:  language.NewLanguage("en"),
		})
		if !haveBounds {
			bounds = out.LineBounds
			haveBounds = true
		}
		lines = append(lines, wrapParagraph(out.Glyphs, runes, area.Width)...)
	}
	if !haveBounds {
		return nil
	}

	ascent := fixedToF32(bounds.Ascent)
	descent := fixedToF32(bounds.Descent) // negative below the baseline
	gap := fixedToF32(bounds.Gap)
	lineAdvance := (ascent - descent + gap) * area.lineHeightFactor()
	blockHeight := lineAdvance * float32(len(lines))

	baseline := area.Y + ascent
	switch area.VAlign {
	case AlignMiddle:
		baseline += (area.Height - blockHeight) / 2
	case AlignBottom:
		baseline += area.Height - blockHeight
	}

	var placed []positionedGlyph
	for _, line := range lines {
		x0 := area.X
		switch area.HAlign {
		case AlignCenter:
			x0 += (area.Width - line.width) / 2
		case AlignRight:
			x0 += area.Width - line.width
		}
		for _, g := range line.glyphs {
			placed = append(placed, positionedGlyph{
				gid: g.gid,
				x:   x0 + g.x,
				y:   baseline,
			})
		}
		baseline += lineAdvance
	}
	return placed
}

// wrapParagraph splits one shaped paragraph into lines no wider than
// maxWidth. Glyph positions within each line restart at zero. A
// non-positive maxWidth disables wrapping.
func wrapParagraph(glyphs []shaping.Glyph, runes []rune, maxWidth float32) []wrappedLine {
	var lines []wrappedLine

	start := 0 // first glyph of the current line
	for start < len(glyphs) {
		end := len(glyphs)
		lastBreak := -1 // glyph index after the most recent space
		var w float32
		for i := start; i < len(glyphs); i++ {
			adv := fixedToF32(glyphs[i].XAdvance)
			if maxWidth > 0 && w+adv > maxWidth && i > start {
				if lastBreak > start {
					end = lastBreak
				} else {
					end = i // single word wider than the area
				}
				break
			}
			w += adv
			if isSpaceCluster(glyphs[i], runes) {
				lastBreak = i + 1
			}
		}

		lines = append(lines, buildLine(glyphs[start:end], runes))

		// Skip the spaces the line broke on.
		start = end
		for start < len(glyphs) && isSpaceCluster(glyphs[start], runes) {
			start++
		}
	}
	if len(lines) == 0 {
		lines = append(lines, wrappedLine{})
	}
	return lines
}

// buildLine assigns relative pen positions and computes the line width,
// excluding trailing spaces so alignment ignores them.
func buildLine(glyphs []shaping.Glyph, runes []rune) wrappedLine {
	visibleEnd := len(glyphs)
	for visibleEnd > 0 && isSpaceCluster(glyphs[visibleEnd-1], runes) {
		visibleEnd--
	}

	line := wrappedLine{glyphs: make([]lineGlyph, 0, visibleEnd)}
	var pen float32
	for i := 0; i < visibleEnd; i++ {
		g := glyphs[i]
		line.glyphs = append(line.glyphs, lineGlyph{
			gid: uint16(g.GlyphID),
			x:   pen + fixedToF32(g.XOffset),
		})
		pen += fixedToF32(g.XAdvance)
	}
	line.width = pen
	return line
}

// isSpaceCluster reports whether a glyph maps back to a breakable
// space character.
func isSpaceCluster(g shaping.Glyph, runes []rune) bool {
	idx := g.ClusterIndex
	if idx < 0 || idx >= len(runes) {
		return false
	}
	return runes[idx] == ' ' || runes[idx] == '\t'
}

// detectScript inspects the runes and returns the script of the first
// non-space character. A simple heuristic; mixed-script text should be
// split into runs by the caller.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// fixedToF32 converts a 26.6 fixed-point value to float32.
func fixedToF32(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
