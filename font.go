package etext

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/etext/internal/atlas"
)

// Font is a parsed font ready for shaping and rasterization. The same
// data is parsed twice: go-text/typesetting drives HarfBuzz shaping,
// x/image/font/sfnt provides glyph outlines for rasterization.
type Font struct {
	// shaped is the go-text font used for shaping. The *font.Font is
	// read-only; lightweight font.Face wrappers are created per use.
	shaped *font.Font

	// raster provides glyph outlines. LoadGlyph calls share buf, which
	// makes Font unsafe for concurrent use.
	raster *sfnt.Font
	buf    sfnt.Buffer
}

// newFont parses TTF or OTF font data.
func newFont(data []byte) (*Font, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font outlines: %w", err)
	}
	return &Font{shaped: face.Font, raster: sf}, nil
}

// rasterize renders a glyph at the given pixel size into an 8-bit
// coverage bitmap. Glyphs without an outline (space, newline) return
// zero metrics and a nil bitmap.
//
// Metrics.Left and Metrics.Top position the bitmap relative to the pen:
// the bitmap's top-left corner sits at (penX+Left, baselineY+Top), with
// Top negative for glyphs that rise above the baseline.
func (f *Font) rasterize(gid uint16, px float32) (atlas.Metrics, []byte, error) {
	ppem := fixed.Int26_6(px * 64)
	segs, err := f.raster.LoadGlyph(&f.buf, sfnt.GlyphIndex(gid), ppem, nil)
	if err != nil {
		return atlas.Metrics{}, nil, fmt.Errorf("load glyph %d: %w", gid, err)
	}
	if len(segs) == 0 {
		return atlas.Metrics{}, nil, nil
	}

	minX, minY, maxX, maxY := segmentBounds(segs)
	left := minX.Floor()
	top := minY.Floor()
	w := maxX.Ceil() - left
	h := maxY.Ceil() - top
	if w <= 0 || h <= 0 {
		return atlas.Metrics{}, nil, nil
	}

	// The vector rasterizer wants coordinates in the positive quadrant,
	// so every point is translated by (-left, -top).
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	var open bool
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X)/64 - float32(left), float32(p.Y)/64 - float32(top)
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				z.ClosePath()
			}
			x, y := pt(seg.Args[0])
			z.MoveTo(x, y)
			open = true
		case sfnt.SegmentOpLineTo:
			x, y := pt(seg.Args[0])
			z.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			cx, cy := pt(seg.Args[0])
			x, y := pt(seg.Args[1])
			z.QuadTo(cx, cy, x, y)
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := pt(seg.Args[0])
			c2x, c2y := pt(seg.Args[1])
			x, y := pt(seg.Args[2])
			z.CubeTo(c1x, c1y, c2x, c2y, x, y)
		}
	}
	if open {
		z.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	m := atlas.Metrics{Width: w, Height: h, Left: left, Top: top}
	return m, mask.Pix, nil
}

// segmentBounds returns the bounding box of an outline in 26.6 fixed
// point. Curve control points are included, which can overestimate the
// box slightly; the extra pixels rasterize as zero coverage.
func segmentBounds(segs sfnt.Segments) (minX, minY, maxX, maxY fixed.Int26_6) {
	const big = fixed.Int26_6(1 << 30)
	minX, minY = big, big
	maxX, maxY = -big, -big

	update := func(p fixed.Point26_6) {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo, sfnt.SegmentOpLineTo:
			update(seg.Args[0])
		case sfnt.SegmentOpQuadTo:
			update(seg.Args[0])
			update(seg.Args[1])
		case sfnt.SegmentOpCubeTo:
			update(seg.Args[0])
			update(seg.Args[1])
			update(seg.Args[2])
		}
	}
	return minX, minY, maxX, maxY
}
