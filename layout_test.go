package etext

import (
	"testing"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// fakeGlyph builds a shaped glyph with a fixed advance in pixels,
// mapped back to the given rune index.
func fakeGlyph(gid uint16, cluster int, advance float32) shaping.Glyph {
	return shaping.Glyph{
		GlyphID:      font.GID(gid),
		ClusterIndex: cluster,
		XAdvance:     fixed.Int26_6(advance * 64),
	}
}

// fakeWord appends one glyph per rune of word, each width px wide.
func fakeWord(glyphs []shaping.Glyph, word string, start int, px float32) []shaping.Glyph {
	for i := range word {
		glyphs = append(glyphs, fakeGlyph(uint16(len(glyphs)+1), start+i, px))
	}
	return glyphs
}

func TestWrapParagraphNoWrap(t *testing.T) {
	runes := []rune("ab cd")
	var glyphs []shaping.Glyph
	glyphs = fakeWord(glyphs, "ab", 0, 10)
	glyphs = fakeWord(glyphs, " ", 2, 5)
	glyphs = fakeWord(glyphs, "cd", 3, 10)

	lines := wrapParagraph(glyphs, runes, 0)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if len(lines[0].glyphs) != 5 {
		t.Errorf("glyphs = %d, want 5", len(lines[0].glyphs))
	}
	if lines[0].width != 45 {
		t.Errorf("width = %v, want 45", lines[0].width)
	}
}

func TestWrapParagraphWordBreak(t *testing.T) {
	runes := []rune("ab cd")
	var glyphs []shaping.Glyph
	glyphs = fakeWord(glyphs, "ab", 0, 10)
	glyphs = fakeWord(glyphs, " ", 2, 5)
	glyphs = fakeWord(glyphs, "cd", 3, 10)

	// 30px fits "ab " but not "ab cd".
	lines := wrapParagraph(glyphs, runes, 30)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if len(lines[0].glyphs) != 2 || len(lines[1].glyphs) != 2 {
		t.Fatalf("glyph counts = %d/%d, want 2/2",
			len(lines[0].glyphs), len(lines[1].glyphs))
	}
	// Trailing space is excluded from the first line's width.
	if lines[0].width != 20 {
		t.Errorf("line 0 width = %v, want 20", lines[0].width)
	}
	// Positions restart at zero on the second line.
	if lines[1].glyphs[0].x != 0 {
		t.Errorf("line 1 starts at %v, want 0", lines[1].glyphs[0].x)
	}
}

func TestWrapParagraphLongWordFallback(t *testing.T) {
	runes := []rune("abcdef")
	glyphs := fakeWord(nil, "abcdef", 0, 10)

	// No space to break on; the word splits at the width limit.
	lines := wrapParagraph(glyphs, runes, 25)
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	for i, line := range lines {
		if len(line.glyphs) != 2 {
			t.Errorf("line %d has %d glyphs, want 2", i, len(line.glyphs))
		}
	}
}

func TestWrapParagraphSkipsLeadingSpaces(t *testing.T) {
	runes := []rune("ab  cd")
	var glyphs []shaping.Glyph
	glyphs = fakeWord(glyphs, "ab", 0, 10)
	glyphs = fakeWord(glyphs, "  ", 2, 5)
	glyphs = fakeWord(glyphs, "cd", 4, 10)

	lines := wrapParagraph(glyphs, runes, 25)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	// Both spaces are consumed by the break.
	if got := lines[1].glyphs[0].gid; got != 5 {
		t.Errorf("line 1 first glyph = %d, want 5", got)
	}
}

func TestLayoutAreaEmptyText(t *testing.T) {
	f := loadTestFont(t)
	var shaper shaping.HarfbuzzShaper
	area := &TextArea{Width: 100, Height: 100, Size: 16}
	if got := layoutArea(&shaper, f, area); got != nil {
		t.Errorf("empty text produced %d glyphs", len(got))
	}
}

func TestLayoutAreaSingleLine(t *testing.T) {
	f := loadTestFont(t)
	var shaper shaping.HarfbuzzShaper
	area := &TextArea{
		X: 10, Y: 10, Width: 400, Height: 100,
		Text: "Hello", Size: 16,
	}
	placed := layoutArea(&shaper, f, area)
	if len(placed) != 5 {
		t.Fatalf("glyphs = %d, want 5", len(placed))
	}
	for i := 1; i < len(placed); i++ {
		if placed[i].y != placed[0].y {
			t.Errorf("glyph %d baseline %v differs from %v", i, placed[i].y, placed[0].y)
		}
		if placed[i].x <= placed[i-1].x {
			t.Errorf("glyph %d x %v not after %v", i, placed[i].x, placed[i-1].x)
		}
	}
}

func TestLayoutAreaNewline(t *testing.T) {
	f := loadTestFont(t)
	var shaper shaping.HarfbuzzShaper
	area := &TextArea{
		Width: 400, Height: 100,
		Text: "ab\ncd", Size: 16,
	}
	placed := layoutArea(&shaper, f, area)
	if len(placed) != 4 {
		t.Fatalf("glyphs = %d, want 4", len(placed))
	}
	if placed[2].y <= placed[0].y {
		t.Errorf("second line baseline %v not below first %v", placed[2].y, placed[0].y)
	}
}

func TestLayoutAreaWraps(t *testing.T) {
	f := loadTestFont(t)
	var shaper shaping.HarfbuzzShaper
	area := &TextArea{
		Width: 40, Height: 200,
		Text: "first second", Size: 16,
	}
	placed := layoutArea(&shaper, f, area)
	if len(placed) != 11 {
		t.Fatalf("glyphs = %d, want 11", len(placed))
	}
	if placed[5].y <= placed[0].y {
		t.Error("narrow area did not wrap onto a second line")
	}
}

func TestLayoutAreaHorizontalAlign(t *testing.T) {
	f := loadTestFont(t)
	var shaper shaping.HarfbuzzShaper

	firstX := func(h HorizontalAlign) float32 {
		area := &TextArea{
			Width: 400, Height: 100,
			Text: "hi", Size: 16, HAlign: h,
		}
		placed := layoutArea(&shaper, f, area)
		if len(placed) == 0 {
			t.Fatal("no glyphs placed")
		}
		return placed[0].x
	}

	left := firstX(AlignLeft)
	center := firstX(AlignCenter)
	right := firstX(AlignRight)
	if !(left < center && center < right) {
		t.Errorf("align x positions left=%v center=%v right=%v not ordered", left, center, right)
	}
}

func TestLayoutAreaVerticalAlign(t *testing.T) {
	f := loadTestFont(t)
	var shaper shaping.HarfbuzzShaper

	firstY := func(v VerticalAlign) float32 {
		area := &TextArea{
			Width: 400, Height: 300,
			Text: "hi", Size: 16, VAlign: v,
		}
		placed := layoutArea(&shaper, f, area)
		if len(placed) == 0 {
			t.Fatal("no glyphs placed")
		}
		return placed[0].y
	}

	top := firstY(AlignTop)
	middle := firstY(AlignMiddle)
	bottom := firstY(AlignBottom)
	if !(top < middle && middle < bottom) {
		t.Errorf("align baselines top=%v middle=%v bottom=%v not ordered", top, middle, bottom)
	}
}

func TestLayoutAreaLineHeight(t *testing.T) {
	f := loadTestFont(t)
	var shaper shaping.HarfbuzzShaper

	gapAt := func(factor float32) float32 {
		area := &TextArea{
			Width: 400, Height: 300,
			Text: "a\nb", Size: 16, VAlign: AlignTop, LineHeight: factor,
		}
		placed := layoutArea(&shaper, f, area)
		if len(placed) != 2 {
			t.Fatalf("glyphs = %d, want 2", len(placed))
		}
		return placed[1].y - placed[0].y
	}

	normal := gapAt(0) // zero defaults to 1
	double := gapAt(2)
	if normal <= 0 {
		t.Fatalf("line advance = %v, want positive", normal)
	}
	if diff := double - 2*normal; diff > 0.01 || diff < -0.01 {
		t.Errorf("double line height advance %v, want %v", double, 2*normal)
	}
}
