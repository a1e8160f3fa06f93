package etext

import (
	"fmt"
	"maps"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/etext/internal/atlas"
)

// Render rebuilds the geometry of every dirty text area, uploads any
// atlas changes, and records draw commands into the given render pass.
// Areas that did not change since the last call are drawn from their
// existing vertex buffers without any CPU work.
//
// On error the failing area stays dirty and keeps its previous
// geometry; the next Render retries it.
func (s *TextSystem) Render(rp hal.RenderPassEncoder) error {
	// Atlas growth during a rebuild invalidates texture coordinates
	// computed before it, so rebuild until a pass completes with every
	// area on the current generation. The loop is bounded: the atlas
	// grows at most log2(max/initial) times over its whole lifetime.
	for s.dirty.len() > 0 {
		for _, h := range s.dirty.drain() {
			rec, ok := s.areas[h]
			if !ok {
				// Removed after being marked dirty.
				continue
			}
			if err := s.rebuildArea(rec); err != nil {
				s.dirty.mark(h)
				return err
			}
		}
		gen := s.atlas.Generation()
		for h, rec := range s.areas {
			if rec.vertBuf != nil && rec.generation != gen {
				s.dirty.mark(h)
			}
		}
	}

	s.atlas.Flush()
	if err := s.ensureAtlasBind(); err != nil {
		return err
	}

	rp.SetPipeline(s.pipes.glyph)
	rp.SetBindGroup(0, s.atlasBind, nil)
	rp.SetBindGroup(1, s.metaBind, nil)
	for _, h := range s.sortedHandles() {
		rec := s.areas[h]
		if rec.vertBuf == nil || rec.vertCount == 0 {
			continue
		}
		rp.SetVertexBuffer(0, rec.vertBuf, 0)
		rp.Draw(rec.vertCount, 1, 0, 0)
	}

	if s.debugBorders {
		if err := s.drawBorders(rp); err != nil {
			return err
		}
	}
	if s.debugAtlas {
		rp.SetPipeline(s.pipes.atlasDebug)
		rp.SetBindGroup(0, s.atlasBind, nil)
		rp.Draw(4, 1, 0, 0)
	}
	return nil
}

// rebuildArea lays out an area's text and replaces its vertex buffer.
// The old buffer is kept until layout and atlas work succeeded, so a
// failed rebuild leaves the previous geometry intact.
func (s *TextSystem) rebuildArea(rec *areaRecord) error {
	gen := s.atlas.Generation()
	area := &rec.area

	f, ok := s.fonts[area.Font]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrFontNotFound, area.Font)
	}

	glyphs := layoutArea(&s.shaper, f, area)

	var data []byte
	for _, pg := range glyphs {
		key := atlas.Key{Font: uint32(area.Font), Size: uint16(area.Size), Index: pg.gid}
		g, ok := s.atlas.Get(key)
		if !ok {
			m, bitmap, err := f.rasterize(pg.gid, area.Size)
			if err != nil {
				// Color glyphs and fonts with broken outlines land
				// here. Skip the glyph rather than the whole area.
				slogger().Warn("skipping glyph",
					"font", area.Font, "glyph", pg.gid, "err", err)
				continue
			}
			g, err = s.atlas.Insert(key, m, bitmap)
			if err != nil {
				return err
			}
		}
		if !g.Allocated {
			continue
		}

		// Bitmap corner in surface pixels.
		gx := pg.x + float32(g.Metrics.Left)
		gy := pg.y + float32(g.Metrics.Top)
		gw := float32(g.Metrics.Width)
		gh := float32(g.Metrics.Height)

		// Whole-glyph culling against the area rectangle. Glyphs that
		// merely overlap the edge draw in full.
		if gx+gw < area.X || gx > area.X+area.Width ||
			gy+gh < area.Y || gy > area.Y+area.Height {
			continue
		}

		atlasSize := float32(s.atlas.Size())
		u0 := float32(g.X) / atlasSize
		v0 := float32(g.Y) / atlasSize
		u1 := (float32(g.X) + gw) / atlasSize
		v1 := (float32(g.Y) + gh) / atlasSize

		x0 := gx + area.LeftOffset
		y0 := gy + area.TopOffset
		data = appendGlyphQuad(data, x0, y0, x0+gw, y0+gh, u0, v0, u1, v1)
	}

	if rec.vertBuf != nil {
		s.device.DestroyBuffer(rec.vertBuf)
		rec.vertBuf = nil
		rec.vertCount = 0
	}
	rec.generation = gen
	if len(data) == 0 {
		return nil
	}

	buf, err := s.createAndUploadBuffer("etext_area_verts", data,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	rec.vertBuf = buf
	rec.vertCount = uint32(len(data) / glyphVertexStride)
	return nil
}

// drawBorders draws the debug outlines, rebuilding the cached geometry
// if an area was added, removed, or modified since the last frame.
func (s *TextSystem) drawBorders(rp hal.RenderPassEncoder) error {
	if s.borderVertBuf == nil {
		rects := make([][4]float32, 0, len(s.areas))
		for _, h := range s.sortedHandles() {
			a := &s.areas[h].area
			rects = append(rects, [4]float32{a.X, a.Y, a.Width, a.Height})
		}
		verts, indices := buildBorderGeometry(rects)
		if len(indices) == 0 {
			return nil
		}
		vb, err := s.createAndUploadBuffer("etext_border_verts", verts,
			gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			return err
		}
		ib, err := s.createAndUploadBuffer("etext_border_indices", indices,
			gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
		if err != nil {
			s.device.DestroyBuffer(vb)
			return err
		}
		s.borderVertBuf = vb
		s.borderIdxBuf = ib
		s.borderIdxCount = uint32(len(indices) / 2)
	}

	rp.SetPipeline(s.pipes.border)
	rp.SetBindGroup(0, s.metaBind, nil)
	rp.SetVertexBuffer(0, s.borderVertBuf, 0)
	rp.SetIndexBuffer(s.borderIdxBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(s.borderIdxCount, 1, 0, 0, 0)
	return nil
}

// sortedHandles returns the live area handles in creation order, so
// draw order is deterministic frame to frame.
func (s *TextSystem) sortedHandles() []AreaHandle {
	return slices.Sorted(maps.Keys(s.areas))
}
