package etext

import (
	"encoding/binary"
	"math"
)

// glyphVertexStride is the byte stride per vertex in the glyph pipeline.
// Layout per vertex:
//
//	position  (vec2<f32>) = 8 bytes (location 0)
//	tex_coord (vec2<f32>) = 8 bytes (location 1)
//
// Total = 16 bytes per vertex.
const glyphVertexStride = 16

// borderVertexStride is the byte stride per vertex in the debug border
// pipeline: position (vec2<f32>) only.
const borderVertexStride = 8

// glyphQuadVertices is the number of vertices a glyph expands to: two
// triangles, no index buffer.
const glyphQuadVertices = 6

// appendGlyphQuad appends the six vertices of a glyph rectangle.
// (x0,y0) is the top-left corner in surface pixels, (u0,v0)/(u1,v1)
// the matching corners in normalized atlas coordinates.
func appendGlyphQuad(data []byte, x0, y0, x1, y1, u0, v0, u1, v1 float32) []byte {
	off := len(data)
	data = append(data, make([]byte, glyphQuadVertices*glyphVertexStride)...)
	buf := data[off:]

	writeGlyphVertex(buf[0:], x0, y0, u0, v0)
	writeGlyphVertex(buf[16:], x1, y0, u1, v0)
	writeGlyphVertex(buf[32:], x1, y1, u1, v1)
	writeGlyphVertex(buf[48:], x0, y0, u0, v0)
	writeGlyphVertex(buf[64:], x1, y1, u1, v1)
	writeGlyphVertex(buf[80:], x0, y1, u0, v1)
	return data
}

// writeGlyphVertex serializes one vertex in little-endian float32.
func writeGlyphVertex(buf []byte, x, y, u, v float32) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(x))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(y))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(u))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v))
}

// buildBorderGeometry serializes the outlines of the given rectangles
// as a line list: four vertices and eight indices per rectangle.
func buildBorderGeometry(rects [][4]float32) (verts, indices []byte) {
	if len(rects) == 0 {
		return nil, nil
	}
	verts = make([]byte, 0, len(rects)*4*borderVertexStride)
	indices = make([]byte, 0, len(rects)*8*2)

	for i, r := range rects {
		x, y, w, h := r[0], r[1], r[2], r[3]
		verts = appendBorderVertex(verts, x, y)
		verts = appendBorderVertex(verts, x+w, y)
		verts = appendBorderVertex(verts, x+w, y+h)
		verts = appendBorderVertex(verts, x, y+h)

		base := uint16(i * 4)
		for _, pair := range [8]uint16{0, 1, 1, 2, 2, 3, 3, 0} {
			indices = binary.LittleEndian.AppendUint16(indices, base+pair)
		}
	}
	return verts, indices
}

func appendBorderVertex(buf []byte, x, y float32) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(x))
	return binary.LittleEndian.AppendUint32(buf, math.Float32bits(y))
}
