// Package packer implements a bucketed 2D rectangle allocator used to
// assign glyph bitmaps their place inside a shared atlas texture.
//
// Free space is grouped into horizontal shelves whose heights are
// quantized into buckets, so allocations of similar height land on the
// same shelf and freed slots can be reused without a global search.
package packer

// bucketStep is the shelf height quantization step. Requests whose
// heights fall in the same bucket share shelves, which keeps
// fragmentation bounded at the cost of some wasted rows per shelf.
const bucketStep = 8

// AllocID identifies a live allocation. IDs are never reused, and all
// outstanding IDs become invalid after Clear or Resize.
type AllocID uint32

// Rect is an axis-aligned rectangle inside the packed region.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Right returns the exclusive right edge of the rectangle.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge of the rectangle.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Allocation is a successfully placed rectangle.
type Allocation struct {
	ID   AllocID
	Rect Rect
}

// span is a horizontal run on a shelf. A span with id zero is free.
type span struct {
	x     int
	width int
	id    AllocID
}

// shelf is a full-width horizontal strip of the region. Its height is
// bucket-quantized; only requests of the same bucket allocate from it.
type shelf struct {
	y      int
	height int
	spans  []span
}

// spanRef locates a live allocation for O(1) lookup on Free.
type spanRef struct {
	shelf int
	rect  Rect
}

// Packer allocates non-overlapping rectangles inside a square region of
// a fixed edge length. It never blocks or retries: a failed allocation
// simply reports false and the caller decides whether to free space or
// resize.
//
// Packer is not safe for concurrent use; the frame driver owning the
// atlas is single-threaded.
type Packer struct {
	size    int
	shelves []*shelf
	nextY   int
	nextID  AllocID
	live    map[AllocID]spanRef
	used    int
}

// New creates a packer over a size x size region.
func New(size int) *Packer {
	if size < 0 {
		size = 0
	}
	return &Packer{
		size: size,
		live: make(map[AllocID]spanRef),
	}
}

// bucket rounds a height up to its shelf bucket.
func bucket(h int) int {
	return (h + bucketStep - 1) / bucketStep * bucketStep
}

// Allocate finds space for a width x height rectangle. The returned
// allocation never overlaps any other live allocation. Reports false
// when the request cannot be placed; the packer state is unchanged in
// that case.
func (p *Packer) Allocate(width, height int) (Allocation, bool) {
	if width <= 0 || height <= 0 {
		return Allocation{}, false
	}
	if width > p.size || height > p.size {
		return Allocation{}, false
	}

	hb := bucket(height)

	// Reuse a free span on an existing shelf of the same bucket.
	for i, s := range p.shelves {
		if s.height != hb {
			continue
		}
		if alloc, ok := p.allocateOnShelf(i, width, height); ok {
			return alloc, true
		}
	}

	// Open a new shelf below the last one.
	if p.nextY+hb > p.size {
		return Allocation{}, false
	}
	s := &shelf{
		y:      p.nextY,
		height: hb,
		spans:  []span{{x: 0, width: p.size}},
	}
	p.shelves = append(p.shelves, s)
	p.nextY += hb

	alloc, ok := p.allocateOnShelf(len(p.shelves)-1, width, height)
	return alloc, ok
}

// allocateOnShelf carves the first free span wide enough for the request.
func (p *Packer) allocateOnShelf(shelfIndex, width, height int) (Allocation, bool) {
	s := p.shelves[shelfIndex]
	for i := range s.spans {
		sp := &s.spans[i]
		if sp.id != 0 || sp.width < width {
			continue
		}

		p.nextID++
		id := p.nextID

		if sp.width == width {
			sp.id = id
		} else {
			// Split: allocated head, free remainder.
			rest := span{x: sp.x + width, width: sp.width - width}
			sp.width = width
			sp.id = id
			s.spans = append(s.spans, span{})
			copy(s.spans[i+2:], s.spans[i+1:])
			s.spans[i+1] = rest
		}

		rect := Rect{X: s.spans[i].x, Y: s.y, Width: width, Height: height}
		p.live[id] = spanRef{shelf: shelfIndex, rect: rect}
		p.used += width * height
		return Allocation{ID: id, Rect: rect}, true
	}
	return Allocation{}, false
}

// Free releases a live allocation, returning its span to the shelf's
// free space. Freeing an unknown or already-freed ID is a no-op.
func (p *Packer) Free(id AllocID) {
	ref, ok := p.live[id]
	if !ok {
		return
	}
	delete(p.live, id)
	p.used -= ref.rect.Width * ref.rect.Height

	s := p.shelves[ref.shelf]
	for i := range s.spans {
		if s.spans[i].id != id {
			continue
		}
		s.spans[i].id = 0
		p.coalesce(s, i)
		return
	}
}

// coalesce merges the span at index i with free neighbors.
func (p *Packer) coalesce(s *shelf, i int) {
	// Merge with the right neighbor first so index i stays valid.
	if i+1 < len(s.spans) && s.spans[i+1].id == 0 {
		s.spans[i].width += s.spans[i+1].width
		s.spans = append(s.spans[:i+1], s.spans[i+2:]...)
	}
	if i > 0 && s.spans[i-1].id == 0 {
		s.spans[i-1].width += s.spans[i].width
		s.spans = append(s.spans[:i], s.spans[i+1:]...)
	}
}

// Clear discards all allocations, making the entire region available.
// All previously returned IDs become invalid.
func (p *Packer) Clear() {
	p.shelves = p.shelves[:0]
	p.nextY = 0
	p.used = 0
	clear(p.live)
}

// Resize sets a new edge length for the region. Any existing
// allocations are discarded; callers grow the region with Clear
// followed by Resize and re-insert whatever must survive.
func (p *Packer) Resize(size int) {
	p.Clear()
	if size < 0 {
		size = 0
	}
	p.size = size
}

// Size returns the current edge length of the region.
func (p *Packer) Size() int { return p.size }

// Len returns the number of live allocations.
func (p *Packer) Len() int { return len(p.live) }

// UsedArea returns the total area of live allocations.
func (p *Packer) UsedArea() int { return p.used }
