// Package atlas maintains the glyph atlas: a single grayscale GPU
// texture shared by all rendered text, backed by an LRU glyph cache and
// a rectangle packer.
//
// The atlas starts small and grows by doubling its edge length when a
// glyph does not fit, up to a configured maximum. Once the maximum is
// reached, the least recently used glyphs are evicted until the new
// glyph fits. Growth invalidates previously computed texture
// coordinates; the generation counter lets callers detect this and
// rebuild.
package atlas

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/etext/internal/cache"
	"github.com/gogpu/etext/internal/packer"
)

const (
	// DefaultInitialSize is the starting edge length of the atlas
	// texture in pixels.
	DefaultInitialSize = 512

	// DefaultMaxSize is the edge length beyond which the atlas stops
	// growing and starts evicting.
	DefaultMaxSize = 8192
)

// GlyphTooLargeError reports a glyph whose bitmap cannot fit even an
// empty atlas at its maximum size. This is unrecoverable for the glyph
// in question; the atlas itself remains usable.
type GlyphTooLargeError struct {
	Width   int
	Height  int
	MaxSize int
}

func (e *GlyphTooLargeError) Error() string {
	return fmt.Sprintf("glyph bitmap %dx%d exceeds maximum atlas size %d",
		e.Width, e.Height, e.MaxSize)
}

// Atlas owns the shared glyph texture and its CPU-side pixel buffer.
// Bitmaps are blitted into the CPU buffer on insert and uploaded to the
// GPU in one write per frame by Flush.
//
// Atlas is not safe for concurrent use.
type Atlas struct {
	device hal.Device
	queue  hal.Queue

	size    int
	maxSize int

	packer *packer.Packer
	glyphs *cache.LRU[Key, *Glyph]

	// pixels is the CPU copy of the texture, size*size bytes, R8.
	pixels []byte
	dirty  bool

	// generation increments every time the atlas grows. Texture
	// coordinates computed under an older generation are stale.
	generation uint64

	texture hal.Texture
	view    hal.TextureView
}

// New creates an atlas with its initial texture. Sizes of zero or less
// fall back to the defaults; initialSize is clamped to maxSize.
func New(device hal.Device, queue hal.Queue, initialSize, maxSize int) (*Atlas, error) {
	if initialSize <= 0 {
		initialSize = DefaultInitialSize
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if initialSize > maxSize {
		initialSize = maxSize
	}

	a := &Atlas{
		device:  device,
		queue:   queue,
		size:    initialSize,
		maxSize: maxSize,
		packer:  packer.New(initialSize),
		glyphs:  cache.NewLRU[Key, *Glyph](),
		pixels:  make([]byte, initialSize*initialSize),
	}

	tex, view, err := a.createTexture(initialSize)
	if err != nil {
		return nil, err
	}
	a.texture = tex
	a.view = view
	return a, nil
}

// Get returns the cached glyph for key and marks it as most recently
// used. Reports false when the glyph has not been inserted.
func (a *Atlas) Get(key Key) (*Glyph, bool) {
	return a.glyphs.Get(key)
}

// Insert caches a rasterized glyph and places its bitmap into the
// texture. bitmap holds m.Width*m.Height coverage bytes in row-major
// order; it may be nil when the glyph has no coverage.
//
// When the bitmap does not fit, the atlas first grows by doubling up to
// its maximum size, then evicts least recently used glyphs. The only
// error conditions are a *GlyphTooLargeError for a bitmap that cannot
// fit an empty atlas at maximum size, and texture recreation failures
// during growth.
func (a *Atlas) Insert(key Key, m Metrics, bitmap []byte) (*Glyph, error) {
	// Invisible glyphs are cached without touching the packer.
	if m.Width <= 0 || m.Height <= 0 {
		g := &Glyph{Metrics: m}
		a.glyphs.Put(key, g)
		return g, nil
	}

	if len(bitmap) != m.Width*m.Height {
		return nil, fmt.Errorf("glyph bitmap is %d bytes, want %d (%dx%d)",
			len(bitmap), m.Width*m.Height, m.Width, m.Height)
	}

	// A bitmap larger than the maximum atlas can never fit. Fail before
	// evicting anything.
	if m.Width > a.maxSize || m.Height > a.maxSize {
		return nil, &GlyphTooLargeError{Width: m.Width, Height: m.Height, MaxSize: a.maxSize}
	}

	var alloc packer.Allocation
	for {
		var ok bool
		alloc, ok = a.packer.Allocate(m.Width, m.Height)
		if ok {
			break
		}

		if a.size < a.maxSize {
			if err := a.grow(); err != nil {
				return nil, err
			}
			continue
		}

		// At maximum size: make room by evicting the coldest glyph.
		_, old, ok := a.glyphs.PopOldest()
		if !ok {
			return nil, &GlyphTooLargeError{
				Width:   m.Width,
				Height:  m.Height,
				MaxSize: a.maxSize,
			}
		}
		if old.Allocated {
			a.packer.Free(old.allocID)
		}
	}

	g := &Glyph{
		Metrics:   m,
		X:         alloc.Rect.X,
		Y:         alloc.Rect.Y,
		Allocated: true,
		allocID:   alloc.ID,
		bitmap:    bitmap,
	}
	a.blit(g)
	a.glyphs.Put(key, g)
	return g, nil
}

// grow doubles the atlas edge length, repacks every cached glyph into
// the larger region, and replaces the GPU texture. Cached glyphs are
// repacked from most to least recently used.
func (a *Atlas) grow() error {
	newSize := a.size * 2
	if newSize > a.maxSize {
		newSize = a.maxSize
	}

	slogger().Debug("growing glyph atlas",
		"from", a.size, "to", newSize, "glyphs", a.glyphs.Len())

	type entry struct {
		key   Key
		glyph *Glyph
	}
	live := make([]entry, 0, a.glyphs.Len())
	a.glyphs.Range(func(k Key, g *Glyph) bool {
		live = append(live, entry{key: k, glyph: g})
		return true
	})

	a.packer.Resize(newSize)
	a.size = newSize
	a.pixels = make([]byte, newSize*newSize)

	for _, e := range live {
		g := e.glyph
		if !g.Allocated {
			continue
		}
		alloc, ok := a.packer.Allocate(g.Metrics.Width, g.Metrics.Height)
		if !ok {
			// Shelf fragmentation can strand a glyph even after
			// doubling. Drop it; the next lookup re-inserts.
			slogger().Warn("glyph did not survive atlas growth",
				"font", e.key.Font, "index", e.key.Index, "size", e.key.Size)
			a.glyphs.Remove(e.key)
			continue
		}
		g.X = alloc.Rect.X
		g.Y = alloc.Rect.Y
		g.allocID = alloc.ID
		a.blit(g)
	}

	tex, view, err := a.createTexture(newSize)
	if err != nil {
		return fmt.Errorf("grow atlas to %d: %w", newSize, err)
	}
	a.destroyTexture()
	a.texture = tex
	a.view = view

	a.generation++
	a.dirty = true
	return nil
}

// blit copies a glyph bitmap into the CPU pixel buffer at the glyph's
// allocated position.
func (a *Atlas) blit(g *Glyph) {
	w := g.Metrics.Width
	for row := 0; row < g.Metrics.Height; row++ {
		dst := (g.Y+row)*a.size + g.X
		copy(a.pixels[dst:dst+w], g.bitmap[row*w:(row+1)*w])
	}
	a.dirty = true
}

// Flush uploads the CPU pixel buffer to the GPU texture if anything
// changed since the last upload. Call once per frame before drawing.
func (a *Atlas) Flush() {
	if !a.dirty {
		return
	}
	size := uint32(a.size)
	a.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: a.texture, MipLevel: 0},
		a.pixels,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: size, RowsPerImage: size},
		&hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
	)
	a.dirty = false
}

// Size returns the current edge length of the texture in pixels.
func (a *Atlas) Size() int { return a.size }

// MaxSize returns the edge length the atlas will not grow beyond.
func (a *Atlas) MaxSize() int { return a.maxSize }

// Generation returns the growth counter. A caller holding texture
// coordinates computed under an older generation must recompute them.
func (a *Atlas) Generation() uint64 { return a.generation }

// Len returns the number of cached glyphs, invisible ones included.
func (a *Atlas) Len() int { return a.glyphs.Len() }

// View returns the texture view for binding the atlas in a shader.
func (a *Atlas) View() hal.TextureView { return a.view }

// Destroy releases the GPU texture. The atlas must not be used after.
func (a *Atlas) Destroy() {
	a.destroyTexture()
	a.glyphs.Clear()
	a.packer.Clear()
	a.pixels = nil
}

func (a *Atlas) createTexture(size int) (hal.Texture, hal.TextureView, error) {
	sz := uint32(size)
	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glyph_atlas",
		Size:          hal.Extent3D{Width: sz, Height: sz, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatR8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create glyph atlas texture: %w", err)
	}

	view, err := a.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "glyph_atlas_view",
		Format:        gputypes.TextureFormatR8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		a.device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create glyph atlas texture view: %w", err)
	}
	return tex, view, nil
}

func (a *Atlas) destroyTexture() {
	if a.view != nil {
		a.device.DestroyTextureView(a.view)
		a.view = nil
	}
	if a.texture != nil {
		a.device.DestroyTexture(a.texture)
		a.texture = nil
	}
}
