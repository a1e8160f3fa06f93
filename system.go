package etext

import (
	"encoding/binary"
	"fmt"

	"github.com/go-text/typesetting/shaping"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/etext/internal/atlas"
)

// metaUniformSize is the byte size of the viewport uniform: window
// width and height as two uint32.
const metaUniformSize = 8

// areaRecord pairs a text area with its GPU geometry. The vertex
// buffer is rebuilt whenever the area is dirty; generation records the
// atlas generation the texture coordinates were computed under.
type areaRecord struct {
	area       TextArea
	vertBuf    hal.Buffer
	vertCount  uint32
	generation uint64
}

// TextSystem owns the glyph atlas, the registered fonts, and all text
// areas, and draws them into a caller-provided render pass.
//
// TextSystem is not safe for concurrent use; all methods must be
// called from the goroutine driving the frame loop.
type TextSystem struct {
	device hal.Device
	queue  hal.Queue
	cfg    Config

	atlas  *atlas.Atlas
	shaper shaping.HarfbuzzShaper
	fonts  map[FontID]*Font

	areas      map[AreaHandle]*areaRecord
	nextHandle AreaHandle
	dirty      dirtySet

	width  uint32
	height uint32

	pipes    *pipelines
	metaBuf  hal.Buffer
	metaBind hal.BindGroup

	// atlasBind must be recreated when growth replaces the atlas
	// texture; atlasBindGen tracks the generation it was built for.
	atlasBind    hal.BindGroup
	atlasBindGen uint64

	debugAtlas   bool
	debugBorders bool

	// Border geometry is cached across frames and dropped whenever the
	// set of areas or any area's rectangle may have changed.
	borderVertBuf  hal.Buffer
	borderIdxBuf   hal.Buffer
	borderIdxCount uint32
}

// New creates a text system rendering into surfaces of the given pixel
// size and format described by cfg.
func New(device hal.Device, queue hal.Queue, width, height uint32, cfg Config) (*TextSystem, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	cfg = cfg.withDefaults()

	s := &TextSystem{
		device: device,
		queue:  queue,
		cfg:    cfg,
		fonts:  make(map[FontID]*Font),
		areas:  make(map[AreaHandle]*areaRecord),
		width:  width,
		height: height,
	}

	var err error
	s.atlas, err = atlas.New(device, queue, cfg.InitialAtlasSize, cfg.MaxAtlasSize)
	if err != nil {
		return nil, err
	}

	s.pipes, err = newPipelines(device, cfg.SurfaceFormat)
	if err != nil {
		s.atlas.Destroy()
		return nil, err
	}

	s.metaBuf, err = s.createAndUploadBuffer("etext_meta_uniform", s.metaUniformData(),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		s.Destroy()
		return nil, err
	}

	s.metaBind, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "etext_meta_bind",
		Layout: s.pipes.metaLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: s.metaBuf.NativeHandle(), Offset: 0, Size: metaUniformSize,
			}},
		},
	})
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("create meta bind group: %w", err)
	}

	if err := s.ensureAtlasBind(); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

// AddFont registers font data under id. Registering an existing id
// replaces the font; areas using it are not rebuilt until marked dirty.
func (s *TextSystem) AddFont(id FontID, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFontData
	}
	f, err := newFont(data)
	if err != nil {
		return err
	}
	s.fonts[id] = f
	return nil
}

// AddTextArea adds a text area and returns its handle. The area is
// marked dirty and gets its geometry on the next Render.
func (s *TextSystem) AddTextArea(area TextArea) AreaHandle {
	h := s.nextHandle
	s.nextHandle++
	s.areas[h] = &areaRecord{area: area}
	s.dirty.mark(h)
	s.invalidateBorders()
	return h
}

// RemoveTextArea deletes a text area and releases its geometry.
// Removing an unknown handle is a no-op.
func (s *TextSystem) RemoveTextArea(h AreaHandle) {
	rec, ok := s.areas[h]
	if !ok {
		return
	}
	if rec.vertBuf != nil {
		s.device.DestroyBuffer(rec.vertBuf)
	}
	delete(s.areas, h)
	s.invalidateBorders()
}

// TextArea returns a copy of the area's current state. Reports false
// for an unknown handle.
func (s *TextSystem) TextArea(h AreaHandle) (TextArea, bool) {
	rec, ok := s.areas[h]
	if !ok {
		return TextArea{}, false
	}
	return rec.area, true
}

// ModifyTextArea returns a pointer to the area's state for in-place
// mutation, or nil for an unknown handle. The area is marked dirty
// unconditionally: obtaining the pointer schedules a rebuild whether
// or not anything is written through it.
func (s *TextSystem) ModifyTextArea(h AreaHandle) *TextArea {
	rec, ok := s.areas[h]
	if !ok {
		return nil
	}
	s.dirty.mark(h)
	s.invalidateBorders()
	return &rec.area
}

// Resize updates the window size used to map surface pixels to clip
// space. Calls with a zero dimension are ignored, which covers
// minimized windows.
func (s *TextSystem) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	s.width = width
	s.height = height
	s.queue.WriteBuffer(s.metaBuf, 0, s.metaUniformData())
}

// ToggleDebugAtlas switches drawing the raw atlas texture over the
// whole surface on or off.
func (s *TextSystem) ToggleDebugAtlas() {
	s.debugAtlas = !s.debugAtlas
}

// ToggleDebugBorders switches drawing text area outlines on or off.
func (s *TextSystem) ToggleDebugBorders() {
	s.debugBorders = !s.debugBorders
}

// Destroy releases all GPU resources. The system must not be used
// afterwards. Safe to call on a partially constructed system.
func (s *TextSystem) Destroy() {
	for _, rec := range s.areas {
		if rec.vertBuf != nil {
			s.device.DestroyBuffer(rec.vertBuf)
			rec.vertBuf = nil
		}
	}
	s.invalidateBorders()
	if s.atlasBind != nil {
		s.device.DestroyBindGroup(s.atlasBind)
		s.atlasBind = nil
	}
	if s.metaBind != nil {
		s.device.DestroyBindGroup(s.metaBind)
		s.metaBind = nil
	}
	if s.metaBuf != nil {
		s.device.DestroyBuffer(s.metaBuf)
		s.metaBuf = nil
	}
	if s.pipes != nil {
		s.pipes.destroy()
		s.pipes = nil
	}
	if s.atlas != nil {
		s.atlas.Destroy()
		s.atlas = nil
	}
}

// metaUniformData serializes the viewport uniform.
func (s *TextSystem) metaUniformData() []byte {
	data := make([]byte, metaUniformSize)
	binary.LittleEndian.PutUint32(data[0:4], s.width)
	binary.LittleEndian.PutUint32(data[4:8], s.height)
	return data
}

// ensureAtlasBind (re)creates the atlas bind group when the underlying
// texture view changed due to growth.
func (s *TextSystem) ensureAtlasBind() error {
	if s.atlasBind != nil && s.atlasBindGen == s.atlas.Generation() {
		return nil
	}
	if s.atlasBind != nil {
		s.device.DestroyBindGroup(s.atlasBind)
		s.atlasBind = nil
	}
	bind, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "etext_atlas_bind",
		Layout: s.pipes.atlasLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: s.atlas.View().NativeHandle(),
			}},
			{Binding: 1, Resource: gputypes.SamplerBinding{
				Sampler: s.pipes.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create atlas bind group: %w", err)
	}
	s.atlasBind = bind
	s.atlasBindGen = s.atlas.Generation()
	return nil
}

// invalidateBorders drops the cached debug border geometry.
func (s *TextSystem) invalidateBorders() {
	if s.borderVertBuf != nil {
		s.device.DestroyBuffer(s.borderVertBuf)
		s.borderVertBuf = nil
	}
	if s.borderIdxBuf != nil {
		s.device.DestroyBuffer(s.borderIdxBuf)
		s.borderIdxBuf = nil
	}
	s.borderIdxCount = 0
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (s *TextSystem) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	s.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}
