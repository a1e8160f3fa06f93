package etext

import "github.com/gogpu/gputypes"

// Config holds creation-time settings for a [TextSystem].
type Config struct {
	// InitialAtlasSize is the starting edge length of the glyph atlas
	// texture in pixels. The atlas doubles when it runs out of space.
	// Default: 512.
	InitialAtlasSize int

	// MaxAtlasSize is the edge length the atlas will not grow beyond.
	// Once reached, least recently used glyphs are evicted instead.
	// Default: 8192.
	MaxAtlasSize int

	// SurfaceFormat is the color format of the render target the text
	// pipelines draw into. Default: BGRA8Unorm.
	SurfaceFormat gputypes.TextureFormat
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		InitialAtlasSize: 512,
		MaxAtlasSize:     8192,
		SurfaceFormat:    gputypes.TextureFormatBGRA8Unorm,
	}
}

// withDefaults fills zero-valued fields with their defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InitialAtlasSize <= 0 {
		c.InitialAtlasSize = d.InitialAtlasSize
	}
	if c.MaxAtlasSize <= 0 {
		c.MaxAtlasSize = d.MaxAtlasSize
	}
	if c.SurfaceFormat == 0 {
		c.SurfaceFormat = d.SurfaceFormat
	}
	return c
}
