package etext

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.InitialAtlasSize != 512 {
		t.Errorf("InitialAtlasSize = %d, want 512", cfg.InitialAtlasSize)
	}
	if cfg.MaxAtlasSize != 8192 {
		t.Errorf("MaxAtlasSize = %d, want 8192", cfg.MaxAtlasSize)
	}
	if cfg.SurfaceFormat != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("SurfaceFormat = %v, want BGRA8Unorm", cfg.SurfaceFormat)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "zero value fills everything",
			in:   Config{},
			want: DefaultConfig(),
		},
		{
			name: "explicit values kept",
			in: Config{
				InitialAtlasSize: 256,
				MaxAtlasSize:     1024,
				SurfaceFormat:    gputypes.TextureFormatRGBA8Unorm,
			},
			want: Config{
				InitialAtlasSize: 256,
				MaxAtlasSize:     1024,
				SurfaceFormat:    gputypes.TextureFormatRGBA8Unorm,
			},
		},
		{
			name: "partial fill",
			in:   Config{MaxAtlasSize: 2048},
			want: Config{
				InitialAtlasSize: 512,
				MaxAtlasSize:     2048,
				SurfaceFormat:    gputypes.TextureFormatBGRA8Unorm,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.withDefaults(); got != tt.want {
				t.Errorf("withDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
