package etext

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/glyph.wgsl
var glyphShaderSource string

//go:embed shaders/debug_borders.wgsl
var borderShaderSource string

//go:embed shaders/debug_atlas.wgsl
var atlasDebugShaderSource string

// pipelines holds the GPU pipelines shared by every text area: the
// glyph pipeline plus the two debug overlay pipelines. All three render
// into the same surface format.
type pipelines struct {
	device hal.Device

	glyphShader  hal.ShaderModule
	borderShader hal.ShaderModule
	atlasShader  hal.ShaderModule

	// atlasLayout binds the atlas texture and sampler (group 0 of the
	// glyph and atlas-debug pipelines).
	atlasLayout hal.BindGroupLayout

	// metaLayout binds the viewport uniform (group 1 of the glyph
	// pipeline, group 0 of the border pipeline).
	metaLayout hal.BindGroupLayout

	glyphPipeLayout  hal.PipelineLayout
	borderPipeLayout hal.PipelineLayout
	atlasPipeLayout  hal.PipelineLayout

	sampler hal.Sampler

	glyph      hal.RenderPipeline
	border     hal.RenderPipeline
	atlasDebug hal.RenderPipeline
}

// newPipelines compiles the shaders and creates all three pipelines.
func newPipelines(device hal.Device, format gputypes.TextureFormat) (*pipelines, error) {
	p := &pipelines{device: device}
	if err := p.create(format); err != nil {
		p.destroy()
		return nil, err
	}
	return p, nil
}

func (p *pipelines) create(format gputypes.TextureFormat) error {
	var err error

	p.glyphShader, err = p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "etext_glyph_shader",
		Source: hal.ShaderSource{WGSL: glyphShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile glyph shader: %w", err)
	}
	p.borderShader, err = p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "etext_border_shader",
		Source: hal.ShaderSource{WGSL: borderShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile border shader: %w", err)
	}
	p.atlasShader, err = p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "etext_atlas_debug_shader",
		Source: hal.ShaderSource{WGSL: atlasDebugShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile atlas debug shader: %w", err)
	}

	// Bind group layout for the atlas texture:
	//   Binding 0: atlas texture (texture_2d, fragment)
	//   Binding 1: sampler (fragment)
	p.atlasLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "etext_atlas_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create atlas bind group layout: %w", err)
	}

	// Bind group layout for the viewport uniform:
	//   Binding 0: window size (uniform buffer, vertex)
	p.metaLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "etext_meta_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create meta bind group layout: %w", err)
	}

	p.glyphPipeLayout, err = p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "etext_glyph_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.atlasLayout, p.metaLayout},
	})
	if err != nil {
		return fmt.Errorf("create glyph pipeline layout: %w", err)
	}
	p.borderPipeLayout, err = p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "etext_border_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.metaLayout},
	})
	if err != nil {
		return fmt.Errorf("create border pipeline layout: %w", err)
	}
	p.atlasPipeLayout, err = p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "etext_atlas_debug_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.atlasLayout},
	})
	if err != nil {
		return fmt.Errorf("create atlas debug pipeline layout: %w", err)
	}

	// Nearest filtering: glyphs are rendered at the size they were
	// rasterized at, so sampling between texels only bleeds neighbors.
	p.sampler, err = p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "etext_atlas_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create atlas sampler: %w", err)
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	p.glyph, err = p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "etext_glyph_pipeline",
		Layout: p.glyphPipeLayout,
		Vertex: hal.VertexState{
			Module:     p.glyphShader,
			EntryPoint: "vs_main",
			Buffers:    glyphVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.glyphShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create glyph pipeline: %w", err)
	}

	p.border, err = p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "etext_border_pipeline",
		Layout: p.borderPipeLayout,
		Vertex: hal.VertexState{
			Module:     p.borderShader,
			EntryPoint: "vs_main",
			Buffers:    borderVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.borderShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyLineList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create border pipeline: %w", err)
	}

	p.atlasDebug, err = p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "etext_atlas_debug_pipeline",
		Layout: p.atlasPipeLayout,
		Vertex: hal.VertexState{
			Module:     p.atlasShader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.atlasShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create atlas debug pipeline: %w", err)
	}

	return nil
}

// destroy releases all pipeline resources in reverse creation order.
// Safe on a partially constructed set.
func (p *pipelines) destroy() {
	if p.device == nil {
		return
	}
	if p.atlasDebug != nil {
		p.device.DestroyRenderPipeline(p.atlasDebug)
		p.atlasDebug = nil
	}
	if p.border != nil {
		p.device.DestroyRenderPipeline(p.border)
		p.border = nil
	}
	if p.glyph != nil {
		p.device.DestroyRenderPipeline(p.glyph)
		p.glyph = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.atlasPipeLayout != nil {
		p.device.DestroyPipelineLayout(p.atlasPipeLayout)
		p.atlasPipeLayout = nil
	}
	if p.borderPipeLayout != nil {
		p.device.DestroyPipelineLayout(p.borderPipeLayout)
		p.borderPipeLayout = nil
	}
	if p.glyphPipeLayout != nil {
		p.device.DestroyPipelineLayout(p.glyphPipeLayout)
		p.glyphPipeLayout = nil
	}
	if p.metaLayout != nil {
		p.device.DestroyBindGroupLayout(p.metaLayout)
		p.metaLayout = nil
	}
	if p.atlasLayout != nil {
		p.device.DestroyBindGroupLayout(p.atlasLayout)
		p.atlasLayout = nil
	}
	if p.atlasShader != nil {
		p.device.DestroyShaderModule(p.atlasShader)
		p.atlasShader = nil
	}
	if p.borderShader != nil {
		p.device.DestroyShaderModule(p.borderShader)
		p.borderShader = nil
	}
	if p.glyphShader != nil {
		p.device.DestroyShaderModule(p.glyphShader)
		p.glyphShader = nil
	}
}

// glyphVertexLayout returns the vertex buffer layout for the glyph
// pipeline. Matches VertexInput in glyph.wgsl:
//
//	location 0: position (vec2<f32>)
//	location 1: tex_coord (vec2<f32>)
func glyphVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: glyphVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // tex_coord
			},
		},
	}
}

// borderVertexLayout returns the vertex buffer layout for the debug
// border pipeline: position only.
func borderVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: borderVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			},
		},
	}
}
