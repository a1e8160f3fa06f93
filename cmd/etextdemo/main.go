// Command etextdemo exercises the etext library headlessly: it builds
// a text system on the noop backend, lays out a few text areas, and
// reports atlas statistics after a render pass.
package main

import (
	"flag"
	"log"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/etext"
)

func main() {
	var (
		width  = flag.Uint("width", 800, "surface width")
		height = flag.Uint("height", 600, "surface height")
		text   = flag.String("text", "Hello from etext!\nWrapped and aligned text areas.", "text to lay out")
		size   = flag.Float64("size", 24, "font size in pixels")
	)
	flag.Parse()

	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		log.Fatalf("create instance: %v", err)
	}
	defer instance.Destroy()

	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		log.Fatalf("open adapter: %v", err)
	}
	device, queue := openDev.Device, openDev.Queue
	defer device.Destroy()

	sys, err := etext.New(device, queue, uint32(*width), uint32(*height), etext.DefaultConfig())
	if err != nil {
		log.Fatalf("create text system: %v", err)
	}
	defer sys.Destroy()

	if err := sys.AddFont(0, goregular.TTF); err != nil {
		log.Fatalf("add font: %v", err)
	}

	sys.AddTextArea(etext.TextArea{
		X: 40, Y: 40, Width: float32(*width) - 80, Height: 200,
		Text: *text, Size: float32(*size),
		HAlign: etext.AlignLeft, VAlign: etext.AlignTop,
	})
	sys.AddTextArea(etext.TextArea{
		X: 40, Y: 280, Width: float32(*width) - 80, Height: 200,
		Text: "Centered", Size: 2 * float32(*size),
	})

	rp, done, err := beginPass(device, uint32(*width), uint32(*height))
	if err != nil {
		log.Fatalf("begin render pass: %v", err)
	}
	defer done()

	if err := sys.Render(rp); err != nil {
		log.Fatalf("render: %v", err)
	}

	log.Printf("rendered %dx%d surface", *width, *height)
}

// beginPass opens a render pass against an offscreen color target.
func beginPass(device hal.Device, w, h uint32) (hal.RenderPassEncoder, func(), error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "demo_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "demo_target_view"})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, nil, err
	}
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "demo_encoder"})
	if err != nil {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
		return nil, nil, err
	}
	if err := encoder.BeginEncoding("demo_pass"); err != nil {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
		return nil, nil, err
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "demo_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{},
		}},
	})
	done := func() {
		rp.End()
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
	}
	return rp, done, nil
}
