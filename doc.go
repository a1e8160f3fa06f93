// Package etext renders 2D text on the GPU through the wgpu HAL.
//
// Text is organized into rectangular text areas. Each area owns a
// string, a font, a pixel size, and layout settings; glyphs are shaped
// with HarfBuzz (via go-text/typesetting), rasterized on the CPU, and
// cached in a single shared atlas texture that grows on demand and
// evicts least recently used glyphs once it reaches its maximum size.
//
// A [TextSystem] tracks which areas changed since the last frame and
// rebuilds only their vertex buffers, so static text costs nothing per
// frame beyond its draw call.
//
// Basic usage:
//
//	ts, err := etext.New(device, queue, width, height, etext.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ts.Destroy()
//
//	const roboto etext.FontID = 0
//	if err := ts.AddFont(roboto, fontBytes); err != nil {
//	    log.Fatal(err)
//	}
//
//	handle := ts.AddTextArea(etext.TextArea{
//	    X: 100, Y: 100, Width: 400, Height: 200,
//	    Text: "Hello, world!",
//	    Font: roboto,
//	    Size: 24,
//	})
//
//	// Each frame, inside a render pass:
//	if err := ts.Render(pass); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Later, to change the text:
//	if area := ts.ModifyTextArea(handle); area != nil {
//	    area.Text = "Goodbye!"
//	}
package etext
