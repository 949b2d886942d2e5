// Package render turns plate layouts into pictures.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert an SVG document to other formats using the
// external rsvg-convert tool (from librsvg):
//
//	svg := sink.RenderSVG(layout)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [Available] reports whether the tool is installed so callers can skip the
// raster formats up front instead of failing halfway through a batch.
//
// # Sinks
//
// The [sink] subpackage holds one renderer per output format: SVG, HTML,
// terminal text, JSON, and the PDF/PNG wrappers around this package.
//
// [sink]: github.com/matzehuels/plategen/pkg/render/sink
package render
