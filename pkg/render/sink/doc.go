// Package sink provides output format renderers for plate layouts.
//
// # Overview
//
// A "sink" transforms a [plateio.Layout] into a final output format:
//
//   - SVG: one labelled grid per plate plus the reagent colour key
//   - HTML: a standalone page embedding the SVG, as served by "plategen serve"
//   - Text: lipgloss tables for the terminal ("plategen show")
//   - JSON: the layout document itself, for re-rendering later
//   - PDF and PNG: SVG converted with rsvg-convert
//
// # SVG Output
//
// [RenderSVG] draws wells as rounded squares filled with the reagent colour.
// Empty wells are white. Rows are lettered and columns numbered the way they
// are printed on physical plates.
//
//	svg := sink.RenderSVG(layout,
//	    sink.WithWellSize(40),
//	    sink.WithTitle("qPCR run 12"),
//	)
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] render SVG first, then convert via
// [render.ToPDF] and [render.ToPNG]. These require librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [plateio.Layout]: github.com/matzehuels/plategen/pkg/io.Layout
// [render.ToPDF]: github.com/matzehuels/plategen/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/plategen/pkg/render.ToPNG
package sink
