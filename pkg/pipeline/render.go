package pipeline

import (
	"fmt"

	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/render/sink"
)

// RenderFromLayout generates output artifacts in the requested formats.
func RenderFromLayout(l plateio.Layout, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, svgOpts...)
		case FormatHTML:
			htmlOpts := []sink.HTMLOption{sink.WithHTMLSVGOptions(svgOpts...)}
			if opts.Title != "" {
				htmlOpts = append(htmlOpts, sink.WithHTMLTitle(opts.Title))
			}
			data, err = sink.RenderHTML(l, htmlOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(l, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(DefaultPNGScale))
		case FormatPDF:
			data, err = sink.RenderPDF(l, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(l)
		case FormatText:
			data = []byte(sink.RenderText(l))
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{
		sink.WithWellSize(opts.WellSize),
		sink.WithLabels(!opts.NoLabels),
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	return svgOpts
}
