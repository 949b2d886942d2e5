package sink

import (
	"bytes"
	"fmt"
	"html/template"

	plateio "github.com/matzehuels/plategen/pkg/io"
)

var pageTemplate = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Helvetica, Arial, sans-serif; margin: 2rem; color: #222; }
    .summary { color: #555; }
    table.legend { border-collapse: collapse; margin-top: 1rem; }
    table.legend td { padding: 0.2rem 0.6rem; }
    .swatch { width: 1.2rem; height: 1.2rem; border: 1px solid #555; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p class="summary">{{len .Layout.Plates}} plate(s) of {{.Layout.PlateSize}} wells, {{.Layout.Filled}} wells filled.</p>
  <div class="plates">{{.SVG}}</div>
  {{- if .Layout.Legend}}
  <table class="legend">
    {{- range .Legend}}
    <tr><td><div class="swatch" style="background: #{{.Color}}"></div></td><td>{{.Reagent}}</td><td><code>#{{.Color}}</code></td></tr>
    {{- end}}
  </table>
  {{- end}}
</body>
</html>
`))

// HTMLOption configures HTML rendering.
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	title   string
	svgOpts []SVGOption
}

// WithHTMLTitle sets the page title. The default is "Plate layout".
func WithHTMLTitle(title string) HTMLOption { return func(r *htmlRenderer) { r.title = title } }

// WithHTMLSVGOptions passes options through to the embedded SVG renderer.
func WithHTMLSVGOptions(opts ...SVGOption) HTMLOption {
	return func(r *htmlRenderer) { r.svgOpts = opts }
}

type legendRow struct {
	Reagent string
	Color   template.CSS
}

// RenderHTML renders a standalone page with the plate SVG and a reagent
// colour table.
func RenderHTML(l plateio.Layout, opts ...HTMLOption) ([]byte, error) {
	r := htmlRenderer{title: "Plate layout"}
	for _, opt := range opts {
		opt(&r)
	}

	legend := make([]legendRow, 0, len(l.Legend))
	for _, reagent := range l.Legend {
		hex := l.Colors[reagent]
		if !hexColor.MatchString(hex) {
			hex = "ffffff"
		}
		legend = append(legend, legendRow{Reagent: reagent, Color: template.CSS(hex)})
	}

	data := struct {
		Title  string
		Layout plateio.Layout
		SVG    template.HTML
		Legend []legendRow
	}{
		Title:  r.title,
		Layout: l,
		// RenderSVG escapes all user text.
		SVG:    template.HTML(RenderSVG(l, r.svgOpts...)),
		Legend: legend,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
