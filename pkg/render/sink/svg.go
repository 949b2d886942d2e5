package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"

	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/plate"
)

// DefaultWellSize is the edge length of one well in SVG user units.
const DefaultWellSize = 48.0

const (
	emptyFill   = "#ffffff"
	emptyStroke = "#c8c8c8"
	wellStroke  = "#555555"
	fontFamily  = "Helvetica, Arial, sans-serif"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	wellSize float64
	title    string
	labels   bool
}

// WithWellSize sets the well edge length. Non-positive values are ignored.
func WithWellSize(s float64) SVGOption {
	return func(r *svgRenderer) {
		if s > 0 {
			r.wellSize = s
		}
	}
}

// WithTitle adds a heading above the first plate.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithLabels toggles the sample and reagent text inside filled wells.
func WithLabels(on bool) SVGOption { return func(r *svgRenderer) { r.labels = on } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{wellSize: DefaultWellSize, labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// geometry holds the derived measurements of one rendering.
type geometry struct {
	well     float64
	pad      float64
	gutter   float64 // room for row letters and column numbers
	heading  float64 // height of a plate heading
	plateW   float64
	plateH   float64 // heading + column numbers + grid
	legendH  float64
	titleH   float64
	swatch   float64
	fontSize float64
}

func (r svgRenderer) geometry(l plateio.Layout) geometry {
	g := geometry{
		well:   r.wellSize,
		pad:    r.wellSize / 2,
		gutter: r.wellSize * 0.6,
		swatch: r.wellSize * 0.4,
	}
	g.heading = r.wellSize * 0.7
	g.fontSize = r.wellSize * 0.22
	g.plateW = g.gutter + float64(l.Columns)*g.well
	g.plateH = g.heading + g.gutter + float64(l.Rows)*g.well
	if r.title != "" {
		g.titleH = r.wellSize * 0.9
	}
	if len(l.Legend) > 0 {
		g.legendH = g.heading + float64(len(l.Legend))*(g.swatch+g.swatch/2)
	}
	return g
}

// RenderSVG draws every plate of the layout as a labelled grid, followed by
// the reagent colour key in legend order.
func RenderSVG(l plateio.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	g := r.geometry(l)

	width := 2*g.pad + g.plateW
	height := 2*g.pad + g.titleH + float64(len(l.Plates))*(g.plateH+g.pad) + g.legendH

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		width, height, width, height, fontFamily)
	fmt.Fprintf(&buf, `  <rect width="%.1f" height="%.1f" fill="#ffffff"/>`+"\n", width, height)

	y := g.pad
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold">%s</text>`+"\n",
			g.pad, y+g.titleH*0.7, g.titleH*0.6, escapeXML(r.title))
		y += g.titleH
	}

	colors := l.Colors
	for _, p := range l.Plates {
		r.renderPlate(&buf, l, p, colors, g, g.pad, y)
		y += g.plateH + g.pad
	}
	if len(l.Legend) > 0 {
		renderLegend(&buf, l, g, g.pad, y)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderPlate(buf *bytes.Buffer, l plateio.Layout, p plateio.PlateDoc, colors map[string]string, g geometry, x, y float64) {
	fmt.Fprintf(buf, `  <g class="plate" id="plate-%d">`+"\n", p.Index+1)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold">Plate %d</text>`+"\n",
		x, y+g.heading*0.7, g.heading*0.5, p.Index+1)

	gridX := x + g.gutter
	gridY := y + g.heading + g.gutter
	label := g.gutter * 0.55

	for c := range l.Columns {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle">%d</text>`+"\n",
			gridX+(float64(c)+0.5)*g.well, gridY-g.gutter*0.3, label, c+1)
	}
	for row := range l.Rows {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			x+g.gutter/2, gridY+(float64(row)+0.5)*g.well, label, plate.RowLabel(row))
	}

	filled := make(map[[2]int]plateio.WellDoc, len(p.Wells))
	for _, w := range p.Wells {
		filled[[2]int{w.Row, w.Column}] = w
	}

	inset := g.well * 0.06
	size := g.well - 2*inset
	for row := range l.Rows {
		for c := range l.Columns {
			wx := gridX + float64(c)*g.well + inset
			wy := gridY + float64(row)*g.well + inset
			w, ok := filled[[2]int{row, c}]
			if !ok {
				fmt.Fprintf(buf, `    <rect class="well empty" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="%s"/>`+"\n",
					wx, wy, size, size, inset*2, emptyFill, emptyStroke)
				continue
			}
			fill := fillColor(colors[w.Reagent])
			fmt.Fprintf(buf, `    <rect class="well" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="%s" data-well="%s" data-sample="%s" data-reagent="%s"/>`+"\n",
				wx, wy, size, size, inset*2, fill, wellStroke, w.Name, escapeXML(w.Sample), escapeXML(w.Reagent))
			if r.labels {
				cx := wx + size/2
				fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle">%s</text>`+"\n",
					cx, wy+size*0.42, g.fontSize, escapeXML(truncate(w.Sample, size, g.fontSize)))
				fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" fill="%s">%s</text>`+"\n",
					cx, wy+size*0.78, g.fontSize*0.85, wellStroke, escapeXML(truncate(w.Reagent, size, g.fontSize*0.85)))
			}
		}
	}
	buf.WriteString("  </g>\n")
}

func renderLegend(buf *bytes.Buffer, l plateio.Layout, g geometry, x, y float64) {
	buf.WriteString(`  <g class="legend">` + "\n")
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold">Reagents</text>`+"\n",
		x, y+g.heading*0.7, g.heading*0.5)
	y += g.heading
	step := g.swatch * 1.5
	for i, reagent := range l.Legend {
		sy := y + float64(i)*step
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s"/>`+"\n",
			x, sy, g.swatch, g.swatch, fillColor(l.Colors[reagent]), wellStroke)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" dominant-baseline="central">%s</text>`+"\n",
			x+g.swatch*1.5, sy+g.swatch/2, g.swatch*0.8, escapeXML(reagent))
	}
	buf.WriteString("  </g>\n")
}

var hexColor = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// fillColor turns a ColorMap entry into an SVG paint. Anything that is not a
// six-digit hex colour paints like an empty well.
func fillColor(hex string) string {
	if !hexColor.MatchString(hex) {
		return emptyFill
	}
	return "#" + hex
}

const charWidth = 0.55

// truncate shortens s so that it fits into width at the given font size.
func truncate(s string, width, fontSize float64) string {
	runes := []rune(s)
	maxChars := max(3, int(width/(fontSize*charWidth)))
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-2]) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
