package sink

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/plate"
)

var (
	textHeading = lipgloss.NewStyle().Bold(true)
	textDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	textBorder  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	textCell    = lipgloss.NewStyle().Padding(0, 1)
	wellText    = lipgloss.Color("#000000")
)

// TextOption configures terminal rendering.
type TextOption func(*textRenderer)

type textRenderer struct {
	cellWidth int
	reagents  bool
}

// WithCellWidth truncates well labels to n characters. Zero disables truncation.
func WithCellWidth(n int) TextOption { return func(r *textRenderer) { r.cellWidth = n } }

// WithReagentNames prints "sample/reagent" in each well instead of the sample alone.
func WithReagentNames() TextOption { return func(r *textRenderer) { r.reagents = true } }

// RenderText renders every plate as a bordered table with wells coloured by
// reagent, followed by the colour key. The output contains ANSI escapes
// when the terminal supports colour.
func RenderText(l plateio.Layout, opts ...TextOption) string {
	r := textRenderer{cellWidth: 8}
	for _, opt := range opts {
		opt(&r)
	}

	var sb strings.Builder
	for i, p := range l.Plates {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(RenderPlateText(l, p, opts...))
		sb.WriteString("\n")
	}
	if len(l.Legend) > 0 {
		sb.WriteString("\n")
		sb.WriteString(RenderLegendText(l))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderPlateText renders a single plate of the layout.
func RenderPlateText(l plateio.Layout, p plateio.PlateDoc, opts ...TextOption) string {
	r := textRenderer{cellWidth: 8}
	for _, opt := range opts {
		opt(&r)
	}

	grid := make([][]*plateio.WellDoc, l.Rows)
	for row := range grid {
		grid[row] = make([]*plateio.WellDoc, l.Columns)
	}
	for i := range p.Wells {
		w := &p.Wells[i]
		if w.Row < l.Rows && w.Column < l.Columns {
			grid[w.Row][w.Column] = w
		}
	}

	headers := make([]string, l.Columns+1)
	for c := range l.Columns {
		headers[c+1] = fmt.Sprint(c + 1)
	}
	rows := make([][]string, l.Rows)
	for row := range l.Rows {
		cells := make([]string, l.Columns+1)
		cells[0] = plate.RowLabel(row)
		for c, w := range grid[row] {
			if w == nil {
				cells[c+1] = "·"
				continue
			}
			label := w.Sample
			if r.reagents {
				label += "/" + w.Reagent
			}
			cells[c+1] = clip(label, r.cellWidth)
		}
		rows[row] = cells
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(textBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row < 0 || row >= len(grid) || col == 0 {
				return textCell.Inherit(textDim)
			}
			w := grid[row][col-1]
			if w == nil {
				return textCell.Inherit(textDim)
			}
			if hex, ok := l.Colors[w.Reagent]; ok {
				return textCell.Background(lipgloss.Color("#" + hex)).Foreground(wellText)
			}
			return textCell
		})

	title := textHeading.Render(fmt.Sprintf("Plate %d", p.Index+1)) +
		textDim.Render(fmt.Sprintf("  %d/%d wells", len(p.Wells), l.Rows*l.Columns))
	return title + "\n" + t.Render()
}

// RenderLegendText renders the reagent colour key, one reagent per line.
func RenderLegendText(l plateio.Layout) string {
	var sb strings.Builder
	sb.WriteString(textHeading.Render("Reagents"))
	for _, reagent := range l.Legend {
		hex := l.Colors[reagent]
		swatch := lipgloss.NewStyle().Background(lipgloss.Color("#" + hex)).Render("   ")
		fmt.Fprintf(&sb, "\n  %s %s %s", swatch, reagent, textDim.Render("#"+hex))
	}
	return sb.String()
}

func clip(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
