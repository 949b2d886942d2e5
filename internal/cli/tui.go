package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/render/sink"
)

var (
	viewDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	viewPagerStyle = lipgloss.NewStyle().Foreground(colorGray)
	viewActiveDot  = lipgloss.NewStyle().Foreground(colorCyan).Render("●")
	viewIdleDot    = viewDimStyle.Render("○")
)

// =============================================================================
// PlateViewModel - Interactive plate browser
// =============================================================================

// PlateViewModel is the bubbletea model that pages through the plates of a
// layout one at a time.
type PlateViewModel struct {
	Layout     plateio.Layout
	Current    int
	ShowLegend bool

	opts   []sink.TextOption
	width  int
	height int
}

// NewPlateViewModel creates a viewer positioned on the first plate.
func NewPlateViewModel(l plateio.Layout, opts ...sink.TextOption) PlateViewModel {
	return PlateViewModel{Layout: l, ShowLegend: true, opts: opts}
}

func (m PlateViewModel) Init() tea.Cmd {
	return nil
}

func (m PlateViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	last := len(m.Layout.Plates) - 1
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n", "pgdown", " ":
			if m.Current < last {
				m.Current++
			}
		case "left", "h", "p", "pgup":
			if m.Current > 0 {
				m.Current--
			}
		case "g", "home":
			m.Current = 0
		case "G", "end":
			m.Current = max(last, 0)
		case "k":
			m.ShowLegend = !m.ShowLegend
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m PlateViewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("%d-well layout", m.Layout.PlateSize)))
	b.WriteString("  ")
	b.WriteString(viewDimStyle.Render("←/→ plates  g/G first/last  k key  q quit"))
	b.WriteString("\n\n")

	if len(m.Layout.Plates) == 0 {
		b.WriteString(viewDimStyle.Render("No plates"))
		return b.String()
	}

	b.WriteString(sink.RenderPlateText(m.Layout, m.Layout.Plates[m.Current], m.opts...))
	b.WriteString("\n\n")
	b.WriteString(m.pager())

	if m.ShowLegend && len(m.Layout.Legend) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sink.RenderLegendText(m.Layout))
	}
	return b.String()
}

// pager renders the plate position indicator, e.g. "○ ● ○  [2/3]".
func (m PlateViewModel) pager() string {
	n := len(m.Layout.Plates)
	dots := make([]string, 0, n)
	if n <= 20 {
		for i := range n {
			if i == m.Current {
				dots = append(dots, viewActiveDot)
			} else {
				dots = append(dots, viewIdleDot)
			}
		}
	}
	return strings.Join(dots, " ") + viewPagerStyle.Render(fmt.Sprintf("  [%d/%d]", m.Current+1, n))
}
