package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	plateio "github.com/matzehuels/plategen/pkg/io"
)

func threePlates() plateio.Layout {
	return plateio.Layout{
		PlateSize: 96,
		Rows:      8,
		Columns:   12,
		Plates: []plateio.PlateDoc{
			{Index: 0, Wells: []plateio.WellDoc{{Name: "A1", Sample: "S1", Reagent: "R1"}}},
			{Index: 1, Wells: []plateio.WellDoc{{Name: "B2", Row: 1, Column: 1, Sample: "S2", Reagent: "R1"}}},
			{Index: 2},
		},
		Colors: map[string]string{"R1": "aabbcc"},
		Legend: []string{"R1"},
	}
}

func press(t *testing.T, m PlateViewModel, key string) (PlateViewModel, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(PlateViewModel), cmd
}

func TestPlateViewNavigation(t *testing.T) {
	m := NewPlateViewModel(threePlates())

	steps := []struct {
		key  string
		want int
	}{
		{"left", 0},
		{"right", 1},
		{"l", 2},
		{"right", 2},
		{"h", 1},
		{"g", 0},
		{"G", 2},
		{"p", 1},
	}
	for _, s := range steps {
		m, _ = press(t, m, s.key)
		if m.Current != s.want {
			t.Fatalf("after %q Current = %d, want %d", s.key, m.Current, s.want)
		}
	}
}

func TestPlateViewLegendToggle(t *testing.T) {
	m := NewPlateViewModel(threePlates())
	if !strings.Contains(m.View(), "Reagents") {
		t.Error("legend hidden by default")
	}
	m, _ = press(t, m, "k")
	if m.ShowLegend || strings.Contains(m.View(), "Reagents") {
		t.Error("legend still shown after toggle")
	}
}

func TestPlateViewQuit(t *testing.T) {
	for _, key := range []string{"q", "esc"} {
		_, cmd := press(t, NewPlateViewModel(threePlates()), key)
		if cmd == nil {
			t.Fatalf("%q returned no command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q did not quit", key)
		}
	}
}

func TestPlateViewRender(t *testing.T) {
	m := NewPlateViewModel(threePlates())
	m, _ = press(t, m, "right")
	view := m.View()
	for _, want := range []string{"96-well layout", "Plate 2", "S2", "[2/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if m = next.(PlateViewModel); m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
}

func TestPlateViewEmpty(t *testing.T) {
	m := NewPlateViewModel(plateio.Layout{PlateSize: 384, Rows: 16, Columns: 24})
	m, _ = press(t, m, "G")
	if m.Current != 0 {
		t.Errorf("Current = %d on empty layout", m.Current)
	}
	if !strings.Contains(m.View(), "No plates") {
		t.Error("empty layout not reported")
	}
}
