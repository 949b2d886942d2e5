package cli

import (
	"bytes"
	"strings"
	"testing"

	plateio "github.com/matzehuels/plategen/pkg/io"
)

func filledLayout(plates, perPlate int, legend ...string) plateio.Layout {
	l := plateio.Layout{PlateSize: 96, Rows: 8, Columns: 12, Legend: legend}
	for i := 0; i < plates; i++ {
		p := plateio.PlateDoc{Index: i}
		for j := 0; j < perPlate; j++ {
			p.Wells = append(p.Wells, plateio.WellDoc{Sample: "S1", Reagent: "R1"})
		}
		l.Plates = append(l.Plates, p)
	}
	return l
}

func TestLayoutStatParts(t *testing.T) {
	tests := []struct {
		name   string
		layout plateio.Layout
		cached bool
		want   []string
	}{
		{"single plate", filledLayout(1, 14, "R1", "R2", "R3"), false, []string{"1 plate", "14/96 wells (14%)", "3 reagents", "fresh"}},
		{"cached", filledLayout(2, 48, "R1"), true, []string{"2 plates", "96/192 wells (50%)", "1 reagent", "cached"}},
		{"empty", plateio.Layout{PlateSize: 384}, false, []string{"0 plates", "fresh"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := layoutStatParts(tt.layout, tt.cached)
			if len(got) != len(tt.want) {
				t.Fatalf("layoutStatParts() = %q, want %q", got, tt.want)
			}
			for i, want := range tt.want {
				if !strings.Contains(got[i], want) {
					t.Errorf("part %d = %q, want %q", i, got[i], want)
				}
			}
		})
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	out := newPrinter(&buf)
	out.success("Layout complete")
	out.file("run.layout.json")
	out.keyValue("Backend", "file")
	out.nextStep("Render it", "plategen render run.layout.json")
	out.layoutStats(filledLayout(1, 14, "R1"), true)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("printed %d lines, want 5:\n%s", len(lines), buf.String())
	}
	for i, want := range []string{"Layout complete", "run.layout.json", "file", "plategen render run.layout.json", "14/96 wells"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want it to contain %q", i, lines[i], want)
		}
	}
}

func TestPlural(t *testing.T) {
	for n, want := range map[int]string{0: "0 wells", 1: "1 well", 12: "12 wells"} {
		if got := plural(n, "well"); got != want {
			t.Errorf("plural(%d) = %q, want %q", n, got, want)
		}
	}
}
