package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	perrors "github.com/matzehuels/plategen/pkg/errors"
	"github.com/matzehuels/plategen/pkg/plate"
)

// Layout is the serialized result of a layout run. It carries everything a
// renderer needs, so a saved layout can be rendered again without repeating
// placement.
type Layout struct {
	ID        string            `json:"id"` // run identifier, set when colours are assigned
	PlateSize int               `json:"plate_size"`
	Rows      int               `json:"rows"`
	Columns   int               `json:"columns"`
	Packer    string            `json:"packer,omitempty"`
	Plates    []PlateDoc        `json:"plates"`
	Colors    map[string]string `json:"colors"`
	Legend    []string          `json:"legend"`
}

// PlateDoc is one plate. Only filled wells are listed.
type PlateDoc struct {
	Index int       `json:"index"`
	Wells []WellDoc `json:"wells"`
}

// WellDoc is a filled well with its position.
type WellDoc struct {
	Name    string `json:"name"`
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Sample  string `json:"sample"`
	Reagent string `json:"reagent"`
}

// Export converts placed plates and their colour map into a [Layout]. The
// ID is left empty; the pipeline assigns it when colours are applied.
// legend orders the colour key; reagents missing from colors are skipped.
// Every plate must share one geometry.
func Export(plates []*plate.Plate, colors plate.ColorMap, legend []plate.Reagent, packer string) Layout {
	spec := plate.Spec96
	if len(plates) > 0 {
		spec = plates[0].Spec
	}
	l := Layout{
		PlateSize: spec.Wells(),
		Rows:      spec.Rows,
		Columns:   spec.Columns,
		Packer:    packer,
		Plates:    make([]PlateDoc, len(plates)),
		Colors:    make(map[string]string, len(colors)),
		Legend:    make([]string, 0, len(legend)),
	}
	for i, p := range plates {
		doc := PlateDoc{Index: i, Wells: make([]WellDoc, 0, p.Filled())}
		for r, row := range p.Wells {
			for c, w := range row {
				if w == nil {
					continue
				}
				doc.Wells = append(doc.Wells, WellDoc{
					Name:    spec.WellName(r, c),
					Row:     r,
					Column:  c,
					Sample:  string(w.Sample),
					Reagent: string(w.Reagent),
				})
			}
		}
		l.Plates[i] = doc
	}
	for _, r := range legend {
		hex, ok := colors[r]
		if !ok {
			continue
		}
		l.Colors[string(r)] = hex
		l.Legend = append(l.Legend, string(r))
	}
	return l
}

// Spec returns the plate geometry of the layout.
func (l Layout) Spec() plate.Spec {
	return plate.Spec{Rows: l.Rows, Columns: l.Columns}
}

// ColorMap returns the layout colours keyed by reagent.
func (l Layout) ColorMap() plate.ColorMap {
	colors := make(plate.ColorMap, len(l.Colors))
	for r, hex := range l.Colors {
		colors[plate.Reagent(r)] = hex
	}
	return colors
}

// LegendReagents returns the legend as typed reagents.
func (l Layout) LegendReagents() []plate.Reagent {
	out := make([]plate.Reagent, len(l.Legend))
	for i, r := range l.Legend {
		out[i] = plate.Reagent(r)
	}
	return out
}

// Filled returns the total number of filled wells across all plates.
func (l Layout) Filled() int {
	n := 0
	for _, p := range l.Plates {
		n += len(p.Wells)
	}
	return n
}

// ToPlates rebuilds the plate grids. It fails if a well lies outside the
// layout geometry or two wells share a position.
func (l Layout) ToPlates() ([]*plate.Plate, error) {
	spec := l.Spec()
	if spec.Rows <= 0 || spec.Columns <= 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "layout has no plate geometry")
	}
	plates := make([]*plate.Plate, len(l.Plates))
	for i, doc := range l.Plates {
		p := plate.NewPlate(spec)
		for _, w := range doc.Wells {
			if w.Row < 0 || w.Row >= spec.Rows || w.Column < 0 || w.Column >= spec.Columns {
				return nil, perrors.New(perrors.ErrCodeInvalidInput,
					"plate %d: well %s at (%d,%d) is off the plate", i, w.Name, w.Row, w.Column)
			}
			if p.Wells[w.Row][w.Column] != nil {
				return nil, perrors.New(perrors.ErrCodeInvalidInput,
					"plate %d: well %s is filled twice", i, spec.WellName(w.Row, w.Column))
			}
			p.Wells[w.Row][w.Column] = &plate.Well{Sample: plate.Sample(w.Sample), Reagent: plate.Reagent(w.Reagent)}
		}
		plates[i] = p
	}
	return plates, nil
}

// MarshalLayout serializes a layout to indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout parses a layout from JSON.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode layout")
	}
	return l, nil
}

// WriteLayout writes l as indented JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteLayoutFile writes l to path, creating or truncating the file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadLayoutFile reads a layout previously written by [WriteLayoutFile].
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
