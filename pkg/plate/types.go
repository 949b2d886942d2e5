package plate

import (
	"cmp"
	"fmt"
)

// Sample identifies a biological sample. Samples are opaque; they only need
// to be unique within one experiment.
type Sample string

// Reagent identifies a reagent (assay, primer set, ...). Like [Sample], a
// reagent is only required to be unique within one experiment.
type Reagent string

// Well is a single (sample, reagent) assignment.
type Well struct {
	Sample  Sample  `json:"sample"`
	Reagent Reagent `json:"reagent"`
}

// compareWells orders wells by sample, then reagent.
func compareWells(a, b Well) int {
	if c := cmp.Compare(a.Sample, b.Sample); c != 0 {
		return c
	}
	return cmp.Compare(a.Reagent, b.Reagent)
}

// Matrix is a rectangular grid of fully populated wells. An experiment
// matrix has one row per sample; fragments produced by [Split] are
// sub-rectangles of an experiment matrix.
type Matrix struct {
	Cells [][]Well
}

// Rows returns the number of rows in the matrix.
func (m Matrix) Rows() int { return len(m.Cells) }

// Columns returns the number of columns in the matrix.
// All rows have the same length; an empty matrix has zero columns.
func (m Matrix) Columns() int {
	if len(m.Cells) == 0 {
		return 0
	}
	return len(m.Cells[0])
}

// Size returns the number of wells the matrix covers.
func (m Matrix) Size() int { return m.Rows() * m.Columns() }

// Cell returns the well at row r, column c.
func (m Matrix) Cell(r, c int) Well { return m.Cells[r][c] }

// sub copies the rectangle [r0,r1) x [c0,c1) into a new matrix that shares
// no backing storage with m.
func (m Matrix) sub(r0, r1, c0, c1 int) Matrix {
	cells := make([][]Well, 0, r1-r0)
	for r := r0; r < r1; r++ {
		row := make([]Well, c1-c0)
		copy(row, m.Cells[r][c0:c1])
		cells = append(cells, row)
	}
	return Matrix{Cells: cells}
}

// Spec describes the geometry of a plate. Specs are immutable values.
type Spec struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Standard plate geometries.
var (
	Spec96  = Spec{Rows: 8, Columns: 12}
	Spec384 = Spec{Rows: 16, Columns: 24}
)

// SpecFor returns the plate geometry for a maximum well count.
// Only 96 and 384 are supported.
func SpecFor(wellCount int) (Spec, bool) {
	switch wellCount {
	case 96:
		return Spec96, true
	case 384:
		return Spec384, true
	}
	return Spec{}, false
}

// Wells returns the well capacity of the plate.
func (s Spec) Wells() int { return s.Rows * s.Columns }

// WellName returns the conventional name of a well, e.g. "A1" or "P24".
func (s Spec) WellName(row, col int) string {
	return fmt.Sprintf("%s%d", RowLabel(row), col+1)
}

// RowLabel returns the letter used for a plate row (0 -> "A").
func RowLabel(row int) string {
	if row < 26 {
		return string(rune('A' + row))
	}
	return RowLabel(row/26-1) + string(rune('A'+row%26))
}

// Experiments bundles the four plain inputs of a layout request. The three
// lists are indexed by experiment and must have equal length.
type Experiments struct {
	MaxWellCount int
	Samples      [][]Sample
	Reagents     [][]Reagent
	Replicates   []int
}

// Len returns the number of experiments described by the sample list.
func (e Experiments) Len() int { return len(e.Samples) }
