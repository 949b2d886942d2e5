package plate

// Plate is a fixed-size grid of wells. A nil entry is an empty well.
// Plates never grow or shrink; they are only mutated by placing fragments.
type Plate struct {
	Spec  Spec
	Wells [][]*Well
}

// NewPlate allocates an empty plate with the given geometry.
func NewPlate(spec Spec) *Plate {
	wells := make([][]*Well, spec.Rows)
	for r := range wells {
		wells[r] = make([]*Well, spec.Columns)
	}
	return &Plate{Spec: spec, Wells: wells}
}

// At returns the well at row r, column c, or nil if it is empty.
func (p *Plate) At(r, c int) *Well { return p.Wells[r][c] }

// Filled returns the number of occupied wells.
func (p *Plate) Filled() int {
	n := 0
	for _, row := range p.Wells {
		for _, w := range row {
			if w != nil {
				n++
			}
		}
	}
	return n
}

// Empty returns the number of unoccupied wells.
func (p *Plate) Empty() int { return p.Spec.Wells() - p.Filled() }

// Anchor is a candidate top-left position for a fragment.
type Anchor struct {
	Row    int
	Column int
}

// Anchors returns, for every row that still has room, the position of the
// row's first empty well. Anchors are ordered by row.
func (p *Plate) Anchors() []Anchor {
	var anchors []Anchor
	for r, row := range p.Wells {
		for c, w := range row {
			if w == nil {
				anchors = append(anchors, Anchor{Row: r, Column: c})
				break
			}
		}
	}
	return anchors
}

// Fits reports whether m can be placed with its top-left cell at a: the
// fragment must stay inside the plate and every well it would cover must be
// empty.
func (p *Plate) Fits(m Matrix, a Anchor) bool {
	if m.Rows() > p.Spec.Rows-a.Row || m.Columns() > p.Spec.Columns-a.Column {
		return false
	}
	for r := range m.Rows() {
		for c := range m.Columns() {
			if p.Wells[a.Row+r][a.Column+c] != nil {
				return false
			}
		}
	}
	return true
}

// place copies the cells of m onto the plate at a. Callers must check
// [Plate.Fits] first.
func (p *Plate) place(m Matrix, a Anchor) {
	for r, row := range m.Cells {
		for c, w := range row {
			p.Wells[a.Row+r][a.Column+c] = &w
		}
	}
}

// Place puts m on the plate at the first anchor that fits, scanning anchors
// in row order. It reports whether a fitting anchor was found.
func (p *Plate) Place(m Matrix) bool {
	for _, a := range p.Anchors() {
		if p.Fits(m, a) {
			p.place(m, a)
			return true
		}
	}
	return false
}
