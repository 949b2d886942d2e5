package plate

// Split cuts matrices that exceed the plate geometry into fragments that fit.
//
// The column phase runs first: a matrix wider than the plate is cut at every
// column where the reagent of the first row changes, yielding one fragment
// per reagent run with all rows retained. Column 0 always starts a run. A
// single run that is still wider than the plate (more replicates than plate
// columns) is cut into chunks of spec.Columns columns.
//
// The row phase then cuts every fragment taller than the plate into
// consecutive chunks of spec.Rows rows. Only non-empty chunks are produced,
// so a row count that is an exact multiple of spec.Rows yields exactly
// rows/spec.Rows chunks.
//
// Matrices that already fit are passed through unchanged. Matrices without
// any cells are dropped. Together the fragments cover exactly the cells of
// the input. The order of the result is not significant; packers re-sort.
func Split(matrices []Matrix, spec Spec) []Matrix {
	var byColumns []Matrix
	for _, m := range matrices {
		if m.Size() == 0 {
			continue
		}
		if m.Columns() <= spec.Columns {
			byColumns = append(byColumns, m)
			continue
		}
		byColumns = append(byColumns, splitColumns(m, spec.Columns)...)
	}

	var out []Matrix
	for _, m := range byColumns {
		if m.Rows() <= spec.Rows {
			out = append(out, m)
			continue
		}
		out = append(out, splitRows(m, spec.Rows)...)
	}
	return out
}

// reagentRuns returns the start column of every reagent run in the first row.
func reagentRuns(m Matrix) []int {
	first := m.Cells[0]
	starts := []int{0}
	for c := 1; c < len(first); c++ {
		if first[c].Reagent != first[c-1].Reagent {
			starts = append(starts, c)
		}
	}
	return starts
}

func splitColumns(m Matrix, maxColumns int) []Matrix {
	starts := reagentRuns(m)
	var out []Matrix
	for i, start := range starts {
		end := m.Columns()
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		for c0 := start; c0 < end; c0 += maxColumns {
			out = append(out, m.sub(0, m.Rows(), c0, min(c0+maxColumns, end)))
		}
	}
	return out
}

func splitRows(m Matrix, maxRows int) []Matrix {
	var out []Matrix
	for r0 := 0; r0 < m.Rows(); r0 += maxRows {
		out = append(out, m.sub(r0, min(r0+maxRows, m.Rows()), 0, m.Columns()))
	}
	return out
}
