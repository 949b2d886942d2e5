package plate

import (
	"slices"

	perrors "github.com/matzehuels/plategen/pkg/errors"
)

// BuildExperiments expands every experiment into its matrix.
//
// Each sample becomes one row: the product {sample} x reagents is repeated
// once per replicate and the row is then sorted by (sample, reagent), which
// groups each reagent's replicates into a contiguous run of columns.
//
// Input is validated before any matrix is built; on failure BuildExperiments
// returns a configuration error (see [perrors.IsConfiguration]) and no
// matrices. Identical inputs always produce identical matrices.
func BuildExperiments(in Experiments) ([]Matrix, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	matrices := make([]Matrix, 0, in.Len())
	for e := range in.Samples {
		matrices = append(matrices, buildExperiment(in.Samples[e], in.Reagents[e], in.Replicates[e]))
	}
	return matrices, nil
}

func buildExperiment(samples []Sample, reagents []Reagent, replicates int) Matrix {
	cells := make([][]Well, 0, len(samples))
	for _, s := range samples {
		row := make([]Well, 0, len(reagents)*replicates)
		for range replicates {
			for _, r := range reagents {
				row = append(row, Well{Sample: s, Reagent: r})
			}
		}
		slices.SortFunc(row, compareWells)
		cells = append(cells, row)
	}
	return Matrix{Cells: cells}
}

// Validate checks an experiment definition without building anything.
//
// It rejects unsupported plate sizes, lists of different lengths,
// non-positive replicate counts and duplicate samples or reagents within a
// single experiment. Reusing a name across experiments is allowed.
func Validate(in Experiments) error {
	if err := perrors.ValidateWellCount(in.MaxWellCount); err != nil {
		return err
	}

	if len(in.Reagents) != len(in.Samples) || len(in.Replicates) != len(in.Samples) {
		return perrors.New(perrors.ErrCodeInconsistentExperiments,
			"inconsistent number of experiments: %d sample lists, %d reagent lists, %d replicate counts",
			len(in.Samples), len(in.Reagents), len(in.Replicates))
	}

	for e := range in.Samples {
		if in.Replicates[e] < 1 {
			return perrors.New(perrors.ErrCodeInvalidReplicates,
				"experiment %d: replicate count must be positive, got %d", e+1, in.Replicates[e])
		}
		if dup, ok := firstDuplicate(in.Samples[e]); ok {
			return perrors.New(perrors.ErrCodeDuplicateEntry,
				"experiment %d: sample %q listed more than once", e+1, dup)
		}
		if dup, ok := firstDuplicate(in.Reagents[e]); ok {
			return perrors.New(perrors.ErrCodeDuplicateEntry,
				"experiment %d: reagent %q listed more than once", e+1, dup)
		}
	}
	return nil
}

func firstDuplicate[T comparable](items []T) (T, bool) {
	seen := make(map[T]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			return it, true
		}
		seen[it] = struct{}{}
	}
	var zero T
	return zero, false
}
