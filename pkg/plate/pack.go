package plate

import (
	"cmp"
	"slices"

	perrors "github.com/matzehuels/plategen/pkg/errors"
)

// Packer places plate-sized fragments onto plates. Implementations must place
// every fragment exactly once without overlapping wells, and every returned
// plate must have the geometry of spec.
type Packer interface {
	Name() string
	Pack(fragments []Matrix, spec Spec) ([]*Plate, error)
}

// SortKey selects the fragment size used to order fragments before packing.
type SortKey int

const (
	// ByRows orders fragments by row count alone.
	ByRows SortKey = iota
	// ByArea orders fragments by the number of wells they cover.
	ByArea
)

func (k SortKey) size(m Matrix) int {
	if k == ByArea {
		return m.Size()
	}
	return m.Rows()
}

// Packer names accepted by [PackerByName].
const (
	PackerFFD     = "ffd"
	PackerFFDArea = "ffd-area"
)

// DefaultPacker is the packer used when none is specified.
var DefaultPacker Packer = FirstFitDecreasing{}

// FirstFitDecreasing is a greedy first-fit-decreasing packer with corner
// placement. It is deterministic but not optimal.
//
// Fragments are stably sorted largest first by Key, ties keeping their input
// order. Each fragment is placed at the first anchor of the current plate it
// fits (see [Plate.Anchors] and [Plate.Fits]). After one pass over the
// remaining fragments a new plate is opened if anything is left.
type FirstFitDecreasing struct {
	Key SortKey
}

// Name returns the packer's registry name.
func (f FirstFitDecreasing) Name() string {
	if f.Key == ByArea {
		return PackerFFDArea
	}
	return PackerFFD
}

// Pack implements [Packer]. It returns a GEOMETRY error if a fragment does
// not fit on an empty plate.
func (f FirstFitDecreasing) Pack(fragments []Matrix, spec Spec) ([]*Plate, error) {
	for i, m := range fragments {
		if m.Rows() > spec.Rows || m.Columns() > spec.Columns {
			return nil, perrors.New(perrors.ErrCodeGeometry,
				"fragment %d is %dx%d, larger than the %dx%d plate", i, m.Rows(), m.Columns(), spec.Rows, spec.Columns)
		}
	}

	unplaced := slices.Clone(fragments)
	slices.SortStableFunc(unplaced, func(a, b Matrix) int {
		return cmp.Compare(f.Key.size(b), f.Key.size(a))
	})
	unplaced = slices.DeleteFunc(unplaced, func(m Matrix) bool { return m.Size() == 0 })

	var plates []*Plate
	for len(unplaced) > 0 {
		p := NewPlate(spec)
		plates = append(plates, p)

		remaining := unplaced[:0:0]
		for _, m := range unplaced {
			if !p.Place(m) {
				remaining = append(remaining, m)
			}
		}
		if len(remaining) == len(unplaced) {
			return nil, perrors.New(perrors.ErrCodeGeometry,
				"%d fragments could not be placed on an empty plate", len(remaining))
		}
		unplaced = remaining
	}
	return plates, nil
}

// PackerByName returns the packer registered under name. An empty name
// selects [DefaultPacker].
func PackerByName(name string) (Packer, error) {
	switch name {
	case "", PackerFFD:
		return FirstFitDecreasing{Key: ByRows}, nil
	case PackerFFDArea:
		return FirstFitDecreasing{Key: ByArea}, nil
	}
	return nil, perrors.New(perrors.ErrCodeInvalidPacker, "unknown packer %q (ffd, ffd-area)", name)
}

// PackerNames lists the registered packer names.
func PackerNames() []string {
	return []string{PackerFFD, PackerFFDArea}
}
