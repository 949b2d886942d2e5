package pipeline

import (
	"strconv"

	"github.com/google/uuid"

	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/plate"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GeneratePlacement places the request's experiments onto plates. The result
// has no colours; see [Colorize].
func GeneratePlacement(req plateio.Request, opts Options) (plateio.Layout, error) {
	packer, err := plate.PackerByName(opts.Packer)
	if err != nil {
		return plateio.Layout{}, err
	}
	plates, err := plate.LayoutPlates(req.Experiments(), packer)
	if err != nil {
		return plateio.Layout{}, err
	}

	l := plateio.Export(plates, nil, nil, packer.Name())
	if len(plates) == 0 {
		// Nothing to place still gets the requested geometry.
		spec, _ := plate.SpecFor(req.MaxWellCount)
		l.PlateSize, l.Rows, l.Columns = spec.Wells(), spec.Rows, spec.Columns
	}
	return l, nil
}

// Colorize assigns reagent colours and the legend to a placed layout.
//
// With a non-zero seed the colours are reproducible and the layout ID is
// derived from key and seed, so equal inputs yield equal layouts. With seed
// zero the colours are random and the ID is fresh.
func Colorize(l plateio.Layout, req plateio.Request, seed uint64, key string) plateio.Layout {
	reagents := req.Reagents()
	legend := plate.DistinctReagents(reagents)

	var colors plate.ColorMap
	if seed == 0 {
		colors = plate.AssignColors(reagents, nil)
		l.ID = uuid.NewString()
	} else {
		colors = plate.AssignColors(reagents, plate.NewRand(seed))
		l.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(key+"#"+strconv.FormatUint(seed, 10))).String()
	}

	l.Colors = make(map[string]string, len(colors))
	l.Legend = make([]string, 0, len(legend))
	for _, r := range legend {
		l.Colors[string(r)] = colors[r]
		l.Legend = append(l.Legend, string(r))
	}
	return l
}

// GenerateLayout runs placement and colouring without caching.
func GenerateLayout(req plateio.Request, opts Options) (plateio.Layout, error) {
	opts.SetLayoutDefaults()
	l, err := GeneratePlacement(req, opts)
	if err != nil {
		return plateio.Layout{}, err
	}
	return Colorize(l, req, opts.Seed, ""), nil
}
