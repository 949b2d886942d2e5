package plate

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// ColorMap maps each reagent to a six-digit lowercase hex colour (no "#").
type ColorMap map[Reagent]string

// AssignColors gives every distinct reagent across all experiments a light
// colour. Each of the three bytes is drawn uniformly from the upper half of
// the byte range (0x80-0xff), so labels stay readable on top of it.
//
// Colours are presentation only and do not influence placement. Pass a
// seeded rng for reproducible output; a nil rng uses a time-seeded source,
// so repeated calls are then not guaranteed to agree.
func AssignColors(reagents [][]Reagent, rng *rand.Rand) ColorMap {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = NewRand(seed)
	}
	colors := make(ColorMap)
	for _, r := range DistinctReagents(reagents) {
		colors[r] = fmt.Sprintf("%02x%02x%02x", lightByte(rng), lightByte(rng), lightByte(rng))
	}
	return colors
}

// NewRand returns a PCG generator for seed, suitable for [AssignColors].
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

func lightByte(rng *rand.Rand) int {
	return 0x80 + rng.IntN(0x80)
}

// DistinctReagents flattens the reagent lists and removes duplicates,
// keeping the order in which reagents first appear.
func DistinctReagents(reagents [][]Reagent) []Reagent {
	seen := make(map[Reagent]struct{})
	var out []Reagent
	for _, list := range reagents {
		for _, r := range list {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}
