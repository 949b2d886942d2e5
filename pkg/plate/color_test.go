package plate

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lightColor = regexp.MustCompile(`^([89a-f][0-9a-f]){3}$`)

func TestAssignColors(t *testing.T) {
	reagents := [][]Reagent{{"R1", "R2"}, {"R2", "R3"}, {"R1"}}
	colors := AssignColors(reagents, NewRand(42))

	require.Len(t, colors, 3)
	for r, c := range colors {
		assert.Regexp(t, lightColor, c, "reagent %s", r)
	}
}

func TestAssignColorsSeeded(t *testing.T) {
	reagents := [][]Reagent{{"R1", "R2", "R3"}}
	a := AssignColors(reagents, NewRand(7))
	b := AssignColors(reagents, NewRand(7))
	assert.Equal(t, a, b)

	c := AssignColors(reagents, NewRand(8))
	assert.NotEqual(t, a, c)
}

func TestAssignColorsNilRand(t *testing.T) {
	colors := AssignColors([][]Reagent{{"R1"}}, nil)
	require.Len(t, colors, 1)
	assert.Regexp(t, lightColor, colors["R1"])
}

func TestAssignColorsEmpty(t *testing.T) {
	assert.Empty(t, AssignColors(nil, NewRand(1)))
}

func TestAssignColorsByteRange(t *testing.T) {
	rng := NewRand(3)
	for range 1000 {
		b := lightByte(rng)
		if b < 0x80 || b > 0xff {
			t.Fatalf("lightByte() = %#x, want within [0x80, 0xff]", b)
		}
	}
}

func TestDistinctReagents(t *testing.T) {
	got := DistinctReagents([][]Reagent{{"b", "a"}, {"a", "c"}, {"b"}})
	assert.Equal(t, []Reagent{"b", "a", "c"}, got)
}
