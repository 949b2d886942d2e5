package sink

import (
	plateio "github.com/matzehuels/plategen/pkg/io"
)

// RenderJSON exports the layout document. The output can be read back with
// [plateio.UnmarshalLayout] and rendered again to any other format.
func RenderJSON(l plateio.Layout) ([]byte, error) {
	return plateio.MarshalLayout(l)
}
