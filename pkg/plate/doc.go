// Package plate lays out experiment replicates on multiwell plates.
//
// # Overview
//
// An experiment is a list of samples, a list of reagents and a replicate
// count. Every (sample, reagent) pair must occupy exactly that many wells,
// and all wells of one experiment are kept together in rectangular blocks so
// that the plate can be pipetted row by row.
//
// The layout runs in three stages:
//
//  1. [BuildExperiments] expands each experiment into a [Matrix] with one
//     row per sample and the replicates of each reagent in adjacent columns.
//  2. [Split] cuts matrices wider or taller than the plate into fragments,
//     first at reagent boundaries and then into plate-high row chunks.
//  3. A [Packer] places the fragments onto as few plates as its heuristic
//     manages. [FirstFitDecreasing] is the default.
//
// [LayoutPlates] runs all three. [AssignColors] independently derives a
// reagent colour key for presentation.
//
// # Plate Geometry
//
// Two plate sizes are supported:
//
//	96 wells:  8 rows (A-H) x 12 columns
//	384 wells: 16 rows (A-P) x 24 columns
//
// # Placement
//
// Placement is greedy. For the plate being filled, each row contributes one
// anchor at its first empty well. A fragment is placed at the first anchor
// (in row order) where it stays within the plate and covers only empty
// wells. Fragments that do not fit anywhere wait for the next plate.
//
// # Concurrency
//
// The package holds no global mutable state and does no I/O. Values returned
// by one call share nothing with values returned by another, so calls may run
// concurrently without locking.
//
// # Example
//
//	plates, err := plate.LayoutPlates(plate.Experiments{
//	    MaxWellCount: 96,
//	    Samples:      [][]plate.Sample{{"S1", "S2"}},
//	    Reagents:     [][]plate.Reagent{{"R1", "R2"}},
//	    Replicates:   []int{3},
//	}, nil)
//	colors := plate.AssignColors([][]plate.Reagent{{"R1", "R2"}}, plate.NewRand(42))
package plate
