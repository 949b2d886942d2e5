// Package io reads experiment requests and reads and writes plate layouts.
//
// # Requests
//
// A request is the user-facing description of one or more experiments:
//
//	{
//	  "max_well_count": 96,
//	  "sample_list": [["S1", "S2"], ["S3"]],
//	  "reagent_list": [["R1", "R2"], ["R3"]],
//	  "replicate_count": [3, 2]
//	}
//
// [ReadJSON], [ReadTOML] and [ReadYAML] decode the same fields from their
// respective formats. [ImportFile] picks a decoder from the file extension.
// Decode failures carry the INVALID_INPUT error code. Semantic checks
// (plate size, list lengths, duplicates) happen later in package plate.
//
// # Layouts
//
// [Export] turns placed plates into a [Layout], the JSON document produced by
// "plategen layout" and consumed by "plategen render". Only filled wells are
// stored. [Layout.ToPlates] rebuilds the grids for rendering.
package io
