package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	perrors "github.com/matzehuels/plategen/pkg/errors"
	"github.com/matzehuels/plategen/pkg/plate"
)

// Supported experiment file formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Request is the experiment definition as submitted by users. The three
// lists are indexed by experiment.
type Request struct {
	MaxWellCount   int        `json:"max_well_count" toml:"max_well_count" yaml:"max_well_count"`
	SampleList     [][]string `json:"sample_list" toml:"sample_list" yaml:"sample_list"`
	ReagentList    [][]string `json:"reagent_list" toml:"reagent_list" yaml:"reagent_list"`
	ReplicateCount []int      `json:"replicate_count" toml:"replicate_count" yaml:"replicate_count"`
}

// Experiments converts the request into the input of [plate.LayoutPlates].
// The request is not validated here; plate.BuildExperiments does that.
func (r Request) Experiments() plate.Experiments {
	in := plate.Experiments{
		MaxWellCount: r.MaxWellCount,
		Samples:      make([][]plate.Sample, len(r.SampleList)),
		Reagents:     make([][]plate.Reagent, len(r.ReagentList)),
		Replicates:   append([]int(nil), r.ReplicateCount...),
	}
	for i, list := range r.SampleList {
		in.Samples[i] = make([]plate.Sample, len(list))
		for j, s := range list {
			in.Samples[i][j] = plate.Sample(s)
		}
	}
	for i, list := range r.ReagentList {
		in.Reagents[i] = make([]plate.Reagent, len(list))
		for j, s := range list {
			in.Reagents[i][j] = plate.Reagent(s)
		}
	}
	return in
}

// Reagents returns the reagent lists typed for [plate.AssignColors].
func (r Request) Reagents() [][]plate.Reagent {
	return r.Experiments().Reagents
}

// ReadJSON decodes a JSON experiment request from r.
//
// The input is the upload format of the web form:
//
//	{
//	  "max_well_count": 96,
//	  "sample_list": [["S1", "S2"]],
//	  "reagent_list": [["R1", "R2"]],
//	  "replicate_count": [3]
//	}
//
// Unknown fields are rejected. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Request{}, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode json request")
	}
	return req, nil
}

// ReadTOML decodes a TOML experiment request from r. Keys match the JSON
// field names.
func ReadTOML(r io.Reader) (Request, error) {
	var req Request
	md, err := toml.NewDecoder(r).Decode(&req)
	if err != nil {
		return Request{}, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode toml request")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Request{}, perrors.New(perrors.ErrCodeInvalidInput, "decode toml request: unknown key %q", undecoded[0].String())
	}
	return req, nil
}

// ReadYAML decodes a YAML experiment request from r. Keys match the JSON
// field names.
func ReadYAML(r io.Reader) (Request, error) {
	var req Request
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		return Request{}, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode yaml request")
	}
	return req, nil
}

// Read decodes a request in the named format.
func Read(r io.Reader, format string) (Request, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return Request{}, perrors.New(perrors.ErrCodeInvalidFormat, "unsupported request format %q", format)
}

// FormatForPath returns the request format implied by a file extension.
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", perrors.New(perrors.ErrCodeInvalidFormat, "cannot infer request format from %q", path)
}

// ImportFile reads the experiment request at path, choosing the decoder from
// the file extension.
func ImportFile(path string) (Request, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return Request{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Request{}, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Request{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Read(bytes.NewReader(data), format)
}

// MarshalRequest serializes a request to canonical JSON. Equal requests
// produce equal bytes, which makes the output suitable for cache keys.
func MarshalRequest(r Request) ([]byte, error) {
	return json.Marshal(r)
}
