// Package pipeline provides the layout pipeline shared by the CLI and the
// HTTP server.
//
// The pipeline consists of two stages:
//
//  1. Layout: build experiment matrices, split them to plate size, pack the
//     fragments onto plates and assign reagent colours
//  2. Render: generate output in various formats (SVG, HTML, PNG, PDF, JSON, text)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	req, err := io.ImportFile("experiments.json")
//	result, err := runner.Execute(ctx, req, pipeline.Options{Formats: []string{"svg"}})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	layout, err := runner.Layout(ctx, req, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
//
// # Caching
//
// Placement depends only on the request and the packer, so it is cached by a
// hash of both. Colours are assigned after the cache lookup: a non-zero Seed
// reproduces the same colours (and the same layout ID), zero picks fresh
// random colours every run.
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plategen/pkg/cache"
	perrors "github.com/matzehuels/plategen/pkg/errors"
	"github.com/matzehuels/plategen/pkg/plate"
	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and server
// =============================================================================

const (
	// DefaultPacker is the placement strategy used when none is given.
	DefaultPacker = plate.PackerFFD

	// DefaultWellSize is the SVG well edge length.
	DefaultWellSize = sink.DefaultWellSize

	// DefaultPNGScale is the PNG resolution multiplier.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatText = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatHTML: true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatText: true,
}

// FormatNames lists the output formats in display order.
var FormatNames = []string{FormatSVG, FormatHTML, FormatPNG, FormatPDF, FormatJSON, FormatText}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Packer  string `json:"packer,omitempty"`
	Seed    uint64 `json:"seed,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	WellSize float64  `json:"well_size,omitempty"`
	Title    string   `json:"title,omitempty"`
	NoLabels bool     `json:"no_labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RequestHash is the content hash of the canonical request.
	RequestHash string

	// Layout is the placed, coloured layout.
	Layout plateio.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Experiments int
	Plates      int
	Filled      int
	Reagents    int
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // placement came from cache
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return perrors.New(perrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, html, png, pdf, json, txt)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for placement.
func (o *Options) SetLayoutDefaults() {
	if o.Packer == "" {
		o.Packer = DefaultPacker
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for placement.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	_, err := plate.PackerByName(o.Packer)
	return err
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.WellSize <= 0 {
		o.WellSize = DefaultWellSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	o.Formats = dedupe(o.Formats)
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults validates and sets defaults for the full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// LayoutKeyOpts returns cache key options for placement.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Packer: o.Packer}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		WellSize: o.WellSize,
		Labels:   !o.NoLabels,
		Title:    o.Title,
	}
}

func dedupe(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
