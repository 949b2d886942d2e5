package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plategen/pkg/cache"
	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// The CLI and the server both use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options as long as the cache is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// LayoutTTL and ArtifactTTL bound how long entries live in the cache.
	// A non-positive value keeps entries until they are cleared.
	LayoutTTL   time.Duration
	ArtifactTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:       c,
		Keyer:       keyer,
		Logger:      logger,
		LayoutTTL:   cache.TTLLayout,
		ArtifactTTL: cache.TTLArtifact,
	}
}

// Execute runs the complete layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, req plateio.Request, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RequestHash: RequestHash(req),
		Artifacts:   make(map[string][]byte),
	}

	// Stage 1: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.LayoutWithCacheInfo(ctx, req, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Experiments = len(req.SampleList)
	result.Stats.Plates = len(layout.Plates)
	result.Stats.Filled = layout.Filled()
	result.Stats.Reagents = len(layout.Legend)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"plates", result.Stats.Plates,
		"wells", result.Stats.Filled,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SetTTL applies ttl to both layout and artifact entries. A non-positive
// ttl leaves the defaults in place.
func (r *Runner) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	r.LayoutTTL, r.ArtifactTTL = ttl, ttl
}

// LayoutHash returns the content hash of a layout document. Any edit to the
// wells, colours or legend changes it.
func LayoutHash(l plateio.Layout) string {
	data, _ := plateio.MarshalLayout(l)
	return cache.Hash(data)
}

// RequestHash returns the content hash of the canonical request encoding.
func RequestHash(req plateio.Request) string {
	data, _ := plateio.MarshalRequest(req)
	return cache.Hash(data)
}

// LayoutWithCacheInfo places and colours a request, reusing a cached
// placement when one exists. It reports whether the cache was hit.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, req plateio.Request, opts Options) (plateio.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return plateio.Layout{}, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Packer, len(req.SampleList))
	start := time.Now()

	cacheKey := r.Keyer.LayoutKey(RequestHash(req), opts.LayoutKeyOpts())
	placed, hit := r.cachedPlacement(ctx, cacheKey, opts)
	if !hit {
		var err error
		placed, err = GeneratePlacement(req, opts)
		if err != nil {
			hooks.OnLayoutComplete(ctx, opts.Packer, 0, time.Since(start), err)
			return plateio.Layout{}, false, err
		}
		r.storePlacement(ctx, cacheKey, placed, opts)
	}

	l := Colorize(placed, req, opts.Seed, cacheKey)
	hooks.OnLayoutComplete(ctx, opts.Packer, len(l.Plates), time.Since(start), nil)
	opts.Logger.Debug("placed experiments", "packer", opts.Packer, "plates", len(l.Plates), "cached", hit)
	return l, hit, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, req plateio.Request, opts Options) (plateio.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, req, opts)
	return l, err
}

func (r *Runner) cachedPlacement(ctx context.Context, key string, opts Options) (plateio.Layout, bool) {
	if opts.Refresh {
		return plateio.Layout{}, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return plateio.Layout{}, false
	}
	l, err := plateio.UnmarshalLayout(data)
	if err != nil {
		// Unreadable entry: recompute and overwrite
		observability.Cache().OnCacheMiss(ctx, "layout")
		return plateio.Layout{}, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return l, true
}

func (r *Runner) storePlacement(ctx context.Context, key string, l plateio.Layout, opts Options) {
	data, err := plateio.MarshalLayout(l)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.LayoutTTL); err != nil {
		opts.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "layout", len(data))
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l plateio.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	// Artifacts are keyed by layout content so an edited layout file never
	// returns a stale render.
	layoutHash := LayoutHash(l)
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	rendered, err := RenderFromLayout(l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l plateio.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
