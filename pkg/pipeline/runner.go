package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heightcompare/pkg/cache"
	"github.com/matzehuels/heightcompare/pkg/entity"
	"github.com/matzehuels/heightcompare/pkg/observability"
	"github.com/matzehuels/heightcompare/pkg/render/chart/layout"
	"github.com/matzehuels/heightcompare/pkg/ruler"
	"github.com/matzehuels/heightcompare/pkg/scale"
	"github.com/matzehuels/heightcompare/pkg/units"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Resolve selects the display resolution for people and generates its marks.
func (r *Runner) Resolve(ctx context.Context, people []entity.Entity, mode units.Mode) (scale.Resolution, []ruler.Mark) {
	res := scale.SelectFor(people, mode)
	marks := ruler.Generate(res.Range, res.Unit)
	observability.Chart().OnResolve(ctx, res.Unit.String(), len(people), len(marks))
	r.Logger.Debug("resolved scale",
		"unit", res.Unit,
		"min", res.Range.Min,
		"max", res.Range.Max,
		"marks", len(marks))
	return res, marks
}

// Layout resolves and lays out people without rendering.
func (r *Runner) Layout(ctx context.Context, people []entity.Entity, opts Options) (layout.Layout, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return layout.Layout{}, fmt.Errorf("invalid options: %w", err)
	}
	res, marks := r.Resolve(ctx, people, opts.Mode)
	return layout.Build(people, res, marks, opts.LayoutOptions()...), nil
}

// Render runs resolve → layout → render, serving artifacts from the cache
// when every requested format is cached.
func (r *Runner) Render(ctx context.Context, people []entity.Entity, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{CacheInfo: CacheInfo{Hits: make(map[string]bool)}}
	layoutStart := time.Now()
	result.Resolution, result.Marks = r.Resolve(ctx, people, opts.Mode)
	result.Layout = layout.Build(people, result.Resolution, result.Marks, opts.LayoutOptions()...)
	result.Stats = Stats{People: len(people), Marks: len(result.Marks), LayoutTime: time.Since(layoutStart)}

	hash, err := BoardHash(opts.Board, people)
	if err != nil {
		return nil, fmt.Errorf("hash board: %w", err)
	}
	result.BoardHash = hash

	hooks := observability.Chart()
	hooks.OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	artifacts, err := r.renderCached(ctx, result, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	r.Logger.Info("rendered chart",
		"people", len(people),
		"unit", result.Resolution.Unit,
		"formats", opts.Formats,
		"cached", result.CacheInfo.RenderHit,
		"duration", result.Stats.RenderTime)
	return result, nil
}

func (r *Runner) renderCached(ctx context.Context, result *Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string

	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(result.BoardHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				result.CacheInfo.Hits[format] = true
				observability.Cache().OnCacheHit(ctx, "artifact")
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		result.CacheInfo.RenderHit = true
		return artifacts, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := RenderLayout(result.Layout, renderOpts)
	if err != nil {
		return nil, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(result.BoardHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, ArtifactTTL); err != nil {
			r.Logger.Warn("cache artifact", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return artifacts, nil
}

// BoardHash returns the content hash used to key a board's artifacts.
func BoardHash(board string, people []entity.Entity) (string, error) {
	return cache.HashJSON(struct {
		Board  string          `json:"board,omitempty"`
		People []entity.Entity `json:"people"`
	}{board, people})
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
