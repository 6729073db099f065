package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shapegrid/pkg/cache"
	"github.com/matzehuels/shapegrid/pkg/grid"
	"github.com/matzehuels/shapegrid/pkg/observability"
	"github.com/matzehuels/shapegrid/pkg/scene"
)

// Cache key types reported to observability hooks.
const (
	keyTypeTable    = "table"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so cache behavior is identical everywhere.
//
// The Runner holds no per-run state, so multiple goroutines can safely use
// the same Runner with different options.
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

// tableSummary is what the runner caches about a synthesized table. The
// table itself references live shape nodes and is rebuilt on demand.
type tableSummary struct {
	Found     bool `json:"found"`
	Rows      int  `json:"rows"`
	Columns   int  `json:"columns"`
	Cells     int  `json:"cells"`
	Synthetic int  `json:"synthetic"`
	Overlaps  int  `json:"overlaps"`
}

// Execute runs load → synthesize → render for s with caching.
//
// A scene whose shapes form no table is not an error: the result has
// Found=false and no artifacts.
func (r *Runner) Execute(ctx context.Context, s *scene.Scene, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	sceneData, err := scene.Marshal(s, scene.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("hash scene: %w", err)
	}
	result := &Result{
		SceneHash: cache.Hash(sceneData),
		Artifacts: make(map[string][]byte, len(opts.Formats)),
	}
	result.Stats.NodeCount = s.NodeCount()
	tableKey := r.Keyer.TableKey(result.SceneHash, opts.TableKeyOpts())

	if !opts.Refresh {
		if summary, ok := r.cachedSummary(ctx, tableKey); ok {
			result.CacheInfo.TableHit = true
			result.Found = summary.Found
			summary.apply(&result.Stats)
			if !summary.Found {
				r.Logger.Info("no table in scene (cached)", "scene", s.Name)
				return result, nil
			}
			if r.cachedArtifacts(ctx, result, opts) {
				result.CacheInfo.RenderHit = true
				r.Logger.Info("artifacts served from cache", "formats", opts.Formats)
				return result, nil
			}
		}
	}

	// Stage 1: Load
	hooks := observability.Pipeline()
	loadStart := time.Now()
	hooks.OnLoadStart(ctx, s.Name)
	_, req, err := Load(s, opts)
	result.Stats.LoadTime = time.Since(loadStart)
	hooks.OnLoadComplete(ctx, s.Name, result.Stats.NodeCount, result.Stats.LoadTime, err)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	r.Logger.Debug("loaded scene",
		"scene", s.Name,
		"nodes", result.Stats.NodeCount,
		"candidates", len(req.Candidates))

	// Stage 2: Synthesize
	synthStart := time.Now()
	t, found, err := Synthesize(ctx, req, opts)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	result.Stats.SynthesizeTime = time.Since(synthStart)
	result.Table, result.Found = t, found

	summary := summarize(t, found)
	summary.apply(&result.Stats)
	if data, err := json.Marshal(summary); err == nil {
		r.store(ctx, tableKey, keyTypeTable, data, cache.TTLTable)
	}
	if !found {
		r.Logger.Info("no table in scene", "scene", s.Name, "candidates", len(req.Candidates))
		return result, nil
	}
	r.Logger.Info("synthesized table",
		"rows", summary.Rows,
		"columns", summary.Columns,
		"cells", summary.Cells,
		"synthetic", summary.Synthetic,
		"duration", result.Stats.SynthesizeTime)

	// Stage 3: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, err := Render(t, s.Name, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	for format, data := range artifacts {
		r.store(ctx, r.Keyer.ArtifactKey(result.SceneHash, opts.ArtifactKeyOpts(format)), keyTypeArtifact, data, cache.TTLArtifact)
	}
	result.Artifacts = artifacts

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Synthesize loads s and infers its table without touching the cache.
// Interactive commands use it because they need the live table.
func (r *Runner) Synthesize(ctx context.Context, s *scene.Scene, opts Options) (*grid.Table, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}

	_, req, err := Load(s, opts)
	if err != nil {
		return nil, false, fmt.Errorf("load: %w", err)
	}
	return Synthesize(ctx, req, opts)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cachedSummary(ctx context.Context, key string) (tableSummary, bool) {
	data, ok := r.load(ctx, key, keyTypeTable)
	if !ok {
		return tableSummary{}, false
	}
	var summary tableSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		r.Logger.Debug("discarding unreadable table summary", "error", err)
		return tableSummary{}, false
	}
	return summary, true
}

// cachedArtifacts fills result.Artifacts when every format is cached.
func (r *Runner) cachedArtifacts(ctx context.Context, result *Result, opts Options) bool {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok := r.load(ctx, r.Keyer.ArtifactKey(result.SceneHash, opts.ArtifactKeyOpts(format)), keyTypeArtifact)
		if !ok {
			return false
		}
		artifacts[format] = data
	}
	result.Artifacts = artifacts
	return true
}

// load reads key, treating backend failures as misses.
func (r *Runner) load(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed, recomputing", "type", keyType, "error", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

// store writes key; a failure only costs a future recomputation.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func summarize(t *grid.Table, found bool) tableSummary {
	if !found {
		return tableSummary{}
	}
	return tableSummary{
		Found:     true,
		Rows:      t.RowCount(),
		Columns:   t.ColumnCount(),
		Cells:     len(t.Cells()),
		Synthetic: t.SyntheticCount(),
		Overlaps:  len(t.Diagnostics()),
	}
}

func (s tableSummary) apply(st *Stats) {
	st.Rows = s.Rows
	st.Columns = s.Columns
	st.Cells = s.Cells
	st.SyntheticCells = s.Synthetic
	st.Overlaps = s.Overlaps
}
