package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/gitgraph"
	"github.com/matzehuels/gitlanes/pkg/observability"
	"github.com/matzehuels/gitlanes/pkg/settings"
)

// cacheKeyType labels graph entries in cache hooks.
const cacheKeyType = "graph"

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger. Multiple
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

// Execute opens the repository, lays it out and renders every requested
// format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	src, err := Open(opts)
	if err != nil {
		return nil, err
	}

	result, err := r.Layout(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	result.Artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.Render(ctx, result.Graph, format, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// Layout compiles the settings and returns the graph of src, from the cache
// when the refs and settings are unchanged.
func (r *Runner) Layout(ctx context.Context, src *Source, opts Options) (*Result, error) {
	logger := r.logger(opts)

	// Configuration errors surface before any commit is read.
	compiled, err := opts.Settings.Compile()
	if err != nil {
		return nil, err
	}

	fingerprint := src.Digest
	if fingerprint == "" {
		if fingerprint, err = Fingerprint(src.Repo); err != nil {
			return nil, err
		}
	}
	key := r.Keyer.GraphKey(fingerprint, cache.GraphKeyOpts{
		Settings: SettingsDigest(opts.Settings),
		Version:  ResultVersion,
	})

	start := time.Now()
	result := &Result{Fingerprint: fingerprint}

	if !opts.Refresh {
		if g, ok := r.lookup(ctx, key, logger); ok {
			result.Graph = g
			result.CacheHit = true
			result.Stats = graphStats(g, time.Since(start))
			logger.Debug("layout from cache", "repo", src.Label, "commits", result.Stats.Commits)
			return result, nil
		}
	}

	g, err := r.build(ctx, src, compiled)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats = graphStats(g, time.Since(start))

	data, err := gitgraph.MarshalGraph(g)
	r.store(ctx, key, data, err, logger)

	logger.Info("computed layout",
		"commits", result.Stats.Commits,
		"branches", result.Stats.Branches,
		"columns", result.Stats.Columns,
		"duration", result.Stats.LayoutTime)
	return result, nil
}

// store caches an encoded graph. Neither a failed encode nor a failed write
// fails the layout; both are logged.
func (r *Runner) store(ctx context.Context, key string, data []byte, encodeErr error, logger *log.Logger) {
	if encodeErr != nil {
		logger.Warn("cache encode failed", "err", encodeErr)
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLGraph); err != nil {
		logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

func (r *Runner) lookup(ctx context.Context, key string, logger *log.Logger) (*gitgraph.Graph, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	g, err := gitgraph.UnmarshalGraph(data)
	if err != nil {
		// Stale encoding; recompute and overwrite.
		logger.Debug("discarding cached graph", "err", err)
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return g, true
}

func (r *Runner) build(ctx context.Context, src *Source, s *settings.Settings) (*gitgraph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, src.Label)
	start := time.Now()

	g, err := gitgraph.Build(src.Repo, s)
	if err != nil {
		hooks.OnBuildComplete(ctx, src.Label, 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, src.Label, len(g.Commits), len(g.AllBranches), time.Since(start), nil)
	return g, nil
}

func graphStats(g *gitgraph.Graph, d time.Duration) Stats {
	return Stats{
		Commits:    len(g.Commits),
		Branches:   len(g.AllBranches),
		Columns:    g.Columns(),
		LayoutTime: d,
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// IsUserError reports whether err stems from input the caller can fix.
func IsUserError(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidColor,
		errors.ErrCodeNotFound, errors.ErrCodeUnsupportedRepository:
		return true
	}
	return false
}
