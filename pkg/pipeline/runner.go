package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pathgraph/pkg/cache"
	perrors "github.com/matzehuels/pathgraph/pkg/errors"
	"github.com/matzehuels/pathgraph/pkg/export"
	"github.com/matzehuels/pathgraph/pkg/extract"
	"github.com/matzehuels/pathgraph/pkg/graph"
	"github.com/matzehuels/pathgraph/pkg/observability"
	"github.com/matzehuels/pathgraph/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long extracted graphs stay cached.
	TTL time.Duration
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
		TTL:    cache.DefaultTTL,
	}
}

// cachedGraph is the cache entry for one extraction.
type cachedGraph struct {
	Graph  graph.Document  `json:"graph"`
	Report *extract.Report `json:"report"`
}

// =============================================================================
// Full pipeline
// =============================================================================

// Execute runs the complete decode → extract → export pipeline over image bytes.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result, err := r.Extract(ctx, data, opts)
	if err != nil {
		return nil, err
	}

	exportStart := time.Now()
	artifacts, err := r.Export(ctx, result.Graph, opts.Formats)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)

	opts.Logger.Debug("exported graph",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// ExecuteFile reads the image at path and runs [Runner.Execute].
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := readImage(path)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, data, opts)
}

// =============================================================================
// Extract
// =============================================================================

// Extract decodes image bytes and extracts the graph, consulting the cache
// first. Labels in opts are applied to the returned graph; positions that
// match no node are reported as UNKNOWN_LABEL issues.
func (r *Runner) Extract(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForExtract(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{ImageHash: cache.Hash(data)}
	key := r.Keyer.GraphKey(result.ImageHash, opts.GraphKeyOpts())

	decodeStart := time.Now()
	img, format, err := source.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	result.Format = format
	result.Stats.DecodeTime = time.Since(decodeStart)
	result.Stats.Width = img.Bounds().Dx()
	result.Stats.Height = img.Bounds().Dy()
	if source.Lossy(format) {
		opts.Logger.Warn("lossy image format, colors may not match the palette exactly", "format", format)
	}

	hooks := observability.Pipeline()
	hooks.OnExtractStart(ctx, opts.Name, opts.Floor)
	extractStart := time.Now()

	g, report, hit := r.lookup(ctx, key, opts)
	if !hit {
		g, report, err = extract.FromImage(ctx, img, opts.ExtractOptions())
		if err != nil {
			hooks.OnExtractComplete(ctx, opts.Name, opts.Floor, observability.ExtractStats{}, time.Since(extractStart), err)
			return nil, err
		}
		r.store(ctx, key, g, report)
	}

	if len(opts.Labels) > 0 {
		for _, pos := range g.ApplyLabels(opts.Labels) {
			report.Issues = append(report.Issues, extract.Issue{
				Code:    perrors.ErrCodeUnknownLabel,
				Pos:     pos,
				Message: fmt.Sprintf("label %q at %s does not match any node", opts.Labels[pos], pos),
			})
		}
	}

	result.Graph = g
	result.Report = report
	result.CacheHit = hit
	result.Stats.ExtractTime = time.Since(extractStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	hooks.OnExtractComplete(ctx, opts.Name, opts.Floor, observability.ExtractStats{
		Width:    result.Stats.Width,
		Height:   result.Stats.Height,
		Nodes:    result.Stats.NodeCount,
		Edges:    result.Stats.EdgeCount,
		Issues:   len(report.Issues),
		CacheHit: hit,
	}, result.Stats.ExtractTime, nil)

	opts.Logger.Debug("extracted graph",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"issues", len(report.Issues),
		"cached", hit,
		"duration", result.Stats.ExtractTime)

	return result, nil
}

// ExtractFile reads the image at path and runs [Runner.Extract].
func (r *Runner) ExtractFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := readImage(path)
	if err != nil {
		return nil, err
	}
	return r.Extract(ctx, data, opts)
}

// ExtractImage extracts the graph of an already decoded image. The cache is
// not consulted since there are no image bytes to key on.
func (r *Runner) ExtractImage(ctx context.Context, img image.Image, opts Options) (*graph.Graph, *extract.Report, error) {
	if err := opts.ValidateForExtract(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}
	return extract.FromImage(ctx, img, opts.ExtractOptions())
}

// lookup returns the cached graph for key renamed to opts' identity.
func (r *Runner) lookup(ctx context.Context, key string, opts Options) (*graph.Graph, *extract.Report, bool) {
	hooks := observability.Cache()
	if opts.Refresh {
		return nil, nil, false
	}

	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		hooks.OnCacheError(ctx, cache.KeyTypeGraph, err)
		return nil, nil, false
	}
	if !hit {
		hooks.OnCacheMiss(ctx, cache.KeyTypeGraph)
		return nil, nil, false
	}

	var entry cachedGraph
	if err := json.Unmarshal(data, &entry); err != nil || entry.Report == nil {
		hooks.OnCacheMiss(ctx, cache.KeyTypeGraph)
		return nil, nil, false
	}
	g, err := graph.FromDocument(entry.Graph)
	if err != nil {
		hooks.OnCacheMiss(ctx, cache.KeyTypeGraph)
		return nil, nil, false
	}
	g.Name = opts.Name
	g.Floor = opts.Floor

	hooks.OnCacheHit(ctx, cache.KeyTypeGraph)
	return g, entry.Report, true
}

// store caches the unlabelled graph. Failures are reported to hooks only.
func (r *Runner) store(ctx context.Context, key string, g *graph.Graph, report *extract.Report) {
	data, err := json.Marshal(cachedGraph{Graph: graph.ToDocument(g), Report: report})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		observability.Cache().OnCacheError(ctx, cache.KeyTypeGraph, err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.KeyTypeGraph, len(data))
}

// =============================================================================
// Export
// =============================================================================

// Export serializes g in every requested format.
func (r *Runner) Export(ctx context.Context, g *graph.Graph, formats []string) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var buf bytes.Buffer
		if err := export.Write(g, format, &buf); err != nil {
			err = fmt.Errorf("%s: %w", format, err)
			hooks.OnExportComplete(ctx, formats, time.Since(start), err)
			return nil, err
		}
		artifacts[format] = buf.Bytes()
	}

	hooks.OnExportComplete(ctx, formats, time.Since(start), nil)
	return artifacts, nil
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

func readImage(path string) ([]byte, error) {
	if err := perrors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return data, nil
}
