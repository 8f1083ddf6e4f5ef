// Package pipeline provides the decode → extract → export pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: Read the image bytes (PNG, GIF, BMP, TIFF, WebP, JPEG)
//  2. Extract: Classify pixels, trace segments and build the graph
//  3. Export: Serialize the graph to the requested formats (XML, JSON, DOT)
//
// Extraction results are cached by image content and extraction options, so
// re-running over an unchanged directory only pays for decoding.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.ExecuteFile(ctx, "library-2-PATH.png", pipeline.Options{
//	    Name:    "library",
//	    Floor:   2,
//	    Formats: []string{"xml"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	xml := result.Artifacts["xml"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pathgraph/pkg/cache"
	perrors "github.com/matzehuels/pathgraph/pkg/errors"
	"github.com/matzehuels/pathgraph/pkg/export"
	"github.com/matzehuels/pathgraph/pkg/extract"
	"github.com/matzehuels/pathgraph/pkg/graph"
	"github.com/matzehuels/pathgraph/pkg/raster"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWorkers is the number of concurrent node traces per image.
	DefaultWorkers = 4

	// MaxWorkers bounds Workers for API requests.
	MaxWorkers = 64
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Identity of the map; not part of the cache key.
	Name  string `json:"name,omitempty"`
	Floor int    `json:"floor"`

	// Extraction options
	Palette raster.Palette `json:"palette"`
	Policy  string         `json:"policy,omitempty"`
	Workers int            `json:"workers,omitempty"`

	// Labels name nodes by position; applied after extraction.
	Labels map[graph.Coord]string `json:"labels,omitempty"`

	// Export options
	Formats []string `json:"formats,omitempty"`

	// Refresh skips the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the extracted navigation graph.
	Graph *graph.Graph

	// Report holds the data-quality issues found during extraction.
	Report *extract.Report

	// ImageHash is the SHA-256 of the input image bytes.
	ImageHash string

	// Format is the decoded image format ("png", "jpeg", ...).
	Format string

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the graph came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Width       int
	Height      int
	NodeCount   int
	EdgeCount   int
	DecodeTime  time.Duration
	ExtractTime time.Duration
	ExportTime  time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForExtract(); err != nil {
		return err
	}
	if err := o.ValidateForExport(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForExtract checks extraction fields and applies their defaults.
func (o *Options) ValidateForExtract() error {
	if o.Name != "" {
		if err := perrors.ValidateMapName(o.Name); err != nil {
			return err
		}
	}

	policy, err := raster.ParsePolicy(o.Policy)
	if err != nil {
		return err
	}
	o.Policy = string(policy)

	if o.Palette == (raster.Palette{}) {
		o.Palette = raster.DefaultPalette
	}
	if err := o.Palette.Validate(); err != nil {
		return err
	}

	if o.Workers < 0 || o.Workers > MaxWorkers {
		return perrors.New(perrors.ErrCodeInvalidInput, "workers must be between 0 and %d", MaxWorkers)
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetExportDefaults sets default values for exporting.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{export.DefaultFormat}
	}
}

// ValidateForExport validates and sets defaults for exporting.
func (o *Options) ValidateForExport() error {
	o.SetExportDefaults()
	return export.ValidateFormats(o.Formats)
}

// ExtractOptions returns the options passed to the extractor.
func (o *Options) ExtractOptions() extract.Options {
	return extract.Options{
		Name:    o.Name,
		Floor:   o.Floor,
		Palette: o.Palette,
		Policy:  raster.UnrecognizedPolicy(o.Policy),
		Workers: o.Workers,
	}
}

// GraphKeyOpts returns cache key options for the extracted graph.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Palette: fmt.Sprintf("%s,%s,%s", o.Palette.Background, o.Palette.Path, o.Palette.Stair),
		Policy:  o.Policy,
	}
}
