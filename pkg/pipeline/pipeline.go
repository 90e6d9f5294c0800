// Package pipeline runs one normalization from raw source bytes to a
// normalized document.
//
// This package ties the source adapters, the record normalizer and the
// result cache together so the CLI and tests share one code path.
//
// # Architecture
//
// A run has two stages:
//
//  1. Read: a [source.Adapter] reshapes the raw input into flat rows
//  2. Normalize: [normalize.Normalizer] groups the rows into packages
//
// The runner hashes the raw input and looks the result up in the cache
// before doing either stage.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:   "bigquery",
//	    NoExtra:  true,
//	    Timezone: "UTC",
//	}
//	result, err := runner.Execute(ctx, opts, f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = io.ExportDocument(result.Document, "out.json")
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pkgnorm/pkg/cache"
	"github.com/matzehuels/pkgnorm/pkg/errors"
	"github.com/matzehuels/pkgnorm/pkg/normalize"
	"github.com/matzehuels/pkgnorm/pkg/source"
	"github.com/matzehuels/pkgnorm/pkg/source/bigquery"
	"github.com/matzehuels/pkgnorm/pkg/source/npm"
	"github.com/matzehuels/pkgnorm/pkg/source/pypicache"
	"github.com/matzehuels/pkgnorm/pkg/timestamp"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultTimezone is the location timestamps are rendered in.
const DefaultTimezone = "UTC"

// Adapters returns every supported source adapter.
func Adapters() []source.Adapter {
	return []source.Adapter{
		bigquery.Adapter{},
		pypicache.Adapter{},
		npm.Adapter{},
	}
}

// ValidSources returns the names of all adapters, sorted.
func ValidSources() []string {
	var names []string
	for _, a := range Adapters() {
		names = append(names, a.Name())
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one normalization run.
type Options struct {
	Source     string `json:"source"`
	NoExtra    bool   `json:"no_extra"`
	Timezone   string `json:"timezone,omitempty"`
	Strict     bool   `json:"strict,omitempty"`
	IncludeDev bool   `json:"include_dev,omitempty"`
	Refresh    bool   `json:"refresh,omitempty"` // Bypass the cache lookup

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	adapter   source.Adapter
	location  *time.Location
	validated bool
}

// ValidateAndSetDefaults resolves the adapter and timezone and fills in
// defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == "" {
		return errors.New(errors.ErrCodeInvalidSource, "source is required")
	}
	a, err := source.Lookup(o.Source, Adapters()...)
	if err != nil {
		return err
	}
	if o.Timezone == "" {
		o.Timezone = DefaultTimezone
	}
	loc, err := timestamp.LoadLocation(o.Timezone)
	if err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.adapter = a
	o.location = loc
	o.validated = true
	return nil
}

// Adapter returns the resolved adapter. It is nil before validation.
func (o *Options) Adapter() source.Adapter { return o.adapter }

// Location returns the resolved timezone. It is nil before validation.
func (o *Options) Location() *time.Location { return o.location }

// SourceOptions returns the options passed to the adapter.
func (o *Options) SourceOptions() source.Options {
	return source.Options{
		Location:   o.location,
		Strict:     o.Strict,
		IncludeDev: o.IncludeDev,
		Logger:     o.Logger,
	}
}

// ResultKeyOpts returns the options that identify a cached result.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		NoExtra:    o.NoExtra,
		Timezone:   timestamp.Key(o.location),
		Strict:     o.Strict,
		IncludeDev: o.IncludeDev,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this run in logs and the document store.
	RunID string

	// Source is the adapter name.
	Source string

	// Document is the normalized output.
	Document *normalize.Document

	// Issues lists records that were dropped instead of failing the run.
	Issues []*errors.RecordError

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo reports whether the document came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	normalize.Stats

	// Records is the number of input records the adapter decoded.
	Records int `json:"records"`

	ReadTime      time.Duration `json:"read_time"`
	NormalizeTime time.Duration `json:"normalize_time"`
}

// CacheInfo tracks cache usage for a run.
type CacheInfo struct {
	Key string // Cache key derived from the input and options
	Hit bool   // Whether the document came from cache
}
