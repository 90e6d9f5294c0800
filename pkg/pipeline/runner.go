package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pkgnorm/pkg/cache"
	"github.com/matzehuels/pkgnorm/pkg/errors"
	"github.com/matzehuels/pkgnorm/pkg/normalize"
	"github.com/matzehuels/pkgnorm/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
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
		TTL:    cache.DefaultTTL,
		Logger: logger,
	}
}

// Execute reads input with the configured adapter and normalizes it,
// consulting the cache first unless opts.Refresh is set.
func (r *Runner) Execute(ctx context.Context, opts Options, input io.Reader) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input")
	}

	runID := uuid.NewString()
	logger := r.Logger.With("run", runID[:8])
	key := r.Keyer.ResultKey(opts.Source, cache.Hash(data), opts.ResultKeyOpts())

	if !opts.Refresh {
		if result, ok := r.lookup(ctx, key, opts.Source); ok {
			result.RunID = runID
			logger.Info("loaded from cache",
				"source", opts.Source,
				"packages", result.Stats.Packages,
				"issues", len(result.Issues))
			return result, nil
		}
	}

	result, err := r.Normalize(ctx, opts, data)
	if err != nil {
		return nil, err
	}
	result.RunID = runID
	result.CacheInfo.Key = key

	logger.Info("normalized packages",
		"source", opts.Source,
		"records", result.Stats.Records,
		"packages", result.Stats.Packages,
		"versions", result.Stats.Versions,
		"issues", len(result.Issues),
		"duration", result.Stats.ReadTime+result.Stats.NormalizeTime)

	r.store(ctx, key, opts.Source, result)
	return result, nil
}

// Normalize runs both stages on data without touching the cache.
func (r *Runner) Normalize(ctx context.Context, opts Options, data []byte) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Pipeline()
	result := &Result{Source: opts.Source}

	// Stage 1: Read
	readStart := time.Now()
	hooks.OnReadStart(ctx, opts.Source)
	read, err := opts.Adapter().Read(ctx, bytes.NewReader(data), opts.SourceOptions())
	result.Stats.ReadTime = time.Since(readStart)
	if err != nil {
		hooks.OnReadComplete(ctx, opts.Source, 0, 0, result.Stats.ReadTime, err)
		return nil, fmt.Errorf("read %s: %w", opts.Source, err)
	}
	hooks.OnReadComplete(ctx, opts.Source, read.Records, len(read.Issues), result.Stats.ReadTime, nil)
	result.Stats.Records = read.Records
	result.Issues = read.Issues

	// Stage 2: Normalize
	normStart := time.Now()
	doc, stats := normalize.Normalizer{NoExtra: opts.NoExtra}.Normalize(read.Rows)
	result.Stats.NormalizeTime = time.Since(normStart)
	result.Stats.Stats = stats
	result.Document = doc
	hooks.OnNormalizeComplete(ctx, opts.Source, stats.Packages, stats.Versions, result.Stats.NormalizeTime)

	opts.Logger.Debug("normalized rows",
		"rows", stats.Rows,
		"dropped", stats.DroppedRows,
		"skipped_dependencies", stats.SkippedDependencies)

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) lookup(ctx context.Context, key, source string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, source)
		return nil, false
	}
	result, err := decodeCached(data)
	if err != nil {
		// Unreadable entries are recomputed and overwritten.
		r.Logger.Debug("discarding cache entry", "err", err)
		observability.Cache().OnCacheMiss(ctx, source)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, source)
	result.Source = source
	result.CacheInfo = CacheInfo{Key: key, Hit: true}
	return result, true
}

func (r *Runner) store(ctx context.Context, key, source string, result *Result) {
	data, err := encodeCached(result)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, source, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Cache Encoding
// =============================================================================

type cachedResult struct {
	Stats    Stats               `json:"stats"`
	Issues   []cachedIssue       `json:"issues,omitempty"`
	Document *normalize.Document `json:"document"`
}

type cachedIssue struct {
	Line    int         `json:"line,omitempty"`
	Package string      `json:"package,omitempty"`
	Version string      `json:"version,omitempty"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func encodeCached(result *Result) ([]byte, error) {
	c := cachedResult{Stats: result.Stats, Document: result.Document}
	for _, issue := range result.Issues {
		c.Issues = append(c.Issues, cachedIssue{
			Line:    issue.Line,
			Package: issue.Package,
			Version: issue.Version,
			Code:    issue.Code(),
			Message: errors.UserMessage(issue.Err),
		})
	}
	return json.Marshal(c)
}

func decodeCached(data []byte) (*Result, error) {
	var c cachedResult
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Document == nil {
		return nil, fmt.Errorf("cache entry has no document")
	}
	if c.Document.Pkgs == nil {
		c.Document.Pkgs = []normalize.Package{}
	}
	result := &Result{Document: c.Document, Stats: c.Stats}
	for _, i := range c.Issues {
		result.Issues = append(result.Issues, &errors.RecordError{
			Line:    i.Line,
			Package: i.Package,
			Version: i.Version,
			Err:     errors.New(i.Code, "%s", i.Message),
		})
	}
	return result, nil
}
