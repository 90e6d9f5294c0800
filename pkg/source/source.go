// Package source defines the contract shared by pkgnorm's input adapters.
//
// # Overview
//
// Each supported input format lives in its own subpackage and reduces its
// raw input to the flat [normalize.Row] shape:
//
//   - [github.com/matzehuels/pkgnorm/pkg/source/bigquery]: line-delimited JSON
//     exported from a bulk query over PyPI metadata
//   - [github.com/matzehuels/pkgnorm/pkg/source/pypicache]: a JSON array dump
//     of PyPI JSON API responses
//   - [github.com/matzehuels/pkgnorm/pkg/source/npm]: a JSON array dump of npm
//     registry documents
//
// Adapters never build the nested output themselves; that is the job of
// [normalize.Normalizer], so every source produces the same document shape.
//
// # Malformed Records
//
// A record whose timestamp cannot be parsed is either fatal or reported,
// depending on [Options.Strict]. Reported records are dropped and returned
// in [Result.Issues] so a run can finish with a partial-success report.
package source

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pkgnorm/pkg/errors"
	"github.com/matzehuels/pkgnorm/pkg/normalize"
)

// Options configures how an adapter reads its input.
type Options struct {
	// Location anchors every normalized timestamp. Nil means UTC.
	Location *time.Location

	// Strict aborts the read on the first malformed record instead of
	// reporting it in Result.Issues.
	Strict bool

	// IncludeDev also emits development dependencies for sources that
	// declare them separately.
	IncludeDev bool

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// Result is the flattened content of one input.
type Result struct {
	// Rows are ordered by name ascending and version descending.
	Rows []normalize.Row

	// Records is the number of input records read before deduplication.
	Records int

	// Issues lists records that were dropped because they were malformed.
	Issues []*errors.RecordError
}

// Adapter reads one input format.
type Adapter interface {
	// Name is the identifier used on the command line (e.g. "bigquery").
	Name() string

	// Description is a one-line summary for help output.
	Description() string

	// Read flattens the whole input into rows.
	Read(ctx context.Context, r io.Reader, opts Options) (*Result, error)
}

// Lookup returns the adapter with the given name.
func Lookup(name string, adapters ...Adapter) (Adapter, error) {
	for _, a := range adapters {
		if a.Name() == name {
			return a, nil
		}
	}
	names := make([]string, len(adapters))
	for i, a := range adapters {
		names[i] = a.Name()
	}
	return nil, errors.New(errors.ErrCodeInvalidSource, "unknown source %q (available: %s)", name, strings.Join(names, ", "))
}

// Report handles a malformed record according to opts.Strict. In strict
// mode the error is returned and the caller aborts; otherwise it is appended
// to res.Issues and nil is returned.
func (o Options) Report(res *Result, issue *errors.RecordError) error {
	if o.Strict {
		return issue
	}
	if o.Logger != nil {
		o.Logger.Debug("dropping malformed record", "record", issue.Line, "package", issue.Package, "error", issue.Err)
	}
	res.Issues = append(res.Issues, issue)
	return nil
}
