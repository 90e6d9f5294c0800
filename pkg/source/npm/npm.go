// Package npm reads a dump of npm registry documents.
//
// The input is one JSON array of CouchDB rows as served by the npm replicate
// endpoint:
//
//	[{"doc": {"name": "left-pad",
//	          "versions": {"1.0.0": {"dependencies": {"a": "^1.0.0"}, "devDependencies": {...}}},
//	          "time": {"1.0.0": "2016-03-23T20:14:32.123Z"}}}]
//
// npm already separates dependency names from their ranges, so rows carry a
// parsed dependency and skip declaration parsing. Development dependencies
// are emitted only with [source.Options.IncludeDev]; they are merged after
// runtime dependencies and win on name collisions.
package npm

import (
	"context"
	"io"
	"maps"
	"slices"

	"github.com/matzehuels/pkgnorm/pkg/errors"
	"github.com/matzehuels/pkgnorm/pkg/normalize"
	"github.com/matzehuels/pkgnorm/pkg/requirement"
	"github.com/matzehuels/pkgnorm/pkg/source"
	"github.com/matzehuels/pkgnorm/pkg/timestamp"
)

// Adapter reads npm registry dumps.
type Adapter struct{}

// Name implements source.Adapter.
func (Adapter) Name() string { return "npm" }

// Description implements source.Adapter.
func (Adapter) Description() string {
	return "JSON array of npm registry documents with versions and time"
}

type entry struct {
	Doc doc `json:"doc"`
}

type doc struct {
	Name     string             `json:"name"`
	Versions map[string]version `json:"versions"`
	Time     map[string]string  `json:"time"`
}

type version struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Read implements source.Adapter.
func (Adapter) Read(ctx context.Context, r io.Reader, opts source.Options) (*source.Result, error) {
	res := &source.Result{}

	err := source.DecodeArray(ctx, r, func(n int, e *entry) error {
		res.Records++
		d := e.Doc
		for _, v := range slices.Sorted(maps.Keys(d.Versions)) {
			uploaded, err := uploadTime(d.Time[v], opts)
			if err != nil {
				issue := &errors.RecordError{Line: n, Package: d.Name, Version: v, Err: err}
				if err := opts.Report(res, issue); err != nil {
					return err
				}
				continue
			}
			res.Rows = append(res.Rows, rows(d.Name, v, uploaded, d.Versions[v], opts.IncludeDev)...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	normalize.SortRows(res.Rows)
	return res, nil
}

func uploadTime(raw string, opts source.Options) (string, error) {
	if raw == "" {
		return "", nil
	}
	t, err := timestamp.ParseRFC3339(raw)
	if err != nil {
		return "", err
	}
	return timestamp.Format(t, opts.Location), nil
}

func rows(name, v, uploaded string, ver version, includeDev bool) []normalize.Row {
	base := normalize.Row{Name: name, Version: v, UploadTime: uploaded}
	var out []normalize.Row
	add := func(deps map[string]string) {
		for _, dep := range slices.Sorted(maps.Keys(deps)) {
			row := base
			row.Dependency = &requirement.Dependency{Name: dep, Constraint: deps[dep]}
			out = append(out, row)
		}
	}
	add(ver.Dependencies)
	if includeDev {
		add(ver.DevDependencies)
	}
	if len(out) == 0 {
		out = append(out, base)
	}
	return out
}
