// Package bigquery reads PyPI metadata exported from a bulk query as
// line-delimited JSON.
//
// Each line is one uploaded distribution:
//
//	{"name": "pkg", "version": "1.0", "upload_time": "2023-01-01 00:00:00.000000 UTC", "requires_dist": ["dep (>=1.0)"]}
//
// A package version usually appears once per uploaded file, so the adapter
// sorts by name ascending, version descending and upload time ascending and
// keeps the first line of each (name, version) pair: the earliest upload.
// Unknown fields are ignored; a null requires_dist means no dependencies.
package bigquery

import (
	"context"
	"io"

	"github.com/matzehuels/pkgnorm/pkg/errors"
	"github.com/matzehuels/pkgnorm/pkg/normalize"
	"github.com/matzehuels/pkgnorm/pkg/source"
	"github.com/matzehuels/pkgnorm/pkg/timestamp"
)

// Adapter reads bulk query exports.
type Adapter struct{}

// Name implements source.Adapter.
func (Adapter) Name() string { return "bigquery" }

// Description implements source.Adapter.
func (Adapter) Description() string {
	return "line-delimited JSON rows of name, version, upload_time and requires_dist"
}

type line struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	UploadTime   string   `json:"upload_time"`
	RequiresDist []string `json:"requires_dist"`
}

// Read implements source.Adapter.
func (Adapter) Read(ctx context.Context, r io.Reader, opts source.Options) (*source.Result, error) {
	var records []normalize.Record
	err := source.DecodeLines(ctx, r, func(n int, l *line) error {
		records = append(records, normalize.Record{
			Name:       l.Name,
			Version:    l.Version,
			UploadTime: l.UploadTime,
			Requires:   l.RequiresDist,
			Line:       n,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &source.Result{Records: len(records)}
	normalize.SortRecords(records)
	records = normalize.Dedupe(records)

	kept := records[:0]
	for _, rec := range records {
		if rec.UploadTime == "" {
			kept = append(kept, rec)
			continue
		}
		ts, err := timestamp.NormalizeQuery(rec.UploadTime, opts.Location)
		if err != nil {
			issue := &errors.RecordError{Line: rec.Line, Package: rec.Name, Version: rec.Version, Err: err}
			if err := opts.Report(res, issue); err != nil {
				return nil, err
			}
			continue
		}
		rec.UploadTime = ts
		kept = append(kept, rec)
	}

	res.Rows = normalize.Explode(kept)
	if opts.Logger != nil {
		opts.Logger.Debug("read bulk query export", "lines", res.Records, "versions", len(kept))
	}
	return res, nil
}
