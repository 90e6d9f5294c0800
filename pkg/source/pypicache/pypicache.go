// Package pypicache reads a dump of PyPI JSON API responses.
//
// The input is one JSON array whose elements have the shape of
// https://pypi.org/pypi/<project>/json:
//
//	[{"info": {"name": "pkg", "version": "1.0", "requires_dist": ["dep (>=1.0)"]},
//	  "releases": {"1.0": [{"upload_time": "2023-01-01T00:00:00", ...}], ...}}]
//
// Only the version named in info is emitted. Its upload time is taken from
// the first release listed in the releases object (in document order) and
// that release's first file. Packages without releases or files have no
// upload time and are dropped during normalization.
package pypicache

import (
	"context"
	"encoding/json"
	"io"

	"github.com/matzehuels/pkgnorm/pkg/errors"
	"github.com/matzehuels/pkgnorm/pkg/normalize"
	"github.com/matzehuels/pkgnorm/pkg/source"
	"github.com/matzehuels/pkgnorm/pkg/timestamp"
)

// Adapter reads PyPI cache dumps.
type Adapter struct{}

// Name implements source.Adapter.
func (Adapter) Name() string { return "pypicache" }

// Description implements source.Adapter.
func (Adapter) Description() string {
	return "JSON array of PyPI project documents with info and releases"
}

type project struct {
	Info     info            `json:"info"`
	Releases json.RawMessage `json:"releases"`
}

type info struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	RequiresDist []string `json:"requires_dist"`
	Author       string   `json:"author"`
}

type file struct {
	UploadTime string `json:"upload_time"`
}

// Read implements source.Adapter.
func (Adapter) Read(ctx context.Context, r io.Reader, opts source.Options) (*source.Result, error) {
	res := &source.Result{}
	var records []normalize.Record

	err := source.DecodeArray(ctx, r, func(n int, p *project) error {
		res.Records++
		rec := normalize.Record{
			Name:     p.Info.Name,
			Version:  p.Info.Version,
			Requires: p.Info.RequiresDist,
			Line:     n,
		}

		if raw, ok := firstUploadTime(p.Releases); ok && raw != "" {
			ts, err := timestamp.NormalizeRelease(raw, opts.Location)
			if err != nil {
				// Never fatal for this source; the record loses its time.
				res.Issues = append(res.Issues, &errors.RecordError{Line: n, Package: rec.Name, Version: rec.Version, Err: err})
			} else {
				rec.UploadTime = ts
			}
		}

		if opts.Logger != nil && rec.UploadTime == "" {
			opts.Logger.Debug("no upload time", "package", rec.Name, "author", p.Info.Author)
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Rows = normalize.Explode(records)
	normalize.SortRows(res.Rows)
	return res, nil
}

// firstUploadTime returns the upload_time of the first file of the first
// release. It reports ok=false when there is no such file.
func firstUploadTime(releases json.RawMessage) (string, bool) {
	_, files, ok := source.FirstEntry(releases)
	if !ok {
		return "", false
	}
	var list []file
	if err := json.Unmarshal(files, &list); err != nil || len(list) == 0 {
		return "", false
	}
	return list[0].UploadTime, true
}
