// Package pkg provides the libraries behind pkgnorm, which turns package
// metadata dumps into one normalized dependency document.
//
// # Overview
//
// Registries publish metadata in very different shapes. pkgnorm reads three
// of them and writes a single schema keyed by package name:
//
//	{"pkgs": [{"name": "requests",
//	           "versions": {"2.31.0": {"timestamp": "2023-05-22T15:12:42+00:00",
//	                                   "dependencies": {"idna": "<4,>=2.5"}}}}]}
//
// # Architecture
//
// The data flow through pkgnorm:
//
//	BigQuery export / PyPI cache / npm dump
//	         ↓
//	    [source] adapters (decode, parse timestamps, flatten to rows)
//	         ↓
//	    [normalize] package (filter, deduplicate, group)
//	         ↓
//	    [io] package (canonical JSON document)
//	         ↓
//	    file, stdout or [store] (MongoDB)
//
// [pipeline] ties the steps together and caches results through [cache].
//
// # Quick Start
//
// Normalize a BigQuery export held in memory:
//
//	import (
//	    "github.com/matzehuels/pkgnorm/pkg/io"
//	    "github.com/matzehuels/pkgnorm/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Source: "bigquery"}, r)
//	if err != nil {
//	    return err
//	}
//	return io.WriteDocument(result.Document, os.Stdout)
//
// # Packages
//
// [requirement] parses PEP 508 requirement strings. [timestamp] parses the
// source time formats and renders the output format. [errors] defines the
// error codes and the per-record issue type shared by every package.
// [observability] exposes hooks for pipeline, cache and store events.
//
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pkgnorm/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/pkgnorm/pkg/cache
// [requirement]: https://pkg.go.dev/github.com/matzehuels/pkgnorm/pkg/requirement
// [timestamp]: https://pkg.go.dev/github.com/matzehuels/pkgnorm/pkg/timestamp
// [errors]: https://pkg.go.dev/github.com/matzehuels/pkgnorm/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/pkgnorm/pkg/observability
//
// [source]: https://pkg.go.dev/github.com/matzehuels/pkgnorm/pkg/source
// [normalize]: https://pkg.go.dev/github.com/matzehuels/pkgnorm/pkg/normalize
// [io]: https://pkg.go.dev/github.com/matzehuels/pkgnorm/pkg/io
// [store]: https://pkg.go.dev/github.com/matzehuels/pkgnorm/pkg/store
package pkg
