// Package store persists normalized documents to MongoDB.
//
// Each package becomes one document keyed by "<source>:<name>". Versions and
// dependencies are stored as arrays rather than maps because version strings
// and Python distribution names routinely contain dots, which MongoDB treats
// as path separators in queries.
//
//	{
//	  "_id": "bigquery:requests",
//	  "name": "requests",
//	  "source": "bigquery",
//	  "run_id": "9b2d...",
//	  "updated_at": ISODate(...),
//	  "versions": [
//	    {"version": "2.31.0", "timestamp": "2023-05-22T15:12:42+00:00",
//	     "dependencies": [{"name": "idna", "constraint": "<4,>=2.5"}]}
//	  ]
//	}
//
// Writes are upserts, so re-running a normalization replaces the previous
// documents for the same source.
package store

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/pkgnorm/pkg/normalize"
)

// Store persists normalized documents.
type Store interface {
	// Save upserts every package in doc and returns how many were written.
	Save(ctx context.Context, run Run, doc *normalize.Document) (int, error)

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Run identifies the normalization run that produced a document.
type Run struct {
	ID     string
	Source string
	At     time.Time
}

// PackageDoc is the stored form of one package.
type PackageDoc struct {
	ID        string       `bson:"_id"`
	Name      string       `bson:"name"`
	Source    string       `bson:"source"`
	RunID     string       `bson:"run_id"`
	UpdatedAt time.Time    `bson:"updated_at"`
	Versions  []VersionDoc `bson:"versions"`
}

// VersionDoc is one version of a stored package.
type VersionDoc struct {
	Version      string          `bson:"version"`
	Timestamp    string          `bson:"timestamp"`
	Dependencies []DependencyDoc `bson:"dependencies"`
}

// DependencyDoc is one dependency of a stored version.
type DependencyDoc struct {
	Name       string `bson:"name"`
	Constraint string `bson:"constraint"`
}

// DocumentID returns the _id used for a package from source.
func DocumentID(source, name string) string {
	return source + ":" + name
}

// Documents converts doc into stored documents. Versions and dependencies are
// sorted by name so the stored arrays are stable between runs.
func Documents(run Run, doc *normalize.Document) []PackageDoc {
	if doc == nil {
		return nil
	}
	out := make([]PackageDoc, 0, len(doc.Pkgs))
	for _, p := range doc.Pkgs {
		pd := PackageDoc{
			ID:        DocumentID(run.Source, p.Name),
			Name:      p.Name,
			Source:    run.Source,
			RunID:     run.ID,
			UpdatedAt: run.At,
			Versions:  make([]VersionDoc, 0, len(p.Versions)),
		}
		for _, v := range slices.Sorted(maps.Keys(p.Versions)) {
			entry := p.Versions[v]
			vd := VersionDoc{
				Version:      v,
				Timestamp:    entry.Timestamp,
				Dependencies: make([]DependencyDoc, 0, len(entry.Dependencies)),
			}
			for _, dep := range slices.Sorted(maps.Keys(entry.Dependencies)) {
				vd.Dependencies = append(vd.Dependencies, DependencyDoc{Name: dep, Constraint: entry.Dependencies[dep]})
			}
			pd.Versions = append(pd.Versions, vd)
		}
		out = append(out, pd)
	}
	return out
}
