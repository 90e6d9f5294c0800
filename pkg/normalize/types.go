package normalize

import "github.com/matzehuels/pkgnorm/pkg/requirement"

// Record is one package version as declared by a source.
// UploadTime holds the source text until the adapter has normalized it;
// empty means it is unknown.
type Record struct {
	Name       string
	Version    string
	UploadTime string
	Requires   []string

	// Line is the 1-based position of the record in its input, used in
	// diagnostics. Zero means unknown.
	Line int
}

// Row is one declared dependency of one package version.
//
// Declaration holds the raw dependency text and is parsed during
// normalization. Sources whose metadata already separates name and
// constraint set Dependency instead, which takes precedence. A row with
// neither records a version without dependencies.
type Row struct {
	Name        string
	Version     string
	UploadTime  string
	Declaration string
	Dependency  *requirement.Dependency
}

// VersionEntry is the normalized form of one package version.
type VersionEntry struct {
	Timestamp    string            `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies"`
}

// Package is the normalized form of one package and all its versions.
type Package struct {
	Name     string                  `json:"name"`
	Versions map[string]VersionEntry `json:"versions"`
}

// Document is the output of a normalization run.
type Document struct {
	Pkgs []Package `json:"pkgs"`
}

// Summary counts the contents of a document.
type Summary struct {
	Packages     int `json:"packages"`
	Versions     int `json:"versions"`
	Dependencies int `json:"dependencies"`
}

// Summary returns package, version and dependency edge counts.
func (d *Document) Summary() Summary {
	var s Summary
	if d == nil {
		return s
	}
	s.Packages = len(d.Pkgs)
	for _, p := range d.Pkgs {
		s.Versions += len(p.Versions)
		for _, v := range p.Versions {
			s.Dependencies += len(v.Dependencies)
		}
	}
	return s
}

// Stats describes what a normalization pass kept and discarded.
type Stats struct {
	Rows                int `json:"rows"`
	DroppedRows         int `json:"dropped_rows"`
	SkippedDependencies int `json:"skipped_dependencies"`
	Packages            int `json:"packages"`
	Versions            int `json:"versions"`
}
