package normalize

import (
	"cmp"
	"slices"

	"github.com/matzehuels/pkgnorm/pkg/requirement"
)

// Normalizer builds documents from rows.
type Normalizer struct {
	// NoExtra discards declarations conditioned on an extra.
	NoExtra bool
}

// Normalize groups rows by package name and builds the nested document.
// Rows missing a name, version or upload time are dropped. The input order
// is preserved: it decides package order, canonical timestamps and
// dependency collisions (see the package documentation).
func (n Normalizer) Normalize(rows []Row) (*Document, Stats) {
	stats := Stats{Rows: len(rows)}
	doc := &Document{Pkgs: []Package{}}
	index := make(map[string]int)

	for _, r := range rows {
		if !hasRequired(r) {
			stats.DroppedRows++
			continue
		}

		i, ok := index[r.Name]
		if !ok {
			i = len(doc.Pkgs)
			index[r.Name] = i
			doc.Pkgs = append(doc.Pkgs, Package{Name: r.Name, Versions: make(map[string]VersionEntry)})
		}
		pkg := &doc.Pkgs[i]

		entry, ok := pkg.Versions[r.Version]
		if !ok {
			entry = VersionEntry{Timestamp: r.UploadTime, Dependencies: make(map[string]string)}
			pkg.Versions[r.Version] = entry
			stats.Versions++
		}

		dep, ok := n.dependency(r)
		if !ok {
			if r.Declaration != "" || r.Dependency != nil {
				stats.SkippedDependencies++
			}
			continue
		}
		entry.Dependencies[dep.Name] = dep.Constraint
	}

	stats.Packages = len(doc.Pkgs)
	return doc, stats
}

func (n Normalizer) dependency(r Row) (requirement.Dependency, bool) {
	if d := r.Dependency; d != nil {
		if d.Name == "" {
			return requirement.Dependency{}, false
		}
		if n.NoExtra && (requirement.IsExtra(d.Name) || requirement.IsExtra(d.Constraint)) {
			return requirement.Dependency{}, false
		}
		return *d, true
	}
	return requirement.Parse(r.Declaration, n.NoExtra)
}

func hasRequired(r Row) bool {
	return r.Name != "" && r.Version != "" && r.UploadTime != ""
}

// SortRecords orders records by name ascending, version descending and
// upload time ascending. Versions and times compare as plain strings. The
// sort is stable, so records equal on all three keys keep their input order.
func SortRecords(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Version, a.Version); c != 0 {
			return c
		}
		return cmp.Compare(a.UploadTime, b.UploadTime)
	})
}

// SortRows orders rows by name ascending and version descending, keeping
// the input order of rows within one version.
func SortRows(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(b.Version, a.Version)
	})
}

// Dedupe returns records with only the first occurrence of each
// (name, version) pair, in input order.
func Dedupe(records []Record) []Record {
	type key struct{ name, version string }
	seen := make(map[key]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		k := key{r.Name, r.Version}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// Explode returns one row per declared dependency. Records without
// dependencies contribute a single row with no declaration so that the
// version itself is kept.
func Explode(records []Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		if len(r.Requires) == 0 {
			rows = append(rows, Row{Name: r.Name, Version: r.Version, UploadTime: r.UploadTime})
			continue
		}
		for _, decl := range r.Requires {
			rows = append(rows, Row{Name: r.Name, Version: r.Version, UploadTime: r.UploadTime, Declaration: decl})
		}
	}
	return rows
}
