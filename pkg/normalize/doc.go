// Package normalize folds flat package-version rows into the nested
// name → version → dependency document written by pkgnorm.
//
// # Overview
//
// Source adapters reduce their input to [Record] values (one per package
// version) or directly to [Row] values (one per declared dependency). This
// package owns the shared steps between the two:
//
//  1. [SortRecords] orders records by name ascending, version descending and
//     upload time ascending.
//  2. [Dedupe] keeps the first record for each (name, version) pair.
//  3. [Explode] emits one [Row] per declared dependency, or a single row with
//     no dependency for versions that declare none.
//  4. [Normalizer.Normalize] drops rows missing a required field, groups the
//     rest by name and builds a [Document].
//
// # Merge Rules
//
// The first row seen for a (name, version) pair fixes that version's
// timestamp. Dependencies are merged in row order, so when two declarations
// resolve to the same dependency name the later row wins. Packages appear in
// the document in the order their names were first seen.
//
// # Output
//
// A [Document] marshals to:
//
//	{"pkgs": [{"name": "pkg", "versions": {"1.0": {"timestamp": "...", "dependencies": {"dep": ">=1.0"}}}}]}
//
// Map keys are emitted in sorted order by encoding/json, so identical input
// always produces byte-identical output.
package normalize
