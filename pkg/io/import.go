package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pkgnorm/pkg/errors"
	"github.com/matzehuels/pkgnorm/pkg/normalize"
)

// Format identifies the top-level shape of a document on disk.
type Format string

const (
	// FormatCanonical is {"pkgs": [...]}.
	FormatCanonical Format = "canonical"
	// FormatLegacy is a bare [...] of packages.
	FormatLegacy Format = "legacy"
)

// ReadDocument decodes a normalized document from r. Both the canonical
// wrapped shape and the legacy bare array are accepted.
//
// ReadDocument returns an INVALID_INPUT error if the JSON is malformed, the
// top-level value is neither an object nor an array, or a package has no
// name. ReadDocument does not close r.
func ReadDocument(r io.Reader) (*normalize.Document, Format, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "decode document")
	}

	doc := &normalize.Document{}
	var format Format
	switch trimmed := bytes.TrimSpace(raw); {
	case len(trimmed) > 0 && trimmed[0] == '{':
		format = FormatCanonical
		if err := json.Unmarshal(trimmed, doc); err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "decode document")
		}
	case len(trimmed) > 0 && trimmed[0] == '[':
		format = FormatLegacy
		if err := json.Unmarshal(trimmed, &doc.Pkgs); err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "decode legacy document")
		}
	default:
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "document must be a JSON object or array")
	}

	if doc.Pkgs == nil {
		doc.Pkgs = []normalize.Package{}
	}
	for i, p := range doc.Pkgs {
		if p.Name == "" {
			return nil, "", errors.New(errors.ErrCodeInvalidInput, "package %d has no name", i)
		}
	}
	return doc, format, nil
}

// ImportDocument reads a document file at path.
func ImportDocument(path string) (*normalize.Document, Format, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}
