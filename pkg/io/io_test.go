package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/pkgnorm/pkg/errors"
	"github.com/matzehuels/pkgnorm/pkg/normalize"
)

func sampleDocument() *normalize.Document {
	return &normalize.Document{Pkgs: []normalize.Package{
		{Name: "pkg", Versions: map[string]normalize.VersionEntry{
			"1.0": {Timestamp: "2023-01-01T00:00:00+00:00", Dependencies: map[string]string{"dep": "<2,>=1.0"}},
		}},
		{Name: "bare", Versions: map[string]normalize.VersionEntry{
			"0.1": {Timestamp: "2022-01-01T00:00:00.500000+00:00", Dependencies: map[string]string{}},
		}},
	}}
}

func TestWriteDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDocument(sampleDocument(), &buf); err != nil {
		t.Fatalf("WriteDocument error: %v", err)
	}

	want := `{
  "pkgs": [
    {
      "name": "pkg",
      "versions": {
        "1.0": {
          "timestamp": "2023-01-01T00:00:00+00:00",
          "dependencies": {
            "dep": "<2,>=1.0"
          }
        }
      }
    },
    {
      "name": "bare",
      "versions": {
        "0.1": {
          "timestamp": "2022-01-01T00:00:00.500000+00:00",
          "dependencies": {}
        }
      }
    }
  ]
}
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteDocument mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteDocumentEmpty(t *testing.T) {
	for _, doc := range []*normalize.Document{nil, {}} {
		var buf bytes.Buffer
		if err := WriteDocument(doc, &buf); err != nil {
			t.Fatalf("WriteDocument error: %v", err)
		}
		if got := buf.String(); got != "{\n  \"pkgs\": []\n}\n" {
			t.Errorf("WriteDocument(%v) = %q", doc, got)
		}
	}
}

func TestMarshalDocumentDeterministic(t *testing.T) {
	first, err := MarshalDocument(sampleDocument())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, _ := MarshalDocument(sampleDocument())
		if !bytes.Equal(first, again) {
			t.Fatal("MarshalDocument output differs between runs")
		}
	}
}

func TestReadDocument(t *testing.T) {
	data, _ := MarshalDocument(sampleDocument())

	tests := []struct {
		name       string
		input      string
		wantFormat Format
	}{
		{"canonical", string(data), FormatCanonical},
		{"legacy", `[{"name":"pkg","versions":{"1.0":{"timestamp":"2023-01-01T00:00:00+00:00","dependencies":{"dep":"<2,>=1.0"}}}},
			{"name":"bare","versions":{"0.1":{"timestamp":"2022-01-01T00:00:00.500000+00:00","dependencies":{}}}}]`, FormatLegacy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, format, err := ReadDocument(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadDocument error: %v", err)
			}
			if format != tt.wantFormat {
				t.Errorf("format = %s, want %s", format, tt.wantFormat)
			}
			if diff := cmp.Diff(sampleDocument(), doc); diff != "" {
				t.Errorf("document mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadDocumentErrors(t *testing.T) {
	for _, in := range []string{``, `"pkgs"`, `{"pkgs": [{"versions": {}}]}`, `{"pkgs": 3}`, `[{`} {
		if _, _, err := ReadDocument(strings.NewReader(in)); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ReadDocument(%q) error = %v, want INVALID_INPUT", in, err)
		}
	}
}

func TestReadDocumentEmpty(t *testing.T) {
	doc, _, err := ReadDocument(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("ReadDocument error: %v", err)
	}
	if doc.Pkgs == nil || len(doc.Pkgs) != 0 {
		t.Errorf("Pkgs = %#v, want empty slice", doc.Pkgs)
	}
}

func TestExportImportDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "bq_results.json")

	if err := ExportDocument(sampleDocument(), path); err != nil {
		t.Fatalf("ExportDocument error: %v", err)
	}

	doc, format, err := ImportDocument(path)
	if err != nil {
		t.Fatalf("ImportDocument error: %v", err)
	}
	if format != FormatCanonical {
		t.Errorf("format = %s, want canonical", format)
	}
	if diff := cmp.Diff(sampleDocument(), doc); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("export left %d files behind, want 1", len(entries))
	}
}

func TestImportDocumentMissing(t *testing.T) {
	_, _, err := ImportDocument(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportDocument error = %v, want FILE_NOT_FOUND", err)
	}
}
