package source

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/pkgnorm/pkg/errors"
)

type namedAdapter struct{ name string }

func (a namedAdapter) Name() string        { return a.name }
func (a namedAdapter) Description() string { return "test adapter" }
func (a namedAdapter) Read(context.Context, io.Reader, Options) (*Result, error) {
	return &Result{}, nil
}

func TestLookup(t *testing.T) {
	adapters := []Adapter{namedAdapter{"bigquery"}, namedAdapter{"npm"}}

	a, err := Lookup("npm", adapters...)
	if err != nil {
		t.Fatalf("Lookup(npm) error: %v", err)
	}
	if a.Name() != "npm" {
		t.Errorf("Lookup(npm) = %s", a.Name())
	}

	_, err = Lookup("maven", adapters...)
	if !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Fatalf("Lookup(maven) error = %v, want INVALID_SOURCE", err)
	}
	if !strings.Contains(err.Error(), "bigquery, npm") {
		t.Errorf("error should list available sources: %v", err)
	}
}

func TestOptionsReport(t *testing.T) {
	issue := &errors.RecordError{Line: 2, Err: errors.New(errors.ErrCodeInvalidTimestamp, "bad")}

	res := &Result{}
	if err := (Options{}).Report(res, issue); err != nil {
		t.Fatalf("lenient Report returned %v", err)
	}
	if len(res.Issues) != 1 {
		t.Errorf("Issues = %d, want 1", len(res.Issues))
	}

	res = &Result{}
	err := (Options{Strict: true}).Report(res, issue)
	if err != issue {
		t.Fatalf("strict Report = %v, want the issue", err)
	}
	if len(res.Issues) != 0 {
		t.Errorf("strict Report should not record issues")
	}
}

func TestDecodeArray(t *testing.T) {
	var got []string
	err := DecodeArray(context.Background(), strings.NewReader(`[{"n":"a"},{"n":"b"}]`), func(i int, v *struct{ N string }) error {
		got = append(got, strings.Repeat(v.N, i))
		return nil
	})
	if err != nil {
		t.Fatalf("DecodeArray error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "bb"}, got); diff != "" {
		t.Errorf("DecodeArray mismatch (-want +got):\n%s", diff)
	}

	for _, in := range []string{`{"n":"a"}`, `[{"n":`, ``} {
		err := DecodeArray(context.Background(), strings.NewReader(in), func(int, *struct{ N string }) error { return nil })
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("DecodeArray(%q) error = %v, want INVALID_INPUT", in, err)
		}
	}
}

func TestDecodeArrayCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := DecodeArray(ctx, strings.NewReader(`[1]`), func(int, *int) error { return nil })
	if err != context.Canceled {
		t.Errorf("DecodeArray error = %v, want context.Canceled", err)
	}
}

func TestDecodeLines(t *testing.T) {
	in := "{\"n\":1}\n{\"n\":2}\n\n{\"n\":3}\n"
	var sum, last int
	err := DecodeLines(context.Background(), strings.NewReader(in), func(i int, v *struct{ N int }) error {
		sum += v.N
		last = i
		return nil
	})
	if err != nil {
		t.Fatalf("DecodeLines error: %v", err)
	}
	if sum != 6 || last != 3 {
		t.Errorf("sum=%d last=%d, want 6 and 3", sum, last)
	}

	err = DecodeLines(context.Background(), strings.NewReader("{\"n\":1}\nnot json\n"), func(int, *struct{ N int }) error { return nil })
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("DecodeLines error = %v, want INVALID_INPUT", err)
	}
}

func TestFirstEntry(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{"document order", `{"2.0": [2], "1.0": [1]}`, "2.0", "[2]", true},
		{"empty object", `{}`, "", "", false},
		{"null", `null`, "", "", false},
		{"array", `[1]`, "", "", false},
		{"missing", ``, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, ok := FirstEntry(json.RawMessage(tt.raw))
			if key != tt.wantKey || string(value) != tt.wantValue || ok != tt.wantOK {
				t.Errorf("FirstEntry(%s) = (%q, %s, %v), want (%q, %s, %v)",
					tt.raw, key, value, ok, tt.wantKey, tt.wantValue, tt.wantOK)
			}
		})
	}
}
