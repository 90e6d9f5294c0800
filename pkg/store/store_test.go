package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/pkgnorm/pkg/errors"
	"github.com/matzehuels/pkgnorm/pkg/normalize"
)

func sample() *normalize.Document {
	return &normalize.Document{Pkgs: []normalize.Package{
		{Name: "zope.interface", Versions: map[string]normalize.VersionEntry{
			"6.0": {Timestamp: "2023-03-17T06:54:06+00:00", Dependencies: map[string]string{"setuptools": ">=0.0.0"}},
			"5.5": {Timestamp: "2022-10-07T06:23:38+00:00", Dependencies: map[string]string{}},
		}},
		{Name: "attrs", Versions: map[string]normalize.VersionEntry{
			"23.1.0": {Timestamp: "2023-04-16T10:13:37+00:00", Dependencies: map[string]string{
				"importlib-metadata": ">=0.0.0",
				"attrs":              ">=0.0.0",
			}},
		}},
	}}
}

func TestDocuments(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	run := Run{ID: "run-1", Source: "bigquery", At: at}

	got := Documents(run, sample())
	want := []PackageDoc{
		{
			ID: "bigquery:zope.interface", Name: "zope.interface", Source: "bigquery", RunID: "run-1", UpdatedAt: at,
			Versions: []VersionDoc{
				{Version: "5.5", Timestamp: "2022-10-07T06:23:38+00:00", Dependencies: []DependencyDoc{}},
				{Version: "6.0", Timestamp: "2023-03-17T06:54:06+00:00", Dependencies: []DependencyDoc{
					{Name: "setuptools", Constraint: ">=0.0.0"},
				}},
			},
		},
		{
			ID: "bigquery:attrs", Name: "attrs", Source: "bigquery", RunID: "run-1", UpdatedAt: at,
			Versions: []VersionDoc{
				{Version: "23.1.0", Timestamp: "2023-04-16T10:13:37+00:00", Dependencies: []DependencyDoc{
					{Name: "attrs", Constraint: ">=0.0.0"},
					{Name: "importlib-metadata", Constraint: ">=0.0.0"},
				}},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Documents mismatch (-want +got):\n%s", diff)
	}

	if Documents(run, nil) != nil {
		t.Error("Documents(nil) should be nil")
	}
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	_, err := NewMongoStore(context.Background(), Config{})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("NewMongoStore error = %v, want INVALID_CONFIG", err)
	}
}

// TestMongoStore runs against a live server when PKGNORM_MONGO_URI is set.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("PKGNORM_MONGO_URI")
	if uri == "" {
		t.Skip("PKGNORM_MONGO_URI not set")
	}
	ctx := context.Background()

	s, err := NewMongoStore(ctx, Config{URI: uri, Database: "pkgnorm_test", Collection: "packages_" + time.Now().Format("150405")})
	if err != nil {
		t.Fatalf("NewMongoStore error: %v", err)
	}
	t.Cleanup(func() {
		_ = s.collection.Drop(context.Background())
		_ = s.Close(context.Background())
	})

	run := Run{ID: "run-1", Source: "pypicache"}
	n, err := s.Save(ctx, run, sample())
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if n != 2 {
		t.Errorf("Save wrote %d, want 2", n)
	}

	// A second run replaces the same documents.
	run.ID = "run-2"
	if _, err := s.Save(ctx, run, sample()); err != nil {
		t.Fatalf("second Save error: %v", err)
	}
	count, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("collection has %d documents, want 2", count)
	}
}
