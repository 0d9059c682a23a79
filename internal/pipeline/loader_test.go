package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleFeed = `{
  "objects": [
    {
      "objectid": "bild_00001",
      "title": "Basel Stadtansicht",
      "description": "Historische Karte",
      "subject": ["Karte", "Basel"],
      "creator": "Matthäus Merian",
      "object_thumb": "https://example.org/thumbs/1.jpg"
    },
    {
      "objectid": "bild_00002",
      "title": "Rheinbrücke",
      "subject": "Brücke"
    }
  ]
}`

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.json")
	if err := os.WriteFile(path, []byte(sampleFeed), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(2*time.Second, "enrich-test/1.0", 0)
	feed, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(feed.Objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(feed.Objects))
	}
	if feed.Objects[0].ID() != "bild_00001" {
		t.Errorf("unexpected object id %q", feed.Objects[0].ID())
	}
	if got := feed.Objects[0].Subject.Join(); got != "Karte, Basel" {
		t.Errorf("array-valued subject mishandled: %q", got)
	}
	if got := feed.Objects[1].Subject.Join(); got != "Brücke" {
		t.Errorf("string-valued subject mishandled: %q", got)
	}
}

func TestLoad_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("unexpected Accept header %q", got)
		}
		fmt.Fprint(w, sampleFeed)
	}))
	defer server.Close()

	loader := NewLoader(2*time.Second, "enrich-test/1.0", 0)
	feed, err := loader.Load(context.Background(), server.URL+"/feed.json")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(feed.Objects) != 2 {
		t.Errorf("expected 2 objects, got %d", len(feed.Objects))
	}
}

func TestLoad_URLErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	loader := NewLoader(2*time.Second, "enrich-test/1.0", 0)
	if _, err := loader.Load(context.Background(), server.URL); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	loader := NewLoader(2*time.Second, "enrich-test/1.0", 0)
	if _, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"objects": [`), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(2*time.Second, "enrich-test/1.0", 0)
	if _, err := loader.Load(context.Background(), path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
