package localfs

import (
	"context"
	"strings"
	"testing"
)

func TestStorageSaveAndPath(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Save(context.Background(), "doc-1_report.pdf", strings.NewReader("%PDF-1.7")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := s.Open(context.Background(), "doc-1_report.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	if !strings.HasSuffix(s.Path("doc-1_report.pdf"), "doc-1_report.pdf") {
		t.Fatalf("unexpected path: %q", s.Path("doc-1_report.pdf"))
	}
}

func TestArtifactStoreRoundTrip(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore() error = %v", err)
	}

	type record struct {
		Company string `json:"company_name"`
		Year    int    `json:"reporting_year"`
	}

	path, err := store.SaveJSON(context.Background(), "Acme_Corp_2024.json", record{Company: "Acme Corp", Year: 2024})
	if err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	var got record
	if err := store.LoadJSON(context.Background(), path, &got); err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if got.Company != "Acme Corp" || got.Year != 2024 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestArtifactStoreOverwriteKeepsLatest(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore() error = %v", err)
	}

	type record struct {
		Version int `json:"v"`
	}
	if _, err := store.SaveJSON(context.Background(), "k.json", record{Version: 1}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	path, err := store.SaveJSON(context.Background(), "k.json", record{Version: 2})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	var got record
	if err := store.LoadJSON(context.Background(), path, &got); err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if got.Version != 2 {
		t.Fatalf("expected latest record, got version %d", got.Version)
	}
}

func TestArtifactStoreLoadMissing(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore() error = %v", err)
	}
	var v map[string]any
	if err := store.LoadJSON(context.Background(), "/nonexistent/x.json", &v); err == nil {
		t.Fatalf("expected error for missing artifact")
	}
}
