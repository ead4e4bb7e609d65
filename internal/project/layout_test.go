package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/nanofiche/internal/model"
)

func TestSaveAndLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs", "run.json")

	settings := model.DefaultSettings()
	settings.Algorithm = model.AlgorithmOptimized
	settings.Seed = 7
	result := model.PackingResult{
		RunID:     "abcd1234",
		Algorithm: model.AlgorithmOptimized,
		Requested: 2,
		Placements: []model.Placement{
			{ItemIndex: 0, ItemID: "i0", Source: model.SourceRef{Document: 0, Page: 0, Label: "Report"}, X: 1, Y: 2, Width: 3, Height: 4, Rotation: 45},
		},
		Failed: []model.FailedItem{{ItemIndex: 1, ItemID: "i1", Reason: "no room"}},
	}

	if err := SaveLayout(path, settings, result); err != nil {
		t.Fatalf("SaveLayout failed: %v", err)
	}

	layout, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout failed: %v", err)
	}

	if layout.Version != LayoutVersion {
		t.Errorf("expected version %s, got %s", LayoutVersion, layout.Version)
	}
	if layout.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if layout.Settings != settings {
		t.Errorf("settings did not survive the round trip: %+v", layout.Settings)
	}
	if len(layout.Result.Placements) != 1 || layout.Result.Placements[0] != result.Placements[0] {
		t.Errorf("placements did not survive the round trip: %+v", layout.Result.Placements)
	}
	if len(layout.Result.Failed) != 1 || layout.Result.Failed[0].Reason != "no room" {
		t.Errorf("failures did not survive the round trip: %+v", layout.Result.Failed)
	}
}

func TestLoadLayoutMissingFile(t *testing.T) {
	_, err := LoadLayout(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadLayoutInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLayout(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoadLayoutMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"result": {"placements": null}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLayout(path); err == nil {
		t.Fatal("expected error for a file without version")
	}
}

func TestLoadLayoutEmptyPlacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"version": "1.0.0"}`), 0644); err != nil {
		t.Fatal(err)
	}

	layout, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout failed: %v", err)
	}
	if layout.Result.Placements == nil {
		t.Error("Placements should not be nil after loading")
	}
}
