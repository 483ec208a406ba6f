package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestManifestRoundtrip(t *testing.T) {
	m := New("preview", 12, "rgb")
	m.BuildInfo = &BuildInfo{Workers: 4, PlaneWorkers: 2}
	m.Assets["cards/card-1"] = Asset{
		Original: OriginalInfo{
			Width: 800, Height: 600,
			Format: "jpeg", Size: 100000, HasAlpha: false,
		},
		Output: Output{
			Format: "jpeg", Width: 640, Height: 480, Size: 9000,
			Hash: "abcd1234abcd1234", Path: "cards/card-1.r12.abcd1234.jpg",
		},
		BlurMS: 3.5,
	}
	m.Stats.Failed = 1

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := WriteJSON(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	m2, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if m2.Version != SupportedManifestVersion {
		t.Errorf("version: got %d, want %d", m2.Version, SupportedManifestVersion)
	}
	if m2.Profile != "preview" || m2.Radius != 12 || m2.Mode != "rgb" {
		t.Errorf("header: got %q r=%d mode=%q", m2.Profile, m2.Radius, m2.Mode)
	}
	if m2.BuildInfo == nil || m2.BuildInfo.Workers != 4 || m2.BuildInfo.PlaneWorkers != 2 {
		t.Errorf("build_info: got %+v", m2.BuildInfo)
	}

	a, ok := m2.Assets["cards/card-1"]
	if !ok {
		t.Fatal("asset cards/card-1 missing")
	}
	if a.Output.Path != "cards/card-1.r12.abcd1234.jpg" {
		t.Errorf("output path: got %q", a.Output.Path)
	}

	if m2.Stats.TotalAssets != 1 {
		t.Errorf("total_assets: got %d", m2.Stats.TotalAssets)
	}
	if m2.Stats.TotalOutputBytes != 9000 || m2.Stats.TotalInputBytes != 100000 {
		t.Errorf("bytes: got %d in, %d out", m2.Stats.TotalInputBytes, m2.Stats.TotalOutputBytes)
	}
	if m2.Stats.TotalBlurMS != 3.5 {
		t.Errorf("blur ms: got %v", m2.Stats.TotalBlurMS)
	}
	if m2.Stats.Failed != 1 {
		t.Errorf("failed: got %d", m2.Stats.Failed)
	}
}

func TestManifestIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"version": 1,
		"generated_at": "2026-01-01T00:00:00Z",
		"profile": "luma",
		"radius": 8,
		"mode": "luma",
		"future_field": "should be ignored",
		"build_info": { "workers": 8, "plane_workers": 1, "new_flag": true },
		"assets": {},
		"stats": { "total_input_bytes": 0, "total_output_bytes": 0, "total_assets": 0, "new_stat": 42 }
	}`

	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if m.Version != 1 || m.Radius != 8 {
		t.Errorf("got version %d radius %d", m.Version, m.Radius)
	}
	if m.BuildInfo == nil || m.BuildInfo.Workers != 8 {
		t.Error("build_info not parsed correctly")
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error")
	}
}

func TestWriteJSONReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteJSON(New("luma", 8, "luma"), path); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Read(path); err != nil {
		t.Fatalf("read back: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != FileName {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory holds %v, want only %s", names, FileName)
	}
}
