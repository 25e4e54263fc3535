package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Ingest.BatchSize != 10240 {
		t.Errorf("expected BatchSize=10240, got %d", cfg.Ingest.BatchSize)
	}
	if cfg.Store.LockTimeout != 5*time.Second {
		t.Errorf("expected LockTimeout=5s, got %s", cfg.Store.LockTimeout)
	}
	if cfg.Index.CommitEvery != 10000 {
		t.Errorf("expected CommitEvery=10000, got %d", cfg.Index.CommitEvery)
	}
	if cfg.Index.MaxTokenLen != 40 {
		t.Errorf("expected MaxTokenLen=40, got %d", cfg.Index.MaxTokenLen)
	}
	if cfg.Query.PageSize != 20 {
		t.Errorf("expected PageSize=20, got %d", cfg.Query.PageSize)
	}
	if cfg.Query.ExportLimit != 10000 {
		t.Errorf("expected ExportLimit=10000, got %d", cfg.Query.ExportLimit)
	}
	if cfg.Query.MaxOffset != 50000 {
		t.Errorf("expected MaxOffset=50000, got %d", cfg.Query.MaxOffset)
	}
	if cfg.Query.Boosts["case_id"] != 9 || cfg.Query.Boosts["case_name"] != 3 {
		t.Errorf("unexpected boosts: %v", cfg.Query.Boosts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "caselaw.yaml")

	content := `
store:
  backend: sqlite
index:
  with_full_text: true
query:
  page_size: 10
  timeout: 3s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store.Backend != "sqlite" {
		t.Errorf("expected Backend=sqlite, got %s", cfg.Store.Backend)
	}
	if !cfg.Index.WithFullText {
		t.Errorf("expected WithFullText=true")
	}
	if cfg.Query.PageSize != 10 {
		t.Errorf("expected PageSize=10, got %d", cfg.Query.PageSize)
	}
	if cfg.Query.Timeout != 3*time.Second {
		t.Errorf("expected Timeout=3s, got %s", cfg.Query.Timeout)
	}
	if cfg.Query.ExportLimit != 10000 {
		t.Errorf("unset fields should keep defaults, got ExportLimit=%d", cfg.Query.ExportLimit)
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "caselaw.toml")

	content := `
[ingest]
raw_data_path = "/srv/raw"
batch_size = 512

[query.boosts]
case_id = 5.0
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Ingest.RawDataPath != "/srv/raw" {
		t.Errorf("expected RawDataPath=/srv/raw, got %s", cfg.Ingest.RawDataPath)
	}
	if cfg.Ingest.BatchSize != 512 {
		t.Errorf("expected BatchSize=512, got %d", cfg.Ingest.BatchSize)
	}
	if cfg.Query.Boosts["case_id"] != 5 {
		t.Errorf("expected case_id boost 5, got %v", cfg.Query.Boosts["case_id"])
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "caselaw.yaml")

	if err := os.WriteFile(configPath, []byte("store:\n  backend: leveldb\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected error for unknown backend")
	}

	if err := os.WriteFile(configPath, []byte("ingest:\n  batch_size: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected error for zero batch size")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".caselaw"), 0755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".caselaw", "config.yaml")

	content := `
query:
  export_limit: 500
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Query.ExportLimit != 500 {
		t.Errorf("expected ExportLimit=500, got %d", cfg.Query.ExportLimit)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"caselaw.yaml", "caselaw.toml"} {
		cfg := DefaultConfig()
		cfg.Serve.Addr = ":9999"
		path := filepath.Join(tmpDir, name)
		if err := cfg.Save(path); err != nil {
			t.Fatalf("%s: save failed: %v", name, err)
		}
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("%s: load failed: %v", name, err)
		}
		if loaded.Serve.Addr != ":9999" {
			t.Errorf("%s: expected Addr=:9999, got %s", name, loaded.Serve.Addr)
		}
	}
}

func TestResolve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ingest.RawDataPath = "/abs/raw"
	cfg.Resolve("/home/user/cases")

	expected := filepath.Join("/home/user/cases", "data", "cases.db")
	if cfg.Store.Path != expected {
		t.Errorf("expected %s, got %s", expected, cfg.Store.Path)
	}
	if cfg.Ingest.RawDataPath != "/abs/raw" {
		t.Errorf("absolute paths must be kept, got %s", cfg.Ingest.RawDataPath)
	}
	if cfg.Index.StopwordsFile != "" {
		t.Errorf("empty paths must stay empty, got %s", cfg.Index.StopwordsFile)
	}
}
