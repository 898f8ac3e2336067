package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// writeTempConfig writes a YAML config to a temp dir and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aadis.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func Test_Load_AppliesYAMLValues(t *testing.T) {
	path := writeTempConfig(t, `
storage:
  db_path: /data/documents.db
qdrant:
  host: qdrant.internal
  port: 6334
  collection: document_embeddings
`)
	t.Setenv("AADIS_DB", "")
	os.Unsetenv("AADIS_DB")
	t.Setenv("QDRANT_HOST", "")
	os.Unsetenv("QDRANT_HOST")
	t.Setenv("QDRANT_PORT", "")
	os.Unsetenv("QDRANT_PORT")

	loaded, err := Load(path, slog.Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != path {
		t.Errorf("want loaded path %q, got %q", path, loaded)
	}
	if got := os.Getenv("AADIS_DB"); got != "/data/documents.db" {
		t.Errorf("AADIS_DB: want /data/documents.db, got %q", got)
	}
	if got := os.Getenv("QDRANT_HOST"); got != "qdrant.internal" {
		t.Errorf("QDRANT_HOST: want qdrant.internal, got %q", got)
	}
	if got := os.Getenv("QDRANT_PORT"); got != "6334" {
		t.Errorf("QDRANT_PORT: want 6334, got %q", got)
	}
}

func Test_Load_EnvVarsWinOverYAML(t *testing.T) {
	path := writeTempConfig(t, `
qdrant:
  host: from-yaml
`)
	t.Setenv("QDRANT_HOST", "from-env")

	if _, err := Load(path, slog.Default()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("QDRANT_HOST"); got != "from-env" {
		t.Errorf("env should win: want from-env, got %q", got)
	}
}

func Test_Load_MissingExplicitFileIsNotAnError(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), slog.Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != "" {
		t.Errorf("want empty loaded path, got %q", loaded)
	}
}

func Test_Load_MalformedYAMLFails(t *testing.T) {
	path := writeTempConfig(t, "qdrant: [not a map")
	if _, err := Load(path, slog.Default()); err == nil {
		t.Fatal("want parse error for malformed YAML, got nil")
	}
}
