package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifestResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	body := "sources:\n  - term: golang\n    path: dumps/golang\n  - term: rust\n    path: /data/rust\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(m.Sources))
	}
	if got, want := m.Sources[0].Path, filepath.Join(dir, "dumps/golang"); got != want {
		t.Fatalf("relative path: got %q want %q", got, want)
	}
	if m.Sources[1].Path != "/data/rust" {
		t.Fatalf("absolute path rewritten: %q", m.Sources[1].Path)
	}
}

func TestParseManifestRejectsIncompleteSources(t *testing.T) {
	cases := map[string]string{
		"empty":      "sources: []\n",
		"no term":    "sources:\n  - path: a\n",
		"no path":    "sources:\n  - term: a\n",
		"not yaml":   "sources: [\n",
		"blank term": "sources:\n  - term: '  '\n    path: a\n",
	}
	for name, body := range cases {
		if _, err := ParseManifest([]byte(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
