package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest lists the sources one load command ingests.
//
//	sources:
//	  - term: golang
//	    path: ./dumps/golang
type Manifest struct {
	Sources []ManifestSource `yaml:"sources"`
}

type ManifestSource struct {
	Term string `yaml:"term"`
	Path string `yaml:"path"`
}

// LoadManifest reads and validates a manifest. Relative paths resolve
// against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i := range m.Sources {
		if !filepath.IsAbs(m.Sources[i].Path) {
			m.Sources[i].Path = filepath.Join(base, m.Sources[i].Path)
		}
	}
	return m, nil
}

func ParseManifest(b []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("manifest has no sources")
	}
	for i, s := range m.Sources {
		s.Term = strings.TrimSpace(s.Term)
		s.Path = strings.TrimSpace(s.Path)
		if s.Term == "" || s.Path == "" {
			return nil, fmt.Errorf("source %d: term and path are required", i)
		}
		m.Sources[i] = s
	}
	return &m, nil
}
