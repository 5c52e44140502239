package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"mirc/internal/layout"
)

const manifestName = "mirc.toml"

const noManifestMessage = "no mirc.toml found\nplease specify the bundle explicitly, e.g.:\n  mirc build path/to/crate.mirb"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
	// defined records which [build] keys the file sets, so flags only
	// override what the user left out.
	defined map[string]bool
}

type projectConfig struct {
	Package packageConfig `toml:"package"`
	Build   buildConfig   `toml:"build"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type buildConfig struct {
	Bundle   string `toml:"bundle"`
	OutDir   string `toml:"out_dir"`
	Jobs     int    `toml:"jobs"`
	Target   string `toml:"target"`
	Comments bool   `toml:"comments"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

func loadProjectConfig(path string) (*projectManifest, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if !meta.IsDefined("build", "bundle") || strings.TrimSpace(cfg.Build.Bundle) == "" {
		return nil, fmt.Errorf("%s: missing [build].bundle", path)
	}
	if cfg.Build.Jobs < 0 {
		return nil, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if meta.IsDefined("build", "target") {
		if _, err := layout.TargetByName(cfg.Build.Target); err != nil {
			return nil, fmt.Errorf("%s: [build].target: %w", path, err)
		}
	}
	m := &projectManifest{
		Path:    path,
		Root:    filepath.Dir(path),
		Config:  cfg,
		defined: make(map[string]bool),
	}
	for _, key := range []string{"out_dir", "jobs", "target", "comments"} {
		m.defined[key] = meta.IsDefined("build", key)
	}
	return m, nil
}

// resolve makes a manifest-relative path absolute. Without a manifest the
// path is returned as given.
func (m *projectManifest) resolve(rel string) string {
	if m == nil || rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Root, filepath.FromSlash(rel))
}

func (m *projectManifest) isDefined(key string) bool {
	return m != nil && m.defined[key]
}
