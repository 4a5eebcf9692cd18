package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"comparador/internal/validate"
)

// DatasetConfig declares one source. Exactly one of Path, URL or Table is set.
type DatasetConfig struct {
	Name   string `yaml:"name" validate:"required,max=128"`
	Tag    string `yaml:"tag" validate:"required,max=32"`
	Path   string `yaml:"path,omitempty" validate:"required_without_all=URL Table,excluded_with=URL Table"`
	URL    string `yaml:"url,omitempty" validate:"omitempty,url,excluded_with=Table"`
	Table  string `yaml:"table,omitempty" validate:"required_without_all=Path URL"`
	DSN    string `yaml:"dsn,omitempty"`
	Format string `yaml:"format,omitempty" validate:"omitempty,oneof=json csv"`
}

type manifest struct {
	Datasets []DatasetConfig `yaml:"datasets"`
}

// DefaultDatasets are the three bundled marketplace files.
func DefaultDatasets() []DatasetConfig {
	return []DatasetConfig{
		{Name: "productos_aliexpress.json", Tag: "aliexpress", Path: "productos_aliexpress.json"},
		{Name: "productos_temu.json", Tag: "temu", Path: "productos_temu.json"},
		{Name: "productos_shopify.csv", Tag: "shopify", Path: "productos_shopify.csv"},
	}
}

// LoadDatasets reads the YAML manifest at path, expanding ${VAR} references
// from the environment. A missing manifest yields DefaultDatasets. Relative
// file paths resolve against dataDir.
func LoadDatasets(path, dataDir string) ([]DatasetConfig, error) {
	var sets []DatasetConfig
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	switch {
	case errors.Is(err, fs.ErrNotExist):
		sets = DefaultDatasets()
	case err != nil:
		return nil, fmt.Errorf("read datasets manifest: %w", err)
	default:
		var m manifest
		if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), &m); err != nil {
			return nil, fmt.Errorf("parse datasets manifest: %w", err)
		}
		sets = m.Datasets
	}

	for i := range sets {
		d := &sets[i]
		if err := validate.Struct(d); err != nil {
			return nil, fmt.Errorf("dataset %d (%q): %w", i, d.Name, err)
		}
		if d.Path != "" && !filepath.IsAbs(d.Path) && dataDir != "" {
			d.Path = filepath.Join(dataDir, d.Path)
		}
	}
	return sets, nil
}

// substituteEnvVars replaces ${VAR} with the value of VAR; unset variables
// become empty.
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			return content
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			return content
		}
		end += start
		content = content[:start] + os.Getenv(content[start+2:end]) + content[end+1:]
	}
}
