// Package dsconfig implements DirSchema's layered configuration: built-in
// defaults, overridden by an on-disk file (YAML or JSON), overridden by
// environment variables — the same precedence order as the teacher's
// config.LoadLayeredConfig, thinned from a generic schema-validated catalog
// merge down to a fixed struct, since DirSchema's configuration surface is
// small and entirely known up front.
package dsconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/dirschema/meta"
)

// Config is DirSchema's full configuration surface: metadata convention
// defaults, the plugin/validator-reference resolution fields the original
// exposed as CLI flags, and logging settings.
type Config struct {
	MetaPathPrefix string `yaml:"meta_path_prefix" json:"meta_path_prefix"`
	MetaPathSuffix string `yaml:"meta_path_suffix" json:"meta_path_suffix"`
	MetaFilePrefix string `yaml:"meta_file_prefix" json:"meta_file_prefix"`
	MetaFileSuffix string `yaml:"meta_file_suffix" json:"meta_file_suffix"`

	PluginBaseDir  string `yaml:"plugin_base_dir" json:"plugin_base_dir"`
	RelativePrefix string `yaml:"relative_prefix" json:"relative_prefix"`
	LocalBaseDir   string `yaml:"local_base_dir" json:"local_base_dir"`

	LogLevel   string `yaml:"log_level" json:"log_level"`
	LogProfile string `yaml:"log_profile" json:"log_profile"`
	LogFile    string `yaml:"log_file" json:"log_file"`
}

// Default returns the built-in configuration: the pinned metadata
// convention (a "_meta.json" sidecar, no path affixes) and an "info"-level
// console logger.
func Default() Config {
	return Config{
		MetaFileSuffix: "_meta.json",
		LogLevel:       "info",
		LogProfile:     "console",
	}
}

// Convention converts the metadata-convention fields into a meta.Convention.
func (c Config) Convention() meta.Convention {
	return meta.Convention{
		PathPrefix: c.MetaPathPrefix,
		PathSuffix: c.MetaPathSuffix,
		FilePrefix: c.MetaFilePrefix,
		FileSuffix: c.MetaFileSuffix,
	}
}

// Load builds a Config by layering Default(), then the first existing file
// among explicitPath (if non-empty) or SearchPaths(appName), then
// environment variables. A missing file at every searched location is not
// an error — Load falls back to Default() with env overrides applied.
func Load(appName, explicitPath string) (Config, error) {
	cfg := Default()

	path := explicitPath
	if path == "" {
		for _, candidate := range SearchPaths(appName) {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		overlay, err := loadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("dsconfig: load %s: %w", path, err)
		}
		cfg = mergeOverlay(cfg, overlay)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from XDG search paths or an explicit caller argument
	if err != nil {
		return Config{}, err
	}

	var overlay Config
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &overlay); err != nil {
			return Config{}, fmt.Errorf("parse json: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
	return overlay, nil
}

// mergeOverlay applies each non-empty overlay field onto base.
func mergeOverlay(base, overlay Config) Config {
	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&base.MetaPathPrefix, overlay.MetaPathPrefix)
	merge(&base.MetaPathSuffix, overlay.MetaPathSuffix)
	merge(&base.MetaFilePrefix, overlay.MetaFilePrefix)
	merge(&base.MetaFileSuffix, overlay.MetaFileSuffix)
	merge(&base.PluginBaseDir, overlay.PluginBaseDir)
	merge(&base.RelativePrefix, overlay.RelativePrefix)
	merge(&base.LocalBaseDir, overlay.LocalBaseDir)
	merge(&base.LogLevel, overlay.LogLevel)
	merge(&base.LogProfile, overlay.LogProfile)
	merge(&base.LogFile, overlay.LogFile)
	return base
}

// envPrefix is the environment variable prefix every override uses, e.g.
// DIRSCHEMA_RELATIVE_PREFIX.
const envPrefix = "DIRSCHEMA_"

func applyEnv(cfg *Config) {
	fields := []struct {
		suffix string
		dst    *string
	}{
		{"META_PATH_PREFIX", &cfg.MetaPathPrefix},
		{"META_PATH_SUFFIX", &cfg.MetaPathSuffix},
		{"META_FILE_PREFIX", &cfg.MetaFilePrefix},
		{"META_FILE_SUFFIX", &cfg.MetaFileSuffix},
		{"PLUGIN_BASE_DIR", &cfg.PluginBaseDir},
		{"RELATIVE_PREFIX", &cfg.RelativePrefix},
		{"LOCAL_BASE_DIR", &cfg.LocalBaseDir},
		{"LOG_LEVEL", &cfg.LogLevel},
		{"LOG_PROFILE", &cfg.LogProfile},
		{"LOG_FILE", &cfg.LogFile},
	}
	for _, f := range fields {
		if v := os.Getenv(envPrefix + f.suffix); v != "" {
			*f.dst = v
		}
	}
}
