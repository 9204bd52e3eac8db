package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for repolens.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis"`

	// Thresholds for smell detection
	Thresholds ThresholdConfig `koanf:"thresholds"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Snapshot store settings
	Store StoreConfig `koanf:"store"`

	// Disk cache for analysis results
	Cache CacheConfig `koanf:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// AnalysisConfig controls analysis defaults.
type AnalysisConfig struct {
	Branch         string `koanf:"branch"`
	Depth          int    `koanf:"depth"`
	MaxDepth       int    `koanf:"max_depth"`
	Sensitivity    string `koanf:"sensitivity"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
	Workers        int    `koanf:"workers"`
}

// ThresholdConfig defines smell and hotspot thresholds.
type ThresholdConfig struct {
	LongMethodLines   int     `koanf:"long_method_lines"`
	LongParameterList int     `koanf:"long_parameter_list"`
	DuplicateMinLines int     `koanf:"duplicate_min_lines"`
	NestingDepth      int     `koanf:"nesting_depth"`
	LargeClassMembers int     `koanf:"large_class_members"`
	HotspotFrequency  float64 `koanf:"hotspot_frequency"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns"`
	Extensions []string `koanf:"extensions"`
	Dirs       []string `koanf:"dirs"`
	Gitignore  bool     `koanf:"gitignore"`
	MaxFileKB  int      `koanf:"max_file_kb"` // 0 disables the size limit
}

// MaxFileBytes converts the configured file size limit to bytes.
func (e ExcludeConfig) MaxFileBytes() int64 {
	return int64(e.MaxFileKB) * 1024
}

// StoreConfig controls the in-memory snapshot store.
type StoreConfig struct {
	Capacity int `koanf:"capacity"`
}

// CacheConfig controls the on-disk result cache. An empty Dir resolves
// to repolens under the user cache directory.
type CacheConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Dir      string `koanf:"dir"`
	TTLHours int    `koanf:"ttl_hours"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Branch:         "main",
			Depth:          100,
			MaxDepth:       10000,
			Sensitivity:    "medium",
			TimeoutSeconds: 30,
			Workers:        0, // 0 means runtime.NumCPU
		},
		Thresholds: ThresholdConfig{
			LongMethodLines:   50,
			LongParameterList: 5,
			DuplicateMinLines: 6,
			NestingDepth:      4,
			LargeClassMembers: 20,
			HotspotFrequency:  0.8,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
			MaxFileKB: 1024,
		},
		Store: StoreConfig{
			Capacity: 64,
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTLHours: 24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"repolens.toml",
		"repolens.yaml",
		"repolens.yml",
		"repolens.json",
		".repolens.toml",
		".repolens.yaml",
		".repolens.yml",
		".repolens.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			cfg, err := Load(name)
			if err == nil {
				return cfg
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
