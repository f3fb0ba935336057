// Package config loads, saves and defaults the gemaudit service configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultModel is used when the config does not name a model.
	DefaultModel = "gemini-1.5-flash"
	// DefaultMaxCostPerAnalysis is the advisory USD cap per analysis.
	DefaultMaxCostPerAnalysis = 1.0
	// DefaultReportDirectory is where archived reports are written.
	DefaultReportDirectory = "./gemini_reports"

	apiKeyEnv = "GEMINI_API_KEY"
)

var (
	// ErrIO indicates the config file could not be read or written.
	ErrIO = errors.New("config: io")
	// ErrParse indicates the config file is not a valid config record.
	ErrParse = errors.New("config: parse")
	// ErrSerialize indicates the config record could not be encoded.
	ErrSerialize = errors.New("config: serialize")
)

// ServiceConfig is the persisted Gemini service configuration.
// Every key is optional in the file; missing keys take their defaults.
type ServiceConfig struct {
	APIKey             string  `toml:"api_key,omitempty"`
	DefaultModel       string  `toml:"default_model"`
	MaxCostPerAnalysis float64 `toml:"max_cost_per_analysis"`
	AutoSaveReports    bool    `toml:"auto_save_reports"`
	ReportDirectory    string  `toml:"report_directory"`
}

// Default returns the default configuration.
func Default() ServiceConfig {
	return ServiceConfig{
		DefaultModel:       DefaultModel,
		MaxCostPerAnalysis: DefaultMaxCostPerAnalysis,
		AutoSaveReports:    true,
		ReportDirectory:    DefaultReportDirectory,
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gemaudit")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gemaudit")
}

// Path returns the full path to the default config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// LoadFromFile reads and decodes the config at path. Keys absent from the
// file keep their default values; unknown keys are ignored.
func LoadFromFile(path string) (ServiceConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // path is user-chosen config location
	if err != nil {
		return cfg, fmt.Errorf("%w: reading %s: %w", ErrIO, path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}

	return cfg, nil
}

// SaveToFile writes cfg to path, replacing any existing file.
func SaveToFile(cfg ServiceConfig, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("%w: encoding config: %w", ErrSerialize, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: creating config dir: %w", ErrIO, err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrIO, path, err)
	}
	return nil
}

// Resolution is the outcome of a fail-open load. Err is nil when the file
// was loaded; otherwise Config holds the defaults and Err says why.
type Resolution struct {
	Config ServiceConfig
	Path   string
	Err    error
}

// Defaulted reports whether the defaults were substituted for the file.
func (r Resolution) Defaulted() bool {
	return r.Err != nil
}

// Missing reports whether the defaults were used because no file exists.
func (r Resolution) Missing() bool {
	return r.Err != nil && errors.Is(r.Err, os.ErrNotExist)
}

// Resolve loads path, falling back to Default on any failure.
func Resolve(path string) Resolution {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return Resolution{Config: Default(), Path: path, Err: err}
	}
	return Resolution{Config: cfg, Path: path}
}

// LoadOrDefault returns the config at path, or the defaults if it is
// missing, unreadable or malformed. It never fails; use Resolve or
// LoadFromFile when the reason matters.
func LoadOrDefault(path string) ServiceConfig {
	return Resolve(path).Config
}

// UnknownKeys returns keys present in the file at path that do not map to a
// ServiceConfig field, sorted.
func UnknownKeys(path string) ([]string, error) {
	var cfg ServiceConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}

	undecoded := md.Undecoded()
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys, nil
}

// APIKey returns the API key from env var or config, in that order.
func APIKey(cfg ServiceConfig) string {
	if key := os.Getenv(apiKeyEnv); key != "" {
		return key
	}
	return cfg.APIKey
}

// Model returns the configured model, or DefaultModel if none is set.
func Model(cfg ServiceConfig) string {
	if cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return DefaultModel
}
