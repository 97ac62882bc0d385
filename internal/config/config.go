package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Config is the root configuration for the extractor.
type Config struct {
	General GeneralConfig `json:"general"`
	Store   StoreConfig   `json:"store"`
	Filter  FilterConfig  `json:"filter"`
	Window  WindowConfig  `json:"window"`
	Report  ReportConfig  `json:"report"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel"`
	SelfName string `json:"selfName"` // display name for messages sent by self
}

type StoreConfig struct {
	DBPath string `json:"dbPath"` // message-history SQLite file, opened read-only
}

type FilterConfig struct {
	Keyword          string   `json:"keyword"`
	CutoffDate       string   `json:"cutoffDate"` // YYYY-MM-DD, local time
	MaxLength        int      `json:"maxLength"`  // trimmed rune cap for a real nomination
	ReactionPrefixes []string `json:"reactionPrefixes"`
	MetaPatterns     []string `json:"metaPatterns"` // regexes rejecting meta-commentary
}

type WindowConfig struct {
	ThreadLookback int `json:"threadLookback"` // flat messages fetched before a thread originator
	FlatLookback   int `json:"flatLookback"`   // messages fetched before a non-threaded nomination
}

type ReportConfig struct {
	JSONPath      string   `json:"jsonPath"`
	MarkdownPath  string   `json:"markdownPath"`
	NameMapPath   string   `json:"nameMapPath,omitempty"` // YAML sender name-map for the remap pass
	ExcludedChats []string `json:"excludedChats,omitempty"`
}

// Cutoff parses the configured cutoff date in local time.
func (c *Config) Cutoff() (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", c.Filter.CutoffDate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid filter.cutoffDate %q: %w", c.Filter.CutoffDate, err)
	}
	return t, nil
}

// DefaultConfigDir returns the default config directory (~/.joty).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".joty"
	}
	return filepath.Join(home, ".joty")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.Store.DBPath = ExpandPath(cfg.Store.DBPath)
	cfg.Report.JSONPath = ExpandPath(cfg.Report.JSONPath)
	cfg.Report.MarkdownPath = ExpandPath(cfg.Report.MarkdownPath)
	cfg.Report.NameMapPath = ExpandPath(cfg.Report.NameMapPath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Store.DBPath == "" {
		errs = append(errs, "store.dbPath must be set")
	}
	if strings.TrimSpace(cfg.Filter.Keyword) == "" {
		errs = append(errs, "filter.keyword must be set")
	}
	if _, err := cfg.Cutoff(); err != nil {
		errs = append(errs, fmt.Sprintf("filter.cutoffDate must be YYYY-MM-DD, got %q", cfg.Filter.CutoffDate))
	}
	if cfg.Filter.MaxLength < 1 {
		errs = append(errs, "filter.maxLength must be >= 1")
	}
	for _, pattern := range cfg.Filter.MetaPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Sprintf("filter.metaPatterns: invalid regex %q", pattern))
		}
	}
	if cfg.Window.ThreadLookback < 1 {
		errs = append(errs, "window.threadLookback must be >= 1")
	}
	if cfg.Window.FlatLookback < 1 {
		errs = append(errs, "window.flatLookback must be >= 1")
	}
	if cfg.Report.JSONPath == "" {
		errs = append(errs, "report.jsonPath must be set")
	}
	if cfg.Report.MarkdownPath == "" {
		errs = append(errs, "report.markdownPath must be set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
