package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/kelseyhightower/envconfig"

	"github.com/dshills/gitdump/internal/log"
)

// AppName names the config directory.
const AppName = "git-dump-commit"

// EnvPrefix is the prefix of environment overrides (GITDUMP_OUTPUT_DIR, ...).
const EnvPrefix = "GITDUMP"

// MinFilenameLength is the shortest file name limit that still leaves room
// for the sequence number, one slug character and the extension.
const MinFilenameLength = 16

// Config represents the git-dump-commit configuration.
type Config struct {
	OutputDir         string `json:"outputDir"`
	UnreleasedDir     string `json:"unreleasedDir"`
	NoMerges          bool   `json:"noMerges"`
	NestPrereleases   bool   `json:"nestPrereleases"`
	FilenameMaxLength int    `json:"filenameMaxLength"`
	Format            string `json:"format"`
	LogFormat         string `json:"logFormat"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		OutputDir:         "DUMP-COMMIT",
		UnreleasedDir:     "unreleased",
		FilenameMaxLength: 64,
		Format:            "text",
		LogFormat:         "text",
	}
}

// Validate checks values that cannot be caught by JSON or env decoding.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("outputDir must not be empty")
	}
	if c.UnreleasedDir == "" || c.UnreleasedDir == "." || c.UnreleasedDir == ".." ||
		filepath.Base(c.UnreleasedDir) != c.UnreleasedDir {
		return fmt.Errorf("unreleasedDir must be a single directory name, got %q", c.UnreleasedDir)
	}
	if c.FilenameMaxLength != 0 && c.FilenameMaxLength < MinFilenameLength {
		return fmt.Errorf("filenameMaxLength must be 0 (unlimited) or at least %d, got %d", MinFilenameLength, c.FilenameMaxLength)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q (want text or json)", c.Format)
	}
	if err := log.ValidateFormat(c.LogFormat); err != nil {
		return fmt.Errorf("logFormat: %w", err)
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppName), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName), nil
		}
		return filepath.Join(home, "AppData", "Roaming", AppName), nil
	default:
		return filepath.Join(home, ".config", AppName), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only flags the user set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.OutputDir != "" {
		dst.OutputDir = src.OutputDir
	}
	if src.UnreleasedDir != "" {
		dst.UnreleasedDir = src.UnreleasedDir
	}
	if src.FilenameMaxLength > 0 {
		dst.FilenameMaxLength = src.FilenameMaxLength
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
	}
	// Both booleans default to false, so a file can only switch them on.
	dst.NoMerges = src.NoMerges || dst.NoMerges
	dst.NestPrereleases = src.NestPrereleases || dst.NestPrereleases
}

// envConfig mirrors Config for environment decoding. Pointer fields stay nil
// when the variable is unset.
type envConfig struct {
	OutputDir         *string `envconfig:"OUTPUT_DIR"`
	UnreleasedDir     *string `envconfig:"UNRELEASED_DIR"`
	NoMerges          *bool   `envconfig:"NO_MERGES"`
	NestPrereleases   *bool   `envconfig:"NEST_PRERELEASES"`
	FilenameMaxLength *int    `envconfig:"FILENAME_MAX_LENGTH"`
	Format            *string `envconfig:"FORMAT"`
	LogFormat         *string `envconfig:"LOG_FORMAT"`
}

func mergeEnv(cfg *Config) error {
	var env envConfig
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.OutputDir != nil && *env.OutputDir != "" {
		cfg.OutputDir = *env.OutputDir
	}
	if env.UnreleasedDir != nil && *env.UnreleasedDir != "" {
		cfg.UnreleasedDir = *env.UnreleasedDir
	}
	if env.NoMerges != nil {
		cfg.NoMerges = *env.NoMerges
	}
	if env.NestPrereleases != nil {
		cfg.NestPrereleases = *env.NestPrereleases
	}
	if env.FilenameMaxLength != nil {
		cfg.FilenameMaxLength = *env.FilenameMaxLength
	}
	if env.Format != nil && *env.Format != "" {
		cfg.Format = *env.Format
	}
	if env.LogFormat != nil && *env.LogFormat != "" {
		cfg.LogFormat = *env.LogFormat
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the settable config keys in display order.
func Keys() []string {
	return []string{
		"outputDir",
		"unreleasedDir",
		"noMerges",
		"nestPrereleases",
		"filenameMaxLength",
		"format",
		"logFormat",
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "outputDir":
		cfg.OutputDir = value
	case "unreleasedDir":
		cfg.UnreleasedDir = value
	case "noMerges":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("noMerges must be a boolean: %w", err)
		}
		cfg.NoMerges = b
	case "nestPrereleases":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("nestPrereleases must be a boolean: %w", err)
		}
		cfg.NestPrereleases = b
	case "filenameMaxLength":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("filenameMaxLength must be an integer: %w", err)
		}
		cfg.FilenameMaxLength = n
	case "format":
		cfg.Format = value
	case "logFormat":
		cfg.LogFormat = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
