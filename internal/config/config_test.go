package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.OutputDir != "DUMP-COMMIT" {
		t.Errorf("Default outputDir = %q, want %q", cfg.OutputDir, "DUMP-COMMIT")
	}
	if cfg.UnreleasedDir != "unreleased" {
		t.Errorf("Default unreleasedDir = %q, want %q", cfg.UnreleasedDir, "unreleased")
	}
	if cfg.FilenameMaxLength != 64 {
		t.Errorf("Default filenameMaxLength = %d, want 64", cfg.FilenameMaxLength)
	}
	if cfg.Format != "text" {
		t.Errorf("Default format = %q, want %q", cfg.Format, "text")
	}
	if cfg.NoMerges || cfg.NestPrereleases {
		t.Error("Default booleans should be false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty output", func(c *Config) { c.OutputDir = "" }},
		{"nested unreleased", func(c *Config) { c.UnreleasedDir = "a/b" }},
		{"dot unreleased", func(c *Config) { c.UnreleasedDir = ".." }},
		{"short filenames", func(c *Config) { c.FilenameMaxLength = 8 }},
		{"bad format", func(c *Config) { c.Format = "yaml" }},
		{"bad log format", func(c *Config) { c.LogFormat = "pretty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg := Default()
	cfg.FilenameMaxLength = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("filenameMaxLength 0 means unlimited, got error: %v", err)
	}

	cfg = Default()
	cfg.LogFormat = "JSON"
	if err := cfg.Validate(); err != nil {
		t.Errorf("logFormat is case-insensitive, got error: %v", err)
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("GITDUMP_OUTPUT_DIR", "/tmp/patches")
	t.Setenv("GITDUMP_UNRELEASED_DIR", "next")
	t.Setenv("GITDUMP_NO_MERGES", "true")
	t.Setenv("GITDUMP_NEST_PRERELEASES", "1")
	t.Setenv("GITDUMP_FILENAME_MAX_LENGTH", "80")
	t.Setenv("GITDUMP_FORMAT", "json")
	t.Setenv("GITDUMP_LOG_FORMAT", "json")

	cfg := Default()
	if err := mergeEnv(&cfg); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}

	if cfg.OutputDir != "/tmp/patches" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "/tmp/patches")
	}
	if cfg.UnreleasedDir != "next" {
		t.Errorf("UnreleasedDir = %q, want %q", cfg.UnreleasedDir, "next")
	}
	if !cfg.NoMerges {
		t.Error("NoMerges should be true")
	}
	if !cfg.NestPrereleases {
		t.Error("NestPrereleases should be true")
	}
	if cfg.FilenameMaxLength != 80 {
		t.Errorf("FilenameMaxLength = %d, want 80", cfg.FilenameMaxLength)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q", cfg.Format, "json")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "json")
	}
}

func TestMergeEnv_Unset(t *testing.T) {
	cfg := Default()
	cfg.NoMerges = true
	if err := mergeEnv(&cfg); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}
	if !cfg.NoMerges {
		t.Error("unset environment must not reset NoMerges")
	}
	if cfg.OutputDir != "DUMP-COMMIT" {
		t.Errorf("OutputDir = %q, want default", cfg.OutputDir)
	}
}

func TestMergeEnv_CanDisableBool(t *testing.T) {
	t.Setenv("GITDUMP_NO_MERGES", "false")

	cfg := Default()
	cfg.NoMerges = true
	if err := mergeEnv(&cfg); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}
	if cfg.NoMerges {
		t.Error("GITDUMP_NO_MERGES=false should switch NoMerges off")
	}
}

func TestMergeEnv_InvalidFilenameMaxLength(t *testing.T) {
	t.Setenv("GITDUMP_FILENAME_MAX_LENGTH", "notanumber")

	cfg := Default()
	if err := mergeEnv(&cfg); err == nil {
		t.Error("Expected error for invalid GITDUMP_FILENAME_MAX_LENGTH")
	}
}

func TestMergeEnv_InvalidBool(t *testing.T) {
	t.Setenv("GITDUMP_NO_MERGES", "maybe")

	cfg := Default()
	if err := mergeEnv(&cfg); err == nil {
		t.Error("Expected error for invalid GITDUMP_NO_MERGES")
	}
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	overrides := map[string]string{
		"outputDir":       "out",
		"format":          "json",
		"noMerges":        "true",
		"nestPrereleases": "true",
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}

	if cfg.OutputDir != "out" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "out")
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q", cfg.Format, "json")
	}
	if !cfg.NoMerges || !cfg.NestPrereleases {
		t.Error("boolean overrides not applied")
	}
}

func TestMergeOverrides_Nil(t *testing.T) {
	cfg := Default()
	if err := mergeOverrides(&cfg, nil); err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("config changed with nil overrides: %+v", cfg)
	}
}

func TestMergeOverrides_EmptyValueIgnored(t *testing.T) {
	cfg := Default()
	if err := mergeOverrides(&cfg, map[string]string{"outputDir": ""}); err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}
	if cfg.OutputDir != "DUMP-COMMIT" {
		t.Errorf("OutputDir = %q, want default", cfg.OutputDir)
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value string
	}{
		{"outputDir", "patches"},
		{"unreleasedDir", "HEAD"},
		{"noMerges", "true"},
		{"nestPrereleases", "yes"},
		{"filenameMaxLength", "100"},
		{"format", "json"},
		{"logFormat", "json"},
	}

	for _, tt := range tests {
		err := SetField(&cfg, tt.key, tt.value)
		if tt.value == "yes" {
			if err == nil {
				t.Errorf("SetField(%q, %q) should reject non-boolean", tt.key, tt.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("SetField(%q, %q) error: %v", tt.key, tt.value, err)
		}
	}

	if cfg.OutputDir != "patches" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "patches")
	}
	if cfg.UnreleasedDir != "HEAD" {
		t.Errorf("UnreleasedDir = %q, want %q", cfg.UnreleasedDir, "HEAD")
	}
	if !cfg.NoMerges {
		t.Error("NoMerges should be true")
	}
	if cfg.FilenameMaxLength != 100 {
		t.Errorf("FilenameMaxLength = %d, want 100", cfg.FilenameMaxLength)
	}
}

func TestSetField_UnknownKey(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "nonexistent", "value"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestSetField_InvalidInt(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "filenameMaxLength", "notanumber"); err == nil {
		t.Error("Expected error for non-integer value")
	}
}

func TestKeys_AllSettable(t *testing.T) {
	values := map[string]string{
		"noMerges":          "false",
		"nestPrereleases":   "false",
		"filenameMaxLength": "64",
	}
	for _, key := range Keys() {
		cfg := Default()
		value, ok := values[key]
		if !ok {
			value = "text"
		}
		if err := SetField(&cfg, key, value); err != nil {
			t.Errorf("Keys() lists %q but SetField rejects it: %v", key, err)
		}
	}
}

func TestMergeFile_AllFields(t *testing.T) {
	dst := Default()
	src := Config{
		OutputDir:         "/srv/patches",
		UnreleasedDir:     "pending",
		NoMerges:          true,
		NestPrereleases:   true,
		FilenameMaxLength: 72,
		Format:            "json",
		LogFormat:         "json",
	}
	mergeFile(&dst, src)

	if dst != src {
		t.Errorf("mergeFile = %+v, want %+v", dst, src)
	}
}

func TestMergeFile_EmptyFile(t *testing.T) {
	dst := Default()
	mergeFile(&dst, Config{})
	if dst != Default() {
		t.Errorf("empty file changed config: %+v", dst)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-test", "git-dump-commit") {
		t.Errorf("ConfigDir = %q, want %q", dir, "/tmp/xdg-test/git-dump-commit")
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath error: %v", err)
	}
	want := filepath.Join("/tmp/xdg-test", "git-dump-commit", "config.json")
	if path != want {
		t.Errorf("ConfigPath = %q, want %q", path, want)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.OutputDir = "patches"
	cfg.NoMerges = true
	cfg.FilenameMaxLength = 50

	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded != cfg {
		t.Errorf("LoadFile = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadFile_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	// Should return zero config, not defaults
	if cfg != (Config{}) {
		t.Errorf("missing file should give zero config, got %+v", cfg)
	}
}

func TestLoadFile_Corrupt(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	dir := filepath.Join(tmpDir, "git-dump-commit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(); err == nil {
		t.Error("Expected error for corrupt config file")
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	file := Default()
	file.OutputDir = "from-file"
	file.UnreleasedDir = "from-file"
	file.Format = "json"
	if err := Save(file); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	t.Setenv("GITDUMP_OUTPUT_DIR", "from-env")
	t.Setenv("GITDUMP_FORMAT", "text")

	cfg, err := Load(map[string]string{"outputDir": "from-flag"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.OutputDir != "from-flag" {
		t.Errorf("OutputDir = %q, want flag value", cfg.OutputDir)
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %q, want env value", cfg.Format)
	}
	if cfg.UnreleasedDir != "from-file" {
		t.Errorf("UnreleasedDir = %q, want file value", cfg.UnreleasedDir)
	}
	if cfg.FilenameMaxLength != 64 {
		t.Errorf("FilenameMaxLength = %d, want 64 (default)", cfg.FilenameMaxLength)
	}
}

func TestLoad_InvalidOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := Load(map[string]string{"format": "xml"}); err == nil {
		t.Error("Expected validation error for unknown format")
	}
}
