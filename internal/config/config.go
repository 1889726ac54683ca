package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"gistcal/internal/tz"
)

// GistConfig holds the GitHub gist coordinates used for remote storage.
type GistConfig struct {
	// Token is a GitHub personal access token with gist scope.
	Token string `yaml:"token" json:"token"`
	// ID is the gist identifier holding database.json.
	ID string `yaml:"id" json:"id"`
}

// ParserConfig points at the quick-add parsing service.
type ParserConfig struct {
	// URL is the parse endpoint. Empty disables quick add.
	URL string `yaml:"url" json:"url"`
	// Token, if set, is sent as a bearer token.
	Token string `yaml:"token,omitempty" json:"token,omitempty"`
}

// SyncConfig tunes the background save worker.
type SyncConfig struct {
	// FlushCron is a cron-style schedule for periodic flushes
	// (e.g. "*/15 * * * *"). Empty disables the schedule.
	FlushCron string `yaml:"flush" json:"flush"`
	// DebounceSeconds is the quiet period after an edit before the
	// document is saved.
	DebounceSeconds int `yaml:"debounce_seconds" json:"debounce_seconds"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as the canonical display zone
	// (e.g. "America/New_York").
	Timezone string `yaml:"timezone" json:"timezone"`

	// Theme controls the UI theme. Supported values:
	//   - "system" (default)
	//   - "light"
	//   - "dark"
	Theme string `yaml:"theme" json:"theme"`

	// WeekStart controls which weekday is treated as the first day of
	// the week in calendar views. Supported values:
	//   - "monday" (default)
	//   - "sunday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// LogLevel sets the zerolog level (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level" json:"log_level"`

	// MirrorDir is the directory for the local document mirror.
	MirrorDir string `yaml:"mirror_dir" json:"mirror_dir"`

	// Gist configures remote storage. Both fields empty means the
	// application runs local-only.
	Gist GistConfig `yaml:"gist" json:"gist"`

	// Parser configures the quick-add parsing service.
	Parser ParserConfig `yaml:"parser" json:"parser"`

	// Sync configures the background save worker.
	Sync SyncConfig `yaml:"sync" json:"sync"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    "127.0.0.1:8080",
		Timezone:  "UTC",
		Theme:     "system",
		WeekStart: "monday",
		LogLevel:  "info",
		MirrorDir: defaultMirrorDir(),
		Sync: SyncConfig{
			FlushCron:       "*/15 * * * *",
			DebounceSeconds: 2,
		},
	}
}

func defaultMirrorDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".gistcal"
	}
	return filepath.Join(base, "gistcal")
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	switch c.Theme {
	case "light", "dark", "system":
	default:
		c.Theme = "system"
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = "monday"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MirrorDir == "" {
		c.MirrorDir = defaultMirrorDir()
	}
	if c.Sync.FlushCron == "" {
		c.Sync.FlushCron = "*/15 * * * *"
	}
	if c.Sync.DebounceSeconds <= 0 {
		c.Sync.DebounceSeconds = 2
	}
}

// ApplyEnv overlays settings from environment variables. Secrets are
// usually delivered this way rather than written into the YAML file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GISTCAL_TOKEN"); v != "" {
		c.Gist.Token = v
	}
	if v := os.Getenv("GISTCAL_GIST_ID"); v != "" {
		c.Gist.ID = v
	}
	if v := os.Getenv("GISTCAL_PARSER_URL"); v != "" {
		c.Parser.URL = v
	}
	if v := os.Getenv("GISTCAL_PARSER_TOKEN"); v != "" {
		c.Parser.Token = v
	}
}

// Location resolves the configured timezone, falling back to UTC when
// the name is unknown.
func (c *Config) Location() *time.Location {
	loc, err := tz.Resolve(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Debounce returns the configured debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Sync.DebounceSeconds) * time.Second
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".gistcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
