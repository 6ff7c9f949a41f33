package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey   string   `toml:"api_key"`
	BaseURL  string   `toml:"base_url"`
	Language string   `toml:"language"`
	Region   string   `toml:"region"`
	Pages    int      `toml:"pages"`
	Lists    []string `toml:"lists"`
}

// Database contains the catalog store coordinates.
type Database struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	Schema          string `toml:"schema"`
	Table           string `toml:"table"`
	ConnectAttempts int    `toml:"connect_attempts"`
	ConnectDelay    int    `toml:"connect_delay"`
}

// Trailers contains trailer materialization settings.
type Trailers struct {
	Enabled          bool   `toml:"enabled"`
	Workers          int    `toml:"workers"`
	FFmpegBinary     string `toml:"ffmpeg_binary"`
	TranscodeTimeout int    `toml:"transcode_timeout"`
	CRF              int    `toml:"crf"`
	Preset           string `toml:"preset"`
	ScaleThreshold   int    `toml:"scale_threshold"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelsync.
type Config struct {
	Paths    Paths    `toml:"paths"`
	TMDB     TMDB     `toml:"tmdb"`
	Database Database `toml:"database"`
	Trailers Trailers `toml:"trailers"`
	Logging  Logging  `toml:"logging"`
}

// envOverrides maps the environment surface onto config fields. Environment
// values win over file values so credentials never need to live on disk.
type envOverrides struct {
	TMDBAPIKey string `env:"TMDB_API_KEY"`
	DBHost     string `env:"DB_HOST"`
	DBPort     int    `env:"DB_PORT"`
	DBName     string `env:"DB_NAME"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, "", false, fmt.Errorf("parse environment: %w", err)
	}
	cfg.applyEnv(overrides)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnv(overrides envOverrides) {
	if v := strings.TrimSpace(overrides.TMDBAPIKey); v != "" {
		c.TMDB.APIKey = v
	}
	if v := strings.TrimSpace(overrides.DBHost); v != "" {
		c.Database.Host = v
	}
	if overrides.DBPort > 0 {
		c.Database.Port = overrides.DBPort
	}
	if v := strings.TrimSpace(overrides.DBName); v != "" {
		c.Database.Name = v
	}
	if v := strings.TrimSpace(overrides.DBUser); v != "" {
		c.Database.User = v
	}
	if v := strings.TrimSpace(overrides.DBPassword); v != "" {
		c.Database.Password = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// TrailersDir returns the final trailer asset directory.
func (c *Config) TrailersDir() string {
	return filepath.Join(c.Paths.DataDir, "trailers")
}

// TempDir returns the scratch directory used during materialization.
func (c *Config) TempDir() string {
	return filepath.Join(c.Paths.DataDir, "temp")
}

// LockPath returns the run lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "reelsync.lock")
}

// EnsureDirectories creates the directories the pipeline writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.TrailersDir(), c.TempDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DSN renders the Postgres connection string for the catalog store.
// Credentials are URL-escaped so reserved characters in a password survive.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:   c.Database.Name,
	}
	return u.String()
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
