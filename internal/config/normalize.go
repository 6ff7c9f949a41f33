package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeDatabase()
	c.normalizeTrailers()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	c.TMDB.Region = strings.TrimSpace(c.TMDB.Region)
	if c.TMDB.Pages <= 0 {
		c.TMDB.Pages = defaultTMDBPages
	}
	lists := make([]string, 0, len(c.TMDB.Lists))
	for _, list := range c.TMDB.Lists {
		if trimmed := strings.TrimSpace(list); trimmed != "" {
			lists = append(lists, trimmed)
		}
	}
	if len(lists) == 0 {
		lists = defaultLists()
	}
	c.TMDB.Lists = lists
}

func (c *Config) normalizeDatabase() {
	c.Database.Host = strings.TrimSpace(c.Database.Host)
	if c.Database.Host == "" {
		c.Database.Host = defaultDBHost
	}
	if c.Database.Port <= 0 {
		c.Database.Port = defaultDBPort
	}
	c.Database.Schema = strings.TrimSpace(c.Database.Schema)
	if c.Database.Schema == "" {
		c.Database.Schema = defaultDBSchema
	}
	c.Database.Table = strings.TrimSpace(c.Database.Table)
	if c.Database.Table == "" {
		c.Database.Table = defaultDBTable
	}
	if c.Database.ConnectAttempts <= 0 {
		c.Database.ConnectAttempts = defaultConnectAttempts
	}
	if c.Database.ConnectDelay <= 0 {
		c.Database.ConnectDelay = defaultConnectDelay
	}
}

func (c *Config) normalizeTrailers() {
	if c.Trailers.Workers <= 0 {
		c.Trailers.Workers = defaultTrailerWorkers
	}
	c.Trailers.FFmpegBinary = strings.TrimSpace(c.Trailers.FFmpegBinary)
	if c.Trailers.FFmpegBinary == "" {
		c.Trailers.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Trailers.TranscodeTimeout <= 0 {
		c.Trailers.TranscodeTimeout = defaultTranscodeTimeout
	}
	if c.Trailers.CRF <= 0 {
		c.Trailers.CRF = defaultTranscodeCRF
	}
	c.Trailers.Preset = strings.TrimSpace(c.Trailers.Preset)
	if c.Trailers.Preset == "" {
		c.Trailers.Preset = defaultTranscodePreset
	}
	if c.Trailers.ScaleThreshold <= 0 {
		c.Trailers.ScaleThreshold = defaultScaleThreshold
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
