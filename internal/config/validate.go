package config

import (
	"errors"
	"fmt"
)

var knownLists = map[string]struct{}{
	"popular":     {},
	"trending":    {},
	"top_rated":   {},
	"now_playing": {},
	"upcoming":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateTrailers(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelsync/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY or edit %s (create with 'reelsync config init')", defaultPath)
	}
	for _, list := range c.TMDB.Lists {
		if _, ok := knownLists[list]; !ok {
			return fmt.Errorf("tmdb.lists: unknown listing %q", list)
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Name == "" {
		return errors.New("database.name must be set (or DB_NAME)")
	}
	if c.Database.User == "" {
		return errors.New("database.user must be set (or DB_USER)")
	}
	return nil
}

func (c *Config) validateTrailers() error {
	if !c.Trailers.Enabled {
		return nil
	}
	if c.Trailers.CRF > 51 {
		return fmt.Errorf("trailers.crf must be at most 51, got %d", c.Trailers.CRF)
	}
	switch c.Trailers.Preset {
	case "ultrafast", "superfast", "veryfast", "faster", "fast", "medium", "slow", "slower", "veryslow":
	default:
		return fmt.Errorf("trailers.preset: unknown x264 preset %q", c.Trailers.Preset)
	}
	return nil
}
