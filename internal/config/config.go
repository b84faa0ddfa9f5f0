// Package config loads the satellite catalog and cache settings from TOML.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Image discovery strategies.
const (
	StrategyCandidates = "candidates"
	StrategyListing    = "listing"
)

// Server contains HTTP serving and refresh-loop settings.
type Server struct {
	Addr           string `toml:"addr"`
	RefreshMinutes int    `toml:"refresh_minutes"`
}

// RefreshInterval returns the time between resolution passes.
func (s Server) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshMinutes) * time.Minute
}

// Cache contains element-set cache settings.
type Cache struct {
	DBPath     string `toml:"db_path"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// TTL returns the configured entry lifetime.
func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Satellite describes one tracked satellite: how to identify it in element
// text, where its imagery lives, and the hand-tuned full-disk field of view.
type Satellite struct {
	ID             string   `toml:"id"`
	Aliases        []string `toml:"aliases"`
	ElementsURL    string   `toml:"elements_url"`
	FieldOfViewDeg float64  `toml:"field_of_view_deg"`
	// FOVTrimDeg fine-adjusts the class constant for one satellite.
	FOVTrimDeg float64 `toml:"fov_trim_deg"`

	ImageStrategy  string   `toml:"image_strategy"`
	ImageURLs      []string `toml:"image_urls"`
	ListingURL     string   `toml:"listing_url"`
	ListingPattern string   `toml:"listing_pattern"`

	// Compiled from ListingPattern during Validate.
	ListingRe *regexp.Regexp `toml:"-"`
}

// FOV returns the authoritative field of view in degrees: the hand-tuned
// class constant plus the per-satellite trim.
func (s Satellite) FOV() float64 {
	return s.FieldOfViewDeg + s.FOVTrimDeg
}

// Config is the root configuration document.
type Config struct {
	Server     Server      `toml:"server"`
	Cache      Cache       `toml:"cache"`
	Satellites []Satellite `toml:"satellites"`
}

// Load reads and validates the TOML file at path. An empty path loads the
// embedded sample catalog.
func Load(path string) (*Config, error) {
	text := sampleConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		text = string(data)
	}

	cfg, err := Parse(text)
	if err != nil && path != "" {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, err
}

// Parse decodes and validates a TOML document.
func Parse(text string) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal([]byte(text), &cfg); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies defaults and rejects incoherent catalogs.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RefreshMinutes <= 0 {
		c.Server.RefreshMinutes = 10
	}
	if c.Cache.TTLMinutes <= 0 {
		c.Cache.TTLMinutes = 120
	}
	if c.Cache.DBPath == "" {
		c.Cache.DBPath = defaultDBPath()
	}

	if len(c.Satellites) == 0 {
		return errors.New("no satellites configured")
	}

	seen := make(map[string]bool, len(c.Satellites))
	for i := range c.Satellites {
		sat := &c.Satellites[i]
		if sat.ID == "" {
			return fmt.Errorf("satellite %d: missing id", i)
		}
		if seen[sat.ID] {
			return fmt.Errorf("satellite %q: duplicate id", sat.ID)
		}
		seen[sat.ID] = true

		if len(sat.Aliases) == 0 {
			return fmt.Errorf("satellite %q: no aliases to match against element text", sat.ID)
		}
		if sat.ElementsURL == "" {
			return fmt.Errorf("satellite %q: missing elements_url", sat.ID)
		}
		if sat.FieldOfViewDeg <= 0 {
			return fmt.Errorf("satellite %q: field_of_view_deg must be positive", sat.ID)
		}

		switch sat.ImageStrategy {
		case StrategyCandidates:
			if len(sat.ImageURLs) == 0 {
				return fmt.Errorf("satellite %q: candidates strategy needs image_urls", sat.ID)
			}
		case StrategyListing:
			if sat.ListingURL == "" || sat.ListingPattern == "" {
				return fmt.Errorf("satellite %q: listing strategy needs listing_url and listing_pattern", sat.ID)
			}
			re, err := regexp.Compile(sat.ListingPattern)
			if err != nil {
				return fmt.Errorf("satellite %q: listing_pattern: %w", sat.ID, err)
			}
			sat.ListingRe = re
		default:
			return fmt.Errorf("satellite %q: unknown image_strategy %q", sat.ID, sat.ImageStrategy)
		}
	}

	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "skybox-elements.db"
	}
	return filepath.Join(home, ".cache", "skybox", "elements.db")
}
