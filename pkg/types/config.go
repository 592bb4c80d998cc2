package types

import (
	"errors"
	"time"
)

// Delete display policies. Hidden drops deleted rows from the projected
// preview; strikethrough keeps them and flags them for the renderer.
const (
	DeleteDisplayHidden        = "hidden"
	DeleteDisplayStrikethrough = "strikethrough"
)

// validDeleteDisplays is the set of recognized delete display policies.
var validDeleteDisplays = map[string]bool{
	DeleteDisplayHidden:        true,
	DeleteDisplayStrikethrough: true,
}

// DefaultCacheTTL is the metadata cache expiry used when Config.CacheTTL
// is zero.
const DefaultCacheTTL = 5 * time.Minute

// Config validation errors.
var (
	ErrInvalidDeleteDisplay = errors.New("unknown delete display policy")
	ErrInvalidCacheTTL      = errors.New("cache TTL must not be negative")
)

// Config holds the tunables shared by the overlay engine, the metadata
// cache, and the changelog backup store. The zero value is usable after
// Validate has applied nothing; call Normalize (or rely on the consuming
// constructors) to fill defaults.
type Config struct {
	// DataDir is where the SQLite changelog backup store keeps its
	// database file. Empty means the current directory.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// CacheTTL is the metadata cache expiry. Zero selects DefaultCacheTTL.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// DeleteDisplay selects how projected previews present rows with a
	// pending delete. Empty selects strikethrough.
	DeleteDisplay string `json:"delete_display" yaml:"delete_display"`
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}
	if c.DeleteDisplay != "" && !validDeleteDisplays[c.DeleteDisplay] {
		return ErrInvalidDeleteDisplay
	}
	return nil
}

// Normalize returns a copy of the config with defaults filled in.
func (c Config) Normalize() Config {
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.DeleteDisplay == "" {
		c.DeleteDisplay = DeleteDisplayStrikethrough
	}
	return c
}
