// Package geo provides best-effort geolocation enrichment for packet
// records. Lookups are advisory: the pipeline never depends on them
// succeeding, and a deployment without a geocoding backend simply runs
// without a locator.
package geo

import (
	"context"
	"errors"
	"time"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/models"
)

// ErrNotFound reports that the backend had no coordinates for the address.
// It is an expected outcome, distinct from transport failures.
var ErrNotFound = errors.New("geo: address not found")

// Locator resolves an address to coordinates.
type Locator interface {
	Lookup(ctx context.Context, address string) (models.Location, error)
}

// Config configures the enrichment service.
type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	Endpoint  string        `mapstructure:"endpoint"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// NewLocator builds a locator from config. Returns nil when enrichment is
// disabled; callers treat a nil locator as "skip enrichment".
func NewLocator(cfg Config) (Locator, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return newNominatimLocator(cfg)
}
