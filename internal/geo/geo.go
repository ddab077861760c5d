// Package geo provides the country lookups used by region rules.
package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"

	"traffic-image-server/internal/config"
	"traffic-image-server/internal/engine"
	"traffic-image-server/internal/observability"
)

var ErrNoCredentials = errors.New("geolocation enabled without credentials")

// New builds the configured Locator. It returns nil, nil when the feature
// is turned off; region rules then never match.
func New(cfg config.Config) (engine.Locator, error) {
	if !cfg.Geo.Enabled {
		return nil, nil
	}
	switch cfg.Geo.Provider {
	case "ipinfo":
		if cfg.Geo.Token == "" {
			return nil, fmt.Errorf("%w: geo.token is empty", ErrNoCredentials)
		}
		hc := &http.Client{Timeout: cfg.GeoTimeout()}
		return metered("ipinfo", NewIPInfo(hc, cfg.Geo.Endpoint, cfg.Geo.Token)), nil
	case "maxmind":
		if cfg.Geo.DBPath == "" {
			return nil, fmt.Errorf("%w: geo.db_path is empty", ErrNoCredentials)
		}
		db, err := OpenMaxMind(cfg.Geo.DBPath)
		if err != nil {
			return nil, err
		}
		return metered("maxmind", db), nil
	}
	return nil, fmt.Errorf("unknown geo provider %q", cfg.Geo.Provider)
}

type meteredLocator struct {
	provider string
	next     engine.Locator
}

func metered(provider string, next engine.Locator) engine.Locator {
	return &meteredLocator{provider: provider, next: next}
}

func (m *meteredLocator) Country(ctx context.Context, ip netip.Addr) (string, error) {
	c, err := m.next.Country(ctx, ip)
	result := "ok"
	if err != nil {
		result = "error"
	}
	observability.GeoLookups.WithLabelValues(m.provider, result).Inc()
	return c, err
}

// Close releases resources held by loc, if any.
func Close(loc engine.Locator) error {
	if m, ok := loc.(*meteredLocator); ok {
		loc = m.next
	}
	if c, ok := loc.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
