package geo

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/oschwald/geoip2-golang"
)

// MaxMind answers lookups from a local GeoLite2/DB-IP country database.
// The reader is safe for concurrent use.
type MaxMind struct {
	reader *geoip2.Reader
}

func OpenMaxMind(path string) (*MaxMind, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", path, err)
	}
	return &MaxMind{reader: r}, nil
}

func (m *MaxMind) Country(_ context.Context, ip netip.Addr) (string, error) {
	rec, err := m.reader.Country(net.IP(ip.AsSlice()))
	if err != nil {
		return "", fmt.Errorf("geoip lookup %s: %w", ip, err)
	}
	if rec.Country.IsoCode == "" {
		return "", fmt.Errorf("geoip lookup %s: %w", ip, ErrEmptyCountry)
	}
	return rec.Country.IsoCode, nil
}

func (m *MaxMind) Close() error {
	return m.reader.Close()
}
