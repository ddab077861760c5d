package engine

import (
	"context"
	"net/netip"

	"github.com/rs/zerolog/log"
)

// Locator looks up the ISO country code of an address. Implementations must
// be safe for concurrent use; each call is one independent lookup.
type Locator interface {
	Country(ctx context.Context, ip netip.Addr) (string, error)
}

// RegionResolver answers Region rules. A nil Locator means geolocation is
// turned off and no Region rule can match.
type RegionResolver struct {
	loc Locator
}

func NewRegionResolver(loc Locator) *RegionResolver {
	return &RegionResolver{loc: loc}
}

// Resolve blocks until the lookup returns. Lookup failures are logged and
// count as a non-match; there is no retry and nothing is cached.
func (r *RegionResolver) Resolve(ctx context.Context, ip netip.Addr, expected string) bool {
	if r == nil || r.loc == nil {
		log.Warn().Str("country", expected).Msg("region rule skipped: geolocation disabled")
		return false
	}
	got, err := r.loc.Country(ctx, ip)
	if err != nil {
		log.Error().Err(err).Str("ip", ip.String()).Str("country", expected).Msg("geolocation lookup failed")
		return false
	}
	log.Debug().Str("ip", ip.String()).Str("got", got).Str("want", expected).Msg("region lookup")
	return got == expected
}
