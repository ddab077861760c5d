package engine

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"github.com/rs/zerolog/log"

	"traffic-image-server/internal/storage"
)

// MatchEngine owns the ordered rule list. It is read-only after
// construction and safe to share between request goroutines.
type MatchEngine struct {
	rules  TrafficMatcherList
	region *RegionResolver
}

func NewEngine(rules TrafficMatcherList, region *RegionResolver) *MatchEngine {
	return &MatchEngine{rules: rules, region: region}
}

// Build loads raw records from src, compiles them and returns an engine.
// Any invalid record fails the whole build.
func Build(ctx context.Context, src storage.RuleSource, region *RegionResolver) (*MatchEngine, error) {
	rows, err := src.LoadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	rules, err := Compile(rows)
	if err != nil {
		return nil, err
	}
	log.Info().Int("rules", len(rules)).Str("source", src.Name()).Msg("rules compiled")
	return NewEngine(rules, region), nil
}

// Len reports the number of rules.
func (e *MatchEngine) Len() int { return len(e.rules) }

// Match evaluates the rules in order and returns the image chosen by the
// first matching rule. ok is false when no rule matches.
func (e *MatchEngine) Match(ctx context.Context, ip netip.Addr) (info ImageInfo, kind string, ok bool) {
	for _, m := range e.rules {
		if e.matches(ctx, ip, m.Rule) {
			return Select(m.Strategy), m.Rule.kind(), true
		}
	}
	return ImageInfo{}, "", false
}

func (e *MatchEngine) matches(ctx context.Context, ip netip.Addr, rule Rule) bool {
	if ip.Is4() {
		v4 := ip.As4()
		switch r := rule.(type) {
		case Ipv4Exact:
			return matchExact(v4, r.Addr)
		case Ipv4Masked:
			return matchMasked(v4, r.Addr, r.Mask)
		case Ipv4Cidr:
			return matchCidr(v4, r.Addr, r.PrefixLen)
		case Region:
			return e.region.Resolve(ctx, ip, r.Country)
		case Ipv4Default, Default:
			return true
		case Ipv6Default:
			return false
		}
		return false
	}

	if !ip.Is6() {
		return false
	}
	switch r := rule.(type) {
	case Ipv4Exact, Ipv4Masked, Ipv4Cidr, Ipv4Default:
		return false
	case Region:
		return e.region.Resolve(ctx, ip, r.Country)
	case Ipv6Default, Default:
		return true
	}
	return false
}

// String lists the rules in evaluation order, one per line.
func (e *MatchEngine) String() string {
	var b strings.Builder
	for i, m := range e.rules {
		mode := "fixed"
		if m.Strategy.Random {
			mode = "random"
		}
		fmt.Fprintf(&b, "%d %s %s %d image(s)\n", i, m.Rule.kind(), mode, len(m.Strategy.Images))
	}
	return b.String()
}
