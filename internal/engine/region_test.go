package engine

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubLocator struct {
	mu      sync.Mutex
	country string
	err     error
	calls   []netip.Addr
}

func (s *stubLocator) Country(_ context.Context, ip netip.Addr) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ip)
	return s.country, s.err
}

func (s *stubLocator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestRegionResolver(t *testing.T) {
	ip := netip.MustParseAddr("8.8.8.8")

	tests := []struct {
		name     string
		loc      *stubLocator
		expected string
		want     bool
	}{
		{"same country", &stubLocator{country: "US"}, "US", true},
		{"other country", &stubLocator{country: "DE"}, "US", false},
		{"case sensitive", &stubLocator{country: "us"}, "US", false},
		{"lookup error", &stubLocator{country: "US", err: errors.New("boom")}, "US", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegionResolver(tt.loc)
			assert.Equal(t, tt.want, r.Resolve(context.Background(), ip, tt.expected))
			assert.Equal(t, 1, tt.loc.callCount())
		})
	}
}

func TestRegionResolver_DisabledNeverMatches(t *testing.T) {
	r := NewRegionResolver(nil)
	for _, s := range []string{"1.2.3.4", "10.0.0.1", "2001:db8::1", "::1"} {
		for _, c := range []string{"US", "CN", "", "DE"} {
			assert.False(t, r.Resolve(context.Background(), netip.MustParseAddr(s), c))
		}
	}

	var nilResolver *RegionResolver
	assert.False(t, nilResolver.Resolve(context.Background(), netip.MustParseAddr("1.2.3.4"), "US"))
}
