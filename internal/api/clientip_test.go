package api

import (
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
		wantErr bool
	}{
		{"peer v4", nil, "203.0.113.9:5555", "203.0.113.9", false},
		{"peer v6", nil, "[2001:db8::7]:5555", "2001:db8::7", false},
		{"peer bare ip", nil, "198.51.100.1", "198.51.100.1", false},
		{"peer mapped v4", nil, "[::ffff:10.0.0.5]:80", "10.0.0.5", false},
		{"peer zone dropped", nil, "[fe80::1%eth0]:80", "fe80::1", false},
		{"header zone dropped", map[string]string{"CF-Connecting-IP": "fe80::2%eth0"}, "10.0.0.1:1", "fe80::2", false},
		{"x-real-ip ignored", map[string]string{"X-Real-IP": "10.0.0.5"}, "127.0.0.1:9", "127.0.0.1", false},
		{"cloudflare first", map[string]string{"CF-Connecting-IP": "1.2.3.4", "X-Forwarded-For": "5.6.7.8"}, "10.0.0.1:1", "1.2.3.4", false},
		{"xff first entry", map[string]string{"X-Forwarded-For": "5.6.7.8, 10.0.0.2"}, "10.0.0.1:1", "5.6.7.8", false},
		{"xff v6", map[string]string{"X-Forwarded-For": "2001:db8::2"}, "10.0.0.1:1", "2001:db8::2", false},
		{"bad header", map[string]string{"CF-Connecting-IP": "not-an-ip"}, "10.0.0.1:1", "", true},
		{"no peer", nil, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/img", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			got, err := clientIP(r)
			if tt.wantErr {
				assert.ErrorIs(t, err, errNoClientIP)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, netip.MustParseAddr(tt.want), got)
		})
	}
}
