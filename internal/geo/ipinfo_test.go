package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-image-server/internal/config"
)

func TestIPInfo_Country(t *testing.T) {
	var gotPath, gotToken string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("token")
		_, _ = w.Write([]byte("US\n"))
	}))
	defer ts.Close()

	c := NewIPInfo(ts.Client(), ts.URL+"/", "secret")
	country, err := c.Country(context.Background(), netip.MustParseAddr("8.8.8.8"))
	require.NoError(t, err)
	assert.Equal(t, "US", country)
	assert.Equal(t, "/8.8.8.8/country", gotPath)
	assert.Equal(t, "secret", gotToken)

	_, err = c.Country(context.Background(), netip.MustParseAddr("2001:db8::1"))
	require.NoError(t, err)
	assert.Equal(t, "/2001:db8::1/country", gotPath)
}

func TestIPInfo_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"forbidden", http.StatusForbidden, "bad token"},
		{"rate limited", http.StatusTooManyRequests, ""},
		{"empty body", http.StatusOK, "  "},
		{"undefined", http.StatusOK, "undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := NewIPInfo(ts.Client(), ts.URL, "t").Country(context.Background(), netip.MustParseAddr("1.1.1.1"))
			assert.Error(t, err)
		})
	}
}

func TestIPInfo_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewIPInfo(nil, url, "t").Country(context.Background(), netip.MustParseAddr("1.1.1.1"))
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	var cfg config.Config
	loc, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, loc)

	cfg.Geo.Enabled = true
	cfg.Geo.Provider = "ipinfo"
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrNoCredentials)

	cfg.Geo.Provider = "maxmind"
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrNoCredentials)

	cfg.Geo.DBPath = "/does/not/exist.mmdb"
	_, err = New(cfg)
	assert.Error(t, err)

	cfg.Geo.Provider = "carrier-pigeon"
	_, err = New(cfg)
	assert.Error(t, err)

	cfg.Geo.Provider = "ipinfo"
	cfg.Geo.Token = "tok"
	cfg.Geo.Endpoint = "https://ipinfo.io"
	loc, err = New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, loc)
	assert.NoError(t, Close(loc))
}

func TestMetered(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("DE"))
	}))
	defer ts.Close()

	loc := metered("test", NewIPInfo(ts.Client(), ts.URL, "t"))
	country, err := loc.Country(context.Background(), netip.MustParseAddr("1.1.1.1"))
	require.NoError(t, err)
	assert.Equal(t, "DE", country)
	assert.NoError(t, Close(loc))
}
