package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
)

var ErrEmptyCountry = errors.New("lookup returned no country")

// IPInfo queries the ipinfo.io country endpoint. The http.Client is shared,
// so one IPInfo serves every request goroutine.
type IPInfo struct {
	hc       *http.Client
	endpoint string
	token    string
}

func NewIPInfo(hc *http.Client, endpoint, token string) *IPInfo {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &IPInfo{hc: hc, endpoint: strings.TrimRight(endpoint, "/"), token: token}
}

// Country issues GET {endpoint}/{ip}/country?token=... and returns the
// trimmed body, e.g. "US".
func (c *IPInfo) Country(ctx context.Context, ip netip.Addr) (string, error) {
	u := fmt.Sprintf("%s/%s/country?token=%s", c.endpoint, ip.String(), url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build ipinfo request: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("ipinfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("read ipinfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ipinfo status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	country := strings.TrimSpace(string(body))
	if country == "" || country == "undefined" {
		return "", ErrEmptyCountry
	}
	return country, nil
}
