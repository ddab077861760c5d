package api

import (
	"errors"
	"net/http"
	"net/netip"
	"strings"
)

var errNoClientIP = errors.New("no usable client address")

// clientIP picks the best-guess client address: CF-Connecting-IP, then the
// first X-Forwarded-For entry, then the peer address. IPv4-mapped IPv6
// addresses are reduced to IPv4 and zones are dropped. RemoteAddr must be the
// real peer; no middleware may rewrite it from other headers.
func clientIP(r *http.Request) (netip.Addr, error) {
	if v := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); v != "" {
		return parseAddr(v)
	}
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		first, _, _ := strings.Cut(v, ",")
		return parseAddr(strings.TrimSpace(first))
	}
	if r.RemoteAddr == "" {
		return netip.Addr{}, errNoClientIP
	}
	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return ap.Addr().WithZone("").Unmap(), nil
	}
	return parseAddr(r.RemoteAddr)
}

func parseAddr(s string) (netip.Addr, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, errors.Join(errNoClientIP, err)
	}
	return ip.WithZone("").Unmap(), nil
}
