package engine

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"traffic-image-server/internal/storage"
)

var (
	ErrUnknownRole   = errors.New("unknown rule role")
	ErrBadAddress    = errors.New("invalid ipv4 address")
	ErrBadPrefix     = errors.New("cidr prefix length must be 0-32")
	ErrEmptyCountry  = errors.New("region rule needs a country code")
	ErrNoImages      = errors.New("rule has no images")
	ErrFixedImages   = errors.New("fixed strategy takes exactly one image")
	ErrEmptyImage    = errors.New("empty image reference")
	ErrUnknownSelect = errors.New("unknown image strategy")
)

// Compile validates raw rule records and converts them into the matcher
// list, keeping their order. Every problem is reported with its rule index.
func Compile(rows []storage.RuleRow) (TrafficMatcherList, error) {
	out := make(TrafficMatcherList, 0, len(rows))
	var errs []error
	for i, row := range rows {
		m, err := compileRow(row)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %d (%s): %w", i, row.Role, err))
			continue
		}
		out = append(out, m)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func compileRow(row storage.RuleRow) (TrafficMatcher, error) {
	rule, err := compileRule(row)
	if err != nil {
		return TrafficMatcher{}, err
	}
	strategy, err := compileStrategy(row.Strategy, row.Images)
	if err != nil {
		return TrafficMatcher{}, err
	}
	return TrafficMatcher{Rule: rule, Strategy: strategy}, nil
}

func compileRule(row storage.RuleRow) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(row.Role)) {
	case "ipv4_exact":
		a, err := parseIPv4(row.Addr)
		if err != nil {
			return nil, err
		}
		return Ipv4Exact{Addr: a}, nil
	case "ipv4_masked":
		a, err := parseIPv4(row.Addr)
		if err != nil {
			return nil, err
		}
		m, err := parseIPv4(row.Mask)
		if err != nil {
			return nil, fmt.Errorf("mask: %w", err)
		}
		return Ipv4Masked{Addr: a, Mask: m}, nil
	case "ipv4_cidr":
		addr, bits, found := strings.Cut(strings.TrimSpace(row.Addr), "/")
		if !found {
			return nil, fmt.Errorf("%w: %q has no /prefix", ErrBadPrefix, row.Addr)
		}
		a, err := parseIPv4(addr)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(bits)
		if err != nil || n < 0 || n > 32 {
			return nil, fmt.Errorf("%w: got %q", ErrBadPrefix, bits)
		}
		return Ipv4Cidr{Addr: a, PrefixLen: uint8(n)}, nil
	case "region":
		c := strings.TrimSpace(row.Country)
		if c == "" {
			return nil, ErrEmptyCountry
		}
		return Region{Country: c}, nil
	case "ipv4_default":
		return Ipv4Default{}, nil
	case "ipv6_default":
		return Ipv6Default{}, nil
	case "default":
		return Default{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRole, row.Role)
}

func compileStrategy(mode string, raw []string) (Strategy, error) {
	images := make([]ImageInfo, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			return Strategy{}, ErrEmptyImage
		}
		images = append(images, ClassifyImage(r))
	}

	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "fixed":
		if len(images) != 1 {
			return Strategy{}, fmt.Errorf("%w: got %d", ErrFixedImages, len(images))
		}
		return FixToOne(images[0]), nil
	case "random":
		if len(images) == 0 {
			return Strategy{}, ErrNoImages
		}
		return RandomOf(images...), nil
	}
	return Strategy{}, fmt.Errorf("%w: %q", ErrUnknownSelect, mode)
}

func parseIPv4(s string) ([4]byte, error) {
	ip, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil || !ip.Is4() {
		return [4]byte{}, fmt.Errorf("%w: %q", ErrBadAddress, s)
	}
	return ip.As4(), nil
}
