package engine

import "strings"

// ImageInfo is what a matched rule hands back to the HTTP layer.
// Kind says whether Value is a local file or a redirect target.
type ImageInfo struct {
	Kind  ImageKind
	Value string
}

type ImageKind int

const (
	ImagePath ImageKind = iota
	ImageURL
)

func (k ImageKind) String() string {
	if k == ImageURL {
		return "url"
	}
	return "path"
}

// Path builds a local file reference.
func Path(p string) ImageInfo { return ImageInfo{Kind: ImagePath, Value: p} }

// URL builds a redirect target.
func URL(u string) ImageInfo { return ImageInfo{Kind: ImageURL, Value: u} }

// ClassifyImage turns a configured string into a Path or a URL.
func ClassifyImage(raw string) ImageInfo {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return URL(raw)
	}
	return Path(raw)
}

// Rule is the closed set of traffic match rules. Only the types in this
// file implement it.
type Rule interface {
	kind() string
}

type Ipv4Exact struct{ Addr [4]byte }

type Ipv4Masked struct {
	Addr [4]byte
	Mask [4]byte
}

// Ipv4Cidr holds a prefix length in 0..32; Compile rejects anything else.
type Ipv4Cidr struct {
	Addr      [4]byte
	PrefixLen uint8
}

// Region matches on the ISO country code returned by the geolocation lookup.
type Region struct{ Country string }

type Ipv4Default struct{}

type Ipv6Default struct{}

type Default struct{}

func (Ipv4Exact) kind() string   { return "ipv4_exact" }
func (Ipv4Masked) kind() string  { return "ipv4_masked" }
func (Ipv4Cidr) kind() string    { return "ipv4_cidr" }
func (Region) kind() string      { return "region" }
func (Ipv4Default) kind() string { return "ipv4_default" }
func (Ipv6Default) kind() string { return "ipv6_default" }
func (Default) kind() string     { return "default" }

// Strategy picks the ImageInfo for a matched rule: a fixed image, or a
// uniform random pick over Images when Random is set. Images is never empty.
type Strategy struct {
	Random bool
	Images []ImageInfo
}

// FixToOne returns a strategy that always yields info.
func FixToOne(info ImageInfo) Strategy { return Strategy{Images: []ImageInfo{info}} }

// RandomOf returns a strategy choosing uniformly among images.
func RandomOf(images ...ImageInfo) Strategy { return Strategy{Random: true, Images: images} }

// TrafficMatcher pairs a rule with its selection strategy.
type TrafficMatcher struct {
	Rule     Rule
	Strategy Strategy
}

// TrafficMatcherList is evaluated in order; the first match wins.
type TrafficMatcherList []TrafficMatcher
