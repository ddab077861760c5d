package engine

import "encoding/binary"

func matchExact(ip, rule [4]byte) bool {
	return ip == rule
}

func matchMasked(ip, rule, mask [4]byte) bool {
	for i := 0; i < 4; i++ {
		if ip[i]&mask[i] != rule[i]&mask[i] {
			return false
		}
	}
	return true
}

// matchCidr compares the top prefixLen bits. prefixLen must be in 0..32.
func matchCidr(ip, rule [4]byte, prefixLen uint8) bool {
	var mask uint32
	if prefixLen > 0 {
		mask = ^uint32(0) << (32 - prefixLen)
	}
	a := binary.BigEndian.Uint32(ip[:])
	b := binary.BigEndian.Uint32(rule[:])
	return a&mask == b&mask
}
