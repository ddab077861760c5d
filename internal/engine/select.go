package engine

import "math/rand"

// Select returns the image for a matched rule.
func Select(s Strategy) ImageInfo {
	if !s.Random {
		return s.Images[0]
	}
	return s.Images[rand.Intn(len(s.Images))]
}
