package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect_FixToOne(t *testing.T) {
	s := FixToOne(Path("a.png"))
	for i := 0; i < 100; i++ {
		assert.Equal(t, Path("a.png"), Select(s))
	}
}

func TestSelect_RandomVisitsAllEvenly(t *testing.T) {
	images := []ImageInfo{Path("a.png"), Path("b.png"), URL("https://x/c.png"), Path("d.png")}
	s := RandomOf(images...)

	const draws = 40000
	counts := map[ImageInfo]int{}
	for i := 0; i < draws; i++ {
		counts[Select(s)]++
	}

	assert.Len(t, counts, len(images))
	expected := draws / len(images)
	for _, img := range images {
		// generous bound; a fair source stays well within 10%
		assert.InDelta(t, expected, counts[img], float64(expected)/10, "image %v", img)
	}
}

func TestSelect_RandomSingle(t *testing.T) {
	assert.Equal(t, URL("https://x"), Select(RandomOf(URL("https://x"))))
}
