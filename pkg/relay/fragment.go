package relay

import (
	"strconv"
	"strings"
)

// ParseSlideFragment extracts the slide index from the fragment suffix of an
// embed src URL ("https://host/embed#4" -> 4). A missing or unparsable
// fragment defaults to slide 0.
func ParseSlideFragment(src string) int {
	i := strings.LastIndex(src, "#")
	if i < 0 {
		return 0
	}

	n, err := strconv.Atoi(src[i+1:])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseHash extracts the slide index from a URL hash ("#4" or "4").
// Malformed hashes fall back to slide 0.
func ParseHash(hash string) int {
	hash = strings.TrimPrefix(strings.TrimSpace(hash), "#")
	if hash == "" {
		return 0
	}

	n, err := strconv.Atoi(hash)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
