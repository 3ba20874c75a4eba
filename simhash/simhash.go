// Package simhash computes 64-bit similarity fingerprints over text blocks.
// The extraction pipeline uses them as a cheap pre-filter: two paragraphs
// whose fingerprints are far apart cannot be near-duplicates, so the
// expensive string comparison is skipped.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// Fingerprint computes the SimHash of a text block over word-level tokens.
// Empty input maps to the zero fingerprint.
func Fingerprint(text string) uint64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	var vector [64]int
	for _, word := range words {
		h := fnv.New64a()
		h.Write([]byte(word))
		sum := h.Sum64()
		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i, v := range vector {
		if v > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within threshold bits of
// each other.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}
