package extract

import (
	"strings"

	"github.com/xrash/smetrics"

	"github.com/datawoven/webharvest/simhash"
)

// prefilterDistance is the SimHash Hamming cutoff for the fuzzy dedupe
// pre-filter. Blocks further apart than this cannot clear a high
// Jaro-Winkler similarity, so the string comparison is skipped.
const prefilterDistance = 24

// DedupeExact removes exactly repeated paragraph blocks, preserving order.
// Blocks shorter than minLen characters are dropped outright; they are
// artifacts of DOM walking rather than content.
func DedupeExact(text string, minLen int) string {
	seen := make(map[string]struct{})
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if len(para) < minLen {
			continue
		}
		key := strings.ToLower(normalizeWS(para))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, para)
	}
	return strings.Join(out, "\n\n")
}

// DedupeFuzzy removes near-duplicate paragraph blocks at or above the given
// similarity, catching responsive mobile/desktop variants of the same text
// that differ only in punctuation or spacing. Blocks under minLen characters
// are kept as-is; they are unlikely to be duplicates worth the comparison.
func DedupeFuzzy(text string, minLen int, similarity float64) string {
	var canon []string
	var prints []uint64
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) < minLen {
			out = append(out, para)
			continue
		}
		n := strings.ToLower(normalizeWS(para))
		fp := simhash.Fingerprint(n)
		dup := false
		for i, c := range canon {
			if !simhash.Similar(fp, prints[i], prefilterDistance) {
				continue
			}
			if smetrics.JaroWinkler(n, c, 0.7, 4) >= similarity {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		canon = append(canon, n)
		prints = append(prints, fp)
		out = append(out, para)
	}
	return strings.Join(out, "\n\n")
}
