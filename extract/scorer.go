package extract

import (
	"strings"

	"github.com/datawoven/webharvest/dom"
)

// Candidate is a scored subtree considered as a possible main-content
// region. Candidates are ephemeral: produced and discarded within a single
// extraction call.
type Candidate struct {
	Node dom.Node

	// Text is the candidate's block text (newlines preserved).
	Text string

	WordCount     int
	SentenceCount int
	AvgSentence   float64
	LinkCount     int
	LinkDensity   float64
	Structured    bool

	Score float64
}

// Weights holds the scoring constants. The exact numbers are tunable; the
// relative ordering of bonuses and penalties is what matters.
type Weights struct {
	WordWeight        float64 // per word
	SentenceWeight    float64 // per sentence
	MidSentenceBonus  float64 // avg sentence length > 8 words
	LongSentenceBonus float64 // avg sentence length > 15 words
	ParagraphBonus    float64 // has paragraph-like lines
	StructureBonus    float64 // more than 2 non-empty child blocks
	PositiveHintBonus float64 // content-ish class/id
	LinkDensityWeight float64 // multiplied by link density, subtracted
	NegativeHintPen   float64 // sidebar/nav-ish class/id
	HighLinkPen       float64 // link density > 0.3
	FewSentencesPen   float64 // fewer than 3 sentences
	ShortWordsPen     float64 // over half the words under 4 chars
	ListPen           float64 // >10 lines averaging under 30 chars
	LegalPen          float64 // >3 legal/cookie keywords

	// MinCandidateWords is the floor below which a subtree is not
	// considered at all.
	MinCandidateWords int
}

// DefaultWeights returns the tuned scoring constants.
func DefaultWeights() Weights {
	return Weights{
		WordWeight:        0.5,
		SentenceWeight:    10,
		MidSentenceBonus:  50,
		LongSentenceBonus: 100,
		ParagraphBonus:    100,
		StructureBonus:    30,
		PositiveHintBonus: 50,
		LinkDensityWeight: 200,
		NegativeHintPen:   150,
		HighLinkPen:       100,
		FewSentencesPen:   50,
		ShortWordsPen:     30,
		ListPen:           200,
		LegalPen:          300,
		MinCandidateWords: 50,
	}
}

// positiveHints in class/id attributes suggest main content.
var positiveHints = []string{
	"content", "main", "article", "post", "entry", "story",
	"body", "text", "description", "paragraph",
}

// negativeHints in class/id attributes suggest boilerplate.
var negativeHints = []string{
	"sidebar", "related", "resources", "widget", "aside",
	"recommended", "popular", "recent", "menu", "nav",
	"footer", "header", "ad", "banner",
}

// legalKeywords flag cookie/consent/legal notice text.
var legalKeywords = []string{
	"cookie", "privacy", "consent", "agree", "domain",
	"terms", "legal", "gdpr", "preferences",
}

// skippedTags never become candidates.
var skippedTags = map[string]bool{
	"script": true, "style": true, "meta": true, "link": true,
	"noscript": true, "svg": true, "path": true, "button": true,
	"input": true, "form": true, "html": true, "head": true,
	"a": true, "br": true,
}

// Scorer ranks DOM subtrees by article-content likelihood using content
// patterns rather than tag names, so custom web-component tags score the
// same as plain divs. Deterministic given identical input.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score computes the composite content score for a single element.
func (sc *Scorer) Score(node dom.Node) float64 {
	c := sc.evaluate(node)
	if c == nil {
		return 0
	}
	return c.Score
}

// BestOf scores every eligible subtree under root and returns the winner,
// or nil when no subtree holds enough text to qualify. Ties break toward
// the larger word count.
func (sc *Scorer) BestOf(root dom.Node) *Candidate {
	var best *Candidate
	root.DescendantsMatching(func(node dom.Node) bool {
		if skippedTags[node.TagName()] {
			return false
		}
		c := sc.evaluate(node)
		if c == nil {
			return false
		}
		if best == nil || c.Score > best.Score ||
			(c.Score == best.Score && c.WordCount > best.WordCount) {
			best = c
		}
		return false
	})
	return best
}

// evaluate computes the candidate metrics and composite score for one node.
// Returns nil when the node holds too little text to be a candidate.
func (sc *Scorer) evaluate(node dom.Node) *Candidate {
	text := dom.BlockText(node)
	words := strings.Fields(text)
	if len(words) < sc.weights.MinCandidateWords {
		return nil
	}

	c := &Candidate{
		Node:      node,
		Text:      text,
		WordCount: len(words),
	}

	sentences := splitSentences(text)
	c.SentenceCount = len(sentences)
	if c.SentenceCount > 0 {
		total := 0
		for _, s := range sentences {
			total += len(strings.Fields(s))
		}
		c.AvgSentence = float64(total) / float64(c.SentenceCount)
	}

	// Anchor-like descendants: anything carrying an href, whatever the tag.
	links := node.DescendantsMatching(func(n dom.Node) bool {
		_, ok := n.Attr("href")
		return ok
	})
	c.LinkCount = len(links)
	c.LinkDensity = float64(c.LinkCount) / float64(max(c.WordCount, 1))

	// Structural richness: more than 2 non-empty child blocks.
	nonEmpty := 0
	for _, child := range node.Children() {
		if strings.TrimSpace(child.Text()) != "" {
			nonEmpty++
		}
	}
	c.Structured = nonEmpty > 2

	w := sc.weights
	score := float64(c.WordCount)*w.WordWeight + float64(c.SentenceCount)*w.SentenceWeight

	if c.AvgSentence > 8 {
		score += w.MidSentenceBonus
	}
	if c.AvgSentence > 15 {
		score += w.LongSentenceBonus
	}
	if hasParagraphContent(text) {
		score += w.ParagraphBonus
	}
	if c.Structured {
		score += w.StructureBonus
	}

	class, _ := node.Attr("class")
	id, _ := node.Attr("id")
	hints := strings.ToLower(class + " " + id)
	if containsAny(hints, positiveHints) {
		score += w.PositiveHintBonus
	}
	if containsAny(hints, negativeHints) {
		score -= w.NegativeHintPen
	}

	score -= c.LinkDensity * w.LinkDensityWeight
	if c.LinkDensity > 0.3 {
		score -= w.HighLinkPen
	}
	if c.SentenceCount < 3 {
		score -= w.FewSentencesPen
	}

	short := 0
	for _, word := range words {
		if len(word) < 4 {
			short++
		}
	}
	if float64(short)/float64(len(words)) > 0.5 {
		score -= w.ShortWordsPen
	}

	if isRepetitiveList(text) {
		score -= w.ListPen
	}
	if legalKeywordCount(text) > 3 {
		score -= w.LegalPen
	}

	c.Score = score
	return c
}

// splitSentences splits text on sentence terminators, discarding fragments
// under 20 characters.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); len(s) > 20 {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// hasParagraphContent reports whether any line looks like prose: over 50
// characters and carrying terminal punctuation.
func hasParagraphContent(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if len(line) > 50 && strings.ContainsAny(line, ".!?") {
			return true
		}
	}
	return false
}

// isRepetitiveList detects navigation/link-list shapes: more than 10 lines
// averaging under 30 characters.
func isRepetitiveList(text string) bool {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) <= 10 {
		return false
	}
	total := 0
	for _, l := range lines {
		total += len(l)
	}
	return float64(total)/float64(len(lines)) < 30
}

func legalKeywordCount(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range legalKeywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
