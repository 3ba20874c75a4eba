package models

import "strings"

// Quality is the discrete classification of extracted content, derived
// solely from word count.
type Quality string

const (
	QualityPoor      Quality = "poor"
	QualityFair      Quality = "fair"
	QualityGood      Quality = "good"
	QualityExcellent Quality = "excellent"
)

// QualityFor maps a word count to its quality band. This is the only place
// the banding is defined; nothing else may set a quality label ad hoc.
func QualityFor(wordCount int) Quality {
	switch {
	case wordCount < 50:
		return QualityPoor
	case wordCount < 200:
		return QualityFair
	case wordCount < 500:
		return QualityGood
	default:
		return QualityExcellent
	}
}

// ScrapeResult is the outcome of one scrape request. It is created once and
// never mutated after construction; the caller owns it once returned.
type ScrapeResult struct {
	URL        string            `json:"url"`
	Success    bool              `json:"success"`
	Title      string            `json:"title,omitempty"`
	Content    string            `json:"content,omitempty"`
	MethodUsed string            `json:"method_used,omitempty"`
	Quality    Quality           `json:"extraction_quality,omitempty"`
	WordCount  int               `json:"word_count"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// NewSuccessResult builds a successful result, deriving word count and
// quality from the content so the invariants cannot drift.
func NewSuccessResult(url, title, content, methodUsed string, metadata map[string]string) *ScrapeResult {
	wc := len(strings.Fields(content))
	return &ScrapeResult{
		URL:        url,
		Success:    true,
		Title:      title,
		Content:    content,
		MethodUsed: methodUsed,
		Quality:    QualityFor(wc),
		WordCount:  wc,
		Metadata:   metadata,
	}
}

// NewFailureResult builds a failed result carrying a human-readable
// diagnostic. Word count is zero and no quality label is assigned.
func NewFailureResult(url, methodUsed, errMsg string) *ScrapeResult {
	return &ScrapeResult{
		URL:        url,
		Success:    false,
		MethodUsed: methodUsed,
		Error:      errMsg,
	}
}
