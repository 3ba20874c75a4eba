// Package extract turns fetched HTML into main-content text using an
// ordered chain of strategies with a scoring fallback.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/datawoven/webharvest/config"
	"github.com/datawoven/webharvest/models"
)

// Strategy is one way of locating main content in a cleaned document.
// Extract returns the text and whether the strategy accepts its own output.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, req *models.ScrapeRequest) (string, bool)
}

// Chain runs strategies in fixed priority order over a cleaned document and
// returns the first accepted result. Destructive cleanup happens once up
// front and is shared by every strategy, so a fresh parse per request keeps
// the chain deterministic and the input document untouched.
type Chain struct {
	strategies []Strategy
}

// NewChain builds the standard strategy order: explicit selector,
// readability, semantic tags, content scoring, largest text block.
func NewChain(cfg config.ExtractConfig) *Chain {
	return &Chain{
		strategies: []Strategy{
			&selectorStrategy{minWords: cfg.SelectorMinWords},
			&readabilityStrategy{minWords: cfg.ReadabilityMinWords},
			&semanticStrategy{minWords: cfg.SemanticMinWords},
			&scoredStrategy{scorer: NewScorer(DefaultWeights())},
			&largestBlockStrategy{},
		},
	}
}

// Extract parses rawHTML, applies removal preprocessing once, and runs the
// chain. It returns the extracted text and the name of the winning strategy.
// An extraction error is returned only when even the last-resort strategy
// finds no text at all (blank or empty document).
func (c *Chain) Extract(rawHTML string, req *models.ScrapeRequest) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", "", models.NewScrapeError(models.ErrCodeExtraction, "failed to parse document", err)
	}

	removeUnwanted(doc, req.ExcludePatterns)

	for _, s := range c.strategies {
		text, ok := s.Extract(doc, req)
		if !ok {
			continue
		}
		text = cleanText(text)
		if text == "" {
			continue
		}
		return text, s.Name(), nil
	}

	return "", "", models.NewScrapeError(models.ErrCodeExtraction,
		"no content could be extracted from this page", nil)
}
