package extract

import (
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/datawoven/webharvest/dom"
	"github.com/datawoven/webharvest/models"
)

// selectorStrategy extracts the text of elements matching the caller's
// explicit CSS selector. Skipped when no selector was supplied.
type selectorStrategy struct {
	minWords int
}

func (s *selectorStrategy) Name() string { return "selector" }

func (s *selectorStrategy) Extract(doc *goquery.Document, req *models.ScrapeRequest) (string, bool) {
	selector := strings.TrimSpace(req.ContentSelector)
	if selector == "" {
		return "", false
	}

	matches := doc.Find(selector)
	if matches.Length() == 0 {
		return "", false
	}

	var parts []string
	matches.Each(func(_ int, sel *goquery.Selection) {
		if text := dom.BlockText(dom.FromSelection(sel)); text != "" {
			parts = append(parts, text)
		}
	})

	text := strings.Join(parts, "\n\n")
	return text, wordCount(text) > s.minWords
}

// readabilityStrategy runs the Mozilla Readability article-detection pass
// over the cleaned document.
type readabilityStrategy struct {
	minWords int
}

func (s *readabilityStrategy) Name() string { return "readability" }

func (s *readabilityStrategy) Extract(doc *goquery.Document, req *models.ScrapeRequest) (string, bool) {
	rendered, err := doc.Html()
	if err != nil {
		return "", false
	}

	pageURL, err := nurl.Parse(req.URL)
	if err != nil {
		return "", false
	}

	article, err := readability.FromReader(strings.NewReader(rendered), pageURL)
	if err != nil {
		return "", false
	}

	text := strings.TrimSpace(article.TextContent)
	return text, wordCount(text) > s.minWords
}

// semanticTargets is the priority-ordered list of semantic containers. The
// bare "paragraph" entry matches custom web-component tags of that name.
var semanticTargets = []string{
	"article",
	"main",
	`[role="main"]`,
	".content",
	".post",
	".article",
	"paragraph",
	`[class*="content"]`,
	`[class*="article"]`,
}

// semanticStrategy searches for well-known content containers in priority
// order and concatenates all matches of the first target that holds enough
// text.
type semanticStrategy struct {
	minWords int
}

func (s *semanticStrategy) Name() string { return "semantic" }

func (s *semanticStrategy) Extract(doc *goquery.Document, _ *models.ScrapeRequest) (string, bool) {
	for _, target := range semanticTargets {
		matches := doc.Find(target)
		if matches.Length() == 0 {
			continue
		}

		var parts []string
		matches.Each(func(_ int, sel *goquery.Selection) {
			if text := dom.BlockText(dom.FromSelection(sel)); text != "" {
				parts = append(parts, text)
			}
		})

		text := strings.Join(parts, "\n\n")
		if wordCount(text) > s.minWords {
			return text, true
		}
	}
	return "", false
}

// scoredStrategy hands the whole document to the content scorer and takes
// the top candidate. The scorer only considers subtrees above its candidate
// word floor, so thin documents fall through to the largest-block strategy,
// which accepts any text at all.
type scoredStrategy struct {
	scorer *Scorer
}

func (s *scoredStrategy) Name() string { return "scored" }

func (s *scoredStrategy) Extract(doc *goquery.Document, _ *models.ScrapeRequest) (string, bool) {
	best := s.scorer.BestOf(dom.FromSelection(doc.Selection))
	if best == nil {
		return "", false
	}
	return best.Text, strings.TrimSpace(best.Text) != ""
}

// largestBlockStrategy is the absolute last resort: the single block
// container with the most raw text.
type largestBlockStrategy struct{}

func (s *largestBlockStrategy) Name() string { return "largest_block" }

func (s *largestBlockStrategy) Extract(doc *goquery.Document, _ *models.ScrapeRequest) (string, bool) {
	var best string
	doc.Find("div, section, article").Each(func(_ int, sel *goquery.Selection) {
		text := dom.BlockText(dom.FromSelection(sel))
		if len(text) > len(best) {
			best = text
		}
	})
	return best, strings.TrimSpace(best) != ""
}
