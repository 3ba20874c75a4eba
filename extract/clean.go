package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// junkTags are dropped outright before any strategy runs.
var junkTags = []string{
	"script", "style", "noscript", "nav", "header", "footer", "aside",
	"svg", "form", "iframe",
}

// boilerplatePatterns identify sidebar/related/ad sections by their leading
// text or their class/id attributes.
var boilerplatePatterns = []string{
	"related", "resources", "you might also like", "recommended",
	"popular posts", "recent posts", "categories", "tags",
	"newsletter", "subscribe", "follow us", "social media",
	"advertisement", "sponsored", "cookie", "sidebar",
}

// removeUnwanted strips navigation, boilerplate and user-excluded elements
// from the document in place. It runs exactly once per extraction, up front,
// so every strategy sees the same cleaned tree.
func removeUnwanted(doc *goquery.Document, excludePatterns []string) {
	for _, tag := range junkTags {
		doc.Find(tag).Remove()
	}

	doc.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		head := strings.ToLower(s.Text())
		if len(head) > 200 {
			head = head[:200]
		}
		for _, pattern := range boilerplatePatterns {
			if strings.Contains(head, pattern) && looksLikeBoilerplate(s, pattern) {
				s.Remove()
				return
			}
		}
		if classIDContainsAny(s, boilerplatePatterns) {
			s.Remove()
		}
	})

	for _, pattern := range excludePatterns {
		p := strings.ToLower(pattern)
		doc.Find("*").Each(func(_ int, s *goquery.Selection) {
			if classIDContains(s, p) {
				s.Remove()
			}
		})
	}
}

// looksLikeBoilerplate guards the text-based match: a section whose leading
// text merely mentions a keyword is only removed when it is small or its
// class/id agrees. Prevents nuking an article that opens with the word
// "tags" or similar.
func looksLikeBoilerplate(s *goquery.Selection, pattern string) bool {
	if classIDContains(s, pattern) {
		return true
	}
	return len(strings.Fields(s.Text())) < 60
}

func classIDContains(s *goquery.Selection, pattern string) bool {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	combined := strings.ToLower(class + " " + id)
	return strings.Contains(combined, pattern)
}

func classIDContainsAny(s *goquery.Selection, patterns []string) bool {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	combined := strings.ToLower(class + " " + id)
	for _, p := range patterns {
		if strings.Contains(combined, p) {
			return true
		}
	}
	return false
}

var (
	reBlankLines  = regexp.MustCompile(`\n\s*\n\s*\n+`)
	reSpaces      = regexp.MustCompile(` +`)
	reShareWidget = regexp.MustCompile(`Share\s+Tweet\s+Share`)
	reClickShare  = regexp.MustCompile(`Click to share on.*?(\n|$)`)
	reWhitespace  = regexp.MustCompile(`\s+`)
)

// cleanText normalizes whitespace and strips common share-widget artifacts
// from extracted text.
func cleanText(text string) string {
	text = reBlankLines.ReplaceAllString(text, "\n\n")
	text = reSpaces.ReplaceAllString(text, " ")
	text = reShareWidget.ReplaceAllString(text, "")
	text = reClickShare.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// normalizeWS collapses all whitespace runs to single spaces.
func normalizeWS(text string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// wordCount counts whitespace-separated words.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
