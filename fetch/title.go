package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractTitle pulls the page title from raw HTML, trying sources in order:
// <title>, the first <h1>, the og:title meta property, a meta name="title"
// tag, and finally the literal "Untitled".
func ExtractTitle(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "Untitled"
	}

	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	if c, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t := strings.TrimSpace(c); t != "" {
			return t
		}
	}
	if c, ok := doc.Find(`meta[name="title"]`).First().Attr("content"); ok {
		if t := strings.TrimSpace(c); t != "" {
			return t
		}
	}
	return "Untitled"
}
