package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// goqueryNode adapts a single-element goquery selection to the Node interface.
type goqueryNode struct {
	sel *goquery.Selection
}

// FromSelection wraps a goquery selection. Only the first element of the
// selection is represented.
func FromSelection(sel *goquery.Selection) Node {
	return &goqueryNode{sel: sel.First()}
}

// Parse parses an HTML string and returns the document root node.
func Parse(rawHTML string) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	return &goqueryNode{sel: doc.Selection}, nil
}

func (n *goqueryNode) TagName() string {
	return strings.ToLower(goquery.NodeName(n.sel))
}

func (n *goqueryNode) Text() string {
	return strings.Join(strings.Fields(n.sel.Text()), " ")
}

func (n *goqueryNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n *goqueryNode) Attributes() map[string]string {
	attrs := make(map[string]string)
	for _, node := range n.sel.Nodes {
		for _, a := range node.Attr {
			attrs[a.Key] = a.Val
		}
	}
	return attrs
}

func (n *goqueryNode) Children() []Node {
	children := n.sel.Children()
	out := make([]Node, 0, children.Length())
	children.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &goqueryNode{sel: s})
	})
	return out
}

func (n *goqueryNode) DescendantsMatching(pred func(Node) bool) []Node {
	var out []Node
	n.sel.Find("*").Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) == 0 || s.Nodes[0].Type != html.ElementNode {
			return
		}
		node := &goqueryNode{sel: s}
		if pred(node) {
			out = append(out, node)
		}
	})
	return out
}

// Selection exposes the underlying goquery selection for callers that need
// parser-specific operations (text with separators, outer HTML).
func (n *goqueryNode) Selection() *goquery.Selection {
	return n.sel
}

// BlockText returns the element text with block boundaries preserved as
// newlines, the shape the extraction strategies hand to text cleanup.
func BlockText(n Node) string {
	if gn, ok := n.(*goqueryNode); ok {
		return blockTextFromSelection(gn.sel)
	}
	return n.Text()
}

func blockTextFromSelection(sel *goquery.Selection) string {
	var b strings.Builder
	for _, node := range sel.Nodes {
		writeBlockText(&b, node)
	}
	return strings.TrimSpace(b.String())
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"li": true, "br": true, "blockquote": true, "pre": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"paragraph": true,
}

func writeBlockText(b *strings.Builder, node *html.Node) {
	switch node.Type {
	case html.TextNode:
		if text := strings.TrimSpace(node.Data); text != "" {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	case html.ElementNode:
		if node.Data == "script" || node.Data == "style" || node.Data == "noscript" {
			return
		}
		block := blockTags[node.Data]
		if block && b.Len() > 0 {
			b.WriteByte('\n')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			writeBlockText(b, c)
		}
		if block {
			b.WriteByte('\n')
		}
	default:
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			writeBlockText(b, c)
		}
	}
}
