package dom

import (
	"strings"
	"testing"
)

func TestParseAndTraverse(t *testing.T) {
	n, err := Parse(`<html><body><div id="wrap"><p class="lead">Hello</p><p>World</p></div></body></html>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	paras := n.DescendantsMatching(func(d Node) bool { return d.TagName() == "p" })
	if len(paras) != 2 {
		t.Fatalf("found %d <p> nodes, want 2", len(paras))
	}
	if got := strings.TrimSpace(paras[0].Text()); got != "Hello" {
		t.Errorf("first paragraph text = %q", got)
	}
	if cls, ok := paras[0].Attr("class"); !ok || cls != "lead" {
		t.Errorf("class attr = %q, %v", cls, ok)
	}
	if _, ok := paras[1].Attr("class"); ok {
		t.Error("second paragraph should have no class attr")
	}
}

func TestBlockTextPreservesBoundaries(t *testing.T) {
	n, err := Parse(`<html><body><div><p>First block.</p><p>Second block.</p><span> inline</span></div></body></html>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	text := BlockText(n)
	if !strings.Contains(text, "First block.\n") {
		t.Errorf("block boundary lost: %q", text)
	}
	if strings.Contains(text, "block.Second") {
		t.Errorf("paragraphs ran together: %q", text)
	}
}

func TestBlockTextSkipsScripts(t *testing.T) {
	n, err := Parse(`<html><body><p>Visible.</p><script>var hidden = 1;</script></body></html>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	text := BlockText(n)
	if strings.Contains(text, "hidden") {
		t.Errorf("script content leaked into text: %q", text)
	}
	if !strings.Contains(text, "Visible.") {
		t.Errorf("visible text missing: %q", text)
	}
}
