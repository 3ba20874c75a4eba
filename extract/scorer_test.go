package extract

import (
	"strings"
	"testing"

	"github.com/datawoven/webharvest/dom"
)

func parseNode(t *testing.T, html string) dom.Node {
	t.Helper()
	node, err := dom.Parse(html)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return node
}

// An article-like block of long well-punctuated sentences must beat a
// nav-like block of short repetitive lines of comparable total size.
func TestScorer_PrefersArticleOverNavList(t *testing.T) {
	navItems := make([]string, 20)
	for i := range navItems {
		navItems[i] = "<li><a href=\"/page\">Products and services</a></li>"
	}
	article := `
		<p>The migration to the new storage backend completed without incident over the weekend, and early measurements show a meaningful reduction in tail latency.</p>
		<p>Engineers attribute the improvement to the redesigned write path, which batches small updates before they ever reach the durable log.</p>
		<p>The team plans to publish a full postmortem of the rollout, including the two configuration mistakes that delayed the first attempt.</p>
		<p>Operations staff confirmed that no customer data was affected at any point during the procedure.</p>
		<p>A follow-up change will extend the same batching technique to the replication stream next quarter.</p>`

	html := `<html><body>
		<div id="menu"><ul>` + strings.Join(navItems, "") + `</ul></div>
		<div id="story">` + article + `</div>
	</body></html>`

	scorer := NewScorer(DefaultWeights())
	best := scorer.BestOf(parseNode(t, html))
	if best == nil {
		t.Fatal("no candidate selected")
	}
	if !strings.Contains(best.Text, "storage backend") {
		t.Errorf("selected wrong block: %.80q", best.Text)
	}
	if strings.Contains(best.Text, "Products and services") {
		t.Errorf("nav text leaked into winning candidate")
	}
}

func TestScorer_LegalBoilerplatePenalty(t *testing.T) {
	legal := `<div id="consent">
		<p>We use cookies to personalise content. Our privacy policy explains your consent choices in detail for this domain.</p>
		<p>By clicking agree you accept our terms and the legal basis under gdpr, and you can change preferences at any time you like here.</p>
		<p>These cookie preferences apply across every domain we operate and can be withdrawn in the privacy dashboard whenever needed.</p>
	</div>`
	prose := `<div id="report">
		<p>The committee reviewed the quarterly numbers and found that revenue grew faster than forecast in every region except the north.</p>
		<p>Costs remained flat for the third consecutive quarter, which the finance team attributes to the renegotiated supplier contracts.</p>
		<p>Management expects the trend to continue into next year provided exchange rates remain within the hedged band.</p>
	</div>`

	scorer := NewScorer(DefaultWeights())
	best := scorer.BestOf(parseNode(t, "<html><body>"+legal+prose+"</body></html>"))
	if best == nil {
		t.Fatal("no candidate selected")
	}
	if !strings.Contains(best.Text, "quarterly numbers") {
		t.Errorf("legal boilerplate outranked prose: %.80q", best.Text)
	}
}

func TestScorer_Deterministic(t *testing.T) {
	html := `<html><body><div class="content">
		<p>Deterministic scoring is required for testability, so the same document must always produce the same winner.</p>
		<p>This paragraph exists to push the candidate over the minimum word threshold used by the scorer implementation.</p>
		<p>Every run over identical input and identical constants has to yield identical candidate metrics and scores.</p>
		<p>Adding one more paragraph of ordinary prose keeps this block comfortably above the candidate word floor.</p>
	</div></body></html>`

	scorer := NewScorer(DefaultWeights())
	first := scorer.BestOf(parseNode(t, html))
	second := scorer.BestOf(parseNode(t, html))
	if first == nil || second == nil {
		t.Fatal("no candidate selected")
	}
	if first.Text != second.Text || first.Score != second.Score {
		t.Errorf("scoring not deterministic: %v vs %v", first.Score, second.Score)
	}
}

func TestScorer_TooLittleText(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	if best := scorer.BestOf(parseNode(t, "<html><body><p>tiny</p></body></html>")); best != nil {
		t.Errorf("expected no candidate for near-empty document, got %q", best.Text)
	}
}

func TestSplitSentences_DiscardsFragments(t *testing.T) {
	got := splitSentences("Short. This sentence is comfortably longer than twenty characters. Tiny! Another reasonably long sentence follows right here?")
	if len(got) != 2 {
		t.Fatalf("got %d sentences, want 2: %v", len(got), got)
	}
}

func TestIsRepetitiveList(t *testing.T) {
	nav := strings.Repeat("Home\nAbout\nContact\nProducts\n", 5)
	if !isRepetitiveList(nav) {
		t.Error("nav list not detected")
	}
	prose := strings.Repeat("This is a reasonably long line of prose that should not look like navigation at all.\n", 12)
	if isRepetitiveList(prose) {
		t.Error("prose misdetected as list")
	}
}
