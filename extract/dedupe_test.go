package extract

import (
	"strings"
	"testing"
)

func TestDedupeExact(t *testing.T) {
	para := "This paragraph is long enough to be considered a real content block."
	text := para + "\n\n" + para + "\n\nA different paragraph that also clears the minimum length check."

	got := DedupeExact(text, 20)
	if n := strings.Count(got, "long enough"); n != 1 {
		t.Errorf("duplicate paragraph appears %d times, want 1", n)
	}
	if !strings.Contains(got, "different paragraph") {
		t.Errorf("distinct paragraph dropped")
	}
}

func TestDedupeExact_DropsFragments(t *testing.T) {
	got := DedupeExact("tiny\n\nA paragraph that is comfortably above the minimum length floor.", 20)
	if strings.Contains(got, "tiny") {
		t.Errorf("short fragment survived exact dedupe")
	}
}

func TestDedupeFuzzy_NearDuplicates(t *testing.T) {
	a := "The mobile layout repeats this exact paragraph for responsive rendering purposes."
	b := "The mobile layout repeats this exact paragraph for responsive rendering purposes!"
	c := "An entirely unrelated paragraph about the weather patterns over the north Atlantic."

	got := DedupeFuzzy(a+"\n\n"+b+"\n\n"+c, 40, 0.92)
	if n := strings.Count(got, "mobile layout"); n != 1 {
		t.Errorf("near-duplicate appears %d times, want 1", n)
	}
	if !strings.Contains(got, "north Atlantic") {
		t.Errorf("unrelated paragraph dropped")
	}
}

func TestDedupeFuzzy_KeepsShortBlocks(t *testing.T) {
	got := DedupeFuzzy("Heading\n\nHeading", 40, 0.92)
	if n := strings.Count(got, "Heading"); n != 2 {
		t.Errorf("short blocks should be kept as-is, got %d occurrences", n)
	}
}
