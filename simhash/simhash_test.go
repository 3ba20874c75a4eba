package simhash

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	text := "the committee reviewed the findings and published a schedule"
	if Fingerprint(text) != Fingerprint(text) {
		t.Error("identical text produced different fingerprints")
	}
}

func TestFingerprintSimilarTextsAreClose(t *testing.T) {
	a := Fingerprint("the committee reviewed the findings and published a schedule")
	b := Fingerprint("the committee reviewed the findings and released a schedule")
	if d := Distance(a, b); d > 10 {
		t.Errorf("near-duplicate paragraphs have distance %d, expected close fingerprints", d)
	}
}

func TestFingerprintDifferentTextsAreFar(t *testing.T) {
	a := Fingerprint("the committee reviewed the findings and published a schedule")
	b := Fingerprint("quantum entanglement experiments require extremely low temperatures overall")
	if d := Distance(a, b); d < 5 {
		t.Errorf("unrelated paragraphs have distance %d, expected distant fingerprints", d)
	}
}

func TestFingerprintEmpty(t *testing.T) {
	if fp := Fingerprint(""); fp != 0 {
		t.Errorf("empty input fingerprint = %064b, want 0", fp)
	}
	if fp := Fingerprint("   \n\t"); fp != 0 {
		t.Errorf("whitespace-only fingerprint = %064b, want 0", fp)
	}
}

func TestSimilarThreshold(t *testing.T) {
	a := Fingerprint("shared body text for the comparison")
	if !Similar(a, a, 0) {
		t.Error("a fingerprint must be similar to itself at threshold 0")
	}
	if Similar(0, ^uint64(0), 63) {
		t.Error("opposite fingerprints must not be similar below distance 64")
	}
}
