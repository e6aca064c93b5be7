package align

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":       "hello world",
		"  multiple   spaces": "multiple spaces",
		"ALLCAPS":              "allcaps",
		"":                     "",
		"123-abc_DEF":          "123abcdef",
	}
	for in, want := range cases {
		if got := normalize(in); got != want {
			t.Errorf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

// P6 — normalizer idempotence.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Hello World!", "", "   ", "already normal", "Mixed-CASE_123"}
	for _, s := range inputs {
		once := normalize(s)
		twice := normalize(once)
		if once != twice {
			t.Errorf("normalize not idempotent for %q: once=%q twice=%q", s, once, twice)
		}
	}
}

func TestNgramsShortString(t *testing.T) {
	set := ngrams("hi", 3)
	if _, ok := set["hi"]; !ok || len(set) != 1 {
		t.Errorf("expected short string to yield itself as the only ngram, got %v", set)
	}
}

func TestNgramsEmpty(t *testing.T) {
	set := ngrams("!!!", 3)
	if len(set) != 0 {
		t.Errorf("expected empty ngram set for all-punctuation input, got %v", set)
	}
}

func TestNgramsRegular(t *testing.T) {
	set := ngrams("abcd", 3)
	want := []string{"abc", "bcd"}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			t.Errorf("expected ngram %q in set %v", w, set)
		}
	}
	if len(set) != len(want) {
		t.Errorf("expected %d ngrams, got %d: %v", len(want), len(set), set)
	}
}
