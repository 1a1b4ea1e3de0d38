package chunk

import (
	"strings"
	"testing"
)

func TestChunkingAlgorithm(t *testing.T) {
	words := make([]string, 5000)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")

	segments := SlidingWindow(text, 1500, 200)
	if len(segments) == 0 {
		t.Fatal("expected chunks to be generated")
	}

	covered := make([]bool, 5000)
	for _, s := range segments {
		if s.StartToken < 0 || s.EndToken > 5000 || s.StartToken >= s.EndToken {
			t.Fatalf("invalid segment bounds: %+v", s)
		}
		for i := s.StartToken; i < s.EndToken; i++ {
			covered[i] = true
		}
	}

	for i, ok := range covered {
		if !ok {
			t.Fatalf("data loss at token index %d", i)
		}
	}
}

func TestSentences(t *testing.T) {
	got := Sentences("First one.  Second\n one!  ... Third? Fourth", 3)
	want := []string{"First one", "Second one", "Third"}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if len(Sentences("", 3)) != 0 {
		t.Fatal("expected no sentences for empty text")
	}
}

func TestQueries(t *testing.T) {
	long := strings.Repeat("lorem ", 50)
	text := "Too short. " + "This sentence is long enough to be used as a search query. " + long + "."
	got := Queries(text, 3, 30, 32)
	if len(got) != 2 {
		t.Fatalf("expected 2 queries, got %v", got)
	}
	if got[0] != "This sentence is long enough to be used as a search query" {
		t.Fatalf("unexpected first query: %q", got[0])
	}
	if n := len(strings.Fields(got[1])); n != 32 {
		t.Fatalf("expected long sentence capped at 32 words, got %d", n)
	}
}
