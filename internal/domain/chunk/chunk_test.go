package chunk

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := map[string]int{"": 0, "a": 1, "four": 1, "fives": 2, "héllo": 2, "abcdefgh": 2}
	for word, want := range tests {
		if got := EstimateTokens(word); got != want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", word, got, want)
		}
	}
}

func TestSplit(t *testing.T) {
	// each word is 2 tokens
	text := "alpha bravo charl delta echoo"
	got := Split(text, 4)
	want := []string{"alpha bravo", "charl delta", "echoo"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Split = %q, want %q", got, want)
	}
	if strings.Join(got, " ") != text {
		t.Error("chunks must join back to the text")
	}
}

func TestSplit_SingleChunk(t *testing.T) {
	got := Split("short text fits", 0)
	if len(got) != 1 || got[0] != "short text fits" {
		t.Errorf("Split = %q", got)
	}
}

func TestSplit_OversizedWord(t *testing.T) {
	long := strings.Repeat("x", 40) // 10 tokens
	got := Split("a "+long+" b", 4)
	if len(got) != 3 || got[1] != long {
		t.Errorf("Split = %q", got)
	}
}

func TestSplit_Empty(t *testing.T) {
	if got := Split("", 10); got != nil {
		t.Errorf("Split(\"\") = %q", got)
	}
}
