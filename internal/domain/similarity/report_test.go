package similarity

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/simcheck/internal/domain/document"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
)

func TestTruncateForDisplay(t *testing.T) {
	if got := TruncateForDisplay("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := TruncateForDisplay("abcdef", 3); got != "abc"+TruncationSuffix {
		t.Errorf("got %q", got)
	}
	if got := TruncateForDisplay("héllo wörld", 4); got != "héll"+TruncationSuffix {
		t.Errorf("rune-aware truncation failed: %q", got)
	}
	if got := TruncateForDisplay("abc", 0); got != "abc" {
		t.Errorf("limit 0 should disable truncation, got %q", got)
	}
}

func TestNewMatch(t *testing.T) {
	content := strings.Repeat("uploader widget ", 300)
	doc := document.Reconstruct(9, "Widgets", "guides", content, 0, 1, "https://x/widgets", "w.json")
	m := NewMatch(result.New(doc, 0.8771), 3000, 5)

	if m.Similarity != "87.7" {
		t.Errorf("similarity = %s", m.Similarity)
	}
	if !strings.HasSuffix(m.Content, TruncationSuffix) {
		t.Error("expected truncated display content")
	}
	if len(m.Keywords) != 2 || m.Keywords[0].Word != "uploader" || m.Keywords[0].Count != 300 {
		t.Errorf("keywords = %v", m.Keywords)
	}
	if m.URL != "https://x/widgets" || m.Title != "Widgets" {
		t.Errorf("unexpected match %+v", m)
	}
}
