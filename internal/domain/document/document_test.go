package document

import (
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	src := Source{Title: "Uploads", Category: "guides", URL: "https://example.com/uploads", File: "docs/uploads.json"}
	d, err := New(src, "chunk text", 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Title() != "Uploads" || d.Category() != "guides" {
		t.Errorf("unexpected title/category: %q/%q", d.Title(), d.Category())
	}
	if d.ChunkIndex() != 1 || d.TotalChunks() != 3 {
		t.Errorf("chunk = %d/%d", d.ChunkIndex(), d.TotalChunks())
	}
	if d.ID() != DeriveID("docs/uploads.json", 1) {
		t.Errorf("ID not derived from source file")
	}
	if d.ID() < 0 {
		t.Errorf("ID must be non-negative, got %d", d.ID())
	}
}

func TestNew_Validation(t *testing.T) {
	src := Source{File: "a.json"}
	tests := []struct {
		name    string
		src     Source
		content string
		idx     int
		total   int
		wantErr string
	}{
		{"empty content", src, "", 0, 1, "content is required"},
		{"too large", src, strings.Repeat("x", MaxContentSize+1), 0, 1, "content too large"},
		{"zero total", src, "x", 0, 0, "total chunks"},
		{"index out of range", src, "x", 2, 2, "out of range"},
		{"negative index", src, "x", -1, 2, "out of range"},
		{"no source", Source{}, "x", 0, 1, "source file, url or title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.src, tt.content, tt.idx, tt.total)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_FallsBackToURLForID(t *testing.T) {
	d, err := New(Source{URL: "https://blog/x"}, "x", 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID() != DeriveID("https://blog/x", 0) {
		t.Error("expected URL-derived ID")
	}
}

func TestDeriveID_StableAndDistinct(t *testing.T) {
	a := DeriveID("file.json", 0)
	if a != DeriveID("file.json", 0) {
		t.Error("DeriveID is not stable")
	}
	if a == DeriveID("file.json", 1) {
		t.Error("different chunks share an ID")
	}
	if a == DeriveID("other.json", 0) {
		t.Error("different files share an ID")
	}
}

func TestReconstruct(t *testing.T) {
	d := Reconstruct(42, "T", "C", "body", 0, 1, "u", "f")
	if d.ID() != 42 || d.Content() != "body" || d.SourceURL() != "u" || d.SourceFile() != "f" {
		t.Errorf("unexpected document: %+v", d)
	}
}
