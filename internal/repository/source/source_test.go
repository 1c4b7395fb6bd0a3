package source

import (
	"strings"
	"testing"
	"testing/fstest"
)

const structured = `{
  "title": "Picker Options",
  "category": "API",
  "url": "https://docs.example/picker",
  "sections": [
    {"heading": "Usage", "text": "Open the picker.", "code_blocks": [{"language": "js", "code": "client.picker().open()"}]},
    {"text": "More text.", "code_blocks": [{"code": "plain"}]}
  ]
}`

const blogExport = `[
  {"title": "Upload Tutorial", "link": "https://blog.example/upload", "content": "How to upload.", "categories": ["Guides", "JS"]},
  {"title": "Draft", "content": "   "},
  {"title": "No Link", "content": "Body without link."}
]`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"docs/structured/picker.json": {Data: []byte(structured)},
		"docs/blogs/export.json":      {Data: []byte(blogExport)},
		"docs/blogs/broken.json":      {Data: []byte(`{"title": `)},
		"docs/readme.md":              {Data: []byte("not json")},
	}
}

func TestLoad_Structured(t *testing.T) {
	docs, failures, err := NewLoader(testFS()).Load("docs/structured/*.json")
	if err != nil || len(failures) != 0 {
		t.Fatalf("Load: %v %v", err, failures)
	}
	if len(docs) != 1 {
		t.Fatalf("docs = %d", len(docs))
	}
	d := docs[0]
	want := "Title: Picker Options\nCategory: API\n\n## Usage\nOpen the picker.\n\nCode (js):\nclient.picker().open()\n" +
		"More text.\n\nCode (text):\nplain\n"
	if d.Text != want {
		t.Errorf("text = %q\nwant   %q", d.Text, want)
	}
	if d.Source.File != "docs/structured/picker.json" || d.Source.URL != "https://docs.example/picker" {
		t.Errorf("source = %+v", d.Source)
	}
}

func TestLoad_BlogExportAndFailures(t *testing.T) {
	docs, failures, err := NewLoader(testFS()).Load("docs/**/*.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(failures) != 1 || failures[0].File != "docs/blogs/broken.json" {
		t.Fatalf("failures = %+v", failures)
	}
	// picker + two non-empty posts; files are visited in sorted order
	if len(docs) != 3 {
		t.Fatalf("docs = %d", len(docs))
	}
	post := docs[0]
	if post.Source.URL != "https://blog.example/upload" || post.Source.Category != "Guides, JS" || post.Source.File != "" {
		t.Errorf("post = %+v", post.Source)
	}
	if docs[1].Source.File != "docs/blogs/export.json#2" || !strings.Contains(docs[1].Text, "without link") {
		t.Errorf("unlinked post = %+v", docs[1].Source)
	}
}

func TestLoad_InvalidPattern(t *testing.T) {
	if _, _, err := NewLoader(testFS()).Load("docs/[.json"); err == nil {
		t.Error("expected invalid pattern error")
	}
}

func TestLoad_NoMatches(t *testing.T) {
	docs, failures, err := NewLoader(testFS()).Load("nothing/**/*.json")
	if err != nil || len(docs) != 0 || len(failures) != 0 {
		t.Errorf("Load = %v %v %v", docs, failures, err)
	}
}
