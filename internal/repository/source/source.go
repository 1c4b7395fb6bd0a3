// Package source discovers and renders the documents to index: structured API
// docs (one JSON object per file, with sections) and blog exports (a JSON
// array of posts, or one post per file).
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kailas-cloud/simcheck/internal/domain/document"
)

// Failure is a file that could not be loaded.
type Failure struct {
	File string
	Err  error
}

// Loader reads documents from a file system.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a loader rooted at fsys (usually os.DirFS(root)).
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Load renders every file matching the doublestar pattern. Unreadable or
// malformed files are reported as failures and skipped.
func (l *Loader) Load(pattern string) ([]document.SourceText, []Failure, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	files, err := doublestar.Glob(l.fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(files)

	var (
		out      []document.SourceText
		failures []Failure
	)
	for _, file := range files {
		docs, err := l.loadFile(file)
		if err != nil {
			failures = append(failures, Failure{File: file, Err: err})
			continue
		}
		out = append(out, docs...)
	}
	return out, failures, nil
}

func (l *Loader) loadFile(file string) ([]document.SourceText, error) {
	data, err := fs.ReadFile(l.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	if data[0] == '[' {
		var posts []blogPost
		if err := json.Unmarshal(data, &posts); err != nil {
			return nil, fmt.Errorf("parse blog export: %w", err)
		}
		out := make([]document.SourceText, 0, len(posts))
		for i := range posts {
			if st, ok := posts[i].render(file, i); ok {
				out = append(out, st)
			}
		}
		return out, nil
	}

	var doc structuredDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if len(doc.Sections) == 0 && doc.Content != "" {
		post := blogPost{Title: doc.Title, URL: doc.URL, Content: doc.Content, Category: doc.Category}
		st, _ := post.render(file, -1)
		return []document.SourceText{st}, nil
	}
	return []document.SourceText{doc.render(file)}, nil
}

type codeBlock struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type section struct {
	Heading    string      `json:"heading"`
	Text       string      `json:"text"`
	CodeBlocks []codeBlock `json:"code_blocks"`
}

type structuredDoc struct {
	Title    string    `json:"title"`
	Category string    `json:"category"`
	URL      string    `json:"url"`
	Content  string    `json:"content"`
	Sections []section `json:"sections"`
}

func (d *structuredDoc) render(file string) document.SourceText {
	var b strings.Builder
	if d.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", d.Title)
	}
	if d.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", d.Category)
	}
	for _, s := range d.Sections {
		if s.Heading != "" {
			fmt.Fprintf(&b, "\n## %s\n", s.Heading)
		}
		if s.Text != "" {
			fmt.Fprintf(&b, "%s\n", s.Text)
		}
		for _, cb := range s.CodeBlocks {
			lang := cb.Language
			if lang == "" {
				lang = "text"
			}
			fmt.Fprintf(&b, "\nCode (%s):\n%s\n", lang, cb.Code)
		}
	}

	return document.SourceText{
		Source: document.Source{
			Title:    orUnknown(d.Title),
			Category: orUnknown(d.Category),
			URL:      d.URL,
			File:     file,
		},
		Text: b.String(),
	}
}

type blogPost struct {
	Title      string          `json:"title"`
	Link       string          `json:"link"`
	URL        string          `json:"url"`
	Content    string          `json:"content"`
	Category   string          `json:"category"`
	Categories json.RawMessage `json:"categories"`
}

// render keys a post by its link; posts without one get file#index.
func (p *blogPost) render(file string, index int) (document.SourceText, bool) {
	if strings.TrimSpace(p.Content) == "" {
		return document.SourceText{}, false
	}
	url := p.Link
	if url == "" {
		url = p.URL
	}
	category := p.Category
	if category == "" {
		category = categoriesOf(p.Categories)
	}

	src := document.Source{Title: orUnknown(p.Title), Category: orUnknown(category), URL: url}
	if url == "" {
		src.File = file
		if index >= 0 {
			src.File += "#" + strconv.Itoa(index)
		}
	}
	return document.SourceText{Source: src, Text: p.Content}, true
}

func categoriesOf(raw json.RawMessage) string {
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, ", ")
	}
	var single string
	if json.Unmarshal(raw, &single) == nil {
		return single
	}
	return ""
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
