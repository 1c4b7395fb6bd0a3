// Package retrieval shapes search hits into the context handed to a code
// generation assistant.
package retrieval

import (
	"strings"

	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
)

// Hit is the flat view of one search result.
type Hit struct {
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Filename    string  `json:"filename"`
	Content     string  `json:"content"`
	Relevance   float64 `json:"relevance"`
	Chunk       int     `json:"chunk"` // one-based
	TotalChunks int     `json:"totalChunks"`
}

// Reference is an API reference chunk keyed by its file.
type Reference struct {
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	Content   string  `json:"content"`
	Relevance float64 `json:"relevance"`
}

// Snippet is a chunk that carries code.
type Snippet struct {
	Source    string  `json:"source"`
	Code      string  `json:"code"`
	Language  string  `json:"language"`
	Relevance float64 `json:"relevance"`
}

// Context is the assembled retrieval context for one query.
type Context struct {
	Query        string               `json:"searchQuery"`
	Interfaces   map[string]Reference `json:"interfaces"`
	Classes      map[string]Reference `json:"classes"`
	RelevantCode []Snippet            `json:"relevantCode"`
	Results      []Hit                `json:"vectorSearchResults"`
	TotalResults int                  `json:"totalResults"`
}

const (
	interfacesMarker = "__interfaces__"
	classesMarker    = "__classes__"
	snippetLanguage  = "typescript"
)

// featureQueries expands short feature names into search queries.
var featureQueries = map[string]string{
	"picker":    "file picker configuration options parameters",
	"transform": "image transformation resize crop rotate blur",
	"upload":    "file upload configuration options",
	"security":  "security policy signature authentication",
	"cms":       "content management system file handling",
	"image":     "image processing transformation options",
	"pdf":       "PDF file handling conversion options",
}

// FeatureQuery returns the search query for a feature; unknown features are
// searched verbatim.
func FeatureQuery(feature string) string {
	if q, ok := featureQueries[feature]; ok {
		return q
	}
	return feature
}

// Assemble groups results, which must already be ranked, into a Context.
func Assemble(query string, results []result.Result) Context {
	c := Context{
		Query:        query,
		Interfaces:   map[string]Reference{},
		Classes:      map[string]Reference{},
		RelevantCode: []Snippet{},
		Results:      make([]Hit, 0, len(results)),
	}
	for _, r := range results {
		d := r.Document()
		file := d.SourceFile()

		c.Results = append(c.Results, Hit{
			Title:       d.Title(),
			Category:    d.Category(),
			Filename:    file,
			Content:     d.Content(),
			Relevance:   r.Score(),
			Chunk:       d.ChunkIndex() + 1,
			TotalChunks: d.TotalChunks(),
		})

		ref := Reference{Title: d.Title(), Category: d.Category(), Content: d.Content(), Relevance: r.Score()}
		switch {
		case strings.Contains(file, interfacesMarker):
			c.Interfaces[file] = ref
		case strings.Contains(file, classesMarker):
			c.Classes[file] = ref
		}

		if strings.Contains(d.Content(), "```") || strings.Contains(d.Content(), "code") {
			c.RelevantCode = append(c.RelevantCode, Snippet{
				Source:    "Vector Search - " + file,
				Code:      d.Content(),
				Language:  snippetLanguage,
				Relevance: r.Score(),
			})
		}
	}
	c.TotalResults = len(c.Results)
	return c
}
