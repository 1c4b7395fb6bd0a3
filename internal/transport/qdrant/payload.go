package qdrant

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kailas-cloud/simcheck/internal/domain/document"
)

// payload is the chunk metadata stored next to each vector. Blog collections
// indexed by older tooling carry "categories" (a list) and "description"
// instead of "category"; both shapes are accepted on read.
type payload struct {
	Title        string          `json:"title"`
	Category     string          `json:"category"`
	Categories   json.RawMessage `json:"categories"`
	Content      string          `json:"content"`
	Description  string          `json:"description"`
	URL          string          `json:"url"`
	Filename     string          `json:"filename"`
	OriginalFile string          `json:"original_file"`
	ChunkIndex   int             `json:"chunk_index"`
	TotalChunks  int             `json:"total_chunks"`
}

func payloadOf(d *document.Document) map[string]any {
	p := map[string]any{
		"title":        d.Title(),
		"category":     d.Category(),
		"content":      d.Content(),
		"chunk_index":  d.ChunkIndex(),
		"total_chunks": d.TotalChunks(),
	}
	if d.SourceURL() != "" {
		p["url"] = d.SourceURL()
	}
	if d.SourceFile() != "" {
		p["filename"] = d.SourceFile()
	}
	return p
}

func (p *payload) document(id int64) document.Document {
	category := p.Category
	if category == "" {
		category = joinCategories(p.Categories)
	}
	content := p.Content
	if content == "" {
		content = p.Description
	}
	file := p.Filename
	if file == "" {
		file = p.OriginalFile
	}
	total := p.TotalChunks
	if total < 1 {
		total = 1
	}
	return document.Reconstruct(id, p.Title, category, content, p.ChunkIndex, total, p.URL, file)
}

func joinCategories(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
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

// parseID accepts numeric ids; UUID ids (from other writers) hash into the int64 space.
func parseID(raw json.RawMessage) int64 {
	s := strings.Trim(string(raw), `"`)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id
	}
	return document.DeriveID(s, 0)
}
