package document

import (
	"fmt"
	"hash/fnv"
	"strconv"
)

// MaxContentSize is the maximum chunk content size in bytes.
const MaxContentSize = 163840 // 160KB

// Document is one indexed chunk of a source document (immutable value object).
// Once upserted it is owned by the vector index; re-indexing overwrites by ID.
type Document struct {
	id          int64
	title       string
	category    string
	content     string
	chunkIndex  int
	totalChunks int
	sourceURL   string
	sourceFile  string
}

// Source describes where a chunk came from.
type Source struct {
	Title    string
	Category string
	URL      string
	File     string
}

// New validates and creates a chunk document. The ID is derived from the
// source file and chunk index so repeated indexing of a file is idempotent.
func New(src Source, content string, chunkIndex, totalChunks int) (Document, error) {
	if content == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	if totalChunks < 1 {
		return Document{}, fmt.Errorf("total chunks must be positive")
	}
	if chunkIndex < 0 || chunkIndex >= totalChunks {
		return Document{}, fmt.Errorf("chunk index %d out of range [0, %d)", chunkIndex, totalChunks)
	}

	key := src.File
	if key == "" {
		key = src.URL
	}
	if key == "" {
		key = src.Title
	}
	if key == "" {
		return Document{}, fmt.Errorf("source file, url or title is required")
	}

	return Document{
		id:          DeriveID(key, chunkIndex),
		title:       src.Title,
		category:    src.Category,
		content:     content,
		chunkIndex:  chunkIndex,
		totalChunks: totalChunks,
		sourceURL:   src.URL,
		sourceFile:  src.File,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id int64, title, category, content string,
	chunkIndex, totalChunks int, sourceURL, sourceFile string,
) Document {
	return Document{
		id: id, title: title, category: category, content: content,
		chunkIndex: chunkIndex, totalChunks: totalChunks,
		sourceURL: sourceURL, sourceFile: sourceFile,
	}
}

// DeriveID hashes key#chunk into a non-negative int64.
func DeriveID(key string, chunkIndex int) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	_, _ = h.Write([]byte{'#'})
	_, _ = h.Write([]byte(strconv.Itoa(chunkIndex)))
	return int64(h.Sum64() & (1<<63 - 1))
}

// ID returns the document identifier.
func (d *Document) ID() int64 { return d.id }

// Title returns the source document title.
func (d *Document) Title() string { return d.title }

// Category returns the source document category.
func (d *Document) Category() string { return d.category }

// Content returns the chunk text.
func (d *Document) Content() string { return d.content }

// ChunkIndex returns the zero-based chunk position.
func (d *Document) ChunkIndex() int { return d.chunkIndex }

// TotalChunks returns the number of chunks of the source document.
func (d *Document) TotalChunks() int { return d.totalChunks }

// SourceURL returns the public URL of the source document.
func (d *Document) SourceURL() string { return d.sourceURL }

// SourceFile returns the path of the source file.
func (d *Document) SourceFile() string { return d.sourceFile }

// Point pairs a chunk with its embedding for upsert into a vector index.
type Point struct {
	Document Document
	Vector   []float32
}

// SourceText is a source document rendered to plain text, ready for chunking.
type SourceText struct {
	Source Source
	Text   string
}
