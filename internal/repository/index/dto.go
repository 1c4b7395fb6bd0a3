package index

import (
	"strconv"

	"github.com/kailas-cloud/simcheck/internal/db/redis"
	"github.com/kailas-cloud/simcheck/internal/domain/document"
)

// Hash field names of an indexed chunk.
const (
	fieldID          = "id"
	fieldTitle       = "title"
	fieldCategory    = "category"
	fieldContent     = "content"
	fieldChunkIndex  = "chunk_index"
	fieldTotalChunks = "total_chunks"
	fieldSourceURL   = "source_url"
	fieldSourceFile  = "source_file"
	fieldVector      = "vector"
)

var payloadFields = []string{
	fieldID, fieldTitle, fieldCategory, fieldContent,
	fieldChunkIndex, fieldTotalChunks, fieldSourceURL, fieldSourceFile,
}

func buildHashFields(p *document.Point) map[string]string {
	d := p.Document
	return map[string]string{
		fieldID:          strconv.FormatInt(d.ID(), 10),
		fieldTitle:       d.Title(),
		fieldCategory:    d.Category(),
		fieldContent:     d.Content(),
		fieldChunkIndex:  strconv.Itoa(d.ChunkIndex()),
		fieldTotalChunks: strconv.Itoa(d.TotalChunks()),
		fieldSourceURL:   d.SourceURL(),
		fieldSourceFile:  d.SourceFile(),
		fieldVector:      redis.VectorToBytes(p.Vector),
	}
}

// parseHashFields hydrates a chunk; malformed numbers fall back to zero so a
// single bad hash does not fail a whole search.
func parseHashFields(m map[string]string) document.Document {
	id, _ := strconv.ParseInt(m[fieldID], 10, 64)
	chunkIndex, _ := strconv.Atoi(m[fieldChunkIndex])
	totalChunks, _ := strconv.Atoi(m[fieldTotalChunks])
	return document.Reconstruct(
		id, m[fieldTitle], m[fieldCategory], m[fieldContent],
		chunkIndex, totalChunks, m[fieldSourceURL], m[fieldSourceFile],
	)
}
