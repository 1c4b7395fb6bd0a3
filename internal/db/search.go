package db

// KNNQuery asks for the K hashes nearest to Vector in IndexName.
// ReturnFields limits the payload; empty returns every field.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult holds hits ordered by descending Score.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is one hit. Score is cosine similarity (1 - distance), in [-1, 1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// IndexInfo is what FT.INFO tells about a chunk index.
type IndexInfo struct {
	Name      string
	NumDocs   int
	VectorDim int
}
