package result

import (
	"sort"

	"github.com/kailas-cloud/simcheck/internal/domain/document"
)

// Result is a single nearest-neighbor hit.
type Result struct {
	doc   document.Document
	score float64
}

// New creates a search result.
func New(doc document.Document, score float64) Result {
	return Result{doc: doc, score: score}
}

// Document returns the matched chunk payload.
func (r *Result) Document() document.Document { return r.doc }

// Score returns the similarity score as reported by the index.
func (r *Result) Score() float64 { return r.score }

// Percent returns the score scaled to a percentage.
func (r *Result) Percent() float64 { return r.score * 100 }

// SortByScore orders results by descending score, keeping the index order on ties.
func SortByScore(rs []Result) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].score > rs[j].score })
}
