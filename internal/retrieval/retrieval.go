// Package retrieval defines the passage retrieval collaborator consumed by
// semantic escalation, plus two implementations: an in-memory corpus for
// tests and offline audits, and a thin HTTP client for a deployed
// retrieval service.
package retrieval

import "context"

// Corpus selects which document corpus a query runs against.
type Corpus string

const (
	CorpusTender Corpus = "tender"
	CorpusBid    Corpus = "bid"
)

// Query is one retrieval request.
type Query struct {
	ProjectID string `json:"project_id"`
	Bidder    string `json:"bidder"`
	Corpus    Corpus `json:"corpus"`
	Text      string `json:"query"`
	TopK      int    `json:"top_k"`
}

// Passage is one ranked result.
type Passage struct {
	ChunkID   string  `json:"chunk_id"`
	Source    string  `json:"source"`
	PageStart int     `json:"page_start"`
	Quote     string  `json:"quote"`
	Score     float64 `json:"score"`
}

// Retriever returns ranked passages for a query. Implementations must
// tolerate "no results" by returning an empty slice, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, q Query) ([]Passage, error)
}
