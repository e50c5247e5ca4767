package db

import "github.com/kailas-cloud/propdex/internal/db/filter"

// KNNQuery is the input for vector similarity search against the reserved
// "vector" alias of an index.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
	RawScores    bool // return __vector_score as-is (squared L2 for geolocation indexes)
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
