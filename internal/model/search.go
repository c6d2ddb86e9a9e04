package model

// SearchResult is one ranked hit from a search provider. Rank is the
// provider-assigned position (1-based), never re-derived.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
	Rank    int    `json:"rank,omitempty"`
}
