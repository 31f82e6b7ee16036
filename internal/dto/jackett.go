package dto

// JackettSearchResult is one indexer hit normalised for the UI.
type JackettSearchResult struct {
	Title     string `json:"title"`
	Size      int64  `json:"size"`
	Seeders   int    `json:"seeders"`
	Leechers  int    `json:"leechers"`
	Magnet    string `json:"magnet"`
	Tracker   string `json:"tracker"`
	Published string `json:"published"`
}

// JackettSearchResponse wraps search hits with a total.
type JackettSearchResponse struct {
	Results []JackettSearchResult `json:"results"`
	Total   int                   `json:"total"`
}

// JackettIndexer describes one configured indexer.
type JackettIndexer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}
