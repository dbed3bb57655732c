package apimodels

import "time"

type SearchResponse struct {
	// The query that was searched, including any applied facet
	Query string `json:"query"`

	Parsed     *ParsedQuery     `json:"parsed,omitempty"`
	Translated *TranslatedQuery `json:"translated,omitempty"`

	// Ranked results, best first
	Results []Result `json:"results"`

	// Suggested refinements in "field: value" form
	Facets []string `json:"facets"`

	// Metadata about the search
	Metadata SearchMetadata `json:"metadata"`
}

type Result struct {
	Title     string  `json:"title"`
	Path      string  `json:"path"`
	Relevance float64 `json:"relevance"`
	Snippet   string  `json:"snippet"`

	// Remaining record fields, shown in the detail view
	Fields map[string]interface{} `json:"fields,omitempty"`
}

type SearchMetadata struct {
	// Time taken for the whole pipeline
	Duration string `json:"duration"`

	// Model used for translation
	Model string `json:"model"`

	// Query language sent to the backend
	Language string `json:"language"`

	// Number of results before truncation to MaxResults
	ResultCount int `json:"resultCount"`
}

type HistoryEntry struct {
	ID              string    `json:"id"`
	Query           string    `json:"query"`
	Language        string    `json:"language"`
	TranslatedQuery string    `json:"translatedQuery"`
	ResultCount     int       `json:"resultCount"`
	TopTitles       []string  `json:"topTitles,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
