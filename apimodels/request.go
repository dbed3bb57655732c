package apimodels

type SearchRequest struct {
	// Query is the natural language query to search for
	Query string `json:"query"`

	// Facet, when set, refines Query with a "field: value" facet from a previous response
	Facet string `json:"facet,omitempty"`

	// Optional parameters to control search behavior
	Options SearchOptions `json:"options,omitempty"`
}

type SearchOptions struct {
	// MaxResults caps the number of ranked results returned
	MaxResults int `json:"maxResults,omitempty"`
}
