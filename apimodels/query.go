package apimodels

// Query languages a TranslatedQuery can be written in.
const (
	LanguageAQL     = "aql"
	LanguageCypher  = "cypher"
	LanguageGraphQL = "graphql"
)

// Record is one raw row returned by a backend.
type Record = map[string]interface{}

type ParsedQuery struct {
	// The query exactly as the user typed it
	OriginalQuery string `json:"original_query"`

	// Detected intent, "search" unless enrichment picked another
	Intent string `json:"intent"`

	Entities map[string]interface{} `json:"entities"`
	Filters  map[string]interface{} `json:"filters"`

	// Keywords extracted by the model when enrichment is on
	Keywords []string `json:"keywords,omitempty"`
}

// NewParsedQuery returns the default parse of query.
func NewParsedQuery(query string) *ParsedQuery {
	return &ParsedQuery{
		OriginalQuery: query,
		Intent:        "search",
		Entities:      map[string]interface{}{},
		Filters:       map[string]interface{}{},
	}
}

type TranslatedQuery struct {
	// Language is one of LanguageAQL, LanguageCypher or LanguageGraphQL
	Language string `json:"language"`

	// Text is the validated query sent to the backend
	Text string `json:"text"`
}
