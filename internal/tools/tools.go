package tools

import (
	"fmt"

	"github.com/sozercan/upi-search/internal/llm"
)

// SubmitQueryName is the function the model calls to hand back a generated query.
const SubmitQueryName = "submit_query"

// SubmitQuery defines the function offered to the model during query
// generation. The "query" argument carries the query text in language.
func SubmitQuery(language string) llm.Tool {
	return llm.Tool{
		Name:        SubmitQueryName,
		Description: fmt.Sprintf("Submit a single %s query that answers the user's search", language),
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]string{
					"type":        "string",
					"description": fmt.Sprintf("The complete %s query, without markdown or commentary", language),
				},
			},
			"required": []string{"query"},
		},
	}
}
