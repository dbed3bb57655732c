package translator

import (
	"regexp"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/sozercan/upi-search/apimodels"
)

var (
	forKeyword    = regexp.MustCompile(`(?i)\bFOR\b`)
	matchKeyword  = regexp.MustCompile(`(?i)\bMATCH\b`)
	returnKeyword = regexp.MustCompile(`(?i)\bRETURN\b`)
)

// Validate reports whether text looks like a runnable query in language.
// AQL and Cypher are checked for their mandatory clauses only, matched as
// whole words in any case, so "FORMAT" does not count as FOR. GraphQL is
// fully parsed.
func Validate(language, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	switch language {
	case apimodels.LanguageAQL:
		return forKeyword.MatchString(text) && returnKeyword.MatchString(text)
	case apimodels.LanguageCypher:
		return matchKeyword.MatchString(text) && returnKeyword.MatchString(text)
	case apimodels.LanguageGraphQL:
		doc, err := parser.ParseQuery(&ast.Source{Input: text})
		if err != nil {
			return false
		}
		return len(doc.Operations) > 0
	default:
		return false
	}
}
