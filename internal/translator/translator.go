package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sozercan/upi-search/apimodels"
	"github.com/sozercan/upi-search/internal/llm"
	"github.com/sozercan/upi-search/internal/tools"
)

var (
	// ErrInvalidQuery is wrapped by every InvalidQueryError.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnsupportedLanguage is returned for a language without a dialect.
	ErrUnsupportedLanguage = errors.New("unsupported query language")
)

// InvalidQueryError reports a generated query that failed validation.
type InvalidQueryError struct {
	Language string
	Query    string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("Generated %s query is invalid", DisplayName(e.Language))
}

func (e *InvalidQueryError) Unwrap() error { return ErrInvalidQuery }

// QueryGenerator produces query text from a prompt. *llm.Connector satisfies it.
type QueryGenerator interface {
	GenerateQuery(ctx context.Context, prompt string, opts ...llm.Option) (string, error)
}

type Translator struct {
	language  string
	generator QueryGenerator
	logger    *zap.Logger
}

func New(language string, generator QueryGenerator, logger *zap.Logger) (*Translator, error) {
	switch language {
	case apimodels.LanguageAQL, apimodels.LanguageCypher, apimodels.LanguageGraphQL:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{language: language, generator: generator, logger: logger}, nil
}

// LanguageForDriver maps a database driver to the query language it speaks.
func LanguageForDriver(driver string) string {
	switch driver {
	case "neo4j":
		return apimodels.LanguageCypher
	case "graphql":
		return apimodels.LanguageGraphQL
	default:
		return apimodels.LanguageAQL
	}
}

// DisplayName is the language name used in prompts and errors.
func DisplayName(language string) string {
	switch language {
	case apimodels.LanguageAQL:
		return "AQL"
	case apimodels.LanguageCypher:
		return "Cypher"
	case apimodels.LanguageGraphQL:
		return "GraphQL"
	default:
		return strings.ToUpper(language)
	}
}

func (t *Translator) Language() string { return t.language }

// Translate asks the model for a query answering parsed, then validates and
// tidies it.
func (t *Translator) Translate(ctx context.Context, parsed *apimodels.ParsedQuery) (*apimodels.TranslatedQuery, error) {
	prompt, err := t.prompt(parsed)
	if err != nil {
		return nil, err
	}

	raw, err := t.generator.GenerateQuery(ctx, prompt, llm.WithTools(tools.SubmitQuery(DisplayName(t.language))))
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s query: %w", DisplayName(t.language), err)
	}

	text := stripCodeFence(raw)
	if !Validate(t.language, text) {
		t.logger.Warn("Generated query failed validation",
			zap.String("language", t.language),
			zap.String("query", text),
		)
		return nil, &InvalidQueryError{Language: t.language, Query: text}
	}

	text = t.optimize(text)
	t.logger.Debug("Translated query", zap.String("language", t.language), zap.String("query", text))

	return &apimodels.TranslatedQuery{Language: t.language, Text: text}, nil
}

func (t *Translator) prompt(parsed *apimodels.ParsedQuery) (string, error) {
	body, err := json.Marshal(parsed)
	if err != nil {
		return "", fmt.Errorf("failed to encode parsed query: %w", err)
	}
	return fmt.Sprintf("Translate the following parsed query into an %s query: %s", DisplayName(t.language), body), nil
}

func (t *Translator) optimize(text string) string {
	text = strings.TrimSpace(text)
	if t.language != apimodels.LanguageGraphQL {
		text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
	}
	return text
}

// stripCodeFence unwraps ```lang ... ``` blocks models like to add. The
// first line is a language tag only when it is a single word followed by a
// newline; a fence written on one line keeps its whole body.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(strings.TrimSpace(s[:i]), " \t(){}") {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
