package parser

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sozercan/upi-search/apimodels"
	"github.com/sozercan/upi-search/internal/config"
)

// Enricher is the subset of the LLM connector the parser can use to refine
// a parse. *llm.Connector satisfies it.
type Enricher interface {
	ClassifyText(ctx context.Context, text string, categories []string) (string, error)
	ExtractKeywords(ctx context.Context, text string, n int) ([]string, error)
}

// Parser turns a raw query into a ParsedQuery. Without enrichment it only
// records the query with the default intent.
type Parser struct {
	cfg      config.ParserConfig
	enricher Enricher
	logger   *zap.Logger
}

func New(cfg config.ParserConfig, enricher Enricher, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{cfg: cfg, enricher: enricher, logger: logger}
}

// Parse never fails; enrichment errors keep the defaults.
func (p *Parser) Parse(ctx context.Context, query string) *apimodels.ParsedQuery {
	parsed := apimodels.NewParsedQuery(query)
	if !p.cfg.LLMEnrich || p.enricher == nil {
		return parsed
	}

	if len(p.cfg.Intents) > 0 {
		intent, err := p.enricher.ClassifyText(ctx, query, p.cfg.Intents)
		if err != nil {
			p.logger.Warn("Intent classification failed, using default", zap.Error(err))
		} else if matched, ok := matchIntent(intent, p.cfg.Intents); ok {
			parsed.Intent = matched
		} else {
			p.logger.Debug("Model returned unknown intent", zap.String("intent", intent))
		}
	}

	keywords, err := p.enricher.ExtractKeywords(ctx, query, p.cfg.Keywords)
	if err != nil {
		p.logger.Warn("Keyword extraction failed", zap.Error(err))
	} else {
		parsed.Keywords = keywords
	}

	return parsed
}

// matchIntent maps a free-form model answer like "Count." onto a configured intent.
func matchIntent(answer string, intents []string) (string, bool) {
	answer = strings.ToLower(strings.Trim(strings.TrimSpace(answer), ".\"'`"))
	for _, intent := range intents {
		if strings.EqualFold(answer, intent) {
			return intent, true
		}
	}
	return "", false
}
