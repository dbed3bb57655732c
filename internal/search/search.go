package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sozercan/upi-search/apimodels"
	"github.com/sozercan/upi-search/internal/analyzer"
	"github.com/sozercan/upi-search/internal/config"
	"github.com/sozercan/upi-search/internal/executor"
	"github.com/sozercan/upi-search/internal/history"
	"github.com/sozercan/upi-search/internal/metrics"
	"github.com/sozercan/upi-search/internal/translator"
)

// ErrEmptyQuery is returned for a blank search.
var ErrEmptyQuery = errors.New("query cannot be empty")

type Parser interface {
	Parse(ctx context.Context, query string) *apimodels.ParsedQuery
}

type Translator interface {
	Translate(ctx context.Context, parsed *apimodels.ParsedQuery) (*apimodels.TranslatedQuery, error)
	Language() string
}

// Service runs the search pipeline: parse, translate, validate against the
// backend, execute, analyze, rank, facet and record history.
type Service struct {
	parser     Parser
	translator Translator
	executor   executor.Executor
	analyzer   *analyzer.Analyzer
	ranker     *analyzer.Ranker
	facets     *analyzer.FacetGenerator
	history    history.History
	model      string
	maxResults int
	logger     *zap.Logger
}

type Deps struct {
	Parser     Parser
	Translator Translator
	Executor   executor.Executor
	History    history.History
	Model      string
	Logger     *zap.Logger
}

func New(cfg config.SearchConfig, deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		parser:     deps.Parser,
		translator: deps.Translator,
		executor:   deps.Executor,
		analyzer:   analyzer.New(),
		ranker:     analyzer.NewRanker(),
		facets:     analyzer.NewFacetGenerator(cfg.FacetFields, cfg.MaxFacets),
		history:    deps.History,
		model:      deps.Model,
		maxResults: cfg.MaxResults,
		logger:     logger,
	}
}

// Refine appends a selected "field: value" facet to query.
func Refine(query, facet string) string {
	query = strings.TrimSpace(query)
	facet = strings.TrimSpace(facet)
	if facet == "" {
		return query
	}
	if query == "" {
		return facet
	}
	return query + " " + facet
}

func (s *Service) Search(ctx context.Context, req apimodels.SearchRequest) (*apimodels.SearchResponse, error) {
	query := Refine(req.Query, req.Facet)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	language := s.translator.Language()

	s.logQuery(query)
	startTime := time.Now()

	parsed := s.parser.Parse(ctx, query)

	translated, err := s.translator.Translate(ctx, parsed)
	if err != nil {
		status := "error"
		if errors.Is(err, translator.ErrInvalidQuery) {
			status = "invalid"
		}
		metrics.QueriesTotal.WithLabelValues(language, status).Inc()
		s.logger.Error("Query translation failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	if !s.executor.ValidateQuery(ctx, translated.Text) {
		metrics.QueriesTotal.WithLabelValues(language, "invalid").Inc()
		s.logger.Warn("Backend rejected generated query",
			zap.String("query", query),
			zap.String("translated", translated.Text),
		)
		return nil, fmt.Errorf("%w: %s query failed backend validation", executor.ErrQueryFailed, translator.DisplayName(language))
	}

	records, err := s.executor.Execute(ctx, translated.Text)
	if err != nil {
		status := "error"
		if errors.Is(err, executor.ErrBackendUnreachable) {
			status = "unreachable"
		}
		metrics.QueriesTotal.WithLabelValues(language, status).Inc()
		s.logger.Error("Query execution failed",
			zap.String("query", query),
			zap.String("translated", translated.Text),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to execute %s query: %w", translator.DisplayName(language), err)
	}

	analyzed := s.analyzer.Analyze(records)
	facets := s.facets.Generate(analyzed)
	ranked := s.ranker.Rank(analyzed)

	maxResults := s.maxResults
	if req.Options.MaxResults > 0 {
		maxResults = req.Options.MaxResults
	}
	if maxResults > 0 && len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	if facets == nil {
		facets = []string{}
	}

	resp := &apimodels.SearchResponse{
		Query:      query,
		Parsed:     parsed,
		Translated: translated,
		Results:    ranked,
		Facets:     facets,
		Metadata: apimodels.SearchMetadata{
			Duration:    time.Since(startTime).String(),
			Model:       s.model,
			Language:    translated.Language,
			ResultCount: len(records),
		},
	}

	if s.history != nil {
		if _, err := s.history.Add(ctx, query, resp); err != nil {
			s.logger.Warn("Failed to record query history", zap.Error(err))
		}
	}

	metrics.QueriesTotal.WithLabelValues(language, "success").Inc()
	metrics.ResultsReturned.WithLabelValues(language).Observe(float64(len(ranked)))
	s.logger.Info("Search completed",
		zap.String("query", query),
		zap.String("language", translated.Language),
		zap.Int("results", len(ranked)),
		zap.Int("facets", len(facets)),
		zap.String("duration", resp.Metadata.Duration),
	)
	return resp, nil
}

// History returns the most recent searches, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]apimodels.HistoryEntry, error) {
	if s.history == nil {
		return []apimodels.HistoryEntry{}, nil
	}
	return s.history.List(ctx, limit)
}

// HealthCheck reports whether the backend is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.executor.HealthCheck(ctx)
}

func (s *Service) logQuery(query string) {
	s.logger.Info("Received query", zap.String("query", query))
}

// EndSession records the end of an interactive session.
func (s *Service) EndSession() {
	s.logger.Info("Search session ended")
}
