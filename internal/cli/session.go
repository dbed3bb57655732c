package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/sozercan/upi-search/apimodels"
)

// Searcher runs one search. *search.Service satisfies it.
type Searcher interface {
	Search(ctx context.Context, req apimodels.SearchRequest) (*apimodels.SearchResponse, error)
	EndSession()
}

// Session drives the interactive loop: query, results, optional drill-down
// and facet refinement, then the continue prompt.
type Session struct {
	cli      *CLI
	searcher Searcher
	logger   *zap.Logger
}

func NewSession(cli *CLI, searcher Searcher, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{cli: cli, searcher: searcher, logger: logger}
}

// Run loops until the user declines to continue, input ends or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer s.searcher.EndSession()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		query, err := s.cli.GetQuery()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.cli.out)
			return nil
		}
		if err != nil {
			return err
		}
		if query == "" {
			continue
		}

		if err := s.runQuery(ctx, query); err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.cli.out)
				return nil
			}
			return err
		}

		cont, err := s.cli.ContinueSession()
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}

func (s *Session) runQuery(ctx context.Context, query string) error {
	req := apimodels.SearchRequest{Query: query}
	for {
		resp, err := s.searcher.Search(ctx, req)
		if err != nil {
			s.logger.Debug("Search failed", zap.String("query", req.Query), zap.Error(err))
			s.cli.DisplayError(err.Error())
			return nil
		}

		s.cli.DisplayResults(resp.Results, resp.Facets)

		if len(resp.Results) > 0 {
			idx, err := s.cli.GetResultSelection(len(resp.Results))
			if err != nil {
				return err
			}
			if idx >= 0 {
				s.cli.DisplayResultDetails(resp.Results[idx])
			}
		}

		facet, err := s.cli.GetFacetSelection(resp.Facets)
		if err != nil {
			return err
		}
		if facet == "" {
			return nil
		}
		req = apimodels.SearchRequest{Query: resp.Query, Facet: facet}
	}
}
