package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sozercan/upi-search/apimodels"
	"github.com/sozercan/upi-search/internal/cli"
)

var (
	searchJSON       bool
	searchMaxResults int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search interactively, or run a single query given as arguments",
	Example: `  upisearch search
  upisearch search "services owned by the payments team" --json`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print a single query's response as JSON")
	searchCmd.Flags().IntVar(&searchMaxResults, "max-results", 0, "Override search.max_results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// keep the terminal readable unless asked otherwise
	a, err := newApp(ctx, "warn")
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	term := cli.New(cmd.InOrStdin(), cmd.OutOrStdout(), a.cfg.Search.Prompt)

	if len(args) == 0 {
		return cli.NewSession(term, a.service, a.logger).Run(ctx)
	}

	resp, err := a.service.Search(ctx, apimodels.SearchRequest{
		Query:   strings.Join(args, " "),
		Options: apimodels.SearchOptions{MaxResults: searchMaxResults},
	})
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	term.DisplayResults(resp.Results, resp.Facets)
	return nil
}
