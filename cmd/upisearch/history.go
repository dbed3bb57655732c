package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sozercan/upi-search/internal/history"
	"github.com/sozercan/upi-search/internal/translator"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	Long: `Show recent searches, newest first. Only the redis backend keeps
history between runs; the memory backend starts empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, log, err := loadConfig("warn")
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		hist, err := history.New(ctx, &cfg.History, log.Named("history"))
		if err != nil {
			return err
		}
		defer hist.Close()

		entries, err := hist.List(ctx, historyLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No searches recorded.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Query)
			fmt.Fprintf(out, "    %s, %d results: %s\n", translator.DisplayName(e.Language), e.ResultCount, e.TranslatedQuery)
			if len(e.TopTitles) > 0 {
				fmt.Fprintf(out, "    top: %s\n", strings.Join(e.TopTitles, ", "))
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of entries to show")
}
