package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sozercan/upi-search/internal/llm"
)

var (
	summaryLength int
	keywordCount  int
	categories    []string
	answerContext string
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Run a single LLM helper operation",
	Long:  "Run one of the LLM helper operations directly. Text is read from the arguments, or from stdin when none are given.",
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [text]",
	Short: "Summarize text",
	RunE: withConnector(func(cmd *cobra.Command, c *llm.Connector, text string) error {
		out, err := c.SummarizeText(cmd.Context(), text, summaryLength)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}),
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords [text]",
	Short: "Extract keywords from text",
	RunE: withConnector(func(cmd *cobra.Command, c *llm.Connector, text string) error {
		keywords, err := c.ExtractKeywords(cmd.Context(), text, keywordCount)
		if err != nil {
			return err
		}
		for _, kw := range keywords {
			fmt.Fprintln(cmd.OutOrStdout(), kw)
		}
		return nil
	}),
}

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Classify text into one of the given categories",
	Example: `  upisearch llm classify --categories search,count,describe "how many services are there"`,
	RunE: withConnector(func(cmd *cobra.Command, c *llm.Connector, text string) error {
		if len(categories) == 0 {
			return fmt.Errorf("--categories is required")
		}
		out, err := c.ClassifyText(cmd.Context(), text, categories)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}),
}

var answerCmd = &cobra.Command{
	Use:   "answer [question]",
	Short: "Answer a question from the given context",
	RunE: withConnector(func(cmd *cobra.Command, c *llm.Connector, question string) error {
		out, err := c.AnswerQuestion(cmd.Context(), answerContext, question)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}),
}

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Send a raw query-generation prompt",
	RunE: withConnector(func(cmd *cobra.Command, c *llm.Connector, prompt string) error {
		out, err := c.GenerateQuery(cmd.Context(), prompt)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}),
}

func init() {
	summarizeCmd.Flags().IntVar(&summaryLength, "max-length", 100, "Maximum summary length in words")
	keywordsCmd.Flags().IntVarP(&keywordCount, "count", "n", 5, "Number of keywords")
	classifyCmd.Flags().StringSliceVar(&categories, "categories", nil, "Comma-separated categories")
	answerCmd.Flags().StringVar(&answerContext, "context", "", "Context the answer must be based on")

	llmCmd.AddCommand(summarizeCmd, keywordsCmd, classifyCmd, answerCmd, generateCmd)
}

// withConnector loads config, builds the connector and hands the input text to run.
func withConnector(run func(cmd *cobra.Command, c *llm.Connector, text string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		text, err := inputText(cmd, args)
		if err != nil {
			return err
		}

		cfg, log, err := loadConfig("warn")
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		c, err := newConnector(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		return run(cmd, c, text)
	}
}

func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", fmt.Errorf("no input text given")
	}
	return text, nil
}
