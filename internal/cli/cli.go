package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sozercan/upi-search/apimodels"
)

// DefaultPrompt is shown before every query.
const DefaultPrompt = "UPI Search> "

// CLI is the line-oriented terminal interface. Reads return io.EOF once
// input is exhausted.
type CLI struct {
	in     *bufio.Reader
	out    io.Writer
	prompt string
}

func New(in io.Reader, out io.Writer, prompt string) *CLI {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &CLI{in: bufio.NewReader(in), out: out, prompt: prompt}
}

// GetQuery prompts for a query and returns it trimmed.
func (c *CLI) GetQuery() (string, error) {
	line, err := c.readLine(c.prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *CLI) DisplayResults(results []apimodels.Result, facets []string) {
	if len(results) == 0 {
		fmt.Fprintln(c.out, "No results found.")
		return
	}

	fmt.Fprintln(c.out, "\nSearch Results:")
	for i, r := range results {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(c.out, "   Path: %s\n", r.Path)
		fmt.Fprintf(c.out, "   Relevance: %.2f\n", r.Relevance)
		fmt.Fprintf(c.out, "   Snippet: %s\n", r.Snippet)
		fmt.Fprintln(c.out)
	}

	if len(facets) > 0 {
		fmt.Fprintln(c.out, "Suggested refinements:")
		for _, f := range facets {
			fmt.Fprintf(c.out, "- %s\n", f)
		}
	}
}

// ContinueSession is true only when the user answers "y". End of input
// counts as "no".
func (c *CLI) ContinueSession() (bool, error) {
	line, err := c.readLine("Do you want to perform another search? (y/n): ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.ToLower(strings.TrimSpace(line)) == "y", nil
}

func (c *CLI) DisplayError(msg string) {
	fmt.Fprintf(c.out, "Error: %s\n", msg)
}

// GetResultSelection returns the zero-based index of the chosen result, or
// -1 when the user skips.
func (c *CLI) GetResultSelection(count int) (int, error) {
	return c.selectNumber("Enter the number of a result to see more details (or press Enter to skip): ", count)
}

// DisplayResultDetails prints every field of r, one "Key: value" per line.
func (c *CLI) DisplayResultDetails(r apimodels.Result) {
	fmt.Fprintln(c.out, "\nDetailed Result:")
	fmt.Fprintf(c.out, "Title: %s\n", r.Title)
	fmt.Fprintf(c.out, "Path: %s\n", r.Path)
	fmt.Fprintf(c.out, "Relevance: %s\n", strconv.FormatFloat(r.Relevance, 'f', -1, 64))
	fmt.Fprintf(c.out, "Snippet: %s\n", r.Snippet)

	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(c.out, "%s: %v\n", capitalize(k), r.Fields[k])
	}
}

// GetFacetSelection lists facets and returns the chosen one, or "" when
// there are none or the user skips.
func (c *CLI) GetFacetSelection(facets []string) (string, error) {
	if len(facets) == 0 {
		return "", nil
	}

	fmt.Fprintln(c.out, "\nAvailable facets for refinement:")
	for i, f := range facets {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, f)
	}

	idx, err := c.selectNumber("Enter the number of a facet to refine your search (or press Enter to skip): ", len(facets))
	if err != nil || idx < 0 {
		return "", err
	}
	return facets[idx], nil
}

// selectNumber re-prompts until the input is empty or an integer in [1, count].
func (c *CLI) selectNumber(prompt string, count int) (int, error) {
	for {
		line, err := c.readLine(prompt)
		if err != nil {
			return -1, err
		}
		if line == "" {
			return -1, nil
		}

		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(c.out, "Please enter a valid number")
			continue
		}
		if n < 1 || n > count {
			fmt.Fprintf(c.out, "Please enter a number between 1 and %d\n", count)
			continue
		}
		return n - 1, nil
	}
}

func (c *CLI) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
