package analyzer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sozercan/upi-search/apimodels"
)

// MaxSnippetLength is the snippet length in runes before truncation.
const MaxSnippetLength = 160

// Record keys consulted, in order, for each Result field.
var (
	titleKeys     = []string{"title", "name", "label"}
	pathKeys      = []string{"path", "_id", "id", "url"}
	snippetKeys   = []string{"snippet", "content", "description", "summary"}
	relevanceKeys = []string{"relevance", "score"}
)

// Analyzer extracts display metadata from raw backend records.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// Analyze maps each record to a Result. Keys used for the title, path,
// snippet and relevance are removed from Fields; everything else is kept.
func (a *Analyzer) Analyze(records []apimodels.Record) []apimodels.Result {
	results := make([]apimodels.Result, 0, len(records))
	for i, rec := range records {
		used := map[string]bool{}

		title, ok := pick(rec, titleKeys, used)
		if !ok {
			title = fmt.Sprintf("Result %d", i+1)
		}
		path, _ := pick(rec, pathKeys, used)
		snippet, _ := pick(rec, snippetKeys, used)

		var relevance float64
		for _, key := range relevanceKeys {
			if score, ok := toFloat(rec[key]); ok {
				relevance = score
				used[key] = true
				break
			}
		}

		fields := make(map[string]interface{}, len(rec))
		for k, v := range rec {
			if !used[k] {
				fields[k] = v
			}
		}

		results = append(results, apimodels.Result{
			Title:     title,
			Path:      path,
			Relevance: relevance,
			Snippet:   truncate(snippet, MaxSnippetLength),
			Fields:    fields,
		})
	}
	return results
}

// pick returns the first non-empty value among keys, rendered as a string.
func pick(rec apimodels.Record, keys []string, used map[string]bool) (string, bool) {
	for _, key := range keys {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		s := stringify(v)
		if s == "" {
			continue
		}
		used[key] = true
		return s, true
	}
	return "", false
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
