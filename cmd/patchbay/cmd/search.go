package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patchbaylabs/patchbay/internal/output"
	"github.com/patchbaylabs/patchbay/pkg/lexsearch"
)

type searchOptions struct {
	file       string
	fields     []string
	boost      []string
	threshold  float64
	maxResults int
	sortBy     string
	k1         float64
	b          float64
	format     string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank a JSON array of records against a query",
		Long: `Rank records with the BM25 engine connector search tools use, without
touching any upstream API.

Reads a JSON array of objects from --file or stdin, indexes it in memory,
and prints the ranked matches. Useful for tuning thresholds and boosts
against a real payload before putting them in the config file.

Flags left unset fall back to the search defaults in the config file.`,
		Example: `  # Rank contacts on the name and email fields
  patchbay search "ada lovelace" --file contacts.json --fields name,email

  # Pipe records in, boost the subject field, keep the top 5
  cat messages.json | patchbay search "invoice overdue" --boost subject=2.0 -n 5

  # Order matches by a record property instead of score
  patchbay search "standup" --file events.json --sort-by start_time:asc`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "JSON file of records (default stdin)")
	cmd.Flags().StringSliceVar(&opts.fields, "fields", nil, "Restrict matching to these dot-path fields")
	cmd.Flags().StringSliceVar(&opts.boost, "boost", nil, "Per-field score multiplier as field=weight")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Minimum score for a result")
	cmd.Flags().IntVarP(&opts.maxResults, "max-results", "n", lexsearch.DefaultMaxResults, "Maximum number of results")
	cmd.Flags().StringVar(&opts.sortBy, "sort-by", "", "Order results by a record property: prop or prop:asc|desc")
	cmd.Flags().Float64Var(&opts.k1, "k1", lexsearch.DefaultK1, "BM25 term frequency saturation")
	cmd.Flags().Float64Var(&opts.b, "b", lexsearch.DefaultB, "BM25 length normalization")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format (text, json)")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	items, err := readRecords(cmd, opts.file)
	if err != nil {
		return err
	}

	// Unset flags take their values from the config's search section.
	cfg := loadConfigOrDefaults()
	flags := cmd.Flags()
	if !flags.Changed("threshold") {
		opts.threshold = cfg.Search.Threshold
	}
	if !flags.Changed("max-results") {
		opts.maxResults = cfg.Search.MaxResults
	}
	if !flags.Changed("k1") {
		opts.k1 = cfg.Search.K1
	}
	if !flags.Changed("b") {
		opts.b = cfg.Search.B
	}

	idxOpts := []lexsearch.Option{
		lexsearch.WithThreshold(opts.threshold),
		lexsearch.WithMaxResults(opts.maxResults),
		lexsearch.WithK1(opts.k1),
		lexsearch.WithB(opts.b),
	}
	if len(opts.fields) > 0 {
		idxOpts = append(idxOpts, lexsearch.WithFields(opts.fields...))
	}
	if len(opts.boost) > 0 {
		boost, err := parseBoost(opts.boost)
		if err != nil {
			return err
		}
		idxOpts = append(idxOpts, lexsearch.WithBoost(boost))
	}
	if opts.sortBy != "" {
		property, order, err := parseSortBy(opts.sortBy)
		if err != nil {
			return err
		}
		idxOpts = append(idxOpts, lexsearch.WithSortBy(property, order))
	}

	idx := lexsearch.NewIndex(items, idxOpts...)
	results := idx.Search(query)

	switch opts.format {
	case "json":
		if results == nil {
			results = []lexsearch.Result{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "text":
		return printResults(cmd, query, results)
	default:
		return fmt.Errorf("unknown format %q (want text or json)", opts.format)
	}
}

// readRecords loads the record array from path, or stdin when path is
// empty or "-".
func readRecords(cmd *cobra.Command, path string) ([]lexsearch.Record, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	var items []lexsearch.Record
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("records must be a JSON array of objects: %w", err)
	}
	return items, nil
}

// parseBoost parses repeated field=weight pairs into a boost map.
func parseBoost(pairs []string) (map[string]float64, error) {
	boost := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid boost %q (want field=weight)", pair)
		}
		weight, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid boost weight %q: %w", value, err)
		}
		boost[field] = weight
	}
	return boost, nil
}

// parseSortBy splits prop[:asc|desc], defaulting to ascending.
func parseSortBy(s string) (string, lexsearch.SortOrder, error) {
	property, order, ok := strings.Cut(s, ":")
	if property == "" {
		return "", "", fmt.Errorf("invalid sort-by %q (want prop or prop:asc|desc)", s)
	}
	if !ok {
		return property, lexsearch.OrderAsc, nil
	}
	switch strings.ToLower(order) {
	case "asc":
		return property, lexsearch.OrderAsc, nil
	case "desc":
		return property, lexsearch.OrderDesc, nil
	default:
		return "", "", fmt.Errorf("invalid sort order %q (want asc or desc)", order)
	}
}

func printResults(cmd *cobra.Command, query string, results []lexsearch.Result) error {
	out := output.New(cmd.OutOrStdout())

	if len(results) == 0 {
		out.Statusf("", "No results found for %q", query)
		return nil
	}

	out.Statusf("", "Found %d results for %q:", len(results), query)
	out.Newline()

	for i, r := range results {
		out.Statusf("", "%d. %s (score: %.3f)", i+1, recordLabel(r.Item), r.Score)
		for _, line := range recordSnippet(r.Item, 3) {
			out.Status("", "   "+line)
		}
	}

	return nil
}

// recordLabel picks a display handle for a record: the first of name,
// title, subject, or id that is set.
func recordLabel(item lexsearch.Record) string {
	for _, key := range []string{"name", "title", "subject", "id"} {
		if v, ok := item[key]; ok {
			if s := fmt.Sprintf("%v", v); s != "" {
				return s
			}
		}
	}
	return "(record)"
}

// recordSnippet renders up to n "key: value" lines in sorted key order.
func recordSnippet(item lexsearch.Record, n int) []string {
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > n {
		keys = keys[:n]
	}

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, truncate(fmt.Sprintf("%v", item[k]), 60)))
	}
	return lines
}

// truncate caps s at n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
