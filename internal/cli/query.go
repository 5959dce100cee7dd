package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harun/mnemo/pkg/archive"
	"github.com/harun/mnemo/pkg/retrieval"
	"github.com/harun/mnemo/pkg/vectorstore"
)

var (
	queryLimit         int
	queryVectorWeight  float64
	queryLexicalWeight float64
	queryType          string
	queryFrom          string
	queryTo            string
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Search memory with hybrid lexical + semantic retrieval",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "maximum results (default from config)")
	queryCmd.Flags().Float64Var(&queryVectorWeight, "vector-weight", -1, "semantic score weight in [0,1]")
	queryCmd.Flags().Float64Var(&queryLexicalWeight, "lexical-weight", -1, "lexical score weight in [0,1]")
	queryCmd.Flags().StringVar(&queryType, "type", "", "restrict to a document type")
	queryCmd.Flags().StringVar(&queryFrom, "from", "", "earliest date, YYYY-MM-DD")
	queryCmd.Flags().StringVar(&queryTo, "to", "", "latest date, YYYY-MM-DD")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	for _, flag := range []string{queryFrom, queryTo} {
		if flag == "" {
			continue
		}
		if _, err := time.Parse(archive.DateFormat, flag); err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", flag)
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	opts := retrieval.SearchOptions{
		Limit:         a.cfg.Retrieval.DefaultLimit,
		VectorWeight:  a.cfg.Retrieval.VectorWeight,
		LexicalWeight: a.cfg.Retrieval.LexicalWeight,
	}
	if queryLimit > 0 {
		opts.Limit = queryLimit
	}
	if queryVectorWeight >= 0 {
		opts.VectorWeight = queryVectorWeight
	}
	if queryLexicalWeight >= 0 {
		opts.LexicalWeight = queryLexicalWeight
	}
	if queryType != "" || queryFrom != "" || queryTo != "" {
		opts.Filter = &vectorstore.Filter{
			Type:     queryType,
			DateFrom: queryFrom,
			DateTo:   queryTo,
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()

	results, err := a.engine.Search(ctx, strings.Join(args, " "), opts)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. [%s %s] score=%.4f (vector=%.4f lexical=%.4f)\n",
			i+1, r.Metadata.Date, r.Metadata.Type, r.CombinedScore, r.VectorScore, r.LexicalScore)
		fmt.Printf("   %s\n", truncate(r.Text, 200))
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
