package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

var (
	retrieveMaxSources int
	retrieveMinScore   float64
	retrieveNoRerank   bool
	retrieveNoDedup    bool
	retrieveVariants   []string
	retrieveJSON       bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Assemble context for a query",
	Long: `Runs the retrieval pipeline against the local corpus and prints
the assembled context: the most relevant segments, a confidence value,
and any issues encountered along the way.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveMaxSources, "max-sources", "n", 0, "maximum number of context candidates")
	retrieveCmd.Flags().Float64Var(&retrieveMinScore, "min-score", -1, "minimum similarity score in [0,1]")
	retrieveCmd.Flags().BoolVar(&retrieveNoRerank, "no-rerank", false, "skip the rerank stage")
	retrieveCmd.Flags().BoolVar(&retrieveNoDedup, "no-dedup", false, "skip the deduplication stage")
	retrieveCmd.Flags().StringArrayVar(&retrieveVariants, "variant", nil, "additional query phrasing, repeatable")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	ctx := context.Background()
	opts := retrievalOptions()

	result, err := retrievalService.Retrieve(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if retrieveJSON {
		return outputRetrieveJSON(cmd, result)
	}

	return outputRetrieveTable(cmd, result)
}

// retrievalOptions builds request options from persisted settings with
// flag overrides on top.
func retrievalOptions() domain.RetrievalOptions {
	cfg := domain.DefaultRetrievalConfig()
	if settingsService != nil {
		if stored, err := settingsService.Get(); err == nil && stored != nil {
			cfg = *stored
		}
	}

	opts := cfg.Options()
	if retrieveMaxSources > 0 {
		opts.MaxSources = retrieveMaxSources
	}
	if retrieveMinScore >= 0 {
		opts.MinScore = retrieveMinScore
	}
	if retrieveNoRerank {
		opts.EnableReranking = false
	}
	if retrieveNoDedup {
		opts.EnableDeduplication = false
	}
	opts.QueryVariants = retrieveVariants
	return opts
}

func outputRetrieveJSON(cmd *cobra.Command, result *domain.RetrievalResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRetrieveTable(cmd *cobra.Command, result *domain.RetrievalResult) error {
	if result.Context.TotalCount == 0 {
		cmd.Println("No context found.")
		return nil
	}

	cmd.Printf("Context (%d candidates):\n\n", result.Context.TotalCount)
	for i := range result.Context.Candidates {
		c := &result.Context.Candidates[i]

		name := c.DocumentName
		if name == "" {
			name = c.DocumentID
		}

		score := c.RerankedScore
		if score == 0 {
			score = c.Score
		}

		marker := ""
		if c.LowConfidence {
			marker = " [low confidence]"
		}

		cmd.Printf("  [%d] %s #%d (%.2f)%s\n", i+1, name, c.SegmentIndex, score, marker)
		cmd.Printf("      %s\n", snippet(c.Content, 160))
		cmd.Println()
	}

	cmd.Printf("Confidence: %d\n", result.Confidence)
	for _, issue := range result.Issues {
		cmd.Printf("Issue: %s\n", issue)
	}

	return nil
}

// snippet collapses whitespace and truncates to maxLen runes.
func snippet(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
