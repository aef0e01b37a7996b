package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]...",
	Short: "Ingest files into the corpus",
	Long: `Normalises, segments, embeds and stores the given files.
Re-ingesting a file replaces its previous segments.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()

	var failed int
	for _, path := range args {
		doc, err := ingestService.IngestFile(ctx, path)
		if err != nil {
			cmd.PrintErrf("Failed to ingest %s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("Ingested %s (%s)\n", doc.Title, doc.ID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}

	cmd.Printf("Done: %d files ingested.\n", len(args))
	return nil
}
