package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var validateAnswerFile string

var validateCmd = &cobra.Command{
	Use:   "validate [query] [answer]",
	Short: "Validate an answer against retrieved context",
	Long: `Retrieves context for the query and checks the answer's numeric
citations ([1], [2], ...) against it. The answer is taken from the
second argument, from --answer-file, or from stdin.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateAnswerFile, "answer-file", "", "read the answer from a file")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if validationService == nil {
		return errors.New("validation service not configured")
	}

	query := args[0]

	answer, err := readAnswer(cmd, args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	result, err := retrievalService.Retrieve(ctx, query, retrievalOptions())
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	validation := validationService.Validate(answer, result.Context)

	cmd.Printf("Confidence: %d\n", validation.Confidence)
	if validation.CitationsValid {
		cmd.Println("Citations: valid")
	} else {
		cmd.Printf("Citations: invalid %v\n", validation.InvalidCitations)
	}
	for _, issue := range validation.Issues {
		cmd.Printf("Issue: %s\n", issue)
	}

	return nil
}

func readAnswer(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 1 {
		return args[1], nil
	}
	if validateAnswerFile != "" {
		data, err := os.ReadFile(validateAnswerFile)
		if err != nil {
			return "", fmt.Errorf("read answer file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read answer from stdin: %w", err)
	}
	return string(data), nil
}
