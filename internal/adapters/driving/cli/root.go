// Package cli implements the Retriva command line interface built on
// cobra. Commands talk to the core services through the driving ports;
// the binary entry point wires concrete implementations via SetServices.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/retriva-cli/internal/core/ports/driving"
	"github.com/custodia-labs/retriva-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Injected services. Commands check for nil and fail with a clear
// message when a service was not wired.
var (
	retrievalService  driving.RetrievalService
	ingestService     driving.IngestService
	documentService   driving.DocumentService
	settingsService   driving.SettingsService
	validationService driving.ValidationService
)

// Services bundles the driving ports the CLI depends on.
type Services struct {
	Retrieval  driving.RetrievalService
	Ingest     driving.IngestService
	Document   driving.DocumentService
	Settings   driving.SettingsService
	Validation driving.ValidationService
}

// SetServices injects the service implementations used by all commands.
func SetServices(s Services) {
	retrievalService = s.Retrieval
	ingestService = s.Ingest
	documentService = s.Document
	settingsService = s.Settings
	validationService = s.Validation
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "retriva",
	Short: "Local retrieval engine for grounded AI context",
	Long: `Retriva ingests documents into a local corpus and assembles
bounded, ordered context for queries using similarity search,
deduplication, reranking and confidence estimation.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose pipeline logging")
}

// Execute runs the root command.
func Execute() error {
	godotenv.Load() //nolint:errcheck // .env is optional
	return rootCmd.Execute()
}
