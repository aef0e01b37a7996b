package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage retrieval settings",
	Long: `View and configure retrieval and segmentation settings.

Settings are stored in the TOML config file and apply to every
retrieve and ingest run unless overridden by flags.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting and persist it.

Available keys:
  max-sources              maximum number of context candidates
  min-score                similarity threshold in [0,1]
  min-confidence           informational confidence floor
  rerank                   enable the rerank stage (true/false)
  dedup                    enable the dedup stage (true/false)
  max-chunks-per-document  per-document candidate cap
  boost-factor             exact-term boost multiplier
  target-size              preferred segment length in characters
  min-size                 smallest acceptable segment length
  max-size                 largest acceptable segment length
  overlap                  characters shared between segments
  preserve-sentences       prefer sentence boundaries (true/false)
  preserve-paragraphs      prefer paragraph breaks (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	RunE:  runSettingsReset,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Max sources: %d\n", cfg.MaxSources)
	cmd.Printf("  Min score: %.2f\n", cfg.MinScore)
	cmd.Printf("  Min confidence: %d\n", cfg.MinConfidence)
	cmd.Printf("  Reranking: %s\n", onOff(cfg.EnableReranking))
	cmd.Printf("  Deduplication: %s\n", onOff(cfg.EnableDeduplication))
	cmd.Printf("  Max chunks per document: %d\n", cfg.MaxChunksPerDocument)
	cmd.Printf("  Boost factor: %.2f\n", cfg.BoostFactor)
	cmd.Println()

	cmd.Println("[Segmenter]")
	cmd.Printf("  Target size: %d\n", cfg.Segmenter.TargetSize)
	cmd.Printf("  Min size: %d\n", cfg.Segmenter.MinSize)
	cmd.Printf("  Max size: %d\n", cfg.Segmenter.MaxSize)
	cmd.Printf("  Overlap: %d\n", cfg.Segmenter.OverlapSize)
	cmd.Printf("  Preserve sentences: %s\n", onOff(cfg.Segmenter.PreserveSentences))
	cmd.Printf("  Preserve paragraphs: %s\n", onOff(cfg.Segmenter.PreserveParagraphs))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'retriva settings reset' to restore defaults.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]

	cfg, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if err := applySetting(cfg, key, value); err != nil {
		return err
	}

	if err := settingsService.Save(cfg); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}

	cmd.Println("Settings restored to defaults.")
	return nil
}

// applySetting mutates cfg according to a key/value pair from the
// command line.
func applySetting(cfg *domain.RetrievalConfig, key, value string) error {
	switch key {
	case "max-sources":
		return setInt(&cfg.MaxSources, value)
	case "min-score":
		return setFloat(&cfg.MinScore, value)
	case "min-confidence":
		return setInt(&cfg.MinConfidence, value)
	case "rerank":
		return setBool(&cfg.EnableReranking, value)
	case "dedup":
		return setBool(&cfg.EnableDeduplication, value)
	case "max-chunks-per-document":
		return setInt(&cfg.MaxChunksPerDocument, value)
	case "boost-factor":
		return setFloat(&cfg.BoostFactor, value)
	case "target-size":
		return setInt(&cfg.Segmenter.TargetSize, value)
	case "min-size":
		return setInt(&cfg.Segmenter.MinSize, value)
	case "max-size":
		return setInt(&cfg.Segmenter.MaxSize, value)
	case "overlap":
		return setInt(&cfg.Segmenter.OverlapSize, value)
	case "preserve-sentences":
		return setBool(&cfg.Segmenter.PreserveSentences, value)
	case "preserve-paragraphs":
		return setBool(&cfg.Segmenter.PreserveParagraphs, value)
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
}

func setInt(target *int, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %s", value)
	}
	*target = v
	return nil
}

func setFloat(target *float64, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number: %s", value)
	}
	*target = v
	return nil
}

func setBool(target *bool, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean: %s", value)
	}
	*target = v
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
