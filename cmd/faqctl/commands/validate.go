package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"support-bot/faq"
)

var validateStrict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the FAQ config and report skipped categories",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "fail when any category is skipped")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	report, err := faq.Load(configPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d categories loaded\n", report.Path, len(report.Categories))
	for _, cat := range report.Categories {
		fmt.Fprintf(out, "  %s %s (%s) keywords=%d tiers=%v\n", cat.Emoji, cat.Name, cat.ID, len(cat.Keywords), cat.TierOrder)
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintf(out, "%d categories skipped:\n", len(report.Skipped))
		for _, v := range report.Skipped {
			fmt.Fprintf(out, "  #%d %q: %s\n", v.Index, v.ID, v.Reason)
		}
		if validateStrict {
			return fmt.Errorf("%d invalid categories", len(report.Skipped))
		}
	}
	return nil
}
