package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"support-bot/faq"
)

var queryThreshold float64

// sampleQuestions run when no question is given
var sampleQuestions = []string{
	"cat costa livrarea",
	"Cum fac retur?",
	"vreau sa schimb marimea",
	"pot plati cu cardul?",
	"cand ajunge comanda mea",
	"Bună!",
	"politica de retur completa",
	"transport gratuit?",
	"xyz abc 123",
}

var queryCmd = &cobra.Command{
	Use:   "query [question...]",
	Short: "Run questions through the FAQ matcher",
	Long: `Each argument is matched as a separate question. Without arguments a
built-in set of sample questions is used.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Float64VarP(&queryThreshold, "threshold", "t", faq.DefaultThreshold, "minimum score for a match (0-100)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryThreshold < 0 || queryThreshold > 100 {
		return fmt.Errorf("threshold must be between 0 and 100")
	}

	report, err := faq.Load(configPath)
	if err != nil {
		return err
	}
	matcher := faq.NewFromCategories(report.Categories)

	questions := args
	if len(questions) == 0 {
		questions = sampleQuestions
	}

	out := cmd.OutOrStdout()
	divider := strings.Repeat("-", 60)
	for _, q := range questions {
		fmt.Fprintf(out, "\n📝 %q\n%s\n", q, divider)

		resp := matcher.GetResponse(q, queryThreshold)
		if resp == nil {
			fmt.Fprintf(out, "❌ no match\n\n%s\n", matcher.GetFallbackResponse(q))
			continue
		}
		fmt.Fprintf(out, "✅ %s %s (%s)\n", resp.Emoji, resp.CategoryName, resp.CategoryID)
		fmt.Fprintf(out, "📊 score: %.2f\n📋 level: %s\n\n%s\n", resp.Score, strings.ToUpper(resp.Level), resp.Response)
	}
	return nil
}
