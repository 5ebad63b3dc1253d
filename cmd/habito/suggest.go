// ABOUTME: CLI command for a routine suggestion.
// ABOUTME: Uses OpenAI when a key is configured, otherwise prints the offline fallback.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/habito/internal/suggest"
	"github.com/spf13/cobra"
)

var suggestShowPrompt bool

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Get a routine suggestion",
	Long: `Ask for a short suggestion based on your habits and this week's performance.

Requires an OpenAI API key (OPENAI_API_KEY or openai.api_key in the config).
Without one, or when the request fails, a fixed offline message is shown.

EXAMPLES:

  habito suggest
  habito suggest --prompt   # Also print the prompt that was sent`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		habitsText := suggest.HabitsSummary(sess.Activities())
		perf := suggest.PerformanceSummary(sess.Week(), sess.Stats())

		if suggestShowPrompt {
			fmt.Println(color.New(color.Faint).Sprint(suggest.Prompt(habitsText, perf)))
			fmt.Println()
		}

		text := newSuggester().Suggest(cmd.Context(), habitsText, perf)
		color.Cyan("💡 %s", text)
		return nil
	},
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestShowPrompt, "prompt", false, "print the prompt before the suggestion")
	rootCmd.AddCommand(suggestCmd)
}
