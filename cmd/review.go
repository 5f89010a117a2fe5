package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joescharf/cra/internal/lang"
	"github.com/joescharf/cra/internal/output"
	"github.com/joescharf/cra/internal/review"
	"github.com/joescharf/cra/internal/rules"
	"github.com/joescharf/cra/internal/summarize"
)

var reviewCmd = &cobra.Command{
	Use:   "review <file>...",
	Short: "Review local files and store the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}

		files := make([]review.FileInput, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			name := filepath.Base(path)
			text := lang.Decode(data)
			if lang.IsMinified(text) {
				ui.Warning("%s looks minified; findings may be noisy", name)
			}
			files = append(files, review.FileInput{
				Filename: name,
				Language: lang.Sniff(name),
				Content:  text,
			})
		}

		cfg := llmConfig()
		orch := review.New(s, rules.Default(), summarize.New(cfg))

		r, err := orch.AnalyzeReview(cmd.Context(), files)
		if err != nil {
			return err
		}

		ui.Success("Review %s: %d file(s), %d issue(s)", output.Cyan(r.ID), len(r.Files), len(r.Issues))

		if len(r.Issues) > 0 {
			filenames := make(map[string]string, len(r.Files))
			for _, f := range r.Files {
				filenames[f.ID] = f.Filename
			}
			table := ui.Table([]string{"Severity", "Rule", "File", "Line", "Message"})
			for _, issue := range r.Issues {
				line := "-"
				if issue.Line != nil {
					line = fmt.Sprintf("%d", *issue.Line)
				}
				_ = table.Append([]string{
					output.SeverityColor(string(issue.Severity)),
					issue.RuleID,
					filenames[issue.FileID],
					line,
					issue.Message,
				})
			}
			_ = table.Render()
		}

		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, r.Summary)
		if !r.LLMUsed {
			ui.VerboseLog("summary generated locally (LLM disabled or unreachable)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
