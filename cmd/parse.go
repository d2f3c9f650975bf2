package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cloudstack-dashboard/prdash/core"
	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/spf13/cobra"
)

// parseCmd runs the extractors on a raw comment without storing anything.
var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Extract results from a raw bot comment (debugging aid)",
	Long: `Run the comment classifier and extractors on one comment body and print what
they found. Nothing is stored.

The body is read from the file argument, or from stdin when no file is given.
Output defaults to JSON.

Use this when a bot changes its comment format and facts stop showing up.

Examples:
  # Parse a saved smoke-test comment
  prdash parse comment.md --pr 9001

  # Parse a coverage comment from the clipboard
  pbpaste | prdash parse --author codecov[bot]`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// The positional argument is a file, not a PR number
		return resolveConfig(nil)
	},
	Run: func(cmd *cobra.Command, args []string) {
		body, err := readCommentBody(cmd.InOrStdin(), args)
		if err != nil {
			contract.LogFatal("Cannot read comment", err)
		}

		if !cmd.Flags().Changed("output") && os.Getenv("PRDASH_OUTPUT") == "" {
			cfg.Output = schema.JSONOut
		}
		author, _ := cmd.Flags().GetString("author")
		cfg.PRNumber, _ = cmd.Flags().GetInt("pr")

		meta := schema.CommentMeta{CreatedAt: time.Now().UTC()}
		meta.Hypervisor, _ = cmd.Flags().GetString("hypervisor")
		meta.Version, _ = cmd.Flags().GetString("hypervisor-version")
		meta.LogsURL, _ = cmd.Flags().GetString("logs-url")

		if err := core.ExecuteParse(cfg, body, author, meta); err != nil {
			contract.LogFatal("Cannot print parsed comment", err)
		}
	},
}

// readCommentBody reads the named file, or stdin when no file is given.
func readCommentBody(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
