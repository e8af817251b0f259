package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/foodmap/internal/backup"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool             `json:"valid"`
	Stores   int              `json:"stores"`
	Problems []backup.Problem `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <backup-file>",
		Short: "Check a backup file without importing it",
		Long: `Check a JSON backup against the backup schema without touching the catalog.

Every problem is reported, not just the first. A backup that validates
cleanly will import.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter, err := opts.prepare(cmd)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("backup file not found: %s", path), err)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("cannot read %s: %v", path, err), err)
	}

	problems, err := backup.Lint(raw)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeParse, err.Error(), err)
	}

	if len(problems) > 0 {
		if formatter.IsJSON() {
			_ = formatter.Error(ErrCodeLint, "backup is invalid", ValidationResult{Problems: problems})
		} else {
			var b strings.Builder
			fmt.Fprintf(&b, "✗ %d problem(s) in %s\n", len(problems), path)
			for _, p := range problems {
				fmt.Fprintf(&b, "  %s\n", p)
			}
			fmt.Fprint(formatter.Writer, b.String())
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation problem(s)", len(problems)))
	}

	// Lint passed, so Decode cannot fail on shape; it gives the record count.
	payload, err := backup.Decode(raw)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeFormat, err.Error(), err)
	}
	formatter.VerboseLog("Backup version %d", payload.Version)

	return formatter.Result(
		ValidationResult{Valid: true, Stores: len(payload.Stores)},
		fmt.Sprintf("✓ Backup is valid (%d place(s))", len(payload.Stores)),
	)
}
