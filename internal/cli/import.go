package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/foodmap/internal/backup"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		mode string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "import <backup-file>",
		Short: "Restore places from a JSON backup",
		Long: `Restore places from a JSON backup written by export.

Modes:
  merge    keep existing places; a backup entry with the same name as an
           existing place overwrites it, all others are added
  replace  delete every existing place, then add the backup's entries

The backup is checked in full before anything is written, and the write is a
single transaction: either every entry lands or none does.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], mode, yes, cmd)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(backup.ModeMerge), "import mode (merge|replace)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runImport(opts *RootOptions, path, modeFlag string, yes bool, cmd *cobra.Command) error {
	formatter, err := opts.prepare(cmd)
	if err != nil {
		return err
	}

	mode, err := backup.ParseMode(modeFlag)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err.Error(), err)
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("backup file not found: %s", path), err)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("cannot read %s: %v", path, err), err)
	}
	formatter.VerboseLog("Read %d bytes from %s", len(raw), path)

	if !yes {
		ok, err := confirm(cmd.InOrStdin(), formatter.GetErrWriter(), importPrompt(mode))
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "cannot read confirmation", err)
		}
		if !ok {
			return formatter.Result(map[string]bool{"cancelled": true}, "Import cancelled")
		}
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	reconciler := backup.NewReconciler(st, opts.settingsFile(), opts.backupOptions()...)
	res, err := reconciler.Reconcile(cmd.Context(), raw, mode)
	switch {
	case err == nil:
	case backup.IsParseError(err):
		return formatter.Fail(ExitFailure, ErrCodeParse, err.Error(), err)
	case backup.IsFormatError(err):
		return formatter.Fail(ExitFailure, ErrCodeFormat, err.Error(), err)
	case backup.IsTransactionError(err):
		return formatter.Fail(ExitFailure, ErrCodeTransaction, err.Error(), err)
	default:
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), err)
	}

	if res.SettingsErr != nil {
		fmt.Fprintf(formatter.GetErrWriter(), "Warning: places imported but settings were not saved: %v\n", res.SettingsErr)
	}

	if formatter.IsJSON() {
		return formatter.SuccessWithRunID(res, res.RunID)
	}
	return formatter.Success(importSummary(res))
}

func importPrompt(mode backup.Mode) string {
	var b strings.Builder
	if mode == backup.ModeReplace {
		b.WriteString("Replace ALL existing places with the backup? Places not in the backup will be lost.\n")
	} else {
		b.WriteString("Merge the backup into the catalog? Places with the same name will be overwritten.\n")
	}
	b.WriteString("Export a backup of the current catalog first if you may need it.\n")
	b.WriteString("Continue? [y/N] ")
	return b.String()
}

func importSummary(res backup.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Import complete (%s)\n", res.Mode)
	fmt.Fprintf(&b, "  Added:   %d\n", res.Added)
	fmt.Fprintf(&b, "  Updated: %d", res.Updated)
	if res.ImagesRejected > 0 {
		fmt.Fprintf(&b, "\n  Menu images dropped: %d", res.ImagesRejected)
	}
	if res.SettingsApplied {
		b.WriteString("\n  Settings restored")
	}
	return b.String()
}

// confirm writes prompt to w and reads a yes/no answer from r.
// Anything but "y" or "yes" is a no, including end of input.
func confirm(r io.Reader, w io.Writer, prompt string) (bool, error) {
	fmt.Fprint(w, prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
