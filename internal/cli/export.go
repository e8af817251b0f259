package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/foodmap/internal/backup"
)

// ExportResult summarises a written backup.
type ExportResult struct {
	File   string `json:"file"`
	Stores int    `json:"stores"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole catalog to a JSON backup",
		Long: `Write every place and the display settings to a JSON backup file.

The default file name is food-map-backup-YYYY-MM-DD.json in the current
directory. Use "-o -" to write the backup to stdout.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, output, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `backup file ("-" for stdout)`)

	return cmd
}

func runExport(opts *RootOptions, output string, cmd *cobra.Command) error {
	formatter, err := opts.prepare(cmd)
	if err != nil {
		return err
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	exporter := backup.NewExporter(st, opts.settingsFile(), opts.backupOptions()...)

	// Raw backup on stdout; no envelope so it can be piped into a file.
	if output == "-" {
		if _, err := exporter.Write(cmd.Context(), cmd.OutOrStdout()); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), err)
		}
		return nil
	}

	if output == "" {
		output = exporter.FileName()
	}

	f, err := os.Create(output)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("cannot create %s: %v", output, err), err)
	}

	p, err := exporter.Write(cmd.Context(), f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(output)
		return formatter.Fail(ExitFailure, ErrCodeWriteFailed, err.Error(), err)
	}

	formatter.VerboseLog("Wrote %s", output)
	return formatter.Result(
		ExportResult{File: output, Stores: len(p.Stores)},
		fmt.Sprintf("✓ Exported %d place(s) to %s", len(p.Stores), output),
	)
}
