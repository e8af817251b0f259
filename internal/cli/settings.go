package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSettingsCommand creates the settings command with its show and set subcommands.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change display settings",
		Long: `Show or change the display settings. They are stored next to the
database (see settings.path) and travel with every backup.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newSettingsShowCommand(rootOpts))
	cmd.AddCommand(newSettingsSetCommand(rootOpts))

	return cmd
}

func newSettingsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the current settings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := rootOpts.prepare(cmd)
			if err != nil {
				return err
			}
			s, err := rootOpts.settingsFile().Load(cmd.Context())
			if err != nil {
				return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Show announcement: %t\n", s.ShowAnnouncement)
			b.WriteString("Announcement:\n")
			for _, line := range strings.Split(s.AnnouncementContent, "\n") {
				b.WriteString("  " + line + "\n")
			}
			return formatter.Result(s, strings.TrimRight(b.String(), "\n"))
		},
	}
}

func newSettingsSetCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		show         bool
		announcement string
	)

	cmd := &cobra.Command{
		Use:           "set",
		Short:         "Change settings; only the flags given change",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := rootOpts.prepare(cmd)
			if err != nil {
				return err
			}
			file := rootOpts.settingsFile()
			s, err := file.Load(cmd.Context())
			if err != nil {
				return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), err)
			}

			if cmd.Flags().Changed("show-announcement") {
				s.ShowAnnouncement = show
			}
			if cmd.Flags().Changed("announcement") {
				s.AnnouncementContent = announcement
			}

			if err := file.Save(cmd.Context(), s); err != nil {
				return formatter.Fail(ExitFailure, ErrCodeWriteFailed, err.Error(), err)
			}
			rootOpts.logger.Info("settings saved", "path", file.Path())
			return formatter.Result(s, "✓ Settings saved")
		},
	}

	cmd.Flags().BoolVar(&show, "show-announcement", true, "show the announcement banner")
	cmd.Flags().StringVar(&announcement, "announcement", "", "announcement text")

	return cmd
}
