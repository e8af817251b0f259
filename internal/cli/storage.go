package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/foodmap/internal/quota"
)

// StorageReport is the JSON form of the storage command.
type StorageReport struct {
	Available bool        `json:"available"`
	Level     string      `json:"level,omitempty"`
	Info      *quota.Info `json:"info,omitempty"`
	Message   string      `json:"message"`
}

// NewStorageCommand creates the storage command.
func NewStorageCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "storage",
		Short: "Show how much space the catalog uses",
		Long: `Show the space used by the catalog database and how close it is to the quota.

The quota is quota.bytes from the configuration, or the free space on the
database's filesystem when unset.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStorage(rootOpts, cmd)
		},
	}
}

func runStorage(opts *RootOptions, cmd *cobra.Command) error {
	formatter, err := opts.prepare(cmd)
	if err != nil {
		return err
	}

	monitor := quota.NewMonitor(quota.NewDiskEstimator(opts.cfg.Store.Path, opts.cfg.Quota.Bytes), opts.logger)
	info, ok := monitor.Check(cmd.Context())
	if !ok {
		// Not a failure: some hosts cannot report usage.
		msg := "Storage information is unavailable on this system."
		return formatter.Result(StorageReport{Message: msg}, msg)
	}
	opts.metrics.RecordStorage(info.Usage, info.Quota)

	level := quota.Severity(info)
	return formatter.Result(
		StorageReport{Available: true, Level: level.String(), Info: &info, Message: quota.Advisory(info)},
		quota.Advisory(info),
	)
}
