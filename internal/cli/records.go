package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/foodmap/internal/catalog"
	"github.com/roach88/foodmap/internal/model"
	"github.com/roach88/foodmap/internal/store"
)

// recordFlags are the editable fields shared by add and edit.
type recordFlags struct {
	name       string
	address    string
	hours      string
	threshold  string
	notes      string
	image      string
	clearImage bool
}

func (f *recordFlags) register(cmd *cobra.Command, withClear bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "place name")
	cmd.Flags().StringVar(&f.address, "address", "", "street address")
	cmd.Flags().StringVar(&f.hours, "hours", "", "opening hours (default from catalog.default_hours)")
	cmd.Flags().StringVar(&f.threshold, "threshold", "", "minimum order for delivery; empty means unknown")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&f.image, "image", "", "menu image file (PNG, JPEG, GIF or WebP)")
	if withClear {
		cmd.Flags().BoolVar(&f.clearImage, "clear-image", false, "remove the menu image")
	}
}

// apply copies the flags the user set onto form. Image files are resolved
// through svc so they get the same checks as any other upload.
func (f *recordFlags) apply(cmd *cobra.Command, svc *catalog.Service, form *catalog.Form) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		form.Name = f.name
	}
	if changed("address") {
		form.Address = f.address
	}
	if changed("hours") {
		form.OpeningHours = f.hours
	}
	if changed("threshold") {
		t, err := model.ParseThreshold(f.threshold)
		if err != nil {
			return err
		}
		form.DeliveryThreshold = t
	}
	if changed("notes") {
		form.Notes = f.notes
	}
	if f.clearImage {
		form.MenuImage = ""
	}
	if changed("image") {
		uri, err := svc.AttachImage(cmd.Context(), f.image)
		if err != nil {
			return err
		}
		form.MenuImage = uri
	}
	return nil
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var flags recordFlags

	cmd := &cobra.Command{
		Use:           "add",
		Short:         "Add a place to the catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, &flags, cmd)
		},
	}
	flags.register(cmd, false)
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runAdd(opts *RootOptions, flags *recordFlags, cmd *cobra.Command) error {
	formatter, err := opts.prepare(cmd)
	if err != nil {
		return err
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()
	svc := opts.catalogService(st)

	var form catalog.Form
	if err := flags.apply(cmd, svc, &form); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err.Error(), err)
	}

	rec, err := svc.Add(cmd.Context(), form)
	if err != nil {
		return recordFailure(formatter, err)
	}
	return formatter.Result(rec, fmt.Sprintf("✓ Added %q (id %d)", rec.Name, rec.ID))
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	var flags recordFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a place",
		Long: `Change a place. Only the fields given as flags change; the favorite flag
is kept and the place moves to the top of its group.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(rootOpts, args[0], &flags, cmd)
		},
	}
	flags.register(cmd, true)
	cmd.MarkFlagsMutuallyExclusive("image", "clear-image")

	return cmd
}

func runEdit(opts *RootOptions, idArg string, flags *recordFlags, cmd *cobra.Command) error {
	formatter, err := opts.prepare(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err.Error(), err)
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()
	svc := opts.catalogService(st)

	current, err := svc.Get(cmd.Context(), id)
	if err != nil {
		return recordFailure(formatter, err)
	}
	form := catalog.Form{
		Name:              current.Name,
		Address:           current.Address,
		OpeningHours:      current.OpeningHours,
		DeliveryThreshold: current.DeliveryThreshold,
		Notes:             current.Notes,
		MenuImage:         current.MenuImage,
	}
	if err := flags.apply(cmd, svc, &form); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err.Error(), err)
	}

	rec, err := svc.Edit(cmd.Context(), id, form)
	if err != nil {
		return recordFailure(formatter, err)
	}
	return formatter.Result(rec, fmt.Sprintf("✓ Updated %q (id %d)", rec.Name, rec.ID))
}

// NewFavoriteCommand creates the favorite command.
func NewFavoriteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "favorite <id>",
		Short:         "Pin or unpin a place",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavorite(rootOpts, args[0], cmd)
		},
	}
}

func runFavorite(opts *RootOptions, idArg string, cmd *cobra.Command) error {
	formatter, err := opts.prepare(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err.Error(), err)
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := opts.catalogService(st).ToggleFavorite(cmd.Context(), id)
	if err != nil {
		return recordFailure(formatter, err)
	}

	verb := "Unpinned"
	if rec.IsFavorite {
		verb = "★ Pinned"
	}
	return formatter.Result(rec, fmt.Sprintf("%s %q", verb, rec.Name))
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:           "delete <id>",
		Short:         "Remove a place",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], yes, cmd)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runDelete(opts *RootOptions, idArg string, yes bool, cmd *cobra.Command) error {
	formatter, err := opts.prepare(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err.Error(), err)
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()
	svc := opts.catalogService(st)

	rec, err := svc.Get(cmd.Context(), id)
	if err != nil {
		return recordFailure(formatter, err)
	}

	if !yes {
		ok, err := confirm(cmd.InOrStdin(), formatter.GetErrWriter(), fmt.Sprintf("Delete %q? [y/N] ", rec.Name))
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "cannot read confirmation", err)
		}
		if !ok {
			return formatter.Result(map[string]bool{"cancelled": true}, "Delete cancelled")
		}
	}

	if err := svc.Delete(cmd.Context(), id); err != nil {
		return recordFailure(formatter, err)
	}
	return formatter.Result(map[string]int64{"deleted": id}, fmt.Sprintf("✓ Deleted %q", rec.Name))
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List places, favorites first",
		Long: `List places: favorites first, then the most recently changed.

--search keeps places whose name or notes contain the text, ignoring case.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, search, cmd)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name or notes")

	return cmd
}

func runList(opts *RootOptions, search string, cmd *cobra.Command) error {
	formatter, err := opts.prepare(cmd)
	if err != nil {
		return err
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := opts.catalogService(st).Browse(cmd.Context(), search)
	if err != nil {
		return recordFailure(formatter, err)
	}

	if formatter.IsJSON() {
		return formatter.Success(records)
	}
	if len(records) == 0 {
		if search != "" {
			return formatter.Success(fmt.Sprintf("No places match %q", search))
		}
		return formatter.Success("No places yet. Add one with: foodmap add --name <name>")
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t\tNAME\tHOURS\tDELIVERY\tUPDATED")
	for _, r := range records {
		fav := ""
		if r.IsFavorite {
			fav = "★"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, fav, r.Name, r.OpeningHours, deliveryLabel(r.DeliveryThreshold), updatedLabel(r.UpdatedAt))
	}
	return tw.Flush()
}

func deliveryLabel(t model.Threshold) string {
	switch {
	case t.IsZero():
		return "-"
	case t.IsFree():
		return "free"
	default:
		return "from " + t.String()
	}
}

func updatedLabel(millis int64) string {
	if millis <= 0 {
		return "-"
	}
	return time.UnixMilli(millis).Local().Format(time.DateTime)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

// recordFailure maps catalog and store errors to exit codes.
func recordFailure(f *OutputFormatter, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return f.Fail(ExitFailure, ErrCodeNoRecord, err.Error(), err)
	case errors.Is(err, model.ErrEmptyName), errors.Is(err, catalog.ErrInvalidImage):
		return f.Fail(ExitCommandError, ErrCodeInvalidInput, err.Error(), err)
	default:
		return f.Fail(ExitFailure, ErrCodeStoreFailed, err.Error(), err)
	}
}
