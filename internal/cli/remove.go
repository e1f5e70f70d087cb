package cli

import (
	"fmt"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/host"
	"github.com/rileyhilliard/ssv/internal/ui"
	"github.com/spf13/cobra"
)

type removeOptions struct {
	host string
	yes  bool
}

func newRemoveCmd(g *globalOptions) *cobra.Command {
	o := &removeOptions{}

	cmd := &cobra.Command{
		Use:     "remove",
		Aliases: []string{"rm"},
		Short:   "Delete a host's keys and config fragment",
		Long: `Remove a managed host: its conf.d fragment and the key pairs the fragment
points at. Nothing outside ~/.ssh is ever deleted, and keys another managed
host still uses are left alone.

Removing a host that is already gone succeeds.

On a terminal you are asked to confirm; --yes skips the question.

Examples:
  ssv remove --host old-box
  ssv remove --host old-box --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, g, o)
		},
	}

	cmd.Flags().StringVar(&o.host, "host", "", "managed host to remove")
	cmd.Flags().BoolVarP(&o.yes, "yes", "y", false, "don't ask for confirmation")
	return cmd
}

func runRemove(cmd *cobra.Command, g *globalOptions, o *removeOptions) error {
	_, mgr, err := loadManager(g, nil)
	if err != nil {
		return err
	}

	name := o.host
	if name == "" {
		name, err = pickHost(mgr, g, "Select host to remove")
		if err != nil || name == "" {
			return err
		}
	}
	if err := host.ValidateHost(name); err != nil {
		return err
	}

	if !o.yes && !g.json && ui.IsInteractive() {
		ok, err := ui.Confirm(
			fmt.Sprintf("Remove %s?", name),
			"Deletes its config fragment and SSH keys. This cannot be undone.")
		if err != nil {
			return errors.Wrap(err, "Confirmation prompt failed")
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.MutedStyle().Render("Cancelled"))
			return nil
		}
	}

	report, err := mgr.RemoveWithReport(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if g.json {
		return WriteJSONSuccess(out, report)
	}

	if !report.ConfigRemoved && len(report.Removed) == 0 {
		fmt.Fprintf(out, "%s %s\n", ui.MutedStyle().Render(ui.SymbolSkipped), fmt.Sprintf("Nothing to remove for %s", name))
	} else {
		ui.PrintSuccess(out, "Removed %s", name)
		if report.ConfigRemoved {
			fmt.Fprintf(out, "  %s\n", ui.MutedStyle().Render(mgr.Paths().HostConfig(name)))
		}
		for _, p := range report.Removed {
			fmt.Fprintf(out, "  %s\n", ui.MutedStyle().Render(p))
		}
	}
	for _, r := range report.Rejected {
		ui.PrintWarning("Kept %s (%s)", r.Ref, r.Reason)
	}
	return nil
}
