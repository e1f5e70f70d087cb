package cli

import (
	"fmt"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/host"
	"github.com/rileyhilliard/ssv/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newShowCmd(g *globalOptions) *cobra.Command {
	var hostName string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a managed host's config and key",
		Long: `Show the Host block, identity files, public key and fingerprint of a
managed host, as YAML (or JSON with --json).

Without --host, pick from the managed hosts interactively.

Examples:
  ssv show --host github.com
  ssv show --host github.com --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, g, hostName)
		},
	}

	cmd.Flags().StringVar(&hostName, "host", "", "managed host to show")
	return cmd
}

func runShow(cmd *cobra.Command, g *globalOptions, hostName string) error {
	_, mgr, err := loadManager(g, nil)
	if err != nil {
		return err
	}

	if hostName == "" {
		hostName, err = pickHost(mgr, g, "Select host to show")
		if err != nil || hostName == "" {
			return err
		}
	}

	info, err := mgr.Show(hostName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if g.json {
		return WriteJSONSuccess(out, info)
	}

	data, err := yaml.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "Failed to render host details")
	}
	_, err = out.Write(data)
	return err
}

// pickHost asks the user to choose a managed host. It needs a terminal and
// at least one host; an aborted prompt returns "".
func pickHost(mgr *host.Manager, g *globalOptions, title string) (string, error) {
	if g.json || !ui.IsInteractive() {
		return "", errors.New(errors.ErrValidation,
			"--host is required",
			"Pass --host <name>, or run 'ssv list' to see managed hosts")
	}

	hosts, err := mgr.List()
	if err != nil {
		return "", err
	}
	if len(hosts) == 0 {
		return "", errors.New(errors.ErrNotFound,
			"No managed hosts",
			"Create one with: ssv generate --host <name>")
	}

	name, err := ui.SelectHost(title, hosts)
	if err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("%s failed", title))
	}
	return name, nil
}
