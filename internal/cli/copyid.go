package cli

import (
	"fmt"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/setup"
	"github.com/rileyhilliard/ssv/internal/ui"
	"github.com/spf13/cobra"
)

type copyIDOptions struct {
	host   string
	target string
	manual bool
}

func newCopyIDCmd(g *globalOptions) *cobra.Command {
	o := &copyIDOptions{}

	cmd := &cobra.Command{
		Use:   "copy-id",
		Short: "Install a managed host's public key on the remote account",
		Long: `Append a managed host's public key to the remote authorized_keys using
ssh-copy-id. --target defaults to the host name, so the Host block written
by 'ssv generate' supplies the user and port.

With --manual, print the commands to do it by hand instead.

Examples:
  ssv copy-id --host prod-1
  ssv copy-id --host prod-1 --target deploy@10.0.0.5
  ssv copy-id --host prod-1 --manual`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopyID(cmd, g, o)
		},
	}

	cmd.Flags().StringVar(&o.host, "host", "", "managed host whose key to install (required)")
	cmd.Flags().StringVar(&o.target, "target", "", "ssh destination (default: the host name)")
	cmd.Flags().BoolVar(&o.manual, "manual", false, "print manual instructions instead of running ssh-copy-id")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}

func runCopyID(cmd *cobra.Command, g *globalOptions, o *copyIDOptions) error {
	_, mgr, err := loadManager(g, nil)
	if err != nil {
		return err
	}

	info, err := mgr.Show(o.host)
	if err != nil {
		return err
	}
	pubKey := info.PublicKeyPath
	if pubKey == "" {
		return errors.New(errors.ErrNotFound,
			fmt.Sprintf("No managed key found for %s", o.host),
			"Check the IdentityFile line in "+info.ConfigPath)
	}

	target := o.target
	if target == "" {
		target = o.host
	}

	out := cmd.OutOrStdout()
	if o.manual {
		fmt.Fprintln(out, setup.CopyKeyManual(target, pubKey))
		return nil
	}

	if err := setup.CopyKey(cmd.Context(), setup.DefaultCopyProgram, target, pubKey); err != nil {
		return err
	}

	if g.json {
		return WriteJSONSuccess(out, map[string]string{"host": o.host, "target": target, "public_key_path": pubKey})
	}
	ui.PrintSuccess(out, "Installed %s on %s", pubKey, target)
	return nil
}
