package cli

import (
	"fmt"

	"github.com/rileyhilliard/ssv/internal/host"
	"github.com/rileyhilliard/ssv/internal/ui"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	host    string
	keyType string
	user    string
	port    string
	backend string
}

func newGenerateCmd(g *globalOptions) *cobra.Command {
	o := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create a key pair and config fragment for a host",
		Long: `Generate a new SSH key pair for a host and write its Host block to
~/.ssh/conf.d/<host>.conf.

Refuses to run if the key or the fragment already exists. Remove the host
first to start over.

Examples:
  ssv generate --host github.com
  ssv generate --host prod-1 --user deploy --port 2222
  ssv generate --host legacy --type rsa --backend builtin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, g, o)
		},
	}

	cmd.Flags().StringVar(&o.host, "host", "", "host to manage (required)")
	cmd.Flags().StringVarP(&o.keyType, "type", "t", "", "key type: ed25519, rsa, ecdsa, dsa (default from settings)")
	cmd.Flags().StringVarP(&o.user, "user", "u", "", "remote user for the Host block")
	cmd.Flags().StringVarP(&o.port, "port", "p", "", "remote port for the Host block")
	cmd.Flags().StringVar(&o.backend, "backend", "", "key generator: exec or builtin (default from settings)")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}

func runGenerate(cmd *cobra.Command, g *globalOptions, o *generateOptions) error {
	port, err := host.ParsePort(o.port)
	if err != nil {
		return err
	}

	overrides := map[string]interface{}{}
	if o.backend != "" {
		overrides["keygen_backend"] = o.backend
	}
	if o.keyType != "" {
		overrides["key_type"] = o.keyType
	}

	settings, mgr, err := loadManager(g, overrides)
	if err != nil {
		return err
	}

	req := host.GenerateRequest{
		Host:    o.host,
		KeyType: settings.KeyType,
		User:    o.user,
		Port:    port,
	}

	var spinner *ui.Spinner
	if !g.json {
		spinner = ui.NewSpinner(fmt.Sprintf("Generating %s key for %s", req.KeyType, req.Host), cmd.ErrOrStderr())
		spinner.Start()
	}

	res, err := mgr.Generate(cmd.Context(), req)
	if spinner != nil {
		if err != nil {
			spinner.Fail()
		} else {
			spinner.Success()
		}
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if g.json {
		return WriteJSONSuccess(out, res)
	}

	fmt.Fprintf(out, "  %s %s\n", ui.MutedStyle().Render("private:"), res.PrivateKeyPath)
	fmt.Fprintf(out, "  %s %s\n", ui.MutedStyle().Render("public: "), res.PublicKeyPath)
	fmt.Fprintf(out, "  %s %s\n", ui.MutedStyle().Render("config: "), res.ConfigPath)
	if res.Fingerprint != "" {
		fmt.Fprintf(out, "  %s %s\n", ui.MutedStyle().Render("fingerprint:"), ui.InfoStyle().Render(res.Fingerprint))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, res.PublicKey)
	return nil
}
