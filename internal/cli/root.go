package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/ssv/internal/config"
	"github.com/rileyhilliard/ssv/internal/host"
	"github.com/rileyhilliard/ssv/internal/lock"
	"github.com/rileyhilliard/ssv/internal/logger"
	"github.com/rileyhilliard/ssv/internal/paths"
	"github.com/rileyhilliard/ssv/internal/setup"
	"github.com/rileyhilliard/ssv/internal/ui"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	verbose    bool
	json       bool
	noColor    bool
}

// NewRootCmd builds the ssv command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "ssv",
		Short: "Manage SSH keys and per-host client config",
		Long: `ssv creates an SSH key pair and a matching Host stanza for each host you
work with, and removes them again without touching anything it doesn't own.

Every host gets:
  ~/.ssh/id_<type>_<host>          private key (0600)
  ~/.ssh/id_<type>_<host>.pub      public key
  ~/.ssh/conf.d/<host>.conf        Host block (0600)

Add "Include ~/.ssh/conf.d/*.conf" to ~/.ssh/config so ssh picks the
fragments up ('ssv doctor --fix' does this for you).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logger.EnableDebug()
			}
			if opts.noColor || opts.json || ui.ColorsDisabledByEnv() {
				ui.DisableColors()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "settings file (default ~/.config/ssv/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "show debug output")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "machine-readable JSON output")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newGenerateCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newRemoveCmd(opts),
		newDoctorCmd(opts),
		newCopyIDCmd(opts),
		newVersionCmd(),
		newCompletionCmd(root),
	)

	return root
}

// Execute runs ssv with the process arguments and exits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, NewRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Run executes root with args and returns the process exit status: 0 on
// success, 1 on any error. With --json the error is written to stdout as an
// envelope; otherwise it goes to stderr.
func Run(ctx context.Context, root *cobra.Command, args []string, stdout, stderr io.Writer) int {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if jsonMode, _ := root.PersistentFlags().GetBool("json"); jsonMode {
		_ = WriteJSONFromError(stdout, err)
	} else {
		fmt.Fprintln(stderr, err)
	}
	return 1
}

// loadSettings reads and validates settings, applying flag overrides.
func loadSettings(opts *globalOptions, overrides map[string]interface{}) (*config.Settings, error) {
	settings, err := config.Load(config.LoadOptions{
		ConfigFile: opts.configFile,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, err
	}
	if err := config.Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// newManager wires a host.Manager from settings: the layout under the
// user's home, the configured key backend, and the advisory lock.
func newManager(settings *config.Settings) (*host.Manager, error) {
	resolver, err := paths.New(settings.Home)
	if err != nil {
		return nil, err
	}

	log := logger.NewEnvLogger("[ssv]")
	provisioner, err := setup.FromSettings(settings, log)
	if err != nil {
		return nil, err
	}

	mopts := []host.Option{host.WithLogger(log)}
	if settings.Lock {
		mopts = append(mopts, host.WithLocker(lock.NewFileLocker(settings.LockPath())))
	}

	return host.NewManager(resolver, provisioner, mopts...), nil
}

// loadManager is loadSettings followed by newManager.
func loadManager(opts *globalOptions, overrides map[string]interface{}) (*config.Settings, *host.Manager, error) {
	settings, err := loadSettings(opts, overrides)
	if err != nil {
		return nil, nil, err
	}
	mgr, err := newManager(settings)
	if err != nil {
		return nil, nil, err
	}
	return settings, mgr, nil
}
