package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/ssv/internal/host"
	"github.com/rileyhilliard/ssv/internal/ui"
	"github.com/spf13/cobra"
)

func newListCmd(g *globalOptions) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List managed hosts",
		Long: `List every host with a fragment in ~/.ssh/conf.d, sorted by name.

With --long, show each host's HostName, User, Port, and key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, g, long)
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "show host details in a table")
	return cmd
}

func runList(cmd *cobra.Command, g *globalOptions, long bool) error {
	_, mgr, err := loadManager(g, nil)
	if err != nil {
		return err
	}

	hosts, err := mgr.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if !long {
		if g.json {
			if hosts == nil {
				hosts = []string{}
			}
			return WriteJSONSuccess(out, hosts)
		}
		if len(hosts) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.MutedStyle().Render("No managed hosts"))
			return nil
		}
		for _, h := range hosts {
			fmt.Fprintln(out, h)
		}
		return nil
	}

	infos := make([]*host.HostInfo, 0, len(hosts))
	for _, h := range hosts {
		info, err := mgr.Show(h)
		if err != nil {
			return err
		}
		infos = append(infos, info)
	}

	if g.json {
		return WriteJSONSuccess(out, infos)
	}
	if len(infos) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.MutedStyle().Render("No managed hosts"))
		return nil
	}

	fmt.Fprint(out, ui.RenderSimpleTable(listColumns, listRows(infos)))
	fmt.Fprintln(out)
	return nil
}

var listColumns = []ui.TableColumn{
	{Title: "HOST", Width: 4},
	{Title: "HOSTNAME", Width: 8},
	{Title: "USER", Width: 4},
	{Title: "PORT", Width: 4},
	{Title: "KEY", Width: 3},
}

func listRows(infos []*host.HostInfo) [][]string {
	rows := make([][]string, len(infos))
	for i, info := range infos {
		keys := make([]string, len(info.IdentityFiles))
		for j, f := range info.IdentityFiles {
			keys[j] = filepath.Base(f)
		}
		rows[i] = []string{
			info.Host,
			info.HostName,
			dash(info.User),
			dash(info.Port),
			dash(strings.Join(keys, ",")),
		}
	}
	return rows
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
