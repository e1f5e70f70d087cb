package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/ssv/internal/paths"
	"github.com/rileyhilliard/ssv/pkg/sshutil"
)

// IncludeDirective is the line that makes ssh read the managed fragments.
// It has to come before any Host block in ~/.ssh/config.
const IncludeDirective = "Include ~/.ssh/conf.d/*.conf"

// IncludeCheck verifies ~/.ssh/config pulls in the managed fragments.
type IncludeCheck struct {
	Paths *paths.Resolver
}

func (c *IncludeCheck) Name() string     { return "ssh_config_include" }
func (c *IncludeCheck) Category() string { return "SSH" }

func (c *IncludeCheck) configPath() string {
	return filepath.Join(c.Paths.Root(), "config")
}

func (c *IncludeCheck) Run() CheckResult {
	ok, err := sshutil.IncludesPattern(c.configPath(), c.Paths.Home(), "~/.ssh/conf.d/*.conf")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot read %s", c.configPath()),
			Suggestion: fmt.Sprintf("Error: %v", err),
		}
	}
	if !ok {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "ssh does not read ~/.ssh/conf.d yet",
			Suggestion: fmt.Sprintf("Add '%s' at the top of ~/.ssh/config, or run 'ssv doctor --fix'", IncludeDirective),
			Fixable:    true,
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "~/.ssh/config includes managed hosts",
	}
}

// Fix prepends the Include line to ~/.ssh/config, creating it if needed.
func (c *IncludeCheck) Fix() error {
	if err := c.Paths.EnsureBaseDirs(); err != nil {
		return err
	}

	path := c.configPath()
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	mode := paths.FileMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	content := IncludeDirective + "\n"
	if len(existing) > 0 {
		content += "\n" + string(existing)
	}
	return os.WriteFile(path, []byte(content), mode)
}
