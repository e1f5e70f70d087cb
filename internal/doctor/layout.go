package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/ssv/internal/host"
	"github.com/rileyhilliard/ssv/internal/paths"
)

// DirPermsCheck verifies a managed directory exists with owner-only access.
type DirPermsCheck struct {
	Label string // "root" or "conf.d"
	Path  string
	Paths *paths.Resolver
}

func (c *DirPermsCheck) Name() string     { return "dir_perms_" + c.Label }
func (c *DirPermsCheck) Category() string { return "LAYOUT" }

func (c *DirPermsCheck) Run() CheckResult {
	info, err := os.Stat(c.Path)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s does not exist yet", c.Path),
			Suggestion: "It is created on the first 'ssv generate', or now with --fix",
			Fixable:    true,
		}
	}
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot inspect %s", c.Path),
			Suggestion: fmt.Sprintf("Error: %v", err),
		}
	}
	if !info.IsDir() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s is not a directory", c.Path),
			Suggestion: "Move the file out of the way so ssv can create the directory",
		}
	}

	if perm := info.Mode().Perm(); perm != paths.DirMode {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s has mode %04o, want %04o", c.Path, perm, paths.DirMode),
			Suggestion: fmt.Sprintf("Fix: chmod 700 %s", c.Path),
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s is private", c.Path),
	}
}

// Fix creates both managed directories and forces their mode.
func (c *DirPermsCheck) Fix() error {
	return c.Paths.EnsureBaseDirs()
}

// FilePermsCheck flags fragments and private keys readable by group or others.
type FilePermsCheck struct {
	Paths *paths.Resolver

	loose []string
}

func (c *FilePermsCheck) Name() string     { return "file_perms" }
func (c *FilePermsCheck) Category() string { return "LAYOUT" }

func (c *FilePermsCheck) Run() CheckResult {
	c.loose = c.loose[:0]

	for _, p := range c.managedFiles() {
		info, err := os.Lstat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if info.Mode().Perm()&0o077 != 0 {
			c.loose = append(c.loose, p)
		}
	}

	if len(c.loose) > 0 {
		names := make([]string, len(c.loose))
		for i, p := range c.loose {
			names[i] = filepath.Base(p)
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Insecure permissions on: %s", strings.Join(names, ", ")),
			Suggestion: "Fix: chmod 600 on each file, or run 'ssv doctor --fix'",
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Fragment and key permissions OK",
	}
}

// Fix chmods every file the last Run flagged to 0600.
func (c *FilePermsCheck) Fix() error {
	if len(c.loose) == 0 {
		c.Run()
	}
	for _, p := range c.loose {
		if err := os.Chmod(p, paths.FileMode); err != nil {
			return err
		}
	}
	return nil
}

// managedFiles returns every fragment and every managed private key.
func (c *FilePermsCheck) managedFiles() []string {
	var files []string

	hosts, _ := host.ListHosts(c.Paths.ConfDir())
	for _, h := range hosts {
		files = append(files, c.Paths.HostConfig(h))
	}

	entries, err := os.ReadDir(c.Paths.Root())
	if err != nil {
		return files
	}
	for _, e := range entries {
		if _, _, ok := host.ParseKeyName(e.Name()); ok {
			files = append(files, filepath.Join(c.Paths.Root(), e.Name()))
		}
	}
	return files
}
