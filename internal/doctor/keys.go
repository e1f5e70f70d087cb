package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rileyhilliard/ssv/internal/host"
	"github.com/rileyhilliard/ssv/internal/paths"
	"github.com/rileyhilliard/ssv/internal/util"
)

// OrphanKeysCheck finds managed-looking keys whose host has no fragment.
type OrphanKeysCheck struct {
	Paths *paths.Resolver
}

func (c *OrphanKeysCheck) Name() string     { return "orphan_keys" }
func (c *OrphanKeysCheck) Category() string { return "KEYS" }

func (c *OrphanKeysCheck) Run() CheckResult {
	hosts, err := host.ListHosts(c.Paths.ConfDir())
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Cannot list managed hosts",
			Suggestion: fmt.Sprintf("Error: %v", err),
		}
	}
	managed := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		managed[h] = true
	}

	entries, err := os.ReadDir(c.Paths.Root())
	if err != nil && !os.IsNotExist(err) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot read %s", c.Paths.Root()),
			Suggestion: fmt.Sprintf("Error: %v", err),
		}
	}

	var orphans []string
	orphanHosts := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		_, h, ok := host.ParseKeyName(e.Name())
		if !ok || managed[h] {
			continue
		}
		orphans = append(orphans, e.Name())
		orphanHosts[h] = true
	}

	if len(orphans) == 0 {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Every managed key has a host config",
		}
	}

	names := make([]string, 0, len(orphanHosts))
	for h := range orphanHosts {
		names = append(names, h)
	}
	sort.Strings(names)

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusWarn,
		Message: fmt.Sprintf("Keys without a host config: %s", strings.Join(orphans, ", ")),
		Suggestion: fmt.Sprintf("If they are leftovers, remove them with: ssv remove --host %s",
			strings.Join(names, " / ")),
	}
}

// Fix never deletes keys on its own.
func (c *OrphanKeysCheck) Fix() error {
	return nil
}

// MissingIdentityCheck finds fragments whose identity file is gone.
type MissingIdentityCheck struct {
	Paths *paths.Resolver
}

func (c *MissingIdentityCheck) Name() string     { return "missing_identity" }
func (c *MissingIdentityCheck) Category() string { return "KEYS" }

func (c *MissingIdentityCheck) Run() CheckResult {
	hosts, err := host.ListHosts(c.Paths.ConfDir())
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Cannot list managed hosts",
			Suggestion: fmt.Sprintf("Error: %v", err),
		}
	}

	var broken []string
	for _, h := range hosts {
		data, err := os.ReadFile(c.Paths.HostConfig(h))
		if err != nil {
			broken = append(broken, h)
			continue
		}
		for _, ref := range host.ParseIdentityRefs(string(data)) {
			p := paths.Resolve(ref, c.Paths.Home(), c.Paths.Root())
			if _, err := os.Stat(p); os.IsNotExist(err) {
				broken = append(broken, fmt.Sprintf("%s (%s)", h, filepath.Base(p)))
				break
			}
		}
	}

	if len(broken) > 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Hosts with a missing identity file: %s", strings.Join(broken, ", ")),
			Suggestion: "Re-create them: ssv remove --host <host> && ssv generate --host <host>",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d %s, all identity files present", len(hosts), util.Pluralize(len(hosts), "host", "hosts")),
	}
}

func (c *MissingIdentityCheck) Fix() error {
	return nil
}
