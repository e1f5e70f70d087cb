// Package sshutil reads OpenSSH client configuration and key material.
package sshutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// SSHHostEntry represents a parsed host entry from SSH config.
type SSHHostEntry struct {
	Alias          string   // The Host pattern (alias)
	Hostname       string   // The HostName value (actual host to connect to)
	User           string   // The User value
	Port           string   // The Port value
	IdentityFiles  []string // IdentityFile values, unexpanded
	IdentitiesOnly bool
}

// Description returns a user-friendly description of the host.
func (h SSHHostEntry) Description() string {
	parts := []string{}

	if h.Hostname != "" && h.Hostname != h.Alias {
		parts = append(parts, h.Hostname)
	}

	if h.User != "" {
		parts = append(parts, "user: "+h.User)
	}

	if h.Port != "" && h.Port != "22" {
		parts = append(parts, "port: "+h.Port)
	}

	if len(parts) == 0 {
		return h.Alias
	}

	return strings.Join(parts, ", ")
}

// ParseSSHConfigFile parses the specified SSH config file. A missing file
// yields no entries and no error.
func ParseSSHConfigFile(configPath string) ([]SSHHostEntry, error) {
	content, err := readUntilMatch(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return ParseSSHConfig(content)
}

// ParseSSHConfig parses SSH client configuration text and returns every
// concrete host alias it declares, sorted. Wildcard patterns are skipped.
func ParseSSHConfig(content []byte) ([]SSHHostEntry, error) {
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var hosts []SSHHostEntry
	seen := make(map[string]bool)

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()

			if strings.ContainsAny(alias, "*?!") {
				continue
			}
			if seen[alias] {
				continue
			}
			seen[alias] = true

			entry := SSHHostEntry{Alias: alias}

			if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
				entry.Hostname = hostname
			}
			if user, _ := cfg.Get(alias, "User"); user != "" {
				entry.User = user
			}
			if port, _ := cfg.Get(alias, "Port"); port != "" {
				entry.Port = port
			}
			if only, _ := cfg.Get(alias, "IdentitiesOnly"); strings.EqualFold(only, "yes") {
				entry.IdentitiesOnly = true
			}
			if identities, _ := cfg.GetAll(alias, "IdentityFile"); len(identities) > 0 {
				for _, identity := range identities {
					entry.IdentityFiles = append(entry.IdentityFiles, strings.Trim(identity, `"`))
				}
			}

			hosts = append(hosts, entry)
		}
	}

	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Alias < hosts[j].Alias
	})

	return hosts, nil
}

// IncludesPattern reports whether the config at configPath has an Include
// directive whose argument, after expanding a leading "~/" against home,
// equals pattern. A missing file reports false.
func IncludesPattern(configPath, home, pattern string) (bool, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	want := expandHome(pattern, home)
	for _, line := range strings.Split(string(content), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.EqualFold(fields[0], "Include") {
			continue
		}
		for _, arg := range fields[1:] {
			if expandHome(strings.Trim(arg, `"`), home) == want {
				return true, nil
			}
		}
	}
	return false, nil
}

// readUntilMatch returns config content up to the first Match directive,
// which ssh_config cannot decode.
func readUntilMatch(configPath string) ([]byte, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	for _, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), nil
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	if !filepath.IsAbs(path) {
		// Include paths without a leading / are relative to ~/.ssh.
		return filepath.Join(home, ".ssh", path)
	}
	return filepath.Clean(path)
}
