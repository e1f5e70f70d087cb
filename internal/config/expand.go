package config

import (
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the given home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path, home string) string {
	if path == "" || home == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}

	if path == "~" {
		return home
	}

	return path
}
