package host

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/paths"
)

// ListHosts returns the managed hosts found in confDir, sorted.
// A missing confDir means nothing is managed yet and yields an empty list.
func ListHosts(confDir string) ([]string, error) {
	entries, err := os.ReadDir(confDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to read %s", confDir),
			"Check permissions on ~/.ssh/conf.d")
	}

	hosts := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, paths.ConfigSuffix) {
			continue
		}
		stem := strings.TrimSuffix(name, paths.ConfigSuffix)
		if stem == "" {
			continue
		}
		hosts = append(hosts, stem)
	}

	sort.Strings(hosts)
	return hosts, nil
}
