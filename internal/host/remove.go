package host

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/logger"
	"github.com/rileyhilliard/ssv/internal/paths"
)

// RemoveReport describes what a removal touched.
type RemoveReport struct {
	Host          string `json:"host"`
	ConfigRemoved bool   `json:"config_removed"`
	// Removed lists every key file that was deleted.
	Removed []string `json:"removed"`
	// Rejected lists identity references that were not acted on, with the reason.
	Rejected []RejectedRef `json:"rejected,omitempty"`
	// Guessed is true when candidates came from the filename fallback.
	Guessed bool `json:"guessed,omitempty"`
}

// RejectedRef is an IdentityFile reference removal refused to follow.
type RejectedRef struct {
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

// Remover deletes a host's fragment and key pairs without ever touching a
// file outside the managed root.
type Remover struct {
	paths *paths.Resolver
	log   logger.Logger
}

// NewRemover creates a Remover over the given layout.
func NewRemover(p *paths.Resolver, log logger.Logger) *Remover {
	if log == nil {
		log = logger.Noop()
	}
	return &Remover{paths: p, log: log}
}

// Remove deletes host's fragment and every identity file it owns.
//
// Identity files come from the fragment's IdentityFile lines. References
// that resolve outside the managed root, into conf.d, or onto a key another
// fragment claims are dropped. When nothing usable remains, keys are guessed
// by name (id_*_<host>). Missing files are not an error, so Remove can be
// repeated safely.
func (rm *Remover) Remove(host string) (*RemoveReport, error) {
	if err := ValidateHost(host); err != nil {
		return nil, err
	}
	if err := rm.paths.EnsureBaseDirs(); err != nil {
		return nil, err
	}

	report := &RemoveReport{Host: host}
	configPath := rm.paths.HostConfig(host)

	var refs []string
	if data, err := os.ReadFile(configPath); err == nil {
		refs = ParseIdentityRefs(string(data))
	} else if !os.IsNotExist(err) {
		rm.log.Warn("cannot read %s, ignoring its IdentityFile lines: %v", configPath, err)
	}

	candidates := rm.filterRefs(host, refs, report)

	removed, err := removeIfExists(configPath)
	if err != nil {
		return report, err
	}
	report.ConfigRemoved = removed

	if len(candidates) == 0 {
		candidates = rm.guessIdentityFiles(host)
		report.Guessed = len(candidates) > 0
		if report.Guessed {
			rm.log.Debug("no usable IdentityFile for %s, guessed %v", host, candidates)
		}
	}

	for _, private := range candidates {
		for _, p := range []string{private, paths.PublicKeyPath(private)} {
			ok, err := rm.removeKeyFile(p)
			if err != nil {
				return report, err
			}
			if ok {
				report.Removed = append(report.Removed, p)
			}
		}
	}

	return report, nil
}

// reservedFiles are files directly under the managed root that ssh itself
// owns. They are never deleted even if a fragment names them.
var reservedFiles = map[string]bool{
	"config":           true,
	"known_hosts":      true,
	"known_hosts.old":  true,
	"authorized_keys":  true,
	"authorized_keys2": true,
	"environment":      true,
	"rc":               true,
}

// filterRefs resolves refs and keeps only those that are safe to delete on
// behalf of host.
func (rm *Remover) filterRefs(host string, refs []string, report *RemoveReport) []string {
	if len(refs) == 0 {
		return nil
	}

	home, root, confDir := rm.paths.Home(), rm.paths.Root(), rm.paths.ConfDir()
	claims := rm.claimedByOthers(host)

	var out []string
	seen := make(map[string]bool)

	reject := func(ref, reason string) {
		rm.log.Warn("not removing %q for %s: %s", ref, host, reason)
		report.Rejected = append(report.Rejected, RejectedRef{Ref: ref, Reason: reason})
	}

	for _, ref := range refs {
		p, ok := paths.Contain(ref, home, root)
		if !ok {
			reject(ref, "outside "+root)
			continue
		}
		if p == confDir || paths.Within(confDir, p) {
			reject(ref, "inside "+confDir)
			continue
		}
		if filepath.Dir(p) == root && reservedFiles[filepath.Base(p)] {
			reject(ref, "reserved ssh file")
			continue
		}
		if owner, claimed := claims[p]; claimed && !MatchesKeyPattern(host, filepath.Base(p)) {
			reject(ref, fmt.Sprintf("also used by host '%s'", owner))
			continue
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}

	return out
}

// claimedByOthers maps identity paths referenced by other hosts' fragments
// to the host that references them. Unreadable fragments are skipped.
func (rm *Remover) claimedByOthers(host string) map[string]string {
	claims := make(map[string]string)

	others, err := ListHosts(rm.paths.ConfDir())
	if err != nil {
		rm.log.Debug("cannot scan other fragments: %v", err)
		return claims
	}

	for _, other := range others {
		if other == host {
			continue
		}
		data, err := os.ReadFile(rm.paths.HostConfig(other))
		if err != nil {
			continue
		}
		for _, ref := range ParseIdentityRefs(string(data)) {
			if p, ok := paths.Contain(ref, rm.paths.Home(), rm.paths.Root()); ok {
				if _, exists := claims[p]; !exists {
					claims[p] = other
				}
			}
		}
	}

	return claims
}

// guessIdentityFiles scans the managed root for private keys named after host.
func (rm *Remover) guessIdentityFiles(host string) []string {
	root := rm.paths.Root()
	entries, err := os.ReadDir(root)
	if err != nil {
		rm.log.Warn("cannot scan %s for keys: %v", root, err)
		return nil
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if MatchesKeyPattern(host, entry.Name()) {
			candidates = append(candidates, filepath.Join(root, entry.Name()))
		}
	}
	return candidates
}

// MatchesKeyPattern reports whether name looks like a private key generated
// for host: id_<anything>_<host>, not ending in .pub.
//
// This is a heuristic. "id_rsa_foo_bar.com" matches host "bar.com" even if it
// was made by hand for something else; it only runs when the fragment gives
// no usable IdentityFile.
func MatchesKeyPattern(host, name string) bool {
	return strings.HasPrefix(name, paths.KeyPrefix) &&
		strings.HasSuffix(name, "_"+host) &&
		!strings.HasSuffix(name, paths.PublicSuffix)
}

// removeKeyFile deletes a key file. Directories are left alone.
func (rm *Remover) removeKeyFile(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to inspect %s", path),
			"Check permissions on ~/.ssh")
	}
	if info.IsDir() {
		rm.log.Warn("not removing directory %s", path)
		return false, nil
	}

	removed, err := removeIfExists(path)
	if removed {
		rm.log.Debug("removed %s", path)
	}
	return removed, err
}

// removeIfExists deletes path, treating "already gone" as success.
func removeIfExists(path string) (bool, error) {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to remove %s", path),
			"Check permissions on ~/.ssh")
	}
	return true, nil
}

// ParseIdentityRefs returns the values of every IdentityFile directive in
// fragment text, in order. The directive name is matched case-insensitively
// and one pair of surrounding double quotes is stripped. Lines that don't
// parse are ignored.
func ParseIdentityRefs(contents string) []string {
	var refs []string
	for _, line := range strings.Split(contents, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if !strings.EqualFold(fields[0], "IdentityFile") {
			continue
		}
		ref := unquote(fields[1])
		if ref == "" {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

// ParseKeyName splits a managed private key filename (id_<type>_<host>)
// into its key type and host. Public keys and foreign names report false.
func ParseKeyName(name string) (keyType, host string, ok bool) {
	if !strings.HasPrefix(name, paths.KeyPrefix) || strings.HasSuffix(name, paths.PublicSuffix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(name, paths.KeyPrefix)
	i := strings.Index(rest, "_")
	if i <= 0 {
		return "", "", false
	}
	keyType, host = rest[:i], rest[i+1:]
	if ValidateKeyType(keyType) != nil || ValidateHost(host) != nil {
		return "", "", false
	}
	return keyType, host, true
}
