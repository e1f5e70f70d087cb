package paths

import (
	"path/filepath"
	"strings"
)

// Resolve turns an identity reference from a host fragment into an absolute
// path: "~/x" is relative to home, absolute paths are kept, and anything
// else is relative to root. The result is lexically cleaned.
func Resolve(ref, home, root string) string {
	var p string
	switch {
	case ref == "~":
		p = home
	case strings.HasPrefix(ref, "~/"):
		p = filepath.Join(home, ref[2:])
	case filepath.IsAbs(ref):
		p = ref
	default:
		p = filepath.Join(root, ref)
	}
	return filepath.Clean(p)
}

// Within reports whether candidate lies strictly inside root. Both paths
// are cleaned lexically (no symlink resolution) before comparing, so
// "../" chains cannot climb out. root itself is not "within" root.
func Within(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)

	if !filepath.IsAbs(root) || !filepath.IsAbs(candidate) {
		return false
	}

	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

// Contain resolves ref and returns it only if it stays inside root.
func Contain(ref, home, root string) (string, bool) {
	p := Resolve(ref, home, root)
	if !Within(root, p) {
		return "", false
	}
	return p, true
}
