// Package doctor diagnoses the managed ~/.ssh layout.
package doctor

import (
	"github.com/rileyhilliard/ssv/internal/config"
	"github.com/rileyhilliard/ssv/internal/paths"
)

// Checks returns every check for the layout under r, using s to decide how
// keys are generated.
func Checks(r *paths.Resolver, s *config.Settings) []Check {
	return []Check{
		&DirPermsCheck{Label: "root", Path: r.Root(), Paths: r},
		&DirPermsCheck{Label: "conf.d", Path: r.ConfDir(), Paths: r},
		&FilePermsCheck{Paths: r},
		&KeygenCheck{Backend: s.KeygenBackend, Program: s.KeygenPath},
		&OrphanKeysCheck{Paths: r},
		&MissingIdentityCheck{Paths: r},
		&IncludeCheck{Paths: r},
	}
}
