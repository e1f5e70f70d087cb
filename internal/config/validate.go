package config

import (
	"fmt"
	"path/filepath"

	"github.com/rileyhilliard/ssv/internal/errors"
)

// Validate checks settings for errors and returns structured error messages.
// Key type charset rules are enforced by the host package at generate time.
func Validate(s *Settings) error {
	if s == nil {
		return errors.New(errors.ErrConfig,
			"No settings loaded",
			"This is unexpected - please report this bug!")
	}

	if s.Home == "" {
		return errors.New(errors.ErrConfig,
			"HOME environment variable not set",
			"Export HOME so ssv knows where ~/.ssh lives")
	}

	if !filepath.IsAbs(s.Home) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Home directory must be absolute, got '%s'", s.Home),
			"Set HOME to an absolute path")
	}

	switch s.KeygenBackend {
	case BackendExec:
		if s.KeygenPath == "" {
			return errors.New(errors.ErrConfig,
				"No key generator configured",
				fmt.Sprintf("Unset %s or point it at ssh-keygen", KeygenPathEnv))
		}
	case BackendBuiltin:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown keygen backend '%s'", s.KeygenBackend),
			fmt.Sprintf("Use '%s' or '%s'", BackendExec, BackendBuiltin))
	}

	return nil
}
