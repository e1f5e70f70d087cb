package doctor

import (
	"fmt"
	"os/exec"

	"github.com/rileyhilliard/ssv/internal/config"
)

// KeygenCheck verifies the configured key generator is usable.
type KeygenCheck struct {
	Backend string
	Program string
}

func (c *KeygenCheck) Name() string     { return "keygen" }
func (c *KeygenCheck) Category() string { return "KEYGEN" }

func (c *KeygenCheck) Run() CheckResult {
	if c.Backend == config.BackendBuiltin {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Using the builtin key generator",
		}
	}

	program := c.Program
	if program == "" {
		program = config.DefaultKeygenProgram
	}

	path, err := exec.LookPath(program)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("Key generator not found: %s", program),
			Suggestion: fmt.Sprintf("Install OpenSSH, set %s, or set keygen_backend: builtin",
				config.KeygenPathEnv),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Key generator: %s", path),
	}
}

func (c *KeygenCheck) Fix() error {
	return nil
}
