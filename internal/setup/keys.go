package setup

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rileyhilliard/ssv/internal/config"
	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/host"
	"github.com/rileyhilliard/ssv/internal/logger"
)

// ExecProvisioner generates keys by running an ssh-keygen compatible program.
type ExecProvisioner struct {
	Program string // executable name or path
	Comment string // passed as -C when set
	Log     logger.Logger
}

// NewExecProvisioner creates a provisioner for program, defaulting to ssh-keygen.
func NewExecProvisioner(program string) *ExecProvisioner {
	if program == "" {
		program = config.DefaultKeygenProgram
	}
	return &ExecProvisioner{Program: program, Log: logger.Noop()}
}

// KeygenArgs builds the argument list for generating a keyType key at path
// with an empty passphrase.
func KeygenArgs(keyType, path, comment string) []string {
	args := []string{"-t", keyType, "-f", path, "-q", "-N", ""}
	if keyType == "rsa" {
		args = append(args, "-b", "4096")
	}
	if comment != "" {
		args = append(args, "-C", comment)
	}
	return args
}

// Generate runs the key generator and checks that it left a private key at path.
func (p *ExecProvisioner) Generate(ctx context.Context, keyType, path string) error {
	args := KeygenArgs(keyType, path, p.Comment)
	p.log().Debug("running %s %s", p.Program, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, p.Program, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return errors.CommandFailed(p.Program, exitErr.ExitCode(), strings.TrimSpace(string(output)))
		}
		return errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to run %s", p.Program),
			fmt.Sprintf("Install OpenSSH or point %s at an ssh-keygen binary", config.KeygenPathEnv))
	}

	if _, err := os.Stat(path); err != nil {
		return errors.New(errors.ErrExec,
			fmt.Sprintf("%s finished but %s was not created", p.Program, path),
			"Check disk space and permissions")
	}

	return nil
}

func (p *ExecProvisioner) log() logger.Logger {
	if p.Log == nil {
		return logger.Noop()
	}
	return p.Log
}

// FromSettings returns the provisioner selected by s.KeygenBackend.
func FromSettings(s *config.Settings, log logger.Logger) (host.Provisioner, error) {
	if log == nil {
		log = logger.Noop()
	}

	switch s.KeygenBackend {
	case config.BackendExec, "":
		p := NewExecProvisioner(s.KeygenPath)
		p.Comment = s.KeyComment
		p.Log = log
		return p, nil
	case config.BackendBuiltin:
		return &NativeProvisioner{Log: log}, nil
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown keygen backend '%s'", s.KeygenBackend),
			"Use 'exec' or 'builtin'")
	}
}
