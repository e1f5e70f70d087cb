package setup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/util"
)

// DefaultCopyProgram deploys public keys to remote accounts.
const DefaultCopyProgram = "ssh-copy-id"

// CopyKey appends the public key at pubKeyPath to target's authorized_keys
// by running program (ssh-copy-id when empty). target is whatever ssh
// accepts: an alias, host, or user@host.
func CopyKey(ctx context.Context, program, target, pubKeyPath string) error {
	if program == "" {
		program = DefaultCopyProgram
	}

	if _, err := os.Stat(pubKeyPath); err != nil {
		return errors.WrapWithCode(err, errors.ErrNotFound,
			fmt.Sprintf("Public key %s not found", pubKeyPath),
			"Generate the key first: ssv generate --host <host>")
	}

	path, err := exec.LookPath(program)
	if err != nil {
		return errors.New(errors.ErrExec,
			fmt.Sprintf("Can't find %s", program),
			"Install OpenSSH, or copy the key manually (see 'ssv copy-id --manual').")
	}

	cmd := exec.CommandContext(ctx, path, "-i", pubKeyPath, target)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return classifyCopyError(err, target, pubKeyPath, strings.TrimSpace(string(output)))
	}

	return nil
}

func classifyCopyError(err error, target, pubKeyPath, output string) error {
	switch {
	case strings.Contains(output, "Permission denied"):
		return errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Permission denied on %s", target),
			"Double-check the password or credentials and try again.")
	case strings.Contains(output, "Connection refused"):
		return errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Connection refused to %s", target),
			"Make sure SSH is running on the remote machine.")
	case strings.Contains(output, "Could not resolve hostname"):
		return errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Can't resolve hostname %s", target),
			"Check the hostname and your network connection.")
	}

	return errors.WrapWithCode(err, errors.ErrExec,
		fmt.Sprintf("Couldn't copy SSH key to %s: %s", target, output),
		"Try manually: ssh-copy-id -i "+util.ShellQuote(pubKeyPath)+" "+util.ShellQuote(target))
}

// CopyKeyManual returns by-hand instructions for installing the public key
// at pubKeyPath on target.
func CopyKeyManual(target, pubKeyPath string) string {
	data, err := os.ReadFile(pubKeyPath)
	if err != nil {
		return fmt.Sprintf(`To copy your SSH key manually:

1. Display your public key:
   cat %s

2. Copy the output and add it to the remote host:
   ssh %s "mkdir -p ~/.ssh && chmod 700 ~/.ssh && cat >> ~/.ssh/authorized_keys" << 'EOF'
   <paste your public key here>
   EOF

3. Set correct permissions:
   ssh %s "chmod 600 ~/.ssh/authorized_keys"
`, util.ShellQuote(pubKeyPath), util.ShellQuote(target), util.ShellQuote(target))
	}

	return fmt.Sprintf(`To copy your SSH key manually, run:

ssh %s "mkdir -p ~/.ssh && chmod 700 ~/.ssh && echo '%s' >> ~/.ssh/authorized_keys && chmod 600 ~/.ssh/authorized_keys"
`, util.ShellQuote(target), strings.TrimSpace(string(data)))
}
