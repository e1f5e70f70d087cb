// Package paths derives every on-disk location ssv manages from a home
// directory, and keeps the managed directories at owner-only permissions.
//
// Layout:
//
//	<home>/.ssh/                     managed root, 0700
//	<home>/.ssh/conf.d/              host fragments, 0700
//	<home>/.ssh/conf.d/<host>.conf   one fragment per host, 0600
//	<home>/.ssh/id_<type>_<host>     private key (+ .pub sibling)
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/ssv/internal/errors"
)

const (
	// RootDirName is the managed root, relative to home.
	RootDirName = ".ssh"
	// ConfDirName is the fragment directory inside the managed root.
	ConfDirName = "conf.d"
	// ConfigSuffix is the extension of every host fragment.
	ConfigSuffix = ".conf"
	// KeyPrefix starts every managed key filename.
	KeyPrefix = "id_"
	// PublicSuffix is appended to a private key path to get its public key.
	PublicSuffix = ".pub"

	// DirMode is enforced on the managed root and conf.d.
	DirMode os.FileMode = 0o700
	// FileMode is enforced on host fragments.
	FileMode os.FileMode = 0o600
)

// Resolver computes managed paths for a fixed home directory.
type Resolver struct {
	home string
}

// New returns a Resolver rooted at home.
func New(home string) (*Resolver, error) {
	if home == "" {
		return nil, errors.New(errors.ErrConfig,
			"HOME environment variable not set",
			"Export HOME so ssv knows where ~/.ssh lives")
	}
	return &Resolver{home: filepath.Clean(home)}, nil
}

// Home returns the base home directory.
func (r *Resolver) Home() string {
	return r.home
}

// Root returns the managed root (~/.ssh).
func (r *Resolver) Root() string {
	return filepath.Join(r.home, RootDirName)
}

// ConfDir returns the fragment directory (~/.ssh/conf.d).
func (r *Resolver) ConfDir() string {
	return filepath.Join(r.Root(), ConfDirName)
}

// HostConfig returns the fragment path for host.
func (r *Resolver) HostConfig(host string) string {
	return filepath.Join(r.ConfDir(), host+ConfigSuffix)
}

// KeyName returns the private key filename for a key type and host.
func KeyName(keyType, host string) string {
	return fmt.Sprintf("%s%s_%s", KeyPrefix, keyType, host)
}

// KeyPair returns the private and public key paths for a key type and host.
func (r *Resolver) KeyPair(keyType, host string) (private, public string) {
	private = filepath.Join(r.Root(), KeyName(keyType, host))
	return private, PublicKeyPath(private)
}

// PublicKeyPath returns the .pub sibling of a private key path.
func PublicKeyPath(private string) string {
	return private + PublicSuffix
}

// EnsureBaseDirs creates the managed root and conf.d if needed and forces
// DirMode on both. It runs on every mutating operation so a loosened mode
// gets repaired.
func (r *Resolver) EnsureBaseDirs() error {
	for _, dir := range []string{r.Root(), r.ConfDir()} {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to create directory: %s", dir),
			"Check permissions on your home directory")
	}

	// MkdirAll is subject to umask and leaves existing dirs alone.
	if err := os.Chmod(dir, DirMode); err != nil {
		return errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to set permissions on %s", dir),
			"Make sure you own the directory")
	}
	return nil
}
