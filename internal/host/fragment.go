package host

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/paths"
)

// Fragment is the content of one conf.d/<host>.conf file.
type Fragment struct {
	Host    string
	User    string // omitted when empty
	Port    uint16 // omitted when zero
	KeyType string
}

// IdentityRef is the IdentityFile value written for the fragment. It uses
// ~/ so the file stays valid if the home directory moves.
func (f Fragment) IdentityRef() string {
	return "~/" + paths.RootDirName + "/" + paths.KeyName(f.KeyType, f.Host)
}

// RenderFragment builds the SSH client configuration stanza for f.
func RenderFragment(f Fragment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Host %s\n", f.Host)
	fmt.Fprintf(&b, "HostName %s\n", f.Host)
	if f.User != "" {
		fmt.Fprintf(&b, "User %s\n", f.User)
	}
	if f.Port != 0 {
		fmt.Fprintf(&b, "Port %d\n", f.Port)
	}
	fmt.Fprintf(&b, "IdentityFile %s\n", f.IdentityRef())
	b.WriteString("IdentitiesOnly yes\n")

	return b.String()
}

// WriteFragment persists f at path, creating parent directories, syncing the
// file to disk, and leaving it readable by the owner only.
func WriteFragment(path string, f Fragment) (err error) {
	if err := ValidateUser(f.User); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), paths.DirMode); err != nil {
		return errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to create %s", filepath.Dir(path)),
			"Check permissions on ~/.ssh")
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, paths.FileMode)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to create %s", path),
			"Check permissions on ~/.ssh/conf.d")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.WrapWithCode(cerr, errors.ErrIO,
				fmt.Sprintf("Failed to close %s", path), "")
		}
	}()

	if _, err := file.WriteString(RenderFragment(f)); err != nil {
		return errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to write %s", path),
			"Check available disk space")
	}

	if err := file.Sync(); err != nil {
		return errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to sync %s", path), "")
	}

	// OpenFile's mode is filtered by umask and ignored for existing files.
	if err := os.Chmod(path, paths.FileMode); err != nil {
		return errors.WrapWithCode(err, errors.ErrIO,
			fmt.Sprintf("Failed to set permissions on %s", path),
			"Make sure you own the file")
	}

	return nil
}
