// Package lock serializes ssv processes that mutate ~/.ssh.
//
// The lock is an advisory file lock (flock on unix, LockFileEx on windows)
// taken without blocking: a second ssv fails fast instead of queueing. The
// lock file also records who holds it so the error can say so.
package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/rileyhilliard/ssv/internal/errors"
)

// Lock is an acquired process lock.
type Lock struct {
	Path string
	Info *LockInfo
	fl   *flock.Flock
}

// Acquire takes the lock at path or fails immediately with an ErrLock error
// wrapping ErrLocked when another process holds it. command is recorded for
// the benefit of whoever runs into the lock next.
func Acquire(path, command string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Failed to create lock directory: %s", filepath.Dir(path)),
			"Check permissions on your home directory")
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Failed to lock %s", path),
			"Check permissions on the lock file")
	}
	if !locked {
		return nil, errors.WrapWithCode(ErrLocked, errors.ErrLock,
			fmt.Sprintf("Another ssv is already running (held by %s)", Holder(path)),
			"Wait for it to finish and try again")
	}

	info := NewLockInfo(command)
	if data, err := info.Marshal(); err == nil {
		// Holder details are informational; the flock is what excludes.
		_ = os.WriteFile(path, data, 0o600)
	}

	return &Lock{Path: path, Info: info, fl: fl}, nil
}

// Release drops the lock. The file is left in place so a concurrent
// Acquire never locks an unlinked inode.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Failed to release lock %s", l.Path),
			"")
	}
	return nil
}

// Holder describes the process recorded in the lock file, or "unknown".
func Holder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return "unknown"
	}
	info, err := ParseLockInfo(data)
	if err != nil {
		return "unknown"
	}
	return info.String()
}

// FileLocker hands out locks on a fixed path.
type FileLocker struct {
	Path string
}

// NewFileLocker creates a FileLocker for path.
func NewFileLocker(path string) *FileLocker {
	return &FileLocker{Path: path}
}

// Acquire takes the lock for operation and returns its release function.
func (f *FileLocker) Acquire(operation string) (func() error, error) {
	l, err := Acquire(f.Path, operation)
	if err != nil {
		return nil, err
	}
	return l.Release, nil
}
