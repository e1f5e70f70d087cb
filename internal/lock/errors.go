package lock

import "errors"

// ErrLocked is the cause attached when the lock is held by another process.
// Check for it with errors.Is().
var ErrLocked = errors.New("lock is held by another process")
