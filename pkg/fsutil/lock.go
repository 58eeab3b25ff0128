package fsutil

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileLock is an exclusive cross-process advisory lock backed by
// flock(2), used to serialize spot-log appends from the ~40 concurrent
// decoder workers (other instances may also be running on the host, so
// an in-process mutex is not sufficient).
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock opens (creating if necessary) the lock file at path.
// The lock itself is not held until Lock is called.
func NewFileLock(path string) (*FileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}
	return &FileLock{path: path, file: f}, nil
}

// Lock blocks until the exclusive lock is acquired.
func (l *FileLock) Lock() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to lock %s: %w", l.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (l *FileLock) Unlock() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("failed to unlock %s: %w", l.path, err)
	}
	return nil
}

// Close releases the lock's underlying file descriptor.
func (l *FileLock) Close() error {
	return l.file.Close()
}

// WithLock acquires the lock, runs fn, then unlocks regardless of fn's
// outcome.
func (l *FileLock) WithLock(fn func() error) error {
	if err := l.Lock(); err != nil {
		return err
	}
	defer l.Unlock()
	return fn()
}
