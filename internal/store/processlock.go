package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// ErrProcessLockHeld is returned when a second long-lived writer tries
// to open the same on-disk database file while another process already
// holds the writer lock.
var ErrProcessLockHeld = errors.New("store: long-lived writer lock already held")

// processLock is an advisory file lock guarding the long-lived writer
// bracket (spec.md §4.B): only one process may hold the privileged
// writer connection against a given on-disk file at a time. Adapted
// from the teacher's daemon-wide LockFile (suggestions/db/lock.go);
// here it is scoped to exactly the one concern OpenLongLived needs, not
// a whole-daemon lock.
type processLock struct {
	path string
	file *os.File
}

// lockPathFor returns the path to the writer-lock file alongside dbPath.
func lockPathFor(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "."+filepath.Base(dbPath)+".writer-lock")
}

// acquireProcessLock attempts to take the exclusive advisory lock
// non-blocking; the caller must Release() it when the long-lived
// bracket exits.
func acquireProcessLock(dbPath string) (*processLock, error) {
	lockPath := lockPathFor(dbPath)

	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
			return nil, ErrProcessLockHeld
		}
		return nil, fmt.Errorf("acquire writer lock: %w", err)
	}

	if err := file.Truncate(0); err == nil {
		_, _ = file.Seek(0, 0)
		_, _ = fmt.Fprintf(file, "%d\n", os.Getpid())
		_ = file.Sync()
	}

	return &processLock{path: lockPath, file: file}, nil
}

// Release releases the lock and removes the lock file. Safe to call
// multiple times.
func (l *processLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	_ = l.file.Close()
	l.file = nil
	_ = os.Remove(l.path)
	return err
}

// IsWriterLocked reports whether a long-lived writer currently holds
// the lock for dbPath. Used by operational tooling (cmd/storecore
// status) to report daemon-liveness-style state without needing to try
// (and fail) a real Open.
func IsWriterLocked(dbPath string) bool {
	lockPath := lockPathFor(dbPath)
	file, err := os.OpenFile(lockPath, os.O_RDWR, 0o640)
	if err != nil {
		return false
	}
	defer file.Close()

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return true
	}
	_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
	return false
}

// WriterLockHolderPID returns the PID recorded in the lock file, or 0
// if it cannot be determined.
func WriterLockHolderPID(dbPath string) int {
	lockPath := lockPathFor(dbPath)
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return 0
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0
	}
	return pid
}

// waitForProcessLock retries acquireProcessLock until it succeeds or
// the deadline passes.
func waitForProcessLock(dbPath string, timeout time.Duration) (*processLock, error) {
	deadline := time.Now().Add(timeout)
	for {
		lock, err := acquireProcessLock(dbPath)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrProcessLockHeld) || time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(100 * time.Millisecond)
	}
}
