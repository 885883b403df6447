package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireProcessLock_ExclusiveWithinProcess(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.sqlite3")

	lock1, err := acquireProcessLock(dbPath)
	require.NoError(t, err)
	defer lock1.Release()

	_, err = acquireProcessLock(dbPath)
	assert.ErrorIs(t, err, ErrProcessLockHeld)
}

func TestProcessLock_ReleaseAllowsReacquire(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.sqlite3")

	lock1, err := acquireProcessLock(dbPath)
	require.NoError(t, err)
	require.NoError(t, lock1.Release())

	lock2, err := acquireProcessLock(dbPath)
	require.NoError(t, err)
	defer lock2.Release()
}

func TestProcessLock_Release_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.sqlite3")
	lock, err := acquireProcessLock(dbPath)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())
}

func TestProcessLock_WritesPID(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.sqlite3")
	lock, err := acquireProcessLock(dbPath)
	require.NoError(t, err)
	defer lock.Release()

	assert.Equal(t, os.Getpid(), WriterLockHolderPID(dbPath))
}

func TestIsWriterLocked(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.sqlite3")
	assert.False(t, IsWriterLocked(dbPath))

	lock, err := acquireProcessLock(dbPath)
	require.NoError(t, err)
	assert.True(t, IsWriterLocked(dbPath))

	require.NoError(t, lock.Release())
	assert.False(t, IsWriterLocked(dbPath))
}

func TestWaitForProcessLock_TimesOut(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.sqlite3")
	held, err := acquireProcessLock(dbPath)
	require.NoError(t, err)
	defer held.Release()

	_, err = waitForProcessLock(dbPath, 150*time.Millisecond)
	assert.True(t, errors.Is(err, ErrProcessLockHeld))
}

func TestWaitForProcessLock_SucceedsAfterRelease(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.sqlite3")
	held, err := acquireProcessLock(dbPath)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		held.Release()
	}()

	lock, err := waitForProcessLock(dbPath, time.Second)
	require.NoError(t, err)
	defer lock.Release()
}
