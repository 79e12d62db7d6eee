package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// BoardLock provides an exclusive lock around checklist read-modify-write.
type BoardLock struct {
	file *os.File
}

// AcquireBoardLock creates and locks <stateDir>/locks/board.lock.
func AcquireBoardLock(stateDir string) (*BoardLock, error) {
	locksDir := filepath.Join(stateDir, "locks")
	if err := os.MkdirAll(locksDir, 0o755); err != nil {
		return nil, fmt.Errorf("create locks dir: %w", err)
	}
	lockPath := filepath.Join(locksDir, "board.lock")
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("lock board.lock: %w", err)
	}
	return &BoardLock{file: file}, nil
}

// Release releases the lock.
func (l *BoardLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}
