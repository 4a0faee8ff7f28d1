package service

import "sync"

// LedgerLocks serializes ledger writes per colocation. SQLite already
// serializes at the database level; this lock keeps a read-modify-write
// sequence (load payment, transition, persist) atomic with respect to other
// requests for the same colocation.
type LedgerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedgerLocks creates an empty lock table.
func NewLedgerLocks() *LedgerLocks {
	return &LedgerLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for a colocation, creating it on first use.
// The returned function releases it.
func (l *LedgerLocks) Lock(colocationID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[colocationID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[colocationID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
