package service

import "sync"

// opLocks serializes read-compute-write sequences per operation. Different
// operations never contend.
type opLocks struct {
	mu    sync.Mutex
	locks map[string]*opLock
}

type opLock struct {
	sync.Mutex
	refs int
}

func newOpLocks() *opLocks {
	return &opLocks{locks: make(map[string]*opLock)}
}

// lock acquires the lock for id and returns its release func.
func (l *opLocks) lock(id string) func() {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &opLock{}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.Lock()
	return func() {
		lk.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
