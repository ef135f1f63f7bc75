package mathflix

import "sync"

// snapshotLocks serializes load, merge and save cycles per snapshot key
// across every client in the process.
var snapshotLocks = &keyedMutex{locks: make(map[string]*sync.Mutex)}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for key and returns its release function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
