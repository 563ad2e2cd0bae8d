package keylock

import "sync"

// KeyLock serializes operations on the same string key. Distinct keys do not
// block each other. Entries are kept for the process lifetime; the key space
// here (actor/target/action tuples) is small enough that eviction is not
// worth the bookkeeping.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns the unlock function.
func (k *KeyLock) Lock(key string) func() {
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
