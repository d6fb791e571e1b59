package sync

import gosync "sync"

// keyLock serializes read-modify-write sections per natural key. Reads on
// different keys stay independent; singleflight is not enough here because it
// dedups calls instead of ordering them.
type keyLock struct {
	mu   gosync.Mutex
	held map[string]*lockEntry
}

type lockEntry struct {
	mu   gosync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{held: make(map[string]*lockEntry)}
}

// Lock blocks until the key is free and returns the release func.
func (k *keyLock) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.held[key]
	if !ok {
		e = &lockEntry{}
		k.held[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.held, key)
		}
		k.mu.Unlock()
	}
}
