package ledgerservice

import (
	"sort"
	"sync"
)

// locker hands out per-account mutexes. An entry lives only while someone holds
// or waits for it.
type locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newLocker() *locker {
	return &locker{locks: make(map[string]*lockEntry)}
}

// Lock locks the given accounts in ascending number order and returns the func
// that unlocks them.
func (l *locker) Lock(numbers ...string) (unlock func()) {
	keys := make([]string, 0, len(numbers))
	seen := make(map[string]bool, len(numbers))

	for _, n := range numbers {
		if !seen[n] {
			seen[n] = true
			keys = append(keys, n)
		}
	}

	sort.Strings(keys)

	entries := make([]*lockEntry, len(keys))
	for i, k := range keys {
		entries[i] = l.acquire(k)
		entries[i].mu.Lock()
	}

	return func() {
		for i := len(keys) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
			l.release(keys[i])
		}
	}
}

func (l *locker) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok {
		e = &lockEntry{}
		l.locks[key] = e
	}

	e.refs++

	return e
}

func (l *locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.locks[key]

	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
