package repository

import (
	"sort"
	"sync"
)

// itemLocks hands out one mutex per item id. Entries are reference counted and dropped
// once nobody holds or waits for them.
type itemLocks struct {
	mu    sync.Mutex
	locks map[int64]*itemLock
}

type itemLock struct {
	mu   sync.Mutex
	refs int
}

func newItemLocks() *itemLocks {
	return &itemLocks{locks: make(map[int64]*itemLock)}
}

// acquire locks ids in ascending order and returns the matching release func.
func (l *itemLocks) acquire(ids []int64) func() {
	ids = uniqueSorted(ids)

	held := make([]*itemLock, 0, len(ids))
	for _, id := range ids {
		l.mu.Lock()
		lk, ok := l.locks[id]
		if !ok {
			lk = &itemLock{}
			l.locks[id] = lk
		}
		lk.refs++
		l.mu.Unlock()

		lk.mu.Lock()
		held = append(held, lk)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.locks, ids[i])
			}
			l.mu.Unlock()
		}
	}
}

func uniqueSorted(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
