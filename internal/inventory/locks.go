package inventory

import (
	"context"
	"sort"
	"sync"

	"github.com/erazemk/arsenal/internal/apperr"
	"github.com/erazemk/arsenal/internal/ledger"
)

// bucketLocks serializes the check-then-append sequence per bucket. Each lock
// is a one-slot channel so acquisition can be abandoned when ctx ends.
type bucketLocks struct {
	mu    sync.Mutex
	locks map[ledger.Key]chan struct{}
}

func newBucketLocks() *bucketLocks {
	return &bucketLocks{locks: make(map[ledger.Key]chan struct{})}
}

func (l *bucketLocks) get(k ledger.Key) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[k]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[k] = ch
	}
	return ch
}

// lock acquires every key in ascending order and returns the matching unlock.
// Duplicate keys are taken once.
func (l *bucketLocks) lock(ctx context.Context, keys ...ledger.Key) (func(), error) {
	sorted := append([]ledger.Key(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	var held []chan struct{}
	unlock := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for i, k := range sorted {
		if i > 0 && k == sorted[i-1] {
			continue
		}
		ch := l.get(k)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-ctx.Done():
			unlock()
			return nil, apperr.Wrap("waiting for inventory lock", ctx.Err())
		}
	}
	return unlock, nil
}
