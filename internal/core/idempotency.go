package core

import "container/list"

// DBChecker is the cold tier of the idempotency check, backed by the
// persistent store's processed-events table.
type DBChecker interface {
	IsDuplicate(idempotencyKey string) (bool, error)
}

// IdempotencyChecker implements two-tier deduplication: an in-memory LRU
// for the hot path and an optional store-backed lookup for keys that aged
// out. The upstream source redelivers block ranges after chain
// reorganizations, so every event must be safe to see twice.
type IdempotencyChecker struct {
	lru *dedupLRU
	db  DBChecker
}

func NewIdempotencyChecker(capacity int, db DBChecker) *IdempotencyChecker {
	return &IdempotencyChecker{
		lru: newDedupLRU(capacity),
		db:  db,
	}
}

// IsDuplicate checks whether the event was already processed.
func (ic *IdempotencyChecker) IsDuplicate(key string) bool {
	if ic.lru.contains(key) {
		return true
	}

	if ic.db != nil {
		isDup, err := ic.db.IsDuplicate(key)
		if err != nil {
			// Conservative: a store issue must not block processing
			return false
		}
		if isDup {
			ic.lru.add(key)
			return true
		}
	}

	return false
}

// MarkProcessed records the key after the handler returns.
func (ic *IdempotencyChecker) MarkProcessed(key string) {
	ic.lru.add(key)
}

// Warm preloads recently processed keys, avoiding cold-path store lookups
// after a restart.
func (ic *IdempotencyChecker) Warm(keys []string) {
	for _, key := range keys {
		ic.lru.add(key)
	}
}

// dedupLRU is an LRU set of idempotency keys.
// Not thread-safe — only accessed from the single processing goroutine.
type dedupLRU struct {
	capacity int
	cache    map[string]*list.Element
	order    *list.List
}

func newDedupLRU(capacity int) *dedupLRU {
	return &dedupLRU{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (l *dedupLRU) contains(key string) bool {
	elem, ok := l.cache[key]
	if ok {
		l.order.MoveToFront(elem)
	}
	return ok
}

func (l *dedupLRU) add(key string) {
	if elem, ok := l.cache[key]; ok {
		l.order.MoveToFront(elem)
		return
	}

	l.cache[key] = l.order.PushFront(key)

	if l.order.Len() > l.capacity {
		oldest := l.order.Back()
		if oldest != nil {
			l.order.Remove(oldest)
			delete(l.cache, oldest.Value.(string))
		}
	}
}
