package core

import (
	"fmt"
	"testing"
)

type fakeDBChecker struct {
	keys    map[string]bool
	failing bool
	lookups int
}

func (f *fakeDBChecker) IsDuplicate(key string) (bool, error) {
	f.lookups++
	if f.failing {
		return false, fmt.Errorf("db unavailable")
	}
	return f.keys[key], nil
}

func TestIdempotencyCheckerHotPath(t *testing.T) {
	ic := NewIdempotencyChecker(10, nil)

	if ic.IsDuplicate("a") {
		t.Fatal("fresh key reported duplicate")
	}
	ic.MarkProcessed("a")
	if !ic.IsDuplicate("a") {
		t.Fatal("processed key not reported duplicate")
	}
}

func TestIdempotencyCheckerColdTier(t *testing.T) {
	db := &fakeDBChecker{keys: map[string]bool{"old": true}}
	ic := NewIdempotencyChecker(10, db)

	if !ic.IsDuplicate("old") {
		t.Fatal("key in cold tier not reported duplicate")
	}
	// Promoted into the LRU: second check skips the store
	before := db.lookups
	if !ic.IsDuplicate("old") {
		t.Fatal("promoted key not reported duplicate")
	}
	if db.lookups != before {
		t.Errorf("cold tier queried %d extra times after promotion", db.lookups-before)
	}
}

func TestIdempotencyCheckerDBFailureIsNotDuplicate(t *testing.T) {
	ic := NewIdempotencyChecker(10, &fakeDBChecker{failing: true})
	if ic.IsDuplicate("x") {
		t.Fatal("store failure must not report duplicate")
	}
}

func TestDedupLRUEviction(t *testing.T) {
	ic := NewIdempotencyChecker(3, nil)
	for i := 0; i < 4; i++ {
		ic.MarkProcessed(fmt.Sprintf("k%d", i))
	}

	if ic.IsDuplicate("k0") {
		t.Error("oldest key should have been evicted")
	}
	for i := 1; i < 4; i++ {
		if !ic.IsDuplicate(fmt.Sprintf("k%d", i)) {
			t.Errorf("k%d evicted prematurely", i)
		}
	}
}

func TestWarmPreloadsKeys(t *testing.T) {
	ic := NewIdempotencyChecker(10, nil)
	ic.Warm([]string{"w1", "w2"})
	if !ic.IsDuplicate("w1") || !ic.IsDuplicate("w2") {
		t.Fatal("warmed keys not reported duplicate")
	}
}
