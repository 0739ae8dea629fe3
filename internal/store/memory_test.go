package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"FundGraph/internal/model"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	fund := &model.Fund{
		ID:          "0xfund",
		Symbol:      "FTEST",
		TotalSupply: decimal.RequireFromString("123.45"),
	}
	if err := ms.Upsert(ctx, fund); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entity, err := ms.Load(ctx, model.KindFund, "0xfund")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded := entity.(*model.Fund)
	if loaded.Symbol != "FTEST" || !loaded.TotalSupply.Equal(fund.TotalSupply) {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ms := NewMemoryStore()
	if _, err := ms.Load(context.Background(), model.KindFund, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// Load returns an independent copy: mutating it without Upsert must not
// change the stored entity.
func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	if err := ms.Upsert(ctx, &model.User{ID: "0xalice"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	first, _ := ms.Load(ctx, model.KindUser, "0xalice")
	first.(*model.User).ID = "mutated"

	second, err := ms.Load(ctx, model.KindUser, "0xalice")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if second.(*model.User).ID != "0xalice" {
		t.Error("mutation of a loaded copy leaked into the store")
	}
}

func TestMemoryStoreUpsertOverwrites(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	ms.Upsert(ctx, &model.Fund{ID: "0xfund", Symbol: "OLD"})
	ms.Upsert(ctx, &model.Fund{ID: "0xfund", Symbol: "NEW"})

	if ms.Count(model.KindFund) != 1 {
		t.Fatalf("count = %d, want 1", ms.Count(model.KindFund))
	}
	entity, _ := ms.Load(ctx, model.KindFund, "0xfund")
	if entity.(*model.Fund).Symbol != "NEW" {
		t.Error("upsert did not overwrite")
	}
}
