package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"FundGraph/internal/event"
)

type recordingApplier struct {
	events []event.Event
	ticks  []event.BlockTick
	fail   error
}

func (a *recordingApplier) Process(_ context.Context, evt event.Event) error {
	if a.fail != nil {
		return a.fail
	}
	a.events = append(a.events, evt)
	return nil
}

func (a *recordingApplier) OnBlock(_ context.Context, tick event.BlockTick) error {
	if a.fail != nil {
		return a.fail
	}
	a.ticks = append(a.ticks, tick)
	return nil
}

func runOnce(t *testing.T, applier *recordingApplier, raws ...RawEvent) error {
	t.Helper()
	rawChan := make(chan RawEvent, len(raws))
	for _, raw := range raws {
		rawChan <- raw
	}
	close(rawChan)

	runner := NewRunner(rawChan, applier, applier, nil, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return runner.Run(ctx)
}

func validTransfer(acked, naked *bool) RawEvent {
	return RawEvent{
		Subject:   "fund.events.SharesTransferred.x",
		EventType: "SharesTransferred",
		Data:      []byte(`{` + metaFields + `,"from":"0xa","to":"0xb","value":"1"}`),
		AckFunc:   func() { *acked = true },
		NakFunc:   func() { *naked = true },
	}
}

func TestRunnerAppliesAndAcks(t *testing.T) {
	var acked, naked bool
	applier := &recordingApplier{}

	if err := runOnce(t, applier, validTransfer(&acked, &naked)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applier.events) != 1 {
		t.Fatalf("applied %d events, want 1", len(applier.events))
	}
	if !acked || naked {
		t.Errorf("ack=%v nak=%v, want ack only", acked, naked)
	}
}

func TestRunnerRoutesBlockTicks(t *testing.T) {
	applier := &recordingApplier{}
	raw := RawEvent{
		Subject:   "fund.blocks.x",
		EventType: "BlockTick",
		Data:      []byte(`{"number":7,"timestamp":1700000000}`),
	}
	if err := runOnce(t, applier, raw); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applier.ticks) != 1 || applier.ticks[0].Number != 7 {
		t.Fatalf("ticks = %+v, want one tick for block 7", applier.ticks)
	}
}

// A bad payload is acked and skipped: redelivery cannot fix it.
func TestRunnerAcksUnparseable(t *testing.T) {
	var acked, naked bool
	applier := &recordingApplier{}
	raw := RawEvent{
		Subject:   "fund.events.SharesTransferred.x",
		EventType: "SharesTransferred",
		Data:      []byte(`garbage`),
		AckFunc:   func() { acked = true },
		NakFunc:   func() { naked = true },
	}
	if err := runOnce(t, applier, raw); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(applier.events) != 0 {
		t.Error("unparseable event must not reach the core")
	}
	if !acked || naked {
		t.Errorf("ack=%v nak=%v, want ack only", acked, naked)
	}
}

// An apply failure naks the message and stops the runner.
func TestRunnerStopsOnApplyFailure(t *testing.T) {
	var acked, naked bool
	applyErr := errors.New("state diverged")
	applier := &recordingApplier{fail: applyErr}

	err := runOnce(t, applier, validTransfer(&acked, &naked))
	if !errors.Is(err, applyErr) {
		t.Fatalf("run err = %v, want apply error", err)
	}
	if acked || !naked {
		t.Errorf("ack=%v nak=%v, want nak only", acked, naked)
	}
}

func TestRunnerPublishesUpdates(t *testing.T) {
	var acked, naked bool
	applier := &recordingApplier{}

	rawChan := make(chan RawEvent, 1)
	rawChan <- validTransfer(&acked, &naked)
	close(rawChan)

	updates := make(chan EntityUpdate, 1)
	runner := NewRunner(rawChan, applier, applier, updates, zerolog.Nop())
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	select {
	case update := <-updates:
		if update.Fund != "0xfund" {
			t.Errorf("update.Fund = %q, want 0xfund", update.Fund)
		}
		if update.EntityKind != "position" {
			t.Errorf("update.EntityKind = %q, want position for a share transfer", update.EntityKind)
		}
		if update.IdempotencyKey == "" {
			t.Error("update missing idempotency key")
		}
	default:
		t.Fatal("no update published for applied event")
	}
}

func TestUpdateKindFollowsEvent(t *testing.T) {
	tests := []struct {
		kind event.Kind
		want string
	}{
		{event.KindParameterSet, "fund"},
		{event.KindManagerSet, "fund"},
		{event.KindStateUpdated, "fund"},
		{event.KindSharesTransferred, "position"},
		{event.KindPurchaseSettled, "position"},
		{event.KindRedemptionSettled, "position"},
		{event.KindSettled, "position"},
		{event.KindRedeemingShareIncreased, "position"},
		{event.KindRedeemingShareDecreased, "position"},
		{event.KindRedeemRequested, "redemption_request"},
		{event.KindRedeemCancelled, "redemption_request"},
		{event.KindRebalanced, "rebalance"},
	}
	for _, tt := range tests {
		if got := updateKind(tt.kind); got != tt.want {
			t.Errorf("updateKind(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
