package ingestion

import (
	"math/big"
	"testing"

	"FundGraph/internal/event"
)

func rawMsg(data string) RawEvent {
	return RawEvent{Subject: "fund.events.test", Data: []byte(data)}
}

const metaFields = `"address":"0xFund","tx_hash":"0xAbC","block_number":42,"timestamp":1700000000,"log_index":3`

func TestParseSharesTransferred(t *testing.T) {
	payload := `{` + metaFields + `,"from":"0x0000000000000000000000000000000000000000","to":"0xAlice","value":"1000000000000000000"}`

	evt, err := ParseRawEvent(rawMsg(payload), "SharesTransferred")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	transfer := evt.(*event.SharesTransferred)

	if transfer.Address != "0xfund" || transfer.TxHash != "0xabc" {
		t.Errorf("meta not lowercased: %q %q", transfer.Address, transfer.TxHash)
	}
	if transfer.To != "0xalice" {
		t.Errorf("to = %q, want lowercased", transfer.To)
	}
	if !transfer.IsMint() {
		t.Error("zero-address sender should classify as mint")
	}
	if transfer.Value.Cmp(big.NewInt(1e18)) != 0 {
		t.Errorf("value = %s, want 1e18", transfer.Value)
	}
	if transfer.IdempotencyKey() != "SharesTransferred:0xabc:3" {
		t.Errorf("idempotency key = %q", transfer.IdempotencyKey())
	}
}

func TestParsePurchaseSettled(t *testing.T) {
	payload := `{` + metaFields + `,"account":"0xAlice","share_amount":"100","nav_per_share":"1050000000000000000"}`

	evt, err := ParseRawEvent(rawMsg(payload), "PurchaseSettled")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	settled := evt.(*event.PurchaseSettled)
	if settled.ShareAmount.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("share = %s, want 100", settled.ShareAmount)
	}
	if settled.NetAssetValuePerShare.String() != "1050000000000000000" {
		t.Errorf("nav = %s", settled.NetAssetValuePerShare)
	}
}

func TestParseRejectsMalformedAmounts(t *testing.T) {
	cases := []struct {
		name      string
		eventType string
		payload   string
	}{
		{"missing value", "SharesTransferred", `{` + metaFields + `,"from":"0xa","to":"0xb"}`},
		{"hex value", "SharesTransferred", `{` + metaFields + `,"from":"0xa","to":"0xb","value":"0xff"}`},
		{"missing meta", "ParameterSet", `{"key":"cap","value":"1"}`},
		{"not json", "Rebalanced", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseRawEvent(rawMsg(tc.payload), tc.eventType); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestParseUnknownEventType(t *testing.T) {
	if _, err := ParseRawEvent(rawMsg(`{}`), "SomethingElse"); err == nil {
		t.Error("expected error for unknown event type")
	}
}

func TestParseAllKnownKinds(t *testing.T) {
	cases := map[string]string{
		"ParameterSet":            `{` + metaFields + `,"key":"cap","value":"1"}`,
		"ManagerSet":              `{` + metaFields + `,"new_manager":"0xM"}`,
		"StateUpdated":            `{` + metaFields + `,"new_state":1}`,
		"SharesTransferred":       `{` + metaFields + `,"from":"0xa","to":"0xb","value":"1"}`,
		"PurchaseSettled":         `{` + metaFields + `,"account":"0xa","share_amount":"1","nav_per_share":"1"}`,
		"RedemptionSettled":       `{` + metaFields + `,"account":"0xa","share_amount":"1","returned_collateral":"1"}`,
		"Settled":                 `{` + metaFields + `,"account":"0xa","share_amount":"1","collateral_to_return":"1"}`,
		"RedeemingShareIncreased": `{` + metaFields + `,"trader":"0xa","amount":"1"}`,
		"RedeemingShareDecreased": `{` + metaFields + `,"trader":"0xa","amount":"1"}`,
		"RedeemRequested":         `{` + metaFields + `,"account":"0xa","share_amount":"1","slippage":"1"}`,
		"RedeemCancelled":         `{` + metaFields + `,"account":"0xa","share_amount":"1"}`,
		"Rebalanced":              `{` + metaFields + `,"side":1,"price":"1","amount":"1"}`,
	}

	for eventType, payload := range cases {
		evt, err := ParseRawEvent(rawMsg(payload), eventType)
		if err != nil {
			t.Errorf("%s: %v", eventType, err)
			continue
		}
		if evt.Kind().String() != eventType {
			t.Errorf("%s parsed into kind %s", eventType, evt.Kind())
		}
		if evt.FundAddress() != "0xfund" {
			t.Errorf("%s fund address = %q", eventType, evt.FundAddress())
		}
	}
}

func TestParseBlockTick(t *testing.T) {
	tick, err := ParseBlockTick([]byte(`{"number":123,"timestamp":1700000000}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tick.Number != 123 || tick.Timestamp != 1700000000 {
		t.Errorf("tick = %+v", tick)
	}

	if _, err := ParseBlockTick([]byte(`{"number":123}`)); err == nil {
		t.Error("expected error for missing timestamp")
	}
}
