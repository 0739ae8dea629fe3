package ingestion

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"FundGraph/internal/event"
)

// ParseRawEvent converts a RawEvent (JSON bytes + event type string) into a
// typed event.Event. The ingestion shell validates and converts raw events
// before handing them to the single-threaded core.
func ParseRawEvent(raw RawEvent, eventType string) (event.Event, error) {
	switch eventType {
	case "ParameterSet":
		return parseParameterSet(raw.Data)
	case "ManagerSet":
		return parseManagerSet(raw.Data)
	case "StateUpdated":
		return parseStateUpdated(raw.Data)
	case "SharesTransferred":
		return parseSharesTransferred(raw.Data)
	case "PurchaseSettled":
		return parsePurchaseSettled(raw.Data)
	case "RedemptionSettled":
		return parseRedemptionSettled(raw.Data)
	case "Settled":
		return parseSettled(raw.Data)
	case "RedeemingShareIncreased":
		return parseRedeemingShareIncreased(raw.Data)
	case "RedeemingShareDecreased":
		return parseRedeemingShareDecreased(raw.Data)
	case "RedeemRequested":
		return parseRedeemRequested(raw.Data)
	case "RedeemCancelled":
		return parseRedeemCancelled(raw.Data)
	case "Rebalanced":
		return parseRebalanced(raw.Data)
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}

// ParseBlockTick parses a block header notification.
func ParseBlockTick(data []byte) (event.BlockTick, error) {
	var j struct {
		Number    int64 `json:"number"`
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return event.BlockTick{}, fmt.Errorf("parse block tick: %w", err)
	}
	if j.Number <= 0 || j.Timestamp <= 0 {
		return event.BlockTick{}, fmt.Errorf("block tick missing number or timestamp")
	}
	return event.BlockTick{Number: j.Number, Timestamp: j.Timestamp}, nil
}

// --- JSON wire formats ---
// Payloads published by the chain extractor. Field names use snake_case;
// uint256 amounts travel as decimal strings, addresses and hashes as 0x-hex.

type metaJSON struct {
	Address     string `json:"address"`
	TxHash      string `json:"tx_hash"`
	BlockNumber int64  `json:"block_number"`
	Timestamp   int64  `json:"timestamp"`
	LogIndex    int64  `json:"log_index"`
}

func (j metaJSON) toMeta() (event.Meta, error) {
	if j.Address == "" || j.TxHash == "" {
		return event.Meta{}, fmt.Errorf("missing address or tx_hash")
	}
	return event.Meta{
		Address:     strings.ToLower(j.Address),
		TxHash:      strings.ToLower(j.TxHash),
		BlockNumber: j.BlockNumber,
		Timestamp:   j.Timestamp,
		LogIndex:    j.LogIndex,
	}, nil
}

func parseBigInt(field, s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("missing %s", field)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("parse %s %q: not a decimal integer", field, s)
	}
	return v, nil
}

type parameterSetJSON struct {
	metaJSON
	Key   string `json:"key"`
	Value string `json:"value"`
}

func parseParameterSet(data []byte) (*event.ParameterSet, error) {
	var j parameterSetJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse ParameterSet: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse ParameterSet: %w", err)
	}
	value, err := parseBigInt("value", j.Value)
	if err != nil {
		return nil, fmt.Errorf("parse ParameterSet: %w", err)
	}
	return &event.ParameterSet{Meta: meta, Key: j.Key, Value: value}, nil
}

type managerSetJSON struct {
	metaJSON
	NewManager string `json:"new_manager"`
}

func parseManagerSet(data []byte) (*event.ManagerSet, error) {
	var j managerSetJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse ManagerSet: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse ManagerSet: %w", err)
	}
	return &event.ManagerSet{Meta: meta, NewManager: strings.ToLower(j.NewManager)}, nil
}

type stateUpdatedJSON struct {
	metaJSON
	NewState int32 `json:"new_state"`
}

func parseStateUpdated(data []byte) (*event.StateUpdated, error) {
	var j stateUpdatedJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse StateUpdated: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse StateUpdated: %w", err)
	}
	return &event.StateUpdated{Meta: meta, NewState: j.NewState}, nil
}

type sharesTransferredJSON struct {
	metaJSON
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

func parseSharesTransferred(data []byte) (*event.SharesTransferred, error) {
	var j sharesTransferredJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse SharesTransferred: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse SharesTransferred: %w", err)
	}
	value, err := parseBigInt("value", j.Value)
	if err != nil {
		return nil, fmt.Errorf("parse SharesTransferred: %w", err)
	}
	return &event.SharesTransferred{
		Meta:  meta,
		From:  strings.ToLower(j.From),
		To:    strings.ToLower(j.To),
		Value: value,
	}, nil
}

type purchaseSettledJSON struct {
	metaJSON
	Account               string `json:"account"`
	ShareAmount           string `json:"share_amount"`
	NetAssetValuePerShare string `json:"nav_per_share"`
}

func parsePurchaseSettled(data []byte) (*event.PurchaseSettled, error) {
	var j purchaseSettledJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse PurchaseSettled: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse PurchaseSettled: %w", err)
	}
	share, err := parseBigInt("share_amount", j.ShareAmount)
	if err != nil {
		return nil, fmt.Errorf("parse PurchaseSettled: %w", err)
	}
	nav, err := parseBigInt("nav_per_share", j.NetAssetValuePerShare)
	if err != nil {
		return nil, fmt.Errorf("parse PurchaseSettled: %w", err)
	}
	return &event.PurchaseSettled{
		Meta:                  meta,
		Account:               strings.ToLower(j.Account),
		ShareAmount:           share,
		NetAssetValuePerShare: nav,
	}, nil
}

type redemptionSettledJSON struct {
	metaJSON
	Account            string `json:"account"`
	ShareAmount        string `json:"share_amount"`
	ReturnedCollateral string `json:"returned_collateral"`
}

func parseRedemptionSettled(data []byte) (*event.RedemptionSettled, error) {
	var j redemptionSettledJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse RedemptionSettled: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse RedemptionSettled: %w", err)
	}
	share, err := parseBigInt("share_amount", j.ShareAmount)
	if err != nil {
		return nil, fmt.Errorf("parse RedemptionSettled: %w", err)
	}
	returned, err := parseBigInt("returned_collateral", j.ReturnedCollateral)
	if err != nil {
		return nil, fmt.Errorf("parse RedemptionSettled: %w", err)
	}
	return &event.RedemptionSettled{
		Meta:               meta,
		Account:            strings.ToLower(j.Account),
		ShareAmount:        share,
		ReturnedCollateral: returned,
	}, nil
}

type settledJSON struct {
	metaJSON
	Account            string `json:"account"`
	ShareAmount        string `json:"share_amount"`
	CollateralToReturn string `json:"collateral_to_return"`
}

func parseSettled(data []byte) (*event.Settled, error) {
	var j settledJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Settled: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse Settled: %w", err)
	}
	share, err := parseBigInt("share_amount", j.ShareAmount)
	if err != nil {
		return nil, fmt.Errorf("parse Settled: %w", err)
	}
	collateral, err := parseBigInt("collateral_to_return", j.CollateralToReturn)
	if err != nil {
		return nil, fmt.Errorf("parse Settled: %w", err)
	}
	return &event.Settled{
		Meta:               meta,
		Account:            strings.ToLower(j.Account),
		ShareAmount:        share,
		CollateralToReturn: collateral,
	}, nil
}

type redeemingShareJSON struct {
	metaJSON
	Trader string `json:"trader"`
	Amount string `json:"amount"`
}

func parseRedeemingShareIncreased(data []byte) (*event.RedeemingShareIncreased, error) {
	var j redeemingShareJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse RedeemingShareIncreased: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse RedeemingShareIncreased: %w", err)
	}
	amount, err := parseBigInt("amount", j.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse RedeemingShareIncreased: %w", err)
	}
	return &event.RedeemingShareIncreased{
		Meta:   meta,
		Trader: strings.ToLower(j.Trader),
		Amount: amount,
	}, nil
}

func parseRedeemingShareDecreased(data []byte) (*event.RedeemingShareDecreased, error) {
	var j redeemingShareJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse RedeemingShareDecreased: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse RedeemingShareDecreased: %w", err)
	}
	amount, err := parseBigInt("amount", j.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse RedeemingShareDecreased: %w", err)
	}
	return &event.RedeemingShareDecreased{
		Meta:   meta,
		Trader: strings.ToLower(j.Trader),
		Amount: amount,
	}, nil
}

type redeemRequestedJSON struct {
	metaJSON
	Account     string `json:"account"`
	ShareAmount string `json:"share_amount"`
	Slippage    string `json:"slippage"`
}

func parseRedeemRequested(data []byte) (*event.RedeemRequested, error) {
	var j redeemRequestedJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse RedeemRequested: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse RedeemRequested: %w", err)
	}
	share, err := parseBigInt("share_amount", j.ShareAmount)
	if err != nil {
		return nil, fmt.Errorf("parse RedeemRequested: %w", err)
	}
	slippage, err := parseBigInt("slippage", j.Slippage)
	if err != nil {
		return nil, fmt.Errorf("parse RedeemRequested: %w", err)
	}
	return &event.RedeemRequested{
		Meta:        meta,
		Account:     strings.ToLower(j.Account),
		ShareAmount: share,
		Slippage:    slippage,
	}, nil
}

type redeemCancelledJSON struct {
	metaJSON
	Account     string `json:"account"`
	ShareAmount string `json:"share_amount"`
}

func parseRedeemCancelled(data []byte) (*event.RedeemCancelled, error) {
	var j redeemCancelledJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse RedeemCancelled: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse RedeemCancelled: %w", err)
	}
	share, err := parseBigInt("share_amount", j.ShareAmount)
	if err != nil {
		return nil, fmt.Errorf("parse RedeemCancelled: %w", err)
	}
	return &event.RedeemCancelled{
		Meta:        meta,
		Account:     strings.ToLower(j.Account),
		ShareAmount: share,
	}, nil
}

type rebalancedJSON struct {
	metaJSON
	Side   int32  `json:"side"`
	Price  string `json:"price"`
	Amount string `json:"amount"`
}

func parseRebalanced(data []byte) (*event.Rebalanced, error) {
	var j rebalancedJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Rebalanced: %w", err)
	}
	meta, err := j.toMeta()
	if err != nil {
		return nil, fmt.Errorf("parse Rebalanced: %w", err)
	}
	price, err := parseBigInt("price", j.Price)
	if err != nil {
		return nil, fmt.Errorf("parse Rebalanced: %w", err)
	}
	amount, err := parseBigInt("amount", j.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse Rebalanced: %w", err)
	}
	return &event.Rebalanced{
		Meta:   meta,
		Side:   j.Side,
		Price:  price,
		Amount: amount,
	}, nil
}
