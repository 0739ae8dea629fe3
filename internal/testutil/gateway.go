package testutil

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrProbeUnavailable is the failure a StubGateway returns for accessors
// without a configured value.
var ErrProbeUnavailable = errors.New("probe unavailable")

// StubGateway is a canned-response chain gateway. Zero value fails every
// call; set the fields a test needs. Calls records accessor invocations in
// order.
type StubGateway struct {
	NAV         map[string]decimal.Decimal // by fund
	Mark        map[string]decimal.Decimal // by perpetual
	RSI         map[string]decimal.Decimal // by strategy
	Target      map[string]decimal.Decimal // by strategy
	Symbols     map[string]string          // by token
	Names       map[string]string          // by token
	Perpetuals  map[string]string          // by fund
	Collaterals map[string]string          // by fund

	Calls []string
}

func (g *StubGateway) decimalFrom(accessor string, m map[string]decimal.Decimal, key string) (decimal.Decimal, error) {
	g.Calls = append(g.Calls, accessor)
	v, ok := m[key]
	if !ok {
		return decimal.Zero, ErrProbeUnavailable
	}
	return v, nil
}

func (g *StubGateway) stringFrom(accessor string, m map[string]string, key string) (string, error) {
	g.Calls = append(g.Calls, accessor)
	v, ok := m[key]
	if !ok {
		return "", ErrProbeUnavailable
	}
	return v, nil
}

func (g *StubGateway) NetAssetValuePerShare(_ context.Context, fund string) (decimal.Decimal, error) {
	return g.decimalFrom("netAssetValuePerShare", g.NAV, fund)
}

func (g *StubGateway) Perpetual(_ context.Context, fund string) (string, error) {
	return g.stringFrom("perpetual", g.Perpetuals, fund)
}

func (g *StubGateway) Collateral(_ context.Context, fund string) (string, error) {
	return g.stringFrom("collateral", g.Collaterals, fund)
}

func (g *StubGateway) MarkPrice(_ context.Context, perpetual string) (decimal.Decimal, error) {
	return g.decimalFrom("markPrice", g.Mark, perpetual)
}

func (g *StubGateway) CurrentRSI(_ context.Context, strategy string) (decimal.Decimal, error) {
	return g.decimalFrom("currentRSI", g.RSI, strategy)
}

func (g *StubGateway) NextTarget(_ context.Context, strategy string) (decimal.Decimal, error) {
	return g.decimalFrom("nextTarget", g.Target, strategy)
}

func (g *StubGateway) Symbol(_ context.Context, token string) (string, error) {
	return g.stringFrom("symbol", g.Symbols, token)
}

func (g *StubGateway) SymbolBytes(_ context.Context, token string) (string, error) {
	return g.stringFrom("symbolBytes", g.Symbols, token)
}

func (g *StubGateway) Name(_ context.Context, token string) (string, error) {
	return g.stringFrom("name", g.Names, token)
}

func (g *StubGateway) NameBytes(_ context.Context, token string) (string, error) {
	return g.stringFrom("nameBytes", g.Names, token)
}
