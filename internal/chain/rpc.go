package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	fpmath "FundGraph/internal/math"
)

// Function selectors for the fund family's read-only accessors.
var (
	selNetAssetValuePerShare = selector("netAssetValuePerShare()")
	selPerpetual             = selector("perpetual()")
	selCollateral            = selector("collateral()")
	selMarkPrice             = selector("markPrice()")
	selCurrentRSI            = selector("getCurrentRSI()")
	selNextTarget            = selector("getNextTarget()")
	selSymbol                = selector("symbol()")
	selName                  = selector("name()")
)

// RPCGateway implements Gateway over JSON-RPC eth_call against a chain
// node. Each call is bounded by the client timeout; a revert or transport
// failure surfaces as an error for the caller to degrade on.
type RPCGateway struct {
	url        string
	httpClient *http.Client
}

// NewRPCGateway creates a gateway against a JSON-RPC endpoint.
func NewRPCGateway(url string, timeout time.Duration) *RPCGateway {
	return &RPCGateway{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type callParams struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// call performs one eth_call and returns the raw result bytes.
func (g *RPCGateway) call(ctx context.Context, contract, data string) ([]byte, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_call",
		Params:  []interface{}{callParams{To: contract, Data: data}, "latest"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eth_call %s: %w", contract, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("eth_call %s: read body: %w", contract, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eth_call %s: status %d", contract, resp.StatusCode)
	}

	var parsed rpcResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("eth_call %s: decode: %w", contract, err)
	}
	if parsed.Error != nil {
		// Reverted calls land here
		return nil, fmt.Errorf("eth_call %s: %s (code %d)", contract, parsed.Error.Message, parsed.Error.Code)
	}

	return decodeHex(parsed.Result)
}

func (g *RPCGateway) callDecimal(ctx context.Context, contract, data string) (decimal.Decimal, error) {
	raw, err := g.call(ctx, contract, data)
	if err != nil {
		return decimal.Zero, err
	}
	value, err := decodeUint256(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return fpmath.FromTokenAmount(value), nil
}

func (g *RPCGateway) callAddress(ctx context.Context, contract, data string) (string, error) {
	raw, err := g.call(ctx, contract, data)
	if err != nil {
		return "", err
	}
	return decodeAddress(raw)
}

func (g *RPCGateway) NetAssetValuePerShare(ctx context.Context, fund string) (decimal.Decimal, error) {
	return g.callDecimal(ctx, fund, selNetAssetValuePerShare)
}

func (g *RPCGateway) Perpetual(ctx context.Context, fund string) (string, error) {
	return g.callAddress(ctx, fund, selPerpetual)
}

func (g *RPCGateway) Collateral(ctx context.Context, fund string) (string, error) {
	return g.callAddress(ctx, fund, selCollateral)
}

func (g *RPCGateway) MarkPrice(ctx context.Context, perpetual string) (decimal.Decimal, error) {
	return g.callDecimal(ctx, perpetual, selMarkPrice)
}

func (g *RPCGateway) CurrentRSI(ctx context.Context, strategy string) (decimal.Decimal, error) {
	return g.callDecimal(ctx, strategy, selCurrentRSI)
}

func (g *RPCGateway) NextTarget(ctx context.Context, strategy string) (decimal.Decimal, error) {
	return g.callDecimal(ctx, strategy, selNextTarget)
}

func (g *RPCGateway) Symbol(ctx context.Context, token string) (string, error) {
	raw, err := g.call(ctx, token, selSymbol)
	if err != nil {
		return "", err
	}
	return decodeString(raw)
}

// SymbolBytes probes symbol() on tokens whose accessor returns bytes32.
func (g *RPCGateway) SymbolBytes(ctx context.Context, token string) (string, error) {
	raw, err := g.call(ctx, token, selSymbol)
	if err != nil {
		return "", err
	}
	return decodeBytes32String(raw)
}

func (g *RPCGateway) Name(ctx context.Context, token string) (string, error) {
	raw, err := g.call(ctx, token, selName)
	if err != nil {
		return "", err
	}
	return decodeString(raw)
}

// NameBytes probes name() on tokens whose accessor returns bytes32.
func (g *RPCGateway) NameBytes(ctx context.Context, token string) (string, error) {
	raw, err := g.call(ctx, token, selName)
	if err != nil {
		return "", err
	}
	return decodeBytes32String(raw)
}
