package chain

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"
)

// Selectors cross-checked against the canonical ERC-20 values.
func TestSelector(t *testing.T) {
	cases := []struct {
		signature string
		want      string
	}{
		{"symbol()", "0x95d89b41"},
		{"name()", "0x06fdde03"},
		{"transfer(address,uint256)", "0xa9059cbb"},
		{"balanceOf(address)", "0x70a08231"},
	}
	for _, tc := range cases {
		if got := selector(tc.signature); got != tc.want {
			t.Errorf("selector(%q) = %s, want %s", tc.signature, got, tc.want)
		}
	}
}

func word(hexDigits string) []byte {
	padded := strings.Repeat("0", 64-len(hexDigits)) + hexDigits
	data, err := hex.DecodeString(padded)
	if err != nil {
		panic(err)
	}
	return data
}

func TestDecodeUint256(t *testing.T) {
	value, err := decodeUint256(word("0de0b6b3a7640000")) // 1e18
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if value.Cmp(big.NewInt(1e18)) != 0 {
		t.Errorf("value = %s, want 1e18", value)
	}

	if _, err := decodeUint256([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for short input")
	}
}

func TestDecodeAddress(t *testing.T) {
	addr, err := decodeAddress(word("AbCdEF0000000000000000000000000000000001"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if addr != "0xabcdef0000000000000000000000000000000001" {
		t.Errorf("addr = %s, want lowercase 20-byte address", addr)
	}
}

func TestDecodeString(t *testing.T) {
	// offset=32, length=4, "USDC" padded to a word
	var data []byte
	data = append(data, word("20")...)
	data = append(data, word("4")...)
	payload := make([]byte, 32)
	copy(payload, "USDC")
	data = append(data, payload...)

	s, err := decodeString(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s != "USDC" {
		t.Errorf("s = %q, want USDC", s)
	}
}

func TestDecodeStringRejectsBadOffsets(t *testing.T) {
	var data []byte
	data = append(data, word("ffff")...) // offset far past the payload
	data = append(data, word("4")...)

	if _, err := decodeString(data); err == nil {
		t.Error("expected error for out-of-range offset")
	}
}

func TestDecodeBytes32String(t *testing.T) {
	payload := make([]byte, 32)
	copy(payload, "MKR")
	s, err := decodeBytes32String(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s != "MKR" {
		t.Errorf("s = %q, want MKR", s)
	}

	empty, err := decodeBytes32String(make([]byte, 32))
	if err != nil {
		t.Fatalf("decode zero word: %v", err)
	}
	if empty != "" {
		t.Errorf("all-zero word = %q, want empty", empty)
	}
}

func TestDecodeHex(t *testing.T) {
	data, err := decodeHex("0x0102")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(data) != 2 || data[0] != 1 || data[1] != 2 {
		t.Errorf("data = %v", data)
	}

	if _, err := decodeHex("0x"); err == nil {
		t.Error("expected error for empty result")
	}
	if _, err := decodeHex("0xzz"); err == nil {
		t.Error("expected error for invalid hex")
	}
}
