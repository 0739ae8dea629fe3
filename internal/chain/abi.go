package chain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// selector returns the 4-byte function selector for a Solidity signature,
// hex-encoded with 0x prefix, ready for an eth_call data field.
func selector(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// decodeHex strips the 0x prefix and decodes the hex payload of an
// eth_call result.
func decodeHex(result string) ([]byte, error) {
	s := strings.TrimPrefix(result, "0x")
	if s == "" {
		return nil, fmt.Errorf("empty call result")
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode call result: %w", err)
	}
	return data, nil
}

// decodeUint256 interprets a 32-byte word as an unsigned integer.
func decodeUint256(data []byte) (*big.Int, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("short uint256 result: %d bytes", len(data))
	}
	return new(big.Int).SetBytes(data[:32]), nil
}

// decodeAddress interprets the low 20 bytes of a 32-byte word as an
// address, lowercase hex.
func decodeAddress(data []byte) (string, error) {
	if len(data) < 32 {
		return "", fmt.Errorf("short address result: %d bytes", len(data))
	}
	return "0x" + hex.EncodeToString(data[12:32]), nil
}

// decodeString decodes a dynamically-sized ABI string return value
// (offset word, length word, then the bytes).
func decodeString(data []byte) (string, error) {
	if len(data) < 64 {
		return "", fmt.Errorf("short string result: %d bytes", len(data))
	}
	offset := new(big.Int).SetBytes(data[:32])
	if !offset.IsInt64() || offset.Int64()+32 > int64(len(data)) {
		return "", fmt.Errorf("string offset out of range")
	}
	start := offset.Int64()
	length := new(big.Int).SetBytes(data[start : start+32])
	if !length.IsInt64() || start+32+length.Int64() > int64(len(data)) {
		return "", fmt.Errorf("string length out of range")
	}
	return string(data[start+32 : start+32+length.Int64()]), nil
}

// decodeBytes32String interprets a fixed bytes32 word as a zero-padded
// string. An all-zero word decodes to the empty string, which callers treat
// as an absent value.
func decodeBytes32String(data []byte) (string, error) {
	if len(data) < 32 {
		return "", fmt.Errorf("short bytes32 result: %d bytes", len(data))
	}
	word := data[:32]
	end := len(word)
	for end > 0 && word[end-1] == 0 {
		end--
	}
	return string(word[:end]), nil
}
