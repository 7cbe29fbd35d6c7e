// Package evmtx provides EVM helpers for the raw-transaction flow: Keccak-256,
// EIP-55 address formatting and call data encoding from a human-readable
// function signature.
//
// The vault API builds, signs and broadcasts the transaction itself; this
// package only prepares the hex call data and formats addresses for display.
package evmtx

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ============================================================================
// Keccak256
// ============================================================================

// Keccak256 computes the Keccak-256 hash of the input data.
// Ethereum uses the original Keccak-256, NOT the NIST-standardized SHA3-256.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// ============================================================================
// Ethereum Addresses
// ============================================================================

// PubKeyToChecksumAddress converts an uncompressed secp256k1 public key to
// an EIP-55 checksum-encoded Ethereum address.
//
// Input: 65 bytes (0x04 || X || Y).
// Output: "0x..." mixed-case checksum address (42 chars).
func PubKeyToChecksumAddress(pubKey []byte) (string, error) {
	if len(pubKey) != 65 {
		return "", fmt.Errorf("expected 65-byte uncompressed public key, got %d bytes", len(pubKey))
	}
	if pubKey[0] != 0x04 {
		return "", fmt.Errorf("expected uncompressed public key prefix 0x04, got 0x%02x", pubKey[0])
	}
	// Keccak256 of the 64-byte X||Y (without the 0x04 prefix)
	hash := Keccak256(pubKey[1:])
	addr := hash[12:]
	return "0x" + toChecksumAddress(hex.EncodeToString(addr)), nil
}

// ChecksumAddress returns the EIP-55 form of a hex address.
func ChecksumAddress(address string) (string, error) {
	cleaned := strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X")
	if len(cleaned) != 40 {
		return "", fmt.Errorf("expected 20-byte address, got %d hex characters", len(cleaned))
	}
	if _, err := hex.DecodeString(cleaned); err != nil {
		return "", fmt.Errorf("invalid hex encoding: %w", err)
	}
	return "0x" + toChecksumAddress(cleaned), nil
}

// toChecksumAddress applies EIP-55 mixed-case checksum encoding.
// Input: 40-char hex address (without "0x" prefix).
func toChecksumAddress(address string) string {
	address = strings.ToLower(address)
	hash := Keccak256([]byte(address))
	result := make([]byte, len(address))
	for i, c := range address {
		if c >= '0' && c <= '9' {
			result[i] = byte(c)
		} else {
			// Get the corresponding nibble from the hash
			hashByte := hash[i/2]
			var nibble byte
			if i%2 == 0 {
				nibble = hashByte >> 4
			} else {
				nibble = hashByte & 0x0f
			}
			if nibble >= 8 {
				result[i] = byte(c) - 32 // uppercase
			} else {
				result[i] = byte(c)
			}
		}
	}
	return string(result)
}
