// Package crypto signs vault API request payloads with the API signer key.
//
// Signatures are ECDSA over the SHA-256 digest of the payload, DER encoded.
package crypto

import (
	"errors"
	"fmt"
)

// Curve identifies the elliptic curve of a signing key.
type Curve string

const (
	// CurveSecp256r1 is NIST P-256 (prime256v1), the curve the vault API
	// expects for API signer keys.
	CurveSecp256r1 Curve = "secp256r1"
	// CurveSecp256k1 is the curve used by EVM chains and Bitcoin.
	CurveSecp256k1 Curve = "secp256k1"
)

var (
	// ErrSigningFailure is returned when the signing operation itself fails.
	ErrSigningFailure = errors.New("signing failure")

	// ErrUnsupportedCurve is returned for keys on curves or algorithms that
	// cannot produce an ECDSA/SHA-256 signature.
	ErrUnsupportedCurve = errors.New("unsupported curve")

	// ErrMalformedKey is returned when key material cannot be decoded.
	ErrMalformedKey = errors.New("malformed key")
)

// Signer defines the interface for payload signing operations.
type Signer interface {
	// Sign hashes data with SHA-256 and returns a DER-encoded signature.
	Sign(data []byte) ([]byte, error)

	// PublicKey returns the uncompressed public key (65 bytes: 0x04 || X || Y).
	PublicKey() []byte

	// Curve returns the curve type.
	Curve() Curve
}

// GenerateKey creates a signer holding a fresh key on curve.
func GenerateKey(curve Curve) (Signer, error) {
	switch curve {
	case CurveSecp256r1:
		return GenerateSecp256r1()
	case CurveSecp256k1:
		return GenerateSecp256k1()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurve, curve)
	}
}
