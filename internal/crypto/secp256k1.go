package crypto

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Secp256k1Signer implements the Signer interface for secp256k1 curve.
type Secp256k1Signer struct {
	privateKey *secp256k1.PrivateKey
}

// NewSecp256k1Signer creates a signer from a 32-byte private scalar.
func NewSecp256k1Signer(privateKeyBytes []byte) (*Secp256k1Signer, error) {
	if len(privateKeyBytes) == 0 || len(privateKeyBytes) > 32 {
		return nil, fmt.Errorf("invalid private key length: expected 32 bytes, got %d", len(privateKeyBytes))
	}
	privateKey := secp256k1.PrivKeyFromBytes(privateKeyBytes)
	if privateKey.Key.IsZero() {
		return nil, fmt.Errorf("invalid private key: zero scalar")
	}
	return &Secp256k1Signer{privateKey: privateKey}, nil
}

// GenerateSecp256k1 generates a new secp256k1 key.
func GenerateSecp256k1() (*Secp256k1Signer, error) {
	privateKey, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &Secp256k1Signer{privateKey: privateKey}, nil
}

// Sign signs the SHA-256 digest of data. Nonces follow RFC 6979, so the
// signature is deterministic for a given key and payload.
func (s *Secp256k1Signer) Sign(data []byte) ([]byte, error) {
	hash := sha256.Sum256(data)
	signature := ecdsa.Sign(s.privateKey, hash[:])
	return signature.Serialize(), nil
}

// Curve returns the curve type.
func (s *Secp256k1Signer) Curve() Curve {
	return CurveSecp256k1
}

// PublicKey returns the uncompressed public key (65 bytes: 0x04 || X || Y).
func (s *Secp256k1Signer) PublicKey() []byte {
	return s.privateKey.PubKey().SerializeUncompressed()
}
