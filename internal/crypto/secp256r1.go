package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// Secp256r1Signer implements the Signer interface for P-256 (secp256r1) curve.
type Secp256r1Signer struct {
	privateKey *ecdsa.PrivateKey
}

// NewSecp256r1Signer wraps a P-256 private key.
func NewSecp256r1Signer(privateKey *ecdsa.PrivateKey) (*Secp256r1Signer, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key not set")
	}
	if privateKey.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurve, privateKey.Curve.Params().Name)
	}
	return &Secp256r1Signer{privateKey: privateKey}, nil
}

// GenerateSecp256r1 generates a new P-256 key.
func GenerateSecp256r1() (*Secp256r1Signer, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &Secp256r1Signer{privateKey: privateKey}, nil
}

// Sign signs the SHA-256 digest of data. The signature is randomized, so two
// calls over the same data return different bytes that both verify.
func (s *Secp256r1Signer) Sign(data []byte) ([]byte, error) {
	hash := sha256.Sum256(data)
	signature, err := ecdsa.SignASN1(rand.Reader, s.privateKey, hash[:])
	if err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}
	return signature, nil
}

// Curve returns the curve type.
func (s *Secp256r1Signer) Curve() Curve {
	return CurveSecp256r1
}

// PublicKey returns the uncompressed public key (65 bytes: 0x04 || X || Y).
func (s *Secp256r1Signer) PublicKey() []byte {
	return elliptic.Marshal(s.privateKey.Curve, s.privateKey.X, s.privateKey.Y)
}
