package crypto

import (
	"crypto/ecdsa"
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Verifier checks DER signatures over SHA-256 digests, as the vault API does
// with a registered API signer public key.
type Verifier struct {
	curve        Curve
	p256Key      *ecdsa.PublicKey
	secp256k1Key *secp256k1.PublicKey
}

// Curve returns the curve of the public key.
func (v *Verifier) Curve() Curve {
	return v.curve
}

// Verify reports whether signature is a valid signature of data.
func (v *Verifier) Verify(data, signature []byte) bool {
	hash := sha256.Sum256(data)
	switch v.curve {
	case CurveSecp256r1:
		return ecdsa.VerifyASN1(v.p256Key, hash[:], signature)
	case CurveSecp256k1:
		sig, err := secpecdsa.ParseDERSignature(signature)
		if err != nil {
			return false
		}
		return sig.Verify(hash[:], v.secp256k1Key)
	default:
		return false
	}
}
