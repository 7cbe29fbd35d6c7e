package crypto

import (
	"crypto/ecdsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	pemTypeECPrivateKey = "EC PRIVATE KEY"
	pemTypePKCS8        = "PRIVATE KEY"
	pemTypePublicKey    = "PUBLIC KEY"
	pemTypeECParameters = "EC PARAMETERS"
)

var (
	oidPublicKeyECDSA      = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidNamedCurveP256      = asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
	oidNamedCurveSecp256k1 = asn1.ObjectIdentifier{1, 3, 132, 0, 10}
)

// ecPrivateKey is the SEC 1 ECPrivateKey structure (RFC 5915).
type ecPrivateKey struct {
	Version       int
	PrivateKey    []byte
	NamedCurveOID asn1.ObjectIdentifier `asn1:"optional,explicit,tag:0"`
	PublicKey     asn1.BitString        `asn1:"optional,explicit,tag:1"`
}

// pkcs8 is the PKCS #8 PrivateKeyInfo structure (RFC 5208).
type pkcs8 struct {
	Version    int
	Algo       pkix.AlgorithmIdentifier
	PrivateKey []byte
}

type subjectPublicKeyInfo struct {
	Algorithm pkix.AlgorithmIdentifier
	PublicKey asn1.BitString
}

// ParsePrivateKeyPEM decodes a SEC 1 ("EC PRIVATE KEY") or PKCS #8
// ("PRIVATE KEY") PEM document. A leading "EC PARAMETERS" block, as written
// by `openssl ecparam -genkey`, is skipped.
//
// Decoding problems wrap ErrMalformedKey; keys on other curves or of other
// algorithms wrap ErrUnsupportedCurve.
func ParsePrivateKeyPEM(data []byte) (Signer, error) {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, fmt.Errorf("%w: no private key PEM block found", ErrMalformedKey)
		}
		switch block.Type {
		case pemTypeECParameters:
			continue
		case pemTypeECPrivateKey:
			return parseSEC1(block.Bytes, nil)
		case pemTypePKCS8:
			return parsePKCS8(block.Bytes)
		default:
			return nil, fmt.Errorf("%w: PEM block type %q", ErrUnsupportedCurve, block.Type)
		}
	}
}

func parseSEC1(der []byte, curveOID asn1.ObjectIdentifier) (Signer, error) {
	var key ecPrivateKey
	if _, err := asn1.Unmarshal(der, &key); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}
	if len(key.NamedCurveOID) > 0 {
		curveOID = key.NamedCurveOID
	}

	switch {
	case curveOID.Equal(oidNamedCurveSecp256k1):
		defer ZeroBytes(key.PrivateKey)
		signer, err := NewSecp256k1Signer(key.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
		}
		return signer, nil
	case curveOID.Equal(oidNamedCurveP256):
		privateKey, err := x509.ParseECPrivateKey(der)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
		}
		return NewSecp256r1Signer(privateKey)
	case len(curveOID) == 0:
		return nil, fmt.Errorf("%w: EC key has no named curve", ErrMalformedKey)
	default:
		return nil, fmt.Errorf("%w: curve OID %s", ErrUnsupportedCurve, curveOID)
	}
}

func parsePKCS8(der []byte) (Signer, error) {
	var info pkcs8
	if _, err := asn1.Unmarshal(der, &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}

	if info.Algo.Algorithm.Equal(oidPublicKeyECDSA) {
		var curveOID asn1.ObjectIdentifier
		if _, err := asn1.Unmarshal(info.Algo.Parameters.FullBytes, &curveOID); err != nil {
			return nil, fmt.Errorf("%w: invalid EC parameters: %w", ErrMalformedKey, err)
		}
		// The standard library rejects secp256k1, so decode it here.
		if curveOID.Equal(oidNamedCurveSecp256k1) {
			return parseSEC1(info.PrivateKey, curveOID)
		}
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}
	ecKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %T keys cannot produce ECDSA signatures", ErrUnsupportedCurve, key)
	}
	return NewSecp256r1Signer(ecKey)
}

// EncodePrivateKeyPEM returns the SEC 1 PEM encoding of the signer's key.
func EncodePrivateKeyPEM(s Signer) ([]byte, error) {
	var der []byte
	switch signer := s.(type) {
	case *Secp256r1Signer:
		var err error
		der, err = x509.MarshalECPrivateKey(signer.privateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal private key: %w", err)
		}
	case *Secp256k1Signer:
		var err error
		der, err = asn1.Marshal(ecPrivateKey{
			Version:       1,
			PrivateKey:    signer.privateKey.Serialize(),
			NamedCurveOID: oidNamedCurveSecp256k1,
			PublicKey:     bitString(signer.PublicKey()),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal private key: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedCurve, s)
	}
	defer ZeroBytes(der)
	return pem.EncodeToMemory(&pem.Block{Type: pemTypeECPrivateKey, Bytes: der}), nil
}

// EncodePublicKeyPEM returns the PKIX ("PUBLIC KEY") PEM encoding of the
// signer's public key, the form registered with the vault API.
func EncodePublicKeyPEM(s Signer) ([]byte, error) {
	var curveOID asn1.ObjectIdentifier
	switch s.Curve() {
	case CurveSecp256r1:
		curveOID = oidNamedCurveP256
	case CurveSecp256k1:
		curveOID = oidNamedCurveSecp256k1
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurve, s.Curve())
	}
	params, err := asn1.Marshal(curveOID)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal curve: %w", err)
	}
	der, err := asn1.Marshal(subjectPublicKeyInfo{
		Algorithm: pkix.AlgorithmIdentifier{
			Algorithm:  oidPublicKeyECDSA,
			Parameters: asn1.RawValue{FullBytes: params},
		},
		PublicKey: bitString(s.PublicKey()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypePublicKey, Bytes: der}), nil
}

// ParsePublicKeyPEM decodes a PKIX public key on P-256 or secp256k1 and
// returns a Verifier.
func ParsePublicKeyPEM(data []byte) (*Verifier, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemTypePublicKey {
		return nil, fmt.Errorf("%w: no public key PEM block found", ErrMalformedKey)
	}
	var spki subjectPublicKeyInfo
	if _, err := asn1.Unmarshal(block.Bytes, &spki); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}
	if !spki.Algorithm.Algorithm.Equal(oidPublicKeyECDSA) {
		return nil, fmt.Errorf("%w: public key algorithm %s", ErrUnsupportedCurve, spki.Algorithm.Algorithm)
	}
	var curveOID asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(spki.Algorithm.Parameters.FullBytes, &curveOID); err != nil {
		return nil, fmt.Errorf("%w: invalid EC parameters: %w", ErrMalformedKey, err)
	}

	switch {
	case curveOID.Equal(oidNamedCurveSecp256k1):
		pub, err := secp256k1.ParsePubKey(spki.PublicKey.RightAlign())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
		}
		return &Verifier{curve: CurveSecp256k1, secp256k1Key: pub}, nil
	case curveOID.Equal(oidNamedCurveP256):
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
		}
		pub, ok := key.(*ecdsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedCurve, key)
		}
		return &Verifier{curve: CurveSecp256r1, p256Key: pub}, nil
	default:
		return nil, fmt.Errorf("%w: curve OID %s", ErrUnsupportedCurve, curveOID)
	}
}

func bitString(b []byte) asn1.BitString {
	return asn1.BitString{Bytes: b, BitLength: 8 * len(b)}
}
