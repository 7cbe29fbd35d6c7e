package crypto

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hvbr1s/fordefi-raw-calls/internal/keystore"
)

const testBody = `{"signer_type":"api_signer","vault_id":"v1","note":"","type":"evm_transaction"}`

func writeKey(t *testing.T, pemBytes []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "private.pem")
	if err := os.WriteFile(path, pemBytes, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return path
}

func generatePEM(t *testing.T, curve Curve) (Signer, []byte) {
	t.Helper()
	signer, err := GenerateKey(curve)
	if err != nil {
		t.Fatalf("GenerateKey(%s): %v", curve, err)
	}
	pemBytes, err := EncodePrivateKeyPEM(signer)
	if err != nil {
		t.Fatalf("EncodePrivateKeyPEM: %v", err)
	}
	return signer, pemBytes
}

func verifierFor(t *testing.T, signer Signer) *Verifier {
	t.Helper()
	pubPEM, err := EncodePublicKeyPEM(signer)
	if err != nil {
		t.Fatalf("EncodePublicKeyPEM: %v", err)
	}
	verifier, err := ParsePublicKeyPEM(pubPEM)
	if err != nil {
		t.Fatalf("ParsePublicKeyPEM: %v", err)
	}
	return verifier
}

func TestSignablePayload(t *testing.T) {
	got := SignablePayload("/api/v1/transactions", "1700000000", []byte(testBody))
	want := "/api/v1/transactions|1700000000|" + testBody
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSignablePayload_NoEscaping(t *testing.T) {
	body := []byte(`{"note":"a|b"}`)
	got := SignablePayload("/p", "1", body)
	if got != `/p|1|{"note":"a|b"}` {
		t.Errorf("unexpected payload %q", got)
	}
	if !strings.HasSuffix(got, string(body)) {
		t.Errorf("payload must end with the body")
	}
}

func TestSignVerify(t *testing.T) {
	for _, curve := range []Curve{CurveSecp256r1, CurveSecp256k1} {
		t.Run(string(curve), func(t *testing.T) {
			signer, pemBytes := generatePEM(t, curve)
			verifier := verifierFor(t, signer)
			if verifier.Curve() != curve {
				t.Errorf("verifier curve %s, want %s", verifier.Curve(), curve)
			}

			ps := NewPayloadSigner(keystore.NewFileSource(writeKey(t, pemBytes), nil), nil)
			sig, err := ps.Sign(context.Background(), "/api/v1/transactions", "1700000000", []byte(testBody))
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}

			payload := []byte(SignablePayload("/api/v1/transactions", "1700000000", []byte(testBody)))
			if !verifier.Verify(payload, sig) {
				t.Fatal("signature does not verify")
			}

			// Flip each region of the payload: path, timestamp, body.
			for _, i := range []int{0, len("/api/v1/transactions|"), len(payload) - 1} {
				tampered := bytes.Clone(payload)
				tampered[i] ^= 0x01
				if verifier.Verify(tampered, sig) {
					t.Errorf("signature verified for payload modified at byte %d", i)
				}
			}
		})
	}
}

func TestSign_DEREncoding(t *testing.T) {
	for _, curve := range []Curve{CurveSecp256r1, CurveSecp256k1} {
		t.Run(string(curve), func(t *testing.T) {
			signer, _ := generatePEM(t, curve)
			sig, err := signer.Sign([]byte("payload"))
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}
			// DER SEQUENCE tag and length covering the rest.
			if sig[0] != 0x30 || int(sig[1]) != len(sig)-2 {
				t.Errorf("signature is not a DER sequence: %x", sig)
			}
		})
	}
}

func TestParsePrivateKeyPEM_RoundTrip(t *testing.T) {
	for _, curve := range []Curve{CurveSecp256r1, CurveSecp256k1} {
		t.Run(string(curve), func(t *testing.T) {
			signer, pemBytes := generatePEM(t, curve)
			parsed, err := ParsePrivateKeyPEM(pemBytes)
			if err != nil {
				t.Fatalf("ParsePrivateKeyPEM: %v", err)
			}
			if parsed.Curve() != curve {
				t.Errorf("curve %s, want %s", parsed.Curve(), curve)
			}
			if !bytes.Equal(parsed.PublicKey(), signer.PublicKey()) {
				t.Error("public key mismatch after round trip")
			}
			if len(parsed.PublicKey()) != 65 || parsed.PublicKey()[0] != 0x04 {
				t.Errorf("unexpected public key encoding: %x", parsed.PublicKey())
			}
		})
	}
}

func TestParsePrivateKeyPEM_PKCS8(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	signer, err := ParsePrivateKeyPEM(pemBytes)
	if err != nil {
		t.Fatalf("ParsePrivateKeyPEM: %v", err)
	}
	sig, err := signer.Sign([]byte("payload"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	hash := sha256Sum([]byte("payload"))
	if !ecdsa.VerifyASN1(&key.PublicKey, hash, sig) {
		t.Error("PKCS8 signature does not verify")
	}
}

func TestParsePrivateKeyPEM_SkipsECParameters(t *testing.T) {
	_, keyPEM := generatePEM(t, CurveSecp256r1)
	params := pem.EncodeToMemory(&pem.Block{Type: "EC PARAMETERS", Bytes: []byte{0x06, 0x08, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07}})

	signer, err := ParsePrivateKeyPEM(append(params, keyPEM...))
	if err != nil {
		t.Fatalf("ParsePrivateKeyPEM: %v", err)
	}
	if signer.Curve() != CurveSecp256r1 {
		t.Errorf("unexpected curve %s", signer.Curve())
	}
}

func TestParsePrivateKeyPEM_Errors(t *testing.T) {
	p384, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	p384DER, err := x509.MarshalECPrivateKey(p384)
	if err != nil {
		t.Fatal(err)
	}
	_, edKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	edDER, err := x509.MarshalPKCS8PrivateKey(edKey)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{"not pem", []byte("not a key"), ErrMalformedKey},
		{"garbage der", pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: []byte{1, 2, 3}}), ErrMalformedKey},
		{"p384", pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: p384DER}), ErrUnsupportedCurve},
		{"ed25519", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: edDER}), ErrUnsupportedCurve},
		{"rsa block", pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: []byte{1}}), ErrUnsupportedCurve},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrivateKeyPEM(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPayloadSigner_MissingKey(t *testing.T) {
	ps := NewPayloadSigner(keystore.NewFileSource(filepath.Join(t.TempDir(), "missing.pem"), nil), nil)
	_, err := ps.Sign(context.Background(), "/api/v1/transactions", "1", []byte(testBody))
	if !errors.Is(err, keystore.ErrKeyUnavailable) {
		t.Fatalf("expected ErrKeyUnavailable, got %v", err)
	}
}

func TestPayloadSigner_MalformedKey(t *testing.T) {
	ps := NewPayloadSigner(keystore.NewFileSource(writeKey(t, []byte("garbage")), nil), nil)
	_, err := ps.Sign(context.Background(), "/api/v1/transactions", "1", []byte(testBody))
	if !errors.Is(err, keystore.ErrKeyUnavailable) {
		t.Fatalf("expected ErrKeyUnavailable, got %v", err)
	}
}

func TestPayloadSigner_ContextCanceled(t *testing.T) {
	_, pemBytes := generatePEM(t, CurveSecp256r1)
	ps := NewPayloadSigner(keystore.NewFileSource(writeKey(t, pemBytes), nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ps.Sign(ctx, "/api/v1/transactions", "1", []byte(testBody))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, keystore.ErrKeyUnavailable) {
		t.Error("cancellation must not be reported as an unavailable key")
	}
}

func TestPayloadSigner_UnsupportedCurve(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	path := writeKey(t, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))

	ps := NewPayloadSigner(keystore.NewFileSource(path, nil), nil)
	_, err = ps.Sign(context.Background(), "/api/v1/transactions", "1", []byte(testBody))
	if !errors.Is(err, ErrSigningFailure) {
		t.Fatalf("expected ErrSigningFailure, got %v", err)
	}
	if errors.Is(err, keystore.ErrKeyUnavailable) {
		t.Error("unsupported curve must not be reported as an unavailable key")
	}
}

func TestPayloadSigner_Concurrent(t *testing.T) {
	signer, pemBytes := generatePEM(t, CurveSecp256r1)
	verifier := verifierFor(t, signer)
	ps := NewPayloadSigner(keystore.NewFileSource(writeKey(t, pemBytes), nil), nil)

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			ts := "17000000" + string(rune('0'+i)) + "0"
			sig, err := ps.Sign(context.Background(), "/p", ts, []byte(testBody))
			if err == nil && !verifier.Verify([]byte(SignablePayload("/p", ts, []byte(testBody))), sig) {
				err = errors.New("signature does not verify")
			}
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}

func TestGenerateKey_Unsupported(t *testing.T) {
	if _, err := GenerateKey("ed25519"); !errors.Is(err, ErrUnsupportedCurve) {
		t.Errorf("expected ErrUnsupportedCurve, got %v", err)
	}
}

func TestZeroBytes(t *testing.T) {
	b := []byte{1, 2, 3}
	ZeroBytes(b)
	if !bytes.Equal(b, []byte{0, 0, 0}) {
		t.Errorf("expected zeroed bytes, got %v", b)
	}
}

func sha256Sum(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}
