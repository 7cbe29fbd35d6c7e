package crypto

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hvbr1s/fordefi-raw-calls/internal/keystore"
)

// payloadSeparator joins path, timestamp and body. No escaping is applied.
const payloadSeparator = "|"

// SignablePayload returns "<path>|<timestamp>|<body>".
func SignablePayload(path, timestamp string, body []byte) string {
	return path + payloadSeparator + timestamp + payloadSeparator + string(body)
}

// PayloadSigner signs request payloads with a key loaded from a
// keystore.Source on every call. It keeps no state between calls and is
// safe for concurrent use.
type PayloadSigner struct {
	source keystore.Source
	logger hclog.Logger
}

// NewPayloadSigner creates a PayloadSigner reading keys from source.
func NewPayloadSigner(source keystore.Source, logger hclog.Logger) *PayloadSigner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PayloadSigner{source: source, logger: logger}
}

// Sign signs SignablePayload(path, timestamp, body).
//
// Errors wrap keystore.ErrKeyUnavailable when the key cannot be loaded or
// decoded, and ErrSigningFailure when the key cannot sign. Cancellation of
// ctx is returned as ctx.Err().
func (s *PayloadSigner) Sign(ctx context.Context, path, timestamp string, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pemBytes, err := s.source.Load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, keystore.ErrKeyUnavailable) {
			err = fmt.Errorf("%w: %w", keystore.ErrKeyUnavailable, err)
		}
		return nil, err
	}
	defer ZeroBytes(pemBytes)

	signer, err := ParsePrivateKeyPEM(pemBytes)
	if err != nil {
		if errors.Is(err, ErrUnsupportedCurve) {
			return nil, fmt.Errorf("%w: %w", ErrSigningFailure, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", keystore.ErrKeyUnavailable, s.source, err)
	}

	signature, err := signer.Sign([]byte(SignablePayload(path, timestamp, body)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailure, err)
	}
	s.logger.Debug("payload signed", "curve", signer.Curve(), "path", path, "timestamp", timestamp)
	return signature, nil
}
