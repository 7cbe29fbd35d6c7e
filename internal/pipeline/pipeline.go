// Package pipeline runs one transaction through build, sign and submit.
//
// Each Submit call is an isolated unit of work: it captures its own
// timestamp, serializes the request once, signs those bytes and transmits
// them unchanged. A Pipeline holds only immutable configuration and may be
// shared across goroutines.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/hvbr1s/fordefi-raw-calls/internal/crypto"
	"github.com/hvbr1s/fordefi-raw-calls/internal/keystore"
	"github.com/hvbr1s/fordefi-raw-calls/internal/txbuilder"
	vaultsdk "github.com/hvbr1s/fordefi-raw-calls/sdk"
)

// State is a step of a single submission.
type State string

const (
	StateBuilt     State = "built"
	StateSigned    State = "signed"
	StateSubmitted State = "submitted"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Config is the explicit configuration of a Pipeline.
type Config struct {
	// APIToken is the bearer credential (required).
	APIToken string

	// VaultID is used when Params.VaultID is empty (required).
	VaultID string

	// BaseURL of the API. Default: vaultsdk.DefaultBaseURL.
	BaseURL string

	// Path is both the request path and the signed path.
	// Default: vaultsdk.TransactionsPath.
	Path string

	// Policy is merged into every request. The zero value selects
	// txbuilder.DefaultPolicy.
	Policy txbuilder.Policy
}

// Result describes an accepted transaction.
type Result struct {
	TransactionID string
	State         string
	IdempotenceID string
	Timestamp     string
	Body          []byte
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for state transitions.
func WithLogger(logger hclog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithClient replaces the API client built from Config.
func WithClient(client vaultsdk.Client) Option {
	return func(p *Pipeline) {
		p.client = client
	}
}

// WithClientOptions passes options to the API client built from Config.
func WithClientOptions(opts ...vaultsdk.Option) Option {
	return func(p *Pipeline) {
		p.clientOpts = append(p.clientOpts, opts...)
	}
}

// WithClock sets the time source for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithIdempotenceIDs sets the generator for x-idempotence-id values. A
// generator returning "" disables the header.
func WithIdempotenceIDs(next func() string) Option {
	return func(p *Pipeline) {
		p.newID = next
	}
}

// Pipeline submits transactions.
type Pipeline struct {
	cfg        Config
	builder    *txbuilder.Builder
	signer     *crypto.PayloadSigner
	client     vaultsdk.Client
	clientOpts []vaultsdk.Option
	logger     hclog.Logger
	now        func() time.Time
	newID      func() string
}

// New validates cfg and returns a Pipeline signing with keys from source.
// Every error is a *Error of kind KindConfigurationMissing.
func New(cfg Config, source keystore.Source, opts ...Option) (*Pipeline, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = vaultsdk.DefaultBaseURL
	}
	if cfg.Path == "" {
		cfg.Path = vaultsdk.TransactionsPath
	}
	if cfg.Policy == (txbuilder.Policy{}) {
		cfg.Policy = txbuilder.DefaultPolicy()
	}

	var missing []string
	if cfg.APIToken == "" {
		missing = append(missing, "api token")
	}
	if cfg.VaultID == "" {
		missing = append(missing, "vault id")
	}
	if source == nil {
		missing = append(missing, "signing key source")
	}
	if len(missing) > 0 {
		return nil, configError(errors.New(strings.Join(missing, ", ")))
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, configError(fmt.Errorf("invalid policy: %w", err))
	}

	p := &Pipeline{
		cfg:     cfg,
		builder: txbuilder.New(cfg.Policy),
		logger:  hclog.NewNullLogger(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = hclog.NewNullLogger()
	}
	p.signer = crypto.NewPayloadSigner(source, p.logger.Named("signer"))

	if p.client == nil {
		clientOpts := append([]vaultsdk.Option{vaultsdk.WithLogger(p.logger.Named("client"))}, p.clientOpts...)
		client, err := vaultsdk.NewClient(cfg.BaseURL, cfg.APIToken, clientOpts...)
		if err != nil {
			return nil, configError(err)
		}
		p.client = client
	}
	return p, nil
}

// Submit builds, signs and submits one transaction. On failure it returns a
// *Error; nothing is retried.
func (p *Pipeline) Submit(ctx context.Context, params txbuilder.Params) (*Result, error) {
	if params.VaultID == "" {
		params.VaultID = p.cfg.VaultID
	}
	id := p.newID()
	logger := p.logger.With("idempotence_id", id, "chain", params.Chain)

	body, err := txbuilder.Serialize(p.builder.Build(params))
	if err != nil {
		return nil, p.fail(logger, &Error{Stage: StageBuild, Kind: KindSigningFailure, Err: err})
	}
	timestamp := strconv.FormatInt(p.now().Unix(), 10)
	logger.Debug("transaction state", "state", StateBuilt, "timestamp", timestamp)

	signature, err := p.signer.Sign(ctx, p.cfg.Path, timestamp, body)
	if err != nil {
		return nil, p.fail(logger, signError(ctx, err))
	}
	logger.Debug("transaction state", "state", StateSigned)

	logger.Debug("transaction state", "state", StateSubmitted, "path", p.cfg.Path)
	tx, err := p.client.CreateTransaction(ctx, &vaultsdk.SignedRequest{
		Path:          p.cfg.Path,
		Timestamp:     timestamp,
		Signature:     signature,
		Body:          body,
		IdempotenceID: id,
	})
	if err != nil {
		return nil, p.fail(logger, submitError(ctx, err))
	}

	logger.Info("transaction state", "state", StateSucceeded, "transaction_id", tx.ID)
	return &Result{
		TransactionID: tx.ID,
		State:         tx.State,
		IdempotenceID: id,
		Timestamp:     timestamp,
		Body:          body,
	}, nil
}

func (p *Pipeline) fail(logger hclog.Logger, err *Error) error {
	attrs := []any{"state", StateFailed, "stage", err.Stage, "kind", err.Kind, "error", err.Err}
	var apiErr *vaultsdk.Error
	if errors.As(err.Err, &apiErr) {
		attrs = append(attrs, "status", apiErr.StatusCode)
	}
	logger.Error("transaction state", attrs...)
	return err
}
