package keystore

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/vault/api"
)

// DefaultVaultField is the secret field holding the PEM key.
const DefaultVaultField = "private_key"

// VaultSource reads the key from a HashiCorp Vault KV secret. Both KV v1
// ("secret/foo") and KV v2 ("secret/data/foo") paths are supported.
type VaultSource struct {
	client *api.Client
	path   string
	field  string
	logger hclog.Logger
}

// Compile-time check that VaultSource implements Source.
var _ Source = (*VaultSource)(nil)

// VaultOptions configures NewVaultSource.
type VaultOptions struct {
	// Address of the Vault server. Empty uses VAULT_ADDR.
	Address string

	// Token for Vault. Empty uses VAULT_TOKEN.
	Token string

	// Path is the logical path of the secret (required).
	Path string

	// Field is the secret field holding the PEM. Default: DefaultVaultField.
	Field string
}

// NewVaultSource creates a Vault-backed key source.
func NewVaultSource(opts VaultOptions, logger hclog.Logger) (*VaultSource, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("vault secret path is required")
	}
	cfg := api.DefaultConfig()
	if cfg.Error != nil {
		return nil, fmt.Errorf("failed to read vault environment: %w", cfg.Error)
	}
	if opts.Address != "" {
		cfg.Address = opts.Address
	}
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if opts.Token != "" {
		client.SetToken(opts.Token)
	}
	return NewVaultSourceWithClient(client, opts.Path, opts.Field, logger), nil
}

// NewVaultSourceWithClient wraps an existing Vault client.
func NewVaultSourceWithClient(client *api.Client, path, field string, logger hclog.Logger) *VaultSource {
	if field == "" {
		field = DefaultVaultField
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &VaultSource{
		client: client,
		path:   strings.Trim(path, "/"),
		field:  field,
		logger: logger,
	}
}

// Load reads the secret and returns its PEM field.
func (s *VaultSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	secret, err := s.client.Logical().ReadWithContext(ctx, s.path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: failed to read vault secret: %w", ErrKeyUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: vault secret %s not found", ErrKeyUnavailable, s.path)
	}

	data := secret.Data
	// KV v2 nests the payload under "data".
	if nested, ok := data["data"].(map[string]interface{}); ok {
		data = nested
	}

	value, ok := data[s.field].(string)
	if !ok || value == "" {
		return nil, fmt.Errorf("%w: field %q missing from vault secret %s", ErrKeyUnavailable, s.field, s.path)
	}
	s.logger.Debug("loaded signing key", "source", s.String())
	return []byte(value), nil
}

func (s *VaultSource) String() string {
	return "vault:" + s.path + "#" + s.field
}
