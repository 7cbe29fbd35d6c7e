// Package config loads the submitter configuration from defaults, an optional
// YAML file, an optional .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/hvbr1s/fordefi-raw-calls/internal/keystore"
	"github.com/hvbr1s/fordefi-raw-calls/internal/txbuilder"
	vaultsdk "github.com/hvbr1s/fordefi-raw-calls/sdk"
)

// ErrConfigurationMissing is returned when a required value is absent.
var ErrConfigurationMissing = errors.New("configuration missing")

const (
	DefaultKeyPath     = "./secret/private.pem"
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 4
)

// Config is the complete runtime configuration. It is built once at startup
// and passed explicitly to the components that need it.
type Config struct {
	APIToken    string        `mapstructure:"api_token"`
	VaultID     string        `mapstructure:"vault_id"`
	BaseURL     string        `mapstructure:"base_url"`
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
	Key         KeyConfig     `mapstructure:"key"`
	Policy      PolicyConfig  `mapstructure:"policy"`
}

// KeyConfig selects where the API signer private key is read from. A
// non-empty Vault.Path takes precedence over Path.
type KeyConfig struct {
	Path  string         `mapstructure:"path"`
	Vault VaultKeyConfig `mapstructure:"vault"`
}

// VaultKeyConfig locates a PEM key stored in a HashiCorp Vault KV secret.
type VaultKeyConfig struct {
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
	Path    string `mapstructure:"path"`
	Field   string `mapstructure:"field"`
}

// PolicyConfig overrides the submission policy. Fees are in gwei.
type PolicyConfig struct {
	SignerType              string `mapstructure:"signer_type"`
	SignMode                string `mapstructure:"sign_mode"`
	NetworkSuffix           string `mapstructure:"network_suffix"`
	PushMode                string `mapstructure:"push_mode"`
	SkipPrediction          bool   `mapstructure:"skip_prediction"`
	FailOnPredictionFailure bool   `mapstructure:"fail_on_prediction_failure"`
	GasLimit                string `mapstructure:"gas_limit"`
	MaxPriorityFeeGwei      string `mapstructure:"max_priority_fee_gwei"`
	MaxFeeGwei              string `mapstructure:"max_fee_gwei"`
}

// LoadOptions names the optional files Load reads.
type LoadOptions struct {
	// ConfigFile is a YAML file. Empty skips it.
	ConfigFile string

	// EnvFile is a dotenv file. A missing file is ignored.
	EnvFile string
}

type binding struct {
	key  string
	envs []string
}

// Environment variables, in lookup order per key.
var bindings = []binding{
	{"api_token", []string{"FORDEFI_API_TOKEN", "VAULT_API_TOKEN"}},
	{"vault_id", []string{"EVM_VAULT_ID", "VAULT_ID"}},
	{"base_url", []string{"VAULT_API_BASE_URL"}},
	{"path", []string{"VAULT_API_PATH"}},
	{"timeout", []string{"VAULT_API_TIMEOUT"}},
	{"concurrency", []string{"VAULT_API_CONCURRENCY"}},
	{"key.path", []string{"API_SIGNER_KEY_PATH"}},
	{"key.vault.address", []string{"KEY_VAULT_ADDR"}},
	{"key.vault.token", []string{"KEY_VAULT_TOKEN"}},
	{"key.vault.path", []string{"KEY_VAULT_PATH"}},
	{"key.vault.field", []string{"KEY_VAULT_FIELD"}},
	{"policy.network_suffix", []string{"POLICY_NETWORK_SUFFIX"}},
	{"policy.gas_limit", []string{"POLICY_GAS_LIMIT"}},
	{"policy.max_priority_fee_gwei", []string{"POLICY_MAX_PRIORITY_FEE_GWEI"}},
	{"policy.max_fee_gwei", []string{"POLICY_MAX_FEE_GWEI"}},
	{"policy.skip_prediction", []string{"POLICY_SKIP_PREDICTION"}},
	{"policy.fail_on_prediction_failure", []string{"POLICY_FAIL_ON_PREDICTION_FAILURE"}},
}

func setDefaults(v *viper.Viper) {
	p := txbuilder.DefaultPolicy()
	v.SetDefault("base_url", vaultsdk.DefaultBaseURL)
	v.SetDefault("path", vaultsdk.TransactionsPath)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("key.path", DefaultKeyPath)
	v.SetDefault("key.vault.field", keystore.DefaultVaultField)
	v.SetDefault("policy.signer_type", p.SignerType)
	v.SetDefault("policy.sign_mode", p.SignMode)
	v.SetDefault("policy.network_suffix", p.NetworkSuffix)
	v.SetDefault("policy.push_mode", p.PushMode)
	v.SetDefault("policy.skip_prediction", p.SkipPrediction)
	v.SetDefault("policy.fail_on_prediction_failure", p.FailOnPredictionFailure)
	v.SetDefault("policy.gas_limit", p.GasLimit)
	v.SetDefault("policy.max_priority_fee_gwei", "2")
	v.SetDefault("policy.max_fee_gwei", "3")
}

// Load resolves the configuration. Precedence, highest first: process
// environment, .env file, YAML file, defaults. Load does not validate; call
// Validate before use.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for _, b := range bindings {
		if err := v.BindEnv(append([]string{b.key}, b.envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", b.key, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	}

	if opts.EnvFile != "" {
		if err := applyEnvFile(v, opts.EnvFile); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// applyEnvFile reads a dotenv file without touching the process environment.
// A value from the file is used only when none of the key's variables are set.
func applyEnvFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	env, err := gotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	for _, b := range bindings {
		if envSet(b.envs) {
			continue
		}
		for _, name := range b.envs {
			if val, ok := env[name]; ok && val != "" {
				v.Set(b.key, val)
				break
			}
		}
	}
	return nil
}

func envSet(names []string) bool {
	for _, name := range names {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// Validate reports every missing required value in a single error wrapping
// ErrConfigurationMissing.
func (c *Config) Validate() error {
	var missing []string
	if c.APIToken == "" {
		missing = append(missing, "api_token (FORDEFI_API_TOKEN)")
	}
	if c.VaultID == "" {
		missing = append(missing, "vault_id (EVM_VAULT_ID)")
	}
	if c.BaseURL == "" {
		missing = append(missing, "base_url (VAULT_API_BASE_URL)")
	}
	if c.Path == "" {
		missing = append(missing, "path (VAULT_API_PATH)")
	}
	if c.Key.Path == "" && c.Key.Vault.Path == "" {
		missing = append(missing, "key.path (API_SIGNER_KEY_PATH)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("invalid concurrency %d: must be positive", c.Concurrency)
	}
	return nil
}

// BuilderPolicy converts the policy section into a validated txbuilder.Policy.
func (c *Config) BuilderPolicy() (txbuilder.Policy, error) {
	p := txbuilder.DefaultPolicy()
	pc := c.Policy

	if pc.SignerType != "" {
		p.SignerType = pc.SignerType
	}
	if pc.SignMode != "" {
		p.SignMode = pc.SignMode
	}
	if pc.NetworkSuffix != "" {
		p.NetworkSuffix = pc.NetworkSuffix
	}
	if pc.PushMode != "" {
		p.PushMode = pc.PushMode
	}
	if pc.GasLimit != "" {
		p.GasLimit = pc.GasLimit
	}
	p.SkipPrediction = pc.SkipPrediction
	p.FailOnPredictionFailure = pc.FailOnPredictionFailure

	if pc.MaxPriorityFeeGwei != "" {
		wei, err := txbuilder.GweiToWei(pc.MaxPriorityFeeGwei)
		if err != nil {
			return txbuilder.Policy{}, fmt.Errorf("policy.max_priority_fee_gwei: %w", err)
		}
		p.MaxPriorityFeePerGas = wei
	}
	if pc.MaxFeeGwei != "" {
		wei, err := txbuilder.GweiToWei(pc.MaxFeeGwei)
		if err != nil {
			return txbuilder.Policy{}, fmt.Errorf("policy.max_fee_gwei: %w", err)
		}
		p.MaxFeePerGas = wei
	}

	if err := p.Validate(); err != nil {
		return txbuilder.Policy{}, err
	}
	return p, nil
}

// KeySource returns the configured signing key source.
func (c *Config) KeySource(logger hclog.Logger) (keystore.Source, error) {
	if c.Key.Vault.Path != "" {
		src, err := keystore.NewVaultSource(keystore.VaultOptions{
			Address: c.Key.Vault.Address,
			Token:   c.Key.Vault.Token,
			Path:    c.Key.Vault.Path,
			Field:   c.Key.Vault.Field,
		}, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	if c.Key.Path == "" {
		return nil, fmt.Errorf("%w: key.path (API_SIGNER_KEY_PATH)", ErrConfigurationMissing)
	}
	return keystore.NewFileSource(c.Key.Path, logger), nil
}
