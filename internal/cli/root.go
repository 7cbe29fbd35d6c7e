// Package cli implements the vault-tx-submit command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/hvbr1s/fordefi-raw-calls/internal/config"
	"github.com/hvbr1s/fordefi-raw-calls/internal/pipeline"
	vaultsdk "github.com/hvbr1s/fordefi-raw-calls/sdk"
)

const appName = "vault-tx-submit"

// app carries the global flags and shared dependencies of every subcommand.
type app struct {
	configFile string
	envFile    string
	logLevel   string
	logJSON    bool

	logger hclog.Logger
	stdout io.Writer
	stderr io.Writer
}

// NewRootCommand returns the root command writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   appName,
		Short: "Build, sign and submit raw EVM transactions to the vault API",
		Long: `Build, sign and submit raw EVM transactions to the vault API.

Requires configuration through ENV (FORDEFI_API_TOKEN, EVM_VAULT_ID,
API_SIGNER_KEY_PATH, ...), an optional .env file or a YAML config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogger()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML config file")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file, ignored when absent")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.BoolVar(&a.logJSON, "log-json", false, "emit logs as JSON")

	root.AddCommand(
		newSubmitCommand(a),
		newBatchCommand(a),
		newGetCommand(a),
		newKeygenCommand(a),
		newPubkeyCommand(a),
		newCalldataCommand(a),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "❌ %s\n", failureMessage(err))
		return 1
	}
	return 0
}

// transactionError marks a failure of the submit command, whatever stage
// it came from.
type transactionError struct {
	err error
}

func (e *transactionError) Error() string { return e.err.Error() }

func (e *transactionError) Unwrap() error { return e.err }

func failureMessage(err error) string {
	var pe *pipeline.Error
	var te *transactionError
	if errors.As(err, &pe) || errors.As(err, &te) {
		return "Transaction failed: " + err.Error()
	}
	return err.Error()
}

func (a *app) initLogger() error {
	level := hclog.LevelFromString(a.logLevel)
	if level == hclog.NoLevel {
		return fmt.Errorf("invalid log level %q", a.logLevel)
	}
	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:       appName,
		Level:      level,
		Output:     a.stderr,
		JSONFormat: a.logJSON,
	})
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	return config.Load(config.LoadOptions{
		ConfigFile: a.configFile,
		EnvFile:    a.envFile,
	})
}

// newPipeline validates cfg and assembles a submission pipeline.
func (a *app) newPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &pipeline.Error{Stage: pipeline.StageConfigure, Kind: pipeline.KindConfigurationMissing, Err: err}
	}
	policy, err := cfg.BuilderPolicy()
	if err != nil {
		return nil, &pipeline.Error{Stage: pipeline.StageConfigure, Kind: pipeline.KindConfigurationMissing, Err: err}
	}
	source, err := cfg.KeySource(a.logger.Named("keystore"))
	if err != nil {
		return nil, &pipeline.Error{Stage: pipeline.StageConfigure, Kind: pipeline.KindConfigurationMissing, Err: err}
	}
	return pipeline.New(pipeline.Config{
		APIToken: cfg.APIToken,
		VaultID:  cfg.VaultID,
		BaseURL:  cfg.BaseURL,
		Path:     cfg.Path,
		Policy:   policy,
	}, source,
		pipeline.WithLogger(a.logger.Named("pipeline")),
		pipeline.WithClientOptions(vaultsdk.WithTimeout(cfg.Timeout)),
	)
}

// newClient returns an API client for read-only calls that need no signing key.
func (a *app) newClient(cfg *config.Config) (vaultsdk.Client, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: api_token (FORDEFI_API_TOKEN)", config.ErrConfigurationMissing)
	}
	return vaultsdk.NewClient(cfg.BaseURL, cfg.APIToken,
		vaultsdk.WithTimeout(cfg.Timeout),
		vaultsdk.WithLogger(a.logger.Named("client")),
	)
}
