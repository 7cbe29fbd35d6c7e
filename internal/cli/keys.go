package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hvbr1s/fordefi-raw-calls/internal/config"
	"github.com/hvbr1s/fordefi-raw-calls/internal/crypto"
	"github.com/hvbr1s/fordefi-raw-calls/internal/evmtx"
)

func newKeygenCommand(a *app) *cobra.Command {
	var (
		curve string
		out   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an API signer key pair",
		Long: `Generate an API signer key pair.

The private key is written as PEM with mode 0600. The public key is printed
and must be registered with the API user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(out); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", out)
			}
			signer, err := crypto.GenerateKey(crypto.Curve(curve))
			if err != nil {
				return err
			}
			privPEM, err := crypto.EncodePrivateKeyPEM(signer)
			if err != nil {
				return err
			}
			defer crypto.ZeroBytes(privPEM)
			pubPEM, err := crypto.EncodePublicKeyPEM(signer)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(out), 0o700); err != nil {
				return fmt.Errorf("failed to create key directory: %w", err)
			}
			if err := os.WriteFile(out, privPEM, 0o600); err != nil {
				return fmt.Errorf("failed to write private key: %w", err)
			}
			a.logger.Info("generated signing key", "curve", signer.Curve(), "path", out)

			fmt.Fprintf(a.stdout, "✅ Private key written to %s\n", out)
			fmt.Fprint(a.stdout, string(pubPEM))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&curve, "curve", string(crypto.CurveSecp256r1), "key curve: secp256r1 or secp256k1")
	f.StringVar(&out, "out", config.DefaultKeyPath, "private key output path")
	f.BoolVar(&force, "force", false, "overwrite an existing key")
	return cmd
}

func newPubkeyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey",
		Short: "Print the public key of the configured signing key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			source, err := cfg.KeySource(a.logger.Named("keystore"))
			if err != nil {
				return err
			}
			privPEM, err := source.Load(cmd.Context())
			if err != nil {
				return err
			}
			defer crypto.ZeroBytes(privPEM)

			signer, err := crypto.ParsePrivateKeyPEM(privPEM)
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
			pubPEM, err := crypto.EncodePublicKeyPEM(signer)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Curve: %s\n", signer.Curve())
			fmt.Fprint(a.stdout, string(pubPEM))

			if signer.Curve() == crypto.CurveSecp256k1 {
				addr, err := evmtx.PubKeyToChecksumAddress(signer.PublicKey())
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "EVM address: %s\n", addr)
			}
			return nil
		},
	}
}
