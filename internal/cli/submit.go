package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hvbr1s/fordefi-raw-calls/internal/evmtx"
	"github.com/hvbr1s/fordefi-raw-calls/internal/txbuilder"
)

type submitOptions struct {
	chain    string
	to       string
	data     string
	function string
	args     []string
	value    string
	valueETH string
	note     string
	vaultID  string
	dryRun   bool
}

func newSubmitCommand(a *app) *cobra.Command {
	o := &submitOptions{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit one raw EVM transaction",
		Example: `  vault-tx-submit submit --chain arbitrum --to 0x5FbD...0aa3 --data 0xd0e30db0 --value-eth 0.0001
  vault-tx-submit submit --chain ethereum --to 0xA0b8...eB48 \
      --function "transfer(address,uint256)" --arg 0x7099...79C8 --arg 1000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.run(cmd, a); err != nil {
				return &transactionError{err: err}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.chain, "chain", "", "chain name, e.g. ethereum, arbitrum, base")
	f.StringVar(&o.to, "to", "", "target contract address")
	f.StringVar(&o.data, "data", "", "hex call data")
	f.StringVar(&o.function, "function", "", "function signature to encode, e.g. \"transfer(address,uint256)\"")
	f.StringArrayVar(&o.args, "arg", nil, "function argument, repeatable")
	f.StringVar(&o.value, "value", "0", "native value in wei")
	f.StringVar(&o.valueETH, "value-eth", "", "native value in ether")
	f.StringVar(&o.note, "note", "", "transaction note")
	f.StringVar(&o.vaultID, "vault-id", "", "vault id, overrides EVM_VAULT_ID")
	f.BoolVar(&o.dryRun, "dry-run", false, "print the request instead of submitting it")
	_ = cmd.MarkFlagRequired("chain")
	_ = cmd.MarkFlagRequired("to")
	cmd.MarkFlagsMutuallyExclusive("data", "function")
	cmd.MarkFlagsMutuallyExclusive("value", "value-eth")
	return cmd
}

func (o *submitOptions) params() (txbuilder.Params, error) {
	if _, err := evmtx.ChecksumAddress(o.to); err != nil {
		return txbuilder.Params{}, fmt.Errorf("invalid --to address: %w", err)
	}
	if len(o.args) > 0 && o.function == "" {
		return txbuilder.Params{}, fmt.Errorf("--arg requires --function")
	}

	data := o.data
	if o.function != "" {
		encoded, err := evmtx.EncodeCall(o.function, o.args)
		if err != nil {
			return txbuilder.Params{}, fmt.Errorf("failed to encode call data: %w", err)
		}
		data = encoded
	}

	value := o.value
	if o.valueETH != "" {
		wei, err := txbuilder.EtherToWei(o.valueETH)
		if err != nil {
			return txbuilder.Params{}, err
		}
		value = wei
	}

	return txbuilder.Params{
		Chain:   o.chain,
		VaultID: o.vaultID,
		To:      o.to,
		Note:    o.note,
		HexData: data,
		Value:   value,
	}, nil
}

func (o *submitOptions) run(cmd *cobra.Command, a *app) error {
	params, err := o.params()
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	if o.dryRun {
		policy, err := cfg.BuilderPolicy()
		if err != nil {
			return err
		}
		if params.VaultID == "" {
			params.VaultID = cfg.VaultID
		}
		out, err := json.MarshalIndent(txbuilder.New(policy).Build(params), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(out))
		return nil
	}

	p, err := a.newPipeline(cfg)
	if err != nil {
		return err
	}
	res, err := p.Submit(cmd.Context(), params)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "✅ Transaction submitted successfully!")
	fmt.Fprintf(a.stdout, "Transaction ID: %s\n", res.TransactionID)
	if res.State != "" {
		fmt.Fprintf(a.stdout, "State: %s\n", res.State)
	}
	return nil
}
