package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hvbr1s/fordefi-raw-calls/internal/evmtx"
)

func newCalldataCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "calldata <signature> [args...]",
		Short:   "Encode call data for a function signature",
		Example: `  vault-tx-submit calldata "approve(address,uint256)" 0x7099...79C8 1000000`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := evmtx.ParseFunction(args[0])
			if err != nil {
				return err
			}
			data, err := evmtx.EncodeCall(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Function: %s\n", fn.Signature())
			fmt.Fprintf(a.stdout, "Selector: 0x%s\n", hex.EncodeToString(fn.Selector()))
			fmt.Fprintln(a.stdout, data)
			return nil
		},
	}
}
