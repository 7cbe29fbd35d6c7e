package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCommand(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "get <transaction-id>",
		Short: "Fetch a submitted transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			client, err := a.newClient(cfg)
			if err != nil {
				return err
			}
			tx, err := client.GetTransaction(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if raw {
				var buf bytes.Buffer
				if err := json.Indent(&buf, tx.Raw, "", "  "); err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, buf.String())
				return nil
			}
			fmt.Fprintf(a.stdout, "Transaction ID: %s\n", tx.ID)
			fmt.Fprintf(a.stdout, "State: %s\n", tx.State)
			if tx.CreatedAt != "" {
				fmt.Fprintf(a.stdout, "Created: %s\n", tx.CreatedAt)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "json", false, "print the full response")
	return cmd
}
