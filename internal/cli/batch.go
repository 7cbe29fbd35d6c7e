package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hvbr1s/fordefi-raw-calls/internal/pipeline"
)

func newBatchCommand(a *app) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Submit every transaction listed in a YAML batch file",
		Long: `Submit every transaction listed in a YAML batch file.

Each entry is an independent submission; a failed entry does not stop the
others. The file layout is:

  transactions:
    - chain: arbitrum
      to: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
      data: "0xd0e30db0"
      value: "100000000000000"
      note: deposit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := pipeline.LoadBatch(args[0])
			if err != nil {
				return err
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Concurrency = concurrency
			}
			p, err := a.newPipeline(cfg)
			if err != nil {
				return err
			}

			failed := 0
			for i, o := range p.SubmitAll(cmd.Context(), batch, cfg.Concurrency) {
				label := o.Params.Note
				if label == "" {
					label = o.Params.To
				}
				if o.Err != nil {
					failed++
					fmt.Fprintf(a.stdout, "❌ [%d] %s: %v\n", i, label, o.Err)
					continue
				}
				fmt.Fprintf(a.stdout, "✅ [%d] %s: %s\n", i, label, o.Result.TransactionID)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d transactions failed", failed, len(batch))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum submissions in flight (default from config)")
	return cmd
}
