package pipeline

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/hvbr1s/fordefi-raw-calls/internal/txbuilder"
)

// Outcome is the result of one entry of a batch. Exactly one of Result and
// Err is set.
type Outcome struct {
	Params txbuilder.Params
	Result *Result
	Err    error
}

// SubmitAll submits every entry of batch with at most limit requests in
// flight. Outcomes are returned in input order. A failed entry does not
// cancel the others.
func (p *Pipeline) SubmitAll(ctx context.Context, batch []txbuilder.Params, limit int) []Outcome {
	outcomes := make([]Outcome, len(batch))
	if limit <= 0 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, params := range batch {
		g.Go(func() error {
			res, err := p.Submit(ctx, params)
			outcomes[i] = Outcome{Params: params, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// batchFile is the YAML layout of a batch file.
type batchFile struct {
	Transactions []txbuilder.Params `yaml:"transactions"`
}

// ParseBatch decodes a YAML batch document.
func ParseBatch(data []byte) ([]txbuilder.Params, error) {
	var f batchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}
	if len(f.Transactions) == 0 {
		return nil, fmt.Errorf("batch contains no transactions")
	}
	for i, params := range f.Transactions {
		if params.Chain == "" || params.To == "" {
			return nil, fmt.Errorf("batch entry %d: chain and to are required", i)
		}
	}
	return f.Transactions, nil
}

// LoadBatch reads and decodes a YAML batch file.
func LoadBatch(path string) ([]txbuilder.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return ParseBatch(data)
}
