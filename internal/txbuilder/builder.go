// Package txbuilder assembles vault API transaction requests from caller
// parameters and a submission policy.
package txbuilder

import (
	"encoding/json"
	"fmt"

	"github.com/hvbr1s/fordefi-raw-calls/internal/model"
)

// Params are the caller-supplied parts of a request. All values are passed
// through verbatim.
type Params struct {
	// Chain is the chain name, e.g. "ethereum", "arbitrum".
	Chain string `yaml:"chain"`

	// VaultID overrides the builder's vault when set.
	VaultID string `yaml:"vault_id"`

	// To is the target contract address.
	To string `yaml:"to"`

	// Note is a free-text annotation.
	Note string `yaml:"note"`

	// HexData is the call data, usually "0x"-prefixed.
	HexData string `yaml:"data"`

	// Value is the native amount in wei as a decimal string.
	Value string `yaml:"value"`
}

// Builder merges Params with a Policy. It holds no mutable state and is safe
// for concurrent use.
type Builder struct {
	policy Policy
}

// New returns a Builder for the given policy.
func New(policy Policy) *Builder {
	return &Builder{policy: policy}
}

// Policy returns the builder's policy.
func (b *Builder) Policy() Policy {
	return b.policy
}

// Build returns the request for p.
func (b *Builder) Build(p Params) *model.TransactionRequest {
	return &model.TransactionRequest{
		SignerType: b.policy.SignerType,
		VaultID:    p.VaultID,
		Note:       p.Note,
		Type:       model.TransactionTypeEVM,
		SignMode:   b.policy.SignMode,
		Details: model.TransactionDetails{
			Chain:                   ChainName(p.Chain, b.policy.NetworkSuffix),
			SkipPrediction:          b.policy.SkipPrediction,
			FailOnPredictionFailure: b.policy.FailOnPredictionFailure,
			PushMode:                b.policy.PushMode,
			Data: model.CallData{
				Type:    model.DataTypeHex,
				HexData: p.HexData,
			},
			Type: model.DetailsTypeRawTransaction,
			Gas: model.Gas{
				GasLimit: b.policy.GasLimit,
				Type:     b.policy.GasType,
				Details: model.GasDetails{
					Type:                 b.policy.FeeType,
					MaxPriorityFeePerGas: b.policy.MaxPriorityFeePerGas,
					MaxFeePerGas:         b.policy.MaxFeePerGas,
				},
			},
			To:    p.To,
			Value: p.Value,
		},
	}
}

// ChainName returns "evm_<chain>_<suffix>".
func ChainName(chain, suffix string) string {
	return "evm_" + chain + "_" + suffix
}

// Serialize encodes req. The result is what gets signed and sent; callers
// must not encode req again.
func Serialize(req *model.TransactionRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction request: %w", err)
	}
	return body, nil
}
