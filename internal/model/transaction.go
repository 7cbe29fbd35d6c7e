// Package model defines the data structures submitted to the vault API.
package model

// Fixed discriminators of the EVM raw-transaction flow.
const (
	// TransactionTypeEVM is the top-level request type.
	TransactionTypeEVM = "evm_transaction"
	// DetailsTypeRawTransaction is the details subtype for pre-encoded call data.
	DetailsTypeRawTransaction = "evm_raw_transaction"
	// DataTypeHex marks hex-encoded call data.
	DataTypeHex = "hex"
)

// TransactionRequest is the body of POST /api/v1/transactions.
//
// Field order is the serialization order. The bytes produced by encoding this
// struct are the exact bytes that get signed and transmitted, so they must be
// produced once and reused.
type TransactionRequest struct {
	// SignerType identifies the signing mode, e.g. "api_signer".
	SignerType string `json:"signer_type"`

	// VaultID is the opaque identifier of the custodial vault.
	VaultID string `json:"vault_id"`

	// Note is a free-text annotation.
	Note string `json:"note"`

	// Type is always TransactionTypeEVM.
	Type string `json:"type"`

	// SignMode is "triggered" (wait for approval) or "auto".
	SignMode string `json:"sign_mode"`

	// Details carries the chain-specific part of the request.
	Details TransactionDetails `json:"details"`
}

// TransactionDetails is the EVM raw-transaction payload.
type TransactionDetails struct {
	// Chain is "evm_<chain>_<network>", e.g. "evm_ethereum_mainnet".
	Chain string `json:"chain"`

	// SkipPrediction disables the service-side simulation.
	SkipPrediction bool `json:"skip_prediction"`

	// FailOnPredictionFailure aborts when the simulation fails.
	FailOnPredictionFailure bool `json:"fail_on_prediction_failure"`

	// PushMode controls broadcasting after signing ("auto" or "manual").
	PushMode string `json:"push_mode"`

	// Data is the call data.
	Data CallData `json:"data"`

	// Type is always DetailsTypeRawTransaction.
	Type string `json:"type"`

	// Gas is the fee specification.
	Gas Gas `json:"gas"`

	// To is the destination contract address, passed through verbatim.
	To string `json:"to"`

	// Value is the native amount in wei as a decimal string.
	Value string `json:"value"`
}

// CallData wraps hex-encoded call data.
type CallData struct {
	Type    string `json:"type"`
	HexData string `json:"hex_data"`
}

// Gas is the fee specification of a transaction.
type Gas struct {
	// GasLimit is a decimal string.
	GasLimit string `json:"gas_limit"`

	// Type is "custom" when the fee details below are supplied.
	Type string `json:"type"`

	Details GasDetails `json:"details"`
}

// GasDetails holds EIP-1559 fee caps in wei.
type GasDetails struct {
	// Type is "dynamic" for EIP-1559 fees.
	Type string `json:"type"`

	MaxPriorityFeePerGas string `json:"max_priority_fee_per_gas"`
	MaxFeePerGas         string `json:"max_fee_per_gas"`
}
