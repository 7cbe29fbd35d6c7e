package txbuilder

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy holds the fixed parameters merged into every request. A deployment
// overrides individual fields; DefaultPolicy documents the stock values.
type Policy struct {
	// SignerType is the signer_type tag. Default: "api_signer".
	SignerType string

	// SignMode is the sign_mode of the request. Default: "triggered".
	SignMode string

	// NetworkSuffix is appended to the chain name. Default: "mainnet".
	NetworkSuffix string

	// PushMode is the details push_mode. Default: "auto".
	PushMode string

	// SkipPrediction disables the service-side simulation. Default: true.
	SkipPrediction bool

	// FailOnPredictionFailure aborts when simulation fails. Default: false.
	FailOnPredictionFailure bool

	// GasLimit as a decimal string. Default: "100000".
	GasLimit string

	// GasType is the gas specification type. Default: "custom".
	GasType string

	// FeeType is the fee details type. Default: "dynamic" (EIP-1559).
	FeeType string

	// MaxPriorityFeePerGas in wei. Default: 2 gwei.
	MaxPriorityFeePerGas string

	// MaxFeePerGas in wei. Default: 3 gwei.
	MaxFeePerGas string
}

// DefaultPolicy returns the stock submission policy.
func DefaultPolicy() Policy {
	return Policy{
		SignerType:              "api_signer",
		SignMode:                "triggered",
		NetworkSuffix:           "mainnet",
		PushMode:                "auto",
		SkipPrediction:          true,
		FailOnPredictionFailure: false,
		GasLimit:                "100000",
		GasType:                 "custom",
		FeeType:                 "dynamic",
		MaxPriorityFeePerGas:    "2000000000",
		MaxFeePerGas:            "3000000000",
	}
}

var (
	gwei  = decimal.New(1, 9)
	ether = decimal.New(1, 18)
)

// GweiToWei converts a decimal gwei amount (e.g. "2" or "1.5") to a wei
// decimal string.
func GweiToWei(amount string) (string, error) {
	return scaleToWei(amount, gwei, "gwei")
}

// EtherToWei converts a decimal ether amount (e.g. "0.0001") to a wei
// decimal string.
func EtherToWei(amount string) (string, error) {
	return scaleToWei(amount, ether, "ether")
}

func scaleToWei(amount string, unit decimal.Decimal, unitName string) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid %s amount %q: %w", unitName, amount, err)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("invalid %s amount %q: must not be negative", unitName, amount)
	}
	wei := d.Mul(unit)
	if !wei.IsInteger() {
		return "", fmt.Errorf("invalid %s amount %q: more precision than 1 wei", unitName, amount)
	}
	return wei.String(), nil
}
