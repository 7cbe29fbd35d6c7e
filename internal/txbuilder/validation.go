package txbuilder

import (
	"fmt"
	"regexp"
)

// weiPattern matches a non-negative base-10 integer without sign or exponent.
var weiPattern = regexp.MustCompile(`^[0-9]+$`)

// Validate checks the policy values a deployment may override. Caller
// parameters passed to Build are never validated.
func (p Policy) Validate() error {
	if p.SignerType == "" {
		return fmt.Errorf("signer type is required")
	}
	if p.SignMode == "" {
		return fmt.Errorf("sign mode is required")
	}
	if p.NetworkSuffix == "" {
		return fmt.Errorf("network suffix is required")
	}
	if p.PushMode == "" {
		return fmt.Errorf("push mode is required")
	}
	if err := validateWei("gas limit", p.GasLimit); err != nil {
		return err
	}
	if p.GasLimit == "0" {
		return fmt.Errorf("gas limit must be greater than zero")
	}
	if err := validateWei("max priority fee per gas", p.MaxPriorityFeePerGas); err != nil {
		return err
	}
	if err := validateWei("max fee per gas", p.MaxFeePerGas); err != nil {
		return err
	}
	return nil
}

func validateWei(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	if !weiPattern.MatchString(value) {
		return fmt.Errorf("%s must be a decimal integer string, got %q", field, value)
	}
	return nil
}
