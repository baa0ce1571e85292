package stakingClient

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a required input field is missing
	ErrInvalidInput = errors.New("missing inputs")
	// ErrNotAValidContract is returned when the staking contract address is not configured
	ErrNotAValidContract = errors.New("not a valid contract address")
	// ErrUnsupportedWallet is matched by every *UnsupportedWalletError
	ErrUnsupportedWallet = errors.New("unsupported wallet configuration")
	// ErrTransactionFailed is returned when a mined transaction reverted
	ErrTransactionFailed = errors.New("transaction failed")
)

// UnsupportedWalletError reports a wallet that cannot serve the request.
type UnsupportedWalletError struct {
	// Vendor is the wallet's GetVendor value, empty for a nil wallet
	Vendor string
	// DryRun is true when the wallet could broadcast but a dry run was requested
	DryRun bool
}

func (e *UnsupportedWalletError) Error() string {
	if e.DryRun {
		return fmt.Sprintf("cannot perform a dry run with wallet of type %s", e.Vendor)
	}
	return fmt.Sprintf("invalid wallet configuration: %s supports neither offline signing nor broadcast", e.Vendor)
}

// Is reports ErrUnsupportedWallet as a match.
func (e *UnsupportedWalletError) Is(target error) bool {
	return target == ErrUnsupportedWallet
}
