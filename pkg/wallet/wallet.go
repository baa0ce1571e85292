// Package wallet defines the wallet capabilities the staking client can
// dispatch on. A wallet is either an offline signer, which returns a signed
// transaction for the caller to broadcast, or a broadcaster, which signs and
// submits in a single step and never exposes the signed payload.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrUnknownAccount is returned when a wallet has no key for the requested account number
	ErrUnknownAccount = errors.New("wallet has no key for account")
)

// IWallet is implemented by every wallet.
type IWallet interface {
	// GetVendor returns a human readable wallet vendor name for diagnostics
	GetVendor() string
}

// IOfflineSigner is a wallet that can produce a signed transaction without
// submitting it to the network.
type IOfflineSigner interface {
	IWallet

	// GetAddress returns the address that signs for the given account
	GetAddress(params BIP44Params) (common.Address, error)

	// SignTransaction signs tx for chainID with the key selected by params.
	//
	// Returns:
	//   - *types.Transaction: The signed transaction
	//   - error: An error if no key is available or signing fails
	SignTransaction(ctx context.Context, tx *types.Transaction, chainID *big.Int, params BIP44Params) (*types.Transaction, error)
}

// IBroadcaster is a wallet that signs and submits a transaction as one step.
type IBroadcaster interface {
	IWallet

	// SignAndBroadcastTransaction signs tx as from and submits it.
	//
	// Returns:
	//   - common.Hash: The hash of the submitted transaction
	//   - error: An error if signing or submission fails
	SignAndBroadcastTransaction(ctx context.Context, tx *types.Transaction, from common.Address, params BIP44Params) (common.Hash, error)
}

// BIP44 constants for Ethereum accounts.
const (
	PurposeBIP44     uint32 = 44
	CoinTypeEthereum uint32 = 60
)

// BIP44Params identifies an account in a hierarchical deterministic wallet.
type BIP44Params struct {
	Purpose       uint32
	CoinType      uint32
	AccountNumber uint32
	IsChange      bool
	Index         uint32
}

// Path renders the params as a derivation path, e.g. m/44'/60'/0'/0/0.
func (p BIP44Params) Path() string {
	change := 0
	if p.IsChange {
		change = 1
	}
	return fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", p.Purpose, p.CoinType, p.AccountNumber, change, p.Index)
}
