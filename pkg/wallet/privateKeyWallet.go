package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const privateKeyVendor = "private-key"

// PrivateKeyWallet implements IOfflineSigner with raw secp256k1 keys held in
// memory. Account number N selects the Nth key.
type PrivateKeyWallet struct {
	keys      []*ecdsa.PrivateKey
	addresses []common.Address
}

// NewPrivateKeyWallet creates a wallet from one or more hex-encoded private
// keys, with or without the 0x prefix.
func NewPrivateKeyWallet(privateKeysHex ...string) (*PrivateKeyWallet, error) {
	if len(privateKeysHex) == 0 {
		return nil, fmt.Errorf("at least one private key is required")
	}
	w := &PrivateKeyWallet{}
	for i, keyHex := range privateKeysHex {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(keyHex), "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key %d: %w", i, err)
		}
		w.keys = append(w.keys, key)
		w.addresses = append(w.addresses, crypto.PubkeyToAddress(key.PublicKey))
	}
	return w, nil
}

// GetVendor implements IWallet.
func (p *PrivateKeyWallet) GetVendor() string {
	return privateKeyVendor
}

// GetAddress returns the address derived from the key for params.AccountNumber.
func (p *PrivateKeyWallet) GetAddress(params BIP44Params) (common.Address, error) {
	if int(params.AccountNumber) >= len(p.addresses) {
		return common.Address{}, fmt.Errorf("account %d: %w", params.AccountNumber, ErrUnknownAccount)
	}
	return p.addresses[params.AccountNumber], nil
}

// SignTransaction signs tx with the key for params.AccountNumber using the
// latest signer for chainID.
func (p *PrivateKeyWallet) SignTransaction(_ context.Context, tx *types.Transaction, chainID *big.Int, params BIP44Params) (*types.Transaction, error) {
	if int(params.AccountNumber) >= len(p.keys) {
		return nil, fmt.Errorf("account %d: %w", params.AccountNumber, ErrUnknownAccount)
	}
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), p.keys[params.AccountNumber])
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}
