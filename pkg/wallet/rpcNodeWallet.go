package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

const defaultRPCNodeVendor = "rpc-node"

// rpcCaller is satisfied by *rpc.Client.
type rpcCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// RPCNodeWallet implements IBroadcaster by asking a node that manages the
// account keys (Clef, an unlocked geth account, a dev chain) to sign and
// submit via eth_sendTransaction. It cannot sign offline.
type RPCNodeWallet struct {
	client rpcCaller
	vendor string
}

// NewRPCNodeWallet creates a broadcast-only wallet. vendor names the node
// software in error messages; empty means "rpc-node".
func NewRPCNodeWallet(client rpcCaller, vendor string) *RPCNodeWallet {
	if vendor == "" {
		vendor = defaultRPCNodeVendor
	}
	return &RPCNodeWallet{client: client, vendor: vendor}
}

// GetVendor implements IWallet.
func (r *RPCNodeWallet) GetVendor() string {
	return r.vendor
}

type sendTxArgs struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to,omitempty"`
	Gas      hexutil.Uint64  `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value"`
	Nonce    hexutil.Uint64  `json:"nonce"`
	Data     hexutil.Bytes   `json:"data"`
}

// SignAndBroadcastTransaction submits tx through eth_sendTransaction. The node
// selects the key for from and applies its own chain ID; params are not used.
func (r *RPCNodeWallet) SignAndBroadcastTransaction(ctx context.Context, tx *types.Transaction, from common.Address, _ BIP44Params) (common.Hash, error) {
	value := tx.Value()
	if value == nil {
		value = new(big.Int)
	}
	args := sendTxArgs{
		From:     from,
		To:       tx.To(),
		Gas:      hexutil.Uint64(tx.Gas()),
		GasPrice: (*hexutil.Big)(tx.GasPrice()),
		Value:    (*hexutil.Big)(value),
		Nonce:    hexutil.Uint64(tx.Nonce()),
		Data:     tx.Data(),
	}
	var hash common.Hash
	if err := r.client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, fmt.Errorf("eth_sendTransaction via %s failed: %w", r.vendor, err)
	}
	return hash, nil
}
