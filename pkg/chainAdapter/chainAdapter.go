// Package chainAdapter turns unsigned transaction descriptors into signed or
// submitted EVM transactions. It owns the boundary between the staking
// client, which only assembles call data and gas parameters, and the wallet
// doing the signing.
package chainAdapter

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Layr-Labs/stakemarket-go/pkg/chainManager"
	"github.com/Layr-Labs/stakemarket-go/pkg/logger"
	"github.com/Layr-Labs/stakemarket-go/pkg/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

var (
	// ErrInvalidTxToSign is returned when a descriptor is missing a required field
	ErrInvalidTxToSign = errors.New("invalid transaction descriptor")
	// ErrInvalidSignedTx is returned when a signed payload cannot be decoded
	ErrInvalidSignedTx = errors.New("invalid signed transaction")
)

// IChainAdapter is the chain-specific collaborator of the staking client.
type IChainAdapter interface {
	// BuildAddressParams returns the derivation params for an account number
	BuildAddressParams(accountNumber uint32) wallet.BIP44Params

	// SignTransaction signs txToSign with an offline signer.
	//
	// Returns:
	//   - string: The 0x-prefixed hex encoding of the signed transaction
	//   - error: An error if the descriptor is invalid or signing fails
	SignTransaction(ctx context.Context, txToSign *TxToSign, w wallet.IOfflineSigner) (string, error)

	// BroadcastTransaction submits a payload returned by SignTransaction.
	//
	// Returns:
	//   - string: The transaction hash
	//   - error: The RPC error, unchanged
	BroadcastTransaction(ctx context.Context, signedTx string) (string, error)

	// SignAndBroadcastTransaction hands txToSign to a broadcasting wallet.
	//
	// Returns:
	//   - string: The transaction hash
	//   - error: The wallet error, unchanged
	SignAndBroadcastTransaction(ctx context.Context, txToSign *TxToSign, w wallet.IBroadcaster) (string, error)
}

// TxToSign is an unsigned transaction descriptor. It is built fresh for each
// operation and handed to the adapter; nothing keeps a reference to it.
type TxToSign struct {
	AddressParams wallet.BIP44Params
	ChainID       *big.Int
	From          common.Address
	To            common.Address
	Data          []byte
	GasLimit      uint64
	GasPrice      *big.Int
	Nonce         uint64
	Value         *big.Int
}

func (t *TxToSign) validate() error {
	if t == nil {
		return fmt.Errorf("%w: descriptor is nil", ErrInvalidTxToSign)
	}
	if t.ChainID == nil || t.ChainID.Sign() <= 0 {
		return fmt.Errorf("%w: chain id is required", ErrInvalidTxToSign)
	}
	if t.To == (common.Address{}) {
		return fmt.Errorf("%w: destination address is required", ErrInvalidTxToSign)
	}
	if t.GasPrice == nil {
		return fmt.Errorf("%w: gas price is required", ErrInvalidTxToSign)
	}
	return nil
}

// Transaction converts the descriptor to a go-ethereum legacy transaction.
func (t *TxToSign) Transaction() *types.Transaction {
	value := t.Value
	if value == nil {
		value = new(big.Int)
	}
	to := t.To
	return types.NewTx(&types.LegacyTx{
		Nonce:    t.Nonce,
		GasPrice: t.GasPrice,
		Gas:      t.GasLimit,
		To:       &to,
		Value:    value,
		Data:     t.Data,
	})
}

// EthereumAdapter implements IChainAdapter for Ethereum-compatible chains.
type EthereumAdapter struct {
	ethClient chainManager.EthClientInterface
	logger    *zap.Logger
}

// NewEthereumAdapter creates an adapter that broadcasts through ec.
func NewEthereumAdapter(ec chainManager.EthClientInterface, l *zap.Logger) *EthereumAdapter {
	return &EthereumAdapter{
		ethClient: ec,
		logger:    logger.Component(l, "chainAdapter"),
	}
}

// BuildAddressParams returns m/44'/60'/<accountNumber>'/0/0.
func (e *EthereumAdapter) BuildAddressParams(accountNumber uint32) wallet.BIP44Params {
	return wallet.BIP44Params{
		Purpose:       wallet.PurposeBIP44,
		CoinType:      wallet.CoinTypeEthereum,
		AccountNumber: accountNumber,
	}
}

// SignTransaction implements IChainAdapter.
func (e *EthereumAdapter) SignTransaction(ctx context.Context, txToSign *TxToSign, w wallet.IOfflineSigner) (string, error) {
	if err := txToSign.validate(); err != nil {
		return "", err
	}
	signed, err := w.SignTransaction(ctx, txToSign.Transaction(), txToSign.ChainID, txToSign.AddressParams)
	if err != nil {
		return "", err
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to encode signed transaction: %w", err)
	}
	e.logger.Sugar().Debugw("Signed transaction",
		zap.String("vendor", w.GetVendor()),
		zap.String("path", txToSign.AddressParams.Path()),
		zap.String("txHash", signed.Hash().Hex()),
	)
	return hexutil.Encode(raw), nil
}

// BroadcastTransaction implements IChainAdapter.
func (e *EthereumAdapter) BroadcastTransaction(ctx context.Context, signedTx string) (string, error) {
	raw, err := hexutil.Decode(strings.TrimSpace(signedTx))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignedTx, err)
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignedTx, err)
	}
	if err := e.ethClient.SendTransaction(ctx, tx); err != nil {
		return "", err
	}
	e.logger.Sugar().Infow("Broadcast transaction",
		zap.String("txHash", tx.Hash().Hex()),
		zap.Uint64("nonce", tx.Nonce()),
	)
	return tx.Hash().Hex(), nil
}

// SignAndBroadcastTransaction implements IChainAdapter.
func (e *EthereumAdapter) SignAndBroadcastTransaction(ctx context.Context, txToSign *TxToSign, w wallet.IBroadcaster) (string, error) {
	if err := txToSign.validate(); err != nil {
		return "", err
	}
	hash, err := w.SignAndBroadcastTransaction(ctx, txToSign.Transaction(), txToSign.From, txToSign.AddressParams)
	if err != nil {
		return "", err
	}
	e.logger.Sugar().Infow("Wallet broadcast transaction",
		zap.String("vendor", w.GetVendor()),
		zap.String("txHash", hash.Hex()),
	)
	return hash.Hex(), nil
}
