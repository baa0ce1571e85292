// Package stakingClient is the facade over a rebasing staking contract and
// its ERC-20 tokens. Write operations assemble call data and gas parameters,
// then hand an unsigned descriptor to the chain adapter and the wallet. Read
// operations are plain eth_call lookups.
package stakingClient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/Layr-Labs/stakemarket-go/pkg/chainAdapter"
	"github.com/Layr-Labs/stakemarket-go/pkg/chainManager"
	"github.com/Layr-Labs/stakemarket-go/pkg/logger"
	"github.com/Layr-Labs/stakemarket-go/pkg/util"
	"github.com/Layr-Labs/stakemarket-go/pkg/wallet"
	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

const (
	DefaultReceiptPollInterval = time.Second
	DefaultReceiptTimeout      = 5 * time.Minute
)

// Config holds the staking client configuration.
type Config struct {
	// ChainID is stamped on every transaction descriptor, defaults to mainnet
	ChainID *big.Int
	// StakingContracts is the set of staking contracts the client accepts
	StakingContracts []common.Address
	// ReceiptPollInterval is the first delay between receipt lookups
	ReceiptPollInterval time.Duration
	// ReceiptTimeout bounds WaitForTxReceipt
	ReceiptTimeout time.Duration
}

// IStakingClient is the staking facade.
type IStakingClient interface {
	Approve(ctx context.Context, input ApproveInput) (string, error)
	Deposit(ctx context.Context, input TxInput) (string, error)
	Withdraw(ctx context.Context, input TxInput) (string, error)
	InstantWithdraw(ctx context.Context, input InstantWithdrawInput) (string, error)

	EstimateApproveGas(ctx context.Context, input EstimateGasApproveInput) (uint64, error)
	EstimateDepositGas(ctx context.Context, input EstimateGasTxInput) (uint64, error)
	EstimateWithdrawGas(ctx context.Context, input EstimateGasTxInput) (uint64, error)
	EstimateInstantWithdrawGas(ctx context.Context, input EstimateGasTxInput) (uint64, error)

	Balance(ctx context.Context, input BalanceInput) (*big.Int, error)
	TotalSupply(ctx context.Context, tokenContractAddress common.Address) (*big.Int, error)
	Allowance(ctx context.Context, input AllowanceInput) (*big.Int, error)
	TVL(ctx context.Context, input TVLInput) (*big.Int, error)

	GetGasPrice(ctx context.Context) (*big.Int, error)
	GetTxReceipt(ctx context.Context, txHash string) (*types.Receipt, error)
	WaitForTxReceipt(ctx context.Context, txHash string) (*types.Receipt, error)
	ChecksumAddress(address string) (string, error)
	FindContract(address common.Address) (common.Address, bool)
}

type StakingClient struct {
	config     *Config
	adapter    chainAdapter.IChainAdapter
	ethClient  chainManager.EthClientInterface
	logger     *zap.Logger
	stakingABI abi.ABI
	erc20ABI   abi.ABI
}

var _ IStakingClient = (*StakingClient)(nil)

// contractCall is an encoded call that has not been priced yet.
type contractCall struct {
	method string
	from   common.Address
	to     common.Address
	data   []byte
}

// sendFunc signs and optionally submits a descriptor.
type sendFunc func(ctx context.Context, txToSign *chainAdapter.TxToSign) (string, error)

// NewStakingClient creates a staking client.
//
// Parameters:
//   - cfg: Client configuration; StakingContracts must not be empty
//   - adapter: Chain adapter used for signing and broadcast
//   - ec: JSON-RPC client used for reads, estimates and nonces
//   - l: Logger
//
// Returns:
//   - *StakingClient: The client
//   - error: An error if the configuration is invalid
func NewStakingClient(
	cfg *Config,
	adapter chainAdapter.IChainAdapter,
	ec chainManager.EthClientInterface,
	l *zap.Logger,
) (*StakingClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if len(cfg.StakingContracts) == 0 {
		return nil, fmt.Errorf("at least one staking contract is required")
	}
	if adapter == nil || ec == nil {
		return nil, fmt.Errorf("chain adapter and eth client are required")
	}

	config := *cfg
	config.StakingContracts = append([]common.Address(nil), cfg.StakingContracts...)
	if config.ChainID == nil {
		config.ChainID = new(big.Int).SetUint64(chainManager.EthereumMainnet)
	}
	if config.ReceiptPollInterval <= 0 {
		config.ReceiptPollInterval = DefaultReceiptPollInterval
	}
	if config.ReceiptTimeout <= 0 {
		config.ReceiptTimeout = DefaultReceiptTimeout
	}

	stakingABI, err := abi.JSON(strings.NewReader(stakingContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse staking contract ABI: %w", err)
	}
	tokenABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC-20 ABI: %w", err)
	}

	return &StakingClient{
		config:     &config,
		adapter:    adapter,
		ethClient:  ec,
		logger:     logger.Component(l, "stakingClient"),
		stakingABI: stakingABI,
		erc20ABI:   tokenABI,
	}, nil
}

// FindContract returns the configured staking contract equal to address.
func (s *StakingClient) FindContract(address common.Address) (common.Address, bool) {
	return util.Find(s.config.StakingContracts, func(c common.Address) bool {
		return c == address
	})
}

func (s *StakingClient) Approve(ctx context.Context, input ApproveInput) (string, error) {
	if isNilWallet(input.Wallet) {
		return "", fmt.Errorf("%w: wallet is required", ErrInvalidInput)
	}
	call, err := s.approveCall(EstimateGasApproveInput{
		ContractAddress:      input.ContractAddress,
		TokenContractAddress: input.TokenContractAddress,
		UserAddress:          input.UserAddress,
	})
	if err != nil {
		return "", err
	}
	send, err := s.resolveSender(input.Wallet, input.DryRun)
	if err != nil {
		return "", err
	}
	return s.sendContractTx(ctx, call, input.AccountNumber, send)
}

func (s *StakingClient) Deposit(ctx context.Context, input TxInput) (string, error) {
	if isNilWallet(input.Wallet) {
		return "", fmt.Errorf("%w: wallet is required", ErrInvalidInput)
	}
	call, err := s.depositCall(EstimateGasTxInput{
		ContractAddress:      input.ContractAddress,
		TokenContractAddress: input.TokenContractAddress,
		UserAddress:          input.UserAddress,
		AmountDesired:        input.AmountDesired,
	})
	if err != nil {
		return "", err
	}
	send, err := s.resolveSender(input.Wallet, input.DryRun)
	if err != nil {
		return "", err
	}
	return s.sendContractTx(ctx, call, input.AccountNumber, send)
}

func (s *StakingClient) Withdraw(ctx context.Context, input TxInput) (string, error) {
	if isNilWallet(input.Wallet) {
		return "", fmt.Errorf("%w: wallet is required", ErrInvalidInput)
	}
	call, err := s.withdrawCall(EstimateGasTxInput{
		ContractAddress: input.ContractAddress,
		UserAddress:     input.UserAddress,
		AmountDesired:   input.AmountDesired,
	})
	if err != nil {
		return "", err
	}
	send, err := s.resolveSender(input.Wallet, input.DryRun)
	if err != nil {
		return "", err
	}
	return s.sendContractTx(ctx, call, input.AccountNumber, send)
}

func (s *StakingClient) InstantWithdraw(ctx context.Context, input InstantWithdrawInput) (string, error) {
	if isNilWallet(input.Wallet) {
		return "", fmt.Errorf("%w: wallet is required", ErrInvalidInput)
	}
	call, err := s.instantWithdrawCall(EstimateGasTxInput{
		ContractAddress: input.ContractAddress,
		UserAddress:     input.UserAddress,
	})
	if err != nil {
		return "", err
	}
	send, err := s.resolveSender(input.Wallet, input.DryRun)
	if err != nil {
		return "", err
	}
	return s.sendContractTx(ctx, call, input.AccountNumber, send)
}

func (s *StakingClient) EstimateApproveGas(ctx context.Context, input EstimateGasApproveInput) (uint64, error) {
	call, err := s.approveCall(input)
	if err != nil {
		return 0, err
	}
	return s.estimate(ctx, call)
}

func (s *StakingClient) EstimateDepositGas(ctx context.Context, input EstimateGasTxInput) (uint64, error) {
	call, err := s.depositCall(input)
	if err != nil {
		return 0, err
	}
	return s.estimate(ctx, call)
}

func (s *StakingClient) EstimateWithdrawGas(ctx context.Context, input EstimateGasTxInput) (uint64, error) {
	call, err := s.withdrawCall(input)
	if err != nil {
		return 0, err
	}
	return s.estimate(ctx, call)
}

func (s *StakingClient) EstimateInstantWithdrawGas(ctx context.Context, input EstimateGasTxInput) (uint64, error) {
	call, err := s.instantWithdrawCall(input)
	if err != nil {
		return 0, err
	}
	return s.estimate(ctx, call)
}

// Balance returns the token balance of UserAddress.
func (s *StakingClient) Balance(ctx context.Context, input BalanceInput) (*big.Int, error) {
	if input.TokenContractAddress == (common.Address{}) || input.UserAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: token contract and user address are required", ErrInvalidInput)
	}
	return s.callUint(ctx, input.TokenContractAddress, "balanceOf", input.UserAddress)
}

func (s *StakingClient) TotalSupply(ctx context.Context, tokenContractAddress common.Address) (*big.Int, error) {
	if tokenContractAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: token contract is required", ErrInvalidInput)
	}
	return s.callUint(ctx, tokenContractAddress, "totalSupply")
}

// Allowance returns how much of UserAddress's token the staking contract may
// spend.
func (s *StakingClient) Allowance(ctx context.Context, input AllowanceInput) (*big.Int, error) {
	if input.TokenContractAddress == (common.Address{}) || input.UserAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: token contract and user address are required", ErrInvalidInput)
	}
	spender := input.ContractAddress
	if spender == (common.Address{}) {
		spender = s.config.StakingContracts[0]
	}
	return s.callUint(ctx, input.TokenContractAddress, "allowance", input.UserAddress, spender)
}

// TVL returns the circulating supply of the rebasing token.
func (s *StakingClient) TVL(ctx context.Context, input TVLInput) (*big.Int, error) {
	if input.TokenContractAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: token contract is required", ErrInvalidInput)
	}
	return s.callUint(ctx, input.TokenContractAddress, "circulatingSupply")
}

func (s *StakingClient) GetGasPrice(ctx context.Context) (*big.Int, error) {
	return s.ethClient.SuggestGasPrice(ctx)
}

// GetTxReceipt returns the receipt of a mined transaction. The eth client
// returns ethereum.NotFound while the transaction is pending.
func (s *StakingClient) GetTxReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	hash, err := parseTxHash(txHash)
	if err != nil {
		return nil, err
	}
	return s.ethClient.TransactionReceipt(ctx, hash)
}

// WaitForTxReceipt polls for the receipt of txHash until it is mined, the
// context is done or the receipt timeout elapses. A reverted transaction
// returns its receipt together with ErrTransactionFailed.
func (s *StakingClient) WaitForTxReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	hash, err := parseTxHash(txHash)
	if err != nil {
		return nil, err
	}

	operation := func() (*types.Receipt, error) {
		receipt, err := s.ethClient.TransactionReceipt(ctx, hash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return receipt, nil
	}

	receipt, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(s.newReceiptBackOff()),
		backoff.WithMaxElapsedTime(s.config.ReceiptTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Sugar().Debugw("Transaction receipt not available yet",
				zap.String("txHash", hash.Hex()),
				zap.Duration("retryIn", next),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt for %s: %w", hash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrTransactionFailed, hash.Hex())
	}
	return receipt, nil
}

func (s *StakingClient) ChecksumAddress(address string) (string, error) {
	return ChecksumAddress(address)
}

// ChecksumAddress returns the EIP-55 form of a hex address.
func ChecksumAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: %q is not an address", ErrInvalidInput, address)
	}
	return common.HexToAddress(address).Hex(), nil
}

func (s *StakingClient) newReceiptBackOff() *backoff.ExponentialBackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     s.config.ReceiptPollInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         10 * s.config.ReceiptPollInterval,
	}
}

func (s *StakingClient) approveCall(input EstimateGasApproveInput) (*contractCall, error) {
	if input.ContractAddress == (common.Address{}) ||
		input.TokenContractAddress == (common.Address{}) ||
		input.UserAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: contract, token contract and user address are required", ErrInvalidInput)
	}
	spender, err := s.resolveContract(input.ContractAddress)
	if err != nil {
		return nil, err
	}
	data, err := s.erc20ABI.Pack("approve", spender, MaxAllowance)
	if err != nil {
		return nil, fmt.Errorf("failed to encode approve call: %w", err)
	}
	return &contractCall{method: "approve", from: input.UserAddress, to: input.TokenContractAddress, data: data}, nil
}

func (s *StakingClient) depositCall(input EstimateGasTxInput) (*contractCall, error) {
	if input.ContractAddress == (common.Address{}) ||
		input.TokenContractAddress == (common.Address{}) ||
		input.UserAddress == (common.Address{}) ||
		!isAmount(input.AmountDesired) {
		return nil, fmt.Errorf("%w: contract, token contract, user address and amount are required", ErrInvalidInput)
	}
	contract, err := s.resolveContract(input.ContractAddress)
	if err != nil {
		return nil, err
	}
	data, err := s.stakingABI.Pack("stake", input.AmountDesired, input.UserAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stake call: %w", err)
	}
	return &contractCall{method: "stake", from: input.UserAddress, to: contract, data: data}, nil
}

func (s *StakingClient) withdrawCall(input EstimateGasTxInput) (*contractCall, error) {
	if input.ContractAddress == (common.Address{}) ||
		input.UserAddress == (common.Address{}) ||
		!isAmount(input.AmountDesired) {
		return nil, fmt.Errorf("%w: contract, user address and amount are required", ErrInvalidInput)
	}
	contract, err := s.resolveContract(input.ContractAddress)
	if err != nil {
		return nil, err
	}
	data, err := s.stakingABI.Pack("unstake", input.AmountDesired, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode unstake call: %w", err)
	}
	return &contractCall{method: "unstake", from: input.UserAddress, to: contract, data: data}, nil
}

func (s *StakingClient) instantWithdrawCall(input EstimateGasTxInput) (*contractCall, error) {
	if input.ContractAddress == (common.Address{}) || input.UserAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: contract and user address are required", ErrInvalidInput)
	}
	contract, err := s.resolveContract(input.ContractAddress)
	if err != nil {
		return nil, err
	}
	data, err := s.stakingABI.Pack("instantUnstake", true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode instantUnstake call: %w", err)
	}
	return &contractCall{method: "instantUnstake", from: input.UserAddress, to: contract, data: data}, nil
}

func (s *StakingClient) resolveContract(address common.Address) (common.Address, error) {
	contract, ok := s.FindContract(address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s", ErrNotAValidContract, address.Hex())
	}
	return contract, nil
}

// resolveSender picks the submission path for w before anything touches the
// network. Offline signing takes precedence when a wallet supports both.
func (s *StakingClient) resolveSender(w wallet.IWallet, dryRun bool) (sendFunc, error) {
	switch typed := w.(type) {
	case wallet.IOfflineSigner:
		return func(ctx context.Context, txToSign *chainAdapter.TxToSign) (string, error) {
			signedTx, err := s.adapter.SignTransaction(ctx, txToSign, typed)
			if err != nil {
				return "", err
			}
			if dryRun {
				return signedTx, nil
			}
			return s.adapter.BroadcastTransaction(ctx, signedTx)
		}, nil
	case wallet.IBroadcaster:
		if dryRun {
			return nil, &UnsupportedWalletError{Vendor: typed.GetVendor(), DryRun: true}
		}
		return func(ctx context.Context, txToSign *chainAdapter.TxToSign) (string, error) {
			return s.adapter.SignAndBroadcastTransaction(ctx, txToSign, typed)
		}, nil
	default:
		return nil, &UnsupportedWalletError{Vendor: w.GetVendor()}
	}
}

func (s *StakingClient) estimate(ctx context.Context, call *contractCall) (uint64, error) {
	return s.ethClient.EstimateGas(ctx, ethereum.CallMsg{
		From: call.from,
		To:   &call.to,
		Data: call.data,
	})
}

// sendContractTx prices call, builds the descriptor and hands it to send.
// Collaborator errors are returned unchanged.
func (s *StakingClient) sendContractTx(ctx context.Context, call *contractCall, accountNumber uint32, send sendFunc) (string, error) {
	gasLimit, err := s.estimate(ctx, call)
	if err != nil {
		return "", err
	}
	nonce, err := s.ethClient.PendingNonceAt(ctx, call.from)
	if err != nil {
		return "", err
	}
	gasPrice, err := s.ethClient.SuggestGasPrice(ctx)
	if err != nil {
		return "", err
	}

	txToSign := &chainAdapter.TxToSign{
		AddressParams: s.adapter.BuildAddressParams(accountNumber),
		ChainID:       new(big.Int).Set(s.config.ChainID),
		From:          call.from,
		To:            call.to,
		Data:          call.data,
		GasLimit:      gasLimit,
		GasPrice:      gasPrice,
		Nonce:         nonce,
		Value:         big.NewInt(0),
	}

	s.logger.Sugar().Infow("Submitting contract call",
		zap.String("method", call.method),
		zap.String("from", call.from.Hex()),
		zap.String("to", call.to.Hex()),
		zap.Uint64("gasLimit", gasLimit),
		zap.String("gasPrice", gasPrice.String()),
		zap.Uint64("nonce", nonce),
	)
	return send(ctx, txToSign)
}

// callUint runs a view method returning a single uint256. Empty return data
// and a nil value both read as zero.
func (s *StakingClient) callUint(ctx context.Context, token common.Address, method string, args ...interface{}) (*big.Int, error) {
	data, err := s.erc20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s call: %w", method, err)
	}
	out, err := s.ethClient.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return new(big.Int), nil
	}
	values, err := s.erc20ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	if len(values) == 0 {
		return new(big.Int), nil
	}
	value, ok := values[0].(*big.Int)
	if !ok || value == nil {
		return new(big.Int), nil
	}
	return value, nil
}

// isNilWallet also catches a typed nil pointer stored in the interface.
func isNilWallet(w wallet.IWallet) bool {
	if w == nil {
		return true
	}
	v := reflect.ValueOf(w)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func isAmount(amount *big.Int) bool {
	return amount != nil && amount.Sign() >= 0
}

func parseTxHash(txHash string) (common.Hash, error) {
	raw, err := hexutil.Decode(txHash)
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %q is not a transaction hash", ErrInvalidInput, txHash)
	}
	return common.BytesToHash(raw), nil
}
