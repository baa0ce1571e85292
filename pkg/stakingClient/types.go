package stakingClient

import (
	"math/big"

	"github.com/Layr-Labs/stakemarket-go/pkg/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// TxInput is the input of Deposit and Withdraw.
type TxInput struct {
	Wallet wallet.IWallet
	// ContractAddress is the staking contract, which must be configured
	ContractAddress common.Address
	// TokenContractAddress is the staked token, required by Deposit
	TokenContractAddress common.Address
	UserAddress          common.Address
	AmountDesired        *big.Int
	AccountNumber        uint32
	// DryRun returns the signed transaction instead of broadcasting it
	DryRun bool
}

// InstantWithdrawInput is the input of InstantWithdraw.
type InstantWithdrawInput struct {
	Wallet          wallet.IWallet
	ContractAddress common.Address
	UserAddress     common.Address
	AccountNumber   uint32
	DryRun          bool
}

// ApproveInput is the input of Approve. ContractAddress is the spender.
type ApproveInput struct {
	Wallet               wallet.IWallet
	ContractAddress      common.Address
	TokenContractAddress common.Address
	UserAddress          common.Address
	AccountNumber        uint32
	DryRun               bool
}

// EstimateGasTxInput is the input of the deposit and withdraw gas estimates.
type EstimateGasTxInput struct {
	ContractAddress      common.Address
	TokenContractAddress common.Address
	UserAddress          common.Address
	AmountDesired        *big.Int
}

// EstimateGasApproveInput is the input of EstimateApproveGas.
type EstimateGasApproveInput struct {
	ContractAddress      common.Address
	TokenContractAddress common.Address
	UserAddress          common.Address
}

type BalanceInput struct {
	TokenContractAddress common.Address
	UserAddress          common.Address
}

// AllowanceInput is the input of Allowance. A zero ContractAddress means the
// first configured staking contract.
type AllowanceInput struct {
	TokenContractAddress common.Address
	UserAddress          common.Address
	ContractAddress      common.Address
}

type TVLInput struct {
	TokenContractAddress common.Address
}
