package stakingClient

import "math/big"

// MaxAllowance is 2^256 - 1, the allowance granted by Approve.
var MaxAllowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// stakingContractABI covers the staking contract methods this client sends.
const stakingContractABI = `[
	{
		"inputs": [
			{"internalType": "uint256", "name": "_amount", "type": "uint256"},
			{"internalType": "address", "name": "_recipient", "type": "address"}
		],
		"name": "stake",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "_amount", "type": "uint256"},
			{"internalType": "bool", "name": "_trigger", "type": "bool"}
		],
		"name": "unstake",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "bool", "name": "_trigger", "type": "bool"}
		],
		"name": "instantUnstake",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// erc20ABI is the ERC-20 surface plus the rebasing token's circulatingSupply.
const erc20ABI = `[
	{
		"inputs": [
			{"name": "spender", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "approve",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"}
		],
		"name": "allowance",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "totalSupply",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "circulatingSupply",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`
