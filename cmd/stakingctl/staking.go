package main

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/stakemarket-go/pkg/chainAdapter"
	"github.com/Layr-Labs/stakemarket-go/pkg/stakingClient"
	"github.com/Layr-Labs/stakemarket-go/pkg/wallet"
	"github.com/ethereum/go-ethereum/common"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	contractFlagDef = &cli.StringFlag{
		Name:  "contract",
		Usage: "Staking contract address (defaults to the first --staking-contract)",
	}
	tokenFlagDef = &cli.StringFlag{
		Name:  "token",
		Usage: "Token contract address",
	}
	userFlagDef = &cli.StringFlag{
		Name:  "user",
		Usage: "User address (defaults to the signing address of the wallet)",
	}
	amountFlagDef = &cli.StringFlag{
		Name:  "amount",
		Usage: "Token amount, e.g. 1.5",
	}
	decimalsFlagDef = &cli.UintFlag{
		Name:  "decimals",
		Usage: "Token decimals used to convert --amount to base units",
		Value: 18,
	}
	accountNumberFlagDef = &cli.UintFlag{
		Name:  "account-number",
		Usage: "Wallet account number",
	}
	dryRunFlagDef = &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Print the signed transaction instead of broadcasting it",
	}
	waitFlagDef = &cli.BoolFlag{
		Name:  "wait",
		Usage: "Wait for the transaction receipt after broadcasting",
	}
)

var writeFlags = []cli.Flag{contractFlagDef, userFlagDef, accountNumberFlagDef, dryRunFlagDef, waitFlagDef}

var stakingCommand = &cli.Command{
	Name:  "staking",
	Usage: "Interact with the staking contract",
	Subcommands: []*cli.Command{
		{
			Name:   "approve",
			Usage:  "Approve the staking contract to spend the token",
			Flags:  append([]cli.Flag{tokenFlagDef}, writeFlags...),
			Action: approveAction,
		},
		{
			Name:   "deposit",
			Usage:  "Stake tokens",
			Flags:  append([]cli.Flag{tokenFlagDef, amountFlagDef, decimalsFlagDef}, writeFlags...),
			Action: depositAction,
		},
		{
			Name:   "withdraw",
			Usage:  "Unstake tokens",
			Flags:  append([]cli.Flag{amountFlagDef, decimalsFlagDef}, writeFlags...),
			Action: withdrawAction,
		},
		{
			Name:   "instant-withdraw",
			Usage:  "Unstake everything immediately",
			Flags:  writeFlags,
			Action: instantWithdrawAction,
		},
		{
			Name:  "estimate",
			Usage: "Estimate gas for an operation",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "op",
					Usage:    "One of approve, deposit, withdraw, instant-withdraw",
					Required: true,
				},
				contractFlagDef, tokenFlagDef, userFlagDef, amountFlagDef, decimalsFlagDef, accountNumberFlagDef,
			},
			Action: estimateAction,
		},
		{
			Name:   "balance",
			Usage:  "Show the token balance of a user",
			Flags:  []cli.Flag{tokenFlagDef, userFlagDef, accountNumberFlagDef},
			Action: balanceAction,
		},
		{
			Name:   "allowance",
			Usage:  "Show how much of the token the staking contract may spend",
			Flags:  []cli.Flag{tokenFlagDef, userFlagDef, contractFlagDef, accountNumberFlagDef},
			Action: allowanceAction,
		},
		{
			Name:   "total-supply",
			Usage:  "Show the total supply of a token",
			Flags:  []cli.Flag{tokenFlagDef},
			Action: totalSupplyAction,
		},
		{
			Name:   "tvl",
			Usage:  "Show the circulating supply of the staked token",
			Flags:  []cli.Flag{tokenFlagDef},
			Action: tvlAction,
		},
		{
			Name:   "gas-price",
			Usage:  "Show the suggested gas price",
			Action: gasPriceAction,
		},
		{
			Name:  "receipt",
			Usage: "Show a transaction receipt",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "tx-hash", Usage: "Transaction hash", Required: true},
				waitFlagDef,
			},
			Action: receiptAction,
		},
		{
			Name:      "checksum",
			Usage:     "Print the checksummed form of an address",
			ArgsUsage: "<address>",
			Action:    checksumAction,
		},
	},
}

// stakingEnv is everything a staking action needs.
type stakingEnv struct {
	logger *zap.Logger
	client *stakingClient.StakingClient
	wallet wallet.IWallet
	params wallet.BIP44Params
}

func withStakingEnv(c *cli.Context, fn func(ctx context.Context, env *stakingEnv) error) error {
	l, err := setupLogger(c)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	cm, chain, err := setupChain(c)
	if err != nil {
		return fmt.Errorf("failed to setup chain: %w", err)
	}
	defer cm.Close()

	client, err := setupStakingClient(c, chain, l)
	if err != nil {
		return fmt.Errorf("failed to setup staking client: %w", err)
	}

	ctx := c.Context
	w, err := setupWallet(ctx, c, chain)
	if err != nil {
		return fmt.Errorf("failed to setup wallet: %w", err)
	}

	adapter := chainAdapter.NewEthereumAdapter(chain.RPCClient, l)
	return fn(ctx, &stakingEnv{
		logger: l,
		client: client,
		wallet: w,
		params: adapter.BuildAddressParams(uint32(c.Uint("account-number"))),
	})
}

// writeInputs are the flag values shared by every write command.
type writeInputs struct {
	contract common.Address
	token    common.Address
	user     common.Address
}

func parseWriteInputs(c *cli.Context, env *stakingEnv) (*writeInputs, error) {
	contract, err := contractFlag(c)
	if err != nil {
		return nil, err
	}
	token, err := parseAddressFlag(c, "token")
	if err != nil {
		return nil, err
	}
	user, err := resolveUser(c, env.wallet, env.params)
	if err != nil {
		return nil, err
	}
	return &writeInputs{contract: contract, token: token, user: user}, nil
}

func requireWallet(env *stakingEnv) error {
	if env.wallet == nil {
		return fmt.Errorf("a wallet is required: specify --private-key, --aws-kms-key-id, --aws-secret-name or --node-wallet")
	}
	return nil
}

func printTxResult(ctx context.Context, c *cli.Context, env *stakingEnv, result string) error {
	if c.Bool("dry-run") {
		fmt.Printf("Signed Transaction: %s\n", result)
		return nil
	}
	env.logger.Sugar().Infow("Transaction submitted", zap.String("txHash", result))
	fmt.Printf("Transaction Hash: %s\n", result)
	if !c.Bool("wait") {
		return nil
	}
	return printReceipt(ctx, env, result, true)
}

func printReceipt(ctx context.Context, env *stakingEnv, txHash string, wait bool) error {
	getReceipt := env.client.GetTxReceipt
	if wait {
		getReceipt = env.client.WaitForTxReceipt
	}
	receipt, err := getReceipt(ctx, txHash)
	if receipt != nil {
		fmt.Printf("Block Number: %s\n", receipt.BlockNumber)
		fmt.Printf("Gas Used: %d\n", receipt.GasUsed)
		fmt.Printf("Status: %d\n", receipt.Status)
	}
	return err
}

func approveAction(c *cli.Context) error {
	return withStakingEnv(c, func(ctx context.Context, env *stakingEnv) error {
		if err := requireWallet(env); err != nil {
			return err
		}
		in, err := parseWriteInputs(c, env)
		if err != nil {
			return err
		}
		result, err := env.client.Approve(ctx, stakingClient.ApproveInput{
			Wallet:               env.wallet,
			ContractAddress:      in.contract,
			TokenContractAddress: in.token,
			UserAddress:          in.user,
			AccountNumber:        env.params.AccountNumber,
			DryRun:               c.Bool("dry-run"),
		})
		if err != nil {
			return err
		}
		return printTxResult(ctx, c, env, result)
	})
}

func depositAction(c *cli.Context) error {
	return withStakingEnv(c, func(ctx context.Context, env *stakingEnv) error {
		if err := requireWallet(env); err != nil {
			return err
		}
		in, err := parseWriteInputs(c, env)
		if err != nil {
			return err
		}
		amount, err := parseAmount(c)
		if err != nil {
			return err
		}
		result, err := env.client.Deposit(ctx, stakingClient.TxInput{
			Wallet:               env.wallet,
			ContractAddress:      in.contract,
			TokenContractAddress: in.token,
			UserAddress:          in.user,
			AmountDesired:        amount,
			AccountNumber:        env.params.AccountNumber,
			DryRun:               c.Bool("dry-run"),
		})
		if err != nil {
			return err
		}
		return printTxResult(ctx, c, env, result)
	})
}

func withdrawAction(c *cli.Context) error {
	return withStakingEnv(c, func(ctx context.Context, env *stakingEnv) error {
		if err := requireWallet(env); err != nil {
			return err
		}
		in, err := parseWriteInputs(c, env)
		if err != nil {
			return err
		}
		amount, err := parseAmount(c)
		if err != nil {
			return err
		}
		result, err := env.client.Withdraw(ctx, stakingClient.TxInput{
			Wallet:          env.wallet,
			ContractAddress: in.contract,
			UserAddress:     in.user,
			AmountDesired:   amount,
			AccountNumber:   env.params.AccountNumber,
			DryRun:          c.Bool("dry-run"),
		})
		if err != nil {
			return err
		}
		return printTxResult(ctx, c, env, result)
	})
}

func instantWithdrawAction(c *cli.Context) error {
	return withStakingEnv(c, func(ctx context.Context, env *stakingEnv) error {
		if err := requireWallet(env); err != nil {
			return err
		}
		in, err := parseWriteInputs(c, env)
		if err != nil {
			return err
		}
		result, err := env.client.InstantWithdraw(ctx, stakingClient.InstantWithdrawInput{
			Wallet:          env.wallet,
			ContractAddress: in.contract,
			UserAddress:     in.user,
			AccountNumber:   env.params.AccountNumber,
			DryRun:          c.Bool("dry-run"),
		})
		if err != nil {
			return err
		}
		return printTxResult(ctx, c, env, result)
	})
}

func estimateAction(c *cli.Context) error {
	return withStakingEnv(c, func(ctx context.Context, env *stakingEnv) error {
		in, err := parseWriteInputs(c, env)
		if err != nil {
			return err
		}
		amount, err := parseAmount(c)
		if err != nil {
			return err
		}
		input := stakingClient.EstimateGasTxInput{
			ContractAddress:      in.contract,
			TokenContractAddress: in.token,
			UserAddress:          in.user,
			AmountDesired:        amount,
		}

		var gas uint64
		switch op := c.String("op"); op {
		case "approve":
			gas, err = env.client.EstimateApproveGas(ctx, stakingClient.EstimateGasApproveInput{
				ContractAddress:      in.contract,
				TokenContractAddress: in.token,
				UserAddress:          in.user,
			})
		case "deposit":
			gas, err = env.client.EstimateDepositGas(ctx, input)
		case "withdraw":
			gas, err = env.client.EstimateWithdrawGas(ctx, input)
		case "instant-withdraw":
			gas, err = env.client.EstimateInstantWithdrawGas(ctx, input)
		default:
			return fmt.Errorf("unknown operation: %s", op)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Gas Limit: %d\n", gas)
		return nil
	})
}

func balanceAction(c *cli.Context) error {
	return withStakingEnv(c, func(ctx context.Context, env *stakingEnv) error {
		token, err := parseAddressFlag(c, "token")
		if err != nil {
			return err
		}
		user, err := resolveUser(c, env.wallet, env.params)
		if err != nil {
			return err
		}
		balance, err := env.client.Balance(ctx, stakingClient.BalanceInput{TokenContractAddress: token, UserAddress: user})
		if err != nil {
			return err
		}
		fmt.Printf("Balance: %s\n", balance)
		return nil
	})
}

func allowanceAction(c *cli.Context) error {
	return withStakingEnv(c, func(ctx context.Context, env *stakingEnv) error {
		in, err := parseWriteInputs(c, env)
		if err != nil {
			return err
		}
		allowance, err := env.client.Allowance(ctx, stakingClient.AllowanceInput{
			TokenContractAddress: in.token,
			UserAddress:          in.user,
			ContractAddress:      in.contract,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Allowance: %s\n", allowance)
		return nil
	})
}

func totalSupplyAction(c *cli.Context) error {
	return withStakingEnv(c, func(ctx context.Context, env *stakingEnv) error {
		token, err := parseAddressFlag(c, "token")
		if err != nil {
			return err
		}
		supply, err := env.client.TotalSupply(ctx, token)
		if err != nil {
			return err
		}
		fmt.Printf("Total Supply: %s\n", supply)
		return nil
	})
}

func tvlAction(c *cli.Context) error {
	return withStakingEnv(c, func(ctx context.Context, env *stakingEnv) error {
		token, err := parseAddressFlag(c, "token")
		if err != nil {
			return err
		}
		tvl, err := env.client.TVL(ctx, stakingClient.TVLInput{TokenContractAddress: token})
		if err != nil {
			return err
		}
		fmt.Printf("TVL: %s\n", tvl)
		return nil
	})
}

func gasPriceAction(c *cli.Context) error {
	return withStakingEnv(c, func(ctx context.Context, env *stakingEnv) error {
		price, err := env.client.GetGasPrice(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Gas Price: %s wei\n", price)
		return nil
	})
}

func receiptAction(c *cli.Context) error {
	return withStakingEnv(c, func(ctx context.Context, env *stakingEnv) error {
		return printReceipt(ctx, env, c.String("tx-hash"), c.Bool("wait"))
	})
}

func checksumAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one address argument")
	}
	checksummed, err := stakingClient.ChecksumAddress(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(checksummed)
	return nil
}
