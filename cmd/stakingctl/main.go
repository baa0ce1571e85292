package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	cli "github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "stakingctl",
		Usage: "Staking contract client and market data lookup",
		Description: `stakingctl sends approve, deposit, withdraw and instant withdraw
transactions to a rebasing staking contract, answers token balance and supply
queries, and looks up market data from an ordered list of providers with
failover.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
				EnvVars: []string{"DEBUG"},
			},
			&cli.BoolFlag{
				Name:    "console-log",
				Usage:   "Log in console format instead of JSON",
				EnvVars: []string{"CONSOLE_LOG"},
			},
			// Chain options
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Ethereum JSON-RPC endpoint",
				EnvVars: []string{"RPC_URL"},
			},
			&cli.StringFlag{
				Name:    "network",
				Usage:   "Network name: mainnet, ropsten or rinkeby",
				Value:   "mainnet",
				EnvVars: []string{"NETWORK"},
			},
			&cli.Uint64Flag{
				Name:    "chain-id",
				Usage:   "Chain ID, overrides --network",
				EnvVars: []string{"CHAIN_ID"},
			},
			&cli.StringSliceFlag{
				Name:    "staking-contract",
				Usage:   "Accepted staking contract address, may be repeated; the first is the default",
				EnvVars: []string{"STAKING_CONTRACTS"},
			},
			// Wallet options
			&cli.StringSliceFlag{
				Name:    "private-key",
				Usage:   "Private key for transaction signing (hex), repeat for additional account numbers",
				EnvVars: []string{"PRIVATE_KEY"},
			},
			&cli.StringFlag{
				Name:    "aws-kms-key-id",
				Usage:   "AWS KMS key ID for transaction signing",
				EnvVars: []string{"AWS_KMS_KEY_ID"},
			},
			&cli.StringFlag{
				Name:    "aws-secret-name",
				Usage:   "AWS Secrets Manager secret holding hex private keys",
				EnvVars: []string{"AWS_SECRET_NAME"},
			},
			&cli.StringFlag{
				Name:    "aws-region",
				Usage:   "AWS region for KMS and Secrets Manager",
				Value:   "us-east-1",
				EnvVars: []string{"AWS_REGION"},
			},
			&cli.BoolFlag{
				Name:    "node-wallet",
				Usage:   "Sign and broadcast with accounts managed by the RPC node",
				EnvVars: []string{"NODE_WALLET"},
			},
			// Market options
			&cli.StringSliceFlag{
				Name:    "market-providers",
				Usage:   "Market data providers in priority order (coingecko, binance)",
				Value:   cli.NewStringSlice(coingeckoProviderName, binanceProviderName),
				EnvVars: []string{"MARKET_PROVIDERS"},
			},
			&cli.StringFlag{
				Name:    "asset-map",
				Usage:   "YAML file mapping CAIP-19 asset ids to provider ids (defaults to the built-in map)",
				EnvVars: []string{"ASSET_MAP"},
			},
			&cli.StringFlag{
				Name:    "coingecko-base-url",
				Usage:   "CoinGecko API base URL",
				EnvVars: []string{"COINGECKO_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "coingecko-api-key",
				Usage:   "CoinGecko pro API key",
				EnvVars: []string{"COINGECKO_API_KEY"},
			},
			&cli.IntFlag{
				Name:    "coingecko-rpm",
				Usage:   "CoinGecko requests per minute",
				EnvVars: []string{"COINGECKO_RPM"},
			},
			&cli.StringFlag{
				Name:    "binance-base-url",
				Usage:   "Binance spot API base URL",
				EnvVars: []string{"BINANCE_BASE_URL"},
			},
		},
		Commands: []*cli.Command{
			marketCommand,
			stakingCommand,
		},
		Before: validateFlags,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func validateFlags(c *cli.Context) error {
	walletOptions := 0
	if len(c.StringSlice("private-key")) > 0 {
		walletOptions++
	}
	if c.String("aws-kms-key-id") != "" {
		walletOptions++
	}
	if c.String("aws-secret-name") != "" {
		walletOptions++
	}
	if c.Bool("node-wallet") {
		walletOptions++
	}
	if walletOptions > 1 {
		return fmt.Errorf("can only specify one of --private-key, --aws-kms-key-id, --aws-secret-name or --node-wallet")
	}

	for _, contract := range c.StringSlice("staking-contract") {
		if !common.IsHexAddress(contract) {
			return fmt.Errorf("invalid staking contract address: %s", contract)
		}
	}

	if c.Uint64("chain-id") == 0 {
		if _, err := networkChainID(c.String("network")); err != nil {
			return err
		}
	}

	for _, name := range c.StringSlice("market-providers") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case coingeckoProviderName, binanceProviderName:
		default:
			return fmt.Errorf("unknown market provider: %s", name)
		}
	}
	return nil
}
