package main

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/Layr-Labs/stakemarket-go/pkg/assetMap"
	"github.com/Layr-Labs/stakemarket-go/pkg/chainAdapter"
	"github.com/Layr-Labs/stakemarket-go/pkg/chainManager"
	"github.com/Layr-Labs/stakemarket-go/pkg/logger"
	"github.com/Layr-Labs/stakemarket-go/pkg/marketService"
	"github.com/Layr-Labs/stakemarket-go/pkg/marketService/binanceProvider"
	"github.com/Layr-Labs/stakemarket-go/pkg/marketService/coingeckoProvider"
	"github.com/Layr-Labs/stakemarket-go/pkg/stakingClient"
	"github.com/Layr-Labs/stakemarket-go/pkg/util"
	"github.com/Layr-Labs/stakemarket-go/pkg/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	coingeckoProviderName = coingeckoProvider.ProviderName
	binanceProviderName   = binanceProvider.ProviderName
)

var networks = map[string]uint64{
	"mainnet": chainManager.EthereumMainnet,
	"ropsten": chainManager.EthereumRopsten,
	"rinkeby": chainManager.EthereumRinkeby,
}

func networkChainID(name string) (uint64, error) {
	chainID, ok := networks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown network: %s (expected mainnet, ropsten or rinkeby)", name)
	}
	return chainID, nil
}

func setupLogger(c *cli.Context) (*zap.Logger, error) {
	return logger.NewLogger(&logger.LoggerConfig{
		Debug:   c.Bool("debug"),
		Console: c.Bool("console-log"),
	})
}

func setupChain(c *cli.Context) (*chainManager.ChainManager, *chainManager.Chain, error) {
	rpcURL := c.String("rpc-url")
	if rpcURL == "" {
		return nil, nil, fmt.Errorf("--rpc-url is required")
	}

	chainID := c.Uint64("chain-id")
	if chainID == 0 {
		id, err := networkChainID(c.String("network"))
		if err != nil {
			return nil, nil, err
		}
		chainID = id
	}

	cm := chainManager.NewChainManager()
	if err := cm.AddChain(&chainManager.ChainConfig{ChainID: chainID, RPCUrl: rpcURL}); err != nil {
		return nil, nil, fmt.Errorf("failed to add chain %d: %w", chainID, err)
	}
	chain, err := cm.GetChainForId(chainID)
	if err != nil {
		cm.Close()
		return nil, nil, err
	}
	return cm, chain, nil
}

// setupWallet returns nil when no wallet option is set.
func setupWallet(ctx context.Context, c *cli.Context, chain *chainManager.Chain) (wallet.IWallet, error) {
	if keys := c.StringSlice("private-key"); len(keys) > 0 {
		return wallet.NewPrivateKeyWallet(keys...)
	}
	if keyID := c.String("aws-kms-key-id"); keyID != "" {
		return wallet.NewAWSKMSWallet(ctx, keyID, c.String("aws-region"))
	}
	if secretName := c.String("aws-secret-name"); secretName != "" {
		return wallet.NewAWSSecretsManagerWallet(ctx, secretName, c.String("aws-region"))
	}
	if c.Bool("node-wallet") {
		return wallet.NewRPCNodeWallet(chain.RawClient, ""), nil
	}
	return nil, nil
}

func stakingContracts(c *cli.Context) []common.Address {
	return util.Map(c.StringSlice("staking-contract"), common.HexToAddress)
}

func setupStakingClient(c *cli.Context, chain *chainManager.Chain, l *zap.Logger) (*stakingClient.StakingClient, error) {
	contracts := stakingContracts(c)
	if len(contracts) == 0 {
		return nil, fmt.Errorf("at least one --staking-contract is required")
	}

	adapter := chainAdapter.NewEthereumAdapter(chain.RPCClient, l)
	return stakingClient.NewStakingClient(&stakingClient.Config{
		ChainID:          chain.ChainID(),
		StakingContracts: contracts,
	}, adapter, chain.RPCClient, l)
}

func setupAssetMap(c *cli.Context) (*assetMap.AssetMap, error) {
	if path := c.String("asset-map"); path != "" {
		return assetMap.Load(path)
	}
	return assetMap.Default(), nil
}

func setupMarketServiceManager(c *cli.Context, l *zap.Logger) (*marketService.MarketServiceManager, error) {
	assets, err := setupAssetMap(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset map: %w", err)
	}

	providers := make([]marketService.IMarketProvider, 0)
	for _, name := range c.StringSlice("market-providers") {
		var (
			provider marketService.IMarketProvider
			err      error
		)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case coingeckoProviderName:
			provider, err = coingeckoProvider.NewCoinGeckoProvider(&coingeckoProvider.Config{
				BaseURL:           c.String("coingecko-base-url"),
				APIKey:            c.String("coingecko-api-key"),
				RequestsPerMinute: c.Int("coingecko-rpm"),
			}, assets, l)
		case binanceProviderName:
			provider, err = binanceProvider.NewBinanceProvider(&binanceProvider.Config{
				BaseURL: c.String("binance-base-url"),
			}, assets, l)
		default:
			err = fmt.Errorf("unknown market provider: %s", name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create market provider %s: %w", name, err)
		}
		providers = append(providers, provider)
	}

	return marketService.NewMarketServiceManager(&marketService.Config{Providers: providers}, l)
}

// resolveUser picks the --user address, falling back to the offline signer's
// address for the account number.
func resolveUser(c *cli.Context, w wallet.IWallet, params wallet.BIP44Params) (common.Address, error) {
	if user := c.String("user"); user != "" {
		if !common.IsHexAddress(user) {
			return common.Address{}, fmt.Errorf("invalid user address: %s", user)
		}
		return common.HexToAddress(user), nil
	}
	if signer, ok := w.(wallet.IOfflineSigner); ok {
		return signer.GetAddress(params)
	}
	return common.Address{}, fmt.Errorf("--user is required for this wallet")
}

func parseAddressFlag(c *cli.Context, name string) (common.Address, error) {
	value := c.String(name)
	if value == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid --%s address: %s", name, value)
	}
	return common.HexToAddress(value), nil
}

func contractFlag(c *cli.Context) (common.Address, error) {
	contract, err := parseAddressFlag(c, "contract")
	if err != nil {
		return common.Address{}, err
	}
	if contract == (common.Address{}) {
		if contracts := stakingContracts(c); len(contracts) > 0 {
			return contracts[0], nil
		}
	}
	return contract, nil
}

// parseAmount converts a token amount such as 1.5 into base units.
func parseAmount(c *cli.Context) (*big.Int, error) {
	value := c.String("amount")
	if value == "" {
		return nil, nil
	}
	amount, err := toBaseUnits(value, c.Uint("decimals"))
	if err != nil {
		return nil, fmt.Errorf("invalid --amount %s: %w", value, err)
	}
	return amount, nil
}

// toBaseUnits shifts value by decimals and rejects anything left below one
// base unit.
func toBaseUnits(value string, decimals uint) (*big.Int, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	shifted := amount.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("more than %d decimal places", decimals)
	}
	return shifted.BigInt(), nil
}
