package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Layr-Labs/stakemarket-go/pkg/marketService"
	cli "github.com/urfave/cli/v2"
)

var assetIdFlag = &cli.StringFlag{
	Name:     "asset-id",
	Aliases:  []string{"a"},
	Usage:    "CAIP-19 asset id, e.g. eip155:1/slip44:60",
	Required: true,
}

var marketCommand = &cli.Command{
	Name:  "market",
	Usage: "Look up market data, trying each configured provider in order",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List market data for every mapped asset",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "pages", Usage: "Number of pages to request"},
				&cli.IntFlag{Name: "per-page", Usage: "Entries per page"},
			},
			Action: marketListAction,
		},
		{
			Name:   "asset",
			Usage:  "Show market data for a single asset",
			Flags:  []cli.Flag{assetIdFlag},
			Action: marketAssetAction,
		},
		{
			Name:  "history",
			Usage: "Show price history for a single asset",
			Flags: []cli.Flag{
				assetIdFlag,
				&cli.StringFlag{
					Name:  "timeframe",
					Usage: "One of 1H, 24H, 1W, 1M, 1Y, All",
					Value: string(marketService.HistoryTimeframeDay),
				},
			},
			Action: marketHistoryAction,
		},
	},
}

func marketListAction(c *cli.Context) error {
	l, err := setupLogger(c)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	manager, err := setupMarketServiceManager(c, l)
	if err != nil {
		return fmt.Errorf("failed to setup market service: %w", err)
	}

	var args *marketService.FindAllMarketArgs
	if c.IsSet("pages") || c.IsSet("per-page") {
		args = &marketService.FindAllMarketArgs{Pages: c.Int("pages"), PerPage: c.Int("per-page")}
	}

	l.Sugar().Infow("Listing market data", "providers", strings.Join(manager.Providers(), ","))
	result, err := manager.FindAll(c.Context, args)
	if err != nil {
		return err
	}

	assetIds := make([]string, 0, len(result))
	for assetId := range result {
		assetIds = append(assetIds, assetId)
	}
	sort.Strings(assetIds)
	for _, assetId := range assetIds {
		printMarketData(assetId, result[assetId])
	}
	return nil
}

func marketAssetAction(c *cli.Context) error {
	l, err := setupLogger(c)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	manager, err := setupMarketServiceManager(c, l)
	if err != nil {
		return fmt.Errorf("failed to setup market service: %w", err)
	}

	assetId := c.String("asset-id")
	data, ok := manager.FindByAssetId(c.Context, marketService.MarketDataArgs{AssetId: assetId})
	if !ok {
		fmt.Printf("No market data found for %s\n", assetId)
		return nil
	}
	printMarketData(assetId, *data)
	return nil
}

func marketHistoryAction(c *cli.Context) error {
	l, err := setupLogger(c)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	timeframe, err := marketService.ParseHistoryTimeframe(c.String("timeframe"))
	if err != nil {
		return err
	}
	manager, err := setupMarketServiceManager(c, l)
	if err != nil {
		return fmt.Errorf("failed to setup market service: %w", err)
	}

	assetId := c.String("asset-id")
	history := manager.FindPriceHistoryByAssetId(c.Context, marketService.PriceHistoryArgs{
		AssetId:   assetId,
		Timeframe: timeframe,
	})
	if len(history) == 0 {
		fmt.Printf("No price history found for %s\n", assetId)
		return nil
	}
	for _, point := range history {
		fmt.Printf("%s  %s\n", point.Date.Format("2006-01-02T15:04:05Z07:00"), point.Price.String())
	}
	return nil
}

func printMarketData(assetId string, data marketService.MarketData) {
	fmt.Printf("%s\n", assetId)
	fmt.Printf("  Price:      %s\n", data.Price.String())
	fmt.Printf("  Market Cap: %s\n", data.MarketCap.String())
	fmt.Printf("  Volume:     %s\n", data.Volume.String())
	fmt.Printf("  24h Change: %.2f%%\n", data.ChangePercent24Hr)
}
