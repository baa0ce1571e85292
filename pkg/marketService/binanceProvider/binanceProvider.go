// Package binanceProvider serves market data from Binance spot tickers. Binance
// has no market capitalisation, so MarketCap is always zero.
package binanceProvider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Layr-Labs/stakemarket-go/pkg/assetMap"
	"github.com/Layr-Labs/stakemarket-go/pkg/logger"
	"github.com/Layr-Labs/stakemarket-go/pkg/marketService"
	"github.com/Layr-Labs/stakemarket-go/pkg/util"
	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	ProviderName = "binance"

	DefaultBaseURL = "https://api.binance.com"
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type BinanceProvider struct {
	client *binance.Client
	assets *assetMap.AssetMap
	logger *zap.Logger
}

// klineRange is the interval and candle count requested for a timeframe.
type klineRange struct {
	interval string
	limit    int
}

var timeframeKlines = map[marketService.HistoryTimeframe]klineRange{
	marketService.HistoryTimeframeHour:  {interval: "1m", limit: 60},
	marketService.HistoryTimeframeDay:   {interval: "15m", limit: 96},
	marketService.HistoryTimeframeWeek:  {interval: "1h", limit: 168},
	marketService.HistoryTimeframeMonth: {interval: "4h", limit: 180},
	marketService.HistoryTimeframeYear:  {interval: "1d", limit: 365},
	marketService.HistoryTimeframeAll:   {interval: "1w", limit: 1000},
}

var _ marketService.IMarketProvider = (*BinanceProvider)(nil)

func NewBinanceProvider(cfg *Config, assets *assetMap.AssetMap, l *zap.Logger) (*BinanceProvider, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if assets == nil {
		return nil, fmt.Errorf("asset map is required")
	}

	client := binance.NewClient("", "")
	client.BaseURL = util.FirstNonEmpty(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"), DefaultBaseURL)
	if cfg.HTTPClient != nil {
		client.HTTPClient = cfg.HTTPClient
	} else {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &BinanceProvider{
		client: client,
		assets: assets,
		logger: logger.Component(l, ProviderName),
	}, nil
}

func (p *BinanceProvider) Name() string {
	return ProviderName
}

// FindAll returns 24h tickers for mapped assets in asset map order, capped at
// Pages*PerPage entries when both are set.
func (p *BinanceProvider) FindAll(ctx context.Context, args *marketService.FindAllMarketArgs) (marketService.MarketCapResult, error) {
	symbols := make([]string, 0)
	for _, asset := range p.assets.Assets() {
		if asset.Binance != "" {
			symbols = append(symbols, asset.Binance)
		}
	}
	if args != nil && args.Pages > 0 && args.PerPage > 0 && len(symbols) > args.Pages*args.PerPage {
		symbols = symbols[:args.Pages*args.PerPage]
	}
	if len(symbols) == 0 {
		return nil, nil
	}

	stats, err := p.client.NewListPriceChangeStatsService().Symbols(symbols).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list binance tickers: %w", err)
	}

	result := make(marketService.MarketCapResult, len(stats))
	for _, stat := range stats {
		if stat == nil {
			continue
		}
		assetId, ok := p.assets.AssetIdForBinance(stat.Symbol)
		if !ok {
			continue
		}
		result[assetId] = toMarketData(stat)
	}
	p.logger.Sugar().Debugw("Listed market data", zap.Int("assets", len(result)))
	return result, nil
}

func (p *BinanceProvider) FindByAssetId(ctx context.Context, args marketService.MarketDataArgs) (*marketService.MarketData, error) {
	symbol, ok := p.assets.BinanceSymbol(args.AssetId)
	if !ok {
		return nil, nil
	}

	stats, err := p.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get binance ticker %s: %w", symbol, err)
	}
	for _, stat := range stats {
		if stat != nil && strings.EqualFold(stat.Symbol, symbol) {
			data := toMarketData(stat)
			return &data, nil
		}
	}
	return nil, nil
}

func (p *BinanceProvider) FindPriceHistoryByAssetId(ctx context.Context, args marketService.PriceHistoryArgs) ([]marketService.HistoryData, error) {
	symbol, ok := p.assets.BinanceSymbol(args.AssetId)
	if !ok {
		return nil, nil
	}
	kr, ok := timeframeKlines[args.Timeframe]
	if !ok {
		return nil, fmt.Errorf("%w: %q", marketService.ErrInvalidTimeframe, args.Timeframe)
	}

	klines, err := p.client.NewKlinesService().
		Symbol(symbol).
		Interval(kr.interval).
		Limit(kr.limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get binance klines %s: %w", symbol, err)
	}

	history := make([]marketService.HistoryData, 0, len(klines))
	for _, kl := range klines {
		if kl == nil {
			continue
		}
		history = append(history, marketService.HistoryData{
			Date:  time.UnixMilli(kl.OpenTime).UTC(),
			Price: parseDecimal(kl.Close),
		})
	}
	return history, nil
}

func toMarketData(stat *binance.PriceChangeStats) marketService.MarketData {
	change, _ := strconv.ParseFloat(stat.PriceChangePercent, 64)
	return marketService.MarketData{
		Price:             parseDecimal(stat.LastPrice),
		MarketCap:         decimal.Zero,
		Volume:            parseDecimal(stat.QuoteVolume),
		ChangePercent24Hr: change,
	}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
