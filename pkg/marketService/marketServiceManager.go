// Package marketService aggregates market data providers. Providers are
// queried one at a time in priority order and the first useful answer wins.
package marketService

import (
	"context"
	"errors"
	"fmt"

	"github.com/Layr-Labs/stakemarket-go/pkg/logger"
	"github.com/Layr-Labs/stakemarket-go/pkg/util"
	"go.uber.org/zap"
)

// ErrNoMarketData is returned by FindAll when every provider failed or had nothing
var ErrNoMarketData = errors.New("cannot find market service provider for market data")

// IMarketProvider is a single market data source. A provider reports
// "nothing" with a nil map, a nil pointer or an empty slice and a nil error.
// For FindAll only a nil map means nothing; an empty map is an answer.
type IMarketProvider interface {
	// Name identifies the provider in logs
	Name() string

	FindAll(ctx context.Context, args *FindAllMarketArgs) (MarketCapResult, error)

	FindByAssetId(ctx context.Context, args MarketDataArgs) (*MarketData, error)

	FindPriceHistoryByAssetId(ctx context.Context, args PriceHistoryArgs) ([]HistoryData, error)
}

// IMarketServiceManager is the failover aggregator.
type IMarketServiceManager interface {
	// FindAll returns the first non-nil listing. An empty map from a
	// provider is a valid answer and stops the iteration.
	//
	// Returns:
	//   - MarketCapResult: Market data keyed by asset id
	//   - error: ErrNoMarketData if no provider had data
	FindAll(ctx context.Context, args *FindAllMarketArgs) (MarketCapResult, error)

	// FindByAssetId returns the first provider's snapshot for an asset.
	// Provider errors are not surfaced; false means no provider found it.
	FindByAssetId(ctx context.Context, args MarketDataArgs) (*MarketData, bool)

	// FindPriceHistoryByAssetId returns the first non-empty history. It never
	// fails and returns an empty slice when no provider had data.
	FindPriceHistoryByAssetId(ctx context.Context, args PriceHistoryArgs) []HistoryData

	// Providers returns the provider names in priority order
	Providers() []string
}

type Config struct {
	// Providers in priority order, index 0 is queried first
	Providers []IMarketProvider
}

type MarketServiceManager struct {
	providers []IMarketProvider
	logger    *zap.Logger
}

var _ IMarketServiceManager = (*MarketServiceManager)(nil)

// NewMarketServiceManager creates a failover aggregator over cfg.Providers.
// The provider list is copied.
func NewMarketServiceManager(cfg *Config, l *zap.Logger) (*MarketServiceManager, error) {
	if cfg == nil || len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("at least one market provider is required")
	}
	for i, p := range cfg.Providers {
		if p == nil {
			return nil, fmt.Errorf("market provider at index %d is nil", i)
		}
	}
	return &MarketServiceManager{
		providers: append([]IMarketProvider(nil), cfg.Providers...),
		logger:    logger.Component(l, "marketServiceManager"),
	}, nil
}

func (m *MarketServiceManager) Providers() []string {
	return util.Map(m.providers, func(p IMarketProvider) string {
		return p.Name()
	})
}

func (m *MarketServiceManager) FindAll(ctx context.Context, args *FindAllMarketArgs) (MarketCapResult, error) {
	for _, provider := range m.providers {
		result, err := provider.FindAll(ctx, args)
		if err != nil {
			m.logger.Sugar().Infow("Market provider failed to list market data",
				zap.String("provider", provider.Name()),
				zap.Error(err),
			)
			continue
		}
		if result != nil {
			return result, nil
		}
	}
	return nil, ErrNoMarketData
}

func (m *MarketServiceManager) FindByAssetId(ctx context.Context, args MarketDataArgs) (*MarketData, bool) {
	for _, provider := range m.providers {
		data, err := provider.FindByAssetId(ctx, args)
		if err != nil {
			m.logger.Sugar().Debugw("Market provider failed to find asset",
				zap.String("provider", provider.Name()),
				zap.String("assetId", args.AssetId),
				zap.Error(err),
			)
			continue
		}
		if data != nil {
			return data, true
		}
	}
	return nil, false
}

func (m *MarketServiceManager) FindPriceHistoryByAssetId(ctx context.Context, args PriceHistoryArgs) []HistoryData {
	for _, provider := range m.providers {
		history, err := provider.FindPriceHistoryByAssetId(ctx, args)
		if err != nil {
			m.logger.Sugar().Debugw("Market provider failed to find price history",
				zap.String("provider", provider.Name()),
				zap.String("assetId", args.AssetId),
				zap.String("timeframe", string(args.Timeframe)),
				zap.Error(err),
			)
			continue
		}
		if len(history) > 0 {
			return history
		}
	}
	return []HistoryData{}
}
