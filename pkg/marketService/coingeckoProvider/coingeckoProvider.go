// Package coingeckoProvider serves market data from the CoinGecko REST API.
package coingeckoProvider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Layr-Labs/stakemarket-go/pkg/assetMap"
	"github.com/Layr-Labs/stakemarket-go/pkg/logger"
	"github.com/Layr-Labs/stakemarket-go/pkg/marketService"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	ProviderName = "coingecko"

	DefaultBaseURL           = "https://api.coingecko.com/api/v3"
	DefaultRequestsPerMinute = 30
	DefaultTimeout           = 10 * time.Second
	DefaultPages             = 1
	DefaultPerPage           = 250

	apiKeyHeader = "x-cg-pro-api-key"
)

var (
	// ErrUnexpectedStatus is returned for any non-2xx response
	ErrUnexpectedStatus = errors.New("unexpected coingecko response status")
	// ErrInvalidPayload is returned when a response body is not the expected JSON
	ErrInvalidPayload = errors.New("invalid coingecko payload")
)

type Config struct {
	BaseURL string
	// APIKey is sent as x-cg-pro-api-key when set
	APIKey            string
	RequestsPerMinute int
	Timeout           time.Duration
	HTTPClient        *http.Client
}

type CoinGeckoProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	assets     *assetMap.AssetMap
	logger     *zap.Logger
}

var _ marketService.IMarketProvider = (*CoinGeckoProvider)(nil)

func NewCoinGeckoProvider(cfg *Config, assets *assetMap.AssetMap, l *zap.Logger) (*CoinGeckoProvider, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if assets == nil {
		return nil, fmt.Errorf("asset map is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid coingecko base url: %w", err)
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &CoinGeckoProvider{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		assets:     assets,
		logger:     logger.Component(l, ProviderName),
	}, nil
}

func (p *CoinGeckoProvider) Name() string {
	return ProviderName
}

// FindAll walks /coins/markets page by page. Coins without an asset mapping
// are skipped.
func (p *CoinGeckoProvider) FindAll(ctx context.Context, args *marketService.FindAllMarketArgs) (marketService.MarketCapResult, error) {
	pages, perPage := DefaultPages, DefaultPerPage
	if args != nil {
		if args.Pages > 0 {
			pages = args.Pages
		}
		if args.PerPage > 0 {
			perPage = args.PerPage
		}
	}

	result := make(marketService.MarketCapResult)
	for page := 1; page <= pages; page++ {
		query := url.Values{}
		query.Set("vs_currency", "usd")
		query.Set("order", "market_cap_desc")
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(perPage))
		query.Set("sparkline", "false")

		body, err := p.get(ctx, "/coins/markets", query)
		if err != nil {
			return nil, err
		}
		coins := gjson.ParseBytes(body)
		if !coins.IsArray() {
			return nil, fmt.Errorf("%w: markets page %d is not a list", ErrInvalidPayload, page)
		}

		count := 0
		coins.ForEach(func(_, coin gjson.Result) bool {
			count++
			assetId, ok := p.assets.AssetIdForCoinGecko(coin.Get("id").String())
			if !ok {
				return true
			}
			result[assetId] = marketService.MarketData{
				Price:             decimalOf(coin.Get("current_price")),
				MarketCap:         decimalOf(coin.Get("market_cap")),
				Volume:            decimalOf(coin.Get("total_volume")),
				ChangePercent24Hr: coin.Get("price_change_percentage_24h").Float(),
			}
			return true
		})
		if count < perPage {
			break
		}
	}

	p.logger.Sugar().Debugw("Listed market data", zap.Int("assets", len(result)))
	return result, nil
}

// FindByAssetId returns nil without an error for assets CoinGecko does not map.
func (p *CoinGeckoProvider) FindByAssetId(ctx context.Context, args marketService.MarketDataArgs) (*marketService.MarketData, error) {
	id, ok := p.assets.CoinGeckoId(args.AssetId)
	if !ok {
		return nil, nil
	}

	query := url.Values{}
	query.Set("localization", "false")
	query.Set("tickers", "false")
	query.Set("community_data", "false")
	query.Set("developer_data", "false")
	query.Set("sparkline", "false")

	body, err := p.get(ctx, "/coins/"+url.PathEscape(id), query)
	if err != nil {
		return nil, err
	}
	marketData := gjson.GetBytes(body, "market_data")
	if !marketData.Exists() {
		return nil, fmt.Errorf("%w: coin %s has no market_data", ErrInvalidPayload, id)
	}

	return &marketService.MarketData{
		Price:             decimalOf(marketData.Get("current_price.usd")),
		MarketCap:         decimalOf(marketData.Get("market_cap.usd")),
		Volume:            decimalOf(marketData.Get("total_volume.usd")),
		ChangePercent24Hr: marketData.Get("price_change_percentage_24h").Float(),
	}, nil
}

func (p *CoinGeckoProvider) FindPriceHistoryByAssetId(ctx context.Context, args marketService.PriceHistoryArgs) ([]marketService.HistoryData, error) {
	id, ok := p.assets.CoinGeckoId(args.AssetId)
	if !ok {
		return nil, nil
	}
	days, window, err := timeframeDays(args.Timeframe)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("days", days)

	body, err := p.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", query)
	if err != nil {
		return nil, err
	}
	prices := gjson.GetBytes(body, "prices")
	if !prices.IsArray() {
		return nil, fmt.Errorf("%w: market chart for %s has no prices", ErrInvalidPayload, id)
	}

	points := prices.Array()
	history := make([]marketService.HistoryData, 0, len(points))
	var cutoff time.Time
	if window > 0 && len(points) > 0 {
		cutoff = time.UnixMilli(points[len(points)-1].Get("0").Int()).Add(-window)
	}
	for _, point := range points {
		date := time.UnixMilli(point.Get("0").Int()).UTC()
		if date.Before(cutoff) {
			continue
		}
		history = append(history, marketService.HistoryData{
			Date:  date,
			Price: decimalOf(point.Get("1")),
		})
	}
	return history, nil
}

func (p *CoinGeckoProvider) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := p.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build coingecko request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set(apiKeyHeader, p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call coingecko %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read coingecko response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s", ErrUnexpectedStatus, path, resp.Status)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s returned malformed JSON", ErrInvalidPayload, path)
	}
	return body, nil
}

// timeframeDays maps a timeframe to the days query parameter and, for
// windows shorter than CoinGecko's minimum, the trailing window to keep.
func timeframeDays(tf marketService.HistoryTimeframe) (string, time.Duration, error) {
	switch tf {
	case marketService.HistoryTimeframeHour:
		return "1", time.Hour, nil
	case marketService.HistoryTimeframeDay:
		return "1", 0, nil
	case marketService.HistoryTimeframeWeek:
		return "7", 0, nil
	case marketService.HistoryTimeframeMonth:
		return "30", 0, nil
	case marketService.HistoryTimeframeYear:
		return "365", 0, nil
	case marketService.HistoryTimeframeAll:
		return "max", 0, nil
	default:
		return "", 0, fmt.Errorf("%w: %q", marketService.ErrInvalidTimeframe, tf)
	}
}

// decimalOf reads a JSON number without a float round trip. Missing and null
// values read as zero.
func decimalOf(r gjson.Result) decimal.Decimal {
	switch r.Type {
	case gjson.Number:
		if d, err := decimal.NewFromString(r.Raw); err == nil {
			return d
		}
		return decimal.NewFromFloat(r.Float())
	case gjson.String:
		if d, err := decimal.NewFromString(r.Str); err == nil {
			return d
		}
	}
	return decimal.Zero
}
