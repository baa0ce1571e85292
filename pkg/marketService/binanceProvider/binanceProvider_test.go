package binanceProvider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Layr-Labs/stakemarket-go/pkg/assetMap"
	"github.com/Layr-Labs/stakemarket-go/pkg/marketService"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const ethAssetId = "eip155:1/slip44:60"

const ethTicker = `{"symbol":"ETHUSDT","priceChange":"50.00","priceChangePercent":"1.493","lastPrice":"3400.50","quoteVolume":"1250000000.75","openTime":1714564800000,"closeTime":1714651199999,"count":100}`

func setupTestProvider(t *testing.T, handler http.HandlerFunc) *BinanceProvider {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewBinanceProvider(&Config{BaseURL: server.URL}, assetMap.Default(), zap.NewNop())
	require.NoError(t, err)
	return p
}

func Test_NewBinanceProvider(t *testing.T) {
	_, err := NewBinanceProvider(nil, nil, zap.NewNop())
	assert.Error(t, err)

	p, err := NewBinanceProvider(nil, assetMap.Default(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, p.client.BaseURL)
	assert.Equal(t, ProviderName, p.Name())
}

func Test_FindAll(t *testing.T) {
	p := setupTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("symbols"), "ETHUSDT")
		fmt.Fprintf(w, `[%s,{"symbol":"BTCUSDT","priceChangePercent":"-0.5","lastPrice":"65000","quoteVolume":"900"},{"symbol":"DOGEUSDT","lastPrice":"0.1"}]`, ethTicker)
	})

	result, err := p.FindAll(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, result, 2)

	eth := result[ethAssetId]
	assert.True(t, eth.Price.Equal(decimal.RequireFromString("3400.50")))
	assert.True(t, eth.MarketCap.IsZero())
	assert.True(t, eth.Volume.Equal(decimal.RequireFromString("1250000000.75")))
	assert.InDelta(t, 1.493, eth.ChangePercent24Hr, 1e-9)
}

func Test_FindAll_CapsSymbols(t *testing.T) {
	p := setupTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `["ETHUSDT"]`, r.URL.Query().Get("symbols"))
		fmt.Fprintf(w, `[%s]`, ethTicker)
	})

	result, err := p.FindAll(context.Background(), &marketService.FindAllMarketArgs{Pages: 1, PerPage: 1})
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func Test_FindAll_APIError(t *testing.T) {
	p := setupTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"code":-1003,"msg":"Too many requests"}`)
	})

	_, err := p.FindAll(context.Background(), nil)
	require.Error(t, err)
	var apiErr *common.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func Test_FindByAssetId(t *testing.T) {
	p := setupTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		fmt.Fprint(w, ethTicker)
	})

	data, err := p.FindByAssetId(context.Background(), marketService.MarketDataArgs{AssetId: ethAssetId})
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.True(t, data.Price.Equal(decimal.RequireFromString("3400.5")))
}

func Test_FindByAssetId_Unmapped(t *testing.T) {
	p := setupTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	// foxy has no binance market
	data, err := p.FindByAssetId(context.Background(), marketService.MarketDataArgs{AssetId: "eip155:1/erc20:0xdc49108ce5c57bc3408c3a5e95f3d864ec386ed3"})
	require.NoError(t, err)
	assert.Nil(t, data)
}

func Test_FindPriceHistoryByAssetId(t *testing.T) {
	open := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p := setupTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		assert.Equal(t, "168", r.URL.Query().Get("limit"))
		fmt.Fprintf(w, `[
			[%d,"3000.0","3100.0","2990.0","3050.25","10.5",%d,"32000.0",42,"5.0","15000.0","0"],
			[%d,"3050.25","3120.0","3040.0","3110.00","8.0",%d,"25000.0",30,"4.0","12000.0","0"]
		]`,
			open.UnixMilli(), open.Add(time.Hour).UnixMilli()-1,
			open.Add(time.Hour).UnixMilli(), open.Add(2*time.Hour).UnixMilli()-1,
		)
	})

	history, err := p.FindPriceHistoryByAssetId(context.Background(), marketService.PriceHistoryArgs{
		AssetId:   ethAssetId,
		Timeframe: marketService.HistoryTimeframeWeek,
	})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, open, history[0].Date)
	assert.True(t, history[0].Price.Equal(decimal.RequireFromString("3050.25")))
	assert.True(t, history[1].Price.Equal(decimal.NewFromInt(3110)))
}

func Test_FindPriceHistoryByAssetId_InvalidTimeframe(t *testing.T) {
	p := setupTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	_, err := p.FindPriceHistoryByAssetId(context.Background(), marketService.PriceHistoryArgs{AssetId: ethAssetId, Timeframe: "2D"})
	assert.ErrorIs(t, err, marketService.ErrInvalidTimeframe)
}
