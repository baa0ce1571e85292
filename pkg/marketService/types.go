package marketService

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidTimeframe is returned when a timeframe string is not recognized
var ErrInvalidTimeframe = errors.New("invalid history timeframe")

// MarketData is the current market snapshot of a single asset, in USD.
type MarketData struct {
	Price             decimal.Decimal
	MarketCap         decimal.Decimal
	Volume            decimal.Decimal
	ChangePercent24Hr float64
}

// MarketCapResult maps CAIP-19 asset ids to their market data.
type MarketCapResult map[string]MarketData

// HistoryData is a single price point.
type HistoryData struct {
	Date  time.Time
	Price decimal.Decimal
}

type HistoryTimeframe string

const (
	HistoryTimeframeHour  HistoryTimeframe = "1H"
	HistoryTimeframeDay   HistoryTimeframe = "24H"
	HistoryTimeframeWeek  HistoryTimeframe = "1W"
	HistoryTimeframeMonth HistoryTimeframe = "1M"
	HistoryTimeframeYear  HistoryTimeframe = "1Y"
	HistoryTimeframeAll   HistoryTimeframe = "All"
)

var historyTimeframes = []HistoryTimeframe{
	HistoryTimeframeHour,
	HistoryTimeframeDay,
	HistoryTimeframeWeek,
	HistoryTimeframeMonth,
	HistoryTimeframeYear,
	HistoryTimeframeAll,
}

// ParseHistoryTimeframe converts s into a HistoryTimeframe.
func ParseHistoryTimeframe(s string) (HistoryTimeframe, error) {
	for _, tf := range historyTimeframes {
		if string(tf) == s {
			return tf, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
}

// FindAllMarketArgs pages through a provider's market listing. Zero values
// mean the provider's defaults.
type FindAllMarketArgs struct {
	Pages   int
	PerPage int
}

type MarketDataArgs struct {
	// AssetId is a CAIP-19 asset id, e.g. eip155:1/slip44:60
	AssetId string
}

type PriceHistoryArgs struct {
	AssetId   string
	Timeframe HistoryTimeframe
}
