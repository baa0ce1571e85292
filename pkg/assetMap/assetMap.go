// Package assetMap translates CAIP-19 asset ids to the ids market providers
// use natively, and back.
package assetMap

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultAssetMap []byte

var (
	// ErrInvalidAssetMap is returned when a mapping file cannot be used
	ErrInvalidAssetMap = errors.New("invalid asset map")
)

// Asset is a single mapping entry. Provider ids are optional.
type Asset struct {
	AssetId   string `yaml:"asset_id"`
	CoinGecko string `yaml:"coingecko"`
	Binance   string `yaml:"binance"`
}

type assetMapFile struct {
	Assets []Asset `yaml:"assets"`
}

// AssetMap is immutable once built and safe for concurrent use.
type AssetMap struct {
	assets      []Asset
	byAssetId   map[string]Asset
	byCoinGecko map[string]string
	byBinance   map[string]string
}

// Default returns the built-in mapping.
func Default() *AssetMap {
	m, err := Parse(defaultAssetMap)
	if err != nil {
		panic(fmt.Sprintf("built-in asset map is invalid: %v", err))
	}
	return m
}

// Load reads a YAML mapping file.
func Load(path string) (*AssetMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset map %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds an AssetMap from YAML. Asset ids are case-insensitive and
// must be unique.
func Parse(data []byte) (*AssetMap, error) {
	var file assetMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetMap, err)
	}

	m := &AssetMap{
		byAssetId:   make(map[string]Asset, len(file.Assets)),
		byCoinGecko: make(map[string]string),
		byBinance:   make(map[string]string),
	}
	for i, asset := range file.Assets {
		asset.AssetId = strings.ToLower(strings.TrimSpace(asset.AssetId))
		asset.CoinGecko = strings.TrimSpace(asset.CoinGecko)
		asset.Binance = strings.ToUpper(strings.TrimSpace(asset.Binance))
		if asset.AssetId == "" {
			return nil, fmt.Errorf("%w: entry %d has no asset_id", ErrInvalidAssetMap, i)
		}
		if _, ok := m.byAssetId[asset.AssetId]; ok {
			return nil, fmt.Errorf("%w: duplicate asset_id %s", ErrInvalidAssetMap, asset.AssetId)
		}
		m.byAssetId[asset.AssetId] = asset
		m.assets = append(m.assets, asset)
		if asset.CoinGecko != "" {
			m.byCoinGecko[asset.CoinGecko] = asset.AssetId
		}
		if asset.Binance != "" {
			m.byBinance[asset.Binance] = asset.AssetId
		}
	}
	return m, nil
}

// Assets returns the entries in file order.
func (m *AssetMap) Assets() []Asset {
	return append([]Asset(nil), m.assets...)
}

func (m *AssetMap) CoinGeckoId(assetId string) (string, bool) {
	asset, ok := m.byAssetId[strings.ToLower(assetId)]
	if !ok || asset.CoinGecko == "" {
		return "", false
	}
	return asset.CoinGecko, true
}

func (m *AssetMap) AssetIdForCoinGecko(id string) (string, bool) {
	assetId, ok := m.byCoinGecko[id]
	return assetId, ok
}

func (m *AssetMap) BinanceSymbol(assetId string) (string, bool) {
	asset, ok := m.byAssetId[strings.ToLower(assetId)]
	if !ok || asset.Binance == "" {
		return "", false
	}
	return asset.Binance, true
}

func (m *AssetMap) AssetIdForBinance(symbol string) (string, bool) {
	assetId, ok := m.byBinance[strings.ToUpper(symbol)]
	return assetId, ok
}
