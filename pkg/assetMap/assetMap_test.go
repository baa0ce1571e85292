package assetMap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ethAssetId = "eip155:1/slip44:60"

func Test_Default(t *testing.T) {
	m := Default()

	id, ok := m.CoinGeckoId(ethAssetId)
	require.True(t, ok)
	assert.Equal(t, "ethereum", id)

	symbol, ok := m.BinanceSymbol(ethAssetId)
	require.True(t, ok)
	assert.Equal(t, "ETHUSDT", symbol)

	assetId, ok := m.AssetIdForBinance("ethusdt")
	require.True(t, ok)
	assert.Equal(t, ethAssetId, assetId)

	// foxy has no binance market
	_, ok = m.BinanceSymbol("eip155:1/erc20:0xdc49108ce5c57bc3408c3a5e95f3d864ec386ed3")
	assert.False(t, ok)
}

func Test_Parse(t *testing.T) {
	m, err := Parse([]byte(`
assets:
  - asset_id: "EIP155:1/ERC20:0xABC"
    coingecko: abc-token
    binance: abcusdt
`))
	require.NoError(t, err)

	require.Len(t, m.Assets(), 1)
	asset := m.Assets()[0]
	assert.Equal(t, "eip155:1/erc20:0xabc", asset.AssetId)
	assert.Equal(t, "ABCUSDT", asset.Binance)

	id, ok := m.CoinGeckoId("eip155:1/erc20:0xAbC")
	require.True(t, ok)
	assert.Equal(t, "abc-token", id)

	assetId, ok := m.AssetIdForCoinGecko("abc-token")
	require.True(t, ok)
	assert.Equal(t, "eip155:1/erc20:0xabc", assetId)

	_, ok = m.CoinGeckoId("eip155:1/slip44:60")
	assert.False(t, ok)
}

func Test_Parse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed yaml", data: "assets: [:"},
		{name: "missing asset id", data: "assets:\n  - coingecko: ethereum\n"},
		{name: "duplicate asset id", data: "assets:\n  - asset_id: a\n  - asset_id: A\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidAssetMap)
		})
	}
}

func Test_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assets:\n  - asset_id: x\n    coingecko: x-coin\n"), 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	id, ok := m.CoinGeckoId("x")
	require.True(t, ok)
	assert.Equal(t, "x-coin", id)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
