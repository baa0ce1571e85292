package main

import (
	"testing"

	"github.com/Layr-Labs/stakemarket-go/pkg/chainManager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_networkChainID(t *testing.T) {
	tests := []struct {
		name    string
		want    uint64
		wantErr bool
	}{
		{name: "mainnet", want: chainManager.EthereumMainnet},
		{name: " Ropsten ", want: chainManager.EthereumRopsten},
		{name: "rinkeby", want: chainManager.EthereumRinkeby},
		{name: "goerli", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chainID, err := networkChainID(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, chainID)
		})
	}
}

func Test_toBaseUnits(t *testing.T) {
	tests := []struct {
		value    string
		decimals uint
		want     string
		wantErr  bool
	}{
		{value: "1.5", decimals: 18, want: "1500000000000000000"},
		{value: "1.000000000000000001", decimals: 18, want: "1000000000000000001"},
		{value: "1.50", decimals: 1, want: "15"},
		{value: "42", decimals: 0, want: "42"},
		{value: "1.0000000000000000001", decimals: 18, wantErr: true},
		{value: "0.5", decimals: 0, wantErr: true},
		{value: "abc", decimals: 18, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			amount, err := toBaseUnits(tt.value, tt.decimals)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, amount.String())
		})
	}
}
