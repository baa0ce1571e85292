package chainManager

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainManager_AddAndGetChain(t *testing.T) {
	cm := NewChainManager()
	t.Cleanup(cm.Close)

	cfg := &ChainConfig{ChainID: EthereumMainnet, RPCUrl: "http://127.0.0.1:8545"}
	require.NoError(t, cm.AddChain(cfg))

	chain, err := cm.GetChainForId(EthereumMainnet)
	require.NoError(t, err)
	assert.NotNil(t, chain.RPCClient)
	assert.NotNil(t, chain.RawClient)
	assert.Equal(t, big.NewInt(1), chain.ChainID())
}

func TestChainManager_AddChain_Duplicate(t *testing.T) {
	cm := NewChainManager()
	t.Cleanup(cm.Close)

	cfg := &ChainConfig{ChainID: EthereumRinkeby, RPCUrl: "http://127.0.0.1:8545"}
	require.NoError(t, cm.AddChain(cfg))

	err := cm.AddChain(cfg)
	assert.ErrorIs(t, err, ErrChainExists)
}

func TestChainManager_AddChain_DialError(t *testing.T) {
	dialErr := errors.New("connection refused")
	cm := NewChainManager()
	cm.dial = func(string) (*rpc.Client, error) { return nil, dialErr }

	err := cm.AddChain(&ChainConfig{ChainID: 5, RPCUrl: "http://unreachable"})
	assert.ErrorIs(t, err, dialErr)
	assert.Contains(t, err.Error(), "failed to connect to RPC URL http://unreachable")

	_, err = cm.GetChainForId(5)
	assert.ErrorIs(t, err, ErrChainNotFound)
}

func TestChainManager_AddChain_NilConfig(t *testing.T) {
	cm := NewChainManager()
	assert.Error(t, cm.AddChain(nil))
}

func TestChainManager_GetChainForId_NotFound(t *testing.T) {
	cm := NewChainManager()

	chain, err := cm.GetChainForId(EthereumRopsten)
	assert.Nil(t, chain)
	assert.ErrorIs(t, err, ErrChainNotFound)
}

func TestChainManager_GetChainForId_InvalidStoredType(t *testing.T) {
	cm := NewChainManager()
	cm.Chains.Store(uint64(42), "not a chain")

	_, err := cm.GetChainForId(42)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid chain type stored for ID 42")
}
