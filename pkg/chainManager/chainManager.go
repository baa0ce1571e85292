// Package chainManager provides blockchain connection management.
// It keeps one RPC connection per configured EVM chain and hands out the
// EthClientInterface the staking client and chain adapter are built on.
package chainManager

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrChainNotFound is returned when a requested chain ID is not found in the manager
	ErrChainNotFound = errors.New("chain not found")
	// ErrChainExists is returned when a chain ID is registered twice
	ErrChainExists = errors.New("chain already exists")
)

// Well known chain IDs accepted by the CLI's --network flag.
const (
	EthereumMainnet uint64 = 1
	EthereumRopsten uint64 = 3
	EthereumRinkeby uint64 = 4
)

// IChainManager defines the interface for managing blockchain connections.
type IChainManager interface {
	// AddChain dials and registers a new blockchain connection
	AddChain(cfg *ChainConfig) error
	// GetChainForId retrieves a chain connection by its chain ID
	GetChainForId(chainId uint64) (*Chain, error)
}

// ChainConfig holds the configuration for connecting to a blockchain.
type ChainConfig struct {
	// ChainID is the unique identifier for the blockchain network
	ChainID uint64
	// RPCUrl is the URL endpoint for connecting to the blockchain RPC
	RPCUrl string
}

// Chain represents an active connection to a blockchain.
type Chain struct {
	config *ChainConfig
	// RPCClient is the typed client used for reads and transaction submission
	RPCClient EthClientInterface
	// RawClient is the underlying JSON-RPC client, for methods ethclient does not wrap
	RawClient *rpc.Client
}

// ChainID returns the configured chain ID as a big.Int, the form transaction
// signers expect.
func (c *Chain) ChainID() *big.Int {
	return new(big.Int).SetUint64(c.config.ChainID)
}

// ChainManager implements IChainManager on top of a sync.Map keyed by chain ID.
type ChainManager struct {
	Chains sync.Map // map[uint64]*Chain

	dial func(url string) (*rpc.Client, error)
}

// NewChainManager creates a new ChainManager with an empty registry.
func NewChainManager() *ChainManager {
	return &ChainManager{dial: rpc.Dial}
}

// AddChain dials cfg.RPCUrl and stores the resulting connection.
// This method is safe for concurrent use.
//
// Returns:
//   - error: ErrChainExists if the chain ID is already registered, or the dial error
func (cm *ChainManager) AddChain(cfg *ChainConfig) error {
	if cfg == nil {
		return fmt.Errorf("chain config is required")
	}
	if _, exists := cm.Chains.Load(cfg.ChainID); exists {
		return fmt.Errorf("chain with ID %d: %w", cfg.ChainID, ErrChainExists)
	}
	raw, err := cm.dial(cfg.RPCUrl)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC URL %s: %w", cfg.RPCUrl, err)
	}
	chain := &Chain{
		config:    cfg,
		RPCClient: ethclient.NewClient(raw),
		RawClient: raw,
	}
	if _, loaded := cm.Chains.LoadOrStore(cfg.ChainID, chain); loaded {
		raw.Close()
		return fmt.Errorf("chain with ID %d: %w", cfg.ChainID, ErrChainExists)
	}
	return nil
}

// GetChainForId retrieves a chain connection by its chain ID.
// This method is safe for concurrent use.
func (cm *ChainManager) GetChainForId(chainId uint64) (*Chain, error) {
	value, exists := cm.Chains.Load(chainId)
	if !exists {
		return nil, fmt.Errorf("chain with ID %d: %w", chainId, ErrChainNotFound)
	}
	chain, ok := value.(*Chain)
	if !ok {
		return nil, fmt.Errorf("invalid chain type stored for ID %d", chainId)
	}
	return chain, nil
}

// Close closes every registered connection.
func (cm *ChainManager) Close() {
	cm.Chains.Range(func(_, value any) bool {
		if chain, ok := value.(*Chain); ok && chain.RawClient != nil {
			chain.RawClient.Close()
		}
		return true
	})
}
