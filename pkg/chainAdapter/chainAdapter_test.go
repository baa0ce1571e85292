package chainAdapter

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Layr-Labs/stakemarket-go/pkg/chainManager"
	"github.com/Layr-Labs/stakemarket-go/pkg/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testKeyHex = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

var stakingAddress = common.HexToAddress("0xcbd6e4c1ff0c8fdf4b71c3268b9578efe1e41cd0")

func setupTestAdapter(t *testing.T) (*EthereumAdapter, *chainManager.MockEthClientInterface) {
	mockEthClient := chainManager.NewMockEthClientInterface(t)
	l, _ := zap.NewDevelopment()
	return NewEthereumAdapter(mockEthClient, l), mockEthClient
}

func newTestTxToSign(adapter *EthereumAdapter) *TxToSign {
	return &TxToSign{
		AddressParams: adapter.BuildAddressParams(0),
		ChainID:       big.NewInt(1),
		From:          common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		To:            stakingAddress,
		Data:          []byte{0x01, 0x02},
		GasLimit:      120_000,
		GasPrice:      big.NewInt(25_000_000_000),
		Nonce:         3,
		Value:         big.NewInt(0),
	}
}

func TestEthereumAdapter_BuildAddressParams(t *testing.T) {
	adapter, _ := setupTestAdapter(t)

	params := adapter.BuildAddressParams(4)
	assert.Equal(t, wallet.BIP44Params{Purpose: 44, CoinType: 60, AccountNumber: 4}, params)
	assert.Equal(t, "m/44'/60'/4'/0/0", params.Path())
}

func TestTxToSign_Transaction(t *testing.T) {
	adapter, _ := setupTestAdapter(t)
	txToSign := newTestTxToSign(adapter)
	txToSign.Value = nil

	tx := txToSign.Transaction()
	assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
	assert.Equal(t, uint64(3), tx.Nonce())
	assert.Equal(t, uint64(120_000), tx.Gas())
	assert.Equal(t, stakingAddress, *tx.To())
	assert.Equal(t, 0, tx.Value().Sign())
	assert.Equal(t, []byte{0x01, 0x02}, tx.Data())
}

func TestEthereumAdapter_SignThenBroadcast(t *testing.T) {
	adapter, mockEthClient := setupTestAdapter(t)
	w, err := wallet.NewPrivateKeyWallet(testKeyHex)
	require.NoError(t, err)

	signedHex, err := adapter.SignTransaction(context.Background(), newTestTxToSign(adapter), w)
	require.NoError(t, err)

	raw, err := hexutil.Decode(signedHex)
	require.NoError(t, err)
	decoded := new(types.Transaction)
	require.NoError(t, decoded.UnmarshalBinary(raw))

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1)), decoded)
	require.NoError(t, err)
	expectedSender, err := w.GetAddress(wallet.BIP44Params{})
	require.NoError(t, err)
	assert.Equal(t, expectedSender, sender)

	mockEthClient.On("SendTransaction", mock.Anything, mock.MatchedBy(func(tx *types.Transaction) bool {
		return tx.Hash() == decoded.Hash()
	})).Return(nil)

	hash, err := adapter.BroadcastTransaction(context.Background(), signedHex)
	require.NoError(t, err)
	assert.Equal(t, decoded.Hash().Hex(), hash)
}

func TestEthereumAdapter_BroadcastTransaction_Errors(t *testing.T) {
	adapter, mockEthClient := setupTestAdapter(t)

	_, err := adapter.BroadcastTransaction(context.Background(), "not-hex")
	assert.ErrorIs(t, err, ErrInvalidSignedTx)

	_, err = adapter.BroadcastTransaction(context.Background(), "0x0102")
	assert.ErrorIs(t, err, ErrInvalidSignedTx)

	w, err := wallet.NewPrivateKeyWallet(testKeyHex)
	require.NoError(t, err)
	signedHex, err := adapter.SignTransaction(context.Background(), newTestTxToSign(adapter), w)
	require.NoError(t, err)

	sendErr := errors.New("nonce too low")
	mockEthClient.On("SendTransaction", mock.Anything, mock.Anything).Return(sendErr)

	_, err = adapter.BroadcastTransaction(context.Background(), signedHex)
	assert.Same(t, sendErr, err)
}

func TestEthereumAdapter_SignTransaction_InvalidDescriptor(t *testing.T) {
	adapter, _ := setupTestAdapter(t)
	w, err := wallet.NewPrivateKeyWallet(testKeyHex)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(tx *TxToSign)
	}{
		{name: "missing chain id", mutate: func(tx *TxToSign) { tx.ChainID = nil }},
		{name: "missing destination", mutate: func(tx *TxToSign) { tx.To = common.Address{} }},
		{name: "missing gas price", mutate: func(tx *TxToSign) { tx.GasPrice = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txToSign := newTestTxToSign(adapter)
			tt.mutate(txToSign)

			_, err := adapter.SignTransaction(context.Background(), txToSign, w)
			assert.ErrorIs(t, err, ErrInvalidTxToSign)
		})
	}

	_, err = adapter.SignTransaction(context.Background(), nil, w)
	assert.ErrorIs(t, err, ErrInvalidTxToSign)
}

type recordingBroadcaster struct {
	from common.Address
	tx   *types.Transaction
	hash common.Hash
	err  error
}

func (r *recordingBroadcaster) GetVendor() string { return "test-broadcaster" }

func (r *recordingBroadcaster) SignAndBroadcastTransaction(_ context.Context, tx *types.Transaction, from common.Address, _ wallet.BIP44Params) (common.Hash, error) {
	r.tx = tx
	r.from = from
	return r.hash, r.err
}

func TestEthereumAdapter_SignAndBroadcastTransaction(t *testing.T) {
	adapter, _ := setupTestAdapter(t)
	broadcaster := &recordingBroadcaster{hash: common.HexToHash("0xabc")}
	txToSign := newTestTxToSign(adapter)

	hash, err := adapter.SignAndBroadcastTransaction(context.Background(), txToSign, broadcaster)
	require.NoError(t, err)
	assert.Equal(t, broadcaster.hash.Hex(), hash)
	assert.Equal(t, txToSign.From, broadcaster.from)
	assert.Equal(t, txToSign.Nonce, broadcaster.tx.Nonce())
}

func TestEthereumAdapter_SignAndBroadcastTransaction_Error(t *testing.T) {
	adapter, _ := setupTestAdapter(t)
	walletErr := errors.New("user rejected")
	broadcaster := &recordingBroadcaster{err: walletErr}

	_, err := adapter.SignAndBroadcastTransaction(context.Background(), newTestTxToSign(adapter), broadcaster)
	assert.Same(t, walletErr, err)
}
