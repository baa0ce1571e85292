package wallet

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/kms"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyHex  = "0xb71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
	testKey2Hex = "8a1f9a8f95be41cd7ccb6168179afb4504aefe388d1e14474d32c45c72ce7b7a"
)

var testChainID = big.NewInt(1)

func newTestTx() *types.Transaction {
	to := common.HexToAddress("0xcbd6e4c1ff0c8fdf4b71c3268b9578efe1e41cd0")
	return types.NewTx(&types.LegacyTx{
		Nonce:    7,
		GasPrice: big.NewInt(30_000_000_000),
		Gas:      90_000,
		To:       &to,
		Value:    new(big.Int),
		Data:     []byte{0xde, 0xad, 0xbe, 0xef},
	})
}

func TestBIP44Params_Path(t *testing.T) {
	tests := []struct {
		name   string
		params BIP44Params
		want   string
	}{
		{
			name:   "default account",
			params: BIP44Params{Purpose: PurposeBIP44, CoinType: CoinTypeEthereum},
			want:   "m/44'/60'/0'/0/0",
		},
		{
			name:   "third account change address",
			params: BIP44Params{Purpose: PurposeBIP44, CoinType: CoinTypeEthereum, AccountNumber: 2, IsChange: true, Index: 5},
			want:   "m/44'/60'/2'/1/5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Path())
		})
	}
}

func TestPrivateKeyWallet_SignTransaction(t *testing.T) {
	w, err := NewPrivateKeyWallet(testKeyHex, testKey2Hex)
	require.NoError(t, err)
	assert.Equal(t, "private-key", w.GetVendor())

	for account := uint32(0); account < 2; account++ {
		params := BIP44Params{Purpose: PurposeBIP44, CoinType: CoinTypeEthereum, AccountNumber: account}

		addr, err := w.GetAddress(params)
		require.NoError(t, err)

		signed, err := w.SignTransaction(context.Background(), newTestTx(), testChainID, params)
		require.NoError(t, err)

		sender, err := types.Sender(types.LatestSignerForChainID(testChainID), signed)
		require.NoError(t, err)
		assert.Equal(t, addr, sender)
		assert.Equal(t, testChainID, signed.ChainId())
	}
}

func TestPrivateKeyWallet_UnknownAccount(t *testing.T) {
	w, err := NewPrivateKeyWallet(testKeyHex)
	require.NoError(t, err)

	params := BIP44Params{AccountNumber: 1}
	_, err = w.GetAddress(params)
	assert.ErrorIs(t, err, ErrUnknownAccount)

	_, err = w.SignTransaction(context.Background(), newTestTx(), testChainID, params)
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestNewPrivateKeyWallet_Errors(t *testing.T) {
	_, err := NewPrivateKeyWallet()
	assert.Error(t, err)

	_, err = NewPrivateKeyWallet("not-hex")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse private key 0")
}

// fakeKMS signs digests with an in-process key and returns DER values the way KMS does.
type fakeKMS struct {
	key       *ecdsa.PrivateKey
	highS     bool
	signErr   error
	lastInput *kms.SignInput
}

func (f *fakeKMS) GetPublicKeyWithContext(_ aws.Context, _ *kms.GetPublicKeyInput, _ ...request.Option) (*kms.GetPublicKeyOutput, error) {
	der, err := asn1.Marshal(subjectPublicKeyInfo{
		Algorithm: pkix.AlgorithmIdentifier{
			Algorithm: asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1},
		},
		PublicKey: asn1.BitString{
			Bytes:     crypto.FromECDSAPub(&f.key.PublicKey),
			BitLength: 65 * 8,
		},
	})
	if err != nil {
		return nil, err
	}
	return &kms.GetPublicKeyOutput{PublicKey: der}, nil
}

func (f *fakeKMS) SignWithContext(_ aws.Context, input *kms.SignInput, _ ...request.Option) (*kms.SignOutput, error) {
	f.lastInput = input
	if f.signErr != nil {
		return nil, f.signErr
	}
	sig, err := crypto.Sign(input.Message, f.key)
	if err != nil {
		return nil, err
	}
	r := new(big.Int).SetBytes(sig[0:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if f.highS {
		s = new(big.Int).Sub(secp256k1N, s)
	}
	der, err := asn1.Marshal(ecdsaSignature{R: r, S: s})
	if err != nil {
		return nil, err
	}
	return &kms.SignOutput{Signature: der}, nil
}

func TestAWSKMSWallet_SignTransaction(t *testing.T) {
	for _, highS := range []bool{false, true} {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		client := &fakeKMS{key: key, highS: highS}

		w, err := NewAWSKMSWalletWithClient(context.Background(), client, "alias/staking")
		require.NoError(t, err)
		assert.Equal(t, "aws-kms", w.GetVendor())

		addr, err := w.GetAddress(BIP44Params{})
		require.NoError(t, err)
		assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), addr)

		signed, err := w.SignTransaction(context.Background(), newTestTx(), testChainID, BIP44Params{})
		require.NoError(t, err)

		sender, err := types.Sender(types.LatestSignerForChainID(testChainID), signed)
		require.NoError(t, err)
		assert.Equal(t, addr, sender)
		assert.Equal(t, kms.MessageTypeDigest, aws.StringValue(client.lastInput.MessageType))
		assert.Equal(t, "alias/staking", aws.StringValue(client.lastInput.KeyId))
	}
}

func TestAWSKMSWallet_Errors(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signErr := errors.New("throttled")
	client := &fakeKMS{key: key, signErr: signErr}

	w, err := NewAWSKMSWalletWithClient(context.Background(), client, "key")
	require.NoError(t, err)

	_, err = w.SignTransaction(context.Background(), newTestTx(), testChainID, BIP44Params{})
	assert.ErrorIs(t, err, signErr)

	_, err = w.SignTransaction(context.Background(), newTestTx(), testChainID, BIP44Params{AccountNumber: 1})
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestParseKMSPublicKey_Invalid(t *testing.T) {
	_, err := parseKMSPublicKey([]byte{0x01, 0x02})
	assert.Error(t, err)
}

type fakeSecrets struct {
	value *string
	err   error
	name  string
}

func (f *fakeSecrets) GetSecretValueWithContext(_ aws.Context, input *secretsmanager.GetSecretValueInput, _ ...request.Option) (*secretsmanager.GetSecretValueOutput, error) {
	f.name = aws.StringValue(input.SecretId)
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.value}, nil
}

func TestNewAWSSecretsManagerWalletWithClient(t *testing.T) {
	client := &fakeSecrets{value: aws.String(testKeyHex + ",\n " + testKey2Hex + "\n")}

	w, err := NewAWSSecretsManagerWalletWithClient(context.Background(), client, "staking/keys")
	require.NoError(t, err)
	assert.Equal(t, "staking/keys", client.name)

	expected, err := NewPrivateKeyWallet(testKeyHex, testKey2Hex)
	require.NoError(t, err)
	for account := uint32(0); account < 2; account++ {
		got, err := w.GetAddress(BIP44Params{AccountNumber: account})
		require.NoError(t, err)
		want, err := expected.GetAddress(BIP44Params{AccountNumber: account})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNewAWSSecretsManagerWalletWithClient_Errors(t *testing.T) {
	getErr := errors.New("access denied")
	_, err := NewAWSSecretsManagerWalletWithClient(context.Background(), &fakeSecrets{err: getErr}, "s")
	assert.ErrorIs(t, err, getErr)

	_, err = NewAWSSecretsManagerWalletWithClient(context.Background(), &fakeSecrets{}, "s")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "has no string value")
}

type fakeRPC struct {
	method string
	args   []interface{}
	hash   common.Hash
	err    error
}

func (f *fakeRPC) CallContext(_ context.Context, result interface{}, method string, args ...interface{}) error {
	f.method = method
	f.args = args
	if f.err != nil {
		return f.err
	}
	*(result.(*common.Hash)) = f.hash
	return nil
}

func TestRPCNodeWallet_SignAndBroadcastTransaction(t *testing.T) {
	client := &fakeRPC{hash: common.HexToHash("0x1234")}
	w := NewRPCNodeWallet(client, "")
	assert.Equal(t, "rpc-node", w.GetVendor())

	from := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	hash, err := w.SignAndBroadcastTransaction(context.Background(), newTestTx(), from, BIP44Params{})
	require.NoError(t, err)
	assert.Equal(t, client.hash, hash)
	assert.Equal(t, "eth_sendTransaction", client.method)

	require.Len(t, client.args, 1)
	args := client.args[0].(sendTxArgs)
	assert.Equal(t, from, args.From)
	assert.Equal(t, hexutil.Uint64(7), args.Nonce)
	assert.Equal(t, hexutil.Uint64(90_000), args.Gas)
	assert.True(t, strings.EqualFold("0xcbd6e4c1ff0c8fdf4b71c3268b9578efe1e41cd0", args.To.Hex()))
	assert.Equal(t, hexutil.Bytes{0xde, 0xad, 0xbe, 0xef}, args.Data)
}

func TestRPCNodeWallet_Error(t *testing.T) {
	callErr := errors.New("account locked")
	w := NewRPCNodeWallet(&fakeRPC{err: callErr}, "clef")
	assert.Equal(t, "clef", w.GetVendor())

	_, err := w.SignAndBroadcastTransaction(context.Background(), newTestTx(), common.Address{}, BIP44Params{})
	assert.ErrorIs(t, err, callErr)
	assert.Contains(t, err.Error(), "via clef")
}
