package wallet

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/kms"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const awsKmsVendor = "aws-kms"

var (
	secp256k1N     = crypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)

// kmsClient is the part of *kms.KMS used by AWSKMSWallet.
type kmsClient interface {
	GetPublicKeyWithContext(ctx aws.Context, input *kms.GetPublicKeyInput, opts ...request.Option) (*kms.GetPublicKeyOutput, error)
	SignWithContext(ctx aws.Context, input *kms.SignInput, opts ...request.Option) (*kms.SignOutput, error)
}

// AWSKMSWallet implements IOfflineSigner with an ECC_SECG_P256K1 key held in
// AWS KMS. The key never leaves KMS; only digests are sent for signing.
// A KMS key backs a single account, so only account number 0 is accepted.
type AWSKMSWallet struct {
	client  kmsClient
	keyID   string
	address common.Address
}

// NewAWSKMSWallet creates a KMS-backed wallet for keyID in region.
//
// Returns:
//   - *AWSKMSWallet: A wallet whose address is derived from the KMS public key
//   - error: An error if the AWS session cannot be created or the key is not secp256k1
func NewAWSKMSWallet(ctx context.Context, keyID, region string) (*AWSKMSWallet, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewAWSKMSWalletWithClient(ctx, kms.New(sess), keyID)
}

// NewAWSKMSWalletWithClient creates a KMS-backed wallet using an existing client.
func NewAWSKMSWalletWithClient(ctx context.Context, client kmsClient, keyID string) (*AWSKMSWallet, error) {
	address, err := getAddressFromKMSKey(ctx, client, keyID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive address from KMS key: %w", err)
	}
	return &AWSKMSWallet{
		client:  client,
		keyID:   keyID,
		address: address,
	}, nil
}

// GetVendor implements IWallet.
func (a *AWSKMSWallet) GetVendor() string {
	return awsKmsVendor
}

// GetAddress returns the address derived from the KMS public key.
func (a *AWSKMSWallet) GetAddress(params BIP44Params) (common.Address, error) {
	if params.AccountNumber != 0 {
		return common.Address{}, fmt.Errorf("account %d: %w", params.AccountNumber, ErrUnknownAccount)
	}
	return a.address, nil
}

// SignTransaction hashes tx for chainID, signs the digest in KMS and attaches
// the recoverable signature.
func (a *AWSKMSWallet) SignTransaction(ctx context.Context, tx *types.Transaction, chainID *big.Int, params BIP44Params) (*types.Transaction, error) {
	if params.AccountNumber != 0 {
		return nil, fmt.Errorf("account %d: %w", params.AccountNumber, ErrUnknownAccount)
	}
	signer := types.LatestSignerForChainID(chainID)
	hash := signer.Hash(tx)

	signature, err := a.signHash(ctx, hash.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction with KMS: %w", err)
	}

	signedTx, err := tx.WithSignature(signer, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to apply signature to transaction: %w", err)
	}
	return signedTx, nil
}

type ecdsaSignature struct {
	R, S *big.Int
}

// signHash returns a 65 byte [R || S || V] signature with V in {0, 1}.
func (a *AWSKMSWallet) signHash(ctx context.Context, hash []byte) ([]byte, error) {
	result, err := a.client.SignWithContext(ctx, &kms.SignInput{
		KeyId:            aws.String(a.keyID),
		Message:          hash,
		MessageType:      aws.String(kms.MessageTypeDigest),
		SigningAlgorithm: aws.String(kms.SigningAlgorithmSpecEcdsaSha256),
	})
	if err != nil {
		return nil, fmt.Errorf("KMS signing failed: %w", err)
	}

	var sig ecdsaSignature
	if _, err := asn1.Unmarshal(result.Signature, &sig); err != nil {
		return nil, fmt.Errorf("failed to parse KMS signature: %w", err)
	}
	// EIP-2 only accepts the lower half of the curve order for S.
	if sig.S.Cmp(secp256k1HalfN) > 0 {
		sig.S = new(big.Int).Sub(secp256k1N, sig.S)
	}

	signature := make([]byte, 65)
	copy(signature[0:32], common.LeftPadBytes(sig.R.Bytes(), 32))
	copy(signature[32:64], common.LeftPadBytes(sig.S.Bytes(), 32))

	for v := byte(0); v < 2; v++ {
		signature[64] = v
		recovered, err := crypto.SigToPub(hash, signature)
		if err != nil {
			continue
		}
		if crypto.PubkeyToAddress(*recovered) == a.address {
			return signature, nil
		}
	}
	return nil, fmt.Errorf("failed to determine recovery ID")
}

type subjectPublicKeyInfo struct {
	Algorithm pkix.AlgorithmIdentifier
	PublicKey asn1.BitString
}

func getAddressFromKMSKey(ctx context.Context, client kmsClient, keyID string) (common.Address, error) {
	result, err := client.GetPublicKeyWithContext(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(keyID),
	})
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get public key from KMS: %w", err)
	}

	pubKey, err := parseKMSPublicKey(result.PublicKey)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// parseKMSPublicKey decodes the DER SubjectPublicKeyInfo KMS returns.
func parseKMSPublicKey(der []byte) (*ecdsa.PublicKey, error) {
	var spki subjectPublicKeyInfo
	if _, err := asn1.Unmarshal(der, &spki); err != nil {
		return nil, fmt.Errorf("failed to parse public key DER: %w", err)
	}
	pubKey, err := crypto.UnmarshalPubkey(spki.PublicKey.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pubKey, nil
}
