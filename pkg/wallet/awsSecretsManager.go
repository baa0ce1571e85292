package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

// secretsClient is the part of *secretsmanager.SecretsManager used here.
type secretsClient interface {
	GetSecretValueWithContext(ctx aws.Context, input *secretsmanager.GetSecretValueInput, opts ...request.Option) (*secretsmanager.GetSecretValueOutput, error)
}

// NewAWSSecretsManagerWallet loads hex private keys stored in an AWS Secrets
// Manager secret and returns an in-memory wallet. The secret string may hold
// several keys separated by commas or whitespace; their order sets the
// account numbers.
func NewAWSSecretsManagerWallet(ctx context.Context, secretName, region string) (*PrivateKeyWallet, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewAWSSecretsManagerWalletWithClient(ctx, secretsmanager.New(sess), secretName)
}

// NewAWSSecretsManagerWalletWithClient is NewAWSSecretsManagerWallet with an existing client.
func NewAWSSecretsManagerWalletWithClient(ctx context.Context, client secretsClient, secretName string) (*PrivateKeyWallet, error) {
	result, err := client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretName),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", secretName, err)
	}
	if result.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", secretName)
	}

	keys := strings.FieldsFunc(*result.SecretString, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	return NewPrivateKeyWallet(keys...)
}
