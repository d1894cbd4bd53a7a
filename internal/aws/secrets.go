package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smTypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmTypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/vietdv277/keyrot/pkg/provider"
)

// SSMAPI is the subset of the SSM client used to mirror keys
type SSMAPI interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// SecretsManagerAPI is the subset of the Secrets Manager client used to mirror keys
type SecretsManagerAPI interface {
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

var (
	_ SSMAPI                   = (*ssm.Client)(nil)
	_ SecretsManagerAPI        = (*secretsmanager.Client)(nil)
	_ provider.SecretsProvider = (*AWSSecretsProvider)(nil)
)

// AWSSecretsProvider writes values to SSM Parameter Store or Secrets Manager.
// Names starting with "/" are SSM parameters, everything else is a secret.
type AWSSecretsProvider struct {
	ssm SSMAPI
	sm  SecretsManagerAPI
}

// NewSecretsProvider creates a new AWS Secrets provider
func NewSecretsProvider(ssmClient SSMAPI, smClient SecretsManagerAPI) *AWSSecretsProvider {
	return &AWSSecretsProvider{
		ssm: ssmClient,
		sm:  smClient,
	}
}

// Set creates or updates a secret
func (p *AWSSecretsProvider) Set(ctx context.Context, name string, value string) error {
	if len(name) > 0 && name[0] == '/' {
		return p.setSSMParameter(ctx, name, value)
	}

	return p.setSecretsManager(ctx, name, value)
}

func (p *AWSSecretsProvider) setSSMParameter(ctx context.Context, name, value string) error {
	_, err := p.ssm.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      &name,
		Value:     &value,
		Type:      ssmTypes.ParameterTypeSecureString,
		Overwrite: boolPtr(true),
	})
	if err != nil {
		return wrapAPIError(fmt.Sprintf("put parameter %s", name), err)
	}
	return nil
}

func (p *AWSSecretsProvider) setSecretsManager(ctx context.Context, name, value string) error {
	_, err := p.sm.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     &name,
		SecretString: &value,
	})
	if err == nil {
		return nil
	}

	var notFound *smTypes.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return wrapAPIError(fmt.Sprintf("put secret value %s", name), err)
	}

	_, err = p.sm.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         &name,
		SecretString: &value,
	})
	if err != nil {
		return wrapAPIError(fmt.Sprintf("create secret %s", name), err)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
