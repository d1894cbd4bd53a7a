package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// IAM is global, but the SDK still needs a region to sign requests
const fallbackRegion = "us-east-1"

// Client wraps AWS SDK clients
type Client struct {
	IAM            *iam.Client
	STS            *sts.Client
	SSM            *ssm.Client
	SecretsManager *secretsmanager.Client

	profile         string
	region          string
	credentialsFile string
}

// ClientOption allows customizing the AWS Client
type ClientOption func(*Client)

// WithProfile sets the AWS profile used to sign requests
func WithProfile(profile string) ClientOption {
	return func(c *Client) {
		c.profile = profile
	}
}

// WithRegion sets the AWS region for the client
func WithRegion(region string) ClientOption {
	return func(c *Client) {
		c.region = region
	}
}

// WithCredentialsFile points the SDK at a non-default shared credentials file
func WithCredentialsFile(path string) ClientOption {
	return func(c *Client) {
		c.credentialsFile = path
	}
}

// NewClient creates a new AWS Client with the given options
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	var configOpts []func(*config.LoadOptions) error

	if c.profile != "" {
		configOpts = append(configOpts, config.WithSharedConfigProfile(c.profile))
	}

	if c.region != "" {
		configOpts = append(configOpts, config.WithRegion(c.region))
	}

	if c.credentialsFile != "" {
		configOpts = append(configOpts, config.WithSharedCredentialsFiles([]string{c.credentialsFile}))
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = fallbackRegion
	}

	c.IAM = iam.NewFromConfig(cfg)
	c.STS = sts.NewFromConfig(cfg)
	c.SSM = ssm.NewFromConfig(cfg)
	c.SecretsManager = secretsmanager.NewFromConfig(cfg)

	return c, nil
}

// Profile returns the profile the client signs with, empty for the default chain
func (c *Client) Profile() string {
	return c.profile
}
