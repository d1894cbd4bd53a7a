package provider

import (
	"context"
	"errors"

	"github.com/vietdv277/keyrot/pkg/types"
)

// Common errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrNotConfigured = errors.New("provider not configured")
	ErrNoKeyMaterial = errors.New("create access key returned no key material")
	ErrLimitExceeded = errors.New("access key limit exceeded")
)

// KeyProvider defines the access key operations for the calling IAM user
type KeyProvider interface {
	// ListAccessKeys returns every access key of the caller
	ListAccessKeys(ctx context.Context) ([]types.AccessKey, error)

	// CreateAccessKey issues a new key pair
	CreateAccessKey(ctx context.Context) (accessKeyID, secretAccessKey string, err error)

	// DeleteAccessKey removes a key by id
	DeleteAccessKey(ctx context.Context, accessKeyID string) error
}

// ProfileKeyLoader resolves the access key id configured for a local profile
type ProfileKeyLoader interface {
	LoadProfileAccessKeyID(ctx context.Context, profile string) (string, error)
}

// CredentialStore defines the operations on the local credentials file
type CredentialStore interface {
	// ListProfileNames returns the section names of the credentials file
	ListProfileNames() ([]string, error)

	// ReplaceProfile swaps the key pair of an existing profile section
	ReplaceProfile(name, accessKeyID, secretAccessKey string) error
}

// SecretsProvider stores a value in a remote secret store
type SecretsProvider interface {
	// Set creates or updates a secret
	Set(ctx context.Context, name string, value string) error
}
