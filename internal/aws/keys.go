package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamTypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"

	"github.com/vietdv277/keyrot/pkg/provider"
	"github.com/vietdv277/keyrot/pkg/types"
)

// IAMAPI is the subset of the IAM client used for key rotation
type IAMAPI interface {
	ListAccessKeys(ctx context.Context, params *iam.ListAccessKeysInput, optFns ...func(*iam.Options)) (*iam.ListAccessKeysOutput, error)
	CreateAccessKey(ctx context.Context, params *iam.CreateAccessKeyInput, optFns ...func(*iam.Options)) (*iam.CreateAccessKeyOutput, error)
	DeleteAccessKey(ctx context.Context, params *iam.DeleteAccessKeyInput, optFns ...func(*iam.Options)) (*iam.DeleteAccessKeyOutput, error)
}

var (
	_ IAMAPI               = (*iam.Client)(nil)
	_ provider.KeyProvider = (*KeyGateway)(nil)
)

// KeyGateway manages the access keys of the IAM user that signs the requests
type KeyGateway struct {
	api IAMAPI
}

// NewKeyGateway creates a KeyGateway backed by the given IAM API
func NewKeyGateway(api IAMAPI) *KeyGateway {
	return &KeyGateway{api: api}
}

// ListAccessKeys returns every access key of the calling user
func (g *KeyGateway) ListAccessKeys(ctx context.Context) ([]types.AccessKey, error) {
	paginator := iam.NewListAccessKeysPaginator(g.api, &iam.ListAccessKeysInput{})

	var keys []types.AccessKey
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapAPIError("list access keys", err)
		}

		for _, k := range page.AccessKeyMetadata {
			keys = append(keys, types.AccessKey{
				AccessKeyID: deref(k.AccessKeyId),
				CreateDate:  k.CreateDate,
				Status:      string(k.Status),
			})
		}
	}

	return keys, nil
}

// CreateAccessKey issues a new key pair for the calling user
func (g *KeyGateway) CreateAccessKey(ctx context.Context) (string, string, error) {
	output, err := g.api.CreateAccessKey(ctx, &iam.CreateAccessKeyInput{})
	if err != nil {
		return "", "", wrapAPIError("create access key", err)
	}

	if output == nil || output.AccessKey == nil ||
		deref(output.AccessKey.AccessKeyId) == "" || deref(output.AccessKey.SecretAccessKey) == "" {
		return "", "", provider.ErrNoKeyMaterial
	}

	return *output.AccessKey.AccessKeyId, *output.AccessKey.SecretAccessKey, nil
}

// DeleteAccessKey removes the key with the given id
func (g *KeyGateway) DeleteAccessKey(ctx context.Context, accessKeyID string) error {
	_, err := g.api.DeleteAccessKey(ctx, &iam.DeleteAccessKeyInput{
		AccessKeyId: &accessKeyID,
	})
	if err != nil {
		return wrapAPIError(fmt.Sprintf("delete access key %s", accessKeyID), err)
	}
	return nil
}

// wrapAPIError maps well-known IAM error codes onto provider errors and
// keeps the service error code in the message otherwise
func wrapAPIError(op string, err error) error {
	var limit *iamTypes.LimitExceededException
	if errors.As(err, &limit) {
		return fmt.Errorf("%s: %w: %s", op, provider.ErrLimitExceeded, limit.ErrorMessage())
	}

	var notFound *iamTypes.NoSuchEntityException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%s: %w: %s", op, provider.ErrNotFound, notFound.ErrorMessage())
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %w", op, apiErr.ErrorCode(), err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
