package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSTS struct{}

func (fakeSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:iam::123456789012:user/ci"),
		UserId:  aws.String("AIDAEXAMPLE"),
	}, nil
}

func TestGetCallerIdentity(t *testing.T) {
	id, err := GetCallerIdentity(context.Background(), fakeSTS{})
	require.NoError(t, err)
	assert.Equal(t, "123456789012", id.Account)
	assert.Equal(t, "arn:aws:iam::123456789012:user/ci", id.Arn)
	assert.Equal(t, "AIDAEXAMPLE", id.UserID)
}
