package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/vietdv277/keyrot/pkg/provider"
)

var _ provider.ProfileKeyLoader = (*ProfileLoader)(nil)

// ProfileLoader resolves a profile's configured access key id through the
// SDK shared config loader, so the SDK's own parsing rules apply
type ProfileLoader struct {
	credentialsFiles []string
}

// NewProfileLoader creates a ProfileLoader reading only the given credentials file
func NewProfileLoader(credentialsFile string) *ProfileLoader {
	return &ProfileLoader{credentialsFiles: []string{credentialsFile}}
}

// LoadProfileAccessKeyID returns the aws_access_key_id of the named profile
func (l *ProfileLoader) LoadProfileAccessKeyID(ctx context.Context, profile string) (string, error) {
	shared, err := config.LoadSharedConfigProfile(ctx, profile, func(o *config.LoadSharedConfigOptions) {
		o.CredentialsFiles = l.credentialsFiles
		o.ConfigFiles = []string{}
	})
	if err != nil {
		return "", fmt.Errorf("failed to load profile %q: %w", profile, err)
	}

	if shared.Credentials.AccessKeyID == "" {
		return "", fmt.Errorf("profile %q: %w: no static access key", profile, provider.ErrNotConfigured)
	}

	return shared.Credentials.AccessKeyID, nil
}
