package aws

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietdv277/keyrot/pkg/provider"
)

func writeCredentials(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadProfileAccessKeyID(t *testing.T) {
	path := writeCredentials(t, `[default]
aws_access_key_id = AKIADEFAULT
aws_secret_access_key = SECDEFAULT

[work]
aws_access_key_id=AKIAWORK
aws_secret_access_key=SECWORK
`)
	loader := NewProfileLoader(path)

	id, err := loader.LoadProfileAccessKeyID(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "AKIADEFAULT", id)

	id, err = loader.LoadProfileAccessKeyID(context.Background(), "work")
	require.NoError(t, err)
	assert.Equal(t, "AKIAWORK", id)
}

func TestLoadProfileAccessKeyIDMissingProfile(t *testing.T) {
	loader := NewProfileLoader(writeCredentials(t, "[default]\naws_access_key_id=A\naws_secret_access_key=B\n"))

	_, err := loader.LoadProfileAccessKeyID(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestLoadProfileAccessKeyIDNoStaticKey(t *testing.T) {
	loader := NewProfileLoader(writeCredentials(t, "[sso]\nregion=eu-west-1\n"))

	_, err := loader.LoadProfileAccessKeyID(context.Background(), "sso")
	assert.ErrorIs(t, err, provider.ErrNotConfigured)
}
