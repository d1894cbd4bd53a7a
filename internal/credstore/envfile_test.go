package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceEnvVars(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "both variables",
			content: "APP=web\nAWS_ACCESS_KEY_ID=AKIAOLD\nAWS_SECRET_ACCESS_KEY=SECOLD\nDEBUG=1\n",
			want:    "APP=web\nAWS_ACCESS_KEY_ID=AKIANEW\nAWS_SECRET_ACCESS_KEY=SECNEW\nDEBUG=1\n",
		},
		{
			name:    "only first occurrence",
			content: "AWS_ACCESS_KEY_ID=A\nAWS_ACCESS_KEY_ID=B\nAWS_SECRET_ACCESS_KEY=S\n",
			want:    "AWS_ACCESS_KEY_ID=AKIANEW\nAWS_ACCESS_KEY_ID=B\nAWS_SECRET_ACCESS_KEY=SECNEW\n",
		},
		{
			name:    "case sensitive",
			content: "aws_access_key_id=keep\nAWS_ACCESS_KEY_ID=old\n",
			want:    "aws_access_key_id=keep\nAWS_ACCESS_KEY_ID=AKIANEW\n",
		},
		{
			name:    "not anchored mid line",
			content: "# AWS_ACCESS_KEY_ID=comment\nAWS_SECRET_ACCESS_KEY=old",
			want:    "# AWS_ACCESS_KEY_ID=comment\nAWS_SECRET_ACCESS_KEY=SECNEW",
		},
		{
			name:    "crlf",
			content: "AWS_ACCESS_KEY_ID=old\r\nAWS_SECRET_ACCESS_KEY=old\r\n",
			want:    "AWS_ACCESS_KEY_ID=AKIANEW\r\nAWS_SECRET_ACCESS_KEY=SECNEW\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".env")
			writeFile(t, path, tt.content)

			require.NoError(t, ReplaceEnvVars(path, "AKIANEW", "SECNEW"))
			assert.Equal(t, tt.want, readFile(t, path))
		})
	}
}

func TestReplaceEnvVarsMissingFile(t *testing.T) {
	err := ReplaceEnvVars(filepath.Join(t.TempDir(), ".env"), "AKIANEW", "SECNEW")
	assert.ErrorIs(t, err, ErrEnvWrite)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReplaceEnvVarsNoKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, "APP=web\n")

	err := ReplaceEnvVars(path, "AKIANEW", "SECNEW")
	assert.ErrorIs(t, err, ErrEnvWrite)
	assert.Equal(t, "APP=web\n", readFile(t, path))
}
