package credstore

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// DefaultEnvPath is used when --env is given without a value
const DefaultEnvPath = "./.env"

// ErrEnvWrite wraps every env file failure. Callers treat it as a warning.
var ErrEnvWrite = errors.New("env file not updated")

var (
	envAccessKeyIDRe     = regexp.MustCompile(`(?m)^AWS_ACCESS_KEY_ID=[^\r\n]*`)
	envSecretAccessKeyRe = regexp.MustCompile(`(?m)^AWS_SECRET_ACCESS_KEY=[^\r\n]*`)
)

// ReplaceEnvVars rewrites the first AWS_ACCESS_KEY_ID= and
// AWS_SECRET_ACCESS_KEY= lines of the file at path. All other content is
// kept verbatim. Missing variables are not appended.
func ReplaceEnvVars(path, accessKeyID, secretAccessKey string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEnvWrite, err)
	}
	content := string(data)

	content, idOK := replaceFirst(envAccessKeyIDRe, content, "AWS_ACCESS_KEY_ID="+accessKeyID)
	content, secretOK := replaceFirst(envSecretAccessKeyRe, content, "AWS_SECRET_ACCESS_KEY="+secretAccessKey)
	if !idOK && !secretOK {
		return fmt.Errorf("%w: no AWS key variables in %s", ErrEnvWrite, path)
	}

	return writePreservingMode(path, []byte(content), ErrEnvWrite)
}

func replaceFirst(re *regexp.Regexp, s, line string) (string, bool) {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s, false
	}
	return s[:loc[0]] + line + s[loc[1]:], true
}
