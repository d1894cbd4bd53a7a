// Package credstore reads and patches the AWS shared credentials file and
// dotenv files in place.
//
// Profile blocks are located with anchored patterns and substituted as text so
// that comments, ordering and unrelated sections survive a rotation untouched.
// Writes are a plain read-modify-write of the whole file: a crash between the
// truncate and the final write can leave the file damaged.
package credstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	accessKeyIDKey     = "aws_access_key_id"
	secretAccessKeyKey = "aws_secret_access_key"

	sharedCredentialsFileEnvVar = "AWS_SHARED_CREDENTIALS_FILE"
)

var (
	ErrRead             = errors.New("credentials file unreadable")
	ErrWrite            = errors.New("credentials file not writable")
	ErrProfileNotFound  = errors.New("profile not found in credentials file")
	ErrMalformedProfile = errors.New("profile block is not an access key pair")
)

// Store is a handle on one credentials file
type Store struct {
	path string
}

// New returns a Store for the credentials file at path
func New(path string) *Store {
	return &Store{path: path}
}

// DefaultCredentialsPath returns AWS_SHARED_CREDENTIALS_FILE when set,
// otherwise ~/.aws/credentials
func DefaultCredentialsPath() string {
	if p := os.Getenv(sharedCredentialsFileEnvVar); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".aws", "credentials")
	}
	return filepath.Join(home, ".aws", "credentials")
}

// Path returns the credentials file location
func (s *Store) Path() string {
	return s.path
}

// ListProfileNames returns every [section] name in file order
func (s *Store) ListProfileNames() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrRead, s.path, err)
	}

	var names []string
	for _, name := range cfg.SectionStrings() {
		if name == ini.DefaultSection {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// ReplaceProfile swaps the two key lines that follow [name] for the given
// pair. Lines after the pair (region, output, comments) are kept. If the
// section is missing the file is left as is and ErrProfileNotFound is
// returned; no section is ever inserted.
func (s *Store) ReplaceProfile(name, accessKeyID, secretAccessKey string) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRead, err)
	}
	content := string(data)

	header := `(?m)^\[` + regexp.QuoteMeta(name) + `\][ \t]*`
	if !regexp.MustCompile(header + `\r?$`).MatchString(content) {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}

	block := regexp.MustCompile(header + `(\r?\n)([^\r\n]+)\r?\n([^\r\n]+)`)
	loc := block.FindStringSubmatchIndex(content)
	if loc == nil {
		return fmt.Errorf("%w: [%s] is not followed by two key lines", ErrMalformedProfile, name)
	}
	eol := content[loc[2]:loc[3]]
	first := content[loc[4]:loc[5]]
	second := content[loc[6]:loc[7]]
	if !isKeyPair(first, second) {
		return fmt.Errorf("%w: [%s]", ErrMalformedProfile, name)
	}

	replacement := "[" + name + "]" + eol +
		accessKeyIDKey + "=" + accessKeyID + eol +
		secretAccessKeyKey + "=" + secretAccessKey
	updated := content[:loc[0]] + replacement + content[loc[1]:]

	return writePreservingMode(s.path, []byte(updated), ErrWrite)
}

// isKeyPair reports whether two lines hold the id and secret keys, in any order
func isKeyPair(a, b string) bool {
	ka, kb := lineKey(a), lineKey(b)
	return (ka == accessKeyIDKey && kb == secretAccessKeyKey) ||
		(ka == secretAccessKeyKey && kb == accessKeyIDKey)
}

func lineKey(line string) string {
	key, _, ok := strings.Cut(line, "=")
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(key))
}

func writePreservingMode(path string, data []byte, sentinel error) error {
	mode := os.FileMode(0o600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return nil
}
