package rotate

import (
	"context"
	"fmt"
	"sync"

	"github.com/vietdv277/keyrot/pkg/provider"
	"github.com/vietdv277/keyrot/pkg/types"
)

// callLog records calls across fakes in the order they happen
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeKeys struct {
	log       *callLog
	remote    []types.AccessKey
	listErr   error
	createErr map[int]error // by call number, starting at 1
	deleteErr map[string]error
	limit     int // IAM keys per user, unlimited when zero
	created   int
}

func (f *fakeKeys) ListAccessKeys(ctx context.Context) ([]types.AccessKey, error) {
	return f.remote, f.listErr
}

func (f *fakeKeys) CreateAccessKey(ctx context.Context) (string, string, error) {
	if f.limit > 0 && len(f.remote)+f.created >= f.limit {
		return "", "", provider.ErrLimitExceeded
	}
	f.created++
	f.log.add("create")
	if err := f.createErr[f.created]; err != nil {
		return "", "", err
	}
	return fmt.Sprintf("AKIANEW%d", f.created), fmt.Sprintf("SECNEW%d", f.created), nil
}

func (f *fakeKeys) DeleteAccessKey(ctx context.Context, accessKeyID string) error {
	f.log.add("delete:%s", accessKeyID)
	return f.deleteErr[accessKeyID]
}

type fakeStore struct {
	log        *callLog
	names      []string
	listErr    error
	replaceErr map[string]error
}

func (f *fakeStore) ListProfileNames() ([]string, error) {
	return f.names, f.listErr
}

func (f *fakeStore) ReplaceProfile(name, accessKeyID, secretAccessKey string) error {
	f.log.add("replace:%s:%s:%s", name, accessKeyID, secretAccessKey)
	return f.replaceErr[name]
}

type fakeLoader struct {
	ids map[string]string
}

func (f *fakeLoader) LoadProfileAccessKeyID(ctx context.Context, profile string) (string, error) {
	id, ok := f.ids[profile]
	if !ok {
		return "", fmt.Errorf("profile %q not found", profile)
	}
	return id, nil
}

type fakeSecrets struct {
	log *callLog
	err error
}

func (f *fakeSecrets) Set(ctx context.Context, name, value string) error {
	f.log.add("mirror:%s:%s", name, value)
	return f.err
}
