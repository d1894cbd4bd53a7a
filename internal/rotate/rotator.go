// Package rotate sequences access key rotation for local AWS profiles.
//
// A run resolves the eligible profiles, lets the caller pick at most two,
// creates and installs a new key for each one in turn, and only then deletes
// the old keys. A profile therefore always has at least one working key.
package rotate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vietdv277/keyrot/internal/credstore"
	"github.com/vietdv277/keyrot/pkg/provider"
	"github.com/vietdv277/keyrot/pkg/types"
)

const (
	// DefaultProfile is rotated when multi-profile mode is off
	DefaultProfile = "default"

	// MaxProfiles matches the IAM limit of two access keys per user
	MaxProfiles = 2
)

var (
	ErrTooManyProfiles    = fmt.Errorf("at most %d profiles can be rotated at once", MaxProfiles)
	ErrSelectionCancelled = errors.New("selection cancelled")
	ErrNoSelector         = errors.New("no profile selector configured")
	ErrSharedAccessKey    = errors.New("selected profiles share an access key")
)

// Status describes how a run ended
type Status int

const (
	StatusCompleted Status = iota
	StatusNothingToRotate
	StatusCancelled
	StatusDryRun
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusNothingToRotate:
		return "nothing to rotate"
	case StatusCancelled:
		return "cancelled"
	case StatusDryRun:
		return "dry run"
	}
	return "unknown"
}

// Report is the outcome of a run
type Report struct {
	Status   Status
	Selected []types.Profile
	Rotated  []types.RotationResult
	Deleted  []types.DeleteOutcome
}

// DeleteFailures counts old keys that are still active
func (r *Report) DeleteFailures() int {
	n := 0
	for _, d := range r.Deleted {
		if !d.OK() {
			n++
		}
	}
	return n
}

// Options controls a single run
type Options struct {
	MultiProfile bool   // choose among all local profiles instead of default only
	EnvPath      string // env file to patch, single-profile runs only
	MirrorName   string // SSM parameter or secret to mirror to, single-profile runs only
	DryRun       bool
}

// ProfileResolver turns profile names into rotation candidates
type ProfileResolver interface {
	Resolve(ctx context.Context, names []string) ([]types.Profile, error)
}

// Selector picks the profiles to rotate out of the eligible ones
type Selector interface {
	Select(profiles []types.Profile) ([]types.Profile, error)
}

// SelectorFunc adapts a function to Selector
type SelectorFunc func(profiles []types.Profile) ([]types.Profile, error)

// Select calls f
func (f SelectorFunc) Select(profiles []types.Profile) ([]types.Profile, error) {
	return f(profiles)
}

// EnvWriter patches an env file with a new key pair
type EnvWriter func(path, accessKeyID, secretAccessKey string) error

// Rotator runs rotations
type Rotator struct {
	store    provider.CredentialStore
	keys     provider.KeyProvider
	resolver ProfileResolver
	selector Selector
	secrets  provider.SecretsProvider
	writeEnv EnvWriter
	log      logrus.FieldLogger
}

// RotatorOption allows customizing the Rotator
type RotatorOption func(*Rotator)

// WithSelector sets the selector used in multi-profile mode
func WithSelector(s Selector) RotatorOption {
	return func(r *Rotator) {
		r.selector = s
	}
}

// WithSecretsProvider enables mirroring new keys to a remote secret
func WithSecretsProvider(p provider.SecretsProvider) RotatorOption {
	return func(r *Rotator) {
		r.secrets = p
	}
}

// WithEnvWriter replaces the env file writer
func WithEnvWriter(w EnvWriter) RotatorOption {
	return func(r *Rotator) {
		r.writeEnv = w
	}
}

// NewRotator creates a Rotator
func NewRotator(store provider.CredentialStore, keys provider.KeyProvider, resolver ProfileResolver, log logrus.FieldLogger, opts ...RotatorOption) *Rotator {
	r := &Rotator{
		store:    store,
		keys:     keys,
		resolver: resolver,
		writeEnv: credstore.ReplaceEnvVars,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one rotation. Errors are only returned for failures that
// happen before anything was changed; once a key exists, problems are
// logged and the run carries on.
func (r *Rotator) Run(ctx context.Context, opts Options) (*Report, error) {
	names := []string{DefaultProfile}
	if opts.MultiProfile {
		all, err := r.store.ListProfileNames()
		if err != nil {
			return nil, fmt.Errorf("failed to list local profiles: %w", err)
		}
		names = all
	}

	eligible, err := r.resolver.Resolve(ctx, names)
	if err != nil {
		r.log.WithError(err).Error("Failed to list IAM access keys")
	}
	if len(eligible) == 0 {
		return &Report{Status: StatusNothingToRotate}, nil
	}

	selected := eligible
	if opts.MultiProfile {
		if r.selector == nil {
			return nil, ErrNoSelector
		}
		selected, err = r.selector.Select(eligible)
		if errors.Is(err, ErrSelectionCancelled) {
			return &Report{Status: StatusCancelled}, nil
		}
		if err != nil {
			return nil, err
		}
	}

	if len(selected) > MaxProfiles {
		return nil, fmt.Errorf("%w: %d selected", ErrTooManyProfiles, len(selected))
	}
	if len(selected) == 0 {
		return &Report{Status: StatusNothingToRotate}, nil
	}
	if err := checkDistinctKeys(selected); err != nil {
		return nil, err
	}
	if opts.DryRun {
		return &Report{Status: StatusDryRun, Selected: selected}, nil
	}

	rotated := r.rotateEach(ctx, selected, opts)
	deleted := r.deleteOld(ctx, rotated)

	return &Report{
		Status:   StatusCompleted,
		Selected: selected,
		Rotated:  rotated,
		Deleted:  deleted,
	}, nil
}

// checkDistinctKeys rejects selections where two profiles use the same key.
// Deleting that key for one profile would leave the other without a valid one.
func checkDistinctKeys(selected []types.Profile) error {
	seen := make(map[string]string, len(selected))
	for _, p := range selected {
		if other, ok := seen[p.AccessKeyID]; ok {
			return fmt.Errorf("%w: %s and %s both use %s", ErrSharedAccessKey, other, p.Name, p.AccessKeyID)
		}
		seen[p.AccessKeyID] = p.Name
	}
	return nil
}

// rotateEach creates and installs new keys one profile at a time. Every
// iteration rewrites the shared credentials file, so this must not fan out.
func (r *Rotator) rotateEach(ctx context.Context, selected []types.Profile, opts Options) []types.RotationResult {
	single := len(selected) == 1

	var rotated []types.RotationResult
	for _, p := range selected {
		log := r.log.WithField("profile", p.Name)

		id, secret, err := r.keys.CreateAccessKey(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to create access key")
			continue
		}
		log.WithField("access_key_id", id).Info("Created access key")

		installErr := r.store.ReplaceProfile(p.Name, id, secret)
		if installErr != nil {
			log.WithError(installErr).Error("Failed to write new key to credentials file")
		} else {
			log.Info("Updated credentials file")
		}

		if single && opts.EnvPath != "" {
			if err := r.writeEnv(opts.EnvPath, id, secret); err != nil {
				log.WithError(err).Warn("Env file not updated")
			} else {
				log.WithField("path", opts.EnvPath).Info("Updated env file")
			}
		}

		if single && opts.MirrorName != "" {
			r.mirror(ctx, log, opts.MirrorName, id, secret)
		}

		rotated = append(rotated, types.RotationResult{
			Name:               p.Name,
			OldAccessKeyID:     p.AccessKeyID,
			NewAccessKeyID:     id,
			NewSecretAccessKey: secret,
			InstallErr:         installErr,
		})
	}

	return rotated
}

type mirroredKey struct {
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
}

func (r *Rotator) mirror(ctx context.Context, log logrus.FieldLogger, name, id, secret string) {
	if r.secrets == nil {
		log.Warn("Secret mirror requested but no secrets provider configured")
		return
	}

	value, err := json.Marshal(mirroredKey{AccessKeyID: id, SecretAccessKey: secret})
	if err != nil {
		log.WithError(err).Warn("Secret not mirrored")
		return
	}

	if err := r.secrets.Set(ctx, name, string(value)); err != nil {
		log.WithError(err).Warn("Secret not mirrored")
		return
	}
	log.WithField("secret", name).Info("Mirrored new key")
}

// deleteOld deletes the superseded keys concurrently and reports each outcome
func (r *Rotator) deleteOld(ctx context.Context, rotated []types.RotationResult) []types.DeleteOutcome {
	outcomes := make([]types.DeleteOutcome, len(rotated))

	var g errgroup.Group
	for i, res := range rotated {
		g.Go(func() error {
			err := r.keys.DeleteAccessKey(ctx, res.OldAccessKeyID)
			outcomes[i] = types.DeleteOutcome{
				Name:        res.Name,
				AccessKeyID: res.OldAccessKeyID,
				Err:         err,
			}

			log := r.log.WithField("profile", res.Name).WithField("access_key_id", res.OldAccessKeyID)
			if err != nil {
				log.WithError(err).Error("Failed to delete old access key, it is still active")
			} else {
				log.Info("Deleted old access key")
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
