package rotate

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vietdv277/keyrot/pkg/provider"
	"github.com/vietdv277/keyrot/pkg/types"
)

// AccessKeyLister lists the caller's IAM access keys
type AccessKeyLister interface {
	ListAccessKeys(ctx context.Context) ([]types.AccessKey, error)
}

// Resolver matches local profiles against the caller's IAM access keys
type Resolver struct {
	keys   AccessKeyLister
	loader provider.ProfileKeyLoader
	log    logrus.FieldLogger
}

// NewResolver creates a Resolver
func NewResolver(keys AccessKeyLister, loader provider.ProfileKeyLoader, log logrus.FieldLogger) *Resolver {
	return &Resolver{keys: keys, loader: loader, log: log}
}

// Resolve returns the profiles among names whose configured access key
// belongs to the caller, in the order of names. Profiles that fail to load
// or whose key IAM does not know are left out. The error is only set when
// the remote key list itself could not be fetched.
func (r *Resolver) Resolve(ctx context.Context, names []string) ([]types.Profile, error) {
	localIDs := make([]string, len(names))
	var remote []types.AccessKey

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			id, err := r.loader.LoadProfileAccessKeyID(ctx, name)
			if err != nil {
				r.log.WithField("profile", name).WithError(err).Debug("Skipping profile")
				return nil
			}
			localIDs[i] = id
			return nil
		})
	}
	g.Go(func() error {
		keys, err := r.keys.ListAccessKeys(ctx)
		if err != nil {
			return err
		}
		remote = keys
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]types.AccessKey, len(remote))
	for _, k := range remote {
		byID[k.AccessKeyID] = k
	}

	var profiles []types.Profile
	for i, name := range names {
		id := localIDs[i]
		if id == "" {
			continue
		}
		key, ok := byID[id]
		if !ok {
			r.log.WithField("profile", name).Debugf("Access key %s does not belong to the caller", id)
			continue
		}
		profiles = append(profiles, types.Profile{
			Name:        name,
			AccessKeyID: id,
			CreateDate:  key.CreateDate,
		})
	}

	return profiles, nil
}
