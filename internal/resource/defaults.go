package resource

import (
	"context"

	"github.com/bsdkit/jailconf/internal/props"
	"github.com/bsdkit/jailconf/internal/zfs"
)

// DefaultResource holds the host-wide jail defaults, stored on the root
// dataset as defaults.json (or legacy "defaults"). Only explicitly changed
// keys are ever written; the baked-in defaults stay implicit.
type DefaultResource struct {
	*Resource

	Config *props.DefaultsStore
}

func NewDefaultResource(z zfs.ZFS, opts ...Option) *DefaultResource {
	opts = append([]Option{
		withConfigFileDefaults("defaults.json", "defaults"),
	}, opts...)
	return &DefaultResource{
		Resource: New(z, opts...),
		Config:   props.NewDefaultsStore(),
	}
}

// Load reads the persisted overrides into the defaults store.
func (d *DefaultResource) Load(ctx context.Context) error {
	if !d.HasConfig(ctx) {
		return nil
	}
	data, err := d.ReadConfig(ctx)
	if err != nil {
		return err
	}
	return d.Config.Clone(data, false)
}

// Save persists the explicitly set overrides.
func (d *DefaultResource) Save(ctx context.Context) error {
	return d.WriteConfig(ctx, d.Config.ExclusiveUserData())
}
