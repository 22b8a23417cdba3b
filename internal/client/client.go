// Package client implements the jailconf CLI subcommands.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/bsdkit/jailconf/internal/config"
	"github.com/bsdkit/jailconf/internal/resource"
	"github.com/bsdkit/jailconf/internal/zfs"
)

func openJail(ctx context.Context, cfg *config.Config, z zfs.ZFS,
	name string,
) (*resource.Jail, error) {
	j := resource.NewJail(z, resource.WithDatasetName(
		cfg.JailsDatasetName()+"/"+name))
	if !j.Exists(ctx) {
		return nil, fmt.Errorf("jail %q does not exist", name)
	}
	if err := j.Load(ctx); err != nil {
		return nil, fmt.Errorf("load jail %q: %w", name, err)
	}
	return j, nil
}

func openRelease(ctx context.Context, cfg *config.Config, z zfs.ZFS,
	name string,
) (*resource.Release, error) {
	r := resource.NewRelease(z, resource.WithDatasetName(
		cfg.ReleasesDatasetName()+"/"+name))
	if !r.Exists(ctx) {
		return nil, fmt.Errorf("release %q does not exist", name)
	}
	return r, nil
}

// releaseForJail resolves the release a jail was created from, or nil when
// none is configured or fetched.
func releaseForJail(ctx context.Context, cfg *config.Config, z zfs.ZFS,
	j *resource.Jail,
) (*resource.Release, error) {
	v, err := j.Config.Get("cloned_release")
	if err != nil || v.IsNull() {
		return nil, nil
	}
	r, err := openRelease(ctx, cfg, z, v.String())
	if err != nil {
		return nil, nil
	}
	return r, nil
}

func exactArgs(args []string, names ...string) error {
	if len(args) != len(names) {
		return fmt.Errorf("expected arguments: %v", names)
	}
	for _, arg := range args {
		if arg == "" {
			return errors.New("empty argument")
		}
	}
	return nil
}
