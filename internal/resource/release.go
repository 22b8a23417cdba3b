package resource

import (
	"context"

	"github.com/bsdkit/jailconf/internal/zfs"
)

// Release is a fetched FreeBSD release: a dataset below the releases root
// whose root child carries the extracted base system.
type Release struct {
	*Resource
}

func NewRelease(z zfs.ZFS, opts ...Option) *Release {
	return &Release{Resource: New(z, opts...)}
}

// Name is the release name, e.g. "13.2-RELEASE".
func (r *Release) Name() string {
	name, err := r.DatasetName()
	if err != nil {
		return ""
	}
	return zfs.BaseName(name)
}

func (r *Release) RootDatasetName() (string, error) {
	name, err := r.DatasetName()
	if err != nil {
		return "", err
	}
	return name + "/root", nil
}

func (r *Release) RootDataset(ctx context.Context) (zfs.Dataset, error) {
	return r.ChildDataset(ctx, "root")
}

func (r *Release) RootMountpoint(ctx context.Context) (string, error) {
	ds, err := r.RootDataset(ctx)
	if err != nil {
		return "", err
	}
	return ds.Mountpoint(), nil
}
