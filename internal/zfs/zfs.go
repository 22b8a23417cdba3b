// Package zfs defines the capability surface the resource and storage layers
// consume: pools, datasets and snapshots with the handful of primitives
// needed to realize a jail from a release. The default implementation shells
// out to the zfs binary through zfscmd; tests use the in-memory zfsmock.
package zfs

import (
	"context"
	"strings"
)

// PropertyOrigin is set on datasets that are clones of a snapshot.
const PropertyOrigin = "origin"

type ZFS interface {
	GetPool(name string) (Pool, error)
	GetDataset(ctx context.Context, name string) (Dataset, error)
	GetOrCreateDataset(ctx context.Context, name string) (Dataset, error)
	CreateDataset(ctx context.Context, name string) (Dataset, error)
	GetSnapshot(ctx context.Context, name string) (Snapshot, error)
}

// Pool is the zpool a dataset lives on. Only its name is of interest here.
type Pool struct {
	Name string
}

type Dataset interface {
	Name() string

	// Mountpoint returns the filesystem path the dataset is mounted on, or ""
	// when it has none.
	Mountpoint() string
	Mounted() bool

	Children(ctx context.Context) ([]Dataset, error)
	Snapshot(ctx context.Context, snapName string) (Snapshot, error)
	Rename(ctx context.Context, newName string) error
	Mount(ctx context.Context) error
	Umount(ctx context.Context) error
	Destroy(ctx context.Context) error

	// GetProperty returns "" for properties without a value ("-").
	GetProperty(ctx context.Context, name string) (string, error)
	SetProperty(ctx context.Context, name, value string) error
	Properties(ctx context.Context) (map[string]string, error)
}

type Snapshot interface {
	// Name returns the full "dataset@snapshot" name.
	Name() string

	// Dataset returns the dataset part of the snapshot name.
	Dataset() string

	Clone(ctx context.Context, target string) error
	Rename(ctx context.Context, newName string) error
	Destroy(ctx context.Context) error
}

// SnapshotName builds the full name of snapshot snap on dataset ds.
func SnapshotName(ds, snap string) string { return ds + "@" + snap }

// SplitSnapshotName splits a full snapshot name into its dataset and snapshot
// parts. The snapshot part is "" if name contains no '@'.
func SplitSnapshotName(name string) (ds, snap string) {
	ds, snap, _ = strings.Cut(name, "@")
	return
}

// PoolName returns the first component of a dataset name.
func PoolName(dataset string) string {
	pool, _, _ := strings.Cut(dataset, "/")
	return pool
}

// ParentName returns the parent dataset name, or "" for a pool root dataset.
func ParentName(dataset string) string {
	i := strings.LastIndexByte(dataset, '/')
	if i < 0 {
		return ""
	}
	return dataset[:i]
}

// BaseName returns the last component of a dataset name.
func BaseName(dataset string) string {
	i := strings.LastIndexByte(dataset, '/')
	return dataset[i+1:]
}
