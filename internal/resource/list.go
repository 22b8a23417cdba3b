package resource

import (
	"context"
	"iter"

	"github.com/bsdkit/jailconf/internal/zfs"
)

// Jails iterates over all jails below jailsRoot matching filters. Name terms
// are checked on the dataset basename before a jail is loaded at all; the
// remaining terms run against the loaded configuration. Load failures are
// yielded with a nil jail and iteration continues.
func Jails(ctx context.Context, z zfs.ZFS, jailsRoot string, filters Filters,
) iter.Seq2[*Jail, error] {
	return func(yield func(*Jail, error) bool) {
		root, err := z.GetDataset(ctx, jailsRoot)
		if err != nil {
			yield(nil, err)
			return
		}
		children, err := root.Children(ctx)
		if err != nil {
			yield(nil, err)
			return
		}

		for _, ds := range children {
			if !filters.MatchName(zfs.BaseName(ds.Name())) {
				continue
			}

			jail := NewJail(z, WithDataset(ds))
			if err := jail.Load(ctx); err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}

			if !filters.Match(jail.GetProperty) {
				continue
			}
			if !yield(jail, nil) {
				return
			}
		}
	}
}

// GetProperty returns the canonical string form of a jail property for
// filter matching. The name pseudo property resolves to the jail name.
func (j *Jail) GetProperty(key string) (string, bool) {
	if key == "name" {
		return j.Name(), true
	}
	value, err := j.Config.GetString(key)
	if err != nil {
		return "", false
	}
	return value, true
}

// Releases iterates over all releases below releasesRoot matching the name
// terms of filters.
func Releases(ctx context.Context, z zfs.ZFS, releasesRoot string,
	filters Filters,
) iter.Seq2[*Release, error] {
	return func(yield func(*Release, error) bool) {
		root, err := z.GetDataset(ctx, releasesRoot)
		if err != nil {
			yield(nil, err)
			return
		}
		children, err := root.Children(ctx)
		if err != nil {
			yield(nil, err)
			return
		}

		for _, ds := range children {
			if !filters.MatchName(zfs.BaseName(ds.Name())) {
				continue
			}
			if !yield(NewRelease(z, WithDataset(ds)), nil) {
				return
			}
		}
	}
}
