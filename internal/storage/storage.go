// Package storage realizes jails on ZFS: cloning a release into a jail
// dataset, renaming a jail together with its origin snapshot and preparing
// the mountpoints a nullfs basejail needs. Every mutating step publishes
// lifecycle events.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/bsdkit/jailconf/internal/events"
	"github.com/bsdkit/jailconf/internal/logging"
	"github.com/bsdkit/jailconf/internal/zfs"
)

// Jail is the subset of a jail resource the storage engine operates on.
type Jail interface {
	Name() string

	DatasetName() (string, error)
	RootDatasetName() (string, error)
	RootMountpoint(ctx context.Context) (string, error)

	// SetDatasetName repoints the resource after its dataset was renamed.
	SetDatasetName(name string)
}

// Release is the subset of a release resource a jail is cloned from.
type Release interface {
	Name() string
	RootDatasetName() (string, error)
}

// Unmounter unmounts filesystem paths. The default implementation shells out
// to umount(8); tests substitute a fake.
type Unmounter interface {
	Umount(ctx context.Context, paths ...string) error
}

type Storage struct {
	zfs  zfs.ZFS
	jail Jail
	sink events.Sink

	unmounter Unmounter

	dirUser  string
	dirGroup string
}

func New(z zfs.ZFS, jail Jail, sink events.Sink) *Storage {
	if sink == nil {
		sink = events.Discard
	}
	return &Storage{
		zfs:       z,
		jail:      jail,
		sink:      sink,
		unmounter: execUnmounter{},
	}
}

// WithUnmounter substitutes the umount(8) implementation.
func (s *Storage) WithUnmounter(u Unmounter) *Storage {
	s.unmounter = u
	return s
}

// WithOwner makes directories created below the jail root owned by the named
// user and group.
func (s *Storage) WithOwner(user, group string) *Storage {
	s.dirUser, s.dirGroup = user, group
	return s
}

// CloneRelease clones the root dataset of a release into the jail's root
// dataset.
func (s *Storage) CloneRelease(ctx context.Context, release Release) error {
	source, err := release.RootDatasetName()
	if err != nil {
		return err
	}
	target, err := s.jail.RootDatasetName()
	if err != nil {
		return err
	}

	e := events.New(events.TypeReleaseClone, release.Name())
	s.sink.Publish(ctx, e.Begin())
	if err := s.CloneDataset(ctx, source, target); err != nil {
		s.sink.Publish(ctx, e.Fail(err))
		return err
	}
	s.sink.Publish(ctx, e.End())

	logging.GetLogger(ctx, logging.SubsysStorage).Debug("cloned release",
		slog.String("release", release.Name()),
		slog.String("jail", s.jail.Name()))
	return nil
}

// CloneDataset snapshots source as "source@<jail>" and clones the snapshot to
// target, replacing any existing target dataset and any stale snapshot of the
// same name. A missing parent of target is created once and the clone
// retried. The clone is mounted before returning.
func (s *Storage) CloneDataset(ctx context.Context, source, target string,
) error {
	l := logging.GetLogger(ctx, logging.SubsysStorage)
	snapshotName := zfs.SnapshotName(source, s.jail.Name())

	if existing, err := s.zfs.GetDataset(ctx, target); err == nil {
		l.Debug("destroying existing dataset", slog.String("dataset", target))
		if err := s.destroyDataset(ctx, existing); err != nil {
			return err
		}
	} else if !isNotExist(err) {
		return err
	}

	if stale, err := s.zfs.GetSnapshot(ctx, snapshotName); err == nil {
		l.Debug("destroying stale snapshot",
			slog.String("snapshot", snapshotName))
		if err := s.destroySnapshot(ctx, stale); err != nil {
			return err
		}
	} else if !isNotExist(err) {
		return err
	}

	snapshot, err := s.snapshotDataset(ctx, source, s.jail.Name())
	if err != nil {
		return err
	}

	if err := s.cloneSnapshot(ctx, snapshot, target); err != nil {
		return err
	}

	cloned, err := s.zfs.GetDataset(ctx, target)
	if err != nil {
		return err
	}
	return s.mountDataset(ctx, cloned)
}

func (s *Storage) destroyDataset(ctx context.Context, ds zfs.Dataset) error {
	e := events.New(events.TypeDatasetDestroy, ds.Name())
	s.sink.Publish(ctx, e.Begin())

	if ds.Mounted() {
		if err := ds.Umount(ctx); err != nil {
			s.sink.Publish(ctx, e.Fail(err))
			return err
		}
	}
	if err := ds.Destroy(ctx); err != nil {
		s.sink.Publish(ctx, e.Fail(err))
		return err
	}
	s.sink.Publish(ctx, e.End())
	return nil
}

func (s *Storage) destroySnapshot(ctx context.Context, snap zfs.Snapshot,
) error {
	e := events.New(events.TypeSnapshotDestroy, snap.Name())
	s.sink.Publish(ctx, e.Begin())
	if err := snap.Destroy(ctx); err != nil {
		s.sink.Publish(ctx, e.Fail(err))
		return err
	}
	s.sink.Publish(ctx, e.End())
	return nil
}

func (s *Storage) snapshotDataset(ctx context.Context, source, snapName string,
) (zfs.Snapshot, error) {
	e := events.New(events.TypeSnapshotCreate,
		zfs.SnapshotName(source, snapName))
	s.sink.Publish(ctx, e.Begin())

	ds, err := s.zfs.GetDataset(ctx, source)
	if err != nil {
		s.sink.Publish(ctx, e.Fail(err))
		return nil, err
	}
	snapshot, err := ds.Snapshot(ctx, snapName)
	if err != nil {
		s.sink.Publish(ctx, e.Fail(err))
		return nil, err
	}
	s.sink.Publish(ctx, e.End())
	return snapshot, nil
}

func (s *Storage) cloneSnapshot(ctx context.Context, snapshot zfs.Snapshot,
	target string,
) error {
	e := events.New(events.TypeSnapshotClone, target)
	s.sink.Publish(ctx, e.Begin())

	if err := snapshot.Clone(ctx, target); err != nil {
		parent := zfs.ParentName(target)
		if parent == "" {
			s.sink.Publish(ctx, e.Fail(err))
			return err
		}
		logging.GetLogger(ctx, logging.SubsysStorage).Debug(
			"clone failed, creating parent dataset first",
			slog.String("parent", parent))
		if _, err := s.zfs.CreateDataset(ctx, parent); err != nil {
			s.sink.Publish(ctx, e.Fail(err))
			return err
		}
		if err := snapshot.Clone(ctx, target); err != nil {
			s.sink.Publish(ctx, e.Fail(err))
			return err
		}
	}
	s.sink.Publish(ctx, e.End())
	return nil
}

func (s *Storage) mountDataset(ctx context.Context, ds zfs.Dataset) error {
	e := events.New(events.TypeDatasetMount, ds.Name())
	s.sink.Publish(ctx, e.Begin())
	if err := ds.Mount(ctx); err != nil {
		s.sink.Publish(ctx, e.Fail(err))
		return err
	}
	s.sink.Publish(ctx, e.End())
	return nil
}

// Rename moves the jail dataset below jailsRoot under its new name and, when
// the jail was cloned, renames the origin snapshot to match. The snapshot
// rename is attempted even after a dataset rename failure; all failures are
// reported together.
func (s *Storage) Rename(ctx context.Context, jailsRoot, newName string,
) error {
	return errors.Join(
		s.renameDataset(ctx, jailsRoot, newName),
		s.renameOriginSnapshot(ctx, newName),
	)
}

func (s *Storage) renameDataset(ctx context.Context, jailsRoot, newName string,
) error {
	current, err := s.jail.DatasetName()
	if err != nil {
		return err
	}

	e := events.New(events.TypeDatasetRename, current)
	s.sink.Publish(ctx, e.Begin())

	ds, err := s.zfs.GetDataset(ctx, current)
	if err != nil {
		s.sink.Publish(ctx, e.Fail(err))
		return err
	}

	newDatasetName := jailsRoot + "/" + newName
	if err := ds.Rename(ctx, newDatasetName); err != nil {
		s.sink.Publish(ctx, e.Fail(err))
		return err
	}
	s.jail.SetDatasetName(newDatasetName)
	s.sink.Publish(ctx, e.End())

	logging.GetLogger(ctx, logging.SubsysStorage).Debug("dataset renamed",
		slog.String("from", current), slog.String("to", newDatasetName))
	return nil
}

func (s *Storage) renameOriginSnapshot(ctx context.Context, newName string,
) error {
	rootName, err := s.jail.RootDatasetName()
	if err != nil {
		return err
	}
	root, err := s.zfs.GetDataset(ctx, rootName)
	if err != nil {
		return err
	}
	origin, err := root.GetProperty(ctx, zfs.PropertyOrigin)
	if err != nil {
		return err
	}
	if origin == "" {
		return nil
	}

	snapshot, err := s.zfs.GetSnapshot(ctx, origin)
	if err != nil {
		return err
	}

	e := events.New(events.TypeSnapshotRename, origin)
	s.sink.Publish(ctx, e.Begin())

	newSnapshotName := zfs.SnapshotName(snapshot.Dataset(), newName)
	if err := snapshot.Rename(ctx, newSnapshotName); err != nil {
		s.sink.Publish(ctx, e.Fail(err))
		return err
	}
	s.sink.Publish(ctx, e.End())
	return nil
}

// CreateJailMountpoint creates basedir below the jail root when missing.
func (s *Storage) CreateJailMountpoint(ctx context.Context, basedir string,
) error {
	root, err := s.jail.RootMountpoint(ctx)
	if err != nil {
		return err
	}

	dir := filepath.Join(root, basedir)
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	logging.GetLogger(ctx, logging.SubsysStorage).Debug(
		"creating mountpoint", slog.String("path", dir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mountpoint %q: %w", dir, err)
	}
	return s.chownDir(dir)
}

func (s *Storage) chownDir(dir string) error {
	if s.dirUser == "" && s.dirGroup == "" {
		return nil
	}

	uid, gid := -1, -1
	if s.dirUser != "" {
		u, err := user.Lookup(s.dirUser)
		if err != nil {
			return fmt.Errorf("lookup user %q: %w", s.dirUser, err)
		}
		if uid, err = strconv.Atoi(u.Uid); err != nil {
			return err
		}
	}
	if s.dirGroup != "" {
		g, err := user.LookupGroup(s.dirGroup)
		if err != nil {
			return fmt.Errorf("lookup group %q: %w", s.dirGroup, err)
		}
		if gid, err = strconv.Atoi(g.Gid); err != nil {
			return err
		}
	}
	if err := os.Chown(dir, uid, gid); err != nil {
		return fmt.Errorf("chown %q: %w", dir, err)
	}
	return nil
}

// CreateNullfsDirectories prepares the mount targets of a nullfs basejail:
// every base directory plus dev and etc.
func (s *Storage) CreateNullfsDirectories(ctx context.Context,
	basedirs []string,
) error {
	for _, basedir := range append(append([]string{}, basedirs...),
		"dev", "etc") {
		if err := s.CreateJailMountpoint(ctx, basedir); err != nil {
			return err
		}
	}
	return nil
}

// UmountNullfs unmounts the given fstab destinations before a basejail is
// started. Paths that were never mounted make umount(8) complain; that is
// tolerated and only logged.
func (s *Storage) UmountNullfs(ctx context.Context, destinations []string,
) error {
	if len(destinations) == 0 {
		return nil
	}
	if err := s.unmounter.Umount(ctx, destinations...); err != nil {
		logging.WithError(
			logging.GetLogger(ctx, logging.SubsysStorage), err,
		).Debug("unmount failed, continuing")
	}
	return nil
}

func isNotExist(err error) bool {
	var dsNotExist *zfs.DatasetDoesNotExist
	var snapNotExist *zfs.SnapshotDoesNotExist
	return errors.As(err, &dsNotExist) || errors.As(err, &snapNotExist)
}
