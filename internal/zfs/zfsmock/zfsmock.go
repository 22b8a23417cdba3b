// Package zfsmock is an in-memory zfs.ZFS implementation for tests. It keeps
// datasets and snapshots in maps, records every mutating operation and allows
// injecting failures per operation and entity.
package zfsmock

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bsdkit/jailconf/internal/zfs"
)

func New() *Mock {
	return &Mock{
		datasets:  make(map[string]*Dataset),
		snapshots: make(map[string]*Snapshot),
		failures:  make(map[string]error),
	}
}

type Mock struct {
	datasets  map[string]*Dataset
	snapshots map[string]*Snapshot
	failures  map[string]error

	// Ops records every mutating operation as "op name [arg]".
	Ops []string
}

var _ zfs.ZFS = (*Mock)(nil)

// FailOn makes the named operation on the named entity return err once
// matched. Operations: snapshot, clone, rename, mount, umount, destroy,
// create.
func (m *Mock) FailOn(op, name string, err error) {
	m.failures[op+" "+name] = err
}

func (m *Mock) fail(op, name string) error {
	return m.failures[op+" "+name]
}

func (m *Mock) record(op string, args ...string) {
	m.Ops = append(m.Ops, op+" "+strings.Join(args, " "))
}

// AddDataset registers a mounted dataset with the given mountpoint.
func (m *Mock) AddDataset(name, mountpoint string) *Dataset {
	ds := &Dataset{
		mock:       m,
		name:       name,
		mountpoint: mountpoint,
		mounted:    true,
		props:      make(map[string]string),
	}
	m.datasets[name] = ds
	return ds
}

func (m *Mock) Dataset(name string) *Dataset { return m.datasets[name] }

func (m *Mock) HasDataset(name string) bool {
	_, ok := m.datasets[name]
	return ok
}

func (m *Mock) HasSnapshot(name string) bool {
	_, ok := m.snapshots[name]
	return ok
}

func (m *Mock) GetPool(name string) (zfs.Pool, error) {
	return zfs.Pool{Name: zfs.PoolName(name)}, nil
}

func (m *Mock) GetDataset(_ context.Context, name string) (zfs.Dataset, error) {
	ds, ok := m.datasets[name]
	if !ok {
		return nil, &zfs.DatasetDoesNotExist{Path: name}
	}
	return ds, nil
}

func (m *Mock) GetOrCreateDataset(ctx context.Context, name string,
) (zfs.Dataset, error) {
	if ds, ok := m.datasets[name]; ok {
		return ds, nil
	}
	return m.CreateDataset(ctx, name)
}

func (m *Mock) CreateDataset(_ context.Context, name string,
) (zfs.Dataset, error) {
	if err := m.fail("create", name); err != nil {
		return nil, err
	}
	m.record("create", name)

	// create missing parents like zfs create -p does
	for i, r := range name {
		if r == '/' {
			parent := name[:i]
			if !m.HasDataset(parent) {
				m.AddDataset(parent, "/"+parent)
			}
		}
	}
	return m.AddDataset(name, "/"+name), nil
}

func (m *Mock) GetSnapshot(_ context.Context, name string,
) (zfs.Snapshot, error) {
	snap, ok := m.snapshots[name]
	if !ok {
		return nil, &zfs.SnapshotDoesNotExist{Path: name}
	}
	return snap, nil
}

type Dataset struct {
	mock       *Mock
	name       string
	mountpoint string
	mounted    bool
	props      map[string]string
}

var _ zfs.Dataset = (*Dataset)(nil)

func (d *Dataset) Name() string       { return d.name }
func (d *Dataset) Mountpoint() string { return d.mountpoint }
func (d *Dataset) Mounted() bool      { return d.mounted }

// SetMountpoint overrides the default mountpoint, e.g. with a t.TempDir.
func (d *Dataset) SetMountpoint(path string) *Dataset {
	d.mountpoint = path
	return d
}

func (d *Dataset) Children(context.Context) ([]zfs.Dataset, error) {
	names := make([]string, 0, len(d.mock.datasets))
	for name := range d.mock.datasets {
		if zfs.ParentName(name) == d.name {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	children := make([]zfs.Dataset, len(names))
	for i, name := range names {
		children[i] = d.mock.datasets[name]
	}
	return children, nil
}

func (d *Dataset) Snapshot(_ context.Context, snapName string,
) (zfs.Snapshot, error) {
	full := zfs.SnapshotName(d.name, snapName)
	if err := d.mock.fail("snapshot", full); err != nil {
		return nil, err
	}
	d.mock.record("snapshot", full)

	snap := &Snapshot{mock: d.mock, name: full}
	d.mock.snapshots[full] = snap
	return snap, nil
}

func (d *Dataset) Rename(_ context.Context, newName string) error {
	if err := d.mock.fail("rename", d.name); err != nil {
		return err
	}
	d.mock.record("rename", d.name, newName)

	// children and their snapshots move along, like zfs rename does
	oldPrefix := d.name + "/"
	var childNames []string
	for name := range d.mock.datasets {
		if strings.HasPrefix(name, oldPrefix) {
			childNames = append(childNames, name)
		}
	}
	for _, name := range childNames {
		child := d.mock.datasets[name]
		delete(d.mock.datasets, name)
		child.name = newName + "/" + name[len(oldPrefix):]
		child.mountpoint = "/" + child.name
		d.mock.datasets[child.name] = child
	}

	var snapNames []string
	for name := range d.mock.snapshots {
		ds, _ := zfs.SplitSnapshotName(name)
		if ds == d.name || strings.HasPrefix(ds, oldPrefix) {
			snapNames = append(snapNames, name)
		}
	}
	for _, name := range snapNames {
		snap := d.mock.snapshots[name]
		ds, snapName := zfs.SplitSnapshotName(name)
		delete(d.mock.snapshots, name)
		snap.name = zfs.SnapshotName(newName+strings.TrimPrefix(ds, d.name),
			snapName)
		d.mock.snapshots[snap.name] = snap
	}

	delete(d.mock.datasets, d.name)
	d.name = newName
	d.mountpoint = "/" + newName
	d.mock.datasets[newName] = d
	return nil
}

func (d *Dataset) Mount(context.Context) error {
	if err := d.mock.fail("mount", d.name); err != nil {
		return err
	}
	d.mock.record("mount", d.name)
	d.mounted = true
	return nil
}

func (d *Dataset) Umount(context.Context) error {
	if err := d.mock.fail("umount", d.name); err != nil {
		return err
	}
	d.mock.record("umount", d.name)
	d.mounted = false
	return nil
}

func (d *Dataset) Destroy(context.Context) error {
	if err := d.mock.fail("destroy", d.name); err != nil {
		return err
	}
	d.mock.record("destroy", d.name)

	for name := range d.mock.snapshots {
		if ds, _ := zfs.SplitSnapshotName(name); ds == d.name {
			delete(d.mock.snapshots, name)
		}
	}
	delete(d.mock.datasets, d.name)
	return nil
}

func (d *Dataset) GetProperty(_ context.Context, name string) (string, error) {
	return d.props[name], nil
}

func (d *Dataset) SetProperty(_ context.Context, name, value string) error {
	d.mock.record("set", name+"="+value, d.name)
	d.props[name] = value
	return nil
}

func (d *Dataset) Properties(context.Context) (map[string]string, error) {
	props := make(map[string]string, len(d.props))
	for k, v := range d.props {
		props[k] = v
	}
	return props, nil
}

type Snapshot struct {
	mock *Mock
	name string
}

var _ zfs.Snapshot = (*Snapshot)(nil)

func (s *Snapshot) Name() string { return s.name }

func (s *Snapshot) Dataset() string {
	ds, _ := zfs.SplitSnapshotName(s.name)
	return ds
}

func (s *Snapshot) Clone(ctx context.Context, target string) error {
	if err := s.mock.fail("clone", target); err != nil {
		return err
	}
	if parent := zfs.ParentName(target); parent != "" &&
		!s.mock.HasDataset(parent) {
		return fmt.Errorf("cannot create %q: parent does not exist", target)
	}
	s.mock.record("clone", s.name, target)

	ds := s.mock.AddDataset(target, "/"+target)
	ds.mounted = false
	ds.props[zfs.PropertyOrigin] = s.name
	return nil
}

func (s *Snapshot) Rename(_ context.Context, newName string) error {
	if err := s.mock.fail("rename", s.name); err != nil {
		return err
	}
	s.mock.record("rename", s.name, newName)

	delete(s.mock.snapshots, s.name)
	s.name = newName
	s.mock.snapshots[newName] = s
	return nil
}

func (s *Snapshot) Destroy(context.Context) error {
	if err := s.mock.fail("destroy", s.name); err != nil {
		return err
	}
	s.mock.record("destroy", s.name)
	delete(s.mock.snapshots, s.name)
	return nil
}
