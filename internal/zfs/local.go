package zfs

import (
	"context"
	"errors"
	"strings"

	"github.com/bsdkit/jailconf/internal/zfs/zfscmd"
)

var ZfsBin string = "zfs"

// NewLocal returns a ZFS implementation that shells out to the zfs binary on
// the local host.
func NewLocal() *LocalZFS { return &LocalZFS{bin: ZfsBin} }

type LocalZFS struct {
	bin string
}

var _ ZFS = (*LocalZFS)(nil)

func (self *LocalZFS) run(ctx context.Context, args ...string,
) ([]byte, error) {
	cmd := zfscmd.CommandContext(ctx, self.bin, args...).WithLogError(false)
	out, err := cmd.Output()
	if err != nil {
		zfsErr := NewZfsError(err, nil)
		cmd.WithStderrOutput(zfsErr.Stderr).LogError(err, false)
		return nil, zfsErr
	}
	return out, nil
}

func (self *LocalZFS) listFields(ctx context.Context, path string,
	args ...string,
) ([][]string, error) {
	out, err := self.run(ctx, args...)
	if err != nil {
		return nil, maybeNotExists(path, err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	fields := make([][]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		fields = append(fields, strings.Split(line, "\t"))
	}
	return fields, nil
}

func (self *LocalZFS) GetPool(name string) (Pool, error) {
	pool := PoolName(name)
	if pool == "" {
		return Pool{}, errors.New("dataset path does not have a pool component")
	}
	return Pool{Name: pool}, nil
}

func (self *LocalZFS) GetDataset(ctx context.Context, name string,
) (Dataset, error) {
	fields, err := self.listFields(ctx, name,
		"list", "-H", "-o", "name,mountpoint,mounted", name)
	if err != nil {
		return nil, err
	} else if len(fields) == 0 || len(fields[0]) != 3 {
		return nil, &DatasetDoesNotExist{Path: name}
	}
	return self.datasetFromFields(fields[0]), nil
}

func (self *LocalZFS) datasetFromFields(fields []string) *localDataset {
	mountpoint := fields[1]
	switch mountpoint {
	case "none", "legacy", "-":
		mountpoint = ""
	}
	return &localDataset{
		zfs:        self,
		name:       fields[0],
		mountpoint: mountpoint,
		mounted:    fields[2] == "yes",
	}
}

func (self *LocalZFS) GetOrCreateDataset(ctx context.Context, name string,
) (Dataset, error) {
	ds, err := self.GetDataset(ctx, name)
	var notExist *DatasetDoesNotExist
	if errors.As(err, &notExist) {
		return self.CreateDataset(ctx, name)
	} else if err != nil {
		return nil, err
	}
	return ds, nil
}

func (self *LocalZFS) CreateDataset(ctx context.Context, name string,
) (Dataset, error) {
	if _, err := self.run(ctx, "create", "-p", name); err != nil {
		return nil, err
	}
	return self.GetDataset(ctx, name)
}

func (self *LocalZFS) GetSnapshot(ctx context.Context, name string,
) (Snapshot, error) {
	fields, err := self.listFields(ctx, name,
		"list", "-H", "-t", "snapshot", "-o", "name", name)
	if err != nil {
		var notExist *DatasetDoesNotExist
		if errors.As(err, &notExist) {
			return nil, &SnapshotDoesNotExist{Path: name}
		}
		return nil, err
	} else if len(fields) == 0 {
		return nil, &SnapshotDoesNotExist{Path: name}
	}
	return &localSnapshot{zfs: self, name: fields[0][0]}, nil
}

type localDataset struct {
	zfs        *LocalZFS
	name       string
	mountpoint string
	mounted    bool
}

var _ Dataset = (*localDataset)(nil)

func (d *localDataset) Name() string       { return d.name }
func (d *localDataset) Mountpoint() string { return d.mountpoint }
func (d *localDataset) Mounted() bool      { return d.mounted }

func (d *localDataset) Children(ctx context.Context) ([]Dataset, error) {
	fields, err := d.zfs.listFields(ctx, d.name,
		"list", "-H", "-r", "-d", "1", "-o", "name,mountpoint,mounted", d.name)
	if err != nil {
		return nil, err
	}

	children := make([]Dataset, 0, len(fields))
	for _, f := range fields {
		if len(f) != 3 || f[0] == d.name {
			continue
		}
		children = append(children, d.zfs.datasetFromFields(f))
	}
	return children, nil
}

func (d *localDataset) Snapshot(ctx context.Context, snapName string,
) (Snapshot, error) {
	full := SnapshotName(d.name, snapName)
	if _, err := d.zfs.run(ctx, "snapshot", full); err != nil {
		return nil, err
	}
	return &localSnapshot{zfs: d.zfs, name: full}, nil
}

func (d *localDataset) Rename(ctx context.Context, newName string) error {
	if _, err := d.zfs.run(ctx, "rename", d.name, newName); err != nil {
		return err
	}
	d.name = newName
	return nil
}

func (d *localDataset) Mount(ctx context.Context) error {
	_, err := d.zfs.run(ctx, "mount", d.name)
	if err == nil {
		d.mounted = true
	}
	return err
}

func (d *localDataset) Umount(ctx context.Context) error {
	_, err := d.zfs.run(ctx, "unmount", d.name)
	if err == nil {
		d.mounted = false
	}
	return err
}

func (d *localDataset) Destroy(ctx context.Context) error {
	_, err := d.zfs.run(ctx, "destroy", "-r", d.name)
	return err
}

func (d *localDataset) GetProperty(ctx context.Context, name string,
) (string, error) {
	fields, err := d.zfs.listFields(ctx, d.name,
		"get", "-H", "-o", "value", name, d.name)
	if err != nil {
		return "", err
	} else if len(fields) == 0 || fields[0][0] == "-" {
		return "", nil
	}
	return fields[0][0], nil
}

func (d *localDataset) SetProperty(ctx context.Context, name, value string,
) error {
	_, err := d.zfs.run(ctx, "set", name+"="+value, d.name)
	return err
}

func (d *localDataset) Properties(ctx context.Context,
) (map[string]string, error) {
	fields, err := d.zfs.listFields(ctx, d.name,
		"get", "-H", "-o", "property,value", "all", d.name)
	if err != nil {
		return nil, err
	}

	props := make(map[string]string, len(fields))
	for _, f := range fields {
		if len(f) != 2 || f[1] == "-" {
			continue
		}
		props[f[0]] = f[1]
	}
	return props, nil
}

type localSnapshot struct {
	zfs  *LocalZFS
	name string
}

var _ Snapshot = (*localSnapshot)(nil)

func (s *localSnapshot) Name() string { return s.name }

func (s *localSnapshot) Dataset() string {
	ds, _ := SplitSnapshotName(s.name)
	return ds
}

func (s *localSnapshot) Clone(ctx context.Context, target string) error {
	_, err := s.zfs.run(ctx, "clone", s.name, target)
	return err
}

func (s *localSnapshot) Rename(ctx context.Context, newName string) error {
	if _, err := s.zfs.run(ctx, "rename", s.name, newName); err != nil {
		return err
	}
	s.name = newName
	return nil
}

func (s *localSnapshot) Destroy(ctx context.Context) error {
	_, err := s.zfs.run(ctx, "destroy", s.name)
	return err
}
