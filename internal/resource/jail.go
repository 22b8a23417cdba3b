package resource

import (
	"context"

	"github.com/bsdkit/jailconf/internal/fstab"
	"github.com/bsdkit/jailconf/internal/props"
	"github.com/bsdkit/jailconf/internal/zfs"
)

// Jail is a jail resource: the jail dataset with its property store, a root
// child dataset carrying the filesystem and an fstab next to the config.
type Jail struct {
	*Resource

	Config *props.Store
}

func NewJail(z zfs.ZFS, opts ...Option) *Jail {
	return &Jail{
		Resource: New(z, opts...),
		Config:   props.NewStore(),
	}
}

// Name returns the jail's identity: the configured id when set, the dataset
// basename otherwise.
func (j *Jail) Name() string {
	if id := j.Config.CurrentID(); id != "" {
		return id
	}
	name, err := j.DatasetName()
	if err != nil {
		return ""
	}
	return zfs.BaseName(name)
}

// RootDatasetName is the dataset holding the jail's root filesystem.
func (j *Jail) RootDatasetName() (string, error) {
	name, err := j.DatasetName()
	if err != nil {
		return "", err
	}
	return name + "/root", nil
}

func (j *Jail) RootDataset(ctx context.Context) (zfs.Dataset, error) {
	return j.ChildDataset(ctx, "root")
}

func (j *Jail) RootMountpoint(ctx context.Context) (string, error) {
	ds, err := j.RootDataset(ctx)
	if err != nil {
		return "", err
	}
	return ds.Mountpoint(), nil
}

// BasejailType returns the basejail flavor, or "" when the jail is no
// basejail.
func (j *Jail) BasejailType() string {
	v, err := j.Config.Get("basejail_type")
	if err != nil || v.IsNull() {
		return ""
	}
	return v.String()
}

// Load reads the config file into the property store. The identity comes
// from the dataset basename and always wins over file contents.
func (j *Jail) Load(ctx context.Context) error {
	if j.Config.CurrentID() == "" {
		name, err := j.DatasetName()
		if err != nil {
			return err
		}
		if _, err := j.Config.Set("id", zfs.BaseName(name)); err != nil {
			return err
		}
	}

	if !j.HasConfig(ctx) {
		return nil
	}
	data, err := j.ReadConfig(ctx)
	if err != nil {
		return err
	}
	return j.Config.Read(data)
}

// Save writes the property store back in the detected config format.
func (j *Jail) Save(ctx context.Context) error {
	return j.WriteConfig(ctx, j.Config.UserData())
}

// Fstab builds the fstab model of this jail. release may be nil for jails
// without basejail mounts.
func (j *Jail) Fstab(release fstab.Release, basedirs []string) *fstab.Fstab {
	return fstab.New(j, release, basedirs)
}
