// Package config holds the host settings: which pool and dataset layout the
// jails live on, where releases are kept and how directories created for
// jails are owned.
package config

import "path"

// FreeBSD directories a nullfs basejail mounts read-only from its release.
var defaultBasedirs = []string{
	"bin",
	"boot",
	"lib",
	"libexec",
	"rescue",
	"sbin",
	"usr/bin",
	"usr/include",
	"usr/lib",
	"usr/lib32",
	"usr/libexec",
	"usr/sbin",
	"usr/share",
}

func New() *Config { return new(Config) }

type Config struct {
	// ZfsBin is the zfs binary invoked for all dataset operations.
	ZfsBin string `yaml:"zfs_bin" default:"zfs" validate:"required"`

	// Pool carries all datasets managed here.
	Pool string `yaml:"pool" validate:"required"`

	// Root names the dataset below the pool everything lives under.
	Root string `yaml:"root" default:"iocage" validate:"required"`

	Datasets Datasets `yaml:"datasets"`

	// Basedirs overrides the directories mounted into nullfs basejails.
	Basedirs []string `yaml:"basedirs" validate:"min=1,dive,required"`

	// Owner of directories created below jail mountpoints.
	DirUser  string `yaml:"dir_user" default:"root" validate:"required"`
	DirGroup string `yaml:"dir_group" default:"wheel" validate:"required"`
}

type Datasets struct {
	Jails    string `yaml:"jails" default:"jails" validate:"required"`
	Releases string `yaml:"releases" default:"releases" validate:"required"`
}

func (c *Config) lateInit() error {
	if len(c.Basedirs) == 0 {
		c.Basedirs = append([]string{}, defaultBasedirs...)
	}
	return nil
}

// RootDatasetName returns the dataset all jails and releases live under.
func (c *Config) RootDatasetName() string {
	return path.Join(c.Pool, c.Root)
}

func (c *Config) JailsDatasetName() string {
	return path.Join(c.RootDatasetName(), c.Datasets.Jails)
}

func (c *Config) ReleasesDatasetName() string {
	return path.Join(c.RootDatasetName(), c.Datasets.Releases)
}
