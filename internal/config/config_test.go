package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigBytes_minimal(t *testing.T) {
	c, err := ParseConfigBytes([]byte("pool: zroot\n"))
	require.NoError(t, err)

	assert.Equal(t, "zfs", c.ZfsBin)
	assert.Equal(t, "zroot", c.Pool)
	assert.Equal(t, "iocage", c.Root)
	assert.Equal(t, "zroot/iocage", c.RootDatasetName())
	assert.Equal(t, "zroot/iocage/jails", c.JailsDatasetName())
	assert.Equal(t, "zroot/iocage/releases", c.ReleasesDatasetName())
	assert.Equal(t, "root", c.DirUser)
	assert.Equal(t, "wheel", c.DirGroup)
	assert.Equal(t, defaultBasedirs, c.Basedirs)
}

func TestParseConfigBytes_overrides(t *testing.T) {
	c, err := ParseConfigBytes([]byte(`
pool: tank
root: jails
zfs_bin: /sbin/zfs
datasets:
  jails: instances
  releases: bases
basedirs: [bin, lib]
`))
	require.NoError(t, err)

	assert.Equal(t, "/sbin/zfs", c.ZfsBin)
	assert.Equal(t, "tank/jails/instances", c.JailsDatasetName())
	assert.Equal(t, "tank/jails/bases", c.ReleasesDatasetName())
	assert.Equal(t, []string{"bin", "lib"}, c.Basedirs)
}

func TestParseConfigBytes_missingPool(t *testing.T) {
	_, err := ParseConfigBytes([]byte("root: iocage\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool")
}
