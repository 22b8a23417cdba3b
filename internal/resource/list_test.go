package resource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsdkit/jailconf/internal/zfs/zfsmock"
)

func addJail(t *testing.T, mock *zfsmock.Mock, name string,
	config map[string]any,
) {
	t.Helper()
	ctx := context.Background()
	mock.AddDataset("zroot/jails/"+name, "").SetMountpoint(t.TempDir())

	j := NewJail(mock, WithDatasetName("zroot/jails/"+name))
	require.NoError(t, j.Load(ctx))
	require.NoError(t, j.Config.Clone(config, false))
	require.NoError(t, j.Save(ctx))
}

func TestJails_list(t *testing.T) {
	ctx := context.Background()
	mock := zfsmock.New()
	mock.AddDataset("zroot/jails", "/jails")
	addJail(t, mock, "web01", map[string]any{"boot": "yes"})
	addJail(t, mock, "web02", map[string]any{"boot": "no"})
	addJail(t, mock, "db01", map[string]any{"boot": "yes"})

	var names []string
	for jail, err := range Jails(ctx, mock, "zroot/jails", nil) {
		require.NoError(t, err)
		names = append(names, jail.Name())
	}
	assert.Equal(t, []string{"db01", "web01", "web02"}, names)
}

func TestJails_nameFilterSkipsLoading(t *testing.T) {
	ctx := context.Background()
	mock := zfsmock.New()
	mock.AddDataset("zroot/jails", "/jails")
	addJail(t, mock, "web01", nil)
	addJail(t, mock, "db01", nil)

	filters, err := ParseFilters("web*")
	require.NoError(t, err)

	var names []string
	for jail, err := range Jails(ctx, mock, "zroot/jails", filters) {
		require.NoError(t, err)
		names = append(names, jail.Name())
	}
	assert.Equal(t, []string{"web01"}, names)
}

func TestJails_propertyFilter(t *testing.T) {
	ctx := context.Background()
	mock := zfsmock.New()
	mock.AddDataset("zroot/jails", "/jails")
	addJail(t, mock, "web01", map[string]any{"boot": "yes"})
	addJail(t, mock, "web02", map[string]any{"boot": "no"})

	filters, err := ParseFilters("boot=yes")
	require.NoError(t, err)

	var names []string
	for jail, err := range Jails(ctx, mock, "zroot/jails", filters) {
		require.NoError(t, err)
		names = append(names, jail.Name())
	}
	assert.Equal(t, []string{"web01"}, names)
}

func TestJails_missingRoot(t *testing.T) {
	mock := zfsmock.New()
	for jail, err := range Jails(context.Background(), mock, "zroot/jails",
		nil) {
		assert.Nil(t, jail)
		assert.Error(t, err)
	}
}

func TestReleases_list(t *testing.T) {
	ctx := context.Background()
	mock := zfsmock.New()
	mock.AddDataset("zroot/releases", "/releases")
	mock.AddDataset("zroot/releases/13.2-RELEASE", "/releases/13.2-RELEASE")
	mock.AddDataset("zroot/releases/14.0-RELEASE", "/releases/14.0-RELEASE")

	filters, err := ParseFilters("13.*")
	require.NoError(t, err)

	var names []string
	for release, err := range Releases(ctx, mock, "zroot/releases", filters) {
		require.NoError(t, err)
		names = append(names, release.Name())
	}
	assert.Equal(t, []string{"13.2-RELEASE"}, names)
}
