package fstab

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJail struct {
	mountpoint   string
	root         string
	basejailType string
}

func (j *fakeJail) Mountpoint(context.Context) (string, error) {
	return j.mountpoint, nil
}

func (j *fakeJail) RootMountpoint(context.Context) (string, error) {
	return j.root, nil
}

func (j *fakeJail) BasejailType() string { return j.basejailType }

type fakeRelease struct{ root string }

func (r *fakeRelease) RootMountpoint(context.Context) (string, error) {
	return r.root, nil
}

func newTestFstab(jail *fakeJail, release Release) *Fstab {
	return New(jail, release, []string{"bin", "lib", "usr/bin"})
}

func TestFstab_roundTrip(t *testing.T) {
	ctx := context.Background()
	input := strings.Join([]string{
		"# my fstab",
		"",
		"tank/data\t/mnt/data\tnullfs\trw\t0\t0",
		"proc\t/proc\tprocfs\trw\t0\t0 # keep me",
		"",
	}, "\n")

	f := newTestFstab(&fakeJail{}, nil)
	f.ParseLines(ctx, input)

	got, err := f.Render(ctx)
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestFstab_parseSkipsInvalidLines(t *testing.T) {
	ctx := context.Background()
	f := newTestFstab(&fakeJail{}, nil)
	f.ParseLines(ctx, strings.Join([]string{
		"tank/data /mnt/data nullfs rw 0",
		"tank/ok /mnt/ok nullfs rw 0 0",
	}, "\n"))

	lines, err := f.Lines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "/mnt/ok", lines[0].(*MountLine).Destination)
}

func TestFstab_parseKeepAuto(t *testing.T) {
	ctx := context.Background()
	input := strings.Join([]string{
		"/r/root/bin\t/j/root/bin\tnullfs\tro\t0\t0 # iocage-auto",
		"tank/data\t/mnt/data\tnullfs\trw\t0\t0",
	}, "\n")

	f := newTestFstab(&fakeJail{}, nil)
	f.ParseLinesKeepAuto(ctx, input)

	got, err := f.Render(ctx)
	require.NoError(t, err)
	assert.Equal(t, input, got, "auto-created lines survive verbatim")

	destinations, err := f.MountDestinations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/j/root/bin", "/mnt/data"}, destinations)
}

func TestFstab_duplicateDestinationIsKept(t *testing.T) {
	ctx := context.Background()
	f := newTestFstab(&fakeJail{}, nil)
	f.ParseLines(ctx, strings.Join([]string{
		"tank/a /mnt nullfs rw 0 0",
		"tank/b /other nullfs rw 0 0",
		"tank/c /mnt nullfs rw 0 0",
	}, "\n"))

	destinations, err := f.MountDestinations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/mnt", "/other", "/mnt"}, destinations)
}

func TestFstab_basejailLines(t *testing.T) {
	jail := &fakeJail{root: "/iocage/jails/web01/root", basejailType: "nullfs"}
	release := &fakeRelease{root: "/iocage/releases/13.2-RELEASE/root"}
	f := newTestFstab(jail, release)

	lines, err := f.BasejailLines(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, &MountLine{
		Source:      "/iocage/releases/13.2-RELEASE/root/bin",
		Destination: "/iocage/jails/web01/root/bin",
		Type:        "nullfs",
		Options:     "ro",
		Dump:        "0",
		PassNum:     "0",
		Comment:     AutoComment,
	}, lines[0])
}

func TestFstab_basejailLinesRequireNullfsAndRelease(t *testing.T) {
	t.Run("no release", func(t *testing.T) {
		f := newTestFstab(&fakeJail{basejailType: "nullfs"}, nil)
		lines, err := f.BasejailLines(context.Background())
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("not a nullfs basejail", func(t *testing.T) {
		f := newTestFstab(&fakeJail{}, &fakeRelease{root: "/r"})
		lines, err := f.BasejailLines(context.Background())
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
}

func TestFstab_placeholderKeepsPosition(t *testing.T) {
	ctx := context.Background()
	jail := &fakeJail{root: "/j/root", basejailType: "nullfs"}
	release := &fakeRelease{root: "/r/root"}
	f := newTestFstab(jail, release)

	f.ParseLines(ctx, strings.Join([]string{
		"tank/data /mnt/data nullfs rw 0 0",
		"/old/bin /j/root/bin nullfs ro 0 0 # iocage-auto",
		"/old/lib /j/root/lib nullfs ro 0 0 # iocage-auto",
		"proc /proc procfs rw 0 0",
	}, "\n"))

	got, err := f.Render(ctx)
	require.NoError(t, err)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 5)

	assert.True(t, strings.HasPrefix(lines[0], "tank/data"))
	// the auto block is regenerated in place, old entries are gone
	assert.Equal(t, "/r/root/bin\t/j/root/bin\tnullfs\tro\t0\t0 # iocage-auto",
		lines[1])
	assert.Contains(t, lines[2], "/r/root/lib")
	assert.Contains(t, lines[3], "/r/root/usr/bin")
	assert.True(t, strings.HasPrefix(lines[4], "proc"))
}

func TestFstab_basejailLinesPrependedWithoutPlaceholder(t *testing.T) {
	ctx := context.Background()
	jail := &fakeJail{root: "/j/root", basejailType: "nullfs"}
	f := newTestFstab(jail, &fakeRelease{root: "/r/root"})
	f.ParseLines(ctx, "tank/data /mnt/data nullfs rw 0 0")

	got, err := f.Render(ctx)
	require.NoError(t, err)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "/j/root/bin")
	assert.True(t, strings.HasPrefix(lines[3], "tank/data"))
}

func TestFstab_newLineDefaults(t *testing.T) {
	f := newTestFstab(&fakeJail{}, nil)
	f.NewLine("tank/media", "/media", "", "", "", "", "")

	got, err := f.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tank/media\t/media\tnullfs\tro\t0\t0", got)
}

func TestFstab_saveAndRead(t *testing.T) {
	ctx := context.Background()
	jail := &fakeJail{mountpoint: t.TempDir()}
	f := newTestFstab(jail, nil)
	f.NewLine("tank/data", "/mnt/data", "nullfs", "rw", "0", "0", "")
	require.NoError(t, f.Save(ctx))

	g := newTestFstab(jail, nil)
	require.NoError(t, g.Read(ctx))
	destinations, err := g.MountDestinations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/mnt/data"}, destinations)
}

func TestFstab_readMissingFile(t *testing.T) {
	ctx := context.Background()
	f := newTestFstab(&fakeJail{mountpoint: t.TempDir()}, nil)
	require.NoError(t, f.Read(ctx))
	lines, err := f.Lines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestFstab_updateAndSaveRegeneratesAutoBlock(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	jail := &fakeJail{
		mountpoint:   dir,
		root:         filepath.Join(dir, "root"),
		basejailType: "nullfs",
	}

	stale := strings.Join([]string{
		"/stale/bin " + jail.root + "/bin nullfs ro 0 0 # iocage-auto",
		"tank/data\t/mnt/data\tnullfs\trw\t0\t0",
	}, "\n")
	require.NoError(t,
		os.WriteFile(filepath.Join(dir, "fstab"), []byte(stale), 0o644))

	f := newTestFstab(jail, &fakeRelease{root: "/r/root"})
	require.NoError(t, f.UpdateAndSave(ctx))

	b, err := os.ReadFile(filepath.Join(dir, "fstab"))
	require.NoError(t, err)
	content := string(b)
	assert.NotContains(t, content, "/stale/bin")
	assert.Contains(t, content, "/r/root/bin")
	assert.Contains(t, content, "tank/data")
}

func TestFstab_pathEscape(t *testing.T) {
	f := New(&fakeJail{mountpoint: "/iocage/jails/web01"}, nil, nil)
	path, err := f.Path(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/iocage/jails/web01/fstab", path)
}
