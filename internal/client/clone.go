package client

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bsdkit/jailconf/internal/cli"
	"github.com/bsdkit/jailconf/internal/events"
	"github.com/bsdkit/jailconf/internal/resource"
	"github.com/bsdkit/jailconf/internal/storage"
	"github.com/bsdkit/jailconf/internal/zfs"
	"github.com/bsdkit/jailconf/internal/zfs/zfscmd"
)

var cloneArgs struct {
	basejail bool
}

var CloneCmd = &cli.Subcommand{
	Use:   "clone RELEASE JAIL",
	Short: "create a jail by cloning a release",
	Long: `Create a new jail dataset and clone the root filesystem of the
given release into it. With --basejail the jail instead mounts the release
base directories read-only via nullfs; the fstab is generated accordingly.`,

	SetupFlags: func(f *pflag.FlagSet) {
		f.BoolVar(&cloneArgs.basejail, "basejail", false,
			"create a nullfs basejail instead of a full clone")
	},

	Run: func(ctx context.Context, subcommand *cli.Subcommand,
		args []string,
	) error {
		if err := exactArgs(args, "release", "jail"); err != nil {
			return err
		}
		return runCloneCmd(ctx, subcommand, args[0], args[1])
	},
}

func runCloneCmd(ctx context.Context, subcommand *cli.Subcommand,
	releaseName, jailName string,
) error {
	ctx = zfscmd.WithJailName(ctx, jailName)
	cfg := subcommand.Config()
	z := zfs.NewLocal()

	release, err := openRelease(ctx, cfg, z, releaseName)
	if err != nil {
		return err
	}

	j := resource.NewJail(z, resource.WithDatasetName(
		cfg.JailsDatasetName()+"/"+jailName))
	if j.Exists(ctx) {
		return fmt.Errorf("jail %q already exists", jailName)
	}
	if _, err := j.Config.Set("id", jailName); err != nil {
		return err
	}
	if err := j.CreateResource(ctx); err != nil {
		return fmt.Errorf("create jail dataset: %w", err)
	}

	store := storage.New(z, j, events.LogSink{}).
		WithOwner(cfg.DirUser, cfg.DirGroup)
	if err := store.CloneRelease(ctx, release); err != nil {
		return fmt.Errorf("clone release: %w", err)
	}

	if _, err := j.Config.Set("release", releaseName); err != nil {
		return err
	}
	if _, err := j.Config.Set("cloned_release", releaseName); err != nil {
		return err
	}
	if cloneArgs.basejail {
		if _, err := j.Config.Set("type", "basejail"); err != nil {
			return err
		}
		if err := store.CreateNullfsDirectories(ctx, cfg.Basedirs); err != nil {
			return err
		}
	}
	if err := j.Save(ctx); err != nil {
		return err
	}

	return j.Fstab(release, cfg.Basedirs).UpdateAndSave(ctx)
}
