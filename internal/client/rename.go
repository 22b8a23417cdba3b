package client

import (
	"context"
	"fmt"

	"github.com/bsdkit/jailconf/internal/cli"
	"github.com/bsdkit/jailconf/internal/events"
	"github.com/bsdkit/jailconf/internal/storage"
	"github.com/bsdkit/jailconf/internal/zfs"
	"github.com/bsdkit/jailconf/internal/zfs/zfscmd"
)

var RenameCmd = &cli.Subcommand{
	Use:   "rename JAIL NEWNAME",
	Short: "rename a jail and its datasets",
	Long: `Rename a jail: the jail dataset moves below the jails dataset under
the new name, the origin snapshot of a cloned jail is renamed to match and
the new identity is written to the config file.`,

	Run: func(ctx context.Context, subcommand *cli.Subcommand,
		args []string,
	) error {
		if err := exactArgs(args, "jail", "newname"); err != nil {
			return err
		}
		return runRenameCmd(ctx, subcommand, args[0], args[1])
	},
}

func runRenameCmd(ctx context.Context, subcommand *cli.Subcommand,
	jailName, newName string,
) error {
	ctx = zfscmd.WithJailName(ctx, jailName)
	cfg := subcommand.Config()
	z := zfs.NewLocal()

	j, err := openJail(ctx, cfg, z, jailName)
	if err != nil {
		return err
	}

	store := storage.New(z, j, events.LogSink{})
	if err := store.Rename(ctx, cfg.JailsDatasetName(), newName); err != nil {
		return fmt.Errorf("rename jail %q: %w", jailName, err)
	}

	if _, err := j.Config.Set("id", newName); err != nil {
		return err
	}
	return j.Save(ctx)
}
