package client

import (
	"context"
	"fmt"

	"github.com/bsdkit/jailconf/internal/cli"
	"github.com/bsdkit/jailconf/internal/fstab"
	"github.com/bsdkit/jailconf/internal/zfs"
)

var FstabCmd = &cli.Subcommand{
	Use:   "fstab",
	Short: "inspect and update jail fstab files",
	SetupSubcommands: func() []*cli.Subcommand {
		return []*cli.Subcommand{fstabShowCmd, fstabUpdateCmd, fstabAddCmd}
	},
}

var fstabShowCmd = &cli.Subcommand{
	Use:   "show JAIL",
	Short: "print the rendered fstab, auto-created mounts included",

	Run: func(ctx context.Context, subcommand *cli.Subcommand,
		args []string,
	) error {
		if err := exactArgs(args, "jail"); err != nil {
			return err
		}
		f, err := openFstab(ctx, subcommand, args[0])
		if err != nil {
			return err
		}
		if err := f.Read(ctx); err != nil {
			return err
		}
		content, err := f.Render(ctx)
		if err != nil {
			return err
		}
		fmt.Println(content)
		return nil
	},
}

var fstabUpdateCmd = &cli.Subcommand{
	Use:   "update JAIL",
	Short: "rewrite the fstab with regenerated basejail mounts",

	Run: func(ctx context.Context, subcommand *cli.Subcommand,
		args []string,
	) error {
		if err := exactArgs(args, "jail"); err != nil {
			return err
		}
		f, err := openFstab(ctx, subcommand, args[0])
		if err != nil {
			return err
		}
		return f.UpdateAndSave(ctx)
	},
}

var fstabAddCmd = &cli.Subcommand{
	Use:   "add JAIL SOURCE DESTINATION [TYPE [OPTIONS]]",
	Short: "append a mount entry to the jail fstab",

	Run: func(ctx context.Context, subcommand *cli.Subcommand,
		args []string,
	) error {
		if len(args) < 3 || len(args) > 5 {
			return fmt.Errorf(
				"expected arguments: jail source destination [type [options]]")
		}
		f, err := openFstab(ctx, subcommand, args[0])
		if err != nil {
			return err
		}
		if err := f.Read(ctx); err != nil {
			return err
		}

		var fsType, options string
		if len(args) > 3 {
			fsType = args[3]
		}
		if len(args) > 4 {
			options = args[4]
		}
		f.NewLine(args[1], args[2], fsType, options, "", "", "")
		return f.Save(ctx)
	},
}

func openFstab(ctx context.Context, subcommand *cli.Subcommand,
	jailName string,
) (*fstab.Fstab, error) {
	cfg := subcommand.Config()
	z := zfs.NewLocal()
	j, err := openJail(ctx, cfg, z, jailName)
	if err != nil {
		return nil, err
	}

	release, err := releaseForJail(ctx, cfg, z, j)
	if err != nil {
		return nil, err
	}
	if release == nil {
		return j.Fstab(nil, cfg.Basedirs), nil
	}
	return j.Fstab(release, cfg.Basedirs), nil
}
