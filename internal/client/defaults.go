package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/bsdkit/jailconf/internal/cli"
	"github.com/bsdkit/jailconf/internal/resource"
	"github.com/bsdkit/jailconf/internal/zfs"
)

var DefaultsCmd = &cli.Subcommand{
	Use:   "defaults",
	Short: "inspect and change the host-wide jail defaults",
	SetupSubcommands: func() []*cli.Subcommand {
		return []*cli.Subcommand{defaultsGetCmd, defaultsSetCmd}
	},
}

var defaultsGetCmd = &cli.Subcommand{
	Use:   "get PROPERTY|all",
	Short: "print a default property",

	Run: func(ctx context.Context, subcommand *cli.Subcommand,
		args []string,
	) error {
		if err := exactArgs(args, "property"); err != nil {
			return err
		}
		d, err := openDefaults(ctx, subcommand)
		if err != nil {
			return err
		}

		if args[0] == "all" {
			for _, key := range d.Config.Keys() {
				value, err := d.Config.GetString(key)
				if err != nil {
					continue
				}
				fmt.Printf("%s\t%s\n", key, value)
			}
			return nil
		}

		value, err := d.Config.GetString(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var defaultsSetCmd = &cli.Subcommand{
	Use:   "set PROPERTY=VALUE...",
	Short: "override default properties for new jails",

	Run: func(ctx context.Context, subcommand *cli.Subcommand,
		args []string,
	) error {
		if len(args) < 1 {
			return fmt.Errorf("expected arguments: property=value...")
		}
		d, err := openDefaults(ctx, subcommand)
		if err != nil {
			return err
		}

		changed := false
		for _, assignment := range args {
			key, value, found := strings.Cut(assignment, "=")
			if !found {
				return fmt.Errorf("malformed assignment %q", assignment)
			}
			keyChanged, err := d.Config.Set(key, value)
			if err != nil {
				return err
			}
			changed = changed || keyChanged
		}

		if !changed {
			return nil
		}
		return d.Save(ctx)
	},
}

func openDefaults(ctx context.Context, subcommand *cli.Subcommand,
) (*resource.DefaultResource, error) {
	cfg := subcommand.Config()
	d := resource.NewDefaultResource(zfs.NewLocal(),
		resource.WithDatasetName(cfg.RootDatasetName()))
	if err := d.Load(ctx); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	return d, nil
}
