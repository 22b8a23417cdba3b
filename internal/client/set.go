package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/bsdkit/jailconf/internal/cli"
	"github.com/bsdkit/jailconf/internal/zfs"
	"github.com/bsdkit/jailconf/internal/zfs/zfscmd"
)

var SetCmd = &cli.Subcommand{
	Use:   "set JAIL PROPERTY=VALUE...",
	Short: "set jail configuration properties",
	Long: `Set one or more configuration properties of a jail and save the
config file when anything changed. A value of "none" clears a property.`,

	Run: func(ctx context.Context, subcommand *cli.Subcommand,
		args []string,
	) error {
		if len(args) < 2 {
			return fmt.Errorf("expected arguments: jail property=value...")
		}
		return runSetCmd(ctx, subcommand, args[0], args[1:])
	},
}

func runSetCmd(ctx context.Context, subcommand *cli.Subcommand,
	jailName string, assignments []string,
) error {
	ctx = zfscmd.WithJailName(ctx, jailName)
	j, err := openJail(ctx, subcommand.Config(), zfs.NewLocal(), jailName)
	if err != nil {
		return err
	}

	changed := false
	for _, assignment := range assignments {
		key, value, found := strings.Cut(assignment, "=")
		if !found {
			return fmt.Errorf("malformed assignment %q", assignment)
		}
		keyChanged, err := j.Config.Set(key, value)
		if err != nil {
			return err
		}
		changed = changed || keyChanged
	}

	if !changed {
		return nil
	}
	return j.Save(ctx)
}
