package client

import (
	"context"
	"fmt"

	"github.com/bsdkit/jailconf/internal/cli"
	"github.com/bsdkit/jailconf/internal/zfs"
	"github.com/bsdkit/jailconf/internal/zfs/zfscmd"
)

var GetCmd = &cli.Subcommand{
	Use:   "get JAIL PROPERTY|all",
	Short: "print a jail configuration property",

	Run: func(ctx context.Context, subcommand *cli.Subcommand,
		args []string,
	) error {
		if err := exactArgs(args, "jail", "property"); err != nil {
			return err
		}
		return runGetCmd(ctx, subcommand, args[0], args[1])
	},
}

func runGetCmd(ctx context.Context, subcommand *cli.Subcommand,
	jailName, property string,
) error {
	ctx = zfscmd.WithJailName(ctx, jailName)
	j, err := openJail(ctx, subcommand.Config(), zfs.NewLocal(), jailName)
	if err != nil {
		return err
	}

	if property == "all" {
		for _, key := range j.Config.Keys() {
			value, err := j.Config.GetString(key)
			if err != nil {
				continue
			}
			fmt.Printf("%s\t%s\n", key, value)
		}
		return nil
	}

	value, err := j.Config.GetString(property)
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}
