package client

import (
	"context"
	"fmt"

	"github.com/bsdkit/jailconf/internal/cli"
	"github.com/bsdkit/jailconf/internal/version"
)

var VersionCmd = &cli.Subcommand{
	Use:             "version",
	Short:           "print version of the jailconf binary",
	NoRequireConfig: true,

	Run: func(ctx context.Context, subcommand *cli.Subcommand,
		args []string,
	) error {
		fmt.Println(version.NewVersionInformation().String())
		return nil
	},
}
