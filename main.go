// See cli package.
package main

import (
	"github.com/bsdkit/jailconf/internal/cli"
	"github.com/bsdkit/jailconf/internal/client"
)

func init() {
	cli.AddSubcommand(client.GetCmd)
	cli.AddSubcommand(client.SetCmd)
	cli.AddSubcommand(client.ListCmd)
	cli.AddSubcommand(client.CloneCmd)
	cli.AddSubcommand(client.RenameCmd)
	cli.AddSubcommand(client.FstabCmd)
	cli.AddSubcommand(client.DefaultsCmd)
	cli.AddSubcommand(client.VersionCmd)
}

func main() {
	cli.Run()
}
