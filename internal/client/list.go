package client

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/bsdkit/jailconf/internal/cli"
	"github.com/bsdkit/jailconf/internal/resource"
	"github.com/bsdkit/jailconf/internal/zfs"
)

var ListCmd = &cli.Subcommand{
	Use:   "list [FILTER...]",
	Short: "list jails",
	Long: `List jails below the configured jails dataset. Filters are glob
patterns on the jail name or "property=glob" terms; a jail must match all of
them.`,
	Example: "  jailconf list 'web*' boot=yes",

	Run: func(ctx context.Context, subcommand *cli.Subcommand,
		args []string,
	) error {
		return runListCmd(ctx, subcommand, args)
	},
}

type listRow struct {
	name     string
	jailType string
	release  string
	boot     string
}

func runListCmd(ctx context.Context, subcommand *cli.Subcommand,
	args []string,
) error {
	filters, err := resource.ParseFilters(args...)
	if err != nil {
		return err
	}

	z := zfs.NewLocal()
	cfg := subcommand.Config()
	root, err := z.GetDataset(ctx, cfg.JailsDatasetName())
	if err != nil {
		return fmt.Errorf("open jails dataset: %w", err)
	}
	children, err := root.Children(ctx)
	if err != nil {
		return err
	}

	// one slot per child keeps dataset order without sorting afterwards
	rows := make([]*listRow, len(children))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, ds := range children {
		if !filters.MatchName(zfs.BaseName(ds.Name())) {
			continue
		}
		g.Go(func() error {
			row, err := loadListRow(gctx, z, ds, filters)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tRELEASE\tBOOT")
	for _, row := range rows {
		if row == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			row.name, row.jailType, row.release, row.boot)
	}
	return w.Flush()
}

func loadListRow(ctx context.Context, z zfs.ZFS, ds zfs.Dataset,
	filters resource.Filters,
) (*listRow, error) {
	j := resource.NewJail(z, resource.WithDataset(ds))
	if err := j.Load(ctx); err != nil {
		return nil, fmt.Errorf("load jail %q: %w",
			zfs.BaseName(ds.Name()), err)
	}
	if !filters.Match(j.GetProperty) {
		return nil, nil
	}

	row := &listRow{name: j.Name()}
	row.jailType, _ = j.Config.GetString("type")
	row.release, _ = j.Config.GetString("release")
	row.boot, _ = j.Config.GetString("boot")
	return row, nil
}
