package storage

import (
	"context"
	"fmt"

	"github.com/bsdkit/jailconf/internal/zfs/zfscmd"
)

// UmountBin is the umount(8) binary invoked for nullfs mounts.
var UmountBin = "/sbin/umount"

type execUnmounter struct{}

var _ Unmounter = execUnmounter{}

func (execUnmounter) Umount(ctx context.Context, paths ...string) error {
	cmd := zfscmd.CommandContext(ctx, UmountBin, paths...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w", string(output), err)
	}
	return nil
}
