// Package fstab reads, edits and writes the fstab file of a jail. Besides the
// user maintained entries it manages the auto-created nullfs basejail mounts,
// which are marked with a sentinel comment, regenerated on every render and
// never duplicated into the file by hand.
package fstab

import (
	"context"
	"fmt"
	"strings"
)

// AutoComment marks lines this package created itself. They are dropped on
// parse and regenerated from the attached release on render, so stale mounts
// never survive a release update.
const AutoComment = "iocage-auto"

// Line is one rendered line of an fstab file.
type Line interface {
	fmt.Stringer
}

// MountLine is a regular six-field fstab entry with an optional trailing
// comment.
type MountLine struct {
	Source      string
	Destination string
	Type        string
	Options     string
	Dump        string
	PassNum     string
	Comment     string
}

var _ Line = (*MountLine)(nil)

func (l *MountLine) String() string {
	s := strings.Join([]string{
		l.Source, l.Destination, l.Type, l.Options, l.Dump, l.PassNum,
	}, "\t")
	if l.Comment != "" {
		s += " # " + l.Comment
	}
	return s
}

// CommentLine preserves a comment or blank line verbatim.
type CommentLine struct {
	Text string
}

var _ Line = (*CommentLine)(nil)

func (l *CommentLine) String() string { return l.Text }

// placeholderLine remembers where the auto-created block sat in the parsed
// file, so a rewrite keeps it in place.
type placeholderLine struct{}

func (placeholderLine) String() string {
	panic("placeholder lines are virtual and never rendered directly")
}

// Jail is the subset of a jail resource the fstab file depends on.
type Jail interface {
	// Mountpoint of the jail dataset. The fstab file lives directly under
	// it.
	Mountpoint(ctx context.Context) (string, error)

	// RootMountpoint is the mountpoint of the jail's root dataset, the
	// destination prefix of basejail mounts.
	RootMountpoint(ctx context.Context) (string, error)

	// BasejailType returns the basejail flavor, or "" for non-basejails.
	BasejailType() string
}

// Release is the subset of a release resource basejail mounts source from.
type Release interface {
	RootMountpoint(ctx context.Context) (string, error)
}
