package fstab

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bsdkit/jailconf/internal/logging"
)

// Fstab is the in-memory model of one jail's fstab file. Lines keep their
// order; the auto-created basejail block is represented by a single virtual
// placeholder and substituted on render.
type Fstab struct {
	jail     Jail
	release  Release
	basedirs []string

	lines []Line
}

// New binds an fstab model to a jail. release may be nil; without one no
// basejail lines are generated. basedirs lists the release directories a
// nullfs basejail mounts read-only, usually from the host settings.
func New(jail Jail, release Release, basedirs []string) *Fstab {
	return &Fstab{jail: jail, release: release, basedirs: basedirs}
}

// SetRelease swaps the release the auto-created lines source from.
func (f *Fstab) SetRelease(release Release) { f.release = release }

// Path returns the absolute fstab file path. The file sits directly in the
// jail dataset, next to the config file and above the jail's root.
func (f *Fstab) Path(ctx context.Context) (string, error) {
	mountpoint, err := f.jail.Mountpoint(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(mountpoint, "fstab")
	if !strings.HasPrefix(path,
		filepath.Clean(mountpoint)+string(filepath.Separator),
	) {
		return "", fmt.Errorf("fstab path %q escapes the jail at %q",
			path, mountpoint)
	}
	return path, nil
}

// ParseLines replaces the model with the parsed content of an fstab file.
// Comment and blank lines are preserved verbatim. Auto-created lines are
// dropped; the first one leaves a placeholder that pins the position of the
// regenerated block. Malformed lines are logged and skipped.
func (f *Fstab) ParseLines(ctx context.Context, inputText string) {
	f.parseLines(ctx, inputText, true)
}

// ParseLinesKeepAuto parses like ParseLines but keeps auto-created lines
// verbatim as regular mount entries instead of collapsing them into the
// regenerated block.
func (f *Fstab) ParseLinesKeepAuto(ctx context.Context, inputText string) {
	f.parseLines(ctx, inputText, false)
}

func (f *Fstab) parseLines(ctx context.Context, inputText string,
	ignoreAutoCreated bool,
) {
	l := logging.GetLogger(ctx, logging.SubsysFstab)
	f.lines = f.lines[:0]

	placeholderFound := false
	for _, line := range strings.Split(inputText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			f.lines = append(f.lines, &CommentLine{Text: line})
			continue
		}

		var comment string
		if idx := strings.Index(line, "#"); idx >= 0 {
			comment = strings.Trim(line[idx+1:], "# ")
			line = line[:idx]
			if comment == AutoComment && ignoreAutoCreated {
				if !placeholderFound {
					placeholderFound = true
					f.lines = append(f.lines, placeholderLine{})
				}
				continue
			}
		}

		fields := strings.Fields(line)
		if len(fields) != 6 {
			l.Warn("skipping invalid fstab line",
				slog.String("line", strings.TrimSpace(line)))
			continue
		}

		newLine := &MountLine{
			Source:      fields[0],
			Destination: fields[1],
			Type:        fields[2],
			Options:     fields[3],
			Dump:        fields[4],
			PassNum:     fields[5],
			Comment:     comment,
		}
		if f.hasDestination(newLine.Destination) {
			l.Error("duplicate mountpoint in fstab",
				slog.String("destination", newLine.Destination))
		}
		f.lines = append(f.lines, newLine)
	}
}

func (f *Fstab) hasDestination(destination string) bool {
	for _, line := range f.lines {
		if mount, ok := line.(*MountLine); ok &&
			mount.Destination == destination {
			return true
		}
	}
	return false
}

// NewLine appends a mount entry with the usual nullfs defaults for zero
// fields.
func (f *Fstab) NewLine(source, destination, fsType, options, dump,
	passnum, comment string,
) {
	if fsType == "" {
		fsType = "nullfs"
	}
	if options == "" {
		options = "ro"
	}
	if dump == "" {
		dump = "0"
	}
	if passnum == "" {
		passnum = "0"
	}
	f.AddLine(&MountLine{
		Source:      source,
		Destination: destination,
		Type:        fsType,
		Options:     options,
		Dump:        dump,
		PassNum:     passnum,
		Comment:     comment,
	})
}

func (f *Fstab) AddLine(line Line) { f.lines = append(f.lines, line) }

// BasejailLines generates the read-only nullfs mounts of a basejail: one per
// base directory, sourcing from the release root into the jail root. Only
// nullfs basejails with an attached release get any.
func (f *Fstab) BasejailLines(ctx context.Context) ([]*MountLine, error) {
	if f.release == nil || f.jail.BasejailType() != "nullfs" {
		return nil, nil
	}

	releaseRoot, err := f.release.RootMountpoint(ctx)
	if err != nil {
		return nil, err
	}
	jailRoot, err := f.jail.RootMountpoint(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]*MountLine, len(f.basedirs))
	for i, basedir := range f.basedirs {
		lines[i] = &MountLine{
			Source:      filepath.Join(releaseRoot, basedir),
			Destination: filepath.Join(jailRoot, basedir),
			Type:        "nullfs",
			Options:     "ro",
			Dump:        "0",
			PassNum:     "0",
			Comment:     AutoComment,
		}
	}
	return lines, nil
}

// Lines returns the printable lines: user entries in their original order
// with the auto-created block substituted at its placeholder, or prepended
// when the file never contained one.
func (f *Fstab) Lines(ctx context.Context) ([]Line, error) {
	basejail, err := f.BasejailLines(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Line, 0, len(f.lines)+len(basejail))
	substituted := false
	for _, line := range f.lines {
		if _, ok := line.(placeholderLine); ok {
			for _, mount := range basejail {
				out = append(out, mount)
			}
			substituted = true
			continue
		}
		out = append(out, line)
	}

	if !substituted && len(basejail) > 0 {
		prefix := make([]Line, 0, len(basejail)+len(out))
		for _, mount := range basejail {
			prefix = append(prefix, mount)
		}
		out = append(prefix, out...)
	}
	return out, nil
}

// Render serializes the file content.
func (f *Fstab) Render(ctx context.Context) (string, error) {
	lines, err := f.Lines(ctx)
	if err != nil {
		return "", err
	}
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = line.String()
	}
	return strings.Join(rendered, "\n"), nil
}

// MountDestinations lists the destination of every mount entry, auto-created
// lines included. Unmounting walks this list.
func (f *Fstab) MountDestinations(ctx context.Context) ([]string, error) {
	lines, err := f.Lines(ctx)
	if err != nil {
		return nil, err
	}
	destinations := make([]string, 0, len(lines))
	for _, line := range lines {
		if mount, ok := line.(*MountLine); ok {
			destinations = append(destinations, mount.Destination)
		}
	}
	return destinations, nil
}

// Read loads the fstab file. A missing file leaves the model empty.
func (f *Fstab) Read(ctx context.Context) error {
	path, err := f.Path(ctx)
	if err != nil {
		return err
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("read fstab %q: %w", path, err)
	}

	f.ParseLines(ctx, string(b))
	logging.GetLogger(ctx, logging.SubsysFstab).Debug("fstab loaded",
		slog.String("path", path))
	return nil
}

// Save writes the rendered file.
func (f *Fstab) Save(ctx context.Context) error {
	path, err := f.Path(ctx)
	if err != nil {
		return err
	}
	content, err := f.Render(ctx)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write fstab %q: %w", path, err)
	}
	logging.GetLogger(ctx, logging.SubsysFstab).Debug("fstab written",
		slog.String("path", path))
	return nil
}

// UpdateAndSave re-reads the file when it exists and writes it back with the
// auto-created block regenerated.
func (f *Fstab) UpdateAndSave(ctx context.Context) error {
	if err := f.Read(ctx); err != nil {
		return err
	}
	return f.Save(ctx)
}

// UpdateRelease points the auto-created lines at a new release and rewrites
// the file.
func (f *Fstab) UpdateRelease(ctx context.Context, release Release) error {
	f.release = release
	return f.UpdateAndSave(ctx)
}
