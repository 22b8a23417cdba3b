package zfs

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
)

func NewZfsError(err error, stderr []byte) *ZFSError {
	if len(stderr) == 0 {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			stderr = exitError.Stderr
		}
	}
	return &ZFSError{Stderr: stderr, WaitErr: err}
}

type ZFSError struct {
	Stderr  []byte
	WaitErr error
}

func (self *ZFSError) Error() string {
	msg := "zfs exited with error: " + self.WaitErr.Error()
	if len(self.Stderr) == 0 {
		return msg
	}

	firstLine, leftBytes, _ := bytes.Cut(self.Stderr, []byte{'\n'})
	msg += ": " + string(firstLine)
	if len(leftBytes) != 0 {
		return msg + fmt.Sprintf(": %d bytes left", len(leftBytes))
	}
	return msg
}

func (self *ZFSError) Unwrap() error { return self.WaitErr }

type DatasetDoesNotExist struct {
	Path string
}

func (d *DatasetDoesNotExist) Error() string {
	return fmt.Sprintf("dataset %q does not exist", d.Path)
}

type SnapshotDoesNotExist struct {
	Path string
}

func (s *SnapshotDoesNotExist) Error() string {
	return fmt.Sprintf("snapshot %q does not exist", s.Path)
}

// maybeNotExists reinterprets a zfs CLI failure as a *DatasetDoesNotExist when
// stderr indicates the entity is missing.
func maybeNotExists(path string, err error) error {
	var zfsError *ZFSError
	if !errors.As(err, &zfsError) {
		return err
	}
	if bytes.Contains(zfsError.Stderr, []byte("does not exist")) {
		return &DatasetDoesNotExist{Path: path}
	}
	return err
}
